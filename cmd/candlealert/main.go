package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"CandleAlert/internal/config"
	"CandleAlert/internal/notifier"
	"CandleAlert/internal/pipeline"
	"CandleAlert/internal/recorder"
	"CandleAlert/internal/report"
	"CandleAlert/internal/scheduler"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// runAction executes one pass and prints the status line. Failures are reported
// on stdout and the process exits 0 unless --fail-on-error is set.
func runAction(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	failOnError := cmd.Bool("fail-on-error")

	fail := func(err error) error {
		fmt.Fprintln(out, "Error occurred: "+err.Error())
		if failOnError {
			return cli.Exit("", 1)
		}
		return nil
	}

	a, err := setup(cmd)
	if err != nil {
		return fail(err)
	}
	defer a.log.Sync()

	col, err := a.newCollector()
	if err != nil {
		return fail(err)
	}
	n := &notifier.Lazy{Build: a.newNotifier}
	rec, err := recorder.Open(a.cfg.Database, a.log)
	if err != nil {
		a.log.Warn("init recorder failed, using noop", zap.Error(err))
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	res := pipeline.NewRunner(col, n, rec, a.log).Run(ctx)
	if cmd.Bool("table") && res.Evaluation != nil {
		report.WriteConditionTable(out, res.Evaluation)
	}
	fmt.Fprintln(out, res.Message())
	if res.Failed() && failOnError {
		return cli.Exit("", 1)
	}
	return nil
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	col, err := a.newCollector()
	if err != nil {
		return err
	}
	n, err := a.newNotifier(ctx)
	if err != nil {
		return err
	}
	rec, err := recorder.Open(a.cfg.Database, a.log)
	if err != nil {
		a.log.Warn("init recorder failed, using noop", zap.Error(err))
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, pipeline.NewRunner(col, n, rec, a.log), rec, a.log)
	spec := a.cfg.Schedule.Cron
	if err := sched.Register(spec); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if cmd.Bool("now") {
		go sched.RunNow()
	}

	listen := a.cfg.Server.Listen
	if v := cmd.String("listen"); v != "" {
		listen = v
	}
	if listen != "" {
		go func() {
			if err := sched.Serve(ctx, listen); err != nil {
				a.log.Error("status server", zap.Error(err))
			}
		}()
	}

	a.log.Info("watching", zap.String("cron", spec), zap.String("symbol", col.Symbol), zap.String("interval", col.Interval.String()))
	<-ctx.Done()
	a.log.Info("shutdown signal received, stopping")
	return nil
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	col, err := a.newCollector()
	if err != nil {
		return err
	}
	rows, err := col.Collect(ctx)
	if err != nil {
		return err
	}

	path := cmd.String("out")
	if path == "" || path == "-" {
		return report.WriteCSV(cmd.Root().Writer, rows)
	}
	if err := report.ExportCSV(path, rows); err != nil {
		return err
	}
	a.log.Info("exported indicators", zap.Int("rows", len(rows)), zap.String("path", path))
	return nil
}

// newCommand builds the CLI. Root flags are inherited by every subcommand, so
// "candlealert --fail-on-error" and "candlealert run --fail-on-error" behave the same.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "candlealert",
		Usage: "Poll exchange candles, evaluate the breakout signal and send an alert",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Value:   config.DefaultPath,
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before the config",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "fail-on-error",
				Usage: "exit non-zero when the run fails instead of only printing the error",
			},
			&cli.BoolFlag{
				Name:  "table",
				Usage: "print the condition table before the status line",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the pipeline once (default)",
				Action: runAction,
			},
			{
				Name:  "watch",
				Usage: "Run the pipeline on the configured cron schedule",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "now", Usage: "run once immediately on start"},
					&cli.StringFlag{Name: "listen", Usage: "address for the status endpoint, e.g. :8080"},
				},
				Action: watchAction,
			},
			{
				Name:  "export",
				Usage: "Write the computed indicator table as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, - for stdout", Value: "-"},
				},
				Action: exportAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
