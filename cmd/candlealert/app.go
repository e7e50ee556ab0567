package main

import (
	"context"
	"fmt"

	"CandleAlert/internal/calculator"
	"CandleAlert/internal/collector"
	"CandleAlert/internal/config"
	"CandleAlert/internal/logger"
	"CandleAlert/internal/model"
	"CandleAlert/internal/notifier"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func setup(cmd *cli.Command) (*app, error) {
	if err := config.LoadDotEnv(cmd.String("env-file")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) newFetcher() collector.Fetcher {
	ds := a.cfg.DataSource
	switch ds.Provider {
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.Path, ds.APIKey, a.cfg.Proxy, ds.Timeout)
	case "mock":
		return &collector.MockFetcher{Price: 30000}
	default:
		return collector.NewBinanceFetcher(ds.BaseURL, a.cfg.Proxy, ds.Timeout)
	}
}

func (a *app) newCollector() (*collector.Collector, error) {
	interval, err := model.ParseInterval(a.cfg.DataSource.Interval)
	if err != nil {
		return nil, err
	}
	fetcher := a.newFetcher()
	a.log.Info("data source", zap.String("provider", fetcher.Name()))

	col := collector.NewCollector(fetcher, a.cfg.DataSource.Symbol, interval, a.cfg.DataSource.Limit, a.log)
	col.Params.RSIMethod = calculator.RSIMethod(a.cfg.Indicators.RSIMethod)
	if err := col.Params.Validate(); err != nil {
		return nil, err
	}
	return col, nil
}

// newNotifier builds every configured channel. The SendGrid key is fetched from
// SSM here so commands that never alert do not need AWS credentials.
func (a *app) newNotifier(ctx context.Context) (notifier.Notifier, error) {
	if err := a.cfg.ValidateChannels(); err != nil {
		return nil, err
	}
	if a.cfg.NeedsSecrets() {
		store, err := config.NewSSMStore(ctx)
		if err != nil {
			return nil, err
		}
		if err := a.cfg.ResolveSecrets(ctx, store); err != nil {
			return nil, err
		}
	}

	var channels notifier.Multi
	if e := a.cfg.Email; e.Enabled() {
		channels = append(channels, notifier.NewSendGridNotifier(notifier.SendGridConfig{
			APIKey:  e.APIKey,
			From:    e.From,
			To:      e.To,
			Subject: e.Subject,
			Asset:   e.Asset,
		}))
	}
	if tg := a.cfg.Telegram; tg.BotToken != "" {
		channels = append(channels, notifier.NewTelegramNotifier(tg.BotToken, tg.ChatID, a.cfg.Proxy))
	}
	if len(channels) == 1 {
		return channels[0], nil
	}
	return channels, nil
}
