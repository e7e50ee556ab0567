package pipeline

import (
	"context"
	"fmt"
	"time"

	"CandleAlert/internal/calculator"
	"CandleAlert/internal/collector"
	"CandleAlert/internal/model"
	"CandleAlert/internal/notifier"
	"CandleAlert/internal/recorder"
	"CandleAlert/internal/strategy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner executes fetch, compute, evaluate and notify once per call.
type Runner struct {
	Collector *collector.Collector
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewRunner wires a runner. A nil recorder or logger disables that concern.
func NewRunner(col *collector.Collector, n notifier.Notifier, rec recorder.Recorder, logger *zap.Logger) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		Logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// Run never panics; every failure is reported through the Result.
func (r *Runner) Run(ctx context.Context) *Result {
	res := &Result{
		RunID:     r.newID(),
		Symbol:    r.Collector.Symbol,
		Interval:  r.Collector.Interval,
		StartedAt: r.now().UTC(),
	}
	log := r.Logger.With(
		zap.String("run_id", res.RunID),
		zap.String("symbol", res.Symbol),
		zap.String("interval", res.Interval.String()),
	)

	func() {
		defer func() {
			if p := recover(); p != nil {
				res.Evaluation = nil
				res.Err = &model.ComputeError{Err: fmt.Errorf("panic: %v", p)}
				res.Outcome = OutcomeComputeFailed
			}
		}()
		res.Evaluation, res.Err = r.execute(ctx, log)
	}()

	switch {
	case res.Outcome != "":
	case res.Err != nil:
		res.Outcome = classify(res.Err)
	case res.Evaluation.Signal:
		res.Outcome = OutcomeAlertSent
	default:
		res.Outcome = OutcomeNoSignal
	}
	res.FinishedAt = r.now().UTC()

	fields := []zap.Field{
		zap.String("outcome", string(res.Outcome)),
		zap.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)),
	}
	if res.Failed() {
		log.Error("run failed", append(fields, zap.Error(res.Err))...)
	} else {
		log.Info("run finished", fields...)
	}

	r.record(ctx, res, log)
	return res
}

func (r *Runner) execute(ctx context.Context, log *zap.Logger) (*model.Evaluation, error) {
	candles, err := r.Collector.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	rows := calculator.Compute(candles, r.Collector.Params)
	eval, err := strategy.Evaluate(rows)
	if err != nil {
		return nil, err
	}
	eval.EvaluatedAt = r.now().UTC()

	log.Debug("signal evaluated",
		zap.Bool("signal", eval.Signal),
		zap.Float64("price", eval.CurrentPrice),
		zap.Any("conditions", eval.ConditionMap()))

	if !eval.Signal {
		return eval, nil
	}
	if err := r.Notifier.Notify(ctx, eval); err != nil {
		return eval, err
	}
	return eval, nil
}

func (r *Runner) record(ctx context.Context, res *Result, log *zap.Logger) {
	rec := &recorder.RunRecord{
		RunID:      res.RunID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Symbol:     res.Symbol,
		Interval:   res.Interval.String(),
		Outcome:    string(res.Outcome),
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	if res.Evaluation != nil {
		rec.Signal = res.Evaluation.Signal
		rec.Price = res.Evaluation.CurrentPrice
		rec.Conditions = res.Evaluation.ConditionMap()
	}
	if err := r.Recorder.RecordRun(ctx, rec); err != nil {
		log.Warn("record run failed", zap.Error(err))
	}
}
