package scheduler

import (
	"context"
	"fmt"
	"sync"

	"CandleAlert/internal/pipeline"
	"CandleAlert/internal/recorder"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner executes one pipeline pass.
type Runner interface {
	Run(ctx context.Context) *pipeline.Result
}

// Scheduler runs the pipeline on a cron schedule and keeps the last result.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Recorder recorder.Recorder
	Logger   *zap.Logger
	Ctx      context.Context

	job  cron.Job
	mu   sync.RWMutex
	last *pipeline.Result
	runs int
}

// NewScheduler creates a scheduler whose runs never overlap: a tick or an
// immediate run that starts while another run is still going is skipped.
func NewScheduler(ctx context.Context, runner Runner, rec recorder.Recorder, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	cl := cronLogger{logger.Sugar()}
	s := &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLogger(cl)),
		Runner:   runner,
		Recorder: rec,
		Logger:   logger,
		Ctx:      ctx,
	}
	s.job = cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.run))
	return s
}

// Register adds the pipeline job under a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddJob(spec, s.job); err != nil {
		return fmt.Errorf("register run task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the pipeline immediately unless a run is already in flight.
func (s *Scheduler) RunNow() {
	s.job.Run()
}

func (s *Scheduler) run() {
	res := s.Runner.Run(s.Ctx)

	s.mu.Lock()
	s.last = res
	s.runs++
	s.mu.Unlock()
}

// Last returns the most recent result and the number of completed runs.
func (s *Scheduler) Last() (*pipeline.Result, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.runs
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
