package notifier

import (
	"context"
	"errors"
	"sync"

	"CandleAlert/internal/model"
)

// Notifier delivers an alert for a triggered evaluation.
type Notifier interface {
	Notify(ctx context.Context, eval *model.Evaluation) error
	Name() string
}

// Multi fans an alert out to every channel in order and stops at the first failure.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

// Notify returns the first failure as a *model.NotifyError; channels after it are not tried.
func (m Multi) Notify(ctx context.Context, eval *model.Evaluation) error {
	for _, n := range m {
		if err := n.Notify(ctx, eval); err != nil {
			var ne *model.NotifyError
			if errors.As(err, &ne) {
				return err
			}
			return &model.NotifyError{Channel: n.Name(), Err: err}
		}
	}
	return nil
}

// Lazy builds its channel on the first alert, so a missing or broken channel
// setup only fails a run that actually has something to send.
type Lazy struct {
	Build func(ctx context.Context) (Notifier, error)

	once sync.Once
	n    Notifier
	err  error
}

func (l *Lazy) Name() string { return "alert" }

// Notify builds the channel once and delivers through it. A build failure is
// returned as a *model.NotifyError on this and every later call.
func (l *Lazy) Notify(ctx context.Context, eval *model.Evaluation) error {
	l.once.Do(func() {
		l.n, l.err = l.Build(ctx)
	})
	if l.err != nil {
		return &model.NotifyError{Channel: l.Name(), Err: l.err}
	}
	return l.n.Notify(ctx, eval)
}
