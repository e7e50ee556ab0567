package pipeline

import (
	"errors"
	"time"

	"CandleAlert/internal/model"
)

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeAlertSent     Outcome = "alert_sent"
	OutcomeNoSignal      Outcome = "no_signal"
	OutcomeFetchFailed   Outcome = "fetch_failed"
	OutcomeComputeFailed Outcome = "compute_failed"
	OutcomeNotifyFailed  Outcome = "notify_failed"
)

// Result is the typed outcome of one run.
type Result struct {
	RunID      string
	Symbol     string
	Interval   model.Interval
	Outcome    Outcome
	Evaluation *model.Evaluation
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether the run ended in one of the error outcomes.
func (r *Result) Failed() bool {
	switch r.Outcome {
	case OutcomeFetchFailed, OutcomeComputeFailed, OutcomeNotifyFailed:
		return true
	}
	return false
}

// Message is the one-line status printed for the operator.
func (r *Result) Message() string {
	switch r.Outcome {
	case OutcomeAlertSent:
		return "Alert sent successfully!"
	case OutcomeNoSignal:
		return "No signal triggered."
	}
	if r.Err != nil {
		return "Error occurred: " + r.Err.Error()
	}
	return "Error occurred: " + string(r.Outcome)
}

// Summary is the JSON view of a Result.
type Summary struct {
	RunID      string          `json:"run_id"`
	Symbol     string          `json:"symbol"`
	Interval   string          `json:"interval"`
	Outcome    Outcome         `json:"outcome"`
	Message    string          `json:"message"`
	Signal     bool            `json:"signal"`
	Price      float64         `json:"price,omitempty"`
	Conditions map[string]bool `json:"conditions,omitempty"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Summary flattens the result for status endpoints and logs.
func (r *Result) Summary() Summary {
	s := Summary{
		RunID:      r.RunID,
		Symbol:     r.Symbol,
		Interval:   r.Interval.String(),
		Outcome:    r.Outcome,
		Message:    r.Message(),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	if r.Evaluation != nil {
		s.Signal = r.Evaluation.Signal
		s.Price = r.Evaluation.CurrentPrice
		s.Conditions = make(map[string]bool, len(r.Evaluation.Conditions))
		for _, c := range r.Evaluation.Conditions {
			s.Conditions[string(c.Name)] = c.Met
		}
	}
	return s
}

// classify maps a stage error to its outcome; unknown errors count as compute failures.
func classify(err error) Outcome {
	var (
		fe *model.FetchError
		ne *model.NotifyError
	)
	switch {
	case errors.As(err, &fe):
		return OutcomeFetchFailed
	case errors.As(err, &ne):
		return OutcomeNotifyFailed
	default:
		return OutcomeComputeFailed
	}
}
