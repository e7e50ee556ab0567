package model

import "fmt"

// FetchError reports a failure retrieving or parsing candles.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch candles from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ComputeError reports a failure computing indicators or evaluating the signal.
type ComputeError struct {
	Err error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute signal: %v", e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }

// NotifyError reports a failure submitting an alert through a channel.
type NotifyError struct {
	Channel string
	Err     error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify via %s: %v", e.Channel, e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }
