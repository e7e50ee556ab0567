package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"CandleAlert/internal/collector"
	"CandleAlert/internal/model"
	"CandleAlert/internal/recorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// breakoutCandles is a wavy uptrend that dips below MA20 on the second-to-last
// candle and breaks out on the last one with heavy volume. Every condition holds
// on the final row.
func breakoutCandles(n int) []model.Candle {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + 0.5*float64(i) + 2*math.Sin(float64(i)*0.7)
	}
	closes[n-2] = closes[n-3] - 25
	closes[n-1] = closes[n-3] + 20

	candles := make([]model.Candle, n)
	for i, c := range closes {
		candles[i] = model.Candle{
			Time:   start.Add(time.Duration(i) * 15 * time.Minute),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	candles[n-1].Volume = 5000
	return candles
}

type fakeNotifier struct {
	err   error
	evals []*model.Evaluation
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Notify(_ context.Context, eval *model.Evaluation) error {
	f.evals = append(f.evals, eval)
	if f.err != nil {
		return &model.NotifyError{Channel: f.Name(), Err: f.err}
	}
	return nil
}

type panicNotifier struct{}

func (panicNotifier) Name() string { return "panic" }

func (panicNotifier) Notify(context.Context, *model.Evaluation) error { panic("nil map write") }

type memRecorder struct {
	recorder.NoopRecorder
	runs []recorder.RunRecord
}

func (m *memRecorder) RecordRun(_ context.Context, rec *recorder.RunRecord) error {
	m.runs = append(m.runs, *rec)
	return nil
}

type RunnerTestSuite struct {
	suite.Suite
	notifier *fakeNotifier
	recorder *memRecorder
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (suite *RunnerTestSuite) SetupTest() {
	suite.notifier = &fakeNotifier{}
	suite.recorder = &memRecorder{}
}

func (suite *RunnerTestSuite) runner(f collector.Fetcher) *Runner {
	col := collector.NewCollector(f, "BTCUSDT", model.Interval15Min, 220, nil)
	r := NewRunner(col, suite.notifier, suite.recorder, nil)
	r.newID = func() string { return "run-test" }
	return r
}

func (suite *RunnerTestSuite) TestAlertSent() {
	res := suite.runner(&collector.MockFetcher{Candles: breakoutCandles(220)}).Run(context.Background())

	suite.Equal(OutcomeAlertSent, res.Outcome)
	suite.NoError(res.Err)
	suite.Equal("Alert sent successfully!", res.Message())
	suite.False(res.Failed())

	suite.Require().Len(suite.notifier.evals, 1)
	eval := suite.notifier.evals[0]
	suite.True(eval.Signal)
	suite.False(eval.EvaluatedAt.IsZero())
	for _, c := range eval.Conditions {
		suite.True(c.Met, c.Name)
	}

	suite.Require().Len(suite.recorder.runs, 1)
	rec := suite.recorder.runs[0]
	suite.Equal("run-test", rec.RunID)
	suite.Equal("alert_sent", rec.Outcome)
	suite.True(rec.Signal)
	suite.Equal(eval.CurrentPrice, rec.Price)
}

func (suite *RunnerTestSuite) TestNoSignal() {
	candles := breakoutCandles(220)
	candles[len(candles)-1].Volume = 900

	res := suite.runner(&collector.MockFetcher{Candles: candles}).Run(context.Background())

	suite.Equal(OutcomeNoSignal, res.Outcome)
	suite.Equal("No signal triggered.", res.Message())
	suite.Empty(suite.notifier.evals)
	suite.Require().NotNil(res.Evaluation)
	suite.False(res.Evaluation.ConditionMap()[model.CondVolumeAboveAvg])
}

func (suite *RunnerTestSuite) TestFetchFailed() {
	res := suite.runner(&collector.MockFetcher{Err: errors.New("i/o timeout")}).Run(context.Background())

	suite.Equal(OutcomeFetchFailed, res.Outcome)
	suite.True(res.Failed())
	suite.Equal("Error occurred: fetch candles from mock: i/o timeout", res.Message())
	suite.Empty(suite.notifier.evals)
	suite.Require().Len(suite.recorder.runs, 1)
	suite.Equal("fetch_failed", suite.recorder.runs[0].Outcome)
	suite.Zero(suite.recorder.runs[0].Price)
}

func (suite *RunnerTestSuite) TestTooFewRows() {
	one := breakoutCandles(220)[:1]
	res := suite.runner(&collector.MockFetcher{Candles: one}).Run(context.Background())

	suite.Equal(OutcomeComputeFailed, res.Outcome)
	var ce *model.ComputeError
	suite.True(errors.As(res.Err, &ce))
	suite.Empty(suite.notifier.evals)
}

func (suite *RunnerTestSuite) TestNotifyFailed() {
	suite.notifier.err = errors.New("status 401")
	res := suite.runner(&collector.MockFetcher{Candles: breakoutCandles(220)}).Run(context.Background())

	suite.Equal(OutcomeNotifyFailed, res.Outcome)
	suite.Contains(res.Message(), "notify via fake: status 401")
	suite.Require().NotNil(res.Evaluation)
	suite.True(res.Evaluation.Signal)
}

func (suite *RunnerTestSuite) TestPanicBecomesComputeFailure() {
	col := collector.NewCollector(&collector.MockFetcher{Candles: breakoutCandles(220)}, "BTCUSDT", model.Interval15Min, 220, nil)
	r := NewRunner(col, panicNotifier{}, suite.recorder, nil)

	var res *Result
	suite.NotPanics(func() { res = r.Run(context.Background()) })
	suite.Equal(OutcomeComputeFailed, res.Outcome)
	suite.Contains(res.Err.Error(), "nil map write")
	suite.Len(suite.recorder.runs, 1)
}

func TestResultSummary(t *testing.T) {
	res := &Result{
		RunID:    "r1",
		Symbol:   "BTCUSDT",
		Interval: model.Interval15Min,
		Outcome:  OutcomeNoSignal,
		Evaluation: &model.Evaluation{
			CurrentPrice: 62000,
			Conditions:   []model.Condition{{Name: model.CondPriceAboveMA50, Met: true}},
		},
	}
	s := res.Summary()
	assert.Equal(t, "15m", s.Interval)
	assert.Equal(t, "No signal triggered.", s.Message)
	assert.Equal(t, 62000.0, s.Price)
	assert.Equal(t, map[string]bool{"price_above_ma50": true}, s.Conditions)
	assert.Empty(t, s.Error)
}

func TestClassify(t *testing.T) {
	require.Equal(t, OutcomeFetchFailed, classify(&model.FetchError{Source: "x", Err: errors.New("e")}))
	require.Equal(t, OutcomeNotifyFailed, classify(&model.NotifyError{Channel: "x", Err: errors.New("e")}))
	require.Equal(t, OutcomeComputeFailed, classify(errors.New("anything else")))
}
