package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CandleAlert/internal/model"
)

// RunRecord is the persisted summary of one pipeline run.
type RunRecord struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Symbol     string
	Interval   string
	Outcome    string
	Signal     bool
	Price      float64 // latest close; zero when the run failed before evaluation
	Conditions map[model.ConditionName]bool
	Error      string
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(ctx context.Context, rec *RunRecord) error
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}

func encodeConditions(m map[model.ConditionName]bool) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode conditions: %w", err)
	}
	return string(b), nil
}

func decodeConditions(s string) (map[model.ConditionName]bool, error) {
	if s == "" {
		return nil, nil
	}
	m := map[model.ConditionName]bool{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	return m, nil
}
