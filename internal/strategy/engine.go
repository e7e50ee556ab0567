package strategy

import (
	"errors"
	"fmt"

	"CandleAlert/internal/model"
)

// ErrNotEnoughRows is wrapped in a ComputeError when the series cannot supply
// both a latest and a previous row.
var ErrNotEnoughRows = errors.New("not enough rows to evaluate")

// Evaluate computes every condition on the last two rows and their logical AND.
// It has no side effects; EvaluatedAt is left for the caller to stamp.
func Evaluate(rows []model.IndicatorRow) (*model.Evaluation, error) {
	if len(rows) < 2 {
		return nil, &model.ComputeError{Err: fmt.Errorf("%w: have %d, need 2", ErrNotEnoughRows, len(rows))}
	}
	latest := rows[len(rows)-1]
	previous := rows[len(rows)-2]

	eval := &model.Evaluation{
		Signal:       true,
		Conditions:   make([]model.Condition, 0, len(conditions)),
		CurrentPrice: latest.Close,
		Latest:       latest,
		Previous:     previous,
	}
	for _, c := range conditions {
		met := c.check(latest, previous)
		eval.Conditions = append(eval.Conditions, model.Condition{Name: c.name, Label: c.label, Met: met})
		eval.Signal = eval.Signal && met
	}
	return eval, nil
}
