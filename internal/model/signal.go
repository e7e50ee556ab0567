package model

import "time"

// ConditionName identifies one of the signal conditions.
type ConditionName string

const (
	CondPriceAboveMA20  ConditionName = "price_above_ma20"
	CondPriceAboveMA50  ConditionName = "price_above_ma50"
	CondPriceAboveMA200 ConditionName = "price_above_ma200"
	CondVolumeAboveAvg  ConditionName = "volume_above_average"
	CondStochKAboveD    ConditionName = "stoch_k_above_d"
	CondRSIStochKAboveD ConditionName = "rsi_stoch_k_above_d"
)

// ConditionNames lists every condition in report order.
var ConditionNames = []ConditionName{
	CondPriceAboveMA20,
	CondPriceAboveMA50,
	CondPriceAboveMA200,
	CondVolumeAboveAvg,
	CondStochKAboveD,
	CondRSIStochKAboveD,
}

// Condition is the evaluated truth value of a single named condition.
type Condition struct {
	Name  ConditionName
	Label string
	Met   bool
}

// Evaluation is the output of the signal evaluator for the latest row.
type Evaluation struct {
	Signal       bool
	Conditions   []Condition
	CurrentPrice float64
	Latest       IndicatorRow
	Previous     IndicatorRow
	EvaluatedAt  time.Time
}

// ConditionMap returns the conditions keyed by name.
func (e *Evaluation) ConditionMap() map[ConditionName]bool {
	m := make(map[ConditionName]bool, len(e.Conditions))
	for _, c := range e.Conditions {
		m[c.Name] = c.Met
	}
	return m
}
