package strategy

import "CandleAlert/internal/model"

// conditionFunc decides one condition from the latest row and the row before it.
// Comparisons involving NaN are false, so undefined indicators never satisfy a condition.
type conditionFunc func(latest, previous model.IndicatorRow) bool

type condition struct {
	name  model.ConditionName
	label string
	check conditionFunc
}

// conditions lists the rules in report order. Labels are the checklist text of the alert.
var conditions = []condition{
	{model.CondPriceAboveMA20, "Price crossed above MA20", priceCrossedAboveMA20},
	{model.CondPriceAboveMA50, "Price above MA50", priceAboveMA50},
	{model.CondPriceAboveMA200, "Price above MA200", priceAboveMA200},
	{model.CondVolumeAboveAvg, "Volume above average", volumeAboveAverage},
	{model.CondStochKAboveD, "Stochastic K above D", stochKAboveD},
	{model.CondRSIStochKAboveD, "RSI Stochastic K above D", rsiStochKAboveD},
}

// priceCrossedAboveMA20 requires a fresh upward crossing, unlike the MA50 and MA200
// rules which only look at the latest row.
func priceCrossedAboveMA20(latest, previous model.IndicatorRow) bool {
	return latest.Close > latest.MA20 && previous.Close <= previous.MA20
}

func priceAboveMA50(latest, _ model.IndicatorRow) bool {
	return latest.Close > latest.MA50
}

func priceAboveMA200(latest, _ model.IndicatorRow) bool {
	return latest.Close > latest.MA200
}

func volumeAboveAverage(latest, _ model.IndicatorRow) bool {
	return latest.Volume > latest.AvgVolume
}

func stochKAboveD(latest, _ model.IndicatorRow) bool {
	return latest.K > latest.D
}

func rsiStochKAboveD(latest, _ model.IndicatorRow) bool {
	return latest.RSIK > latest.RSID
}

// Labels returns the checklist label of every condition in report order.
func Labels() []string {
	out := make([]string, len(conditions))
	for i, c := range conditions {
		out[i] = c.label
	}
	return out
}
