package report

import (
	"fmt"
	"io"
	"math"

	"CandleAlert/internal/model"

	"github.com/olekukonko/tablewriter"
)

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

// detail shows the comparison behind a condition.
func detail(name model.ConditionName, latest, previous model.IndicatorRow) string {
	switch name {
	case model.CondPriceAboveMA20:
		return fmt.Sprintf("close %s > MA20 %s (prev %s <= %s)",
			num(latest.Close), num(latest.MA20), num(previous.Close), num(previous.MA20))
	case model.CondPriceAboveMA50:
		return fmt.Sprintf("close %s > MA50 %s", num(latest.Close), num(latest.MA50))
	case model.CondPriceAboveMA200:
		return fmt.Sprintf("close %s > MA200 %s", num(latest.Close), num(latest.MA200))
	case model.CondVolumeAboveAvg:
		return fmt.Sprintf("volume %s > avg %s", num(latest.Volume), num(latest.AvgVolume))
	case model.CondStochKAboveD:
		return fmt.Sprintf("K %s > D %s", num(latest.K), num(latest.D))
	case model.CondRSIStochKAboveD:
		return fmt.Sprintf("RSI K %s > RSI D %s", num(latest.RSIK), num(latest.RSID))
	}
	return ""
}

// WriteConditionTable renders every condition of eval with its operands.
func WriteConditionTable(w io.Writer, eval *model.Evaluation) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Condition", "Met", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)

	for _, c := range eval.Conditions {
		met := "no"
		if c.Met {
			met = "yes"
		}
		table.Append([]string{c.Label, met, detail(c.Name, eval.Latest, eval.Previous)})
	}
	signal := "no"
	if eval.Signal {
		signal = "YES"
	}
	table.SetFooter([]string{"Signal", signal, "price " + num(eval.CurrentPrice)})
	table.Render()
}
