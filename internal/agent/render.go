package agent

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"sentenex/internal/pkg/format"
)

// FormatIterationTable renders the iteration log as a console table, used
// when dumping a finished session to the log.
func FormatIterationTable(results []PollResult) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Time", "Price", "Signal", "Position", "PnL (USD)", "PnL (%)"})
	for _, r := range results {
		pnlUSD, pnlPct := "-", "-"
		if r.PnLUSD != nil {
			pnlUSD = format.SignedUSD(*r.PnLUSD)
		}
		if r.PnLPct != nil {
			pnlPct = format.SignedPercent(*r.PnLPct)
		}
		pos := r.PositionStatus
		if pos == "" {
			pos = "-"
		}
		t.AppendRow(table.Row{r.Iteration, r.Timestamp, fmt.Sprintf("%.2f", r.Price), r.Recommendation, pos, pnlUSD, pnlPct})
	}
	return t.Render()
}
