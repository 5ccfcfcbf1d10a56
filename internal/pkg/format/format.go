package format

import (
	"fmt"
	"strings"
)

// Float renders a value with at most decimals places, trimming trailing
// zeros.
func Float(val float64, decimals int) string {
	if decimals < 0 {
		decimals = 4
	}
	out := fmt.Sprintf("%.*f", decimals, val)
	out = strings.TrimRight(strings.TrimRight(out, "0"), ".")
	if out == "" || out == "-" {
		return "0"
	}
	return out
}

// SignedUSD renders a P&L amount with an explicit sign.
func SignedUSD(val float64) string {
	return fmt.Sprintf("%+.2f", val)
}

// SignedPercent renders a P&L ratio with an explicit sign.
func SignedPercent(val float64) string {
	return fmt.Sprintf("%+.2f%%", val)
}
