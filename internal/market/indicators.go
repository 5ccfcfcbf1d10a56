package market

import (
	"fmt"

	talib "github.com/markcheno/go-talib"
)

// IndicatorSpec selects one indicator series to compute over a candle run.
type IndicatorSpec struct {
	Kind   string
	Period int
	Fast   int
	Slow   int
	Signal int
}

// Series is a named value-per-bar overlay.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ComputeIndicators evaluates each spec over the close prices. Specs the
// candle run is too short for are skipped; the talib routines pad the warmup
// region with zeros, which the chart treats as gaps.
func ComputeIndicators(candles []Candle, specs []IndicatorSpec) []Series {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	var out []Series
	for _, spec := range specs {
		switch spec.Kind {
		case "SMA":
			if enough(len(closes), spec.Period) {
				out = append(out, Series{Name: fmt.Sprintf("SMA(%d)", spec.Period), Values: talib.Sma(closes, spec.Period)})
			}
		case "EMA":
			if enough(len(closes), spec.Period) {
				out = append(out, Series{Name: fmt.Sprintf("EMA(%d)", spec.Period), Values: talib.Ema(closes, spec.Period)})
			}
		case "RSI":
			if enough(len(closes), spec.Period) {
				out = append(out, Series{Name: fmt.Sprintf("RSI(%d)", spec.Period), Values: talib.Rsi(closes, spec.Period)})
			}
		case "MACD":
			if spec.Fast > 0 && spec.Slow > spec.Fast && spec.Signal > 0 && len(closes) > spec.Slow+spec.Signal {
				macd, signal, hist := talib.Macd(closes, spec.Fast, spec.Slow, spec.Signal)
				out = append(out,
					Series{Name: fmt.Sprintf("MACD(%d,%d,%d)", spec.Fast, spec.Slow, spec.Signal), Values: macd},
					Series{Name: "MACD signal", Values: signal},
					Series{Name: "MACD hist", Values: hist},
				)
			}
		}
	}
	return out
}

func enough(n, period int) bool { return period > 0 && n > period }
