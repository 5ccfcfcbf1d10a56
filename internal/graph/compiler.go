package graph

import (
	"strconv"
	"strings"

	"sentenex/internal/block"
	"sentenex/internal/strategy"
)

// Compile flattens a graph into an execution config. It is pure and total:
// malformed parameters are skipped per field and the field keeps its default,
// so compilation always yields a usable config. Nodes are visited in
// insertion order and later nodes of the same kind overwrite earlier ones.
func Compile(g Graph) strategy.ExecutionConfig {
	cfg := strategy.DefaultConfig()

	for _, n := range g.Nodes {
		switch n.Kind {
		case "Pool":
			if pool := block.StringParam(n.Params, "pool", ""); pool != "" {
				cfg.Token = strings.SplitN(pool, "/", 2)[0]
			}
		case "Payment":
			if sc := block.StringParam(n.Params, "stablecoin", ""); sc != "" {
				cfg.Stablecoin = sc
			}
			cfg.PortfolioAmount = parseAmount(n.Params["amount"])
		case "InvestmentRisk":
			// Invalid levels are ignored, not errored.
			if lvl := strategy.RiskLevel(block.StringParam(n.Params, "riskLevel", "")); lvl.Valid() {
				cfg.RiskLevel = lvl
			}
		case "StopLoss":
			if v, ok := numberOf(n.Params, "value"); ok {
				cfg.StopLoss = strconv.FormatFloat(100-v, 'f', 1, 64)
			}
		case "TakeProfit":
			if v, ok := numberOf(n.Params, "value"); ok {
				cfg.TakeProfit = strconv.FormatFloat(100+v, 'f', 1, 64)
			}
		default:
			if name, ok := block.ModelDisplayName(n.Kind); ok {
				cfg.Model = name
			} else if name, ok := block.AlgoDisplayName(n.Kind); ok {
				cfg.QuantAlgo = name
			}
		}
	}
	return cfg
}

// parseAmount reads a payment amount as a non-negative decimal, falling back
// to the documented default on anything unparsable.
func parseAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		if n >= 0 {
			return n
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil && f >= 0 {
			return f
		}
	}
	return strategy.DefaultPortfolioAmount
}

func numberOf(params map[string]any, key string) (float64, bool) {
	switch n := params[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
