package block

import (
	"fmt"
)

// Category groups block kinds in the palette.
type Category string

const (
	CategoryTrigger     Category = "trigger"
	CategoryMarket      Category = "market"
	CategoryIndicator   Category = "indicator"
	CategoryCondition   Category = "condition"
	CategoryAction      Category = "action"
	CategoryRisk        Category = "risk"
	CategoryUtility     Category = "utility"
	CategoryAIModel     Category = "ai-model"
	CategorySocialMedia Category = "social-media"
	CategoryAlgorithm   Category = "algorithm"
	CategoryInvestment  Category = "investment"
)

// Kind is a catalog entry describing one block type: its category, ordered
// ports, default parameters and the schema used to validate user edits.
// Entries are immutable; the registry is read-only after process start.
type Kind struct {
	Name          string
	Category      Category
	Label         string
	InputPorts    []string
	OutputPorts   []string
	DefaultParams map[string]any
	ParamSpecs    []ParamSpec
}

// ErrUnknownKind is returned by KindOf for type names not in the catalog.
type ErrUnknownKind struct {
	Name string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown block kind %q", e.Name)
}

// KindOf looks up a catalog entry by type name.
func KindOf(name string) (Kind, error) {
	k, ok := catalog[name]
	if !ok {
		return Kind{}, &ErrUnknownKind{Name: name}
	}
	return k, nil
}

// Kinds returns the full catalog in stable palette order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(catalogOrder))
	for _, name := range catalogOrder {
		out = append(out, catalog[name])
	}
	return out
}

// ModelDisplayName maps an AI-model block kind to the model name the
// execution backend expects. ok is false for non-model kinds.
func ModelDisplayName(kindName string) (string, bool) {
	name, ok := modelNames[kindName]
	return name, ok
}

// AlgoDisplayName maps a quant-algorithm block kind to the algorithm name the
// execution backend expects. ok is false for non-algorithm kinds.
func AlgoDisplayName(kindName string) (string, bool) {
	name, ok := algoNames[kindName]
	return name, ok
}

var modelNames = map[string]string{
	"DeepSeekChat": "DeepSeek Chat V3.1",
	"Qwen3Max":     "Qwen3 Max",
	"ClaudeSonnet": "Claude Sonnet 4.5",
	"Grok4":        "Grok 4",
	"GeminiPro":    "Gemini 2.5 Pro",
	"ChatGPT":      "GPT-5",
}

var algoNames = map[string]string{
	"FundingRateArbitrage":  "Funding Rate Arbitrage",
	"MarketMaking":          "Market Making",
	"StatisticalArbitrage":  "Statistical Arbitrage (Pairs / Cointegration)",
	"TrendFollowing":        "Trend Following (Momentum Models)",
	"PortfolioOptimization": "Portfolio Optimization / Risk Parity",
	"OrderBookImbalance":    "Order Book Imbalance Models",
	"MeanReversion":         "Mean Reversion",
	"SignalEnsemble":        "Signal Ensemble / Meta-Strategies",
	"LSTM":                  "LSTM / GRU Time-Series Models",
	"ReinforcementLearning": "Reinforcement Learning (PPO / DQN)",
}

var (
	catalog      map[string]Kind
	catalogOrder []string
)

func register(k Kind) {
	if k.DefaultParams == nil {
		k.DefaultParams = map[string]any{}
	}
	catalog[k.Name] = k
	catalogOrder = append(catalogOrder, k.Name)
}

func init() {
	catalog = make(map[string]Kind)

	// Triggers
	register(Kind{
		Name: "OnCandleClose", Category: CategoryTrigger, Label: "On Candle Close",
		OutputPorts:   []string{"trigger"},
		DefaultParams: map[string]any{"timeframe": "15m"},
		ParamSpecs: []ParamSpec{
			{Key: "timeframe", Type: ParamSelect, Options: []string{"1m", "5m", "15m", "1h", "4h", "1d"}},
		},
	})
	register(Kind{
		Name: "OnPriceUpdate", Category: CategoryTrigger, Label: "On Price Update",
		OutputPorts: []string{"trigger"},
	})

	// Market data
	register(Kind{
		Name: "Price", Category: CategoryMarket, Label: "Price",
		InputPorts: []string{"trigger"}, OutputPorts: []string{"price"},
		DefaultParams: map[string]any{"priceType": "close"},
		ParamSpecs: []ParamSpec{
			{Key: "priceType", Type: ParamSelect, Options: []string{"open", "high", "low", "close"}},
		},
	})
	register(Kind{
		Name: "Volume", Category: CategoryMarket, Label: "Volume",
		InputPorts: []string{"trigger"}, OutputPorts: []string{"volume"},
	})
	register(Kind{
		Name: "Pool", Category: CategoryMarket, Label: "Pool",
		OutputPorts:   []string{"pair"},
		DefaultParams: map[string]any{"pool": "ETH/USD"},
		ParamSpecs: []ParamSpec{
			{Key: "pool", Type: ParamText},
		},
	})

	// Indicators
	register(Kind{
		Name: "SMA", Category: CategoryIndicator, Label: "SMA",
		InputPorts: []string{"price"}, OutputPorts: []string{"value"},
		DefaultParams: map[string]any{"period": 20.0},
		ParamSpecs:    []ParamSpec{{Key: "period", Type: ParamNumber}},
	})
	register(Kind{
		Name: "EMA", Category: CategoryIndicator, Label: "EMA",
		InputPorts: []string{"price"}, OutputPorts: []string{"value"},
		DefaultParams: map[string]any{"period": 20.0},
		ParamSpecs:    []ParamSpec{{Key: "period", Type: ParamNumber}},
	})
	register(Kind{
		Name: "RSI", Category: CategoryIndicator, Label: "RSI",
		InputPorts: []string{"price"}, OutputPorts: []string{"value"},
		DefaultParams: map[string]any{"period": 14.0},
		ParamSpecs:    []ParamSpec{{Key: "period", Type: ParamNumber}},
	})
	register(Kind{
		Name: "MACD", Category: CategoryIndicator, Label: "MACD",
		InputPorts: []string{"price"}, OutputPorts: []string{"macd", "signal", "histogram"},
		DefaultParams: map[string]any{"fast": 12.0, "slow": 26.0, "signal": 9.0},
		ParamSpecs: []ParamSpec{
			{Key: "fast", Type: ParamNumber},
			{Key: "slow", Type: ParamNumber},
			{Key: "signal", Type: ParamNumber},
		},
	})

	// Conditions
	for _, c := range []struct{ name, label string }{
		{"GreaterThan", "Greater Than"},
		{"LessThan", "Less Than"},
		{"CrossesAbove", "Crosses Above"},
		{"CrossesBelow", "Crosses Below"},
	} {
		register(Kind{
			Name: c.name, Category: CategoryCondition, Label: c.label,
			InputPorts: []string{"a", "b"}, OutputPorts: []string{"boolean"},
		})
	}

	// Actions
	register(Kind{
		Name: "Buy", Category: CategoryAction, Label: "Buy",
		InputPorts: []string{"boolean"}, OutputPorts: []string{"order"},
		DefaultParams: map[string]any{"amountType": "percent", "amount": 10.0},
		ParamSpecs: []ParamSpec{
			{Key: "amountType", Type: ParamSelect, Options: []string{"percent", "fixed"}},
			{Key: "amount", Type: ParamNumber},
		},
	})
	register(Kind{
		Name: "Sell", Category: CategoryAction, Label: "Sell",
		InputPorts: []string{"boolean"}, OutputPorts: []string{"order"},
		DefaultParams: map[string]any{"amountType": "percent", "amount": 10.0},
		ParamSpecs: []ParamSpec{
			{Key: "amountType", Type: ParamSelect, Options: []string{"percent", "fixed"}},
			{Key: "amount", Type: ParamNumber},
		},
	})

	// Risk management
	register(Kind{
		Name: "StopLoss", Category: CategoryRisk, Label: "Stop Loss",
		InputPorts: []string{"order"}, OutputPorts: []string{"order"},
		DefaultParams: map[string]any{"type": "percent", "value": 2.0},
		ParamSpecs: []ParamSpec{
			{Key: "type", Type: ParamSelect, Options: []string{"percent", "fixed"}},
			{Key: "value", Type: ParamNumber},
		},
	})
	register(Kind{
		Name: "TakeProfit", Category: CategoryRisk, Label: "Take Profit",
		InputPorts: []string{"order"}, OutputPorts: []string{"order"},
		DefaultParams: map[string]any{"type": "percent", "value": 4.0},
		ParamSpecs: []ParamSpec{
			{Key: "type", Type: ParamSelect, Options: []string{"percent", "fixed"}},
			{Key: "value", Type: ParamNumber},
		},
	})
	register(Kind{
		Name: "MaxPositionSize", Category: CategoryRisk, Label: "Max Position Size",
		InputPorts: []string{"order"}, OutputPorts: []string{"order"},
		DefaultParams: map[string]any{"percent": 50.0},
		ParamSpecs:    []ParamSpec{{Key: "percent", Type: ParamNumber}},
	})
	register(Kind{
		Name: "InvestmentRisk", Category: CategoryRisk, Label: "Investment Risk",
		OutputPorts:   []string{"risk"},
		DefaultParams: map[string]any{"riskLevel": "medium"},
		ParamSpecs: []ParamSpec{
			{Key: "riskLevel", Type: ParamSelect, Options: []string{"safe", "medium", "aggressive"}},
		},
	})

	// Utility
	register(Kind{
		Name: "Cooldown", Category: CategoryUtility, Label: "Cooldown",
		InputPorts: []string{"order"}, OutputPorts: []string{"order"},
		DefaultParams: map[string]any{"candles": 5.0},
		ParamSpecs:    []ParamSpec{{Key: "candles", Type: ParamNumber}},
	})

	// Investment
	register(Kind{
		Name: "Payment", Category: CategoryInvestment, Label: "Payment",
		OutputPorts:   []string{"funding"},
		DefaultParams: map[string]any{"stablecoin": "USDC", "amount": "1000"},
		ParamSpecs: []ParamSpec{
			{Key: "stablecoin", Type: ParamSelect, Options: []string{"USDC", "USDT", "DAI"}},
			{Key: "amount", Type: ParamText},
		},
	})

	// AI models
	for _, m := range []struct{ name, label string }{
		{"DeepSeekChat", "DeepSeek Chat"},
		{"Qwen3Max", "Qwen3 Max"},
		{"ClaudeSonnet", "Claude Sonnet"},
		{"Grok4", "Grok 4"},
		{"GeminiPro", "Gemini Pro"},
		{"ChatGPT", "ChatGPT"},
	} {
		register(Kind{
			Name: m.name, Category: CategoryAIModel, Label: m.label,
			InputPorts: []string{"signal"}, OutputPorts: []string{"decision"},
			ParamSpecs: []ParamSpec{
				{Key: "model", Type: ParamText},
				{Key: "temperature", Type: ParamNumber},
			},
		})
	}

	// Quant algorithms
	for _, a := range []struct {
		name  string
		specs []ParamSpec
	}{
		{"FundingRateArbitrage", nil},
		{"MarketMaking", []ParamSpec{
			{Key: "spread", Type: ParamNumber},
			{Key: "inventory", Type: ParamNumber},
		}},
		{"StatisticalArbitrage", []ParamSpec{
			{Key: "lookback", Type: ParamNumber},
			{Key: "threshold", Type: ParamNumber},
		}},
		{"TrendFollowing", []ParamSpec{
			{Key: "period", Type: ParamNumber},
			{Key: "strength", Type: ParamNumber},
		}},
		{"PortfolioOptimization", []ParamSpec{
			{Key: "rebalancePeriod", Type: ParamNumber},
			{Key: "riskBudget", Type: ParamNumber},
		}},
		{"OrderBookImbalance", []ParamSpec{
			{Key: "depth", Type: ParamNumber},
			{Key: "threshold", Type: ParamNumber},
		}},
		{"MeanReversion", []ParamSpec{
			{Key: "period", Type: ParamNumber},
			{Key: "zScore", Type: ParamNumber},
		}},
		{"SignalEnsemble", []ParamSpec{
			{Key: "method", Type: ParamSelect, Options: []string{"weighted", "majority", "average"}},
		}},
		{"LSTM", []ParamSpec{
			{Key: "layers", Type: ParamNumber},
			{Key: "neurons", Type: ParamNumber},
			{Key: "lookback", Type: ParamNumber},
		}},
		{"ReinforcementLearning", []ParamSpec{
			{Key: "algorithm", Type: ParamSelect, Options: []string{"PPO", "DQN", "A3C"}},
			{Key: "episodes", Type: ParamNumber},
		}},
	} {
		register(Kind{
			Name: a.name, Category: CategoryAlgorithm, Label: algoNames[a.name],
			InputPorts: []string{"signal"}, OutputPorts: []string{"decision"},
			ParamSpecs: a.specs,
		})
	}

	// Social media
	register(Kind{
		Name: "X", Category: CategorySocialMedia, Label: "X",
		OutputPorts: []string{"sentiment"},
		ParamSpecs:  []ParamSpec{{Key: "keywords", Type: ParamText}},
	})
	register(Kind{
		Name: "Reddit", Category: CategorySocialMedia, Label: "Reddit",
		OutputPorts: []string{"sentiment"},
		ParamSpecs:  []ParamSpec{{Key: "subreddits", Type: ParamText}},
	})
	register(Kind{
		Name: "Telegram", Category: CategorySocialMedia, Label: "Telegram",
		OutputPorts: []string{"sentiment"},
		ParamSpecs:  []ParamSpec{{Key: "channels", Type: ParamText}},
	})
}
