package strategy

// RiskLevel is the editor-facing risk vocabulary. The execution backend uses
// a different vocabulary; see BackendRiskLevel.
type RiskLevel string

const (
	RiskSafe       RiskLevel = "safe"
	RiskMedium     RiskLevel = "medium"
	RiskAggressive RiskLevel = "aggressive"
)

// Valid reports whether l is one of the three allowed levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskSafe, RiskMedium, RiskAggressive:
		return true
	}
	return false
}

// BackendRiskLevel maps the editor vocabulary to the vocabulary the analyze
// endpoint expects.
func (l RiskLevel) BackendRiskLevel() string {
	switch l {
	case RiskSafe:
		return "conservative"
	case RiskAggressive:
		return "aggressive"
	default:
		return "moderate"
	}
}

// ExecutionConfig is the flat record compiled from a strategy graph.
// Immutable once produced; a new compile produces a new value.
type ExecutionConfig struct {
	Token           string    `json:"token"`
	Stablecoin      string    `json:"stablecoin"`
	PortfolioAmount float64   `json:"portfolio_amount"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Model           string    `json:"model,omitempty"`
	QuantAlgo       string    `json:"quant_algo,omitempty"`
	StopLoss        string    `json:"stop_loss,omitempty"`
	TakeProfit      string    `json:"take_profit,omitempty"`
}

const (
	DefaultToken           = "BTC"
	DefaultStablecoin      = "USDC"
	DefaultPortfolioAmount = 1000
)

// DefaultConfig returns the config an empty graph compiles to.
func DefaultConfig() ExecutionConfig {
	return ExecutionConfig{
		Token:           DefaultToken,
		Stablecoin:      DefaultStablecoin,
		PortfolioAmount: DefaultPortfolioAmount,
		RiskLevel:       RiskMedium,
	}
}
