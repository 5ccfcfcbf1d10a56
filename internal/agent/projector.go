package agent

// PollResult is one agent iteration after decoding.
type PollResult struct {
	Iteration           int      `json:"iteration"`
	Timestamp           string   `json:"timestamp"`
	Price               float64  `json:"price"`
	Recommendation      string   `json:"recommendation"`
	PositionStatus      string   `json:"position_status,omitempty"`
	PnLUSD              *float64 `json:"pnl_usd,omitempty"`
	PnLPct              *float64 `json:"pnl_pct,omitempty"`
	StopLossTriggered   bool     `json:"stop_loss_triggered"`
	TakeProfitTriggered bool     `json:"take_profit_triggered"`
	AgentStatus         string   `json:"agent_status"`
}

// Marker is a chart annotation derived from one iteration. Markers are
// append-only and keyed by iteration; they are never mutated after creation.
type Marker struct {
	Iteration int     `json:"iteration"`
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
	Shape     string  `json:"shape"`
	Placement string  `json:"placement"`
	Color     string  `json:"color"`
	Label     string  `json:"label"`
}

// Projector folds poll results into cumulative P&L and chart markers,
// strictly in iteration order.
//
// A position realizes its P&L exactly once, on EXIT. While a position is
// open the reported value is carried as unrealized; the displayed total is
// realized + unrealized but the realized total is untouched until the EXIT
// arrives. An EXIT without a matching ENTRY in the log still realizes its
// reported P&L.
type Projector struct {
	initialInvestment float64
	realized          float64
	unrealized        float64
	markers           []Marker
}

func NewProjector(initialInvestment float64) *Projector {
	return &Projector{initialInvestment: initialInvestment}
}

// Apply folds one result into the running totals and appends its marker, if
// the iteration produces one.
func (p *Projector) Apply(r PollResult) {
	if r.PositionStatus == "EXIT" {
		if r.PnLUSD != nil {
			p.realized += *r.PnLUSD
		}
		p.unrealized = 0
	} else if r.PnLUSD != nil {
		p.unrealized = *r.PnLUSD
	}
	if m, ok := markerFor(r); ok {
		p.markers = append(p.markers, m)
	}
}

// Realized is the running total of closed-position P&L.
func (p *Projector) Realized() float64 { return p.realized }

// Displayed is realized plus the open position's unrealized P&L.
func (p *Projector) Displayed() float64 { return p.realized + p.unrealized }

// PortfolioValue is the initial investment plus displayed P&L.
func (p *Projector) PortfolioValue() float64 { return p.initialInvestment + p.Displayed() }

// Markers returns a copy of the accumulated chart annotations.
func (p *Projector) Markers() []Marker {
	out := make([]Marker, len(p.markers))
	copy(out, p.markers)
	return out
}

func markerFor(r PollResult) (Marker, bool) {
	m := Marker{
		Iteration: r.Iteration,
		Timestamp: r.Timestamp,
		Price:     r.Price,
	}
	switch {
	case r.PositionStatus == "ENTRY" && r.Recommendation == "LONG":
		m.Shape, m.Placement, m.Color, m.Label = "arrowUp", "belowBar", "#26a69a", "LONG"
	case r.PositionStatus == "ENTRY" && r.Recommendation == "SHORT":
		m.Shape, m.Placement, m.Color, m.Label = "arrowDown", "aboveBar", "#ef5350", "SHORT"
	case r.PositionStatus == "EXIT":
		m.Shape, m.Placement, m.Color, m.Label = "square", "inBar", "#ffa726", "EXIT"
	default:
		return Marker{}, false
	}
	return m, true
}
