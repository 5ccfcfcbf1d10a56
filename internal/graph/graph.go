package graph

// Position is presentation-only canvas placement. It never affects
// compilation.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one placed block instance.
type Node struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Position Position       `json:"position"`
	Params   map[string]any `json:"params"`
}

// Edge is a directed connection between two node ports.
type Edge struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	SourcePort string `json:"source_port"`
	Target     string `json:"target"`
	TargetPort string `json:"target_port"`
}

// Graph is an immutable snapshot of the store, serializable to JSON.
// Save/load round-trips reproduce node ids, params and the edge set exactly.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
