package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"sentenex/internal/block"
)

// Store holds the graph being edited. All operations apply fully or are
// rejected before any mutation, so a failed edit never leaves the graph in a
// partial state. Safe for concurrent use; the HTTP editor drives it from
// multiple requests.
type Store struct {
	mu    sync.Mutex
	nodes []Node
	edges []Edge
}

func NewStore() *Store {
	return &Store{}
}

// AddNode instantiates a block of the given kind. Params are validated
// against the kind's schema and merged over its defaults; an unknown kind is
// refused so no node ever exists with undefined ports.
func (s *Store) AddNode(kindName string, params map[string]any, pos Position) (Node, error) {
	kind, err := block.KindOf(kindName)
	if err != nil {
		return Node{}, err
	}
	merged, err := kind.NormalizeParams(params)
	if err != nil {
		return Node{}, err
	}
	n := Node{
		ID:       uuid.NewString(),
		Kind:     kind.Name,
		Position: pos,
		Params:   merged,
	}
	s.mu.Lock()
	s.nodes = append(s.nodes, n)
	s.mu.Unlock()
	return cloneNode(n), nil
}

// UpdateNodeParams applies a partial parameter edit. Untouched keys keep
// their current values.
func (s *Store) UpdateNodeParams(id string, partial map[string]any) (Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.nodeIndex(id)
	if i < 0 {
		return Node{}, &NodeNotFoundError{ID: id}
	}
	kind, err := block.KindOf(s.nodes[i].Kind)
	if err != nil {
		return Node{}, err
	}
	normalized, err := kind.NormalizeParams(partial)
	if err != nil {
		return Node{}, err
	}
	// NormalizeParams fills defaults for omitted keys; only take the keys the
	// caller actually sent.
	for key := range partial {
		s.nodes[i].Params[key] = normalized[key]
	}
	return cloneNode(s.nodes[i]), nil
}

// RemoveNode deletes a node and every edge touching it.
func (s *Store) RemoveNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.nodeIndex(id)
	if i < 0 {
		return &NodeNotFoundError{ID: id}
	}
	s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)

	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	s.edges = kept
	return nil
}

// AddEdge connects two node ports. Self-loops and duplicate wiring are
// expected interaction noise and come back as typed errors, leaving the edge
// set unchanged.
func (s *Store) AddEdge(source, sourcePort, target, targetPort string) (Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if source == target {
		return Edge{}, &SelfLoopError{NodeID: source}
	}
	if s.nodeIndex(source) < 0 {
		return Edge{}, &NodeNotFoundError{ID: source}
	}
	if s.nodeIndex(target) < 0 {
		return Edge{}, &NodeNotFoundError{ID: target}
	}
	for _, e := range s.edges {
		if e.Source == source && e.SourcePort == sourcePort && e.Target == target && e.TargetPort == targetPort {
			return Edge{}, &DuplicateEdgeError{Source: source, SourcePort: sourcePort, Target: target, TargetPort: targetPort}
		}
	}
	e := Edge{
		ID:         uuid.NewString(),
		Source:     source,
		SourcePort: sourcePort,
		Target:     target,
		TargetPort: targetPort,
	}
	s.edges = append(s.edges, e)
	return e, nil
}

// RemoveEdge deletes one edge by id.
func (s *Store) RemoveEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.edges {
		if e.ID == id {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return nil
		}
	}
	return &EdgeNotFoundError{ID: id}
}

// Snapshot returns a deep copy of the current graph in insertion order.
func (s *Store) Snapshot() Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := Graph{
		Nodes: make([]Node, 0, len(s.nodes)),
		Edges: make([]Edge, 0, len(s.edges)),
	}
	for _, n := range s.nodes {
		g.Nodes = append(g.Nodes, cloneNode(n))
	}
	g.Edges = append(g.Edges, s.edges...)
	return g
}

// Load replaces the store contents with a previously saved graph. The whole
// graph is validated first; on any error the current contents are untouched.
func (s *Store) Load(g Graph) error {
	seen := make(map[string]bool, len(g.Nodes))
	nodes := make([]Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		kind, err := block.KindOf(n.Kind)
		if err != nil {
			return err
		}
		if n.ID == "" {
			return fmt.Errorf("node of kind %s has empty id", n.Kind)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %s", n.ID)
		}
		seen[n.ID] = true
		params, err := kind.NormalizeParams(n.Params)
		if err != nil {
			return err
		}
		nodes = append(nodes, Node{ID: n.ID, Kind: n.Kind, Position: n.Position, Params: params})
	}

	type wire struct{ s, sp, t, tp string }
	seenEdges := make(map[wire]bool, len(g.Edges))
	edges := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.Source == e.Target {
			return &SelfLoopError{NodeID: e.Source}
		}
		if !seen[e.Source] {
			return &NodeNotFoundError{ID: e.Source}
		}
		if !seen[e.Target] {
			return &NodeNotFoundError{ID: e.Target}
		}
		w := wire{e.Source, e.SourcePort, e.Target, e.TargetPort}
		if seenEdges[w] {
			return &DuplicateEdgeError{Source: e.Source, SourcePort: e.SourcePort, Target: e.Target, TargetPort: e.TargetPort}
		}
		seenEdges[w] = true
		edges = append(edges, e)
	}

	s.mu.Lock()
	s.nodes = nodes
	s.edges = edges
	s.mu.Unlock()
	return nil
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	s.nodes = nil
	s.edges = nil
	s.mu.Unlock()
}

func (s *Store) nodeIndex(id string) int {
	for i, n := range s.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func cloneNode(n Node) Node {
	params := make(map[string]any, len(n.Params))
	for k, v := range n.Params {
		params[k] = v
	}
	n.Params = params
	return n
}
