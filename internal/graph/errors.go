package graph

import "fmt"

// SelfLoopError rejects an edge whose source and target are the same node.
type SelfLoopError struct {
	NodeID string
}

func (e *SelfLoopError) Error() string {
	return fmt.Sprintf("edge would connect node %s to itself", e.NodeID)
}

// DuplicateEdgeError rejects an edge identical to an existing one.
type DuplicateEdgeError struct {
	Source     string
	SourcePort string
	Target     string
	TargetPort string
}

func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("edge %s[%s] -> %s[%s] already exists", e.Source, e.SourcePort, e.Target, e.TargetPort)
}

// NodeNotFoundError reports an operation against a missing node.
type NodeNotFoundError struct {
	ID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %s not found", e.ID)
}

// EdgeNotFoundError reports an operation against a missing edge.
type EdgeNotFoundError struct {
	ID string
}

func (e *EdgeNotFoundError) Error() string {
	return fmt.Sprintf("edge %s not found", e.ID)
}
