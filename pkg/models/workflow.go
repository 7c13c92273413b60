package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// NodeType enumerates the closed set of node kinds the executor understands.
type NodeType string

const (
	NodeTypeStart         NodeType = "start"
	NodeTypeEnd           NodeType = "end"
	NodeTypeAgent         NodeType = "agent"
	NodeTypeClassify      NodeType = "classify"
	NodeTypeIfElse        NodeType = "if-else"
	NodeTypeWhile         NodeType = "while"
	NodeTypeTransform     NodeType = "transform"
	NodeTypeSetState      NodeType = "set-state"
	NodeTypeUserApproval  NodeType = "user-approval"
	NodeTypeGuardrails    NodeType = "guardrails"
	NodeTypeFileSearch    NodeType = "file-search"
	NodeTypeMCP           NodeType = "mcp"
)

var validNodeTypes = map[NodeType]bool{
	NodeTypeStart: true, NodeTypeEnd: true, NodeTypeAgent: true, NodeTypeClassify: true,
	NodeTypeIfElse: true, NodeTypeWhile: true, NodeTypeTransform: true, NodeTypeSetState: true,
	NodeTypeUserApproval: true, NodeTypeGuardrails: true, NodeTypeFileSearch: true, NodeTypeMCP: true,
}

// Workflow represents a complete workflow definition with its DAG structure.
type Workflow struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Version     int                    `json:"version"`
	Nodes       []*Node                `json:"nodes"`
	Edges       []*Edge                `json:"edges"`
	Variables   map[string]interface{} `json:"variables,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Node represents a single node in the workflow graph.
type Node struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Type        NodeType               `json:"type"`
	Description string                 `json:"description,omitempty"`
	Config      map[string]interface{} `json:"config"`
	Position    *Position              `json:"position,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Position represents the visual position of a node in the editor.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge represents a directed edge between two nodes in the graph.
//
// SourceHandle is polymorphic by design: for a plain edge it names nothing
// special (the executor falls back to the node's single outgoing edge or
// edge order), but for if-else/classify/guardrails it carries the handle
// name the node wrote into its NodeExecutionResult.Handle to select the
// successor. Condition, when set, is evaluated against the execution
// context and the edge is only followed if it is truthy.
type Edge struct {
	ID           string                 `json:"id"`
	From         string                 `json:"from"`
	To           string                 `json:"to"`
	SourceHandle string                 `json:"source_handle,omitempty"`
	Condition    string                 `json:"condition,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Validate validates the workflow structure.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(w.Nodes) == 0 {
		return &ValidationError{Field: "nodes", Message: "at least one node is required"}
	}

	nodeIDs := make(map[string]bool, len(w.Nodes))
	startCount, endCount := 0, 0
	for _, node := range w.Nodes {
		if err := node.Validate(); err != nil {
			return err
		}
		if nodeIDs[node.ID] {
			return &ValidationError{Field: "nodes", Message: fmt.Sprintf("duplicate node ID: %s", node.ID)}
		}
		nodeIDs[node.ID] = true
		switch node.Type {
		case NodeTypeStart:
			startCount++
		case NodeTypeEnd:
			endCount++
		}
	}
	if startCount != 1 {
		return &ValidationError{Field: "nodes", Message: fmt.Sprintf("workflow must have exactly one start node, found %d", startCount)}
	}
	if endCount < 1 {
		return &ValidationError{Field: "nodes", Message: "workflow must have at least one end node"}
	}

	incoming := make(map[string]int, len(w.Nodes))
	outgoing := make(map[string]int, len(w.Nodes))
	for _, edge := range w.Edges {
		if err := edge.Validate(); err != nil {
			return err
		}
		if !nodeIDs[edge.From] {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("edge references non-existent source node: %s", edge.From)}
		}
		if !nodeIDs[edge.To] {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("edge references non-existent target node: %s", edge.To)}
		}
		incoming[edge.To]++
		outgoing[edge.From]++
	}

	for _, node := range w.Nodes {
		if node.Type == NodeTypeStart {
			continue
		}
		if incoming[node.ID] == 0 {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("node %s is unreachable: no incoming edges", node.ID)}
		}
	}
	for _, node := range w.Nodes {
		if node.Type == NodeTypeStart && incoming[node.ID] != 0 {
			return &ValidationError{Field: "edges", Message: "start node must not have incoming edges"}
		}
		if node.Type == NodeTypeEnd && outgoing[node.ID] != 0 {
			return &ValidationError{Field: "edges", Message: fmt.Sprintf("end node %s must not have outgoing edges", node.ID)}
		}
	}

	return nil
}

// Validate validates the node structure.
func (n *Node) Validate() error {
	if n.ID == "" {
		return &ValidationError{Field: "id", Message: "node ID is required"}
	}
	if n.Name == "" {
		return &ValidationError{Field: "name", Message: "node name is required"}
	}
	if n.Type == "" {
		return &ValidationError{Field: "type", Message: "node type is required"}
	}
	if !validNodeTypes[n.Type] {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown node type: %s", n.Type)}
	}
	return nil
}

// Validate validates the edge structure.
func (e *Edge) Validate() error {
	if e.ID == "" {
		return &ValidationError{Field: "id", Message: "edge ID is required"}
	}
	if e.From == "" {
		return &ValidationError{Field: "from", Message: "edge source is required"}
	}
	if e.To == "" {
		return &ValidationError{Field: "to", Message: "edge target is required"}
	}
	return nil
}

// GetNode returns a node by ID.
func (w *Workflow) GetNode(nodeID string) (*Node, error) {
	for _, node := range w.Nodes {
		if node.ID == nodeID {
			return node, nil
		}
	}
	return nil, ErrNodeNotFound
}

// GetEdge returns an edge by ID.
func (w *Workflow) GetEdge(edgeID string) (*Edge, error) {
	for _, edge := range w.Edges {
		if edge.ID == edgeID {
			return edge, nil
		}
	}
	return nil, ErrEdgeNotFound
}

// AddNode adds a node to the workflow.
func (w *Workflow) AddNode(node *Node) error {
	if err := node.Validate(); err != nil {
		return err
	}
	for _, n := range w.Nodes {
		if n.ID == node.ID {
			return &ValidationError{Field: "id", Message: "node ID already exists"}
		}
	}
	w.Nodes = append(w.Nodes, node)
	w.UpdatedAt = time.Now()
	return nil
}

// AddEdge adds an edge to the workflow.
func (w *Workflow) AddEdge(edge *Edge) error {
	if err := edge.Validate(); err != nil {
		return err
	}
	if _, err := w.GetNode(edge.From); err != nil {
		return &ValidationError{Field: "from", Message: "source node does not exist"}
	}
	if _, err := w.GetNode(edge.To); err != nil {
		return &ValidationError{Field: "to", Message: "target node does not exist"}
	}
	for _, e := range w.Edges {
		if e.ID == edge.ID {
			return &ValidationError{Field: "id", Message: "edge ID already exists"}
		}
	}
	w.Edges = append(w.Edges, edge)
	w.UpdatedAt = time.Now()
	return nil
}

// RemoveNode removes a node from the workflow and its associated edges.
func (w *Workflow) RemoveNode(nodeID string) error {
	found := false
	for i, node := range w.Nodes {
		if node.ID == nodeID {
			w.Nodes = append(w.Nodes[:i], w.Nodes[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return ErrNodeNotFound
	}

	var edges []*Edge
	for _, edge := range w.Edges {
		if edge.From != nodeID && edge.To != nodeID {
			edges = append(edges, edge)
		}
	}
	w.Edges = edges
	w.UpdatedAt = time.Now()
	return nil
}

// RemoveEdge removes an edge from the workflow.
func (w *Workflow) RemoveEdge(edgeID string) error {
	for i, edge := range w.Edges {
		if edge.ID == edgeID {
			w.Edges = append(w.Edges[:i], w.Edges[i+1:]...)
			w.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrEdgeNotFound
}

// Clone creates a deep copy of the workflow via a JSON round-trip.
func (w *Workflow) Clone() (*Workflow, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	var clone Workflow
	if err := json.Unmarshal(data, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}
