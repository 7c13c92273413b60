package engine

// Source handle names used by branching node types to route to the
// correct successor edge via Edge.SourceHandle.
const (
	SourceHandleTrue  = "true"
	SourceHandleFalse = "false"
)

// DefaultNodePriority is the priority assigned to nodes without an
// explicit "priority" metadata entry. Node priority only affects
// dispatch order among nodes enqueued in the same tick that carry no
// explicit nextNodes ordering; it is an engine extension, not required
// by the core scheduling algorithm.
const DefaultNodePriority = 0
