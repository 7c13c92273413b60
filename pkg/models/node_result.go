package models

// NodeExecutionResult is what a node executor returns after running.
// Output is merged into the execution context at the node's configured
// output variable (or returned as-is for nodes without one); Handle
// selects which outgoing edge a polymorphic router (if-else, classify,
// guardrails) should follow. Suspended signals a user-approval node
// pausing the run; ApprovalPrompt is surfaced to the caller via
// ExecutorOptions.OnWaitingForApproval.
type NodeExecutionResult struct {
	Output         interface{}
	Handle         string
	Suspended      bool
	ApprovalPrompt string
}
