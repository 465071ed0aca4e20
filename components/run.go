package components

// RunStatus is the lifecycle state of a remote run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusExpired        RunStatus = "expired"
	RunStatusIncomplete     RunStatus = "incomplete"
)

// Terminal reports whether the status admits no further transitions.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired, RunStatusIncomplete:
		return true
	}
	return false
}

// Pending reports whether the run is still waiting on the remote service.
func (s RunStatus) Pending() bool {
	return s == RunStatusQueued || s == RunStatusInProgress
}

// Run is one remote asynchronous execution attempt tied to a thread.
// At most one non-terminal run exists per thread at a time.
type Run struct {
	ID             string          `json:"id,omitempty"`
	ThreadID       string          `json:"thread_id,omitempty"`
	Status         RunStatus       `json:"status,omitempty"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
}

// RequiredAction is a run's paused request for local tool execution.
// Tool call IDs are unique within one batch.
type RequiredAction struct {
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is one named, argumented request for local computation.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolOutput is the result of executing a tool call, keyed back to its
// request identifier. The set of output IDs submitted for a required action
// must exactly equal the set of its tool call IDs.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id,omitempty"`
	Output     string `json:"output,omitempty"`
}

// FunctionSchema declares one callable tool to the remote service.
type FunctionSchema struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}
