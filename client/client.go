package client

import (
	"context"

	"github.com/bububa/newsagent/components"
)

// AssistantRequest describes the remote assistant to create: its persona,
// model and the tools it may request during a run. Immutable once created.
type AssistantRequest struct {
	Name         string
	Model        string
	Instructions string
	Tools        []components.FunctionSchema
}

// Client is the seam to the remote assistants service. Every call may fail
// with a *TransientError (transport-level, retryable by the caller) or a
// *RemoteError (service rejection, not retryable); no call retries
// internally. A deterministic in-memory implementation of this interface is
// all the orchestrator state machine needs for tests.
type Client interface {
	// CreateAssistant creates the remote assistant and returns its id.
	CreateAssistant(ctx context.Context, req AssistantRequest) (string, error)
	// CreateThread creates an empty conversation thread and returns its id.
	CreateThread(ctx context.Context) (string, error)
	// CreateMessage appends a message to a thread and returns the message id.
	CreateMessage(ctx context.Context, threadID string, role components.MessageRole, text string) (string, error)
	// CreateRun starts a run of the assistant over the thread.
	CreateRun(ctx context.Context, threadID, assistantID, instructions string) (*components.Run, error)
	// RetrieveRun fetches the current state of a run.
	RetrieveRun(ctx context.Context, threadID, runID string) (*components.Run, error)
	// SubmitToolOutputs resolves a run's required action with the collected
	// tool outputs. The output set must match the requested tool call set.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []components.ToolOutput) (*components.Run, error)
	// ListMessages returns the thread's messages, newest first.
	ListMessages(ctx context.Context, threadID string) ([]components.Message, error)
}
