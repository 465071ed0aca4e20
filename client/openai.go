package client

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/newsagent/components"
	"github.com/bububa/newsagent/schema"
)

// OpenAI binds Client to the OpenAI assistants API.
type OpenAI struct {
	clt *openai.Client
}

var _ Client = (*OpenAI)(nil)

// NewOpenAI returns an assistants API client. The API key is required and
// checked before any network activity.
func NewOpenAI(apiKey string, opts ...Option) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	config := new(Config)
	for _, opt := range opts {
		opt(config)
	}
	cfg := openai.DefaultConfig(apiKey)
	if config.baseURL != "" {
		cfg.BaseURL = config.baseURL
	}
	if config.httpClient != nil {
		cfg.HTTPClient = config.httpClient
	}
	return &OpenAI{clt: openai.NewClientWithConfig(cfg)}, nil
}

func (c *OpenAI) CreateAssistant(ctx context.Context, req AssistantRequest) (string, error) {
	list := make([]openai.AssistantTool, 0, len(req.Tools))
	for _, fn := range req.Tools {
		list = append(list, openai.AssistantTool{
			Type: openai.AssistantToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        fn.Name,
				Description: fn.Description,
				Parameters:  fn.Parameters,
			},
		})
	}
	assistant, err := c.clt.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        req.Model,
		Name:         &req.Name,
		Instructions: &req.Instructions,
		Tools:        list,
	})
	if err != nil {
		return "", classify("create assistant", err)
	}
	return assistant.ID, nil
}

func (c *OpenAI) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.clt.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", classify("create thread", err)
	}
	return thread.ID, nil
}

func (c *OpenAI) CreateMessage(ctx context.Context, threadID string, role components.MessageRole, text string) (string, error) {
	msg, err := c.clt.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    role,
		Content: text,
	})
	if err != nil {
		return "", classify("create message", err)
	}
	return msg.ID, nil
}

func (c *OpenAI) CreateRun(ctx context.Context, threadID, assistantID, instructions string) (*components.Run, error) {
	run, err := c.clt.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID:  assistantID,
		Instructions: instructions,
	})
	if err != nil {
		return nil, classify("create run", err)
	}
	return fromRun(&run), nil
}

func (c *OpenAI) RetrieveRun(ctx context.Context, threadID, runID string) (*components.Run, error) {
	run, err := c.clt.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return nil, classify("retrieve run", err)
	}
	return fromRun(&run), nil
}

func (c *OpenAI) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []components.ToolOutput) (*components.Run, error) {
	req := openai.SubmitToolOutputsRequest{
		ToolOutputs: make([]openai.ToolOutput, 0, len(outputs)),
	}
	for _, out := range outputs {
		req.ToolOutputs = append(req.ToolOutputs, openai.ToolOutput{
			ToolCallID: out.ToolCallID,
			Output:     out.Output,
		})
	}
	run, err := c.clt.SubmitToolOutputs(ctx, threadID, runID, req)
	if err != nil {
		return nil, classify("submit tool outputs", err)
	}
	return fromRun(&run), nil
}

// ListMessages returns the thread's messages in the service's default order,
// newest first.
func (c *OpenAI) ListMessages(ctx context.Context, threadID string) ([]components.Message, error) {
	list, err := c.clt.ListMessage(ctx, threadID, nil, nil, nil, nil, nil)
	if err != nil {
		return nil, classify("list messages", err)
	}
	msgs := make([]components.Message, 0, len(list.Messages))
	for _, src := range list.Messages {
		msg := components.NewMessage(src.Role, schema.String(messageText(&src))).
			SetCreatedAt(int64(src.CreatedAt))
		msgs = append(msgs, *msg)
	}
	return msgs, nil
}

// fromRun converts an API run into the domain representation, carrying over a
// pending required action when present.
func fromRun(src *openai.Run) *components.Run {
	run := &components.Run{
		ID:       src.ID,
		ThreadID: src.ThreadID,
		Status:   components.RunStatus(src.Status),
	}
	if ra := src.RequiredAction; ra != nil && ra.SubmitToolOutputs != nil {
		action := &components.RequiredAction{
			ToolCalls: make([]components.ToolCall, 0, len(ra.SubmitToolOutputs.ToolCalls)),
		}
		for _, call := range ra.SubmitToolOutputs.ToolCalls {
			action.ToolCalls = append(action.ToolCalls, components.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
		run.RequiredAction = action
	}
	return run
}

// messageText extracts the first text part of a message.
func messageText(src *openai.Message) string {
	for _, part := range src.Content {
		if part.Text != nil {
			return part.Text.Value
		}
	}
	return ""
}

// classify maps an API failure onto the error taxonomy: rate limiting and
// server-side failures are transient, other API rejections are not, and
// anything below the API layer is a transport failure.
func classify(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= http.StatusInternalServerError {
			return &TransientError{Op: op, Err: err}
		}
		return &RemoteError{Op: op, Err: err}
	}
	return &TransientError{Op: op, Err: err}
}
