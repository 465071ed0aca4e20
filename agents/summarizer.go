package agents

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.uber.org/atomic"

	"github.com/bububa/newsagent/client"
	"github.com/bububa/newsagent/components"
	"github.com/bububa/newsagent/schema"
	"github.com/bububa/newsagent/tools"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultTimeout      = 100 * time.Second
	defaultCallTimeout  = 30 * time.Second
)

// Config represents summarizer configuration
type Config struct {
	// client is the remote assistants service seam
	client client.Client
	// registry resolves tool calls requested by a run
	registry *tools.Registry
	// memory keeps the local copy of the conversation history
	memory *components.Memory
	// name is the assistant name presentation
	name string
	// model llm model
	model string
	// instructions is the assistant persona
	instructions string
	// runInstructions is the default per-run instruction, overridable per call
	runInstructions string
	// pollInterval is the fixed sleep between status checks
	pollInterval time.Duration
	// timeout is the wall-clock budget for one run
	timeout time.Duration
	// callTimeout bounds each individual remote call
	callTimeout time.Duration
	// assistantID holds a pre-created assistant when injected
	assistantID string
	// threadID holds a pre-created thread when injected
	threadID string
}

// Summarizer drives the remote run lifecycle: it posts the user's request,
// starts a run, polls it to a terminal state, resolves required actions
// through the tool registry and extracts the final assistant answer.
//
// An instance owns one conversation and must not be driven by multiple
// callers at once; a concurrent Summarize call fails with ErrBusy.
type Summarizer struct {
	Config
	runID   string
	running atomic.Bool
}

// New returns a Summarizer. The remote client is required; assistant and
// thread handles may be injected through options, otherwise they are created
// lazily, at most once per instance.
func New(opts ...Option) (*Summarizer, error) {
	ret := new(Summarizer)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.client == nil {
		return nil, errors.New("agents: client is required")
	}
	if ret.registry == nil {
		ret.registry = tools.NewRegistry()
	}
	if ret.memory == nil {
		ret.memory = components.NewMemory(0)
	}
	if ret.pollInterval <= 0 {
		ret.pollInterval = defaultPollInterval
	}
	if ret.timeout <= 0 {
		ret.timeout = defaultTimeout
	}
	if ret.callTimeout <= 0 {
		ret.callTimeout = defaultCallTimeout
	}
	return ret, nil
}

// Name returns the assistant name
func (s *Summarizer) Name() string {
	return s.name
}

// AssistantID returns the remote assistant id, empty until created.
func (s *Summarizer) AssistantID() string {
	return s.assistantID
}

// ThreadID returns the conversation thread id, empty until created.
func (s *Summarizer) ThreadID() string {
	return s.threadID
}

// Memory returns the local conversation history.
func (s *Summarizer) Memory() *components.Memory {
	return s.memory
}

// StartConversation creates the backing thread if none exists yet and returns
// its id.
func (s *Summarizer) StartConversation(ctx context.Context) (string, error) {
	if s.threadID != "" {
		return s.threadID, nil
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	id, err := s.client.CreateThread(callCtx)
	if err != nil {
		return "", err
	}
	s.threadID = id
	log.Printf("agents: thread created: %s", id)
	return id, nil
}

// PostUserMessage appends a user message to the conversation, creating the
// thread first when necessary, and records it in the local history.
func (s *Summarizer) PostUserMessage(ctx context.Context, text string) error {
	if _, err := s.StartConversation(ctx); err != nil {
		return err
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	if _, err := s.client.CreateMessage(callCtx, s.threadID, components.UserRole, text); err != nil {
		return err
	}
	s.memory.NewTurn()
	s.memory.NewMessage(components.UserRole, schema.String(text))
	return nil
}

// Summarize processes one news summarization request end to end and returns
// the assistant's answer. The boolean distinguishes a completed run that
// produced no assistant answer from one that did; failures carry the error
// taxonomy of this package, the client package and the tools package.
func (s *Summarizer) Summarize(ctx context.Context, topic string, customInstructions string) (string, bool, error) {
	if !s.running.CompareAndSwap(false, true) {
		return "", false, ErrBusy
	}
	defer s.running.Store(false)
	if err := s.ensureAssistant(ctx); err != nil {
		return "", false, err
	}
	if err := s.PostUserMessage(ctx, fmt.Sprintf("summarize the news on this topic %s", topic)); err != nil {
		return "", false, err
	}
	if err := s.startRun(ctx, customInstructions); err != nil {
		return "", false, err
	}
	return s.waitForCompletion(ctx)
}

// ensureAssistant creates the remote assistant at most once, declaring the
// registry's tools.
func (s *Summarizer) ensureAssistant(ctx context.Context) error {
	if s.assistantID != "" {
		return nil
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	id, err := s.client.CreateAssistant(callCtx, client.AssistantRequest{
		Name:         s.name,
		Model:        s.model,
		Instructions: s.instructions,
		Tools:        s.registry.Schemas(),
	})
	if err != nil {
		return err
	}
	s.assistantID = id
	log.Printf("agents: assistant created: %s", id)
	return nil
}

// startRun starts a remote run for the current thread. The orchestrator never
// starts a second run while one is outstanding, so the previous run id is
// simply replaced.
func (s *Summarizer) startRun(ctx context.Context, customInstructions string) error {
	if s.assistantID == "" || s.threadID == "" {
		return ErrNotInitialized
	}
	instructions := s.runInstructions
	if customInstructions != "" {
		instructions = customInstructions
	}
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	run, err := s.client.CreateRun(callCtx, s.threadID, s.assistantID, instructions)
	if err != nil {
		return err
	}
	s.runID = run.ID
	log.Printf("agents: run created: %s", run.ID)
	return nil
}

// waitForCompletion polls the run until it reaches a terminal state or the
// wall-clock budget runs out. The full poll interval elapses before the very
// first status check; the deadline is tested before each sleep so the loop
// ends within one interval of the budget regardless of remote behavior.
func (s *Summarizer) waitForCompletion(ctx context.Context) (string, bool, error) {
	if s.threadID == "" || s.runID == "" {
		return "", false, ErrNotInitialized
	}
	deadline := time.Now().Add(s.timeout)
	for {
		if time.Now().After(deadline) {
			return "", false, &TimeoutError{Budget: s.timeout}
		}
		if err := s.sleep(ctx); err != nil {
			return "", false, err
		}
		callCtx, cancel := s.callContext(ctx)
		run, err := s.client.RetrieveRun(callCtx, s.threadID, s.runID)
		cancel()
		if err != nil {
			return "", false, err
		}
		log.Printf("agents: run %s status: %s", run.ID, run.Status)
		switch {
		case run.Status == components.RunStatusCompleted:
			return s.processMessages(ctx)
		case run.Status == components.RunStatusRequiresAction:
			if err := s.handleRequiredAction(ctx, run); err != nil {
				return "", false, err
			}
		case run.Status.Terminal():
			return "", false, &RunFailedError{Status: run.Status}
		}
	}
}

// sleep waits one poll interval, bailing out early on cancellation.
func (s *Summarizer) sleep(ctx context.Context) error {
	timer := time.NewTimer(s.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// handleRequiredAction dispatches every tool call in the batch and submits
// the collected outputs in a single call. The submission is all-or-nothing:
// if any dispatch fails, nothing is submitted and the run attempt aborts with
// the triggering error.
func (s *Summarizer) handleRequiredAction(ctx context.Context, run *components.Run) error {
	if run.RequiredAction == nil || len(run.RequiredAction.ToolCalls) == 0 {
		return fmt.Errorf("agents: run %s: %w", run.ID, ErrNoToolCalls)
	}
	outputs := make([]components.ToolOutput, 0, len(run.RequiredAction.ToolCalls))
	for _, call := range run.RequiredAction.ToolCalls {
		out, err := s.registry.Dispatch(ctx, call)
		if err != nil {
			return err
		}
		outputs = append(outputs, out)
	}
	log.Printf("agents: submitting %d tool outputs for run %s", len(outputs), run.ID)
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	if _, err := s.client.SubmitToolOutputs(callCtx, s.threadID, run.ID, outputs); err != nil {
		return err
	}
	return nil
}

// processMessages extracts the answer after a completed run. The messages
// arrive newest first; the answer is the newest message only when it is
// authored by the assistant. Anything else means the run completed without an
// answer, which is reported, not treated as an error.
func (s *Summarizer) processMessages(ctx context.Context) (string, bool, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	msgs, err := s.client.ListMessages(callCtx, s.threadID)
	if err != nil {
		return "", false, err
	}
	if len(msgs) == 0 {
		return "", false, nil
	}
	newest := msgs[0]
	if newest.Role() != components.AssistantRole {
		return "", false, nil
	}
	answer := schema.Stringify(newest.Content())
	if answer == "" {
		return "", false, nil
	}
	s.memory.NewMessage(components.AssistantRole, newest.Content())
	return answer, true, nil
}

// callContext bounds a single remote call with the configured call timeout.
func (s *Summarizer) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}
