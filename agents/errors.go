package agents

import (
	"errors"
	"fmt"
	"time"

	"github.com/bububa/newsagent/components"
)

var (
	// ErrNotInitialized reports an operation attempted before its
	// prerequisite assistant or thread exists.
	ErrNotInitialized = errors.New("agents: assistant or thread not initialized")
	// ErrBusy reports a summarize call while another run is in flight.
	// A summarizer instance is single-flight: run and thread identifiers are
	// unsynchronized instance state.
	ErrBusy = errors.New("agents: a run is already in progress")
	// ErrNoToolCalls reports a run paused on a required action that carries
	// no tool calls; submitting an empty output set would be rejected by the
	// remote service.
	ErrNoToolCalls = errors.New("agents: required action carries no tool calls")
)

// TimeoutError reports a poll loop that exceeded its wall-clock budget before
// the run reached a terminal state.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agents: run timed out after %s", e.Budget)
}

// RunFailedError reports a run that ended in a terminal state other than
// completed.
type RunFailedError struct {
	Status components.RunStatus
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("agents: run terminated with status %s", e.Status)
}
