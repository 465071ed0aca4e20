package tools

import "fmt"

// UnknownToolError reports a required action referencing a tool that was
// never registered. This is fatal to the run attempt: skipping the call would
// leave the output set short of the requested call set and the submission
// would be rejected.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tools: unknown tool %q", e.Name)
}

// ArgumentError reports tool call arguments that failed decoding or
// validation before the handler was invoked.
type ArgumentError struct {
	Tool string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("tools: malformed arguments for %q: %v", e.Tool, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}
