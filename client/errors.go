package client

import (
	"errors"
	"fmt"
)

// ErrMissingCredential reports a client constructed without an API credential.
var ErrMissingCredential = errors.New("client: missing api credential")

// TransientError wraps a transport-level failure. The caller may retry the
// operation; the client never retries internally.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("client: %s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// RemoteError wraps a non-retryable rejection from the remote service.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("client: %s: remote service error: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
