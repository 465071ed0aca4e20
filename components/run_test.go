package components

import "testing"

func TestRunStatusTerminal(t *testing.T) {
	tests := []struct {
		status   RunStatus
		terminal bool
		pending  bool
	}{
		{RunStatusQueued, false, true},
		{RunStatusInProgress, false, true},
		{RunStatusRequiresAction, false, false},
		{RunStatusCompleted, true, false},
		{RunStatusFailed, true, false},
		{RunStatusCancelled, true, false},
		{RunStatusExpired, true, false},
		{RunStatusIncomplete, true, false},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s: expect Terminal %v, but got %v", tt.status, tt.terminal, got)
		}
		if got := tt.status.Pending(); got != tt.pending {
			t.Errorf("%s: expect Pending %v, but got %v", tt.status, tt.pending, got)
		}
	}
}
