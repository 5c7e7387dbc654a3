// Package oracle defines the text-generation backend collaborator: a
// client invoked with a prompt and a bounded timeout, returning either
// raw text or a typed failure. Backends never decide anything; parsing
// and validation of what they return belongs to the dream package.
package oracle

import (
	"context"
	"fmt"
	"time"
)

// Client is the backend collaborator interface.
type Client interface {
	// Generate sends a prompt and returns the raw completion text.
	// The call never outlasts timeout; a late response is discarded.
	// Failures are *TimeoutError or *ProcessError, detectable with
	// errors.As.
	Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error)

	// Name identifies the backend in outcomes and stats.
	Name() string
}

// TimeoutError indicates the backend exceeded its time bound.
type TimeoutError struct {
	Backend string
	Limit   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Backend, e.Limit)
}

// ProcessError indicates the backend failed to run at all or reported an
// execution failure.
type ProcessError struct {
	Backend string
	Message string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s process error: %s", e.Backend, e.Message)
}

// truncate shortens s for error messages and logs.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
