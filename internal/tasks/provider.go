// Package tasks reads open items from Google Tasks and assembles them
// across every list an account owns.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/daviddao/taskdawn/internal/types"
)

// Provider is the subset of the Google Tasks API taskdawn depends on.
type Provider interface {
	// ListTaskLists returns every task list in API order.
	ListTaskLists(ctx context.Context) ([]types.TaskList, error)
	// CreateTaskList creates a list with the given title.
	CreateTaskList(ctx context.Context, title string) (types.TaskList, error)
	// ListOpenTasks returns the incomplete, visible items of a list.
	ListOpenTasks(ctx context.Context, listID string) ([]types.Task, error)
}

// ProviderError is a failed remote call with its HTTP status, if any.
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the provider signalled rate limiting or a
// server-side failure.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		(e.StatusCode >= 500 && e.StatusCode < 600)
}

// IsRetryable is the retry predicate for provider calls.
func IsRetryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}

// Kind names the class of a provider failure for logging.
func Kind(err error) string {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return "internal"
	}
	switch {
	case pe.Retryable():
		return "provider-retryable"
	case pe.StatusCode == http.StatusUnauthorized || pe.StatusCode == http.StatusForbidden:
		return "provider-auth"
	default:
		return "provider"
	}
}
