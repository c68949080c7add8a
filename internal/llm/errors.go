package llm

import "fmt"

// RetryableError indicates a transient provider failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// GenerationError reports a completion that never yielded output matching
// the requested schema, re-asks included. It wraps the last decode failure.
type GenerationError struct {
	Schema   string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: no valid output after %d attempts: %v", e.Schema, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
