package document

import "fmt"

// ValidationError reports malformed or missing input to a store operation.
// It is never retried; the caller violated the operation's contract.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
