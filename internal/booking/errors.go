package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors mirroring the authority's HTTP answers. Callers branch with
// errors.Is; the messages are for logs, the UI renders its own copy.
var (
	ErrAuth      = errors.New("booking: authentication required")
	ErrConflict  = errors.New("booking: slot no longer available")
	ErrForbidden = errors.New("booking: operation not allowed")
	ErrNotFound  = errors.New("booking: not found")
)

// ValidationError carries the authority's field message verbatim so the form
// can surface it next to the offending input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "booking: validation failed: " + e.Message
}

// NetworkError marks failures where no HTTP answer arrived. The previous
// view of the data stays usable, only flagged as outdated.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("booking: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
