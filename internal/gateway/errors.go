package gateway

import (
	"errors"
	"fmt"
)

// ErrActionInFlight is returned when a submit lands while the same action
// kind is already submitted for the address. The duplicate is dropped, not
// queued.
var ErrActionInFlight = errors.New("action already in flight")

// ValidationError is a local, pre-submission failure. No state change was
// made and no write was attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// TransactionError is a post-submission failure: wallet rejection, network
// failure or reverted execution. The reason is carried verbatim.
type TransactionError struct {
	Kind   string
	Reason string
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Kind, e.Reason)
}

// StorageError is a durable-store write failure. Reads never produce it;
// they collapse to "no identity".
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
