package stockroom

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports an unknown entity.
	ErrNotFound = errors.New("not found")
	// ErrCorruptGroup is wrapped by the warnings about a transaction group
	// whose lines are not all present in the ledger, or whose split does not
	// conserve quantity. Match it with errors.Is on a Warning or on
	// Warnings.Err.
	ErrCorruptGroup = errors.New("corrupt transaction group")
)

// ValidationError is returned by a command whose own arithmetic or
// arguments are inconsistent. Nothing has been written when it is returned.
type ValidationError struct {
	Op     string // command name, e.g. "split"
	Entity Ref    // offending entity, may be zero
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Entity.IsZero() {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(op string, entity Ref, format string, args ...any) error {
	return &ValidationError{Op: op, Entity: entity, Reason: fmt.Sprintf(format, args...)}
}

// AppendError reports an I/O failure while appending a transaction to a
// ledger segment. Lines may have been partially written: the segment must
// be inspected (see Inventory.Fsck).
type AppendError struct {
	Segment string // path of the segment being written
	Group   string // group id of the transaction, if any
	Written int    // bytes written before the failure
	Err     error
}

func (e *AppendError) Error() string {
	msg := fmt.Sprintf("append to %s failed after %d bytes", e.Segment, e.Written)
	if e.Group != "" {
		msg += fmt.Sprintf(" (group %s needs manual review)", e.Group)
	}
	return msg + ": " + e.Err.Error()
}

func (e *AppendError) Unwrap() error { return e.Err }
