package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no document matches the given reference.
	ErrNotFound = errors.New("document not found")

	// ErrUnknownRecordType is returned when a polymorphic reference names a
	// type that was never registered.
	ErrUnknownRecordType = errors.New("unknown record type")
)

// PersistenceError wraps a failure of the underlying save/create/query
// operations. It is propagated to the caller unmodified; writes are not
// safe to retry blindly.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RenderError wraps a failure producing the receipt markup or converting it
// to PDF.
type RenderError struct {
	Op      string
	Err     error
	Details string
}

func (e *RenderError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("render: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("render: %s failed: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
