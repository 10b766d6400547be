package common

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	// ErrNotFound is returned by store lookups when an item or folder does
	// not exist. A missing year subfolder is ErrNotFound and drives folder
	// creation; a missing base path is ErrBasePathMissing and is fatal.
	ErrNotFound = errors.New("resource not found")

	// ErrBasePathMissing marks a configuration fault: the archive base path
	// must exist before the service runs, it is never auto-created.
	ErrBasePathMissing = errors.New("archive base path missing")

	ErrInvalidInput = errors.New("invalid input")
)

// ClassificationError signals that a document's text does not match the
// expected booking-confirmation structure. It is always propagated; the
// classifier never degrades to a partial record set.
type ClassificationError struct {
	Reason string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classification failed: %s", e.Reason)
}

func NewClassificationError(format string, args ...any) *ClassificationError {
	return &ClassificationError{Reason: fmt.Sprintf(format, args...)}
}

// ArchivalError wraps failures while placing a document into the store.
// Fatal is set for configuration faults (missing base path); transient
// store-access failures leave it false so the caller's alert path can retry.
type ArchivalError struct {
	Fatal bool
	Cause error
}

func (e *ArchivalError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("archival failed (fatal): %v", e.Cause)
	}
	return fmt.Sprintf("archival failed: %v", e.Cause)
}

func (e *ArchivalError) Unwrap() error { return e.Cause }

// SchedulingError signals an aborted reminder pass: malformed persisted
// timestamp or a failure during dispatch. The run marker is never advanced
// when one of these occurs.
type SchedulingError struct {
	Cause error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("reminder scheduling failed: %v", e.Cause)
}

func (e *SchedulingError) Unwrap() error { return e.Cause }

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
