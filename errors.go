// Package pim structured error types and status codes
package pim

import (
	"errors"
	"fmt"
)

// Status is the fixed result code reported by every runtime call.
// It mirrors the integer codes returned by hardware PIM runtimes.
type Status int

const (
	// Success indicates the call completed
	Success Status = 0
	// AllocError indicates the allocator refused or could not satisfy a request
	AllocError Status = -1
	// CopyError indicates a null, zero-sized, mismatched or malformed copy
	CopyError Status = -2
	// OperationError indicates a kernel shape or size precondition was violated
	OperationError Status = -3
)

// String returns the status as a string
func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case AllocError:
		return "AllocError"
	case CopyError:
		return "CopyError"
	case OperationError:
		return "OperationError"
	default:
		return "Unknown"
	}
}

// Error represents a structured error with context
type Error struct {
	Status  Status
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pim %s in %s: %s (caused by: %v)",
			e.Status, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("pim %s in %s: %s", e.Status, e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same status, op and message.
// This lets sentinel errors match freshly constructed ones.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Status == e.Status && t.Op == e.Op && t.Message == e.Message
}

// NewAllocError creates an allocation error
func NewAllocError(op string, message string, err error) error {
	return &Error{Status: AllocError, Op: op, Message: message, Err: err}
}

// NewCopyError creates a copy error
func NewCopyError(op string, message string) error {
	return &Error{Status: CopyError, Op: op, Message: message}
}

// NewOperationError creates a kernel precondition error
func NewOperationError(op string, message string) error {
	return &Error{Status: OperationError, Op: op, Message: message}
}

// wrapOperation re-labels err as an OperationError of op, keeping err as cause.
// Used by multi-stage kernels so the caller sees which stage failed.
func wrapOperation(op, stage string, err error) error {
	return &Error{Status: OperationError, Op: op, Message: stage + " stage failed", Err: err}
}

var (
	// ErrOutOfMemory indicates the allocator refused a request
	ErrOutOfMemory = NewAllocError("Alloc", "out of memory", nil)

	// ErrNilBuffer indicates a nil buffer object was passed
	ErrNilBuffer = NewOperationError("Kernel", "nil buffer")

	// ErrNullData indicates a buffer without backing memory
	ErrNullData = NewOperationError("Kernel", "buffer has no data")

	// ErrSizeMismatch indicates operands of different byte size
	ErrSizeMismatch = NewOperationError("Kernel", "operand size mismatch")

	// ErrPrecision indicates a non-FP16 operand
	ErrPrecision = NewOperationError("Kernel", "kernels only support FP16 operands")
)

// StatusOf maps an error returned by this package to its Status.
// A nil error is Success. Joined errors report the status of the first
// *Error in the chain; foreign errors report OperationError.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return OperationError
}

// IsAllocError checks if an error is an allocation error
func IsAllocError(err error) bool {
	return err != nil && StatusOf(err) == AllocError
}

// IsCopyError checks if an error is a copy error
func IsCopyError(err error) bool {
	return err != nil && StatusOf(err) == CopyError
}

// IsOperationError checks if an error is an operation error
func IsOperationError(err error) bool {
	return err != nil && StatusOf(err) == OperationError
}
