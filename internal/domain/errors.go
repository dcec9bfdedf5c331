package domain

import (
	"errors"
	"fmt"
)

// Common domain errors. Every one of these is a precondition failure:
// it is raised before any state is touched, so a rejected operation
// leaves the engine exactly as it found it.
var (
	// ErrNotAuthorized indicates the caller lacks the required privilege
	// (policy mutation, reset, ownership transfer).
	ErrNotAuthorized = errors.New("caller is not the policy holder")

	// ErrInvalidInput indicates a required identity was zero.
	ErrInvalidInput = errors.New("invalid input")

	// ErrZeroTarget indicates an operation was given a zero target.
	ErrZeroTarget = errors.New("target must not be zero")

	// ErrCountOverflow indicates a submission would exceed the counter
	// capacity. The submission is rejected, not saturated.
	ErrCountOverflow = errors.New("submission count at capacity")

	// ErrNoData indicates tier evaluation was requested for a target
	// with zero submissions. The average is undefined there, and a
	// default "none" verdict would conflate "never scored" with
	// "evaluated and failed every threshold", so this is a hard failure.
	ErrNoData = errors.New("no submissions to evaluate")

	// ErrNoAggregate indicates an operation requires an aggregate that
	// was never created.
	ErrNoAggregate = errors.New("no aggregate for target")
)

// OpError wraps a failure with the operation and target it occurred in.
// It supports errors.Is/As against the sentinel values above.
type OpError struct {
	// Op is the engine operation that rejected the call.
	Op string

	// Target is the target identity involved, if any.
	Target TargetID

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for OpError.
func (e *OpError) Error() string {
	if e.Target.IsZero() {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: target=%s: %v", e.Op, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error { return e.Err }

// NewOpError creates an OpError for the given operation and target.
func NewOpError(op string, target TargetID, err error) *OpError {
	return &OpError{Op: op, Target: target, Err: err}
}
