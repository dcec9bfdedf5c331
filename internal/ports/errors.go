package ports

import (
	"errors"
	"fmt"

	"github.com/ahrav/go-cipherscore/internal/domain"
)

// Common infrastructure errors raised by runtime and store adapters.
var (
	// ErrUnknownHandle indicates an operation referenced a handle the
	// runtime has no ciphertext for.
	ErrUnknownHandle = errors.New("unknown handle")

	// ErrHandleNotOperable indicates a homomorphic operation touched a
	// derived handle that was never authorized for service use.
	ErrHandleNotOperable = errors.New("handle not authorized for service use")

	// ErrBadProof indicates an input proof did not bind its ciphertext.
	ErrBadProof = errors.New("input proof verification failed")

	// ErrNotDecryptable indicates a decrypt attempt by a principal the
	// handle's access policy does not cover.
	ErrNotDecryptable = errors.New("principal not authorized to decrypt")

	// ErrWidthMismatch indicates an operation mixed ciphertexts of
	// incompatible widths.
	ErrWidthMismatch = errors.New("ciphertext width mismatch")

	// ErrScoreOutOfRange indicates a client-side encryption of a value
	// outside the 0-100 scale.
	ErrScoreOutOfRange = errors.New("score outside 0-100 range")
)

// RuntimeError wraps a failure inside the encrypted runtime with the
// operation and handle involved.
type RuntimeError struct {
	// Op is the runtime operation that failed.
	Op string

	// Handle is the handle involved, if any.
	Handle domain.Handle

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for RuntimeError.
func (e *RuntimeError) Error() string {
	if e.Handle.IsZero() {
		return fmt.Sprintf("runtime error: operation=%s, err=%v", e.Op, e.Err)
	}
	return fmt.Sprintf("runtime error: operation=%s, handle=%s, err=%v", e.Op, e.Handle.ID, e.Err)
}

// Unwrap returns the underlying error.
func (e *RuntimeError) Unwrap() error { return e.Err }

// NewRuntimeError creates a RuntimeError with the given details.
func NewRuntimeError(op string, h domain.Handle, err error) *RuntimeError {
	return &RuntimeError{Op: op, Handle: h, Err: err}
}

// StoreError wraps a failure in a persistence adapter with the
// operation and target involved.
type StoreError struct {
	// Op is the store operation that failed.
	Op string

	// Target is the target identity involved, if any.
	Target domain.TargetID

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: operation=%s, target=%s, err=%v", e.Op, e.Target, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }
