package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownCategory marks a category that is absent from the emission table.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUserNotFound marks a summary request for a user with no account.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreFailure marks any persistence error. The cause stays in the chain
	// for logging but must not be shown to callers.
	ErrStoreFailure = errors.New("store failure")
)

// StoreFailure wraps a persistence error so that errors.Is(err, ErrStoreFailure)
// holds while the original cause remains reachable through errors.Unwrap.
func StoreFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &storeError{op: op, cause: err}
}

type storeError struct {
	op    string
	cause error
}

func (e *storeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreFailure, e.op, e.cause)
}

func (e *storeError) Unwrap() []error {
	return []error{ErrStoreFailure, e.cause}
}

// Op returns the store operation that failed, if err carries one.
func Op(err error) string {
	var se *storeError
	if errors.As(err, &se) {
		return se.op
	}
	return ""
}

// Invalid builds an ErrInvalidInput with a client-facing detail message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
