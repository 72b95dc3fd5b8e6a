package summarizer

import (
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures into the shared taxonomy every
// backend maps onto.
type ErrorKind string

const (
	KindUnauthorized    ErrorKind = "unauthorized"
	KindRateLimited     ErrorKind = "rate_limited"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindTransient       ErrorKind = "transient"
)

// Error is a typed summarization failure carrying the originating provider.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err in the shared taxonomy.
func NewError(kind ErrorKind, provider string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// KindOf extracts the taxonomy kind from err. Unclassified errors are treated
// as transient so the caller still gets a bounded retry.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransient
}

// retryable reports whether a failure kind is worth another attempt.
func retryable(kind ErrorKind) bool {
	return kind == KindRateLimited || kind == KindTransient
}
