package domain

import (
	"errors"
	"fmt"
)

// Failure kinds raised by the score pipeline. Match them with errors.Is.
var (
	ErrConfiguration         = errors.New("configuration error")
	ErrUpstream              = errors.New("upstream error")
	ErrInvalidResponseFormat = errors.New("invalid response format")
	ErrNoArrayFound          = errors.New("no array found")
)

// Error carries a human-readable reason together with its failure kind.
// Error() returns only the reason so it can be handed to clients as-is.
type Error struct {
	Kind   error
	Reason string
}

// NewError builds an Error of the given kind with a formatted reason
func NewError(kind error, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Kind
}
