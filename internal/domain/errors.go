package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Root error kinds. Every error surfaced to a caller should wrap one of them so
// the HTTP layer can tell malformed input, node failures and missing events apart.
var (
	ErrValidation    = errors.New("validation failed")
	ErrUpstream      = errors.New("upstream node error")
	ErrEventNotFound = errors.New("expected event not found")
)

// Invalid returns a validation error with the given description.
func Invalid(format string, args ...any) error {
	return errors.Wrapf(ErrValidation, format, args...)
}

// UpstreamError wraps a failure returned by the blockchain node or client library.
type UpstreamError struct {
	Op  string
	Err error
}

// Upstream wraps err as an upstream failure of op. A nil err yields nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// EventNotFoundError reports a mined transaction whose receipt lacks the expected event.
type EventNotFoundError struct {
	Event  string
	TxHash string
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("event %s not found in receipt of %s", e.Event, e.TxHash)
}

func (e *EventNotFoundError) Is(target error) bool { return target == ErrEventNotFound }
