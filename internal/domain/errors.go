package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies failures at every stage boundary of the pipeline.
type ErrorKind string

const (
	KindOracleUnavailable         ErrorKind = "oracle_unavailable"
	KindMalformedClassification   ErrorKind = "malformed_classification"
	KindMalformedStructuredAction ErrorKind = "malformed_structured_action"
	KindUnknownAction             ErrorKind = "unknown_action"
	KindLowConfidence             ErrorKind = "low_confidence"
	KindExecutorFailure           ErrorKind = "executor_failure"
	KindTimeout                   ErrorKind = "timeout"
)

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrOracleUnavailable         = &Error{Kind: KindOracleUnavailable}
	ErrMalformedClassification   = &Error{Kind: KindMalformedClassification}
	ErrMalformedStructuredAction = &Error{Kind: KindMalformedStructuredAction}
	ErrUnknownAction             = &Error{Kind: KindUnknownAction}
	ErrLowConfidence             = &Error{Kind: KindLowConfidence}
	ErrExecutorFailure           = &Error{Kind: KindExecutorFailure}
	ErrTimeout                   = &Error{Kind: KindTimeout}
)

// Error is the typed failure passed between stages.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and the operation that produced it.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds an *Error with a formatted cause.
func Errorf(kind ErrorKind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so sentinels compare equal to wrapped instances.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the ErrorKind carried by err. Context deadlines map to
// KindTimeout; anything else untyped is an executor failure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindExecutorFailure
}
