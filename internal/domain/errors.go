package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures crossing the core's boundaries.
type ErrorKind string

const (
	KindNotFound             ErrorKind = "not_found"
	KindUnsupportedFormat    ErrorKind = "unsupported_format"
	KindExtractionFailed     ErrorKind = "extraction_failed"
	KindEmptyDocument        ErrorKind = "empty_document"
	KindInvalidConfiguration ErrorKind = "invalid_configuration"
	KindTimeout              ErrorKind = "timeout"
	KindGenerationFailed     ErrorKind = "generation_failed"
	KindPersistenceFailed    ErrorKind = "persistence_failed"
)

// Error carries a kind alongside the message so callers can branch on
// failure class without string matching.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new error of the given kind.
func E(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates an underlying error with a kind and message.
func Wrap(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or "" if err carries no kind.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
