package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a retrieval failure.
type ErrorKind string

const (
	KindInvalidInput           ErrorKind = "INVALID_INPUT"
	KindNetwork                ErrorKind = "NETWORK_ERROR"
	KindRateLimited            ErrorKind = "RATE_LIMITED"
	KindParsing                ErrorKind = "PARSING_ERROR"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindTranscriptNotAvailable ErrorKind = "TRANSCRIPT_NOT_AVAILABLE"
)

// Error is the single error type surfaced by the transport, extractor and
// domain layers. StatusCode is set when the failure came from an HTTP
// response; Timeout marks an aborted attempt.
type Error struct {
	Kind       ErrorKind
	Msg        string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d %s)", msg, e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches bare kind sentinels, so errors.Is(err, ErrRateLimited) holds for
// any rate-limited error regardless of message or status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.StatusCode == 0 && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrInvalidInput           = &Error{Kind: KindInvalidInput}
	ErrNetwork                = &Error{Kind: KindNetwork}
	ErrRateLimited            = &Error{Kind: KindRateLimited}
	ErrParsing                = &Error{Kind: KindParsing}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrTranscriptNotAvailable = &Error{Kind: KindTranscriptNotAvailable}
)

// NewError builds an Error of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error of the given kind around cause.
func WrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
