package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind discriminates the failure taxonomy of the download pipeline
type ErrorKind string

const (
	// KindInvalidURL marks malformed input; always a client error
	KindInvalidURL ErrorKind = "invalid_url"
	// KindSourceUnavailable marks an upstream fetch failure
	KindSourceUnavailable ErrorKind = "source_unavailable"
	// KindNotFound marks a requested folder missing from a fetched archive
	KindNotFound ErrorKind = "not_found"
	// KindArchiveCorrupt marks bytes that could not be parsed as an archive
	KindArchiveCorrupt ErrorKind = "archive_corrupt"
	// KindInternal marks anything unexpected
	KindInternal ErrorKind = "internal"
)

// Sentinel errors, one per kind. errors.Is(err, ErrInvalidURL) matches any
// *Error of the same kind.
var (
	// ErrInvalidURL indicates an invalid repository URL was provided
	ErrInvalidURL = errors.New("invalid URL")

	// ErrSourceUnavailable indicates the archive source could not be reached
	// or answered with a non-success status
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNotFound indicates the archive holds no files under the requested
	// folder
	ErrNotFound = errors.New("not found")

	// ErrArchiveCorrupt indicates the downloaded archive could not be parsed
	ErrArchiveCorrupt = errors.New("archive corrupt")

	// ErrInternal indicates an unexpected failure
	ErrInternal = errors.New("internal error")
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidURL:        ErrInvalidURL,
	KindSourceUnavailable: ErrSourceUnavailable,
	KindNotFound:          ErrNotFound,
	KindArchiveCorrupt:    ErrArchiveCorrupt,
	KindInternal:          ErrInternal,
}

// Error is the tagged error returned by every pipeline stage
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // upstream status for KindSourceUnavailable, 0 otherwise
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = kindSentinels[e.Kind].Error()
	}
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// HTTPStatus returns the status code a caller should answer with
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidURL:
		return http.StatusBadRequest
	case KindSourceUnavailable:
		if e.StatusCode > 0 {
			return e.StatusCode
		}
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewInvalidURLError creates an InvalidURL error
func NewInvalidURLError(message string) *Error {
	return &Error{Kind: KindInvalidURL, Message: message}
}

// NewSourceUnavailableError creates a SourceUnavailable error carrying the
// upstream status code
func NewSourceUnavailableError(message string, statusCode int, err error) *Error {
	return &Error{
		Kind:       KindSourceUnavailable,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewNotFoundError creates a NotFound error
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewArchiveCorruptError creates an ArchiveCorrupt error
func NewArchiveCorruptError(err error) *Error {
	return &Error{Kind: KindArchiveCorrupt, Message: "failed to process ZIP", Err: err}
}

// NewInternalError creates an Internal error
func NewInternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// AsError extracts an *Error from err, wrapping anything else as Internal
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternalError(err)
}

// PublicMessage returns the message safe to show to a client. Wrapped causes
// are only exposed for client errors.
func (e *Error) PublicMessage() string {
	msg := e.Message
	if msg == "" {
		msg = kindSentinels[e.Kind].Error()
	}
	if e.Kind == KindInvalidURL && e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}
