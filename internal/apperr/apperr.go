// Package apperr defines the error kinds returned by the services and how
// they map to HTTP responses
package apperr

import (
	"errors"
	"net/http"
)

type Kind uint8

const (
	Internal Kind = iota
	InvalidArgument
	PayloadTooLarge
	UnsupportedMediaType
	NotFound
	Forbidden
	Unauthorized
	Conflict
	DuplicatePending
	SelfRentalForbidden
	UploadNotConfirmed
	StorageError
)

var kindNames = map[Kind]string{
	Internal:             "internal",
	InvalidArgument:      "invalid_argument",
	PayloadTooLarge:      "payload_too_large",
	UnsupportedMediaType: "unsupported_media_type",
	NotFound:             "not_found",
	Forbidden:            "forbidden",
	Unauthorized:         "unauthorized",
	Conflict:             "conflict",
	DuplicatePending:     "duplicate_pending",
	SelfRentalForbidden:  "self_rental_forbidden",
	UploadNotConfirmed:   "upload_not_confirmed",
	StorageError:         "storage_error",
}

var kindStatus = map[Kind]int{
	Internal:             http.StatusInternalServerError,
	InvalidArgument:      http.StatusBadRequest,
	PayloadTooLarge:      http.StatusRequestEntityTooLarge,
	UnsupportedMediaType: http.StatusUnsupportedMediaType,
	NotFound:             http.StatusNotFound,
	Forbidden:            http.StatusForbidden,
	Unauthorized:         http.StatusUnauthorized,
	Conflict:             http.StatusConflict,
	DuplicatePending:     http.StatusConflict,
	SelfRentalForbidden:  http.StatusBadRequest,
	UploadNotConfirmed:   http.StatusBadRequest,
	StorageError:         http.StatusInternalServerError,
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "unknown"
}

// Error carries a kind, a message safe to show to the caller and optionally
// the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}

	if e.Err != nil {
		return msg + ", " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any error of the same kind when the target has no message,
// which is how the sentinels below are declared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// Sentinels, one per kind. Use them with errors.Is
var (
	ErrInternal             = &Error{Kind: Internal}
	ErrInvalidArgument      = &Error{Kind: InvalidArgument}
	ErrPayloadTooLarge      = &Error{Kind: PayloadTooLarge}
	ErrUnsupportedMediaType = &Error{Kind: UnsupportedMediaType}
	ErrNotFound             = &Error{Kind: NotFound}
	ErrForbidden            = &Error{Kind: Forbidden}
	ErrUnauthorized         = &Error{Kind: Unauthorized}
	ErrConflict             = &Error{Kind: Conflict}
	ErrDuplicatePending     = &Error{Kind: DuplicatePending}
	ErrSelfRentalForbidden  = &Error{Kind: SelfRentalForbidden}
	ErrUploadNotConfirmed   = &Error{Kind: UploadNotConfirmed}
	ErrStorage              = &Error{Kind: StorageError}
)

func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// KindOf returns the kind of err. Anything that isn't an *Error is Internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Internal
}

func HTTPStatus(err error) int {
	if s, ok := kindStatus[KindOf(err)]; ok {
		return s
	}

	return http.StatusInternalServerError
}

// Message returns the text to put in a response body. Server side failures
// never leak their cause.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || HTTPStatus(err) >= http.StatusInternalServerError {
		return "Internal server error"
	}

	if e.Msg == "" {
		return e.Kind.String()
	}

	return e.Msg
}

// IsServerSide reports failures that deserve an error level log line
func IsServerSide(err error) bool {
	return HTTPStatus(err) >= http.StatusInternalServerError
}
