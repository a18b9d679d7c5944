package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how a caller should react to it.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindInvalid         Kind = "INVALID"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindConflict        Kind = "CONFLICT"
	KindInternal        Kind = "INTERNAL"
)

var kindStatus = map[Kind]int{
	KindNotFound:        http.StatusNotFound,
	KindInvalid:         http.StatusBadRequest,
	KindUnauthenticated: http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindConflict:        http.StatusConflict,
	KindInternal:        http.StatusInternalServerError,
}

// AppError is an error with a kind and a client-safe message. Sentinels below
// are *AppError values, so errors.Is matches them through any %w chain.
type AppError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// New returns an AppError without a cause.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to cause. A nil cause yields nil.
func Wrap(kind Kind, message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

var (
	ErrNotFound     = New(KindNotFound, "resource not found")
	ErrInvalidInput = New(KindInvalid, "invalid input")
	ErrUnauthorized = New(KindUnauthenticated, "unauthorized")
	ErrForbidden    = New(KindForbidden, "forbidden")
	ErrConflict     = New(KindConflict, "resource conflict")

	ErrJobNotFound         = New(KindNotFound, "job not found")
	ErrApplicationNotFound = New(KindNotFound, "application not found")
)

// KindOf returns the kind of the outermost AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsNotFound reports whether err is any kind of not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsForbidden reports whether err denies access to an authenticated caller.
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }

// HTTPStatus maps an error to the status code a handler should respond with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return kindStatus[KindOf(err)]
}

// Message returns the client-facing text for err: the outermost AppError's
// message, or err.Error() for plain errors.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
