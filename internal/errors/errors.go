package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Base error values; *Error matches them through Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrAuthentication     = errors.New("authentication failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrUpstream           = errors.New("upstream failure")
	ErrPersistence        = errors.New("persistence failure")
)

// Kind represents the category of error
type Kind string

const (
	KindValidation         Kind = "validation"
	KindAuthentication     Kind = "authentication"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindInsufficientPoints Kind = "insufficient_points"
	KindUpstream           Kind = "upstream"
	KindPersistence        Kind = "persistence"
)

// Error is a categorised failure of a named operation.
type Error struct {
	Kind      Kind
	Op        string // e.g. "ledger.debit", "genai.generate"
	Err       error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is interface
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrInsufficientPoints:
		return e.Kind == KindInsufficientPoints
	case ErrUpstream:
		return e.Kind == KindUpstream
	case ErrPersistence:
		return e.Kind == KindPersistence
	}
	return false
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err, Retryable: kind == KindPersistence}
}

func Validation(op, format string, args ...any) error {
	return New(KindValidation, op, fmt.Errorf(format, args...))
}

func Authentication(op string, err error) error {
	return New(KindAuthentication, op, err)
}

func NotFound(op, format string, args ...any) error {
	return New(KindNotFound, op, fmt.Errorf(format, args...))
}

func Conflict(op, format string, args ...any) error {
	return New(KindConflict, op, fmt.Errorf(format, args...))
}

func InsufficientPoints(op string, balance, required int) error {
	return New(KindInsufficientPoints, op, fmt.Errorf("balance %d is below required %d", balance, required))
}

// Upstream wraps a failure of an external provider. retryable marks transient failures
// (timeouts, 429, 5xx) the caller may try again later.
func Upstream(op string, err error, retryable bool) error {
	e := New(KindUpstream, op, err)
	e.Retryable = retryable
	return e
}

func Persistence(op string, err error) error {
	return New(KindPersistence, op, err)
}

// KindOf returns the kind of the first *Error in the chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// HTTPStatus maps an error to the response status used by the API handlers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindAuthentication:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInsufficientPoints:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
