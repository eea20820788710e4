// Package apperr is the typed error services return so the HTTP layer can
// choose a status code without knowing the domain.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindBadRequest
	KindConflict
	KindForbidden
	KindLocked
	KindUnavailable
	KindInternal
)

var kinds = map[Kind]struct {
	name   string
	status int
}{
	KindNotFound:    {"not_found", http.StatusNotFound},
	KindValidation:  {"validation", http.StatusBadRequest},
	KindBadRequest:  {"bad_request", http.StatusBadRequest},
	KindConflict:    {"conflict", http.StatusConflict},
	KindForbidden:   {"forbidden", http.StatusForbidden},
	KindLocked:      {"locked", http.StatusBadRequest},
	KindUnavailable: {"unavailable", http.StatusServiceUnavailable},
	KindInternal:    {"internal", http.StatusInternalServerError},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return "unknown"
}

// Error carries a client-safe Message. Op and Err are only for logs.
type Error struct {
	Kind    Kind
	Message string
	Op      string
	Err     error
	Details any
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, e.Message)
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus answers 400 for KindLocked; the staff UI shows that message
// inline next to the assignment field.
func (e *Error) HTTPStatus() int {
	if info, ok := kinds[e.Kind]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func New(kind Kind, message string) *Error { return &Error{Kind: kind, Message: message} }

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error    { return New(KindNotFound, message) }
func Validation(message string) *Error  { return New(KindValidation, message) }
func BadRequest(message string) *Error  { return New(KindBadRequest, message) }
func Locked(message string) *Error      { return New(KindLocked, message) }
func Unavailable(message string) *Error { return New(KindUnavailable, message) }

// GetKind looks through wrapping for an *Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool { return GetKind(err) == kind }
