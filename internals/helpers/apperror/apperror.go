// Package apperror carries the typed failures returned by services.
// Controllers turn them into the JSON error envelope.
package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindInvalidSession
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidSession:
		return "invalid_session"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindUnauthenticated, KindInvalidSession:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// Stable machine codes sent as error_code.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeInvalidSession    = "INVALID_SESSION"
	CodeInvalidCreds      = "INVALID_CREDENTIALS"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyRegistered = "ALREADY_REGISTERED"
	CodeDuplicateSlug     = "DUPLICATE_SLUG"
	CodeDuplicateUsername = "DUPLICATE_USERNAME"
	CodeUpstream          = "UPSTREAM_FAILURE"
	CodeInternal          = "INTERNAL_ERROR"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code, so a wrapped or re-messaged error still equals its sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithErr returns a copy of e that wraps cause.
func (e *Error) WithErr(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithMessage returns a copy of e carrying msg.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

var (
	ErrAlreadyRegistered  = &Error{Kind: KindConflict, Code: CodeAlreadyRegistered, Message: "already registered for this event"}
	ErrDuplicateSlug      = &Error{Kind: KindConflict, Code: CodeDuplicateSlug, Message: "slug already in use"}
	ErrDuplicateUsername  = &Error{Kind: KindConflict, Code: CodeDuplicateUsername, Message: "username already taken"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Code: CodeInvalidCreds, Message: "invalid credentials"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Code: CodeUnauthenticated, Message: "authentication required"}
	ErrInvalidSession     = &Error{Kind: KindInvalidSession, Code: CodeInvalidSession, Message: "invalid or expired session"}
	ErrForbidden          = &Error{Kind: KindForbidden, Code: CodeForbidden, Message: "forbidden"}
	ErrNotFound           = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "not found"}
)

func Validation(msg string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: msg, Fields: fields}
}

func ValidationField(field, msg string) *Error {
	return Validation(msg, map[string][]string{field: {msg}})
}

func NotFound(what string) *Error {
	return ErrNotFound.WithMessage(what + " not found")
}

func Forbidden(msg string) *Error {
	return ErrForbidden.WithMessage(msg)
}

func Upstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Code: CodeUpstream, Message: msg, Err: cause}
}

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: msg, Err: cause}
}

// From coerces any error into *Error. Unknown errors become Internal,
// *fiber.Error keeps its status through the closest kind.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fromStatus(fe.Code, fe.Message)
	}
	return Internal("internal server error", err)
}

func fromStatus(status int, msg string) *Error {
	switch {
	case status == fiber.StatusUnauthorized:
		return ErrUnauthenticated.WithMessage(msg)
	case status == fiber.StatusForbidden:
		return ErrForbidden.WithMessage(msg)
	case status == fiber.StatusNotFound:
		return ErrNotFound.WithMessage(msg)
	case status == fiber.StatusConflict:
		return &Error{Kind: KindConflict, Code: "CONFLICT", Message: msg}
	case status == fiber.StatusBadGateway || status == fiber.StatusGatewayTimeout:
		return Upstream(msg, nil)
	case status >= 400 && status < 500:
		return Validation(msg, nil)
	default:
		return Internal(msg, nil)
	}
}

func KindOf(err error) Kind {
	if ae := From(err); ae != nil {
		return ae.Kind
	}
	return KindInternal
}
