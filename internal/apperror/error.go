package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the error translator can pick a status code
// without inspecting messages.
type Kind int

const (
	// KindOther is a failure with an optional attached status.
	KindOther Kind = iota
	// KindInvalidInput is a request-shape violation caught by a validation stage.
	KindInvalidInput
	// KindValidation is an entity schema violation caught before persisting.
	KindValidation
	// KindNotFound means an identifier resolved to nothing.
	KindNotFound
	// KindConflict is a uniqueness constraint violation.
	KindConflict
	// KindStore is an unexpected persistence failure.
	KindStore
	// KindUnauthorized means the request has no authenticated session.
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindValidation:
		return "Validation"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindStore:
		return "Store"
	case KindUnauthorized:
		return "Unauthorized"
	default:
		return "Other"
	}
}

// FieldError is a single rule violation reported back to the client.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged error returned by every pipeline stage.
type Error struct {
	Kind    Kind
	Message string
	// Value is the offending input, e.g. the id that was not found.
	Value  string
	Fields []FieldError
	// Status overrides the default status for KindOther.
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidInput reports request-shape violations.
func InvalidInput(fields ...FieldError) *Error {
	return &Error{Kind: KindInvalidInput, Message: "Validation failed", Fields: fields}
}

// Validation reports entity schema violations.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func NotFound(id string) *Error {
	return &Error{Kind: KindNotFound, Message: "resource not found", Value: id}
}

func Conflict(err error) *Error {
	return &Error{Kind: KindConflict, Message: "duplicate key", Err: err}
}

// Store wraps an unexpected persistence failure for operation op.
func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Message: op, Err: err}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// WithStatus returns a generic failure carrying its own status code.
func WithStatus(status int, message string) *Error {
	return &Error{Kind: KindOther, Message: message, Status: status}
}

// BadRequest is shorthand for WithStatus(http.StatusBadRequest, message).
func BadRequest(message string) *Error {
	return WithStatus(http.StatusBadRequest, message)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
