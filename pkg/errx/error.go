package errx

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindUpstream   Kind = "upstream_error"
	KindParse      Kind = "parse_error"
	KindInternal   Kind = "internal_error"
)

const (
	// ValidationErrorMessage describes a rejected request body or query.
	ValidationErrorMessage = "invalid request"
	// UpstreamErrorMessage describes a failed completion call.
	UpstreamErrorMessage = "completion request failed"
	// ParseErrorMessage describes completion output that does not match the expected schema.
	ParseErrorMessage = "completion output could not be parsed"
	// SystemErrorMessage is a fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
)

// AppError wraps an underlying error with a kind, an HTTP status and a message.
type AppError struct {
	Kind    Kind
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(kind Kind, err error, status int, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Validation wraps a request binding failure.
func Validation(err error) *AppError {
	return New(KindValidation, err, http.StatusUnprocessableEntity, ValidationErrorMessage)
}

// Upstream wraps a completion client failure. Nil stays nil.
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return New(KindUpstream, err, http.StatusInternalServerError, UpstreamErrorMessage)
}

// Parse wraps a JSON or schema failure of completion output.
func Parse(err error) *AppError {
	return New(KindParse, err, http.StatusInternalServerError, ParseErrorMessage)
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// From returns the AppError in err's chain, or an internal AppError wrapping err.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(KindInternal, err, http.StatusInternalServerError, SystemErrorMessage)
}
