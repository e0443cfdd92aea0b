package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel values, checked with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("operation not allowed")
	ErrBadRequest    = errors.New("malformed request")
	ErrInternal      = errors.New("internal server error")
	ErrDuplicateSlug = errors.New("blog with this slug already exists")
)

var Unauthorized = NewApiErr(http.StatusUnauthorized, "unauthorized")

// ApiErr is an error with an HTTP status code attached, so handlers can hand
// any error to the responder and get the right response out.
type ApiErr struct {
	StatusCode int
	err        error
	Details    string // additional details about the error
	Field      string // field that caused the error, for validation errors
	Cause      error  // underlying cause
}

func NewApiErr(statusCode int, message string) *ApiErr {
	return &ApiErr{
		StatusCode: statusCode,
		err:        errors.New(message),
	}
}

func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// GetFullError returns the error message including the full cause chain.
func (e *ApiErr) GetFullError() string {
	msg := e.Error()
	if e.Cause != nil {
		if apiErr, ok := e.Cause.(*ApiErr); ok {
			msg = fmt.Sprintf("%s -> %s", msg, apiErr.GetFullError())
		} else {
			msg = fmt.Sprintf("%s -> %s", msg, e.Cause.Error())
		}
	}
	return msg
}

// Unwrap lets errors.Is see through ApiErr to the sentinel underneath.
func (e *ApiErr) Unwrap() error {
	return e.err
}

func NewNotFoundError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: fmt.Errorf("%s: %w", message, ErrNotFound)}
}

func NewForbiddenError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusForbidden, err: fmt.Errorf("%s: %w", message, ErrForbidden)}
}

func NewBadRequestError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: errors.New(message)}
}

// NewMissingRequiredFieldError reports an absent required field as a 400 with
// the field name attached for per-field client messages.
func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrBadRequest,
		Details:    fmt.Sprintf("missing required field: %s", fieldName),
		Field:      fieldName,
	}
}

// NewInvalidFieldError reports a present-but-invalid field as a 400.
func NewInvalidFieldError(fieldName, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrBadRequest,
		Details:    fmt.Sprintf("invalid field %s: %s", fieldName, reason),
		Field:      fieldName,
	}
}

// NewDatabaseError wraps an unexpected store failure as a generic 500. The
// cause stays attached for logs but the client only sees the outer message.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrInternal,
		Details:    fmt.Sprintf("failed to %s %s", operation, entity),
		Cause:      cause,
	}
}

// NewDuplicateSlugError reports a unique-index collision on the derived slug.
// Deliberately a 400 with a specific message, not a generic failure.
func NewDuplicateSlugError() *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrDuplicateSlug}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsDuplicateSlug(err error) bool {
	return errors.Is(err, ErrDuplicateSlug)
}
