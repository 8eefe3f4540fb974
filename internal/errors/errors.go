package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ConfigError      ErrorCode = "config_error"
	UpstreamError    ErrorCode = "upstream_error"
	InvalidRecord    ErrorCode = "invalid_record"
	PersistenceError ErrorCode = "persistence_error"
	AccountNotFound  ErrorCode = "account_not_found"
	InvalidInput     ErrorCode = "invalid_input"
	InternalError    ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`

	cause error
}

func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap builds an AppError that keeps err as its cause and details.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: err.Error(),
		cause:   err,
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches on code so that sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus maps the error code onto a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case AccountNotFound:
		return http.StatusNotFound
	case InvalidInput, InvalidRecord:
		return http.StatusBadRequest
	case UpstreamError:
		return http.StatusBadGateway
	case ConfigError, PersistenceError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrAccountNotFound = NewAppError(AccountNotFound, "account not found")
	ErrInvalidRecord   = NewAppError(InvalidRecord, "invalid record")
	ErrUpstream        = NewAppError(UpstreamError, "upstream request failed")
	ErrPersistence     = NewAppError(PersistenceError, "persistence failure")
	ErrConfig          = NewAppError(ConfigError, "invalid configuration")

	ErrCannotBeginTransaction = NewAppError(InternalError, "executor cannot begin a transaction")
)
