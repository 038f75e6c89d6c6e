package errors

import (
	"errors"
	"fmt"
	"net/http"

	"wordmetrics/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeInputReadFailed = "INPUT_READ_FAILED"
	CodeInvalidColumn   = "INVALID_COLUMN"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeExportFailed    = "EXPORT_FAILED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InputReadFailed(cause error) *AppError {
	return &AppError{Code: CodeInputReadFailed, Message: "failed to read file", Cause: cause}
}

func InvalidColumn(cause error) *AppError {
	return &AppError{Code: CodeInvalidColumn, Message: "invalid column selection", Cause: cause}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func ExportFailed(message string, cause error) *AppError {
	return &AppError{Code: CodeExportFailed, Message: message, Cause: cause}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// FromDomain classifies a domain error into an AppError. Errors that are
// already AppErrors pass through unchanged.
func FromDomain(err error) error {
	if err == nil || IsAppError(err) {
		return err
	}
	switch {
	case core.IsInputError(err):
		return InputReadFailed(err)
	case core.IsColumnError(err):
		return InvalidColumn(err)
	case core.IsConfigError(err):
		return &AppError{Code: CodeInvalidInput, Message: "invalid options", Cause: err}
	}
	return &AppError{Code: CodeInternalError, Message: "transform failed", Cause: err}
}

// HTTPStatus maps an error code to a response status
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInputReadFailed, CodeInvalidInput, CodeConfigInvalid:
		return http.StatusBadRequest
	case CodeInvalidColumn:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
