package errors

import (
	"errors"
	"fmt"
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

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
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

// GetCode returns the error code if the chain contains an AppError,
// otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Error codes
const (
	CodeMalformedInput   = "MALFORMED_INPUT"
	CodeDegenerateSample = "DEGENERATE_SAMPLE"
	CodeKeyMismatch      = "KEY_MISMATCH"
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// MalformedInput signals unusable input: a non-numeric outcome column or
// fewer than 2 distinct group labels.
func MalformedInput(message string) *AppError {
	return New(CodeMalformedInput, message)
}

// DegenerateSample signals insufficient sample size for variance pooling.
func DegenerateSample(message string) *AppError {
	return New(CodeDegenerateSample, message)
}

// KeyMismatch signals an internal join inconsistency between pipeline
// stages. Always a pipeline bug, never recoverable.
func KeyMismatch(message string) *AppError {
	return New(CodeKeyMismatch, message)
}

// ConfigInvalid signals unusable configuration.
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

// InvalidInput signals a caller error outside the statistical taxonomy.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func hasCode(err error, code string) bool {
	return GetCode(err) == code
}

// IsMalformedInput reports whether err carries CodeMalformedInput.
func IsMalformedInput(err error) bool { return hasCode(err, CodeMalformedInput) }

// IsDegenerateSample reports whether err carries CodeDegenerateSample.
func IsDegenerateSample(err error) bool { return hasCode(err, CodeDegenerateSample) }

// IsKeyMismatch reports whether err carries CodeKeyMismatch.
func IsKeyMismatch(err error) bool { return hasCode(err, CodeKeyMismatch) }
