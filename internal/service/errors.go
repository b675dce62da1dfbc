package service

import (
	"errors"
	"fmt"
)

// Machine-readable error codes surfaced to API callers.
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeCountExceeded          = "COUNT_EXCEEDED"
	CodeNoDataSource           = "NO_DATA_SOURCE"
	CodeUnsupportedProvider    = "UNSUPPORTED_PROVIDER"
	CodeConfigDecryptionFailed = "CONFIG_DECRYPTION_FAILED"
	CodeParseError             = "PARSE_ERROR"
	CodeGenerationFailed       = "GENERATION_FAILED"
	CodePartialSuccess         = "PARTIAL_SUCCESS"
	CodeTaskNotFound           = "TASK_NOT_FOUND"
)

// Error pairs a stable code with a human-readable message.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// ErrorCode extracts the machine code from any error, defaulting to
// GENERATION_FAILED.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeGenerationFailed
}
