// internal/errdefs/errdefs.go
package errdefs

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code carried across the caller-facing
// operation boundary alongside the human-readable message.
type Code string

const (
	// CodePermissionDenied - the OS has not granted input observation or
	// injection rights; user action required, never retried automatically.
	CodePermissionDenied Code = "PERMISSION_DENIED"
	// CodeInvalidState - an operation was requested in a session state that
	// does not support it.
	CodeInvalidState Code = "INVALID_STATE"
	// CodeIndexOutOfRange - an action index referenced a non-existent entry.
	CodeIndexOutOfRange Code = "INDEX_OUT_OF_RANGE"
	// CodeTargetUnresolved - replay could not re-acquire an action's target.
	CodeTargetUnresolved Code = "TARGET_UNRESOLVED"
	// CodeDeliveryExhausted - every delivery strategy failed verification.
	CodeDeliveryExhausted Code = "DELIVERY_EXHAUSTED"
	// CodeSerializationFailed - the script artifact could not be written.
	CodeSerializationFailed Code = "SERIALIZATION_FAILED"
	// CodeFileNotFound - a script artifact path does not exist.
	CodeFileNotFound Code = "FILE_NOT_FOUND"
	// CodeInternal - any error not covered by the taxonomy above.
	CodeInternal Code = "INTERNAL"
)

// Error is a coded error. It wraps an optional cause so callers can use
// errors.Is/As through it.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a coded error with a formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the code from an error chain. Errors outside the taxonomy
// report CodeInternal; a nil error has no code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// MessageOf returns the taxonomy message without the code prefix, or the
// plain error text for uncoded errors.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		if coded.Cause != nil {
			return fmt.Sprintf("%s: %v", coded.Message, coded.Cause)
		}
		return coded.Message
	}
	return err.Error()
}
