package ldlm

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a return code and a message. All failures of the value block cache are
// reported as *Error; none of them are fatal to the process.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The underlying error, if any.
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ldlm (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("ldlm (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new Error with the given code and message wrapping err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// CodeOf returns the RetCode of err. A nil error is RetCSuccess, errors that are not an
// *Error are RetCBackendError.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCBackendError
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code RetCode) bool {
	return CodeOf(err) == code
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess        RetCode = iota // 0: Operation succeeded.
	RetCOutOfMemory                   // 1: The value block could not be allocated.
	RetCObjectNotFound                // 2: The resource's object id does not resolve to an object.
	RetCBackendError                  // 3: The object exists but its attributes could not be read.
	RetCInvalidRequest                // 4: The request names no valid resource or handle.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCOutOfMemory:
		return "OutOfMemory"
	case RetCObjectNotFound:
		return "ObjectNotFound"
	case RetCBackendError:
		return "BackendError"
	case RetCInvalidRequest:
		return "InvalidRequest"
	default:
		return fmt.Sprintf("Unknown(%d)", uint64(c))
	}
}
