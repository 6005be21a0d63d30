// Package errors provides coded errors for the sync engine.
//
// Every failure the coordinators observe is classified into one of four
// kinds so it can be folded into a health transition:
//
//	LocalStorage     the durable cache could not be read or written
//	RemoteTransport  the remote service could not be reached
//	RemoteProtocol   the remote service answered with an error payload
//	Decoding         a payload or record could not be interpreted
//
// Callers test for a kind with errors.Is against the sentinels:
//
//	if errors.Is(err, errors.ErrRemoteTransport) {
//	    tracker.OnRemoteSyncFailure(len(items))
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeLocalStorage    Code = "LOCAL_STORAGE"
	CodeRemoteTransport Code = "REMOTE_TRANSPORT"
	CodeRemoteProtocol  Code = "REMOTE_PROTOCOL"
	CodeDecoding        Code = "DECODING"
	CodeValidation      Code = "VALIDATION"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeInternal        Code = "INTERNAL"
)

// IsRemote reports whether the code describes a failure talking to the remote service.
func (c Code) IsRemote() bool {
	return c == CodeRemoteTransport || c == CodeRemoteProtocol
}

// Error is a coded error with a message and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// ProtocolDetails describes an error payload returned by the remote service.
type ProtocolDetails struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
}

// Sentinel errors for use with errors.Is().
var (
	ErrLocalStorage    = &Error{Code: CodeLocalStorage, Message: "local storage error"}
	ErrRemoteTransport = &Error{Code: CodeRemoteTransport, Message: "remote transport error"}
	ErrRemoteProtocol  = &Error{Code: CodeRemoteProtocol, Message: "remote protocol error"}
	ErrDecoding        = &Error{Code: CodeDecoding, Message: "decoding error"}
	ErrValidation      = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists   = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrUnauthorized    = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInternal        = &Error{Code: CodeInternal, Message: "internal error"}
)

// LocalStorage wraps a durable cache failure.
func LocalStorage(err error, msg string) *Error {
	return &Error{Code: CodeLocalStorage, Message: msg, cause: err}
}

// RemoteTransport wraps a connectivity failure.
func RemoteTransport(err error, msg string) *Error {
	return &Error{Code: CodeRemoteTransport, Message: msg, cause: err}
}

// RemoteProtocol creates an error for a well-formed error response from the remote service.
func RemoteProtocol(status int, message string) *Error {
	msg := fmt.Sprintf("remote returned status %d", status)
	if message != "" {
		msg += ": " + message
	}
	return &Error{
		Code:    CodeRemoteProtocol,
		Message: msg,
		Details: ProtocolDetails{Status: status, Message: message},
	}
}

// Decoding wraps a payload that could not be interpreted.
func Decoding(err error, msg string) *Error {
	return &Error{Code: CodeDecoding, Message: msg, cause: err}
}

// Decodingf creates a decoding error with formatted message.
func Decodingf(format string, args ...any) *Error {
	return &Error{Code: CodeDecoding, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExistsf creates an already exists error with formatted message.
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
