// Package qerr defines the error kinds raised by the query compilers.
//
// All errors are local and deterministic: they come from caller misuse or
// deployment configuration, never from the environment, so none of them is
// retryable.
package qerr

import (
	"errors"
	"fmt"
)

// Code categorizes compiler errors.
type Code string

const (
	// CodeInvalidArgument indicates a discriminator (combine operator, search
	// mode, join type) outside its enumeration, or an unusable input value.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// CodeNotImplemented indicates the active dialect has no SQL realization
	// for the requested construct.
	CodeNotImplemented Code = "NOT_IMPLEMENTED"

	// CodeParseError indicates malformed host-language input.
	CodeParseError Code = "PARSE_ERROR"
)

// Error is a compiler error with a category and optional context.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Pos is the byte offset in the parsed source (parse errors only, -1 otherwise).
	Pos int

	// Details contains additional context.
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s: %s (at offset %d)", e.Code, e.Message, e.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InvalidArgument creates an INVALID_ARGUMENT error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// NotImplemented creates a NOT_IMPLEMENTED error.
func NotImplemented(format string, args ...any) *Error {
	return &Error{Code: CodeNotImplemented, Message: fmt.Sprintf(format, args...), Pos: -1}
}

// ParseError creates a PARSE_ERROR located at the given source offset.
func ParseError(pos int, format string, args ...any) *Error {
	return &Error{Code: CodeParseError, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// IsInvalidArgument returns true if err is an INVALID_ARGUMENT error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	return hasCode(err, CodeInvalidArgument)
}

// IsNotImplemented returns true if err is a NOT_IMPLEMENTED error.
func IsNotImplemented(err error) bool {
	return hasCode(err, CodeNotImplemented)
}

// IsParseError returns true if err is a PARSE_ERROR.
func IsParseError(err error) bool {
	return hasCode(err, CodeParseError)
}

// CodeOf returns the code of err, or "" if err is not an *Error.
func CodeOf(err error) Code {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

func hasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
