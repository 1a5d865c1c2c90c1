package schema

import (
	"errors"
	"fmt"
)

// Error is an inference failure.
//
// Every failure aborts the whole run. Error carries a stable code so callers
// (the CLI, golden scenarios) can match on the category rather than the text.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Subject names the table, field, parameter or construct involved.
	Subject string
}

// ErrorCode categorizes inference errors.
type ErrorCode string

const (
	// ErrCodeUnknownTable indicates a reference to a table absent from the model.
	ErrCodeUnknownTable ErrorCode = "UNKNOWN_TABLE"

	// ErrCodeUnknownField indicates a projected or defined field absent from a table.
	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"

	// ErrCodeUnknownParameter indicates a variable never bound in scope.
	ErrCodeUnknownParameter ErrorCode = "UNKNOWN_PARAMETER"

	// ErrCodeEmptyTargetSet indicates a target expression is an empty array.
	ErrCodeEmptyTargetSet ErrorCode = "EMPTY_TARGET_SET"

	// ErrCodeTypeMismatch indicates a kind does not have the shape an operation requires.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeUnsupported indicates a valid construct that inference does not model.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_EXPRESSION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsUnsupported returns true if the error is an unsupported-expression error.
// Uses errors.As to handle wrapped errors.
func IsUnsupported(err error) bool {
	return CodeOf(err) == ErrCodeUnsupported
}

// UnknownTable returns an ErrCodeUnknownTable error.
func UnknownTable(table string) *Error {
	return &Error{
		Code:    ErrCodeUnknownTable,
		Message: fmt.Sprintf("unknown table %q", table),
		Subject: table,
	}
}

// UnknownField returns an ErrCodeUnknownField error.
func UnknownField(table, field string) *Error {
	return &Error{
		Code:    ErrCodeUnknownField,
		Message: fmt.Sprintf("unknown field %q on table %q", field, table),
		Subject: field,
	}
}

// UnknownParameter returns an ErrCodeUnknownParameter error.
func UnknownParameter(name string) *Error {
	return &Error{
		Code:    ErrCodeUnknownParameter,
		Message: fmt.Sprintf("unknown parameter $%s", name),
		Subject: name,
	}
}

// EmptyTargetSet returns an ErrCodeEmptyTargetSet error.
func EmptyTargetSet(expr string) *Error {
	return &Error{
		Code:    ErrCodeEmptyTargetSet,
		Message: fmt.Sprintf("empty target set %s", expr),
		Subject: expr,
	}
}

// TypeMismatch returns an ErrCodeTypeMismatch error.
func TypeMismatch(subject, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
	}
}

// Unsupported returns an ErrCodeUnsupported error.
func Unsupported(subject, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeUnsupported,
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
	}
}
