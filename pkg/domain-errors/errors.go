// Package domainerrors provides coded domain errors with stable HTTP mapping.
//
// Services return these for expected domain violations instead of free-form
// errors, so handlers can translate them without string matching and callers
// always see one specific message per violation kind. Infrastructure facts
// (record missing, store unavailable) use pkg/platform/sentinel and are
// wrapped into these codes at service boundaries.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. The set is closed; handlers map each code to
// exactly one HTTP status.
type Code string

const (
	// Benefit engine violations. All are terminal: the caller must correct
	// its input before retrying.
	CodeCardinalityExceeded Code = "cardinality_exceeded"
	CodeMissingAmount       Code = "missing_amount"
	CodeAmountOutOfRange    Code = "amount_out_of_range"
	CodeEventNotClaimable   Code = "event_not_claimable"
	CodeIllegalTransition   Code = "illegal_transition"
	CodeCommentRequired     Code = "comment_required"

	// Platform codes shared by all modules.
	CodeValidation   Code = "validation_error"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal_error"
)

// Error is a coded domain error. It may wrap an underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a domain error with the given code and user-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status. Every code has exactly one
// mapping; unknown codes are treated as internal.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeMissingAmount, CodeAmountOutOfRange, CodeEventNotClaimable,
		CodeCommentRequired, CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeCardinalityExceeded, CodeIllegalTransition, CodeConflict:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
