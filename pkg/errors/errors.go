// Package errors provides structured error types for treerings.
//
// Every error that can reach a user carries a [Code]. The CLI prints
// [UserMessage]; the HTTP API answers with [HTTPStatus] and the code in
// the response body.
//
// Codes group by prefix:
//   - INVALID_*: the request or its input is malformed
//   - *_NOT_FOUND: a revision, timeline, file or repository is missing
//   - RATE_LIMITED, TIMEOUT: transient, the caller may retry
//   - STORAGE_ERROR: a cache or store backend failed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPath, "path %q has an empty segment", p)
//	if errors.Is(err, errors.ErrCodeInvalidPath) {
//	    // skip the entry
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save timeline %s", id)
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidRepo     Code = "INVALID_REPO"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidVizType  Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidEncoding Code = "INVALID_ENCODING"
	ErrCodeEmptyRevision   Code = "EMPTY_REVISION"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeRevisionNotFound Code = "REVISION_NOT_FOUND"
	ErrCodeTimelineNotFound Code = "TIMELINE_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	ErrCodeRateLimited Code = "RATE_LIMITED"
	ErrCodeTimeout     Code = "TIMEOUT"

	ErrCodeStorage Code = "STORAGE_ERROR"
)

// Error is a structured error with a code and optional cause.
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

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// coder is implemented by error types that know their code without
// being an *Error.
type coder interface {
	Code() Code
}

// GetCode returns the code of the outermost coded error in err's chain.
// A context deadline counts as [ErrCodeTimeout]. It returns "" when
// nothing in the chain has a code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	return ""
}

// Is reports whether err has the given code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// As is [errors.As], re-exported so callers need only one errors import.
func As(err error, target any) bool { return errors.As(err, target) }

// UserMessage returns the message of a coded error without the code
// prefix, or err.Error() for anything else.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error's code to the status the HTTP API answers with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath,
		ErrCodeInvalidRepo, ErrCodeInvalidConfig, ErrCodeInvalidVizType,
		ErrCodeInvalidEncoding, ErrCodeEmptyRevision:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeRevisionNotFound, ErrCodeTimelineNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RateLimitedError is returned when a remote API refuses requests until
// its quota resets.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 if unknown
	Message    string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by %s: retry after %d seconds", e.Message, e.RetryAfter)
	}
	if e.Message != "" {
		return "rate limited by " + e.Message
	}
	return "rate limited"
}

func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
