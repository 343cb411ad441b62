// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/qaboard/lib/qaclient"
)

// ErrorCategory classifies command errors so scripts can tell bad
// input from a server that is down. Each category has its own exit
// code.
type ErrorCategory string

const (
	// CategoryValidation indicates invalid input: missing arguments,
	// unparseable values, or a request the server rejected as
	// malformed.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced question does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden indicates missing or insufficient credentials.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict indicates the request conflicts with existing
	// state, such as a username already taken.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient indicates a failure that may succeed on retry:
	// the server is unreachable or returned a 5xx.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected local failure.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands. It wraps the
// underlying error so errors.Is and errors.As still see the chain.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// ExitCode maps the category to the process exit status.
func (e *ToolError) ExitCode() int {
	switch e.Category {
	case CategoryValidation:
		return 2
	case CategoryNotFound:
		return 3
	case CategoryForbidden:
		return 4
	case CategoryConflict:
		return 5
	case CategoryTransient:
		return 6
	default:
		return 1
	}
}

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// FromAPI categorizes an error returned by qaclient. The message is
// "action: reason", where reason is the server's detail when there is
// one.
func FromAPI(action string, err error) *ToolError {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}

	category := CategoryTransient
	var apiErr *qaclient.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			category = CategoryNotFound
		case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
			category = CategoryForbidden
		case apiErr.StatusCode == http.StatusConflict:
			category = CategoryConflict
		case apiErr.StatusCode < http.StatusInternalServerError:
			category = CategoryValidation
		}
	}
	return &ToolError{
		Category: category,
		Err:      &reasonError{message: action + ": " + qaclient.Reason(err), err: err},
	}
}

// reasonError replaces err's text with a user-facing message while
// keeping err in the chain.
type reasonError struct {
	message string
	err     error
}

func (e *reasonError) Error() string { return e.message }

func (e *reasonError) Unwrap() error { return e.err }
