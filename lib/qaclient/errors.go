// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package qaclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the API. Callers match it with
// errors.As:
//
//	var apiErr *qaclient.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden { ... }
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Detail is the server's explanation, taken from the "detail"
	// field of the error body. Falls back to the status text when
	// the body carries none.
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

// IsAPIError reports whether err wraps an *APIError with the given
// HTTP status.
func IsAPIError(err error, statusCode int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == statusCode
	}
	return false
}

// Reason returns the text to show a user for err: the server's detail
// when err came from the API, otherwise err's message.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return err.Error()
}

// parseAPIError builds an APIError from an error response body. The
// detail field is either a string or, for request validation
// failures, a list of {loc, msg} objects.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var text string
		if err := json.Unmarshal(envelope.Detail, &text); err == nil {
			apiErr.Detail = text
		} else {
			var items []struct {
				Location []any  `json:"loc"`
				Message  string `json:"msg"`
			}
			if err := json.Unmarshal(envelope.Detail, &items); err == nil {
				var messages []string
				for _, item := range items {
					if item.Message != "" {
						messages = append(messages, item.Message)
					}
				}
				apiErr.Detail = strings.Join(messages, "; ")
			}
		}
	}

	if apiErr.Detail == "" {
		apiErr.Detail = fmt.Sprintf("request failed: %d %s", statusCode, http.StatusText(statusCode))
	}
	return apiErr
}
