// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds the HTTP and connection helpers shared by the
// board's client and server.
//
// Response bodies from the storage collaborator are read through
// [ReadResponse] and [DecodeResponse], which refuse bodies larger than
// [MaxResponseSize] rather than buffering without bound.
// [IsExpectedCloseError] separates ordinary connection teardown from
// failures worth logging.
package netutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxResponseSize bounds API response bodies: 16 MB. A full question
// list for a large event is well under a megabyte.
const MaxResponseSize int64 = 16 << 20

// maxErrorBody bounds the slice of an error body quoted in messages.
const maxErrorBody = 512

// ErrResponseTooLarge is returned when a body exceeds MaxResponseSize.
var ErrResponseTooLarge = errors.New("response body exceeds size limit")

// ReadResponse reads a complete response body of at most
// MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, ErrResponseTooLarge
	}
	return data, nil
}

// DecodeResponse reads a response body with ReadResponse and
// JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody returns the start of an error response body for use in a
// diagnostic message. Read errors are ignored: whatever was read is
// still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return strings.TrimSpace(string(data))
}
