// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"
)

func TestReadResponse(t *testing.T) {
	t.Run("normal body", func(t *testing.T) {
		data, err := ReadResponse(strings.NewReader(`[{"id":1}]`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `[{"id":1}]` {
			t.Fatalf("got %q", data)
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		_, err := ReadResponse(io.LimitReader(zeroReader{}, MaxResponseSize+10))
		if !errors.Is(err, ErrResponseTooLarge) {
			t.Fatalf("error = %v, want ErrResponseTooLarge", err)
		}
	})

	t.Run("read error propagates", func(t *testing.T) {
		if _, err := ReadResponse(failReader{}); err == nil {
			t.Fatal("expected error from failing reader")
		}
	})
}

func TestDecodeResponse(t *testing.T) {
	var result struct {
		ID      int64  `json:"id"`
		Message string `json:"message"`
	}
	if err := DecodeResponse(strings.NewReader(`{"id":3,"message":"hi"}`), &result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ID != 3 || result.Message != "hi" {
		t.Fatalf("decoded %+v", result)
	}

	if err := DecodeResponse(strings.NewReader(`<html>`), &result); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
	if err := DecodeResponse(failReader{}, &result); err == nil {
		t.Fatal("expected error from failing reader")
	}
}

func TestErrorBody(t *testing.T) {
	if got := ErrorBody(strings.NewReader("  {\"detail\":\"Not found\"}\n")); got != `{"detail":"Not found"}` {
		t.Errorf("got %q", got)
	}
	long := bytes.Repeat([]byte("x"), 4*maxErrorBody)
	if got := ErrorBody(bytes.NewReader(long)); len(got) != maxErrorBody {
		t.Errorf("long body quoted as %d bytes, want %d", len(got), maxErrorBody)
	}
	if got := ErrorBody(failReader{}); got != "" {
		t.Errorf("failing reader gave %q", got)
	}
}

func TestIsExpectedCloseError(t *testing.T) {
	expected := []error{
		io.EOF,
		fmt.Errorf("read frame: %w", io.EOF),
		net.ErrClosed,
		context.Canceled,
		syscall.ECONNRESET,
		&net.OpError{Op: "write", Err: syscall.EPIPE},
	}
	for _, err := range expected {
		if !IsExpectedCloseError(err) {
			t.Errorf("IsExpectedCloseError(%v) = false", err)
		}
	}
	for _, err := range []error{nil, errors.New("handshake failed"), syscall.ECONNREFUSED} {
		if IsExpectedCloseError(err) {
			t.Errorf("IsExpectedCloseError(%v) = true", err)
		}
	}
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("simulated read failure")
}

type zeroReader struct{}

func (zeroReader) Read(buffer []byte) (int, error) {
	clear(buffer)
	return len(buffer), nil
}
