// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// ParseLevel parses a --log-level value: debug, info, warn, or error.
func ParseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, Validation("invalid log level %q (want debug, info, warn, or error)", value)
	}
	return level, nil
}

// NewCommandLogger creates a structured logger writing to w. When w is
// a terminal, it uses slog.TextHandler for human-readable output;
// otherwise slog.JSONHandler for machine-parseable output.
func NewCommandLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w any) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Streams are the standard streams a command reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StandardStreams returns the process's stdin, stdout, and stderr.
func StandardStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Printf writes a formatted line to the error stream, where progress
// and confirmation messages go so stdout stays parseable.
func (streams Streams) Printf(format string, args ...any) {
	fmt.Fprintf(streams.Err, format+"\n", args...)
}
