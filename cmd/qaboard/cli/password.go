// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadPassword obtains a password. passwordFile selects the source: a
// path reads the file, "-" reads the first line of streams.In, and ""
// prompts on the terminal with echo disabled.
func ReadPassword(streams Streams, passwordFile string) (string, error) {
	switch passwordFile {
	case "":
		return promptPassword(streams)
	case "-":
		line, err := bufio.NewReader(streams.In).ReadString('\n')
		if err != nil && line == "" {
			return "", Validation("reading password from stdin: %v", err)
		}
		return nonEmptyPassword(strings.TrimRight(line, "\r\n"), "stdin")
	default:
		data, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", Internal("reading %s: %w", passwordFile, err)
		}
		return nonEmptyPassword(strings.TrimRight(string(data), "\r\n"), passwordFile)
	}
}

func promptPassword(streams Streams) (string, error) {
	file, ok := streams.In.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return "", Validation("no terminal available for interactive password prompt (use --password-file)")
	}
	fmt.Fprint(streams.Err, "Password: ")
	password, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(streams.Err)
	if err != nil {
		return "", Internal("reading password: %w", err)
	}
	return nonEmptyPassword(string(password), "prompt")
}

func nonEmptyPassword(password, source string) (string, error) {
	if password == "" {
		return "", Validation("password from %s is empty", source)
	}
	return password, nil
}
