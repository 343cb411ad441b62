// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SessionFileVariable overrides the session file location.
const SessionFileVariable = "QABOARD_SESSION_FILE"

// Session is the saved login state written by "qaboard login" and
// loaded by every command that talks to the API.
type Session struct {
	// APIURL is the API root the token was issued by. The token is
	// only sent to this server.
	APIURL string `json:"api_url"`

	// Username is the name the session was opened with.
	Username string `json:"username"`

	// AccessToken is the bearer token.
	AccessToken string `json:"access_token"`
}

// ErrNoSession is returned by LoadSessionFrom when no session file
// exists.
var ErrNoSession = errors.New("not logged in (run \"qaboard login\" first)")

// SessionFilePath returns the session file location: configured (from
// the config file's session.file), then $QABOARD_SESSION_FILE, then
// $XDG_CONFIG_HOME/qaboard/session.json, then
// ~/.config/qaboard/session.json.
func SessionFilePath(configured string) string {
	if configured != "" {
		return configured
	}
	if envPath := os.Getenv(SessionFileVariable); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "qaboard-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "qaboard", "session.json")
}

// LoadSessionFrom reads a session file. A missing file yields
// ErrNoSession.
func LoadSessionFrom(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("session file %s has no access_token", path)
	}
	if session.APIURL == "" {
		return nil, fmt.Errorf("session file %s has no api_url", path)
	}
	return &session, nil
}

// SaveSessionTo writes session to path. The parent directory is
// created with mode 0700 and the file is written with mode 0600 since
// it holds an access token.
func SaveSessionTo(session *Session, path string) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("securing session file %s: %w", path, err)
	}
	return nil
}

// RemoveSession deletes the session file. A missing file is not an
// error.
func RemoveSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file %s: %w", path, err)
	}
	return nil
}
