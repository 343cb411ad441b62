// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSessionFilePath(t *testing.T) {
	t.Setenv(SessionFileVariable, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	if got := SessionFilePath(""); got != "/xdg/qaboard/session.json" {
		t.Errorf("XDG path = %q", got)
	}

	t.Setenv(SessionFileVariable, "/env/session.json")
	if got := SessionFilePath(""); got != "/env/session.json" {
		t.Errorf("env path = %q", got)
	}
	if got := SessionFilePath("/configured.json"); got != "/configured.json" {
		t.Errorf("configured path = %q", got)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	session := &Session{APIURL: "http://127.0.0.1:8000", Username: "ada", AccessToken: "token"}

	if err := SaveSessionTo(session, path); err != nil {
		t.Fatalf("SaveSessionTo: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("session file mode = %o, want 600", mode)
	}
	directory, err := os.Stat(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if mode := directory.Mode().Perm(); mode != 0700 {
		t.Errorf("session directory mode = %o, want 700", mode)
	}

	loaded, err := LoadSessionFrom(path)
	if err != nil {
		t.Fatalf("LoadSessionFrom: %v", err)
	}
	if *loaded != *session {
		t.Errorf("loaded %+v, want %+v", loaded, session)
	}

	if err := RemoveSession(path); err != nil {
		t.Fatalf("RemoveSession: %v", err)
	}
	if _, err := LoadSessionFrom(path); !errors.Is(err, ErrNoSession) {
		t.Errorf("after remove: %v, want ErrNoSession", err)
	}
	if err := RemoveSession(path); err != nil {
		t.Errorf("removing a missing session: %v", err)
	}
}

func TestLoadSessionRejectsIncompleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"api_url":"http://x"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSessionFrom(path); err == nil {
		t.Fatal("expected an error for a session without a token")
	}
}
