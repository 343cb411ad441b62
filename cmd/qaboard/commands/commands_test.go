// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bureau-foundation/qaboard/cmd/qaboard/cli"
	"github.com/bureau-foundation/qaboard/lib/boardserver"
	"github.com/bureau-foundation/qaboard/lib/config"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// testEnvironment is a board server plus an isolated session file.
type testEnvironment struct {
	apiURL      string
	sessionPath string
}

func newTestEnvironment(t *testing.T) *testEnvironment {
	t.Helper()
	server, err := boardserver.New(boardserver.Config{
		TokenSecret:  "test-secret",
		TokenTTL:     time.Hour,
		AdminUsers:   []string{"ops"},
		PasswordCost: bcrypt.MinCost,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("boardserver.New: %v", err)
	}
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		server.Close()
		httpServer.Close()
	})

	sessionPath := filepath.Join(t.TempDir(), "session.json")
	t.Setenv(cli.SessionFileVariable, sessionPath)
	t.Setenv(config.EnvironmentVariable, "")
	return &testEnvironment{apiURL: httpServer.URL, sessionPath: sessionPath}
}

// run executes a qaboard command line against the test server and
// returns what it wrote to stdout.
func (environment *testEnvironment) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	streams := cli.Streams{In: strings.NewReader(stdin), Out: &stdout, Err: &stderr}
	args = append(args, "--api", environment.apiURL)
	err := Root(streams).Execute(context.Background(), args)
	return stdout.String(), err
}

func (environment *testEnvironment) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	output, err := environment.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("qaboard %s: %v", strings.Join(args, " "), err)
	}
	return output
}

// login registers username and saves a session for it.
func (environment *testEnvironment) login(t *testing.T, username string) {
	t.Helper()
	environment.mustRun(t, "secret-"+username+"\n",
		"register", username, "--email", username+"@example.com", "--password-file", "-")
	output := environment.mustRun(t, "secret-"+username+"\n",
		"login", username, "--password-file", "-")
	if !strings.HasPrefix(output, "Logged in as "+username) {
		t.Fatalf("login output = %q", output)
	}
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) {
		t.Fatalf("error %v has no exit code", err)
	}
	return coder.ExitCode()
}

func TestAskAndList(t *testing.T) {
	environment := newTestEnvironment(t)

	if output := environment.mustRun(t, "", "ask", "Where", "is", "lunch?"); output != "Asked question #1\n" {
		t.Errorf("ask output = %q", output)
	}
	environment.mustRun(t, "", "ask", "Is the wifi down?")

	output := environment.mustRun(t, "", "list")
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("list printed %d lines, want header and 2 rows:\n%s", len(lines), output)
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("header = %q", lines[0])
	}
	// Newest first.
	if !strings.Contains(lines[1], "Is the wifi down?") || !strings.Contains(lines[2], "Where is lunch?") {
		t.Errorf("rows out of order:\n%s", output)
	}

	jsonOutput := environment.mustRun(t, "", "list", "--search", "WIFI", "--json")
	var questions []question.Question
	if err := json.Unmarshal([]byte(jsonOutput), &questions); err != nil {
		t.Fatalf("list --json output does not parse: %v\n%s", err, jsonOutput)
	}
	if len(questions) != 1 || questions[0].ID != 2 {
		t.Errorf("search result = %+v, want question 2", questions)
	}

	jsonOutput = environment.mustRun(t, "", "list", "--tab", "answered", "--json")
	if strings.TrimSpace(jsonOutput) != "[]" {
		t.Errorf("answered tab = %s, want []", jsonOutput)
	}
}

func TestListRejectsBadFlags(t *testing.T) {
	environment := newTestEnvironment(t)

	_, err := environment.run(t, "", "list", "--tab", "archived")
	if err == nil || exitCode(t, err) != 2 {
		t.Errorf("list --tab archived = %v, want validation error", err)
	}
	_, err = environment.run(t, "", "list", "--tabb", "all")
	if err == nil || !strings.Contains(err.Error(), "did you mean --tab?") {
		t.Errorf("list --tabb = %v, want suggestion", err)
	}
}

func TestAdminWorkflow(t *testing.T) {
	environment := newTestEnvironment(t)
	environment.mustRun(t, "", "ask", "When does the keynote start?")

	_, err := environment.run(t, "", "status", "1", "escalated")
	if err == nil || exitCode(t, err) != 4 {
		t.Fatalf("status without login = %v, want forbidden", err)
	}

	environment.login(t, "ops")

	if output := environment.mustRun(t, "", "status", "#1", "escalated"); output != "Question #1 is now escalated\n" {
		t.Errorf("status output = %q", output)
	}
	environment.mustRun(t, "", "answer", "1", "Ten", "o'clock")

	var answered []question.Question
	output := environment.mustRun(t, "", "list", "--tab", "escalated", "--json")
	if err := json.Unmarshal([]byte(output), &answered); err != nil {
		t.Fatalf("list --json: %v", err)
	}
	if len(answered) != 1 || answered[0].Answer != "Ten o'clock" || answered[0].Status != question.StatusEscalated {
		t.Errorf("escalated tab = %+v, want the answered question still escalated", answered)
	}

	if output := environment.mustRun(t, "", "delete", "1"); output != "Deleted question #1\n" {
		t.Errorf("delete output = %q", output)
	}
	_, err = environment.run(t, "", "delete", "1")
	if err == nil || exitCode(t, err) != 3 {
		t.Errorf("second delete = %v, want not found", err)
	}
}

func TestNonAdminCannotChangeStatus(t *testing.T) {
	environment := newTestEnvironment(t)
	environment.mustRun(t, "", "ask", "Anyone?")
	environment.login(t, "dana")

	_, err := environment.run(t, "", "status", "1", "answered")
	if err == nil || exitCode(t, err) != 4 {
		t.Errorf("status as non-admin = %v, want forbidden", err)
	}
}

func TestArgumentValidation(t *testing.T) {
	environment := newTestEnvironment(t)

	tests := []struct {
		name string
		args []string
	}{
		{"ask without text", []string{"ask", "  "}},
		{"answer without text", []string{"answer", "3"}},
		{"answer bad id", []string{"answer", "three", "soon"}},
		{"status bad status", []string{"status", "3", "archived"}},
		{"delete zero id", []string{"delete", "0"}},
		{"unknown command", []string{"lsit"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := environment.run(t, "", test.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := exitCode(t, err); code != 2 {
				t.Errorf("exit code = %d, want 2 (%v)", code, err)
			}
		})
	}
}

func TestWhoamiAndLogout(t *testing.T) {
	environment := newTestEnvironment(t)

	output := environment.mustRun(t, "", "whoami", "--check")
	if !strings.Contains(output, "User: anonymous") || !strings.Contains(output, "Health: ok") {
		t.Errorf("anonymous whoami = %q", output)
	}

	environment.login(t, "ops")
	output = environment.mustRun(t, "", "whoami", "--json")
	var result whoamiResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("whoami --json: %v", err)
	}
	if !result.Authenticated || result.Username != "ops" || !result.IsAdmin {
		t.Errorf("whoami = %+v, want authenticated admin ops", result)
	}
	if result.Healthy != nil {
		t.Errorf("healthy reported without --check: %v", *result.Healthy)
	}

	info, err := os.Stat(environment.sessionPath)
	if err != nil {
		t.Fatalf("session file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("session file mode = %v, want 0600", info.Mode().Perm())
	}

	if output := environment.mustRun(t, "", "logout"); output != "Logged out\n" {
		t.Errorf("logout output = %q", output)
	}
	if output := environment.mustRun(t, "", "logout"); output != "Not logged in\n" {
		t.Errorf("second logout output = %q", output)
	}
}

func TestSessionForOtherAPIIsIgnored(t *testing.T) {
	environment := newTestEnvironment(t)
	err := cli.SaveSessionTo(&cli.Session{
		APIURL:      "http://elsewhere.example.com",
		Username:    "ops",
		AccessToken: "not-for-this-server",
	}, environment.sessionPath)
	if err != nil {
		t.Fatalf("SaveSessionTo: %v", err)
	}

	output := environment.mustRun(t, "", "whoami")
	if !strings.Contains(output, "User: anonymous") {
		t.Errorf("whoami with foreign session = %q, want anonymous", output)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	environment := newTestEnvironment(t)
	environment.mustRun(t, "pw\n", "register", "dana", "--email", "dana@example.com", "--password-file", "-")

	_, err := environment.run(t, "pw\n", "register", "dana", "--email", "dana@example.com", "--password-file", "-")
	if err == nil || exitCode(t, err) != 2 {
		t.Errorf("duplicate register = %v, want validation error", err)
	}
	_, err = environment.run(t, "pw\n", "register", "sam", "--password-file", "-")
	if err == nil || !strings.Contains(err.Error(), "--email is required") {
		t.Errorf("register without email = %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	environment := newTestEnvironment(t)
	environment.mustRun(t, "right\n", "register", "dana", "--email", "dana@example.com", "--password-file", "-")

	_, err := environment.run(t, "wrong\n", "login", "dana", "--password-file", "-")
	if err == nil || exitCode(t, err) != 4 {
		t.Errorf("login with wrong password = %v, want forbidden", err)
	}
	if _, statErr := os.Stat(environment.sessionPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("session file written after failed login: %v", statErr)
	}
}
