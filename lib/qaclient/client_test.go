// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package qaclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(ClientConfig{BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func writeJSON(t *testing.T, writer http.ResponseWriter, status int, value any) {
	t.Helper()
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(value); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestNewClient(t *testing.T) {
	t.Run("valid URL", func(t *testing.T) {
		client, err := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:8000/"})
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if client.BaseURL() != "http://127.0.0.1:8000" {
			t.Errorf("BaseURL = %q", client.BaseURL())
		}
	})

	for name, baseURL := range map[string]string{
		"empty URL":      "",
		"invalid URL":    "://invalid",
		"websocket URL":  "ws://127.0.0.1:8000",
		"missing scheme": "127.0.0.1:8000",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := NewClient(ClientConfig{BaseURL: baseURL}); err == nil {
				t.Fatalf("expected error for %q", baseURL)
			}
		})
	}
}

func TestListQuestions(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodGet || request.URL.Path != "/questions" {
			t.Errorf("unexpected request %s %s", request.Method, request.URL.Path)
		}
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`[
			{"id":2,"message":"Second","status":"escalated","answer":null,"user_id":null,"created_at":"2025-01-01T10:00:00","updated_at":"2025-01-01T10:00:00","author_name":""},
			{"id":1,"message":"First","status":"answered","answer":"Yes","user_id":4,"created_at":"2025-01-01T09:00:00","updated_at":"2025-01-01T09:30:00","author_name":"ada"}
		]`))
	})

	questions, err := client.ListQuestions(context.Background())
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}
	if questions[0].ID != 2 || questions[0].Status != question.StatusEscalated || questions[0].Answered() {
		t.Errorf("first = %+v", questions[0])
	}
	if questions[1].Answer != "Yes" || questions[1].AuthorID != 4 || questions[1].AuthorName != "ada" {
		t.Errorf("second = %+v", questions[1])
	}
}

func TestCreateQuestionSendsBodyAndToken(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost || request.URL.Path != "/questions" {
			t.Errorf("unexpected request %s %s", request.Method, request.URL.Path)
		}
		if got := request.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := request.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["message"] != "Is there coffee?" {
			t.Errorf("message = %q", body["message"])
		}
		writeJSON(t, writer, http.StatusOK, map[string]any{
			"id": 10, "message": body["message"], "status": "pending", "author_name": "ada", "user_id": 4,
		})
	})
	client.SetToken("secret-token")

	created, err := client.CreateQuestion(context.Background(), "Is there coffee?")
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if created.ID != 10 || created.AuthorName != "ada" {
		t.Errorf("created = %+v", created)
	}
}

func TestAnonymousRequestsSendNoAuthorization(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		if got := request.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want none", got)
		}
		writeJSON(t, writer, http.StatusOK, []any{})
	})
	if _, err := client.ListQuestions(context.Background()); err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
}

func TestSubmitAnswerAndSetStatus(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]string
		json.NewDecoder(request.Body).Decode(&body)
		switch {
		case request.Method == http.MethodPost && request.URL.Path == "/questions/5/answer":
			writeJSON(t, writer, http.StatusOK, map[string]any{
				"id": 5, "message": "m", "status": "answered", "answer": body["answer"],
				"updated_at": "2025-01-01T12:00:00Z",
			})
		case request.Method == http.MethodPatch && request.URL.Path == "/questions/5/status":
			writeJSON(t, writer, http.StatusOK, map[string]any{
				"id": 5, "message": "m", "status": body["status"],
			})
		default:
			t.Errorf("unexpected request %s %s", request.Method, request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	})

	answered, err := client.SubmitAnswer(context.Background(), 5, "Downstairs")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if answered.Answer != "Downstairs" || answered.UpdatedAt.IsZero() {
		t.Errorf("answered = %+v", answered)
	}

	escalated, err := client.SetStatus(context.Background(), 5, question.StatusEscalated)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if escalated.Status != question.StatusEscalated {
		t.Errorf("status = %q", escalated.Status)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"Message cannot be empty"}`, "Message cannot be empty"},
		{"validation list", http.StatusUnprocessableEntity,
			`{"detail":[{"loc":["body","message"],"msg":"field required"},{"loc":["body"],"msg":"bad"}]}`,
			"field required; bad"},
		{"non-JSON body", http.StatusBadGateway, `<html>bad gateway</html>`, "request failed: 502 Bad Gateway"},
		{"empty body", http.StatusForbidden, ``, "request failed: 403 Forbidden"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(test.status)
				writer.Write([]byte(test.body))
			})

			_, err := client.CreateQuestion(context.Background(), "")
			if err == nil {
				t.Fatal("expected an error")
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v does not wrap *APIError", err)
			}
			if apiErr.StatusCode != test.status || apiErr.Detail != test.wantDetail {
				t.Errorf("APIError = %+v, want status %d detail %q", apiErr, test.status, test.wantDetail)
			}
			if Reason(err) != test.wantDetail {
				t.Errorf("Reason = %q", Reason(err))
			}
			if !IsAPIError(err, test.status) {
				t.Error("IsAPIError = false")
			}
		})
	}
}

func TestReasonForTransportErrors(t *testing.T) {
	client, err := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.ListQuestions(context.Background())
	if err == nil {
		t.Fatal("expected connection error")
	}
	if IsAPIError(err, 0) {
		t.Error("transport failure reported as APIError")
	}
	if Reason(err) == "" {
		t.Error("Reason is empty for transport failure")
	}
	if Reason(nil) != "" {
		t.Error("Reason(nil) should be empty")
	}
}

func TestLoginUsesFormEncoding(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/auth/login" {
			t.Errorf("path = %s", request.URL.Path)
		}
		if got := request.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", got)
		}
		if err := request.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if request.PostForm.Get("username") != "ada" || request.PostForm.Get("password") != "hunter2" {
			writeJSON(t, writer, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
			return
		}
		writeJSON(t, writer, http.StatusOK, map[string]string{"access_token": "jwt", "token_type": "bearer"})
	})

	response, err := client.Login(context.Background(), "ada", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if response.AccessToken != "jwt" || response.TokenType != "bearer" {
		t.Errorf("response = %+v", response)
	}
	if client.Token() != "" {
		t.Error("Login changed the client's token")
	}

	_, err = client.Login(context.Background(), "ada", "wrong")
	if !IsAPIError(err, http.StatusUnauthorized) || Reason(err) != "Incorrect username or password" {
		t.Errorf("wrong password error = %v", err)
	}
}

func TestRegisterAndMe(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/auth/register":
			var body RegisterRequest
			json.NewDecoder(request.Body).Decode(&body)
			writeJSON(t, writer, http.StatusOK, map[string]any{
				"id": 1, "username": body.Username, "email": body.Email, "is_admin": false,
				"created_at": "2025-02-02T02:02:02",
			})
		case "/auth/me":
			if request.Header.Get("Authorization") != "Bearer jwt" {
				writeJSON(t, writer, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
				return
			}
			writeJSON(t, writer, http.StatusOK, map[string]any{"id": 1, "username": "ada", "email": "ada@example.com", "is_admin": true})
		}
	})

	user, err := client.Register(context.Background(), RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Username != "ada" || user.CreatedAt.IsZero() {
		t.Errorf("registered = %+v", user)
	}

	if _, err := client.Register(context.Background(), RegisterRequest{Username: "ada"}); err == nil {
		t.Error("Register without password should fail locally")
	}

	if _, err := client.Me(context.Background()); !IsAPIError(err, http.StatusUnauthorized) {
		t.Errorf("anonymous Me error = %v", err)
	}
	client.SetToken("jwt")
	me, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if !me.IsAdmin {
		t.Error("IsAdmin = false")
	}
}

func TestDeleteQuestionAndHealth(t *testing.T) {
	client := newTestClient(t, func(writer http.ResponseWriter, request *http.Request) {
		switch {
		case request.Method == http.MethodDelete && request.URL.Path == "/questions/3":
			writeJSON(t, writer, http.StatusOK, map[string]string{"message": "Question deleted"})
		case request.URL.Path == "/health":
			writeJSON(t, writer, http.StatusOK, map[string]string{"status": "healthy"})
		default:
			writeJSON(t, writer, http.StatusNotFound, map[string]string{"detail": "Question not found"})
		}
	})

	if err := client.DeleteQuestion(context.Background(), 3); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	if err := client.DeleteQuestion(context.Background(), 4); !IsAPIError(err, http.StatusNotFound) {
		t.Errorf("DeleteQuestion(4) error = %v", err)
	}
	status, err := client.Health(context.Background())
	if err != nil || status.Status != "healthy" {
		t.Errorf("Health = %+v, %v", status, err)
	}
}
