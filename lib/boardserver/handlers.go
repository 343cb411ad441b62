// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bureau-foundation/qaboard/lib/questionevent"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createQuestionRequest struct {
	Message string `json:"message" validate:"notblank"`
}

type answerRequest struct {
	Answer string `json:"answer" validate:"notblank"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending escalated answered"`
}

type userContextKey struct{}

func (server *Server) handleRoot(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]string{"message": "qaboard API"})
}

func (server *Server) handleHealth(writer http.ResponseWriter, request *http.Request) {
	writeJSON(writer, http.StatusOK, map[string]string{"status": "ok"})
}

func (server *Server) handleRegister(writer http.ResponseWriter, request *http.Request) {
	var body registerRequest
	if !server.readJSON(writer, request, &body) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), server.passwordCost)
	if err != nil {
		server.logger.Error("hashing password", "error", err)
		writeError(writer, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	user, err := server.board.addAccount(question.User{
		Username:  body.Username,
		Email:     body.Email,
		IsAdmin:   server.admins[body.Username],
		CreatedAt: server.clock.Now(),
	}, hash)
	if err != nil {
		writeError(writer, http.StatusBadRequest, "Username or email already exists")
		return
	}

	server.logger.Info("registered account",
		"user_id", user.ID,
		"username", user.Username,
		"is_admin", user.IsAdmin,
	)
	writeJSON(writer, http.StatusOK, user)
}

func (server *Server) handleLogin(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := request.ParseForm(); err != nil {
		writeError(writer, http.StatusBadRequest, "invalid form body")
		return
	}
	body := loginRequest{
		Username: request.PostForm.Get("username"),
		Password: request.PostForm.Get("password"),
	}
	if !server.check(writer, &body, "body") {
		return
	}

	found, ok := server.board.accountByUsername(body.Username)
	if !ok || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(body.Password)) != nil {
		writeError(writer, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := server.tokens.issue(found.user.Username)
	if err != nil {
		server.logger.Error("issuing token", "error", err)
		writeError(writer, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(writer, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (server *Server) handleMe(writer http.ResponseWriter, request *http.Request) {
	user, ok := server.authenticate(request)
	if !ok {
		writeError(writer, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(writer, http.StatusOK, user)
}

func (server *Server) handleCreateQuestion(writer http.ResponseWriter, request *http.Request) {
	var body createQuestionRequest
	if !server.readJSON(writer, request, &body) {
		return
	}

	var author *question.User
	if user, ok := server.authenticate(request); ok {
		author = &user
	}
	created := server.board.addQuestion(body.Message, author, server.clock.Now())
	writeJSON(writer, http.StatusOK, created)
}

func (server *Server) handleAnswer(writer http.ResponseWriter, request *http.Request) {
	id, ok := questionID(writer, request)
	if !ok {
		return
	}
	var body answerRequest
	if !server.readJSON(writer, request, &body) {
		return
	}

	updated, err := server.board.update(id, server.clock.Now(), func(q *question.Question) {
		q.Answer = body.Answer
	}, func(q question.Question) questionevent.Event {
		return questionevent.Answered{ID: q.ID, Answer: q.Answer, UpdatedAt: q.UpdatedAt}
	})
	if err != nil {
		writeError(writer, http.StatusNotFound, "Question not found")
		return
	}
	writeJSON(writer, http.StatusOK, updated)
}

func (server *Server) handleSetStatus(writer http.ResponseWriter, request *http.Request) {
	id, ok := questionID(writer, request)
	if !ok {
		return
	}
	var body statusRequest
	if !server.readJSON(writer, request, &body) {
		return
	}

	updated, err := server.board.update(id, server.clock.Now(), func(q *question.Question) {
		q.Status = question.Status(body.Status)
	}, func(q question.Question) questionevent.Event {
		return questionevent.StatusChanged{ID: q.ID, Status: q.Status, UpdatedAt: q.UpdatedAt}
	})
	if err != nil {
		writeError(writer, http.StatusNotFound, "Question not found")
		return
	}
	writeJSON(writer, http.StatusOK, updated)
}

func (server *Server) handleDelete(writer http.ResponseWriter, request *http.Request) {
	id, ok := questionID(writer, request)
	if !ok {
		return
	}
	if err := server.board.deleteQuestion(id); err != nil {
		writeError(writer, http.StatusNotFound, "Question not found")
		return
	}
	admin := request.Context().Value(userContextKey{}).(question.User)
	server.logger.Info("question deleted", "question_id", id, "by", admin.Username)
	writeJSON(writer, http.StatusOK, map[string]string{"message": "Question deleted"})
}

// authenticate resolves the bearer token to a registered user. A
// missing, invalid, or expired token, or one naming an unknown user,
// is treated as anonymous.
func (server *Server) authenticate(request *http.Request) (question.User, bool) {
	header := request.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return question.User{}, false
	}
	username, err := server.tokens.verify(token)
	if err != nil {
		server.logger.Debug("rejected access token", "error", err)
		return question.User{}, false
	}
	registered, ok := server.board.accountByUsername(username)
	if !ok {
		return question.User{}, false
	}
	return registered.user, true
}

// requireAdmin rejects requests without an admin's token.
func (server *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		user, ok := server.authenticate(request)
		if !ok {
			writeError(writer, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if !user.IsAdmin {
			writeError(writer, http.StatusForbidden, "Admin access required")
			return
		}
		ctx := context.WithValue(request.Context(), userContextKey{}, user)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func questionID(writer http.ResponseWriter, request *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(writer, http.StatusUnprocessableEntity, map[string]any{
			"detail": []validationItem{{Location: []string{"path", "id"}, Message: "id must be a positive integer"}},
		})
		return 0, false
	}
	return id, true
}
