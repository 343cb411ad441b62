// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package qaclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// RegisterRequest is the body of an account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the result of a successful login.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, request RegisterRequest) (question.User, error) {
	if request.Username == "" {
		return question.User{}, fmt.Errorf("qaclient: username is required for registration")
	}
	if request.Password == "" {
		return question.User{}, fmt.Errorf("qaclient: password is required for registration")
	}

	var user question.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", request, &user); err != nil {
		return question.User{}, fmt.Errorf("qaclient: register: %w", err)
	}
	c.logger.Info("registered account", "username", user.Username, "user_id", user.ID)
	return user, nil
}

// Login exchanges a username and password for a bearer token. The
// client's own token is not changed; call SetToken to adopt it.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	if username == "" {
		return AuthResponse{}, fmt.Errorf("qaclient: username is required for login")
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var response AuthResponse
	if err := c.doForm(ctx, "/auth/login", form, &response); err != nil {
		return AuthResponse{}, fmt.Errorf("qaclient: login: %w", err)
	}
	if response.AccessToken == "" {
		return AuthResponse{}, fmt.Errorf("qaclient: login: response has no access_token")
	}
	c.logger.Info("logged in", "username", username)
	return response, nil
}

// Me returns the account the current token belongs to.
func (c *Client) Me(ctx context.Context) (question.User, error) {
	var user question.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return question.User{}, fmt.Errorf("qaclient: identity lookup: %w", err)
	}
	return user, nil
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

// Health checks that the API is reachable.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var status HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &status); err != nil {
		return HealthStatus{}, fmt.Errorf("qaclient: health: %w", err)
	}
	return status, nil
}
