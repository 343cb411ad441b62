// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package qaclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/bureau-foundation/qaboard/lib/netutil"
	"github.com/bureau-foundation/qaboard/lib/version"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the API root (e.g., "http://127.0.0.1:8000").
	BaseURL string

	// Token is the initial bearer token. Empty means anonymous.
	Token string

	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client talks to the Q&A API. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      atomic.Pointer[string]
	logger     *slog.Logger
}

// NewClient validates config and returns a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("qaclient: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("qaclient: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("qaclient: BaseURL %q must use http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
	client.SetToken(config.Token)
	return client, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the bearer token used by subsequent requests. The
// empty string makes subsequent requests anonymous.
func (c *Client) SetToken(token string) {
	c.token.Store(&token)
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return *c.token.Load()
}

// CloseIdleConnections drops pooled connections, forcing the next
// request to dial fresh.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// doJSON sends requestBody (if non-nil) as JSON and decodes a 2xx
// response into result (if non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, requestBody, result any) error {
	var (
		bodyReader  io.Reader
		contentType string
	)
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, bodyReader, result)
}

// doForm sends form as application/x-www-form-urlencoded.
func (c *Client) doForm(ctx context.Context, path string, form url.Values, result any) error {
	return c.do(ctx, http.MethodPost, path, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), result)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, result any) error {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", version.UserAgent())
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		apiErr := parseAPIError(response.StatusCode, responseBody)
		c.logger.Debug("api request rejected",
			"method", method,
			"path", path,
			"status", response.StatusCode,
			"detail", apiErr.Detail,
		)
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(responseBody, result); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
