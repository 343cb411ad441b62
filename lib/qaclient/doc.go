// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package qaclient is the HTTP client for the Q&A storage and auth
// API.
//
// Every operation takes a context and returns either the decoded
// result or an error. When the server rejects a request, the error
// wraps an [*APIError] whose Detail is the server's human-readable
// reason; [Reason] extracts it for display. The client performs no
// retries.
//
// Authenticated calls send the bearer token set by [ClientConfig] or
// [Client.SetToken]. The token may be replaced at any time; requests
// already in flight keep the token they started with.
package qaclient
