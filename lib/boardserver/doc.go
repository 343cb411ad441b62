// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package boardserver is an in-memory reference implementation of the
// Q&A API and its push channel. It backs local development
// (qaboard-server) and the integration tests.
//
// Routes:
//
//	GET    /                         service banner
//	GET    /health                   {"status":"ok"}
//	GET    /metrics                  Prometheus exposition
//	POST   /auth/register            JSON {username,email,password} → user
//	POST   /auth/login               form username,password → {access_token,token_type}
//	GET    /auth/me                  bearer → user
//	GET    /questions                escalated first, then newest first
//	POST   /questions                {message}; optional bearer for attribution
//	POST   /questions/{id}/answer    {answer}
//	PATCH  /questions/{id}/status    {status}; admin only
//	DELETE /questions/{id}           admin only; not announced on the push channel
//	GET    /ws                       push channel (receive-only for clients)
//
// Errors are {"detail": "..."}; request validation failures are
// {"detail": [{"loc": [...], "msg": "..."}]} with status 422.
//
// Responses under /questions are gzip-compressed when the client
// accepts it. GET /questions carries an ETag derived from the listing
// and answers a matching If-None-Match with 304.
//
// Every successful create, answer, and status change is broadcast to
// all push clients as a {type, data} envelope, in JSON text frames or
// CBOR binary frames depending on [Config.FrameFormat].
package boardserver
