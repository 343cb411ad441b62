// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Qaboard-server serves the question board API and push channel from
// memory. It is the backend "qaboard" talks to in development and in
// tests; questions and accounts are lost on restart.
//
// Settings come from the server section of the configuration file
// (--config or $QABOARD_CONFIG). The token signing secret is normally
// supplied as ${QABOARD_TOKEN_SECRET}, optionally loaded from
// --env-file. Usernames listed in server.admin_users become admins
// when they register.
package main
