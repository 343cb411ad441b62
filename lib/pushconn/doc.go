// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pushconn keeps one receive-only push connection open to a
// server and reconnects after a fixed delay when it drops.
//
// A [Manager] moves through an explicit state machine:
//
//	Disconnected ──dial──▶ Connecting ──ok──▶ Open
//	     ▲                     │                │
//	     └──── failure ────────┴────────────────┘
//	any ──Close──▶ Closing ──▶ Disconnected
//
// Every failure (a refused dial, an abrupt close, a protocol error)
// arms exactly one reconnect timer on the injected [clock.Clock]. The
// run loop is the only goroutine that dials, and it closes the
// previous connection before scheduling the next attempt, so at most
// one connection exists at any moment.
//
// Failures are logged, never returned: reconnection is the recovery.
// Frames are handed to the caller's handler in arrival order on the
// run loop's goroutine. The package knows nothing about frame
// contents.
package pushconn
