// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package boardui implements the terminal dashboard for a question
// board. Built on bubbletea, it shows the reconciled collection in
// four tabs (all, pending, escalated, answered), filters it with a
// live search, reveals long lists one page at a time, and lets
// admins answer and triage questions in place. Enter opens the
// selected question in a scrollable reader that renders the answer as
// markdown and follows live updates.
//
// The model never writes the collection. It reads snapshots from a
// [Source], re-projects them whenever the source reports a change,
// and routes user actions through the source's mutation methods.
// [SessionSource] adapts a [livesync.Session]; tests use a store
// driven directly.
//
// Events that happen outside the bubbletea loop (push arrivals,
// connection state changes, log records) reach the model through a
// [Notifier] or [TUILogHandler], both of which forward to the running
// program once SetProgram has been called.
//
// Data flow:
//
//	[push channel / API]
//	        | (livesync.Session)
//	    [Source] -> questionstore.Change
//	        |
//	    [Model] <- bubbletea event loop
//	        |
//	  [terminal output]
package boardui
