// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides channel-wait helpers for tests. Each
// helper bounds its wait with a timeout so that a broken test fails
// with a message instead of hanging the test binary.
package testutil
