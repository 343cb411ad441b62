// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package questionview derives what the board displays from a snapshot
// of the collection.
//
// [Project] is a pure function: it filters by a case-insensitive
// substring of the message or author name, stable-sorts escalated
// questions first and then newest first, and partitions the single
// sorted sequence into the four tabs. It never modifies its input and
// returns the same output for the same input, so callers recompute it
// on every change instead of caching.
//
// [Pager] is the one piece of view state: how much of each tab has
// been revealed. It resets whenever the data version or search text
// changes.
package questionview
