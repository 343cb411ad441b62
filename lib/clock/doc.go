// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock is the time source for code with timers that tests
// must control, chiefly the push connection's reconnect delay.
//
// Production code takes a [Clock] and receives [Real]. Tests pass a
// [FakeClock], which stands still until [FakeClock.Advance] is called:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	manager := pushconn.New(pushconn.Config{Clock: fake, ...})
//	fake.WaitForTimers(1)      // the reconnect timer is armed
//	fake.Advance(3 * time.Second)
//
// WaitForTimers removes the race between a background goroutine arming
// a timer and the test advancing past it.
package clock
