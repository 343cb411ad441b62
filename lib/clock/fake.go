// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// FakeClock is a Clock whose time moves only when Advance is called.
// Safe for concurrent use.
//
// AfterFunc callbacks run synchronously inside Advance, in deadline
// order, without the clock's lock held. Time has already moved to its
// new value when callbacks run, so a timer armed by a callback is
// measured from there.
type FakeClock struct {
	mutex   sync.Mutex
	now     time.Time
	pending []*fakeTimer
	changed *sync.Cond
}

type fakeTimer struct {
	deadline time.Time
	channel  chan time.Time // set for After
	callback func()         // set for AfterFunc
	done     bool           // fired or stopped
}

// Fake returns a FakeClock reading initial.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{now: initial}
	clock.changed = sync.NewCond(&clock.mutex)
	return clock
}

// Now returns the fake time.
func (clock *FakeClock) Now() time.Time {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	return clock.now
}

// After registers a one-shot channel timer.
func (clock *FakeClock) After(d time.Duration) <-chan time.Time {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- clock.now
		return channel
	}
	clock.add(&fakeTimer{deadline: clock.now.Add(d), channel: channel})
	return channel
}

// AfterFunc registers f to run when the clock passes now+d. With
// d <= 0, f runs before AfterFunc returns.
func (clock *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stop: func() bool { return false }}
	}

	clock.mutex.Lock()
	defer clock.mutex.Unlock()

	timer := &fakeTimer{deadline: clock.now.Add(d), callback: f}
	clock.add(timer)
	return &Timer{stop: func() bool {
		clock.mutex.Lock()
		defer clock.mutex.Unlock()
		if timer.done {
			return false
		}
		timer.done = true
		clock.changed.Broadcast()
		return true
	}}
}

// add registers timer. Caller holds mutex.
func (clock *FakeClock) add(timer *fakeTimer) {
	clock.pending = append(clock.pending, timer)
	clock.changed.Broadcast()
}

// Advance moves the clock forward by d and fires every timer whose
// deadline is at or before the new time.
func (clock *FakeClock) Advance(d time.Duration) {
	clock.mutex.Lock()
	clock.now = clock.now.Add(d)
	target := clock.now
	clock.mutex.Unlock()

	for {
		due := clock.takeDue(target)
		if len(due) == 0 {
			return
		}
		for _, timer := range due {
			if timer.callback != nil {
				timer.callback()
				continue
			}
			timer.channel <- target
		}
	}
}

// takeDue removes and returns the live timers due at target, earliest
// first, marking them done.
func (clock *FakeClock) takeDue(target time.Time) []*fakeTimer {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()

	var due, remaining []*fakeTimer
	for _, timer := range clock.pending {
		switch {
		case timer.done:
		case timer.deadline.After(target):
			remaining = append(remaining, timer)
		default:
			timer.done = true
			due = append(due, timer)
		}
	}
	clock.pending = remaining
	if len(due) > 0 {
		clock.changed.Broadcast()
	}
	slices.SortStableFunc(due, func(a, b *fakeTimer) int {
		return a.deadline.Compare(b.deadline)
	})
	return due
}

// WaitForTimers blocks until at least n timers are pending.
func (clock *FakeClock) WaitForTimers(n int) {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	for clock.pendingLocked() < n {
		clock.changed.Wait()
	}
}

// PendingCount returns the number of timers that have neither fired
// nor been stopped.
func (clock *FakeClock) PendingCount() int {
	clock.mutex.Lock()
	defer clock.mutex.Unlock()
	return clock.pendingLocked()
}

func (clock *FakeClock) pendingLocked() int {
	count := 0
	for _, timer := range clock.pending {
		if !timer.done {
			count++
		}
	}
	return count
}
