// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pushconn

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/qaboard/lib/clock"
	"github.com/bureau-foundation/qaboard/lib/testutil"
)

const (
	testDelay   = 3 * time.Second
	testTimeout = 5 * time.Second
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeDialer records every dial attempt on attempts: a *fakeConn for a
// successful dial, nil for a refused one.
type fakeDialer struct {
	attempts chan *fakeConn

	mutex   sync.Mutex
	dials   int
	refuse  int
	block   bool
	open    int
	maxOpen int
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{attempts: make(chan *fakeConn, 32)}
}

func (dialer *fakeDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	dialer.mutex.Lock()
	dialer.dials++
	if dialer.block {
		dialer.mutex.Unlock()
		dialer.attempts <- nil
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if dialer.refuse > 0 {
		dialer.refuse--
		dialer.mutex.Unlock()
		dialer.attempts <- nil
		return nil, errors.New("connection refused")
	}
	dialer.open++
	dialer.maxOpen = max(dialer.maxOpen, dialer.open)
	dialer.mutex.Unlock()

	conn := &fakeConn{
		dialer: dialer,
		frames: make(chan Frame),
		broken: make(chan struct{}),
		closed: make(chan struct{}),
	}
	dialer.attempts <- conn
	return conn, nil
}

func (dialer *fakeDialer) refuseNext(n int) {
	dialer.mutex.Lock()
	defer dialer.mutex.Unlock()
	dialer.refuse = n
}

func (dialer *fakeDialer) dialCount() int {
	dialer.mutex.Lock()
	defer dialer.mutex.Unlock()
	return dialer.dials
}

func (dialer *fakeDialer) maxConcurrent() int {
	dialer.mutex.Lock()
	defer dialer.mutex.Unlock()
	return dialer.maxOpen
}

type fakeConn struct {
	dialer    *fakeDialer
	frames    chan Frame
	broken    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func (conn *fakeConn) Read(ctx context.Context) (Frame, error) {
	select {
	case frame := <-conn.frames:
		return frame, nil
	case <-conn.broken:
		return Frame{}, io.ErrUnexpectedEOF
	case <-conn.closed:
		return Frame{}, net.ErrClosed
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

func (conn *fakeConn) Close() error {
	conn.closeOnce.Do(func() {
		conn.dialer.mutex.Lock()
		conn.dialer.open--
		conn.dialer.mutex.Unlock()
		close(conn.closed)
	})
	return nil
}

// drop simulates the server vanishing without a close handshake.
func (conn *fakeConn) drop() { close(conn.broken) }

func newTestManager(t *testing.T, fake *clock.FakeClock, dialer Dialer, handler func(Frame), states chan<- State) *Manager {
	t.Helper()
	config := Config{
		URL:            "ws://push.test/ws",
		ReconnectDelay: testDelay,
		Dialer:         dialer,
		Clock:          fake,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if states != nil {
		config.OnStateChange = func(state State) { states <- state }
	}
	if handler == nil {
		handler = func(Frame) {}
	}
	manager, err := New(config, handler)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(manager.Close)
	return manager
}

func TestReconnectAfterAbruptClose(t *testing.T) {
	fake := clock.Fake(epoch)
	dialer := newFakeDialer()
	frames := make(chan Frame, 8)
	manager := newTestManager(t, fake, dialer, func(frame Frame) { frames <- frame }, nil)

	first := testutil.RequireReceive(t, dialer.attempts, testTimeout, "waiting for first dial")
	if first == nil {
		t.Fatal("first dial was refused")
	}
	testutil.RequireSend(t, first.frames, Frame{Data: []byte("hello")}, testTimeout, "delivering frame")
	frame := testutil.RequireReceive(t, frames, testTimeout, "waiting for handler")
	if string(frame.Data) != "hello" || frame.Binary {
		t.Fatalf("handler got %+v", frame)
	}

	first.drop()
	testutil.RequireClosed(t, first.closed, testTimeout, "dropped connection should be closed")
	fake.WaitForTimers(1)

	if pending := fake.PendingCount(); pending != 1 {
		t.Fatalf("pending reconnect timers = %d, want 1", pending)
	}
	if dials := dialer.dialCount(); dials != 1 {
		t.Fatalf("dials before delay = %d, want 1", dials)
	}
	if state := manager.State(); state != Disconnected {
		t.Fatalf("state while waiting = %v, want disconnected", state)
	}

	fake.Advance(testDelay - time.Millisecond)
	if dials := dialer.dialCount(); dials != 1 {
		t.Fatal("redialed before the reconnect delay elapsed")
	}
	if pending := fake.PendingCount(); pending != 1 {
		t.Fatalf("pending reconnect timers = %d, want 1", pending)
	}

	fake.Advance(time.Millisecond)
	second := testutil.RequireReceive(t, dialer.attempts, testTimeout, "waiting for reconnect")
	if second == nil {
		t.Fatal("reconnect was refused")
	}
	testutil.Eventually(t, testTimeout, func() bool { return manager.State() == Open }, "waiting for open")

	if dials := dialer.dialCount(); dials != 2 {
		t.Errorf("dials = %d, want exactly 2", dials)
	}
	if pending := fake.PendingCount(); pending != 0 {
		t.Errorf("pending timers while open = %d, want 0", pending)
	}
	if concurrent := dialer.maxConcurrent(); concurrent != 1 {
		t.Errorf("max concurrent connections = %d, want 1", concurrent)
	}

	manager.Close()
	testutil.RequireClosed(t, second.closed, testTimeout, "Close should close the active connection")
	if state := manager.State(); state != Disconnected {
		t.Errorf("state after Close = %v, want disconnected", state)
	}
}

func TestRefusedDialsScheduleOneTimerEach(t *testing.T) {
	fake := clock.Fake(epoch)
	dialer := newFakeDialer()
	dialer.refuseNext(3)
	newTestManager(t, fake, dialer, nil, nil)

	for attempt := 1; attempt <= 3; attempt++ {
		conn := testutil.RequireReceive(t, dialer.attempts, testTimeout, "waiting for dial %d", attempt)
		if conn != nil {
			t.Fatalf("dial %d succeeded, want refused", attempt)
		}
		fake.WaitForTimers(1)
		if pending := fake.PendingCount(); pending != 1 {
			t.Fatalf("after refusal %d: pending timers = %d, want 1", attempt, pending)
		}
		fake.Advance(testDelay)
	}

	conn := testutil.RequireReceive(t, dialer.attempts, testTimeout, "waiting for successful dial")
	if conn == nil {
		t.Fatal("fourth dial refused")
	}
	if dials := dialer.dialCount(); dials != 4 {
		t.Errorf("dials = %d, want 4", dials)
	}
}

func TestCloseCancelsPendingReconnect(t *testing.T) {
	fake := clock.Fake(epoch)
	dialer := newFakeDialer()
	manager := newTestManager(t, fake, dialer, nil, nil)

	first := testutil.RequireReceive(t, dialer.attempts, testTimeout, "waiting for first dial")
	first.drop()
	fake.WaitForTimers(1)

	manager.Close()
	testutil.RequireClosed(t, manager.Done(), testTimeout, "loop should exit")

	if pending := fake.PendingCount(); pending != 0 {
		t.Fatalf("pending timers after Close = %d, want 0", pending)
	}
	fake.Advance(10 * testDelay)
	if dials := dialer.dialCount(); dials != 1 {
		t.Errorf("dials after Close = %d, want 1", dials)
	}
	if state := manager.State(); state != Disconnected {
		t.Errorf("state = %v, want disconnected", state)
	}
}

func TestCloseDuringDial(t *testing.T) {
	fake := clock.Fake(epoch)
	dialer := newFakeDialer()
	dialer.block = true
	manager := newTestManager(t, fake, dialer, nil, nil)

	testutil.RequireReceive(t, dialer.attempts, testTimeout, "waiting for dial to start")
	if state := manager.State(); state != Connecting {
		t.Fatalf("state during dial = %v, want connecting", state)
	}

	manager.Close()
	if pending := fake.PendingCount(); pending != 0 {
		t.Errorf("pending timers after Close = %d, want 0", pending)
	}
	if state := manager.State(); state != Disconnected {
		t.Errorf("state = %v, want disconnected", state)
	}
}

func TestStateTransitions(t *testing.T) {
	fake := clock.Fake(epoch)
	dialer := newFakeDialer()
	states := make(chan State, 32)
	manager := newTestManager(t, fake, dialer, nil, states)

	conn := testutil.RequireReceive(t, dialer.attempts, testTimeout, "waiting for dial")
	expectStates(t, states, Connecting, Open)

	conn.drop()
	expectStates(t, states, Disconnected)

	fake.WaitForTimers(1)
	fake.Advance(testDelay)
	testutil.RequireReceive(t, dialer.attempts, testTimeout, "waiting for reconnect")
	expectStates(t, states, Connecting, Open)

	manager.Close()
	expectStates(t, states, Closing, Disconnected)
}

func expectStates(t *testing.T, states <-chan State, want ...State) {
	t.Helper()
	for _, expected := range want {
		got := testutil.RequireReceive(t, states, testTimeout, "waiting for state %v", expected)
		if got != expected {
			t.Fatalf("state = %v, want %v", got, expected)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{Disconnected, Connecting, true},
		{Disconnected, Open, false},
		{Connecting, Open, true},
		{Connecting, Disconnected, true},
		{Open, Disconnected, true},
		{Open, Connecting, false},
		{Closing, Disconnected, true},
		{Closing, Connecting, false},
		{Closing, Open, false},
	}
	for _, test := range tests {
		if got := CanTransition(test.from, test.to); got != test.want {
			t.Errorf("CanTransition(%v, %v) = %v, want %v", test.from, test.to, got, test.want)
		}
	}
	for _, state := range []State{Disconnected, Connecting, Open} {
		if !CanTransition(state, Closing) {
			t.Errorf("CanTransition(%v, closing) = false", state)
		}
	}
}

func TestNewValidation(t *testing.T) {
	handler := func(Frame) {}
	tests := []struct {
		name    string
		config  Config
		handler func(Frame)
	}{
		{"nil handler", Config{URL: "ws://localhost/ws"}, nil},
		{"http scheme", Config{URL: "http://localhost/ws"}, handler},
		{"empty URL", Config{}, handler},
		{"negative delay", Config{URL: "ws://localhost/ws", ReconnectDelay: -time.Second}, handler},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := New(test.config, test.handler); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
