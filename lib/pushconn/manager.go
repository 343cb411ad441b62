// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pushconn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bureau-foundation/qaboard/lib/clock"
	"github.com/bureau-foundation/qaboard/lib/netutil"
)

// DefaultReconnectDelay is the wait between a connection failure and
// the next dial when Config.ReconnectDelay is zero.
const DefaultReconnectDelay = 3 * time.Second

// Config configures a Manager.
type Config struct {
	// URL is the push endpoint, with a ws or wss scheme.
	URL string

	// Header is sent with every handshake. May be nil.
	Header http.Header

	// ReconnectDelay is the fixed wait before each reconnect attempt.
	// Zero means DefaultReconnectDelay. There is no backoff growth and
	// no retry cap.
	ReconnectDelay time.Duration

	// Dialer opens connections. Nil uses WebSocketDialer{}.
	Dialer Dialer

	// Clock schedules reconnect timers. Nil uses clock.Real().
	Clock clock.Clock

	// Logger receives connection lifecycle records. Nil uses
	// slog.Default().
	Logger *slog.Logger

	// OnStateChange, if set, is called after every state transition
	// on the goroutine that caused it. It must not call back into the
	// Manager.
	OnStateChange func(State)
}

// Manager owns the push connection. Create with New; stop with Close.
type Manager struct {
	url            string
	header         http.Header
	reconnectDelay time.Duration
	dialer         Dialer
	clock          clock.Clock
	logger         *slog.Logger
	onStateChange  func(State)
	handler        func(Frame)

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// mutex guards state and active. It is never held across a dial,
	// a read, or a handler call.
	mutex  sync.Mutex
	state  State
	active Conn

	closeOnce sync.Once
}

// New validates config and starts the connection loop. handler is
// called for every received frame, in order, on the loop goroutine; a
// slow handler delays reading.
func New(config Config, handler func(Frame)) (*Manager, error) {
	if handler == nil {
		return nil, errors.New("pushconn: handler is required")
	}
	parsed, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("pushconn: invalid URL %q: %w", config.URL, err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return nil, fmt.Errorf("pushconn: URL %q must use ws or wss", config.URL)
	}
	if config.ReconnectDelay < 0 {
		return nil, fmt.Errorf("pushconn: negative reconnect delay %v", config.ReconnectDelay)
	}

	manager := &Manager{
		url:            config.URL,
		header:         config.Header,
		reconnectDelay: config.ReconnectDelay,
		dialer:         config.Dialer,
		clock:          config.Clock,
		logger:         config.Logger,
		onStateChange:  config.OnStateChange,
		handler:        handler,
		done:           make(chan struct{}),
	}
	if manager.reconnectDelay == 0 {
		manager.reconnectDelay = DefaultReconnectDelay
	}
	if manager.dialer == nil {
		manager.dialer = WebSocketDialer{}
	}
	if manager.clock == nil {
		manager.clock = clock.Real()
	}
	if manager.logger == nil {
		manager.logger = slog.Default()
	}
	manager.logger = manager.logger.With("url", config.URL)
	manager.ctx, manager.cancel = context.WithCancel(context.Background())

	go manager.run()
	return manager, nil
}

// State returns the current connection state.
func (manager *Manager) State() State {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	return manager.state
}

// Done is closed when the loop has exited after Close.
func (manager *Manager) Done() <-chan struct{} {
	return manager.done
}

// Close cancels any pending reconnect, closes the active connection,
// and waits for the loop to exit. No dial happens after Close
// returns. Safe to call more than once, but not from the frame
// handler.
func (manager *Manager) Close() {
	manager.closeOnce.Do(func() {
		manager.mutex.Lock()
		manager.transitionLocked(Closing)
		active := manager.active
		manager.mutex.Unlock()

		manager.cancel()
		if active != nil {
			active.Close()
		}
	})
	<-manager.done
}

// run is the connection loop: connect, read until failure, wait out
// the reconnect delay, repeat.
func (manager *Manager) run() {
	defer func() {
		manager.mutex.Lock()
		manager.setStateLocked(Disconnected)
		manager.mutex.Unlock()
		close(manager.done)
	}()

	for attempt := 1; ; attempt++ {
		manager.connectAndRead(attempt)
		if manager.ctx.Err() != nil {
			return
		}
		if !manager.waitReconnect() {
			return
		}
	}
}

// connectAndRead performs one connection lifetime. It returns once the
// connection has failed (and been closed) or the manager is closing.
func (manager *Manager) connectAndRead(attempt int) {
	if !manager.transition(Connecting) {
		return
	}

	conn, err := manager.dialer.Dial(manager.ctx, manager.url, manager.header)
	if err != nil {
		if manager.ctx.Err() == nil {
			manager.logger.Warn("push connection failed",
				"attempt", attempt,
				"error", err,
			)
		}
		manager.transition(Disconnected)
		return
	}

	manager.mutex.Lock()
	if !manager.transitionLocked(Open) {
		manager.mutex.Unlock()
		conn.Close()
		return
	}
	manager.active = conn
	manager.mutex.Unlock()

	manager.logger.Info("push connection open", "attempt", attempt)

	err = manager.readLoop(conn)

	manager.mutex.Lock()
	manager.active = nil
	manager.mutex.Unlock()
	conn.Close()

	if manager.ctx.Err() != nil {
		return
	}
	if netutil.IsExpectedCloseError(err) {
		manager.logger.Info("push connection closed", "reason", closeReason(err))
	} else {
		manager.logger.Warn("push connection lost", "error", closeReason(err))
	}
	manager.transition(Disconnected)
}

func (manager *Manager) readLoop(conn Conn) error {
	for {
		frame, err := conn.Read(manager.ctx)
		if err != nil {
			return err
		}
		manager.handler(frame)
	}
}

// waitReconnect arms the single reconnect timer and blocks until it
// fires or the manager closes. Reports whether to dial again.
func (manager *Manager) waitReconnect() bool {
	fired := make(chan struct{})
	timer := manager.clock.AfterFunc(manager.reconnectDelay, func() { close(fired) })

	manager.logger.Debug("reconnect scheduled", "delay", manager.reconnectDelay)

	select {
	case <-fired:
		return true
	case <-manager.ctx.Done():
		timer.Stop()
		return false
	}
}

func (manager *Manager) transition(next State) bool {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	return manager.transitionLocked(next)
}

// transitionLocked moves to next if the state machine allows it. Once
// Closing, only the exiting loop moves the state on. Caller holds
// mutex.
func (manager *Manager) transitionLocked(next State) bool {
	if manager.state == next {
		return true
	}
	if manager.state == Closing || !CanTransition(manager.state, next) {
		return false
	}
	manager.setStateLocked(next)
	return true
}

func (manager *Manager) setStateLocked(next State) {
	if manager.state == next {
		return
	}
	manager.state = next
	if manager.onStateChange != nil {
		manager.onStateChange(next)
	}
}
