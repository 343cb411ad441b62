// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package livesync keeps a local question collection in step with the
// server. A [Session] owns the push connection, the decoder, the
// reconciled store, and the mutation dispatcher, and tears them down
// in an order that guarantees nothing is applied after Close.
//
// Data flows one way into the store:
//
//	push frames ──Parse──▶ Store.Apply ◀── Dispatcher (confirmed writes)
//	full fetch ──────────▶ Store.Replace
//
// Readers take snapshots from [Session.Store] or subscribe to it.
package livesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bureau-foundation/qaboard/lib/clock"
	"github.com/bureau-foundation/qaboard/lib/dispatch"
	"github.com/bureau-foundation/qaboard/lib/pushconn"
	"github.com/bureau-foundation/qaboard/lib/questionevent"
	"github.com/bureau-foundation/qaboard/lib/questionstore"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// ErrClosed is returned by operations on a closed Session.
var ErrClosed = errors.New("livesync: session closed")

// Backend is the request/response API the session fetches from and
// mutates through. *qaclient.Client satisfies it.
type Backend interface {
	dispatch.Backend
	ListQuestions(ctx context.Context) ([]question.Question, error)
}

// Config configures a Session.
type Config struct {
	// Backend serves the full fetch and mutations. Required.
	Backend Backend

	// PushURL is the push channel endpoint (ws or wss). Required.
	PushURL string

	// PushHeader is sent with every push handshake.
	PushHeader http.Header

	// ReconnectDelay is the fixed wait between push reconnect
	// attempts. Zero uses pushconn.DefaultReconnectDelay.
	ReconnectDelay time.Duration

	// Dialer opens push connections. Nil uses a WebSocket dialer.
	Dialer pushconn.Dialer

	// Clock schedules reconnects. Nil uses the real clock.
	Clock clock.Clock

	// Logger is used by the session and everything it owns. Nil uses
	// slog.Default().
	Logger *slog.Logger

	// OnPushEvent, if set, is called for each event from the push
	// channel that changed the collection, after it was applied. It
	// runs on the connection goroutine and must not block.
	OnPushEvent func(questionevent.Event)

	// OnConnectionState, if set, is called on every push connection
	// state change. Same constraints as OnPushEvent.
	OnConnectionState func(pushconn.State)
}

// LoadState tracks the full fetch that backs the collection.
type LoadState int

const (
	// Loading: a fetch is in flight, or none has completed yet.
	Loading LoadState = iota

	// Ready: the last fetch succeeded.
	Ready

	// Failed: the last fetch failed. The error is available from
	// Session.LoadState. Nothing retries automatically.
	Failed
)

func (state LoadState) String() string {
	switch state {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", int(state))
	}
}

// Session is a live view of the server's questions.
type Session struct {
	backend     Backend
	store       *questionstore.Store
	dispatcher  *dispatch.Dispatcher
	connection  *pushconn.Manager
	logger      *slog.Logger
	onPushEvent func(questionevent.Event)

	ctx    context.Context
	cancel context.CancelFunc

	mutex     sync.Mutex
	loadState LoadState
	loadErr   error
	closed    bool

	// refreshGeneration numbers Refresh calls. Only the newest one may
	// install its result or set the load state.
	refreshGeneration uint64
}

// Open creates the store and starts the push connection. The
// collection is empty until the first Refresh.
func Open(config Config) (*Session, error) {
	if config.Backend == nil {
		return nil, errors.New("livesync: Backend is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := questionstore.New(logger)
	session := &Session{
		backend:     config.Backend,
		store:       store,
		logger:      logger,
		onPushEvent: config.OnPushEvent,
	}
	session.dispatcher = dispatch.New(closedGuard{session: session}, store, logger)
	session.ctx, session.cancel = context.WithCancel(context.Background())

	connection, err := pushconn.New(pushconn.Config{
		URL:            config.PushURL,
		Header:         config.PushHeader,
		ReconnectDelay: config.ReconnectDelay,
		Dialer:         config.Dialer,
		Clock:          config.Clock,
		Logger:         logger,
		OnStateChange:  config.OnConnectionState,
	}, session.handleFrame)
	if err != nil {
		session.cancel()
		store.Close()
		return nil, fmt.Errorf("livesync: %w", err)
	}
	session.connection = connection
	return session, nil
}

// handleFrame decodes one push frame and applies it. Frames that do
// not decode are dropped.
func (session *Session) handleFrame(frame pushconn.Frame) {
	format := questionevent.FormatJSON
	if frame.Binary {
		format = questionevent.FormatCBOR
	}
	event, err := questionevent.Parse(frame.Data, format)
	if err != nil {
		session.logger.Debug("dropping push frame",
			"reason", err,
			"format", format.String(),
			"size", len(frame.Data),
		)
		return
	}
	if session.store.Apply(event) && session.onPushEvent != nil {
		session.onPushEvent(event)
	}
}

// Refresh fetches every question and replaces the collection with the
// result. It is the initial load and the manual retry after a failure
// or a missed event. When refreshes overlap, only the most recently
// started one installs its result or changes the load state.
func (session *Session) Refresh(ctx context.Context) error {
	if session.isClosed() {
		return ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(session.ctx, cancel)
	defer stop()

	generation := session.beginRefresh()
	questions, err := session.backend.ListQuestions(ctx)
	if session.isClosed() {
		return ErrClosed
	}

	session.mutex.Lock()
	defer session.mutex.Unlock()
	current := generation == session.refreshGeneration
	if err != nil {
		session.logger.Warn("question fetch failed", "error", err, "superseded", !current)
		if current {
			session.loadState = Failed
			session.loadErr = err
		}
		return err
	}
	if !current {
		session.logger.Debug("discarding superseded question list", "count", len(questions))
		return nil
	}
	if !session.store.Replace(questions) {
		return ErrClosed
	}
	session.loadState = Ready
	session.loadErr = nil
	session.logger.Debug("question list loaded", "count", len(questions))
	return nil
}

// beginRefresh marks a new fetch as the current one and enters Loading.
func (session *Session) beginRefresh() uint64 {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	session.refreshGeneration++
	session.loadState = Loading
	session.loadErr = nil
	return session.refreshGeneration
}

// LoadState returns the state of the most recent fetch and, when it
// failed, its error.
func (session *Session) LoadState() (LoadState, error) {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.loadState, session.loadErr
}

// Store returns the reconciled collection. Callers read snapshots and
// subscribe; they never write to it.
func (session *Session) Store() *questionstore.Store {
	return session.store
}

// Dispatcher returns the mutation dispatcher bound to this session's
// store. After Close its mutations fail with ErrClosed without
// reaching the backend.
func (session *Session) Dispatcher() *dispatch.Dispatcher {
	return session.dispatcher
}

// ConnectionState returns the push connection's current state.
func (session *Session) ConnectionState() pushconn.State {
	return session.connection.State()
}

// Close stops the push connection (cancelling any pending reconnect),
// then closes the store so in-flight fetches and mutations that
// complete later are discarded. Safe to call more than once.
func (session *Session) Close() {
	session.mutex.Lock()
	if session.closed {
		session.mutex.Unlock()
		return
	}
	session.closed = true
	session.mutex.Unlock()

	session.connection.Close()
	session.cancel()
	session.store.Close()
}

func (session *Session) isClosed() bool {
	session.mutex.Lock()
	defer session.mutex.Unlock()
	return session.closed
}

// closedGuard is the dispatcher's view of the backend. It refuses
// mutations once the session is closed. A request already in flight
// at Close still completes, and the closed store discards its result.
type closedGuard struct {
	session *Session
}

func (guard closedGuard) CreateQuestion(ctx context.Context, message string) (question.Question, error) {
	if guard.session.isClosed() {
		return question.Question{}, ErrClosed
	}
	return guard.session.backend.CreateQuestion(ctx, message)
}

func (guard closedGuard) SubmitAnswer(ctx context.Context, id int64, answer string) (question.Question, error) {
	if guard.session.isClosed() {
		return question.Question{}, ErrClosed
	}
	return guard.session.backend.SubmitAnswer(ctx, id, answer)
}

func (guard closedGuard) SetStatus(ctx context.Context, id int64, status question.Status) (question.Question, error) {
	if guard.session.isClosed() {
		return question.Question{}, ErrClosed
	}
	return guard.session.backend.SetStatus(ctx, id, status)
}
