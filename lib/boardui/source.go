// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"context"

	"github.com/bureau-foundation/qaboard/lib/livesync"
	"github.com/bureau-foundation/qaboard/lib/pushconn"
	"github.com/bureau-foundation/qaboard/lib/questionstore"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// Source provides the collection to the dashboard and carries its
// mutations back to the server.
type Source interface {
	// Snapshot returns the current version of the collection.
	Snapshot() *questionstore.Snapshot

	// Subscribe returns a channel that receives a value after every
	// change to the collection and is closed when the source shuts
	// down.
	Subscribe() <-chan questionstore.Change

	// Refresh replaces the collection with a fresh fetch.
	Refresh(ctx context.Context) error

	// ConnectionState reports the push connection state.
	ConnectionState() pushconn.State

	Create(ctx context.Context, message string) (question.Question, error)
	Answer(ctx context.Context, id int64, answer string) (question.Question, error)
	SetStatus(ctx context.Context, id int64, status question.Status) (question.Question, error)
}

// SessionSource is a Source backed by a live session.
type SessionSource struct {
	session *livesync.Session
}

// NewSessionSource wraps session. The caller keeps ownership and
// closes the session after the program exits.
func NewSessionSource(session *livesync.Session) *SessionSource {
	return &SessionSource{session: session}
}

func (source *SessionSource) Snapshot() *questionstore.Snapshot {
	return source.session.Store().Snapshot()
}

func (source *SessionSource) Subscribe() <-chan questionstore.Change {
	return source.session.Store().Subscribe()
}

func (source *SessionSource) Refresh(ctx context.Context) error {
	return source.session.Refresh(ctx)
}

func (source *SessionSource) ConnectionState() pushconn.State {
	return source.session.ConnectionState()
}

func (source *SessionSource) Create(ctx context.Context, message string) (question.Question, error) {
	return source.session.Dispatcher().Create(ctx, message)
}

func (source *SessionSource) Answer(ctx context.Context, id int64, answer string) (question.Question, error) {
	return source.session.Dispatcher().Answer(ctx, id, answer)
}

func (source *SessionSource) SetStatus(ctx context.Context, id int64, status question.Status) (question.Question, error) {
	return source.session.Dispatcher().SetStatus(ctx, id, status)
}
