// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package questionstore

import (
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/qaboard/lib/questionevent"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// Change is delivered to subscribers after each write that changed
// the collection.
type Change struct {
	// Version is the snapshot version the write produced.
	Version uint64

	// Event is the applied event, or nil for a Replace.
	Event questionevent.Event
}

// subscriberBuffer bounds each subscriber channel. A subscriber that
// falls further behind misses intermediate Change values but always
// finds the latest state in Snapshot.
const subscriberBuffer = 64

// Store is the single writer of the reconciled collection.
type Store struct {
	mutex       sync.Mutex
	current     atomic.Pointer[Snapshot]
	closed      bool
	subscribers []chan Change
	logger      *slog.Logger
}

// New returns an empty store. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	store := &Store{logger: logger}
	store.current.Store(emptySnapshot)
	return store
}

// Snapshot returns the current version of the collection.
func (store *Store) Snapshot() *Snapshot {
	return store.current.Load()
}

// Subscribe returns a channel that receives a Change after every write
// that changed the collection. Sends never block the writer: when the
// buffer is full the Change is dropped. The channel is closed by Close.
func (store *Store) Subscribe() <-chan Change {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	channel := make(chan Change, subscriberBuffer)
	if store.closed {
		close(channel)
		return channel
	}
	store.subscribers = append(store.subscribers, channel)
	return channel
}

// Replace discards the collection and installs questions, preserving
// their order. When ids repeat, the first occurrence wins. Returns
// false only after Close.
func (store *Store) Replace(questions []question.Question) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.closed {
		return false
	}

	next := &Snapshot{
		version: store.current.Load().version + 1,
		order:   make([]int64, 0, len(questions)),
		byID:    make(map[int64]question.Question, len(questions)),
	}
	for _, q := range questions {
		if _, duplicate := next.byID[q.ID]; duplicate {
			store.logger.Debug("duplicate id in replacement list", "question_id", q.ID)
			continue
		}
		next.byID[q.ID] = q
		next.order = append(next.order, q.ID)
	}

	store.publish(next, Change{Version: next.version})
	return true
}

// Apply folds event into the collection and reports whether the
// collection changed.
func (store *Store) Apply(event questionevent.Event) bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.closed {
		return false
	}

	current := store.current.Load()
	next, changed := merge(current, event)
	if !changed {
		if _, known := current.byID[event.QuestionID()]; !known {
			store.logger.Debug("dropping event for unobserved question",
				"type", questionevent.Type(event),
				"question_id", event.QuestionID(),
			)
		}
		return false
	}
	next.version = current.version + 1

	store.publish(next, Change{Version: next.version, Event: event})
	return true
}

// merge computes the snapshot that results from applying event to
// current. The returned snapshot has no version yet.
func merge(current *Snapshot, event questionevent.Event) (*Snapshot, bool) {
	switch event := event.(type) {
	case questionevent.Created:
		id := event.Question.ID
		if _, exists := current.byID[id]; exists {
			return nil, false
		}
		order := make([]int64, 0, len(current.order)+1)
		order = append(order, id)
		order = append(order, current.order...)
		byID := cloneIndex(current.byID)
		byID[id] = event.Question
		return &Snapshot{order: order, byID: byID}, true

	case questionevent.Answered:
		existing, exists := current.byID[event.ID]
		if !exists {
			return nil, false
		}
		updated := existing
		updated.Answer = event.Answer
		if !event.UpdatedAt.IsZero() {
			updated.UpdatedAt = event.UpdatedAt
		}
		return replaceEntry(current, existing, updated)

	case questionevent.StatusChanged:
		existing, exists := current.byID[event.ID]
		if !exists {
			return nil, false
		}
		updated := existing
		updated.Status = event.Status
		if !event.UpdatedAt.IsZero() {
			updated.UpdatedAt = event.UpdatedAt
		}
		return replaceEntry(current, existing, updated)

	default:
		panic(fmt.Sprintf("questionstore: unhandled event type %T", event))
	}
}

// replaceEntry returns a snapshot with one question swapped, or
// reports no change when the merge left it identical.
func replaceEntry(current *Snapshot, existing, updated question.Question) (*Snapshot, bool) {
	if updated == existing {
		return nil, false
	}
	byID := cloneIndex(current.byID)
	byID[updated.ID] = updated
	return &Snapshot{order: current.order, byID: byID}, true
}

func cloneIndex(index map[int64]question.Question) map[int64]question.Question {
	if index == nil {
		return make(map[int64]question.Question, 1)
	}
	return maps.Clone(index)
}

// publish installs next and notifies subscribers. Caller holds mutex.
func (store *Store) publish(next *Snapshot, change Change) {
	store.current.Store(next)
	for _, subscriber := range store.subscribers {
		select {
		case subscriber <- change:
		default:
		}
	}
}

// Close clears the collection, closes every subscriber channel, and
// turns all later writes into no-ops. Safe to call more than once.
func (store *Store) Close() {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	if store.closed {
		return
	}
	store.closed = true
	store.current.Store(&Snapshot{version: store.current.Load().version + 1})
	for _, subscriber := range store.subscribers {
		close(subscriber)
	}
	store.subscribers = nil
}

// Closed reports whether Close has been called.
func (store *Store) Closed() bool {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	return store.closed
}
