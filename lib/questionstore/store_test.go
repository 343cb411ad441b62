// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package questionstore

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/qaboard/lib/questionevent"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
	"github.com/bureau-foundation/qaboard/lib/testutil"
)

var baseTime = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func sampleQuestion(id int64, message string) question.Question {
	return question.Question{
		ID:        id,
		Message:   message,
		Status:    question.StatusPending,
		CreatedAt: baseTime.Add(time.Duration(id) * time.Minute),
		UpdatedAt: baseTime.Add(time.Duration(id) * time.Minute),
	}
}

func seededStore(t *testing.T, questions ...question.Question) *Store {
	t.Helper()
	store := New(nil)
	store.Replace(questions)
	return store
}

func ids(snapshot *Snapshot) []int64 {
	var result []int64
	for _, q := range snapshot.Questions() {
		result = append(result, q.ID)
	}
	return result
}

func TestReplaceInstallsListInOrder(t *testing.T) {
	t.Parallel()

	store := seededStore(t, sampleQuestion(3, "c"), sampleQuestion(1, "a"), sampleQuestion(2, "b"))
	if got, want := ids(store.Snapshot()), []int64{3, 1, 2}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	store.Replace([]question.Question{sampleQuestion(9, "z")})
	if got, want := ids(store.Snapshot()), []int64{9}; !slices.Equal(got, want) {
		t.Errorf("after second Replace order = %v, want %v", got, want)
	}
}

func TestReplaceKeepsFirstOfDuplicateIDs(t *testing.T) {
	t.Parallel()

	store := seededStore(t, sampleQuestion(1, "first"), sampleQuestion(2, "b"), sampleQuestion(1, "second"))
	snapshot := store.Snapshot()
	if snapshot.Len() != 2 {
		t.Fatalf("Len = %d, want 2", snapshot.Len())
	}
	q, _ := snapshot.Get(1)
	if q.Message != "first" {
		t.Errorf("message = %q, want first", q.Message)
	}
}

func TestApplyCreatedPrependsNewest(t *testing.T) {
	t.Parallel()

	store := seededStore(t, sampleQuestion(1, "a"))
	if !store.Apply(questionevent.Created{Question: sampleQuestion(2, "b")}) {
		t.Fatal("Apply(Created) reported no change")
	}
	if got, want := ids(store.Snapshot()), []int64{2, 1}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestApplyCreatedIsIdempotent(t *testing.T) {
	t.Parallel()

	event := questionevent.Created{Question: sampleQuestion(5, "hello")}

	once := seededStore(t, sampleQuestion(1, "a"))
	once.Apply(event)

	twice := seededStore(t, sampleQuestion(1, "a"))
	twice.Apply(event)
	versionAfterFirst := twice.Snapshot().Version()
	if twice.Apply(event) {
		t.Error("second Apply(Created) reported a change")
	}
	if twice.Snapshot().Version() != versionAfterFirst {
		t.Error("duplicate Created advanced the version")
	}
	if !slices.Equal(once.Snapshot().Questions(), twice.Snapshot().Questions()) {
		t.Errorf("once = %v, twice = %v", once.Snapshot().Questions(), twice.Snapshot().Questions())
	}

	// A duplicate with different content does not overwrite.
	altered := sampleQuestion(5, "rewritten")
	twice.Apply(questionevent.Created{Question: altered})
	q, _ := twice.Snapshot().Get(5)
	if q.Message != "hello" {
		t.Errorf("duplicate Created overwrote message with %q", q.Message)
	}
}

func TestApplyDeltasAreIdempotent(t *testing.T) {
	t.Parallel()

	events := []questionevent.Event{
		questionevent.Answered{ID: 1, Answer: "yes", UpdatedAt: baseTime.Add(time.Hour)},
		questionevent.StatusChanged{ID: 1, Status: question.StatusEscalated, UpdatedAt: baseTime.Add(time.Hour)},
	}
	for _, event := range events {
		once := seededStore(t, sampleQuestion(1, "a"))
		once.Apply(event)

		twice := seededStore(t, sampleQuestion(1, "a"))
		twice.Apply(event)
		if twice.Apply(event) {
			t.Errorf("second Apply(%T) reported a change", event)
		}
		if !slices.Equal(once.Snapshot().Questions(), twice.Snapshot().Questions()) {
			t.Errorf("%T: once = %v, twice = %v", event, once.Snapshot().Questions(), twice.Snapshot().Questions())
		}
	}
}

func TestApplyDifferentFieldDeltasCommute(t *testing.T) {
	t.Parallel()

	answered := questionevent.Answered{ID: 1, Answer: "in the lobby"}
	escalated := questionevent.StatusChanged{ID: 1, Status: question.StatusEscalated}

	forward := seededStore(t, sampleQuestion(1, "where?"))
	forward.Apply(answered)
	forward.Apply(escalated)

	backward := seededStore(t, sampleQuestion(1, "where?"))
	backward.Apply(escalated)
	backward.Apply(answered)

	if !slices.Equal(forward.Snapshot().Questions(), backward.Snapshot().Questions()) {
		t.Errorf("forward = %v, backward = %v", forward.Snapshot().Questions(), backward.Snapshot().Questions())
	}
}

func TestApplySameFieldLastAppliedWins(t *testing.T) {
	t.Parallel()

	store := seededStore(t, sampleQuestion(1, "a"))
	store.Apply(questionevent.StatusChanged{ID: 1, Status: question.StatusAnswered, UpdatedAt: baseTime.Add(2 * time.Hour)})
	// Older by timestamp, applied later: still wins.
	store.Apply(questionevent.StatusChanged{ID: 1, Status: question.StatusEscalated, UpdatedAt: baseTime.Add(time.Hour)})

	q, _ := store.Snapshot().Get(1)
	if q.Status != question.StatusEscalated {
		t.Errorf("status = %q, want escalated", q.Status)
	}
	if !q.UpdatedAt.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("updatedAt = %v, want the last applied value", q.UpdatedAt)
	}
}

func TestStatusChangePreservesUnrelatedFields(t *testing.T) {
	t.Parallel()

	original := sampleQuestion(1, "what time is the keynote?")
	original.Answer = "9am"
	original.AuthorName = "ada"
	original.AuthorID = 3
	store := seededStore(t, original)

	updatedAt := baseTime.Add(3 * time.Hour)
	store.Apply(questionevent.StatusChanged{ID: 1, Status: question.StatusEscalated, UpdatedAt: updatedAt})

	q, _ := store.Snapshot().Get(1)
	want := original
	want.Status = question.StatusEscalated
	want.UpdatedAt = updatedAt
	if q != want {
		t.Errorf("after StatusChanged = %+v, want %+v", q, want)
	}
}

func TestDeltaWithoutTimestampKeepsUpdatedAt(t *testing.T) {
	t.Parallel()

	original := sampleQuestion(1, "a")
	store := seededStore(t, original)
	store.Apply(questionevent.Answered{ID: 1, Answer: "b"})

	q, _ := store.Snapshot().Get(1)
	if !q.UpdatedAt.Equal(original.UpdatedAt) {
		t.Errorf("updatedAt = %v, want %v", q.UpdatedAt, original.UpdatedAt)
	}
}

func TestDeltaForUnknownIDIsDropped(t *testing.T) {
	t.Parallel()

	store := seededStore(t, sampleQuestion(1, "a"), sampleQuestion(2, "b"))
	before := store.Snapshot()

	for _, event := range []questionevent.Event{
		questionevent.Answered{ID: 42, Answer: "nobody asked"},
		questionevent.StatusChanged{ID: 42, Status: question.StatusAnswered},
	} {
		if store.Apply(event) {
			t.Errorf("Apply(%T) for unknown id reported a change", event)
		}
	}

	after := store.Snapshot()
	if after != before {
		t.Error("snapshot replaced by dropped events")
	}
	if _, exists := after.Get(42); exists {
		t.Error("unknown id was inserted")
	}
}

func TestUniquenessUnderRandomSequences(t *testing.T) {
	t.Parallel()

	random := rand.New(rand.NewPCG(1, 2))
	statuses := question.Statuses

	for round := range 50 {
		store := New(nil)
		for step := range 200 {
			id := int64(random.IntN(20) + 1)
			switch random.IntN(5) {
			case 0:
				var list []question.Question
				for range random.IntN(8) {
					list = append(list, sampleQuestion(int64(random.IntN(20)+1), "r"))
				}
				store.Replace(list)
			case 1, 2:
				store.Apply(questionevent.Created{Question: sampleQuestion(id, "c")})
			case 3:
				store.Apply(questionevent.Answered{ID: id, Answer: "a"})
			case 4:
				store.Apply(questionevent.StatusChanged{ID: id, Status: statuses[random.IntN(len(statuses))]})
			}

			seen := make(map[int64]bool)
			for _, q := range store.Snapshot().Questions() {
				if seen[q.ID] {
					t.Fatalf("round %d step %d: id %d appears twice", round, step, q.ID)
				}
				seen[q.ID] = true
			}
		}
	}
}

func TestSnapshotsAreImmutable(t *testing.T) {
	t.Parallel()

	store := seededStore(t, sampleQuestion(1, "a"))
	held := store.Snapshot()
	heldQuestions := held.Questions()

	store.Apply(questionevent.Created{Question: sampleQuestion(2, "b")})
	store.Apply(questionevent.StatusChanged{ID: 1, Status: question.StatusEscalated})
	store.Replace(nil)

	if held.Len() != 1 {
		t.Errorf("held snapshot Len = %d, want 1", held.Len())
	}
	q, _ := held.Get(1)
	if q.Status != question.StatusPending {
		t.Errorf("held snapshot saw status %q", q.Status)
	}
	if !slices.Equal(held.Questions(), heldQuestions) {
		t.Error("held snapshot contents changed")
	}
	if store.Snapshot().Version() <= held.Version() {
		t.Error("version did not advance")
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	t.Parallel()

	store := New(nil)
	changes := store.Subscribe()

	store.Replace([]question.Question{sampleQuestion(1, "a")})
	change := testutil.RequireReceive(t, changes, 5*time.Second, "waiting for replace change")
	if change.Event != nil || change.Version != 1 {
		t.Errorf("replace change = %+v", change)
	}

	created := questionevent.Created{Question: sampleQuestion(2, "b")}
	store.Apply(created)
	change = testutil.RequireReceive(t, changes, 5*time.Second, "waiting for created change")
	if change.Event != created || change.Version != 2 {
		t.Errorf("created change = %+v", change)
	}

	// No-op writes do not notify.
	store.Apply(created)
	store.Apply(questionevent.Answered{ID: 99, Answer: "x"})
	select {
	case extra := <-changes:
		t.Errorf("unexpected change %+v", extra)
	default:
	}
}

func TestCloseDiscardsLaterWrites(t *testing.T) {
	t.Parallel()

	store := seededStore(t, sampleQuestion(1, "a"))
	changes := store.Subscribe()
	store.Close()

	testutil.RequireClosed(t, drain(changes), 5*time.Second, "subscriber channel closed")
	if store.Snapshot().Len() != 0 {
		t.Error("collection not cleared on Close")
	}
	if store.Apply(questionevent.Created{Question: sampleQuestion(2, "b")}) {
		t.Error("Apply after Close reported a change")
	}
	if store.Replace([]question.Question{sampleQuestion(3, "c")}) {
		t.Error("Replace after Close reported a change")
	}
	if store.Snapshot().Len() != 0 {
		t.Error("writes after Close reached the collection")
	}
	if !store.Closed() {
		t.Error("Closed() = false")
	}

	late := store.Subscribe()
	testutil.RequireClosed(t, drain(late), 5*time.Second, "subscription after Close is closed")
	store.Close()
}

// drain returns a channel closed once changes is closed.
func drain(changes <-chan Change) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range changes {
		}
		close(done)
	}()
	return done
}

func TestConcurrentWritersAndReaders(t *testing.T) {
	t.Parallel()

	store := New(nil)
	var writers sync.WaitGroup
	for writer := range 4 {
		writers.Add(1)
		go func() {
			defer writers.Done()
			for index := range 100 {
				id := int64(writer*100 + index + 1)
				store.Apply(questionevent.Created{Question: sampleQuestion(id, "q")})
				store.Apply(questionevent.StatusChanged{ID: id, Status: question.StatusEscalated})
			}
		}()
	}

	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			snapshot := store.Snapshot()
			if len(snapshot.Questions()) != snapshot.Len() {
				t.Error("snapshot length inconsistent")
				return
			}
		}
	}()

	writers.Wait()
	close(stop)
	testutil.RequireClosed(t, readerDone, 5*time.Second, "reader exits")

	if got := store.Snapshot().Len(); got != 400 {
		t.Errorf("Len = %d, want 400", got)
	}
	for _, q := range store.Snapshot().Questions() {
		if q.Status != question.StatusEscalated {
			t.Fatalf("question %d status %q", q.ID, q.Status)
		}
	}
}
