// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package questionview_test

import (
	"testing"
	"time"

	"github.com/bureau-foundation/qaboard/lib/questionevent"
	"github.com/bureau-foundation/qaboard/lib/questionstore"
	"github.com/bureau-foundation/qaboard/lib/questionview"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// TestCreateAnswerResolveScenario walks one question from creation to
// resolution through the store and checks what each tab shows.
func TestCreateAnswerResolveScenario(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	t2 := t0.Add(2 * time.Minute)

	store := questionstore.New(nil)
	store.Replace(nil)

	store.Apply(questionevent.Created{Question: question.Question{
		ID: 1, Message: "Hi", Status: question.StatusPending, CreatedAt: t0,
	}})
	if store.Snapshot().Len() != 1 {
		t.Fatalf("Len = %d after Created, want 1", store.Snapshot().Len())
	}

	store.Apply(questionevent.Answered{ID: 1, Answer: "Hello!", UpdatedAt: t1})
	entry, _ := store.Snapshot().Get(1)
	if entry.Answer != "Hello!" || entry.Status != question.StatusPending {
		t.Fatalf("after Answered: answer %q status %q", entry.Answer, entry.Status)
	}

	store.Apply(questionevent.StatusChanged{ID: 1, Status: question.StatusAnswered, UpdatedAt: t2})
	entry, _ = store.Snapshot().Get(1)
	if entry.Status != question.StatusAnswered || entry.Answer != "Hello!" {
		t.Fatalf("after StatusChanged: answer %q status %q", entry.Answer, entry.Status)
	}

	questions := store.Snapshot().Questions()
	answered := questionview.Select(questions, "", questionview.TabAnswered)
	if len(answered) != 1 || answered[0] != entry {
		t.Errorf("answered tab = %+v, want exactly entry 1", answered)
	}
	if pending := questionview.Select(questions, "", questionview.TabPending); len(pending) != 0 {
		t.Errorf("pending tab = %+v, want empty", pending)
	}
}
