// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package questionstore

import "github.com/bureau-foundation/qaboard/lib/schema/question"

// Snapshot is one immutable version of the collection. The zero value
// is an empty collection at version 0.
type Snapshot struct {
	version uint64

	// order lists ids in arrival order, newest first. Never written
	// after the snapshot is published; successive snapshots may share
	// the backing array.
	order []int64

	byID map[int64]question.Question
}

var emptySnapshot = &Snapshot{}

// Version increases by one with every write that changes the
// collection.
func (snapshot *Snapshot) Version() uint64 {
	return snapshot.version
}

// Len returns the number of questions.
func (snapshot *Snapshot) Len() int {
	return len(snapshot.order)
}

// Get returns the question with the given id.
func (snapshot *Snapshot) Get(id int64) (question.Question, bool) {
	q, exists := snapshot.byID[id]
	return q, exists
}

// Questions returns the questions in arrival order, newest first. The
// slice is freshly allocated and owned by the caller.
func (snapshot *Snapshot) Questions() []question.Question {
	questions := make([]question.Question, len(snapshot.order))
	for index, id := range snapshot.order {
		questions[index] = snapshot.byID[id]
	}
	return questions
}
