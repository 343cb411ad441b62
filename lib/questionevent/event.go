// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package questionevent defines the closed set of facts that change a
// question, and the codec that turns push frames into them.
//
// An [Event] is exactly one of [Created], [Answered], or
// [StatusChanged]. The interface is sealed: code that consumes events
// switches on the concrete type and handles all three.
//
// [Decode] is the boundary with the push channel. Frames that cannot
// be parsed, or whose type is not one of the three known types, yield
// no event. Older clients must keep working when a newer server adds
// event types.
package questionevent

import (
	"time"

	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// Event is a fact about one question.
type Event interface {
	// QuestionID identifies the question the event applies to.
	QuestionID() int64

	isEvent()
}

// Created carries a newly created question in full.
type Created struct {
	Question question.Question
}

// Answered records an answer. UpdatedAt is zero when the producer did
// not report a modification time.
type Answered struct {
	ID        int64
	Answer    string
	UpdatedAt time.Time
}

// StatusChanged records a triage status change. UpdatedAt is zero when
// the producer did not report a modification time.
type StatusChanged struct {
	ID        int64
	Status    question.Status
	UpdatedAt time.Time
}

func (event Created) QuestionID() int64       { return event.Question.ID }
func (event Answered) QuestionID() int64      { return event.ID }
func (event StatusChanged) QuestionID() int64 { return event.ID }

func (Created) isEvent()       {}
func (Answered) isEvent()      {}
func (StatusChanged) isEvent() {}

// Type returns the push frame type that carries event.
func Type(event Event) string {
	switch event.(type) {
	case Created:
		return question.EventNewQuestion
	case Answered:
		return question.EventQuestionAnswered
	case StatusChanged:
		return question.EventStatusUpdated
	}
	return ""
}
