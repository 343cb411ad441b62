// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch sends question mutations to the API and folds each
// confirmed result into the local store, so the caller sees its own
// write without waiting for the push channel to echo it.
//
// Nothing is applied before the server confirms. A failed request
// leaves the store untouched and returns the error; there is no retry.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/qaboard/lib/questionevent"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// Backend is the request/response side of the API.
// *qaclient.Client satisfies it.
type Backend interface {
	CreateQuestion(ctx context.Context, message string) (question.Question, error)
	SubmitAnswer(ctx context.Context, id int64, answer string) (question.Question, error)
	SetStatus(ctx context.Context, id int64, status question.Status) (question.Question, error)
}

// Applier is the write side of the reconciled collection.
// *questionstore.Store satisfies it.
type Applier interface {
	Apply(event questionevent.Event) bool
}

// Dispatcher issues mutations. Safe for concurrent use when its
// Backend and Applier are.
type Dispatcher struct {
	backend Backend
	applier Applier
	logger  *slog.Logger
}

// New returns a Dispatcher. A nil logger uses slog.Default.
func New(backend Backend, applier Applier, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{backend: backend, applier: applier, logger: logger}
}

// ErrEmptyMessage is returned by Create for a blank message.
var ErrEmptyMessage = errors.New("message cannot be empty")

// ErrEmptyAnswer is returned by Answer for a blank answer.
var ErrEmptyAnswer = errors.New("answer cannot be empty")

// Create submits a new question and applies the Created event for the
// server's copy of it.
func (dispatcher *Dispatcher) Create(ctx context.Context, message string) (question.Question, error) {
	if strings.TrimSpace(message) == "" {
		return question.Question{}, ErrEmptyMessage
	}
	created, err := dispatcher.backend.CreateQuestion(ctx, message)
	if err != nil {
		return question.Question{}, err
	}
	dispatcher.apply(questionevent.Created{Question: created})
	return created, nil
}

// Answer records answer on question id and applies an Answered event
// carrying the server's answer and update time.
func (dispatcher *Dispatcher) Answer(ctx context.Context, id int64, answer string) (question.Question, error) {
	if strings.TrimSpace(answer) == "" {
		return question.Question{}, ErrEmptyAnswer
	}
	updated, err := dispatcher.backend.SubmitAnswer(ctx, id, answer)
	if err != nil {
		return question.Question{}, err
	}
	dispatcher.apply(questionevent.Answered{
		ID:        id,
		Answer:    updated.Answer,
		UpdatedAt: updated.UpdatedAt,
	})
	return updated, nil
}

// SetStatus moves question id to status and applies a StatusChanged
// event.
func (dispatcher *Dispatcher) SetStatus(ctx context.Context, id int64, status question.Status) (question.Question, error) {
	if !status.Valid() {
		return question.Question{}, fmt.Errorf("unknown status %q", status)
	}
	updated, err := dispatcher.backend.SetStatus(ctx, id, status)
	if err != nil {
		return question.Question{}, err
	}
	dispatcher.apply(questionevent.StatusChanged{
		ID:        id,
		Status:    updated.Status,
		UpdatedAt: updated.UpdatedAt,
	})
	return updated, nil
}

func (dispatcher *Dispatcher) apply(event questionevent.Event) {
	changed := dispatcher.applier.Apply(event)
	dispatcher.logger.Debug("applied mutation result",
		"type", questionevent.Type(event),
		"question_id", event.QuestionID(),
		"changed", changed,
	)
}
