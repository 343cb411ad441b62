// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package question

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the triage state of a question.
type Status string

const (
	// StatusPending is the initial state of every new question.
	StatusPending Status = "pending"

	// StatusEscalated marks a question an operator has flagged for
	// attention. Escalated questions sort ahead of everything else.
	StatusEscalated Status = "escalated"

	// StatusAnswered is set when an answer is submitted, or by an
	// operator directly.
	StatusAnswered Status = "answered"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusEscalated, StatusAnswered}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusEscalated, StatusAnswered:
		return true
	}
	return false
}

// ParseStatus converts a user- or wire-supplied string to a Status.
func ParseStatus(value string) (Status, error) {
	status := Status(value)
	if !status.Valid() {
		return "", fmt.Errorf("invalid status %q (want pending, escalated, or answered)", value)
	}
	return status, nil
}

// Push frame types. The set is closed from this client's point of
// view: frames with any other type are ignored.
const (
	EventNewQuestion      = "new_question"
	EventQuestionAnswered = "question_answered"
	EventStatusUpdated    = "status_updated"
)

// Question is one entry in the board. The zero AuthorID means the
// question was submitted anonymously; an empty Answer means it has not
// been answered.
type Question struct {
	ID         int64
	Message    string
	Status     Status
	Answer     string
	AuthorName string
	AuthorID   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Answered reports whether an answer has been recorded.
func (q Question) Answered() bool {
	return q.Answer != ""
}

// Record is the wire form of a Question.
type Record struct {
	ID         int64   `json:"id"`
	Message    string  `json:"message"`
	Status     Status  `json:"status,omitempty"`
	Answer     *string `json:"answer"`
	AuthorName string  `json:"author_name,omitempty"`
	AuthorID   *int64  `json:"user_id"`
	CreatedAt  string  `json:"created_at,omitempty"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
}

// Record converts q to its wire form.
func (q Question) Record() Record {
	record := Record{
		ID:         q.ID,
		Message:    q.Message,
		Status:     q.Status,
		AuthorName: q.AuthorName,
		CreatedAt:  FormatTime(q.CreatedAt),
		UpdatedAt:  FormatTime(q.UpdatedAt),
	}
	if q.Answer != "" {
		answer := q.Answer
		record.Answer = &answer
	}
	if q.AuthorID != 0 {
		authorID := q.AuthorID
		record.AuthorID = &authorID
	}
	return record
}

// Question converts a wire record to a Question. Fails only on
// unparseable timestamps; field-level validation is the caller's job.
func (record Record) Question() (Question, error) {
	createdAt, err := ParseTime(record.CreatedAt)
	if err != nil {
		return Question{}, fmt.Errorf("created_at: %w", err)
	}
	updatedAt, err := ParseTime(record.UpdatedAt)
	if err != nil {
		return Question{}, fmt.Errorf("updated_at: %w", err)
	}
	q := Question{
		ID:         record.ID,
		Message:    record.Message,
		Status:     record.Status,
		AuthorName: record.AuthorName,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
	if record.Answer != nil {
		q.Answer = *record.Answer
	}
	if record.AuthorID != nil {
		q.AuthorID = *record.AuthorID
	}
	return q, nil
}

// MarshalJSON encodes q in its wire form.
func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Record())
}

// UnmarshalJSON decodes the wire form into q.
func (q *Question) UnmarshalJSON(data []byte) error {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	decoded, err := record.Question()
	if err != nil {
		return err
	}
	*q = decoded
	return nil
}

// AnswerDelta is the payload of a question_answered frame.
type AnswerDelta struct {
	ID        int64  `json:"id"`
	Answer    string `json:"answer"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// StatusDelta is the payload of a status_updated frame.
type StatusDelta struct {
	ID        int64  `json:"id"`
	Status    Status `json:"status"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// User is an account known to the auth collaborator.
type User struct {
	ID        int64
	Username  string
	Email     string
	IsAdmin   bool
	CreatedAt time.Time
}

type userRecord struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at,omitempty"`
}

// MarshalJSON encodes the user in its wire form.
func (user User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userRecord{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		CreatedAt: FormatTime(user.CreatedAt),
	})
}

// UnmarshalJSON decodes the wire form into user.
func (user *User) UnmarshalJSON(data []byte) error {
	var record userRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	createdAt, err := ParseTime(record.CreatedAt)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	*user = User{
		ID:        record.ID,
		Username:  record.Username,
		Email:     record.Email,
		IsAdmin:   record.IsAdmin,
		CreatedAt: createdAt,
	}
	return nil
}
