// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardserver

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/bureau-foundation/qaboard/lib/questionevent"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

// account is a registered user and their password hash.
type account struct {
	user         question.User
	passwordHash []byte
}

// board holds users and questions in memory. Every question write is
// announced while the lock is held, so announcements leave in commit
// order.
type board struct {
	mutex    sync.Mutex
	announce func(questionevent.Event)

	nextUserID     int64
	nextQuestionID int64

	accounts   map[int64]*account
	byUsername map[string]int64
	byEmail    map[string]int64
	questions  map[int64]question.Question
}

// newBoard returns an empty board. announce must not block; nil
// discards announcements.
func newBoard(announce func(questionevent.Event)) *board {
	if announce == nil {
		announce = func(questionevent.Event) {}
	}
	return &board{
		announce:   announce,
		accounts:   make(map[int64]*account),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		questions:  make(map[int64]question.Question),
	}
}

func (board *board) addAccount(user question.User, passwordHash []byte) (question.User, error) {
	board.mutex.Lock()
	defer board.mutex.Unlock()

	if _, exists := board.byUsername[user.Username]; exists {
		return question.User{}, errDuplicate
	}
	if _, exists := board.byEmail[user.Email]; exists {
		return question.User{}, errDuplicate
	}

	board.nextUserID++
	user.ID = board.nextUserID
	board.accounts[user.ID] = &account{user: user, passwordHash: passwordHash}
	board.byUsername[user.Username] = user.ID
	board.byEmail[user.Email] = user.ID
	return user, nil
}

func (board *board) accountByUsername(username string) (account, bool) {
	board.mutex.Lock()
	defer board.mutex.Unlock()

	id, exists := board.byUsername[username]
	if !exists {
		return account{}, false
	}
	return *board.accounts[id], true
}

func (board *board) addQuestion(message string, author *question.User, now time.Time) question.Question {
	board.mutex.Lock()
	defer board.mutex.Unlock()

	board.nextQuestionID++
	q := question.Question{
		ID:        board.nextQuestionID,
		Message:   message,
		Status:    question.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if author != nil {
		q.AuthorID = author.ID
		q.AuthorName = author.Username
	}
	board.questions[q.ID] = q
	board.announce(questionevent.Created{Question: q})
	return q
}

// listQuestions returns every question, escalated first, then newest
// first.
func (board *board) listQuestions() []question.Question {
	board.mutex.Lock()
	list := make([]question.Question, 0, len(board.questions))
	for _, q := range board.questions {
		list = append(list, q)
	}
	board.mutex.Unlock()

	slices.SortFunc(list, func(a, b question.Question) int {
		aEscalated := a.Status == question.StatusEscalated
		bEscalated := b.Status == question.StatusEscalated
		if aEscalated != bEscalated {
			if aEscalated {
				return -1
			}
			return 1
		}
		if order := b.CreatedAt.Compare(a.CreatedAt); order != 0 {
			return order
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return list
}

// update applies change to question id, stamps UpdatedAt, and
// announces the event describe builds from the stored result.
func (board *board) update(id int64, now time.Time, change func(*question.Question), describe func(question.Question) questionevent.Event) (question.Question, error) {
	board.mutex.Lock()
	defer board.mutex.Unlock()

	q, exists := board.questions[id]
	if !exists {
		return question.Question{}, errNotFound
	}
	change(&q)
	q.UpdatedAt = now
	board.questions[id] = q
	board.announce(describe(q))
	return q, nil
}

func (board *board) deleteQuestion(id int64) error {
	board.mutex.Lock()
	defer board.mutex.Unlock()

	if _, exists := board.questions[id]; !exists {
		return errNotFound
	}
	delete(board.questions, id)
	return nil
}
