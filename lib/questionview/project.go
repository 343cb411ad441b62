// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package questionview

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// Tab selects one of the four partitions.
type Tab string

const (
	TabAll       Tab = "all"
	TabPending   Tab = "pending"
	TabEscalated Tab = "escalated"
	TabAnswered  Tab = "answered"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabAll, TabPending, TabEscalated, TabAnswered}

// ParseTab converts a flag or config value to a Tab.
func ParseTab(value string) (Tab, error) {
	tab := Tab(value)
	if slices.Contains(Tabs, tab) {
		return tab, nil
	}
	return "", fmt.Errorf("unknown view %q (want all, pending, escalated, or answered)", value)
}

// Views holds the four partitions of one projection. Each slice
// preserves the relative order of All.
type Views struct {
	All       []question.Question
	Pending   []question.Question
	Escalated []question.Question
	Answered  []question.Question
}

// Tab returns the partition for tab. Unknown tabs select All.
func (views Views) Tab(tab Tab) []question.Question {
	switch tab {
	case TabPending:
		return views.Pending
	case TabEscalated:
		return views.Escalated
	case TabAnswered:
		return views.Answered
	}
	return views.All
}

// Project filters, sorts, and partitions questions. The input slice is
// not modified.
func Project(questions []question.Question, search string) Views {
	needle := strings.ToLower(search)

	var views Views
	for _, q := range questions {
		if matchesLower(q, needle) {
			views.All = append(views.All, q)
		}
	}
	slices.SortStableFunc(views.All, compare)

	for _, q := range views.All {
		switch q.Status {
		case question.StatusPending:
			views.Pending = append(views.Pending, q)
		case question.StatusEscalated:
			views.Escalated = append(views.Escalated, q)
		case question.StatusAnswered:
			views.Answered = append(views.Answered, q)
		}
	}
	return views
}

// Select is Project followed by Views.Tab.
func Select(questions []question.Question, search string, tab Tab) []question.Question {
	return Project(questions, search).Tab(tab)
}

// Matches reports whether q's message or author name contains search,
// ignoring case. The empty search matches everything.
func Matches(q question.Question, search string) bool {
	return matchesLower(q, strings.ToLower(search))
}

func matchesLower(q question.Question, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(q.Message), needle) ||
		strings.Contains(strings.ToLower(q.AuthorName), needle)
}

// compare orders escalated questions first, then by creation time,
// newest first.
func compare(a, b question.Question) int {
	aEscalated := a.Status == question.StatusEscalated
	bEscalated := b.Status == question.StatusEscalated
	if aEscalated != bEscalated {
		if aEscalated {
			return -1
		}
		return 1
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}
