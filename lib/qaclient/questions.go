// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package qaclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// ListQuestions fetches every question, in the server's order.
func (c *Client) ListQuestions(ctx context.Context) ([]question.Question, error) {
	var questions []question.Question
	if err := c.doJSON(ctx, http.MethodGet, "/questions", nil, &questions); err != nil {
		return nil, fmt.Errorf("qaclient: list questions: %w", err)
	}
	return questions, nil
}

// CreateQuestion submits a new question. When a token is set the
// server attributes the question to that user.
func (c *Client) CreateQuestion(ctx context.Context, message string) (question.Question, error) {
	request := struct {
		Message string `json:"message"`
	}{Message: message}

	var created question.Question
	if err := c.doJSON(ctx, http.MethodPost, "/questions", request, &created); err != nil {
		return question.Question{}, fmt.Errorf("qaclient: create question: %w", err)
	}
	c.logger.Debug("question created", "question_id", created.ID)
	return created, nil
}

// SubmitAnswer records an answer and returns the updated question.
func (c *Client) SubmitAnswer(ctx context.Context, id int64, answer string) (question.Question, error) {
	request := struct {
		Answer string `json:"answer"`
	}{Answer: answer}

	var updated question.Question
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/questions/%d/answer", id), request, &updated); err != nil {
		return question.Question{}, fmt.Errorf("qaclient: answer question %d: %w", id, err)
	}
	return updated, nil
}

// SetStatus changes a question's status and returns the updated
// question. Requires an admin token.
func (c *Client) SetStatus(ctx context.Context, id int64, status question.Status) (question.Question, error) {
	request := struct {
		Status question.Status `json:"status"`
	}{Status: status}

	var updated question.Question
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/questions/%d/status", id), request, &updated); err != nil {
		return question.Question{}, fmt.Errorf("qaclient: set status of question %d: %w", id, err)
	}
	return updated, nil
}

// DeleteQuestion removes a question. Requires an admin token. No push
// event announces deletions.
func (c *Client) DeleteQuestion(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/questions/%d", id), nil, nil); err != nil {
		return fmt.Errorf("qaclient: delete question %d: %w", id, err)
	}
	return nil
}
