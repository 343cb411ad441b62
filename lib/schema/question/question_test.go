// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package question

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 3, 14, 9, 26, 53, 589000000, time.UTC)
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"empty", "", time.Time{}},
		{"rfc3339 utc", "2025-03-14T09:26:53.589Z", want},
		{"rfc3339 offset", "2025-03-14T11:26:53.589+02:00", want},
		{"naive with fraction", "2025-03-14T09:26:53.589000", want},
		{"naive space separated", "2025-03-14 09:26:53.589", want},
		{"naive without fraction", "2025-03-14T09:26:53", want.Truncate(time.Second)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseTime(test.input)
			if err != nil {
				t.Fatalf("ParseTime(%q): %v", test.input, err)
			}
			if !got.Equal(test.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", test.input, got, test.want)
			}
		})
	}

	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("ParseTime(\"yesterday\") should fail")
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, status := range Statuses {
		parsed, err := ParseStatus(string(status))
		if err != nil || parsed != status {
			t.Errorf("ParseStatus(%q) = %q, %v", status, parsed, err)
		}
	}
	for _, invalid := range []string{"", "closed", "Pending"} {
		if _, err := ParseStatus(invalid); err == nil {
			t.Errorf("ParseStatus(%q) should fail", invalid)
		}
	}
}

func TestQuestionUnmarshalNullableFields(t *testing.T) {
	t.Parallel()

	input := `{"id": 7, "message": "Is the venue accessible?", "status": "pending",
		"answer": null, "user_id": null, "author_name": "",
		"created_at": "2025-03-14T09:26:53.589000", "updated_at": "2025-03-14T09:26:53.589000"}`

	var q Question
	if err := json.Unmarshal([]byte(input), &q); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if q.ID != 7 || q.Message != "Is the venue accessible?" || q.Status != StatusPending {
		t.Errorf("decoded %+v", q)
	}
	if q.Answered() {
		t.Errorf("null answer decoded as %q", q.Answer)
	}
	if q.AuthorID != 0 {
		t.Errorf("null user_id decoded as %d", q.AuthorID)
	}
	if q.CreatedAt.IsZero() {
		t.Error("created_at not decoded")
	}
}

func TestQuestionMarshalWireForm(t *testing.T) {
	t.Parallel()

	q := Question{
		ID:         3,
		Message:    "When is lunch?",
		Status:     StatusAnswered,
		Answer:     "Noon",
		AuthorName: "ada",
		AuthorID:   12,
		CreatedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	if fields["answer"] != "Noon" {
		t.Errorf("answer = %v", fields["answer"])
	}
	if fields["user_id"] != float64(12) {
		t.Errorf("user_id = %v", fields["user_id"])
	}
	if fields["created_at"] != "2025-01-02T03:04:05Z" {
		t.Errorf("created_at = %v", fields["created_at"])
	}
	if _, present := fields["updated_at"]; present {
		t.Error("zero updated_at should be omitted")
	}
}
