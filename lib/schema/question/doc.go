// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package question defines the Q&A board's data model and its wire
// representation.
//
// [Question] is the domain value held by the reconciled collection:
// plain values only (no pointers), so a copy is a snapshot. [Record]
// is the wire shape exchanged with the storage collaborator and
// carried by new_question push frames; it uses nullable fields and
// string timestamps because the collaborator emits both RFC 3339 and
// naive ISO-8601 times. [AnswerDelta] and [StatusDelta] are the
// partial payloads of question_answered and status_updated frames.
//
// The same struct tags serve JSON (text frames, REST bodies) and CBOR
// (binary frames): the CBOR codec falls back to json tags when no cbor
// tag is present.
package question
