// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package questionevent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bureau-foundation/qaboard/lib/codec"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// Format selects the frame encoding.
type Format int

const (
	// FormatJSON is a UTF-8 text frame holding a JSON envelope.
	FormatJSON Format = iota

	// FormatCBOR is a binary frame holding a CBOR envelope.
	FormatCBOR
)

// String returns the configuration name of the format.
func (format Format) String() string {
	switch format {
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	}
	return fmt.Sprintf("Format(%d)", int(format))
}

// ParseFormat parses a configuration value ("json" or "cbor").
func ParseFormat(value string) (Format, error) {
	switch value {
	case "", "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return FormatJSON, fmt.Errorf("unknown frame format %q (want json or cbor)", value)
}

// ErrUnknownType is returned by Parse for a well-formed envelope whose
// type this client does not recognize.
var ErrUnknownType = errors.New("unknown event type")

// ErrMalformed is returned by Parse for frames that are not a valid
// envelope, or whose payload is missing required fields.
var ErrMalformed = errors.New("malformed frame")

type jsonEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type cborEnvelope struct {
	Type string           `json:"type"`
	Data codec.RawMessage `json:"data"`
}

// Decode converts a frame into an event. The boolean is false when the
// frame should be ignored, for any reason.
func Decode(data []byte, format Format) (Event, bool) {
	event, err := Parse(data, format)
	if err != nil {
		return nil, false
	}
	return event, true
}

// Parse is Decode with the reason a frame was rejected. Every error
// wraps either ErrMalformed or ErrUnknownType.
func Parse(data []byte, format Format) (Event, error) {
	var (
		eventType string
		payload   []byte
		unmarshal func([]byte, any) error
	)
	switch format {
	case FormatJSON:
		var envelope jsonEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		eventType, payload, unmarshal = envelope.Type, envelope.Data, json.Unmarshal
	case FormatCBOR:
		var envelope cborEnvelope
		if err := codec.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		eventType, payload, unmarshal = envelope.Type, envelope.Data, codec.Unmarshal
	default:
		return nil, fmt.Errorf("%w: unsupported format %v", ErrMalformed, format)
	}

	switch eventType {
	case question.EventNewQuestion, question.EventQuestionAnswered, question.EventStatusUpdated:
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownType, eventType)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: %s frame has no data", ErrMalformed, eventType)
	}

	var (
		event Event
		err   error
	)
	switch eventType {
	case question.EventNewQuestion:
		event, err = decodeCreated(payload, unmarshal)
	case question.EventQuestionAnswered:
		event, err = decodeAnswered(payload, unmarshal)
	case question.EventStatusUpdated:
		event, err = decodeStatusChanged(payload, unmarshal)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, eventType, err)
	}
	return event, nil
}

func decodeCreated(payload []byte, unmarshal func([]byte, any) error) (Event, error) {
	var record question.Record
	if err := unmarshal(payload, &record); err != nil {
		return nil, err
	}
	if record.ID <= 0 {
		return nil, fmt.Errorf("missing id")
	}
	if record.Message == "" {
		return nil, fmt.Errorf("missing message")
	}
	if record.Status == "" {
		record.Status = question.StatusPending
	}
	if !record.Status.Valid() {
		return nil, fmt.Errorf("invalid status %q", record.Status)
	}
	q, err := record.Question()
	if err != nil {
		return nil, err
	}
	return Created{Question: q}, nil
}

func decodeAnswered(payload []byte, unmarshal func([]byte, any) error) (Event, error) {
	var delta question.AnswerDelta
	if err := unmarshal(payload, &delta); err != nil {
		return nil, err
	}
	if delta.ID <= 0 {
		return nil, fmt.Errorf("missing id")
	}
	if delta.Answer == "" {
		return nil, fmt.Errorf("missing answer")
	}
	updatedAt, err := question.ParseTime(delta.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return Answered{ID: delta.ID, Answer: delta.Answer, UpdatedAt: updatedAt}, nil
}

func decodeStatusChanged(payload []byte, unmarshal func([]byte, any) error) (Event, error) {
	var delta question.StatusDelta
	if err := unmarshal(payload, &delta); err != nil {
		return nil, err
	}
	if delta.ID <= 0 {
		return nil, fmt.Errorf("missing id")
	}
	if !delta.Status.Valid() {
		return nil, fmt.Errorf("invalid status %q", delta.Status)
	}
	updatedAt, err := question.ParseTime(delta.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return StatusChanged{ID: delta.ID, Status: delta.Status, UpdatedAt: updatedAt}, nil
}

// Encode renders event as a push frame in the given format.
func Encode(event Event, format Format) ([]byte, error) {
	var data any
	switch event := event.(type) {
	case Created:
		data = event.Question.Record()
	case Answered:
		data = question.AnswerDelta{
			ID:        event.ID,
			Answer:    event.Answer,
			UpdatedAt: question.FormatTime(event.UpdatedAt),
		}
	case StatusChanged:
		data = question.StatusDelta{
			ID:        event.ID,
			Status:    event.Status,
			UpdatedAt: question.FormatTime(event.UpdatedAt),
		}
	default:
		return nil, fmt.Errorf("questionevent: cannot encode %T", event)
	}

	envelope := struct {
		Type string `json:"type"`
		Data any    `json:"data"`
	}{Type: Type(event), Data: data}

	switch format {
	case FormatJSON:
		return json.Marshal(envelope)
	case FormatCBOR:
		return codec.Marshal(envelope)
	}
	return nil, fmt.Errorf("questionevent: unsupported format %v", format)
}
