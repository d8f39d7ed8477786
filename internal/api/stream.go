// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"recipechat/internal/logging"
)

// =============================================================================
// FRAME DECODER
// =============================================================================

// dataPrefix and doneSentinel are the SSE framing markers the backend emits.
const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Decoder turns transport byte buffers into StreamEvents.
//
// Buffers arrive with arbitrary boundaries: a record line, and even a single
// UTF-8 character, may span two Write calls. The decoder keeps raw bytes in a
// carry-over buffer and only splits on '\n', an ASCII byte that can never
// appear inside a multi-byte UTF-8 sequence, so partial characters simply
// wait in the carry-over until their remaining bytes arrive.
//
// Decoding is total: malformed input degrades to content events rather than
// failing. Only an explicit error-typed record produces an EventError.
type Decoder struct {
	carry []byte
}

// NewDecoder creates a decoder for one stream. Decoders are single-use and
// not safe for concurrent use.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Write consumes one transport buffer and returns the events completed by it,
// in arrival order.
func (d *Decoder) Write(p []byte) []StreamEvent {
	d.carry = append(d.carry, p...)

	var events []StreamEvent
	for {
		i := bytes.IndexByte(d.carry, '\n')
		if i < 0 {
			break
		}
		line := string(d.carry[:i])
		d.carry = d.carry[i+1:]

		if ev, ok := parseLine(line); ok {
			events = append(events, ev)
		}
	}
	return events
}

// Flush terminates the stream. A non-empty unterminated fragment left in the
// carry-over is emitted as a final content delta rather than dropped.
func (d *Decoder) Flush() []StreamEvent {
	if len(d.carry) == 0 {
		return nil
	}
	line := string(d.carry)
	d.carry = nil

	if ev, ok := parseLine(line); ok {
		return []StreamEvent{ev}
	}
	return nil
}

// =============================================================================
// LINE PARSING
// =============================================================================

// streamRecord mirrors the JSON records the backend emits, including the two
// legacy shapes: type-less records carrying "chunk" and records carrying a
// bare "metadata" object.
type streamRecord struct {
	Type      string         `json:"type"`
	Content   string         `json:"content"`
	Chunk     string         `json:"chunk"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata"`
	Documents []Document     `json:"documents"`
}

// parseLine decodes one line into an event. The bool is false for lines that
// produce nothing: blanks and the [DONE] sentinel.
func parseLine(line string) (StreamEvent, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return StreamEvent{}, false
	}

	payload := strings.TrimPrefix(line, dataPrefix)
	if payload == doneSentinel {
		return StreamEvent{}, false
	}

	var rec streamRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		// Not a structured record. Surface the raw text as content so
		// nothing the backend sent is silently dropped.
		return StreamEvent{Type: EventContent, Content: line}, true
	}

	switch rec.Type {
	case "content":
		return StreamEvent{Type: EventContent, Content: rec.Content}, true
	case "metadata":
		return StreamEvent{Type: EventMetadata, Metadata: metadataFields(payload)}, true
	case "documents":
		return StreamEvent{Type: EventDocuments, Documents: rec.Documents}, true
	case "done":
		return StreamEvent{Type: EventDone}, true
	case "error":
		return StreamEvent{Type: EventError, Message: rec.Message}, true
	case "":
		// Backward compatibility with the pre-typed protocol.
		if rec.Chunk != "" {
			return StreamEvent{Type: EventContent, Content: rec.Chunk}, true
		}
		if rec.Metadata != nil {
			return StreamEvent{Type: EventMetadata, Metadata: rec.Metadata}, true
		}
		return StreamEvent{Type: EventContent, Content: line}, true
	default:
		logging.L().Debug().Str("type", rec.Type).Msg("unknown stream record type")
		return StreamEvent{Type: EventContent, Content: line}, true
	}
}

// metadataFields re-decodes a metadata record as a loose map so every field
// the backend sent travels with the event, minus the discriminator.
func metadataFields(payload string) map[string]any {
	var m map[string]any
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil
	}
	delete(m, "type")
	return m
}

// =============================================================================
// STREAM READER
// =============================================================================

// StreamCallback receives decoded events strictly in arrival order. Returning
// an error aborts the stream.
type StreamCallback func(ev StreamEvent) error

// StreamReader drives a Decoder over an io.Reader, delivering each event to
// the callback before the next read is requested.
type StreamReader struct {
	r   io.Reader
	dec *Decoder
	buf []byte
}

// NewStreamReader creates a reader for one response body.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		r:   r,
		dec: NewDecoder(),
		buf: make([]byte, 4096),
	}
}

// Process reads until a terminal event, EOF, or context cancellation.
// On EOF without an explicit terminal record, it flushes any pending
// fragment and synthesizes a done event. The sequence is non-restartable.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := s.r.Read(s.buf)
		if n > 0 {
			for _, ev := range s.dec.Write(s.buf[:n]) {
				if cbErr := callback(ev); cbErr != nil {
					return cbErr
				}
				if ev.Type == EventDone || ev.Type == EventError {
					return nil
				}
			}
		}
		if err != nil {
			if err != io.EOF {
				return err
			}
			for _, ev := range s.dec.Flush() {
				if cbErr := callback(ev); cbErr != nil {
					return cbErr
				}
			}
			return callback(StreamEvent{Type: EventDone})
		}
	}
}
