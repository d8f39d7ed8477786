// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

// decodeAll runs a full stream through a fresh decoder in one buffer.
func decodeAll(t *testing.T, stream string) []StreamEvent {
	t.Helper()
	dec := NewDecoder()
	events := dec.Write([]byte(stream))
	return append(events, dec.Flush()...)
}

// =============================================================================
// SPLIT INVARIANCE
// =============================================================================

// The decoded event sequence must be identical no matter where the transport
// splits the byte stream: mid-line, mid-multibyte-character, or exactly on a
// line boundary.
func TestDecoder_SplitInvariance(t *testing.T) {
	stream := "data: {\"type\": \"metadata\", \"strategy\": \"hybrid_traditional\", \"complexity\": 0.4}\n\n" +
		"data: {\"type\": \"content\", \"content\": \"番茄炒蛋：\"}\n\n" +
		"data: {\"type\": \"content\", \"content\": \"先打散鸡蛋\"}\n\n" +
		"data: {\"type\": \"done\"}\n\n"

	want := decodeAll(t, stream)
	if len(want) != 4 {
		t.Fatalf("reference decode produced %d events, want 4", len(want))
	}

	raw := []byte(stream)
	for split := 1; split < len(raw); split++ {
		dec := NewDecoder()
		got := dec.Write(raw[:split])
		got = append(got, dec.Write(raw[split:])...)
		got = append(got, dec.Flush()...)

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("split at byte %d changed the event sequence:\ngot  %v\nwant %v", split, got, want)
		}
	}
}

func TestDecoder_MultibyteSpansBuffers(t *testing.T) {
	line := "data: {\"type\": \"content\", \"content\": \"鸡蛋\"}\n"
	raw := []byte(line)

	// Split inside the first multi-byte character of the value.
	cut := strings.Index(line, "鸡") + 1

	dec := NewDecoder()
	events := dec.Write(raw[:cut])
	if len(events) != 0 {
		t.Fatalf("incomplete line produced %d events", len(events))
	}
	events = dec.Write(raw[cut:])
	if len(events) != 1 || events[0].Content != "鸡蛋" {
		t.Fatalf("events = %v, want one content event %q", events, "鸡蛋")
	}
}

// =============================================================================
// RECORD DISPATCH
// =============================================================================

func TestDecoder_Dispatch(t *testing.T) {
	tests := []struct {
		name string
		line string
		want StreamEvent
	}{
		{
			name: "content",
			line: `data: {"type": "content", "content": "Hello"}`,
			want: StreamEvent{Type: EventContent, Content: "Hello"},
		},
		{
			name: "done",
			line: `data: {"type": "done"}`,
			want: StreamEvent{Type: EventDone},
		},
		{
			name: "error",
			line: `data: {"type": "error", "message": "generation failed"}`,
			want: StreamEvent{Type: EventError, Message: "generation failed"},
		},
		{
			name: "legacy chunk record",
			line: `data: {"chunk": "partial"}`,
			want: StreamEvent{Type: EventContent, Content: "partial"},
		},
		{
			name: "unprefixed line degrades to content",
			line: `  stray transport noise  `,
			want: StreamEvent{Type: EventContent, Content: "stray transport noise"},
		},
		{
			name: "malformed json degrades to content",
			line: `data: {"type": "content", "content": `,
			want: StreamEvent{Type: EventContent, Content: `data: {"type": "content", "content":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := decodeAll(t, tt.line+"\n")
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1", len(events))
			}
			if !reflect.DeepEqual(events[0], tt.want) {
				t.Errorf("event = %+v, want %+v", events[0], tt.want)
			}
		})
	}
}

func TestDecoder_MetadataCarriesAllFields(t *testing.T) {
	line := `data: {"type": "metadata", "strategy": "graph_rag", "complexity": 0.8, "relationship_intensity": 0.6, "document_count": 5}` + "\n"

	events := decodeAll(t, line)
	if len(events) != 1 || events[0].Type != EventMetadata {
		t.Fatalf("events = %v", events)
	}

	m := events[0].Metadata
	if m["strategy"] != "graph_rag" {
		t.Errorf("strategy = %v", m["strategy"])
	}
	if m["complexity"] != 0.8 {
		t.Errorf("complexity = %v", m["complexity"])
	}
	if _, ok := m["type"]; ok {
		t.Error("discriminator must not leak into metadata fields")
	}
}

func TestDecoder_BareMetadataBackCompat(t *testing.T) {
	line := `data: {"metadata": {"strategy": "combined"}}` + "\n"

	events := decodeAll(t, line)
	if len(events) != 1 || events[0].Type != EventMetadata {
		t.Fatalf("events = %v", events)
	}
	if events[0].Metadata["strategy"] != "combined" {
		t.Errorf("strategy = %v", events[0].Metadata["strategy"])
	}
}

func TestDecoder_DocumentsRecord(t *testing.T) {
	line := `data: {"type": "documents", "documents": [{"recipe_name": "番茄炒蛋", "content": "...", "search_type": "hybrid", "relevance_score": 0.92}]}` + "\n"

	events := decodeAll(t, line)
	if len(events) != 1 || events[0].Type != EventDocuments {
		t.Fatalf("events = %v", events)
	}
	docs := events[0].Documents
	if len(docs) != 1 || docs[0].RecipeName != "番茄炒蛋" || docs[0].RelevanceScore != 0.92 {
		t.Errorf("documents = %+v", docs)
	}
}

func TestDecoder_DoneSentinelDiscarded(t *testing.T) {
	events := decodeAll(t, "data: [DONE]\n")
	if len(events) != 0 {
		t.Errorf("[DONE] produced events: %v", events)
	}
}

func TestDecoder_BlankLinesSkipped(t *testing.T) {
	events := decodeAll(t, "\n\n   \n")
	if len(events) != 0 {
		t.Errorf("blank lines produced events: %v", events)
	}
}

func TestDecoder_MalformedInterleavedWithValid(t *testing.T) {
	stream := `data: {"type": "content", "content": "a"}` + "\n" +
		`data: {broken` + "\n" +
		`data: {"type": "content", "content": "b"}` + "\n"

	events := decodeAll(t, stream)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %v", len(events), events)
	}
	if events[0].Content != "a" || events[2].Content != "b" {
		t.Errorf("valid lines mishandled: %v", events)
	}
	if events[1].Type != EventContent || events[1].Content != `data: {broken` {
		t.Errorf("malformed line = %+v", events[1])
	}
}

func TestDecoder_FlushEmitsUnterminatedFragment(t *testing.T) {
	dec := NewDecoder()
	if events := dec.Write([]byte("trailing fragment without newline")); len(events) != 0 {
		t.Fatalf("unterminated line decoded early: %v", events)
	}

	events := dec.Flush()
	if len(events) != 1 || events[0].Content != "trailing fragment without newline" {
		t.Errorf("Flush = %v", events)
	}

	if events := dec.Flush(); len(events) != 0 {
		t.Errorf("second Flush produced events: %v", events)
	}
}

// =============================================================================
// STREAM READER
// =============================================================================

func TestStreamReader_StopsAtTerminalEvent(t *testing.T) {
	stream := `data: {"type": "content", "content": "Hello"}` + "\n" +
		`data: {"type": "done"}` + "\n" +
		`data: {"type": "content", "content": "after the end"}` + "\n"

	var got []StreamEvent
	err := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), func(ev StreamEvent) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if len(got) != 2 || got[1].Type != EventDone {
		t.Errorf("events = %v, want content then done", got)
	}
}

func TestStreamReader_SynthesizesDoneAtEOF(t *testing.T) {
	stream := `data: {"type": "content", "content": "Hello"}` + "\n" + "partial"

	var got []StreamEvent
	err := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), func(ev StreamEvent) error {
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []StreamEvent{
		{Type: EventContent, Content: "Hello"},
		{Type: EventContent, Content: "partial"},
		{Type: EventDone},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestStreamReader_CallbackErrorAborts(t *testing.T) {
	stream := `data: {"type": "content", "content": "a"}` + "\n" +
		`data: {"type": "content", "content": "b"}` + "\n"

	calls := 0
	err := NewStreamReader(strings.NewReader(stream)).Process(context.Background(), func(ev StreamEvent) error {
		calls++
		return context.Canceled
	})
	if err == nil {
		t.Fatal("expected callback error to propagate")
	}
	if calls != 1 {
		t.Errorf("callback called %d times after abort, want 1", calls)
	}
}
