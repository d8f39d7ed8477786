// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"recipechat/internal/api"
	"recipechat/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// errorMetadataKey marks a message produced by a failed turn. The failure
// reason is stored under this key so partial output stays visible but
// distinguishable.
const errorMetadataKey = "error"

// Message is one entry in a conversation. Messages are immutable once sealed
// into the store; only the lifecycle's in-progress message mutates, and only
// by content append.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Strategy is the backend's routing decision for an assistant answer
	// (e.g. "hybrid_traditional", "graph_rag", "combined").
	Strategy string `json:"strategy,omitempty"`

	// Documents are the retrieved sources cited by an assistant answer.
	Documents []api.Document `json:"documents,omitempty"`

	// Metadata carries the remaining routing fields (complexity,
	// relationship_intensity, ...) and, for failed turns, the error reason.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Routing strategies the backend is known to report.
const (
	StrategyHybrid   = "hybrid_traditional"
	StrategyGraphRAG = "graph_rag"
	StrategyCombined = "combined"
)

// StrategyLabel maps a backend strategy name to its short display form.
// Unknown strategies pass through unchanged so a newer backend still renders.
func StrategyLabel(strategy string) string {
	switch strategy {
	case StrategyHybrid:
		return "hybrid"
	case StrategyGraphRAG:
		return "graph"
	case StrategyCombined:
		return "combined"
	default:
		return strategy
	}
}

// NewUserMessage creates a user message with a generated ID.
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewErrorMessage creates a visible assistant message describing a failed
// turn that produced no content of its own.
func NewErrorMessage(content, reason string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  map[string]any{errorMetadataKey: reason},
	}
}

// Failed reports whether this message came from a failed turn, and if so the
// recorded reason.
func (m *Message) Failed() (string, bool) {
	if m.Metadata == nil {
		return "", false
	}
	reason, ok := m.Metadata[errorMetadataKey].(string)
	return reason, ok
}

// Complexity returns the backend's complexity estimate for this answer, or
// false when none was reported.
func (m *Message) Complexity() (float64, bool) {
	if m.Metadata == nil {
		return 0, false
	}
	v, ok := m.Metadata["complexity"].(float64)
	return v, ok
}

// =============================================================================
// CONVERSATION STATE
// =============================================================================

// ConversationState is the ordered sequence of sealed messages. The store
// owns it exclusively; the single in-progress message lives in the Lifecycle
// and is never part of this state.
type ConversationState struct {
	Messages []Message `json:"messages"`
}

// Clone returns a deep-enough copy: the message slice is duplicated so the
// caller cannot reorder the store's history.
func (s ConversationState) Clone() ConversationState {
	out := ConversationState{Messages: make([]Message, len(s.Messages))}
	copy(out.Messages, s.Messages)
	return out
}

// Preview returns the first user question, collapsed to one line and
// truncated for list display. Returns empty string if no user messages exist.
func (s ConversationState) Preview() string {
	for i := range s.Messages {
		m := &s.Messages[i]
		if m.Role == RoleUser && m.Content != "" {
			return util.Summarize(m.Content, 80)
		}
	}
	return ""
}

// ExportMarkdown renders the conversation as a markdown transcript.
func (s ConversationState) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Recipe conversation\n\n")
	if len(s.Messages) > 0 {
		sb.WriteString("Started: " + s.Messages[0].Timestamp.Format(time.RFC3339) + "\n\n")
	}
	sb.WriteString("---\n\n")

	for i := range s.Messages {
		msg := &s.Messages[i]
		sb.WriteString("**" + msg.Role.DisplayName() + "** (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		if msg.Strategy != "" {
			sb.WriteString("\n\n_via " + StrategyLabel(msg.Strategy) + "_")
		}
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// ExportJSON renders the conversation as pretty-printed JSON.
func (s ConversationState) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
