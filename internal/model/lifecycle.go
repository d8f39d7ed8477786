// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package model

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"recipechat/internal/api"
	"recipechat/internal/logging"
)

// =============================================================================
// TURN STATE
// =============================================================================

// TurnState is the lifecycle state of the current turn.
type TurnState int

const (
	// StateIdle: no assistant message in progress; ready for the next turn.
	StateIdle TurnState = iota
	// StateStreaming: one assistant message is accumulating content.
	StateStreaming
)

// String returns the state name.
func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Lifecycle errors.
var (
	ErrTurnInProgress = &LifecycleError{Message: "a turn is already streaming"}
	ErrNoTurn         = &LifecycleError{Message: "no turn is streaming"}
)

// LifecycleError is an illegal state transition.
type LifecycleError struct {
	Message string
}

func (e *LifecycleError) Error() string {
	return e.Message
}

// =============================================================================
// SINK
// =============================================================================

// Sink receives sealed messages. The conversation store implements it;
// ownership of the message transfers on Append.
type Sink interface {
	Append(msg Message)
}

// =============================================================================
// STREAMING MESSAGE LIFECYCLE
// =============================================================================

// Lifecycle accumulates one in-progress assistant message per turn and seals
// it into the sink when the turn ends. At most one message is in progress at
// any time; Begin while streaming is rejected.
//
// The mutex makes state transitions safe to drive from a streaming goroutine
// while a renderer reads snapshots from the UI loop.
type Lifecycle struct {
	mu sync.Mutex

	state     TurnState
	id        string
	content   strings.Builder
	metadata  map[string]any
	documents []api.Document

	sink Sink
}

// NewLifecycle creates an idle lifecycle sealing into sink.
func NewLifecycle(sink Sink) *Lifecycle {
	return &Lifecycle{sink: sink}
}

// State returns the current turn state.
func (l *Lifecycle) State() TurnState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Begin starts a new turn and returns the transient message id. It must be
// called before the first network read so the UI can render an empty bubble
// immediately. Fails with ErrTurnInProgress unless idle.
func (l *Lifecycle) Begin() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateIdle {
		return "", ErrTurnInProgress
	}

	l.state = StateStreaming
	l.id = uuid.NewString()
	l.content.Reset()
	l.metadata = nil
	l.documents = nil

	logging.L().Debug().Str("id", l.id).Msg("turn started")
	return l.id, nil
}

// AppendContent appends a delta to the in-progress message. Deltas arrive
// in order and non-overlapping within one stream; no reordering or
// deduplication happens here. The append is visible to Snapshot as soon as
// this returns.
func (l *Lifecycle) AppendContent(delta string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateStreaming {
		return ErrNoTurn
	}
	l.content.WriteString(delta)
	return nil
}

// AbsorbMetadata merges routing fields into the pending turn.
func (l *Lifecycle) AbsorbMetadata(fields map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateStreaming {
		return ErrNoTurn
	}
	if l.metadata == nil {
		l.metadata = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		l.metadata[k] = v
	}
	return nil
}

// AbsorbDocuments records the cited sources for the pending turn.
func (l *Lifecycle) AbsorbDocuments(docs []api.Document) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateStreaming {
		return ErrNoTurn
	}
	l.documents = append(l.documents, docs...)
	return nil
}

// Seal freezes the in-progress message into an immutable assistant Message,
// hands it to the sink, and returns to idle.
func (l *Lifecycle) Seal() (Message, error) {
	l.mu.Lock()
	if l.state != StateStreaming {
		l.mu.Unlock()
		return Message{}, ErrNoTurn
	}
	msg := l.buildLocked("")
	l.resetLocked()
	l.mu.Unlock()

	logging.L().Debug().Str("id", msg.ID).Int("bytes", len(msg.Content)).Msg("turn sealed")
	l.sink.Append(msg)
	return msg, nil
}

// Discard ends a failed turn. If any content was accumulated, the partial
// message is still sealed, flagged with the failure reason, so the user
// keeps output that was already rendered. With no content, no message is
// created and ok is false; the caller surfaces the error through the normal
// message-append path instead.
func (l *Lifecycle) Discard(reason string) (Message, bool, error) {
	l.mu.Lock()
	if l.state != StateStreaming {
		l.mu.Unlock()
		return Message{}, false, ErrNoTurn
	}

	hasContent := l.content.Len() > 0
	var msg Message
	if hasContent {
		msg = l.buildLocked(reason)
	}
	l.resetLocked()
	l.mu.Unlock()

	logging.L().Debug().Str("reason", reason).Bool("partial_kept", hasContent).Msg("turn discarded")
	if !hasContent {
		return Message{}, false, nil
	}
	l.sink.Append(msg)
	return msg, true, nil
}

// Snapshot returns the transient id and content accumulated so far, for
// rendering the in-progress bubble.
func (l *Lifecycle) Snapshot() (id string, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id, l.content.String()
}

// buildLocked constructs the sealed message. The strategy field is promoted
// out of the metadata map; everything else stays in it.
func (l *Lifecycle) buildLocked(failReason string) Message {
	msg := Message{
		ID:        l.id,
		Role:      RoleAssistant,
		Content:   l.content.String(),
		Timestamp: time.Now(),
		Documents: l.documents,
	}

	if len(l.metadata) > 0 || failReason != "" {
		msg.Metadata = make(map[string]any, len(l.metadata)+1)
		for k, v := range l.metadata {
			msg.Metadata[k] = v
		}
		if s, ok := msg.Metadata["strategy"].(string); ok {
			msg.Strategy = s
			delete(msg.Metadata, "strategy")
		}
		if failReason != "" {
			msg.Metadata[errorMetadataKey] = failReason
		}
		if len(msg.Metadata) == 0 {
			msg.Metadata = nil
		}
	}
	return msg
}

func (l *Lifecycle) resetLocked() {
	l.state = StateIdle
	l.id = ""
	l.content.Reset()
	l.metadata = nil
	l.documents = nil
}
