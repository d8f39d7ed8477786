// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/json"
	"sync"
	"time"

	"recipechat/internal/api"
	"recipechat/internal/logging"
	"recipechat/internal/model"
)

// =============================================================================
// LIMITS & FORMATS
// =============================================================================

// MaxSerializedBytes caps the persisted envelope at 4.5 MiB, leaving
// headroom below typical platform storage quotas.
const MaxSerializedBytes = 4608 * 1024

// DefaultKey is the storage entry name for the single conversation.
const DefaultKey = "chat-storage"

// timestampLayout persists instants as fixed-width UTC text with full
// nanoseconds. A parsed timestamp re-formats to the identical bytes, which
// keeps serialize(load(serialize(state))) byte-identical.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// =============================================================================
// PERSISTED ENVELOPE
// =============================================================================

// The persisted layout is `{"state":{"messages":[...]}}` with timestamps as
// fixed-format text. Only sealed messages are written; the in-progress
// message and its transient id never reach the backend.

type envelope struct {
	State envelopeState `json:"state"`
}

type envelopeState struct {
	Messages []persistedMessage `json:"messages"`
}

type persistedMessage struct {
	ID        string         `json:"id"`
	Role      model.Role     `json:"role"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp"`
	Strategy  string         `json:"strategy,omitempty"`
	Documents []api.Document `json:"documents,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func toPersisted(m model.Message) persistedMessage {
	return persistedMessage{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		Timestamp: m.Timestamp.UTC().Format(timestampLayout),
		Strategy:  m.Strategy,
		Documents: m.Documents,
		Metadata:  m.Metadata,
	}
}

func (p persistedMessage) toModel() (model.Message, error) {
	ts, err := time.Parse(timestampLayout, p.Timestamp)
	if err != nil {
		return model.Message{}, err
	}
	return model.Message{
		ID:        p.ID,
		Role:      p.Role,
		Content:   p.Content,
		Timestamp: ts,
		Strategy:  p.Strategy,
		Documents: p.Documents,
		Metadata:  p.Metadata,
	}, nil
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore owns the sealed message sequence and persists it within
// a hard size budget. Writes never surface errors to callers: quota
// conditions are recovered by eviction, then by clearing the entry, and a
// backend that still refuses is logged and ignored.
type ConversationStore struct {
	mu      sync.Mutex
	backend Backend
	state   model.ConversationState

	// Key is the backend entry name.
	Key string

	// MaxBytes is the serialized size cap. Tests lower it to force eviction.
	MaxBytes int
}

// NewConversationStore creates a store over the given backend.
func NewConversationStore(backend Backend) *ConversationStore {
	return &ConversationStore{
		backend:  backend,
		Key:      DefaultKey,
		MaxBytes: MaxSerializedBytes,
	}
}

// Load reads persisted state into memory and returns a copy. A missing entry
// yields an empty conversation; a corrupted one yields an empty conversation
// and the decode error, so the caller can start fresh without crashing.
func (s *ConversationStore) Load() (model.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.backend.Get(s.Key)
	if err != nil || !ok {
		s.state = model.ConversationState{}
		return model.ConversationState{}, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logging.L().Warn().Err(err).Msg("persisted conversation is corrupted, starting fresh")
		s.state = model.ConversationState{}
		return model.ConversationState{}, err
	}

	msgs := make([]model.Message, 0, len(env.State.Messages))
	for _, p := range env.State.Messages {
		m, err := p.toModel()
		if err != nil {
			logging.L().Warn().Err(err).Str("id", p.ID).Msg("skipping message with bad timestamp")
			continue
		}
		msgs = append(msgs, m)
	}

	s.state = model.ConversationState{Messages: msgs}
	return s.state.Clone(), nil
}

// Save replaces the in-memory state and persists it.
func (s *ConversationStore) Save(state model.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.persistLocked()
	return nil
}

// Append appends a sealed message and persists. It implements model.Sink, so
// the lifecycle hands sealed messages straight here.
func (s *ConversationStore) Append(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Messages = append(s.state.Messages, msg)
	s.persistLocked()
}

// ClearAll destroys the conversation, in memory and in the backend.
func (s *ConversationStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.ConversationState{}
	if err := s.backend.Delete(s.Key); err != nil {
		logging.L().Warn().Err(err).Msg("failed to clear persisted conversation")
	}
}

// Messages returns a copy of the sealed message sequence.
func (s *ConversationStore) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone().Messages
}

// Len returns the number of sealed messages.
func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Messages)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistLocked serializes the state, evicting oldest messages while the
// envelope exceeds the cap (but never below one message), then writes
// best-effort.
func (s *ConversationStore) persistLocked() {
	msgs := s.state.Messages
	data, err := marshalEnvelope(msgs)
	if err != nil {
		logging.L().Error().Err(err).Msg("failed to serialize conversation")
		return
	}

	evicted := 0
	for len(data) > s.MaxBytes && len(msgs) > 1 {
		msgs = msgs[1:]
		evicted++
		data, err = marshalEnvelope(msgs)
		if err != nil {
			logging.L().Error().Err(err).Msg("failed to serialize conversation")
			return
		}
	}
	if evicted > 0 {
		// Eviction is destruction: the in-memory sequence shrinks too.
		s.state.Messages = msgs
		logging.L().Info().Int("evicted", evicted).Int("bytes", len(data)).Msg("evicted oldest messages to fit storage cap")
	}

	writeErr := s.backend.Set(s.Key, data)
	if writeErr == nil {
		return
	}
	logging.L().Warn().Err(writeErr).Msg("conversation write failed, clearing entry and retrying")

	// Quota recovery: clear the entry and retry once. A second failure is
	// swallowed; in-memory state remains authoritative for this session.
	if err := s.backend.Delete(s.Key); err != nil {
		logging.L().Error().Err(err).Msg("failed to clear storage entry")
	}
	if err := s.backend.Set(s.Key, data); err != nil {
		logging.L().Error().Err(err).Msg("conversation write abandoned")
	}
}

func marshalEnvelope(msgs []model.Message) ([]byte, error) {
	persisted := make([]persistedMessage, len(msgs))
	for i, m := range msgs {
		persisted[i] = toPersisted(m)
	}
	return json.Marshal(envelope{State: envelopeState{Messages: persisted}})
}
