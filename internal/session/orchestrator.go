// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package session coordinates one question/answer turn: validate the
// question, persist the user message, drive the streaming lifecycle from
// decoded backend events, and seal (or salvage) the assistant reply.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"recipechat/internal/api"
	"recipechat/internal/logging"
	"recipechat/internal/model"
	"recipechat/internal/store"
	"recipechat/internal/telemetry"
)

// MaxQuestionLen is the longest question the backend accepts, in characters.
const MaxQuestionLen = 1000

// =============================================================================
// QUERY CLIENT
// =============================================================================

// QueryClient is the backend surface the orchestrator needs. *api.Client
// satisfies it; tests substitute fakes.
type QueryClient interface {
	Query(ctx context.Context, question string) (*api.QueryResponse, error)
	QueryStream(ctx context.Context, question string, callback api.StreamCallback) error
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is the result of one turn.
type Outcome struct {
	// Message is the sealed assistant message. Valid when Kept is true;
	// on failure it may hold salvaged partial content or a synthesized
	// error message.
	Message model.Message

	// Kept reports whether Message was appended to the conversation.
	Kept bool

	// Err is nil on success. On failure it classifies what went wrong;
	// any partial output has already been preserved.
	Err error

	// Retryable reports whether resubmitting the same question is worth
	// offering. Question carries it for the retry affordance.
	Retryable bool
	Question  string

	// Elapsed is the wall time of the turn.
	Elapsed time.Duration
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// DeltaFunc observes streamed content as it accumulates, for live rendering.
// id is the transient message id; content is the full text so far.
type DeltaFunc func(id, content string)

// Orchestrator runs turns against a backend. One turn at a time: Submit
// while a turn is streaming fails with model.ErrTurnInProgress.
type Orchestrator struct {
	client QueryClient
	store  *store.ConversationStore
	life   *model.Lifecycle
	usage  *telemetry.Usage

	onDelta DeltaFunc
}

// New creates an orchestrator sealing assistant messages into st.
func New(client QueryClient, st *store.ConversationStore) *Orchestrator {
	return &Orchestrator{
		client: client,
		store:  st,
		life:   model.NewLifecycle(st),
		usage:  telemetry.NewUsage(),
	}
}

// SetDeltaFunc installs the live-rendering observer. Call before Submit.
func (o *Orchestrator) SetDeltaFunc(fn DeltaFunc) {
	o.onDelta = fn
}

// Usage returns the session's query usage tracker.
func (o *Orchestrator) Usage() *telemetry.Usage {
	return o.usage
}

// Busy reports whether a turn is currently streaming.
func (o *Orchestrator) Busy() bool {
	return o.life.State() == model.StateStreaming
}

// Snapshot returns the in-progress message, for rendering.
func (o *Orchestrator) Snapshot() (id, content string) {
	return o.life.Snapshot()
}

// Messages returns the sealed conversation history.
func (o *Orchestrator) Messages() []model.Message {
	return o.store.Messages()
}

// Clear discards the conversation history.
func (o *Orchestrator) Clear() {
	o.store.ClearAll()
}

// =============================================================================
// STREAMING TURN
// =============================================================================

// Submit runs one streaming turn. The user message is persisted before any
// network traffic, and the assistant bubble exists (empty) before the first
// byte arrives. On failure, partial content is sealed with a failure flag;
// with no partial content a synthesized error message is appended instead,
// so the user always sees why the turn ended.
func (o *Orchestrator) Submit(ctx context.Context, question string) Outcome {
	question = strings.TrimSpace(question)
	if err := validateQuestion(question); err != nil {
		return Outcome{Err: err, Question: question}
	}

	if _, err := o.life.Begin(); err != nil {
		return Outcome{Err: err, Question: question}
	}

	o.store.Append(model.NewUserMessage(question))

	start := time.Now()
	streamErr := o.client.QueryStream(ctx, question, o.consume)
	elapsed := time.Since(start)

	if streamErr == nil {
		msg, err := o.life.Seal()
		if err != nil {
			// Begin succeeded, so the turn cannot have vanished.
			return Outcome{Err: err, Question: question, Elapsed: elapsed}
		}
		o.usage.Record(msg.Strategy, elapsed, false)
		logging.L().Info().
			Str("strategy", msg.Strategy).
			Dur("elapsed", elapsed).
			Int("bytes", len(msg.Content)).
			Msg("turn complete")
		return Outcome{Message: msg, Kept: true, Question: question, Elapsed: elapsed}
	}

	return o.fail(streamErr, question, elapsed)
}

// consume routes one decoded event into the lifecycle.
func (o *Orchestrator) consume(ev api.StreamEvent) error {
	switch ev.Type {
	case api.EventContent:
		if err := o.life.AppendContent(ev.Content); err != nil {
			return err
		}
		if o.onDelta != nil {
			id, content := o.life.Snapshot()
			o.onDelta(id, content)
		}
		return nil
	case api.EventMetadata:
		return o.life.AbsorbMetadata(ev.Metadata)
	case api.EventDocuments:
		return o.life.AbsorbDocuments(ev.Documents)
	case api.EventError:
		msg := ev.Message
		if msg == "" {
			msg = "the server reported an error"
		}
		return &api.ClientError{Kind: api.KindStream, Message: msg}
	case api.EventDone:
		return nil
	default:
		return nil
	}
}

// fail ends a broken turn: salvage partial content, or append a synthesized
// error message when there is nothing to salvage.
func (o *Orchestrator) fail(cause error, question string, elapsed time.Duration) Outcome {
	reason := cause.Error()
	retryable := api.Classify(cause).Retryable()

	msg, kept, err := o.life.Discard(reason)
	if err != nil {
		return Outcome{Err: cause, Retryable: retryable, Question: question, Elapsed: elapsed}
	}
	if !kept {
		msg = model.NewErrorMessage(friendlyError(cause), reason)
		o.store.Append(msg)
	}

	o.usage.Record(msg.Strategy, elapsed, true)
	logging.L().Warn().
		Err(cause).
		Bool("partial_kept", kept).
		Bool("retryable", retryable).
		Msg("turn failed")
	return Outcome{
		Message:   msg,
		Kept:      true,
		Err:       cause,
		Retryable: retryable,
		Question:  question,
		Elapsed:   elapsed,
	}
}

// Abort cancels the in-progress turn, keeping any partial content. Returns
// false when no turn is streaming.
func (o *Orchestrator) Abort() bool {
	_, _, err := o.life.Discard("aborted by user")
	return err == nil
}

// =============================================================================
// NON-STREAMING TURN
// =============================================================================

// Ask runs one blocking turn and returns the full answer at once. Used by
// the one-shot CLI path where live rendering is not needed.
func (o *Orchestrator) Ask(ctx context.Context, question string) Outcome {
	question = strings.TrimSpace(question)
	if err := validateQuestion(question); err != nil {
		return Outcome{Err: err, Question: question}
	}
	if o.Busy() {
		return Outcome{Err: model.ErrTurnInProgress, Question: question}
	}

	o.store.Append(model.NewUserMessage(question))

	start := time.Now()
	resp, err := o.client.Query(ctx, question)
	elapsed := time.Since(start)

	if err != nil {
		retryable := api.Classify(err).Retryable()
		msg := model.NewErrorMessage(friendlyError(err), err.Error())
		o.store.Append(msg)
		o.usage.Record("", elapsed, true)
		return Outcome{
			Message:   msg,
			Kept:      true,
			Err:       err,
			Retryable: retryable,
			Question:  question,
			Elapsed:   elapsed,
		}
	}

	msg := model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   resp.Answer,
		Timestamp: time.Now(),
		Strategy:  resp.Strategy,
		Documents: resp.Documents,
		Metadata: map[string]any{
			"complexity":             resp.Complexity,
			"relationship_intensity": resp.RelationshipIntensity,
			"processing_time":        resp.ProcessingTime,
		},
	}
	o.store.Append(msg)
	o.usage.Record(resp.Strategy, elapsed, false)
	return Outcome{Message: msg, Kept: true, Question: question, Elapsed: elapsed}
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateQuestion(question string) error {
	if question == "" {
		return &api.ClientError{Kind: api.KindClient, Message: "question is empty"}
	}
	if n := utf8.RuneCountInString(question); n > MaxQuestionLen {
		return &api.ClientError{
			Kind:    api.KindClient,
			Message: fmt.Sprintf("question is %d characters, limit is %d", n, MaxQuestionLen),
		}
	}
	return nil
}

// friendlyError turns a turn failure into the text shown in the chat.
func friendlyError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Answer stopped."
	}
	switch api.Classify(err) {
	case api.KindNetwork:
		return "Could not reach the recipe backend. Is it running?"
	case api.KindTimeout:
		return "The backend took too long to answer. Try again."
	case api.KindRateLimited:
		return "Too many questions at once. Wait a moment and retry."
	case api.KindServer:
		return "The backend hit an internal error. Try again."
	default:
		return fmt.Sprintf("Query failed: %v", err)
	}
}
