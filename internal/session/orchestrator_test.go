// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"recipechat/internal/api"
	"recipechat/internal/logging"
	"recipechat/internal/model"
	"recipechat/internal/store"
)

func TestMain(m *testing.M) {
	logging.Disable()
	os.Exit(m.Run())
}

// fakeClient replays a scripted event sequence, or fails.
type fakeClient struct {
	events  []api.StreamEvent
	err     error // returned after delivering events
	failAt  int   // deliver this many events, then return err (0 = all)
	calls   int
	answer  *api.QueryResponse
	askErr  error
	pending chan struct{} // when set, QueryStream blocks until closed
}

func (f *fakeClient) Query(ctx context.Context, question string) (*api.QueryResponse, error) {
	f.calls++
	if f.askErr != nil {
		return nil, f.askErr
	}
	return f.answer, nil
}

func (f *fakeClient) QueryStream(ctx context.Context, question string, callback api.StreamCallback) error {
	f.calls++
	if f.pending != nil {
		<-f.pending
	}
	for i, ev := range f.events {
		if f.failAt > 0 && i == f.failAt {
			return f.err
		}
		if err := callback(ev); err != nil {
			return err
		}
	}
	return f.err
}

func newOrchestrator(client QueryClient) (*Orchestrator, *store.ConversationStore) {
	st := store.NewConversationStore(store.NewMemoryBackend())
	return New(client, st), st
}

func content(text string) api.StreamEvent {
	return api.StreamEvent{Type: api.EventContent, Content: text}
}

// waitBusy blocks until the orchestrator has started streaming.
func waitBusy(t *testing.T, o *Orchestrator) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !o.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("turn never started streaming")
		}
		time.Sleep(time.Millisecond)
	}
}

// =============================================================================
// STREAMING TURNS
// =============================================================================

func TestSubmit_SealsStreamedAnswer(t *testing.T) {
	client := &fakeClient{events: []api.StreamEvent{
		{Type: api.EventMetadata, Metadata: map[string]any{
			"strategy":   "hybrid_traditional",
			"complexity": 0.4,
		}},
		content("可以做"),
		content("番茄炒蛋。"),
		{Type: api.EventDocuments, Documents: []api.Document{
			{RecipeName: "番茄炒蛋", RelevanceScore: 0.92},
		}},
		{Type: api.EventDone},
	}}
	o, st := newOrchestrator(client)

	out := o.Submit(context.Background(), "番茄和鸡蛋可以做什么菜？")
	if out.Err != nil {
		t.Fatalf("Submit failed: %v", out.Err)
	}
	if !out.Kept {
		t.Fatal("answer not kept")
	}
	if out.Message.Content != "可以做番茄炒蛋。" {
		t.Errorf("content = %q", out.Message.Content)
	}
	if out.Message.Strategy != "hybrid_traditional" {
		t.Errorf("strategy = %q", out.Message.Strategy)
	}
	if _, ok := out.Message.Metadata["strategy"]; ok {
		t.Error("strategy left in metadata map after promotion")
	}
	if len(out.Message.Documents) != 1 {
		t.Errorf("documents = %d", len(out.Message.Documents))
	}

	msgs := st.Messages()
	if len(msgs) != 2 {
		t.Fatalf("conversation has %d messages, want user + assistant", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[1].Role != model.RoleAssistant {
		t.Errorf("roles = %v, %v", msgs[0].Role, msgs[1].Role)
	}
}

func TestSubmit_DeltasObservedInOrder(t *testing.T) {
	client := &fakeClient{events: []api.StreamEvent{
		content("a"), content("b"), content("c"), {Type: api.EventDone},
	}}
	o, _ := newOrchestrator(client)

	var seen []string
	o.SetDeltaFunc(func(id, text string) {
		seen = append(seen, text)
	})

	o.Submit(context.Background(), "hi")
	if strings.Join(seen, "|") != "a|ab|abc" {
		t.Errorf("deltas = %v", seen)
	}
}

func TestSubmit_ErrorRecordEndsTurn(t *testing.T) {
	client := &fakeClient{events: []api.StreamEvent{
		content("partial "),
		{Type: api.EventError, Message: "LLM unavailable"},
		content("never delivered"),
	}}
	o, st := newOrchestrator(client)

	out := o.Submit(context.Background(), "hi")
	if out.Err == nil {
		t.Fatal("expected turn failure")
	}
	if api.Classify(out.Err) != api.KindStream {
		t.Errorf("kind = %v", api.Classify(out.Err))
	}

	// Partial content survives, flagged with the failure.
	if !out.Kept || out.Message.Content != "partial " {
		t.Fatalf("partial not kept: kept=%v content=%q", out.Kept, out.Message.Content)
	}
	if reason, failed := out.Message.Failed(); !failed || !strings.Contains(reason, "LLM unavailable") {
		t.Errorf("failure flag = %q, %v", reason, failed)
	}
	if got := st.Messages()[1].Content; got != "partial " {
		t.Errorf("persisted content = %q", got)
	}
}

func TestSubmit_EmptyErrorMessageGetsFallbackText(t *testing.T) {
	client := &fakeClient{events: []api.StreamEvent{
		{Type: api.EventError},
	}}
	o, st := newOrchestrator(client)

	out := o.Submit(context.Background(), "hi")
	if out.Err == nil {
		t.Fatal("expected turn failure")
	}
	if !strings.Contains(out.Err.Error(), "the server reported an error") {
		t.Errorf("err = %v", out.Err)
	}
	// No partial content, so a synthesized error message is appended.
	msgs := st.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if _, failed := msgs[1].Failed(); !failed {
		t.Error("synthesized message not flagged as failed")
	}
}

func TestSubmit_ConnectionFailureNoPartial(t *testing.T) {
	client := &fakeClient{err: &api.ClientError{Kind: api.KindNetwork, Message: "connection refused"}}
	o, st := newOrchestrator(client)

	out := o.Submit(context.Background(), "hi")
	if out.Err == nil {
		t.Fatal("expected failure")
	}
	if !out.Retryable {
		t.Error("network failure should be retryable")
	}
	if out.Question != "hi" {
		t.Errorf("retry question = %q", out.Question)
	}
	if !strings.Contains(st.Messages()[1].Content, "Could not reach") {
		t.Errorf("error message = %q", st.Messages()[1].Content)
	}
}

func TestSubmit_CancelMidStreamKeepsPartialNotRetryable(t *testing.T) {
	client := &fakeClient{
		events: []api.StreamEvent{content("partial ")},
		err:    context.Canceled,
	}
	o, st := newOrchestrator(client)

	out := o.Submit(context.Background(), "hi")
	if out.Err == nil {
		t.Fatal("expected turn failure")
	}
	if out.Retryable {
		t.Error("user cancel must not offer a retry")
	}
	if !out.Kept || out.Message.Content != "partial " {
		t.Fatalf("partial not kept: kept=%v content=%q", out.Kept, out.Message.Content)
	}
	if got := st.Messages()[1].Content; got != "partial " {
		t.Errorf("persisted content = %q", got)
	}
}

func TestSubmit_CancelBeforeContentGetsCalmText(t *testing.T) {
	client := &fakeClient{err: context.Canceled}
	o, st := newOrchestrator(client)

	out := o.Submit(context.Background(), "hi")
	if out.Retryable {
		t.Error("user cancel must not offer a retry")
	}
	if got := st.Messages()[1].Content; got != "Answer stopped." {
		t.Errorf("error message = %q", got)
	}
	if !strings.Contains(out.Message.Content, "Answer stopped.") {
		t.Errorf("outcome message = %q", out.Message.Content)
	}
}

func TestSubmit_ClientErrorNotRetryable(t *testing.T) {
	client := &fakeClient{err: &api.ClientError{Kind: api.KindClient, Status: 422, Message: "validation error"}}
	o, _ := newOrchestrator(client)

	out := o.Submit(context.Background(), "hi")
	if out.Retryable {
		t.Error("4xx should not be retryable")
	}
}

func TestSubmit_RejectedWhileStreaming(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{pending: gate, events: []api.StreamEvent{{Type: api.EventDone}}}
	o, _ := newOrchestrator(client)

	done := make(chan Outcome, 1)
	go func() { done <- o.Submit(context.Background(), "first") }()

	waitBusy(t, o)

	out := o.Submit(context.Background(), "second")
	if !errors.Is(out.Err, model.ErrTurnInProgress) {
		t.Errorf("err = %v, want ErrTurnInProgress", out.Err)
	}

	close(gate)
	if first := <-done; first.Err != nil {
		t.Errorf("first turn failed: %v", first.Err)
	}
}

func TestSubmit_ValidatesQuestion(t *testing.T) {
	client := &fakeClient{}
	o, st := newOrchestrator(client)

	if out := o.Submit(context.Background(), "   "); out.Err == nil {
		t.Error("blank question accepted")
	}
	if out := o.Submit(context.Background(), strings.Repeat("菜", MaxQuestionLen+1)); out.Err == nil {
		t.Error("overlong question accepted")
	}
	if client.calls != 0 {
		t.Errorf("backend called %d times for invalid questions", client.calls)
	}
	if st.Len() != 0 {
		t.Errorf("invalid questions persisted: %d messages", st.Len())
	}

	// Exactly at the limit is fine.
	client.events = []api.StreamEvent{content("ok"), {Type: api.EventDone}}
	if out := o.Submit(context.Background(), strings.Repeat("菜", MaxQuestionLen)); out.Err != nil {
		t.Errorf("limit-length question rejected: %v", out.Err)
	}
}

func TestSubmit_UsageRecorded(t *testing.T) {
	client := &fakeClient{events: []api.StreamEvent{
		{Type: api.EventMetadata, Metadata: map[string]any{"strategy": "graph_rag"}},
		content("x"),
		{Type: api.EventDone},
	}}
	o, _ := newOrchestrator(client)

	o.Submit(context.Background(), "hi")
	strategies := o.Usage().Strategies()
	if len(strategies) != 1 || strategies[0].Strategy != "graph_rag" {
		t.Errorf("usage = %+v", strategies)
	}
}

func TestAbort_NoTurn(t *testing.T) {
	o, _ := newOrchestrator(&fakeClient{})
	if o.Abort() {
		t.Error("Abort succeeded with no turn streaming")
	}
}

func TestAbort_EndsStreamingTurn(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{pending: gate, err: errors.New("stream torn down")}
	o, _ := newOrchestrator(client)

	done := make(chan Outcome, 1)
	go func() { done <- o.Submit(context.Background(), "hi") }()
	waitBusy(t, o)

	if !o.Abort() {
		t.Error("Abort failed during streaming turn")
	}
	if o.Busy() {
		t.Error("still streaming after Abort")
	}
	close(gate)
	<-done
}

// =============================================================================
// NON-STREAMING TURNS
// =============================================================================

func TestAsk_AppendsFullAnswer(t *testing.T) {
	client := &fakeClient{answer: &api.QueryResponse{
		Answer:         "可以做番茄炒蛋。",
		Strategy:       "vector_search",
		Complexity:     0.2,
		ProcessingTime: 1.5,
		Documents:      []api.Document{{RecipeName: "番茄炒蛋"}},
	}}
	o, st := newOrchestrator(client)

	out := o.Ask(context.Background(), "番茄和鸡蛋可以做什么菜？")
	if out.Err != nil {
		t.Fatalf("Ask failed: %v", out.Err)
	}
	if out.Message.Content != "可以做番茄炒蛋。" || out.Message.Strategy != "vector_search" {
		t.Errorf("message = %+v", out.Message)
	}
	if st.Len() != 2 {
		t.Errorf("messages = %d", st.Len())
	}
}

func TestAsk_FailureAppendsErrorMessage(t *testing.T) {
	client := &fakeClient{askErr: &api.ClientError{Kind: api.KindTimeout, Message: "deadline exceeded"}}
	o, st := newOrchestrator(client)

	out := o.Ask(context.Background(), "hi")
	if out.Err == nil || !out.Retryable {
		t.Fatalf("out = %+v", out)
	}
	if _, failed := st.Messages()[1].Failed(); !failed {
		t.Error("error message not flagged")
	}
}
