// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package chat

import (
	"context"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"recipechat/internal/api"
	"recipechat/internal/config"
	"recipechat/internal/session"
	"recipechat/internal/store"
)

// scriptedClient streams a fixed answer.
type scriptedClient struct {
	events []api.StreamEvent
}

func (c *scriptedClient) Query(ctx context.Context, question string) (*api.QueryResponse, error) {
	return &api.QueryResponse{Answer: "ok"}, nil
}

func (c *scriptedClient) QueryStream(ctx context.Context, question string, callback api.StreamCallback) error {
	for _, ev := range c.events {
		if err := callback(ev); err != nil {
			return err
		}
	}
	return nil
}

func newTestOrchestrator(events []api.StreamEvent) *session.Orchestrator {
	st := store.NewConversationStore(store.NewMemoryBackend())
	return session.New(&scriptedClient{events: events}, st)
}

// =============================================================================
// STREAM BRIDGE
// =============================================================================

func TestBridge_DeliversDeltas(t *testing.T) {
	orch := newTestOrchestrator(nil)
	bridge := NewStreamBridge(orch)

	bridge.push("id1", "hello")

	msg := bridge.WaitDelta()()
	delta, ok := msg.(StreamDeltaMsg)
	if !ok {
		t.Fatalf("msg = %T", msg)
	}
	if delta.ID != "id1" || delta.Content != "hello" {
		t.Errorf("delta = %+v", delta)
	}
}

func TestBridge_OverflowKeepsNewest(t *testing.T) {
	orch := newTestOrchestrator(nil)
	bridge := NewStreamBridge(orch)

	// Push well past the buffer; each delta carries the full content so
	// far, so only the last one matters.
	for i := 0; i < deltaBuffer*3; i++ {
		bridge.push("id", fmt.Sprintf("content-%d", i))
	}

	var last StreamDeltaMsg
	for i := 0; i < deltaBuffer; i++ {
		last = bridge.WaitDelta()().(StreamDeltaMsg)
	}
	if last.Content != fmt.Sprintf("content-%d", deltaBuffer*3-1) {
		t.Errorf("newest delta lost: %q", last.Content)
	}
}

func TestBridge_SubmitProducesTurnDone(t *testing.T) {
	orch := newTestOrchestrator([]api.StreamEvent{
		{Type: api.EventContent, Content: "番茄炒蛋"},
		{Type: api.EventDone},
	})
	bridge := NewStreamBridge(orch)

	msg := bridge.Submit(context.Background(), orch, "番茄怎么做？")()
	done, ok := msg.(TurnDoneMsg)
	if !ok {
		t.Fatalf("msg = %T", msg)
	}
	if done.Outcome.Err != nil {
		t.Fatalf("turn failed: %v", done.Outcome.Err)
	}
	if done.Outcome.Message.Content != "番茄炒蛋" {
		t.Errorf("content = %q", done.Outcome.Message.Content)
	}
}

// =============================================================================
// MODEL
// =============================================================================

func newTestModel(events []api.StreamEvent) Model {
	return New(newTestOrchestrator(events), nil, config.Default())
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := newTestModel(nil)
	if m.View() != "Loading..." {
		t.Errorf("pre-resize view = %q", m.View())
	}
}

func TestModel_ResizeThenView(t *testing.T) {
	m := newTestModel(nil)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)

	view := m.View()
	if view == "" || view == "Loading..." {
		t.Errorf("view = %q", view)
	}
}

func TestModel_TurnDoneReturnsToReady(t *testing.T) {
	m := newTestModel(nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)
	m.state = StateStreaming

	updated, _ = m.Update(TurnDoneMsg{Outcome: session.Outcome{}})
	m = updated.(Model)
	if m.state != StateReady {
		t.Errorf("state = %v after turn done", m.state)
	}
}

func TestModel_RetryableFailureRestoresQuestion(t *testing.T) {
	m := newTestModel(nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = updated.(Model)
	m.state = StateStreaming

	updated, _ = m.Update(TurnDoneMsg{Outcome: session.Outcome{
		Err:       &api.ClientError{Kind: api.KindNetwork, Message: "refused"},
		Retryable: true,
		Question:  "番茄怎么做？",
	}})
	m = updated.(Model)
	if m.input.Value() != "番茄怎么做？" {
		t.Errorf("input = %q, want question restored for retry", m.input.Value())
	}
}
