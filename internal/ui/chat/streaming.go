// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package chat provides the Bubble Tea chat view.
//
// This file bridges the streaming goroutine to the Bubble Tea loop. Deltas
// are pushed into a small channel; since each delta carries the full content
// so far, the channel can drop stale entries under pressure and the render
// still converges on the complete answer.
package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"recipechat/internal/session"
)

// =============================================================================
// STREAM BRIDGE
// =============================================================================

// deltaBuffer caps in-flight deltas. Stale entries are evicted on overflow.
const deltaBuffer = 64

// StreamBridge carries streaming updates from the orchestrator's network
// goroutine into Bubble Tea messages.
type StreamBridge struct {
	deltas chan StreamDeltaMsg
}

// NewStreamBridge creates a bridge and installs its delta observer on the
// orchestrator.
func NewStreamBridge(orch *session.Orchestrator) *StreamBridge {
	b := &StreamBridge{deltas: make(chan StreamDeltaMsg, deltaBuffer)}
	orch.SetDeltaFunc(b.push)
	return b
}

// push enqueues a delta, evicting the oldest entry when the channel is full.
// Called from the streaming goroutine.
func (b *StreamBridge) push(id, content string) {
	msg := StreamDeltaMsg{ID: id, Content: content}
	for {
		select {
		case b.deltas <- msg:
			return
		default:
			select {
			case <-b.deltas:
			default:
			}
		}
	}
}

// WaitDelta returns a command that blocks until the next delta arrives.
// Re-issue it from Update after consuming each StreamDeltaMsg.
func (b *StreamBridge) WaitDelta() tea.Cmd {
	return func() tea.Msg {
		return <-b.deltas
	}
}

// Submit returns a command that runs one streaming turn to completion.
// Bubble Tea runs it on its own goroutine; deltas flow through the bridge
// while it blocks.
func (b *StreamBridge) Submit(ctx context.Context, orch *session.Orchestrator, question string) tea.Cmd {
	return func() tea.Msg {
		return TurnDoneMsg{Outcome: orch.Submit(ctx, question)}
	}
}
