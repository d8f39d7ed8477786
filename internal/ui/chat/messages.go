// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package chat provides the Bubble Tea chat view.
//
// This file defines the Bubble Tea message types used by the chat interface.
package chat

import (
	"recipechat/internal/api"
	"recipechat/internal/session"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamDeltaMsg delivers the accumulated content of the in-progress
// assistant message. Content is the full text so far, not an increment, so
// dropped intermediate deltas lose nothing.
type StreamDeltaMsg struct {
	ID      string
	Content string
}

// TurnDoneMsg signals that a turn finished, successfully or not.
type TurnDoneMsg struct {
	Outcome session.Outcome
}

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// HealthMsg reports the backend readiness probe result.
type HealthMsg struct {
	Health *api.HealthResponse
	Err    error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// statusExpiredMsg clears a transient status line.
type statusExpiredMsg struct{}
