// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"recipechat/internal/logging"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamDeltaMsg:
		if m.state == StateStreaming {
			m.streamingID = msg.ID
			m.streamingContent = msg.Content
			m.refreshViewport(true)
		}
		return m, m.bridge.WaitDelta()

	case TurnDoneMsg:
		return m.handleTurnDone(msg)

	case HealthMsg:
		if msg.Err != nil {
			m.backendReady = false
			m.statusMsg = "backend unreachable"
			return m, expireStatus()
		}
		m.backendReady = msg.Health.SystemReady
		if !m.backendReady {
			m.statusMsg = msg.Health.Message
			return m, expireStatus()
		}
		return m, nil

	case statusExpiredMsg:
		m.statusMsg = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateComponents(msg)
}

// handleKey routes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.state == StateStreaming && m.cancelTurn != nil {
			m.cancelTurn()
			m.statusMsg = "cancelling..."
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Clear):
		if m.state == StateReady {
			m.orch.Clear()
			m.refreshViewport(false)
			m.statusMsg = "history cleared"
			return m, expireStatus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	return m.updateComponents(msg)
}

// handleSubmit starts a streaming turn for the typed question.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.state != StateReady {
		return m, nil
	}
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return m, nil
	}

	m.input.Reset()
	m.state = StateStreaming
	m.streamingID = ""
	m.streamingContent = ""

	ctx, cancel := context.WithTimeout(context.Background(), m.queryTimeout)
	m.cancelTurn = cancel

	m.refreshViewportWith(question)
	return m, m.bridge.Submit(ctx, m.orch, question)
}

// handleTurnDone finalizes the turn and surfaces failures.
func (m Model) handleTurnDone(msg TurnDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancelTurn != nil {
		m.cancelTurn()
		m.cancelTurn = nil
	}
	m.state = StateReady
	m.streamingID = ""
	m.streamingContent = ""
	m.refreshViewport(true)

	out := msg.Outcome
	if out.Err != nil {
		logging.L().Debug().Err(out.Err).Msg("turn ended with error")
		if out.Retryable {
			m.statusMsg = "query failed, press Enter to retry"
			m.input.SetValue(out.Question)
		}
		return m, expireStatus()
	}
	return m, nil
}

// handleResize recalculates layout and rebuilds the markdown renderer for
// the new wrap width.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := 1
	inputHeight := 3
	statusHeight := 1
	viewportHeight := m.height - headerHeight - inputHeight - statusHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.width, viewportHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = m.width - 8

	if m.cfg.Markdown {
		wrap := m.width - 4
		if wrap < 20 {
			wrap = 20
		}
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			m.renderer = renderer
		}
	}

	m.refreshViewport(false)
	return m, nil
}

// updateComponents forwards messages to the focused components.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// refreshViewport re-renders the conversation. followTail pins the view to
// the newest content.
func (m *Model) refreshViewport(followTail bool) {
	m.viewport.SetContent(m.renderConversation(""))
	if followTail {
		m.viewport.GotoBottom()
	}
}

// refreshViewportWith renders with a just-submitted question that the store
// may not have persisted yet when the render happens.
func (m *Model) refreshViewportWith(pendingQuestion string) {
	m.viewport.SetContent(m.renderConversation(pendingQuestion))
	m.viewport.GotoBottom()
}
