// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package chat provides the Bubble Tea chat view.
//
// This file contains the rendering logic: header, conversation viewport,
// input area, and status bar.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"recipechat/internal/model"
	"recipechat/internal/session"
	"recipechat/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete chat view.
// Layout: header (1 line) + messages (viewport) + input (3 lines) + status (1 line).
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// renderHeader renders the title bar with backend readiness.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("recipechat")

	ready := "connecting..."
	if m.backendReady {
		ready = "ready"
	}
	info := m.theme.HeaderInfo.Render(ready)

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(info) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(title + strings.Repeat(" ", gap) + info)
}

// =============================================================================
// CONVERSATION
// =============================================================================

// renderConversation renders the sealed history plus the in-progress answer.
// pendingQuestion covers the window between submit and the first render of
// the persisted user message.
func (m Model) renderConversation(pendingQuestion string) string {
	msgs := m.orch.Messages()

	var b strings.Builder
	for i := range msgs {
		b.WriteString(m.renderMessage(&msgs[i]))
		b.WriteString("\n\n")
	}

	if pendingQuestion != "" && (len(msgs) == 0 || msgs[len(msgs)-1].Content != pendingQuestion) {
		user := model.NewUserMessage(pendingQuestion)
		b.WriteString(m.renderMessage(&user))
		b.WriteString("\n\n")
	}

	if m.state == StateStreaming {
		b.WriteString(m.renderStreaming())
	}

	if b.Len() == 0 {
		return m.theme.ThinkingText.Render("Ask anything about the recipe collection.")
	}
	return b.String()
}

// renderMessage renders one sealed message with its annotations.
func (m Model) renderMessage(msg *model.Message) string {
	ts := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	if reason, failed := msg.Failed(); failed && msg.Role == model.RoleAssistant {
		label := m.theme.AssistantLabel.Render(msg.Role.DisplayName()) + " " + ts
		body := msg.Content
		if body != "" {
			body += "\n"
		}
		body += m.theme.ErrorBubble.Render("⚠ " + reason)
		return label + "\n" + m.theme.AssistantBubble.Render(body)
	}

	switch msg.Role {
	case model.RoleUser:
		label := m.theme.UserLabel.Render(msg.Role.DisplayName()) + " " + ts
		return label + "\n" + m.theme.UserBubble.Render(msg.Content)
	default:
		label := m.theme.AssistantLabel.Render(msg.Role.DisplayName()) + " " + ts
		body := m.renderMarkdown(msg.Content)

		var extras []string
		if m.cfg.ShowRouting && msg.Strategy != "" {
			routing := "via " + model.StrategyLabel(msg.Strategy)
			if c, ok := msg.Complexity(); ok {
				routing += fmt.Sprintf(" (complexity %.1f)", c)
			}
			extras = append(extras, m.theme.Routing.Render(routing))
		}
		if m.cfg.ShowSources && len(msg.Documents) > 0 {
			for _, doc := range msg.Documents {
				line := fmt.Sprintf("• %s (%.0f%%)", doc.RecipeName, doc.RelevanceScore*100)
				extras = append(extras, m.theme.Source.Render(line))
			}
		}
		if len(extras) > 0 {
			body += "\n" + strings.Join(extras, "\n")
		}
		return label + "\n" + m.theme.AssistantBubble.Render(body)
	}
}

// renderStreaming renders the in-progress assistant bubble.
func (m Model) renderStreaming() string {
	label := m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName())
	if m.streamingContent == "" {
		return label + "\n" + m.theme.AssistantBubble.Render(
			m.spinner.View()+m.theme.ThinkingText.Render(" thinking..."))
	}
	return label + "\n" + m.theme.AssistantBubble.Render(m.streamingContent)
}

// renderMarkdown renders assistant content, falling back to plain text when
// markdown rendering is off or unavailable.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

// renderInput renders the input box with a character count.
func (m Model) renderInput() string {
	count := fmt.Sprintf("%d/%d", len([]rune(m.input.Value())), session.MaxQuestionLen)
	countStyle := m.theme.CharCount
	if len([]rune(m.input.Value())) > session.MaxQuestionLen-50 {
		countStyle = m.theme.CharCountDanger
	}

	line := m.input.View() + " " + countStyle.Render(count)
	return m.theme.InputContainer.Width(m.width - 2).Render(line)
}

// renderStatusBar renders shortcuts or the transient status message.
func (m Model) renderStatusBar() string {
	if m.statusMsg != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.statusMsg)
	}

	shortcuts := []struct{ key, desc string }{
		{"Enter", "ask"},
		{"Esc", "cancel"},
		{"C-l", "clear"},
		{"C-c", "quit"},
	}
	parts := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		parts = append(parts,
			m.theme.ShortcutKey.Render(s.key)+" "+m.theme.ShortcutDesc.Render(s.desc))
	}
	return m.theme.StatusBar.Width(m.width).Render(
		util.TruncateWidth(strings.Join(parts, "  "), m.width-2))
}
