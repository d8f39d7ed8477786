// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// styles.go - Lip Gloss styles for plain CLI output.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"recipechat/internal/ui/styles"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Tomato).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(styles.Basil).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	routingStyle = lipgloss.NewStyle().
			Foreground(styles.Saffron)

	sourceStyle = lipgloss.NewStyle().
			Foreground(styles.Plum)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Basil)
)
