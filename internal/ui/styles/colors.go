// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package styles provides the visual styling system for the recipechat TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Tomato - Primary accent, user messages
var Tomato = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}

// Basil - Assistant messages, success states
var Basil = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Saffron - Routing info, warnings
var Saffron = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Plum - Source citations, secondary accents
var Plum = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors and failed turns
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Status bar and header background
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Text - Primary text
var Text = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextMuted - Timestamps, help text, placeholders
var TextMuted = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6C7086"}

// Border - Bubble and input borders
var Border = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#45475A"}
