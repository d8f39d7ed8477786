// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package chat provides the Bubble Tea chat view.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"recipechat/internal/api"
	"recipechat/internal/config"
	"recipechat/internal/session"
	"recipechat/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State is the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streamed answer
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Prober checks backend readiness. *api.Client satisfies it.
type Prober interface {
	Health(ctx context.Context) (*api.HealthResponse, error)
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state State
	theme *styles.Theme
	cfg   config.UIConfig

	width  int
	height int

	orch   *session.Orchestrator
	bridge *StreamBridge
	prober Prober

	// Cancels the in-flight turn.
	cancelTurn context.CancelFunc

	// In-progress assistant content, rendered above the input.
	streamingID      string
	streamingContent string

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	renderer *glamour.TermRenderer

	backendReady bool
	statusMsg    string

	queryTimeout time.Duration
}

// New creates the chat model. prober may be nil to skip readiness probing.
func New(orch *session.Orchestrator, prober Prober, cfg *config.Config) Model {
	theme := styles.New(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Ask about recipes, ingredients, cooking..."
	input.CharLimit = session.MaxQuestionLen
	input.Prompt = theme.InputPrompt.Render("> ")
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		state:        StateReady,
		theme:        theme,
		cfg:          cfg.UI,
		orch:         orch,
		bridge:       NewStreamBridge(orch),
		prober:       prober,
		input:        input,
		spinner:      sp,
		keyMap:       DefaultKeyMap(),
		queryTimeout: cfg.Backend.QueryTimeout(),
	}
}

// Init starts the spinner, cursor blink, delta pump, and readiness probe.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		m.bridge.WaitDelta(),
	}
	if m.prober != nil {
		cmds = append(cmds, m.probeHealth())
	}
	return tea.Batch(cmds...)
}

// probeHealth checks whether the backend has finished initializing.
func (m Model) probeHealth() tea.Cmd {
	prober := m.prober
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		health, err := prober.Health(ctx)
		return HealthMsg{Health: health, Err: err}
	}
}

// expireStatus clears the transient status line after a pause.
func expireStatus() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusExpiredMsg{}
	})
}
