// recipechat - a terminal client for a recipe RAG backend.
//
// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"recipechat/internal/cli"
	"recipechat/internal/config"
	"recipechat/internal/logging"
	"recipechat/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		os.Exit(runTUI(args))
	case cli.CmdAsk:
		os.Exit(cli.HandleAsk(args))
	case cli.CmdChat:
		os.Exit(cli.HandleChat(args))
	case cli.CmdStats:
		os.Exit(cli.HandleStats(args))
	case cli.CmdHealth:
		os.Exit(cli.HandleHealth(args))
	case cli.CmdHistory:
		os.Exit(cli.HandleHistory(args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		cli.PrintUsage()
		os.Exit(1)
	}
}

// runTUI starts the full-screen chat interface.
func runTUI(args cli.Args) int {
	app, err := cli.Setup(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer app.Close()

	// The watcher keeps logging honest about bad on-disk edits while the
	// TUI runs; edits apply on the next start.
	if path, err := config.Path(); err == nil {
		if watcher, err := config.NewWatcher(path, func(*config.Config) {}); err == nil {
			if watcher.Watch() == nil {
				defer watcher.Close()
			}
		}
	}

	model := chat.New(app.Orch, app.Client, app.Config)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logging.L().Info().Msg("session ended")
	return 0
}
