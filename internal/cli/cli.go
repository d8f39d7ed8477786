// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// cli.go - CLI parsing and command dispatch for recipechat.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdStats
	CmdHealth
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Plain   bool // Disable markdown rendering and colors
	JSON    bool // Output in JSON format

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `recipechat - terminal client for the recipe RAG backend

Ask questions about a recipe knowledge base from your terminal. Answers
stream in live, cite their source recipes, and show which retrieval
strategy the backend chose.

Usage:
  recipechat                  Start the chat TUI (default)
  recipechat ask "question"   Ask a single question and exit
  recipechat chat             Interactive chat in plain terminal mode
  recipechat stats            Show knowledge base and routing statistics
  recipechat health           Check backend readiness
  recipechat history [show|export|clear]
                              Show, export, or clear the saved conversation
  recipechat config [show|set key value]  Configuration
  recipechat version          Show version
  recipechat help             Show this help

Global flags:
  --plain          Plain text output (no markdown, no colors)
  --json           JSON output where supported (stats, health)
  -q, --quiet      Minimal output
  -v, --verbose    Verbose output

Examples:
  recipechat ask "What can I cook with tomatoes and eggs?"
  recipechat ask --plain "红烧肉怎么做？" > answer.txt
  recipechat stats --json
  recipechat config set backend.url http://10.0.0.5:8000

Environment:
  RECIPECHAT_BACKEND_URL     Override the backend URL
  RECIPECHAT_STORAGE         Conversation storage: file, sqlite, memory
  RECIPECHAT_DEBUG           Enable debug logging (1/true)
  RECIPECHAT_THEME           UI theme: dark, light, auto

Configuration file: ~/.recipechat/config.toml
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	args := os.Args[1:]
	remaining, parsed := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parsed.Query = strings.Join(remaining, " ")
		return CmdAsk, parsed

	case "chat":
		return CmdChat, parsed

	case "stats", "status":
		return CmdStats, parsed

	case "health", "ping":
		return CmdHealth, parsed

	case "history":
		if len(remaining) > 0 {
			parsed.Subcommand = strings.ToLower(remaining[0])
		}
		return CmdHistory, parsed

	case "config":
		parseConfigArgs(&parsed, remaining)
		return CmdConfig, parsed

	case "version", "--version", "-V":
		return CmdVersion, parsed

	case "help", "--help", "-h":
		return CmdHelp, parsed

	default:
		// Bare words are treated as a question, so
		// `recipechat what goes with basil` just works.
		parsed.Query = strings.TrimSpace(cmd + " " + strings.Join(remaining, " "))
		return CmdAsk, parsed
	}
}

// parseGlobalFlags extracts global flags, returning the rest.
func parseGlobalFlags(args []string) ([]string, Args) {
	var parsed Args
	var remaining []string

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--plain":
			parsed.Plain = true
		case "--json":
			parsed.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

// parseConfigArgs parses `config [show|set key value|path]`.
func parseConfigArgs(parsed *Args, remaining []string) {
	if len(remaining) == 0 {
		parsed.Subcommand = "show"
		return
	}
	parsed.Subcommand = strings.ToLower(remaining[0])
	if parsed.Subcommand == "set" && len(remaining) >= 3 {
		parsed.ConfigKey = remaining[1]
		parsed.ConfigVal = remaining[2]
	}
}

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("recipechat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
