// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package cli

import (
	"os"
	"testing"

	"recipechat/internal/config"
)

func parseArgs(t *testing.T, argv ...string) (Command, Args) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"recipechat"}, argv...)
	defer func() { os.Args = old }()
	return Parse()
}

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want Command
	}{
		{"no args is TUI", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"stats", []string{"stats"}, CmdStats},
		{"status alias", []string{"status"}, CmdStats},
		{"health", []string{"health"}, CmdHealth},
		{"history", []string{"history"}, CmdHistory},
		{"config", []string{"config"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := parseArgs(t, tt.argv...)
			if cmd != tt.want {
				t.Errorf("Parse(%v) = %v, want %v", tt.argv, cmd, tt.want)
			}
		})
	}
}

func TestParse_AskJoinsQuery(t *testing.T) {
	cmd, args := parseArgs(t, "ask", "what", "goes", "with", "basil")
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Query != "what goes with basil" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParse_BareWordsAreAQuestion(t *testing.T) {
	cmd, args := parseArgs(t, "番茄炒蛋怎么做？")
	if cmd != CmdAsk {
		t.Fatalf("cmd = %v", cmd)
	}
	if args.Query != "番茄炒蛋怎么做？" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	cmd, args := parseArgs(t, "--plain", "-q", "stats", "--json")
	if cmd != CmdStats {
		t.Fatalf("cmd = %v", cmd)
	}
	if !args.Plain || !args.Quiet || !args.JSON {
		t.Errorf("flags = %+v", args)
	}
}

func TestParse_ConfigSet(t *testing.T) {
	cmd, args := parseArgs(t, "config", "set", "backend.url", "http://host:8000")
	if cmd != CmdConfig || args.Subcommand != "set" {
		t.Fatalf("cmd = %v, sub = %q", cmd, args.Subcommand)
	}
	if args.ConfigKey != "backend.url" || args.ConfigVal != "http://host:8000" {
		t.Errorf("key/val = %q/%q", args.ConfigKey, args.ConfigVal)
	}
}

func TestParse_HistorySubcommand(t *testing.T) {
	_, args := parseArgs(t, "history", "clear")
	if args.Subcommand != "clear" {
		t.Errorf("subcommand = %q", args.Subcommand)
	}
}

func TestApplySet(t *testing.T) {
	cfg := config.Default()

	if err := applySet(cfg, "backend.url", "http://other:9000"); err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.URL != "http://other:9000" {
		t.Errorf("url = %q", cfg.Backend.URL)
	}

	if err := applySet(cfg, "ui.markdown", "false"); err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Markdown {
		t.Error("markdown still enabled")
	}

	if err := applySet(cfg, "backend.timeout_secs", "abc"); err == nil {
		t.Error("non-integer accepted")
	}
	if err := applySet(cfg, "nope.nope", "x"); err == nil {
		t.Error("unknown key accepted")
	}
}
