// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// chat.go - interactive plain-terminal chat handler.
//
// Handles `recipechat chat`: a readline REPL for terminals where the full
// TUI is unwanted (ssh sessions, screen readers, minimal environments).
//
// Interactive commands:
//   /help, /h      Show available commands
//   /clear, /c     Clear conversation history
//   /stats, /s     Show session query statistics
//   /history       Show conversation history
//   /quit, /q      Exit chat
//   Ctrl+C         Cancel current answer
//   Ctrl+D         Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"recipechat/internal/config"
	"recipechat/internal/model"
	"recipechat/internal/session"
)

// historyFile is where the REPL input history lives.
const historyFile = "input_history"

// HandleChat runs the interactive chat REPL.
func HandleChat(args Args) int {
	app, err := Setup(args)
	if err != nil {
		printError(err)
		return 1
	}
	defer app.Close()

	if !isStdinTerminal() {
		fmt.Fprintln(errWriter, errorStyle.Render("chat needs an interactive terminal; use `recipechat ask` for piped input"))
		return 1
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := loadHistory(line)
	defer saveHistory(line, histPath)

	printWelcome(app)

	for {
		input, err := line.Prompt(promptStyle.Render("you> "))
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			// io.EOF on Ctrl+D.
			fmt.Fprintln(outWriter)
			return 0
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := runChatCommand(app, input); quit {
				return 0
			}
			continue
		}

		runTurn(app, args, input)
	}
}

// runTurn streams one answer to the terminal. Ctrl+C cancels the turn and
// keeps whatever content already arrived.
func runTurn(app *App, args Args, question string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		select {
		case <-interrupts:
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprint(outWriter, headerStyle.Render("chef> "))
	var printed int
	app.Orch.SetDeltaFunc(func(id, content string) {
		if len(content) > printed {
			fmt.Fprint(outWriter, content[printed:])
			printed = len(content)
		}
	})

	out := app.Orch.Submit(ctx, question)
	fmt.Fprintln(outWriter)

	if out.Err != nil {
		printError(out.Err)
		return
	}
	if !args.Quiet {
		if c, ok := out.Message.Complexity(); ok {
			printRouting(out.Message.Strategy, c, true)
		} else {
			printRouting(out.Message.Strategy, 0, false)
		}
		printSources(out.Message.Documents)
	}
	fmt.Fprintln(outWriter)
}

// runChatCommand handles /commands. Returns true to exit the REPL.
func runChatCommand(app *App, input string) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/q", "/exit":
		printSessionSummary(app.Orch)
		return true

	case "/clear", "/c":
		app.Orch.Clear()
		fmt.Fprintln(outWriter, infoStyle.Render("History cleared."))

	case "/history":
		printConversation(app.Orch.Messages())

	case "/stats", "/s":
		printSessionSummary(app.Orch)

	case "/help", "/h":
		fmt.Fprintln(outWriter, commandStyle.Render("/clear")+"    clear conversation history")
		fmt.Fprintln(outWriter, commandStyle.Render("/history")+"  show conversation history")
		fmt.Fprintln(outWriter, commandStyle.Render("/stats")+"    show session statistics")
		fmt.Fprintln(outWriter, commandStyle.Render("/quit")+"     exit")

	default:
		fmt.Fprintln(outWriter, infoStyle.Render("Unknown command; /help lists commands."))
	}
	return false
}

// printWelcome prints the banner and restored-history note.
func printWelcome(app *App) {
	fmt.Fprintln(outWriter, headerStyle.Render("recipechat")+" "+infoStyle.Render(Version))
	fmt.Fprintln(outWriter, infoStyle.Render("Ask about recipes; /help for commands, Ctrl+D to exit."))
	if n := app.Store.Len(); n > 0 {
		note := fmt.Sprintf("Restored %d messages from the last session.", n)
		state := model.ConversationState{Messages: app.Store.Messages()}
		if preview := state.Preview(); preview != "" {
			note += " Topic: " + preview
		}
		fmt.Fprintln(outWriter, infoStyle.Render(note))
	}
	fmt.Fprintln(outWriter)
}

// printConversation prints the saved message history.
func printConversation(msgs []model.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(outWriter, infoStyle.Render("No saved conversation."))
		return
	}
	for i := range msgs {
		msg := &msgs[i]
		label := promptStyle.Render("you> ")
		if msg.Role == model.RoleAssistant {
			label = headerStyle.Render("chef> ")
		}
		fmt.Fprintf(outWriter, "%s%s  %s\n", label, msg.Content,
			infoStyle.Render(msg.Timestamp.Format("Jan 2 15:04")))
		if reason, failed := msg.Failed(); failed {
			fmt.Fprintln(outWriter, errorStyle.Render("  ⚠ "+reason))
		}
	}
}

// printSessionSummary prints per-strategy usage for this session.
func printSessionSummary(orch *session.Orchestrator) {
	usage := orch.Usage()
	if usage.Queries() == 0 {
		fmt.Fprintln(outWriter, infoStyle.Render("No queries this session."))
		return
	}
	fmt.Fprintln(outWriter, headerStyle.Render("Session:"))
	fmt.Fprintf(outWriter, "  queries: %d  failures: %d\n", usage.Queries(), usage.Failures())
	for _, s := range usage.Strategies() {
		fmt.Fprintf(outWriter, "  %s%s\n", routingStyle.Render(model.StrategyLabel(s.Strategy)),
			infoStyle.Render(fmt.Sprintf("  %d queries, avg %.1fs", s.Queries, s.Average().Seconds())))
	}
}

// loadHistory restores the liner input history.
func loadHistory(line *liner.State) string {
	dir, err := config.Dir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, historyFile)
	if f, err := os.Open(path); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	return path
}

// saveHistory persists the liner input history.
func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if err := config.EnsureDir(); err != nil {
		return
	}
	if f, err := os.Create(path); err == nil {
		line.WriteHistory(f)
		f.Close()
	}
}
