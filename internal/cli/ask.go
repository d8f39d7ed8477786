// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// ask.go - single question command handler.
//
// Handles `recipechat ask "question"`: streams the answer to stdout as it
// arrives, then prints routing and source annotations. Piped output stays
// plain text.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
)

// HandleAsk runs one question to completion and exits.
func HandleAsk(args Args) int {
	question := strings.TrimSpace(args.Query)
	if question == "" {
		fmt.Fprintln(errWriter, errorStyle.Render("Usage: recipechat ask \"question\""))
		return 1
	}

	app, err := Setup(args)
	if err != nil {
		printError(err)
		return 1
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupts)
	go func() {
		<-interrupts
		cancel()
	}()

	pretty := isStdoutTerminal() && !args.Plain && app.Config.UI.Markdown

	// Stream raw deltas as they arrive. Each delta carries the full
	// content so far; print only the new suffix.
	var printed int
	app.Orch.SetDeltaFunc(func(id, content string) {
		if pretty {
			// Markdown renders after the full answer lands.
			return
		}
		if len(content) > printed {
			fmt.Fprint(outWriter, content[printed:])
			printed = len(content)
		}
	})

	out := app.Orch.Submit(ctx, question)
	if out.Err != nil {
		if printed > 0 {
			fmt.Fprintln(outWriter)
		}
		printError(out.Err)
		if out.Retryable && !args.Quiet {
			fmt.Fprintln(errWriter, infoStyle.Render("The question was kept; run the same command to retry."))
		}
		return 1
	}

	if pretty {
		fmt.Fprint(outWriter, renderMarkdown(out.Message.Content))
	} else if printed == 0 {
		fmt.Fprint(outWriter, out.Message.Content)
	}
	fmt.Fprintln(outWriter)

	if !args.Quiet && pretty {
		if c, ok := out.Message.Complexity(); ok {
			printRouting(out.Message.Strategy, c, true)
		} else {
			printRouting(out.Message.Strategy, 0, false)
		}
		printSources(out.Message.Documents)
		fmt.Fprintln(outWriter, infoStyle.Render(fmt.Sprintf("(%.1fs)", out.Elapsed.Seconds())))
	}
	return 0
}

// renderMarkdown renders content for terminal display, falling back to the
// raw text when rendering fails.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
