// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// terminal.go - terminal capability detection.
package cli

import (
	"os"

	"golang.org/x/term"
)

// isStdinTerminal reports whether stdin is an interactive terminal.
func isStdinTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// isStdoutTerminal reports whether stdout is a terminal. Piped output gets
// plain text regardless of flags.
func isStdoutTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
