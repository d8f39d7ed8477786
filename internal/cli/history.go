// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// history.go - saved conversation command handler.
package cli

import (
	"fmt"

	"recipechat/internal/model"
)

// HandleHistory shows, exports, or clears the persisted conversation.
func HandleHistory(args Args) int {
	app, err := Setup(args)
	if err != nil {
		printError(err)
		return 1
	}
	defer app.Close()

	switch args.Subcommand {
	case "clear":
		n := app.Store.Len()
		app.Store.ClearAll()
		fmt.Fprintln(outWriter, infoStyle.Render(fmt.Sprintf("Cleared %d messages.", n)))
		return 0

	case "export":
		state := model.ConversationState{Messages: app.Store.Messages()}
		if args.JSON {
			data, err := state.ExportJSON()
			if err != nil {
				printError(err)
				return 1
			}
			fmt.Fprintln(outWriter, string(data))
			return 0
		}
		fmt.Fprint(outWriter, state.ExportMarkdown())
		return 0

	case "", "show":
		printConversation(app.Store.Messages())
		return 0

	default:
		fmt.Fprintln(errWriter, errorStyle.Render("Usage: recipechat history [show|export|clear]"))
		return 1
	}
}
