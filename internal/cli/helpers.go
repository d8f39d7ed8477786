// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// helpers.go - shared output helpers for command handlers.
package cli

import (
	"fmt"
	"io"
	"os"

	"recipechat/internal/api"
	"recipechat/internal/model"
)

// Output writers, swappable in tests.
var (
	outWriter io.Writer = os.Stdout
	errWriter io.Writer = os.Stderr
)

// printError prints a classified error with a hint where one helps.
func printError(err error) {
	fmt.Fprintln(errWriter, errorStyle.Render("Error: ")+err.Error())

	switch api.Classify(err) {
	case api.KindNetwork:
		fmt.Fprintln(errWriter, infoStyle.Render("Is the backend running? Check `recipechat health`."))
	case api.KindRateLimited:
		fmt.Fprintln(errWriter, infoStyle.Render("Wait a moment and try again."))
	}
}

// printRouting prints the strategy annotation for an answer.
func printRouting(strategy string, complexity float64, haveComplexity bool) {
	if strategy == "" {
		return
	}
	line := "via " + model.StrategyLabel(strategy)
	if haveComplexity {
		line += fmt.Sprintf(" (complexity %.1f)", complexity)
	}
	fmt.Fprintln(outWriter, routingStyle.Render(line))
}

// printSources prints cited documents.
func printSources(docs []api.Document) {
	if len(docs) == 0 {
		return
	}
	fmt.Fprintln(outWriter, headerStyle.Render("Sources:"))
	for _, doc := range docs {
		fmt.Fprintf(outWriter, "%s\n",
			sourceStyle.Render(fmt.Sprintf("  • %s (%.0f%%)", doc.RecipeName, doc.RelevanceScore*100)))
	}
}
