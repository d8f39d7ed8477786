// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// status.go - backend stats and health command handlers.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HandleStats shows knowledge base, routing, and vector store statistics.
func HandleStats(args Args) int {
	app, err := Setup(args)
	if err != nil {
		printError(err)
		return 1
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Backend.Timeout())
	defer cancel()

	stats, err := app.Client.Stats(ctx)
	if err != nil {
		printError(err)
		return 1
	}

	if args.JSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			printError(err)
			return 1
		}
		fmt.Fprintln(outWriter, string(data))
		return 0
	}

	kb := stats.KnowledgeBase
	fmt.Fprintln(outWriter, headerStyle.Render("Knowledge base"))
	fmt.Fprintf(outWriter, "  recipes:        %d\n", kb.TotalRecipes)
	fmt.Fprintf(outWriter, "  ingredients:    %d\n", kb.TotalIngredients)
	fmt.Fprintf(outWriter, "  cooking steps:  %d\n", kb.TotalCookingSteps)
	fmt.Fprintf(outWriter, "  documents:      %d\n", kb.TotalDocuments)
	fmt.Fprintf(outWriter, "  chunks:         %d\n", kb.TotalChunks)
	if len(kb.Categories) > 0 {
		fmt.Fprintf(outWriter, "  categories:     %s\n", strings.Join(kb.Categories, ", "))
	}

	r := stats.Routing
	fmt.Fprintln(outWriter, headerStyle.Render("Routing"))
	fmt.Fprintf(outWriter, "  total queries:  %d\n", r.TotalQueries)
	if r.TotalQueries > 0 {
		fmt.Fprintf(outWriter, "  traditional:    %d (%.0f%%)\n", r.TraditionalCount, r.TraditionalRatio*100)
		fmt.Fprintf(outWriter, "  graph RAG:      %d (%.0f%%)\n", r.GraphRAGCount, r.GraphRAGRatio*100)
		fmt.Fprintf(outWriter, "  combined:       %d (%.0f%%)\n", r.CombinedCount, r.CombinedRatio*100)
	}

	fmt.Fprintln(outWriter, headerStyle.Render("Vector store"))
	fmt.Fprintf(outWriter, "  rows:           %d\n", stats.Milvus.RowCount)
	return 0
}

// HandleHealth checks whether the backend is ready to answer.
func HandleHealth(args Args) int {
	app, err := Setup(args)
	if err != nil {
		printError(err)
		return 1
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	health, err := app.Client.Health(ctx)
	latency := time.Since(start)

	if err != nil {
		if args.JSON {
			fmt.Fprintf(outWriter, "{\"status\":\"unreachable\",\"error\":%q}\n", err.Error())
		} else {
			printError(err)
		}
		return 1
	}

	if args.JSON {
		data, _ := json.MarshalIndent(health, "", "  ")
		fmt.Fprintln(outWriter, string(data))
	} else {
		state := errorStyle.Render("not ready")
		if health.SystemReady {
			state = headerStyle.Render("ready")
		}
		fmt.Fprintf(outWriter, "%s %s (%dms)\n", state, infoStyle.Render(health.Message), latency.Milliseconds())
	}

	if !health.SystemReady {
		return 1
	}
	return 0
}
