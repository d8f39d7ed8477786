// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

// Package telemetry tracks local query usage: how many questions went to
// each retrieval strategy and how long they took. Everything stays in
// memory; nothing is reported anywhere.
package telemetry

import (
	"sort"
	"sync"
	"time"
)

// =============================================================================
// USAGE TRACKER
// =============================================================================

// StrategyUsage is the accumulated record for one retrieval strategy.
type StrategyUsage struct {
	Strategy string
	Queries  int
	Failures int
	Total    time.Duration
}

// Average returns the mean latency of successful queries.
func (u StrategyUsage) Average() time.Duration {
	n := u.Queries - u.Failures
	if n <= 0 {
		return 0
	}
	return u.Total / time.Duration(n)
}

// Usage accumulates per-strategy query counts and latencies for the running
// session.
type Usage struct {
	mu         sync.Mutex
	byStrategy map[string]*StrategyUsage
	queries    int
	failures   int
}

// NewUsage creates an empty tracker.
func NewUsage() *Usage {
	return &Usage{byStrategy: make(map[string]*StrategyUsage)}
}

// Record registers a completed query. strategy may be empty when the backend
// never sent metadata (failed before routing); those are bucketed under
// "unknown".
func (u *Usage) Record(strategy string, elapsed time.Duration, failed bool) {
	if strategy == "" {
		strategy = "unknown"
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	entry := u.byStrategy[strategy]
	if entry == nil {
		entry = &StrategyUsage{Strategy: strategy}
		u.byStrategy[strategy] = entry
	}
	entry.Queries++
	u.queries++
	if failed {
		entry.Failures++
		u.failures++
		return
	}
	entry.Total += elapsed
}

// Queries returns the total number of queries recorded.
func (u *Usage) Queries() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.queries
}

// Failures returns the total number of failed queries.
func (u *Usage) Failures() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.failures
}

// Strategies returns a copy of the per-strategy records, most-used first.
func (u *Usage) Strategies() []StrategyUsage {
	u.mu.Lock()
	out := make([]StrategyUsage, 0, len(u.byStrategy))
	for _, entry := range u.byStrategy {
		out = append(out, *entry)
	}
	u.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Queries != out[j].Queries {
			return out[i].Queries > out[j].Queries
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}

// Reset clears all accumulated usage.
func (u *Usage) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.byStrategy = make(map[string]*StrategyUsage)
	u.queries = 0
	u.failures = 0
}
