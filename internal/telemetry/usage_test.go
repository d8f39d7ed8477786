// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUsage_RecordAndAggregate(t *testing.T) {
	u := NewUsage()

	u.Record("vector_search", 100*time.Millisecond, false)
	u.Record("vector_search", 300*time.Millisecond, false)
	u.Record("graph_rag", 2*time.Second, false)
	u.Record("", 0, true)

	require.Equal(t, 4, u.Queries())
	require.Equal(t, 1, u.Failures())

	strategies := u.Strategies()
	require.Len(t, strategies, 3)
	require.Equal(t, "vector_search", strategies[0].Strategy, "most-used strategy sorts first")
	require.Equal(t, 200*time.Millisecond, strategies[0].Average())
}

func TestUsage_FailuresExcludedFromAverage(t *testing.T) {
	u := NewUsage()
	u.Record("hybrid_traditional", 100*time.Millisecond, false)
	u.Record("hybrid_traditional", time.Hour, true)

	s := u.Strategies()[0]
	require.Equal(t, 2, s.Queries)
	require.Equal(t, 1, s.Failures)
	require.Equal(t, 100*time.Millisecond, s.Average(), "failed query latency must not count")
}

func TestUsage_AllFailedAverageIsZero(t *testing.T) {
	u := NewUsage()
	u.Record("graph_rag", 0, true)
	require.Equal(t, time.Duration(0), u.Strategies()[0].Average())
}

func TestUsage_EmptyStrategyBucketsAsUnknown(t *testing.T) {
	u := NewUsage()
	u.Record("", time.Second, false)

	strategies := u.Strategies()
	require.Len(t, strategies, 1)
	require.Equal(t, "unknown", strategies[0].Strategy)
}

func TestUsage_Reset(t *testing.T) {
	u := NewUsage()
	u.Record("vector_search", time.Second, false)
	u.Reset()

	require.Zero(t, u.Queries())
	require.Empty(t, u.Strategies())
}

func TestUsage_ConcurrentRecords(t *testing.T) {
	u := NewUsage()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				u.Record("vector_search", time.Millisecond, false)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 400, u.Queries())
}
