// Copyright (c) 2025 recipechat authors
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"time"

	"recipechat/internal/logging"
)

// =============================================================================
// RETRY CONTROLLER
// =============================================================================

// Retryer wraps a backend call in a bounded, backoff-based retry policy.
//
// MaxAttempts counts total invocations: with the default of 2, the operation
// runs at most twice before the last failure surfaces. The delay before
// retry n (zero-indexed) is BaseDelay * 2^n, so the first retry waits 1s and
// the second 2s. Only connection-establishment failures are retried; a stream
// that already emitted content must not be re-run through a Retryer.
type Retryer struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// sleep is swapped in tests to observe delays without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// Defaults: one retry, one second before it.
const (
	DefaultMaxAttempts = 2
	DefaultBaseDelay   = 1 * time.Second
)

// NewRetryer creates a Retryer with the given attempt budget.
// Zero values select the defaults.
func NewRetryer(maxAttempts int, baseDelay time.Duration) *Retryer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Retryer{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		sleep:       sleepCtx,
	}
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// attempt budget is exhausted. The last error is returned unchanged, so its
// classification survives.
func (r *Retryer) Do(ctx context.Context, op func(ctx context.Context) error) error {
	sleep := r.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 0; attempt < r.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.BaseDelay << (attempt - 1)
			logging.L().Debug().
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying backend call")
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		kind := Classify(lastErr)
		if !kind.Retryable() {
			logging.L().Debug().
				Str("kind", kind.String()).
				Err(lastErr).
				Msg("backend call failed, not retryable")
			return lastErr
		}
		logging.L().Debug().
			Str("kind", kind.String()).
			Int("attempt", attempt).
			Err(lastErr).
			Msg("backend call failed")
	}

	return lastErr
}

// sleepCtx waits for d without blocking past context cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
