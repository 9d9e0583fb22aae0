// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package common

import (
	"context"
	"math"
	"time"
)

// RetryConfig bounds a retry executor, paced by a capped exponential
// backoff computed inline rather than pulled from a dedicated library.
type RetryConfig struct {
	MaxAttempts       int // total attempts, including the first
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns sane defaults for one metadata fetch or RPC
// retry loop.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       4,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// ShouldRetry decides, given an error and the attempt number (0-based) just
// made, whether another attempt should be made.
type ShouldRetry func(err error, attempt int) bool

// RetryAll retries on every non-nil error. Used for read-side RPCs, where
// the retry predicate is simply "all errors".
func RetryAll(err error, _ int) bool { return err != nil }

// Retry re-runs fn until it succeeds, a non-retryable error is hit, or the
// attempt count is exhausted. fn must be idempotent. Logger may be nil.
func Retry[T any](ctx context.Context, cfg RetryConfig, should ShouldRetry, logger ILogger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !should(err, attempt) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := BackoffDelay(cfg, attempt)
		if logger != nil && logger.ShouldLog(LogDebug) {
			logger.Log(LogDebug, op+": retrying after "+delay.String()+": "+err.Error())
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

// BackoffDelay computes the capped exponential delay before the attempt
// after attempt (0-based), doubling (or scaling by BackoffMultiplier) from
// InitialDelay and never exceeding MaxDelay. Exported so callers pacing
// their own retry loop outside Retry (e.g. a stream-reopen loop) can reuse
// the same policy.
func BackoffDelay(cfg RetryConfig, attempt int) time.Duration {
	scaled := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffMultiplier, float64(attempt))
	if max := float64(cfg.MaxDelay); scaled > max {
		scaled = max
	}
	return time.Duration(scaled)
}
