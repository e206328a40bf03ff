package reasoning

import (
	"context"
	"math/rand"
	"time"
)

// fullJitterBackoff computes the delay before the next attempt after
// `attempt` (0-indexed) has already failed.
// spec.md calls for full-jitter backoff (sleep = random(0, min(cap,
// initial*factor^attempt))); the original Rust retry.rs instead adds only
// a small additive jitter on top of a fixed exponential delay. That is a
// deliberate divergence from the original's literal behavior, resolved in
// favor of the spec's explicit wording — see DESIGN.md.
func fullJitterBackoff(cfg RetryConfig, attempt int) time.Duration {
	backoff := float64(cfg.InitialDelay) * pow2(cfg.Factor, attempt)
	cap := float64(cfg.MaxDelay)
	if backoff > cap {
		backoff = cap
	}
	if backoff <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(backoff) + 1))
}

func pow2(factor float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= factor
	}
	return result
}

// retryTransient runs fn up to cfg.MaxAttempts times, sleeping a
// full-jitter backoff between attempts, retrying only while fn reports the
// error as transient. It stops early on ctx cancellation.
func retryTransient(ctx context.Context, cfg RetryConfig, fn func() (string, bool, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		content, transient, err := fn()
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !transient {
			return content, err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}
		delay := fullJitterBackoff(cfg, attempt)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}
