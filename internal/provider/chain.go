package provider

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy bounds the quota-retry behaviour of a chain: how many times
// the whole chain may be restarted after a quota signal, and the floor below
// which a provider-suggested cool-down is never trusted.
type RetryPolicy struct {
	MaxRetries int
	DelayFloor time.Duration
}

// DefaultRetryPolicy mirrors the narration quota policy: up to three
// restarts, never sleeping less than five minutes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		DelayFloor: 5 * time.Minute,
	}
}

// Chain is an ordered list of providers for one capability, configured once
// at startup. Providers are tried in order; the first one that is available
// and succeeds wins.
type Chain[In, Out any] struct {
	capability string
	providers  []Provider[In, Out]
	logger     *slog.Logger
	fallbacks  ChainObserver
}

// ChainObserver receives chain events for metrics. Nil methods are fine to
// leave unwired in tests.
type ChainObserver interface {
	FallbackAdvanced(capability, provider string)
	QuotaWait(capability string, delay time.Duration)
}

// NewChain builds a chain for the named capability.
func NewChain[In, Out any](capability string, logger *slog.Logger, providers ...Provider[In, Out]) *Chain[In, Out] {
	return &Chain[In, Out]{
		capability: capability,
		providers:  providers,
		logger:     logger,
	}
}

// Observe attaches a metrics observer to the chain.
func (c *Chain[In, Out]) Observe(obs ChainObserver) *Chain[In, Out] {
	c.fallbacks = obs
	return c
}

// Len returns the number of configured providers.
func (c *Chain[In, Out]) Len() int { return len(c.providers) }

// runOnce walks the chain a single time. Ordinary provider failures advance
// to the next provider with no delay. With stopOnQuota set, a QuotaError
// aborts the walk and is returned to the caller, which decides whether to
// sleep and restart; otherwise quota signals degrade to ordinary failures.
func (c *Chain[In, Out]) runOnce(ctx context.Context, in In, stopOnQuota bool) (Out, error) {
	var zero Out
	var lastErr error

	for _, p := range c.providers {
		if !p.Available(ctx) {
			c.logger.Debug("provider unavailable, skipping",
				"capability", c.capability, "provider", p.Name())
			continue
		}

		out, err := p.Invoke(ctx, in)
		if err == nil {
			return out, nil
		}
		if _, ok := AsQuota(err); ok && stopOnQuota {
			return zero, err
		}

		c.logger.Warn("provider failed, advancing chain",
			"capability", c.capability, "provider", p.Name(), "error", err)
		if c.fallbacks != nil {
			c.fallbacks.FallbackAdvanced(c.capability, p.Name())
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no provider available for %s", c.capability)
	}
	return zero, lastErr
}

// InvokeDefault runs the chain with fall-through semantics: any quota signal
// is treated like an ordinary failure of that walk, and when every provider
// fails the fixed safe default is returned instead of an error. Used for
// categorization and keyword suggestion.
func (c *Chain[In, Out]) InvokeDefault(ctx context.Context, in In, def Out) Out {
	out, err := c.runOnce(ctx, in, false)
	if err != nil {
		c.logger.Warn("all providers failed, using default",
			"capability", c.capability, "error", err)
		return def
	}
	return out
}

// Invoke runs the chain once and returns the first success or the last
// failure. Used for resolution, where the caller has its own deterministic
// fallback.
func (c *Chain[In, Out]) Invoke(ctx context.Context, in In) (Out, error) {
	return c.runOnce(ctx, in, false)
}

// InvokeRetry runs the chain under the quota policy: on a QuotaError the
// executor sleeps for the larger of the suggested cool-down and the policy
// floor, then retries from the top of the chain, up to MaxRetries restarts.
// Exhausting the retries fails the capability fatally for this topic.
func (c *Chain[In, Out]) InvokeRetry(ctx context.Context, in In, policy RetryPolicy) (Out, error) {
	var zero Out
	var lastErr error

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		out, err := c.runOnce(ctx, in, true)
		if err == nil {
			return out, nil
		}
		lastErr = err

		qe, ok := AsQuota(err)
		if !ok {
			return zero, err
		}
		if attempt == policy.MaxRetries {
			break
		}

		delay := qe.RetryAfter
		if delay < policy.DelayFloor {
			delay = policy.DelayFloor
		}

		c.logger.Warn("quota exceeded, waiting before retrying chain",
			"capability", c.capability, "delay", delay,
			"attempt", attempt+1, "max_retries", policy.MaxRetries)
		if c.fallbacks != nil {
			c.fallbacks.QuotaWait(c.capability, delay)
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("quota wait cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return zero, fmt.Errorf("quota retries exhausted (%d): %w", policy.MaxRetries, lastErr)
}
