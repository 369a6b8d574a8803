package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"wisp/internal/provider"
	"wisp/pkg/logger"
)

// RetryPolicy defines the retry behavior for rate-limited generation calls.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// DefaultDelay is used when the server does not advise a delay.
	DefaultDelay time.Duration
}

// DefaultRetryPolicy returns the default retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		DefaultDelay: 30 * time.Second,
	}
}

// Invoker calls the provider with bounded retries. Only rate/quota failures
// are retried; everything else surfaces immediately.
type Invoker struct {
	provider    provider.Provider
	model       string
	temperature float64
	policy      RetryPolicy

	out   io.Writer
	sleep func(ctx context.Context, d time.Duration) error
}

// NewInvoker creates an invoker for the given provider and model settings.
func NewInvoker(p provider.Provider, model string, temperature float64, policy RetryPolicy, out io.Writer) *Invoker {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	if policy.DefaultDelay <= 0 {
		policy.DefaultDelay = DefaultRetryPolicy().DefaultDelay
	}
	return &Invoker{
		provider:    p,
		model:       model,
		temperature: temperature,
		policy:      policy,
		out:         out,
		sleep:       sleepContext,
	}
}

// sleepContext waits for the duration unless the context ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Invoke runs one generation over the given transcript, retrying rate-limit
// failures up to the policy's attempt budget.
func (inv *Invoker) Invoke(ctx context.Context, turns []provider.Turn, tools []provider.ToolDeclaration) (*provider.GenerateResponse, error) {
	req := provider.GenerateRequest{
		Model:       inv.model,
		Turns:       turns,
		Tools:       tools,
		Temperature: inv.temperature,
	}

	var lastErr error
	for attempt := 1; attempt <= inv.policy.MaxAttempts; attempt++ {
		resp, err := inv.provider.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !provider.IsRateLimited(err) {
			return nil, fmt.Errorf("generation failed: %w", err)
		}
		if attempt == inv.policy.MaxAttempts {
			break
		}

		delay := inv.retryDelay(err)
		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", inv.policy.MaxAttempts).
			Dur("delay", delay).
			Msg("rate limited, waiting before retry")
		fmt.Fprintf(inv.out, "Rate limited. Retrying in %d seconds (attempt %d/%d)...\n",
			int(delay.Seconds()), attempt+1, inv.policy.MaxAttempts)

		if err := inv.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("generation failed after %d attempts: %w", inv.policy.MaxAttempts, lastErr)
}

// retryDelay picks the server-advised delay when present, else the default.
func (inv *Invoker) retryDelay(err error) time.Duration {
	var pe *provider.ProviderError
	if errors.As(err, &pe) && pe.RetryAfter > 0 {
		return time.Duration(pe.RetryAfter) * time.Second
	}
	return inv.policy.DefaultDelay
}
