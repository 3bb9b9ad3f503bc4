package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type throttledCompleter struct {
	inner   Completer
	limiter *rate.Limiter
}

// Throttle caps requests per minute against a remote provider. Burst of one:
// the pipeline is sequential and the inference backend has no concurrency
// guarantee.
func Throttle(c Completer, rpm int) Completer {
	if rpm <= 0 {
		return c
	}
	return &throttledCompleter{
		inner:   c,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

func (t *throttledCompleter) Complete(ctx context.Context, messages []Message, opts Options, onToken func(string)) (string, ProviderInfo, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", ProviderInfo{}, fmt.Errorf("rate limiter wait: %w", err)
	}
	return t.inner.Complete(ctx, messages, opts, onToken)
}
