package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedInvoker throttles calls to the wrapped invoker. Parallel
// segment comparisons share one limiter, so the provider sees a bounded
// request rate no matter how wide the worker pool is.
type RateLimitedInvoker struct {
	inner   Invoker
	limiter *rate.Limiter
}

// NewRateLimitedInvoker creates a throttling wrapper around inner
func NewRateLimitedInvoker(inner Invoker, requestsPerSecond float64, burst int) *RateLimitedInvoker {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedInvoker{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Name returns the wrapped provider name
func (p *RateLimitedInvoker) Name() string {
	return p.inner.Name()
}

// IsAvailable checks the wrapped provider
func (p *RateLimitedInvoker) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}

// Generate waits for limiter clearance, then invokes the wrapped provider
func (p *RateLimitedInvoker) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	return p.inner.Generate(ctx, req)
}
