package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider wraps a Provider with a token bucket that refills at
// rpm requests per minute.
type RateLimitedProvider struct {
	provider Provider
	rpm      int

	mu       sync.Mutex
	tokens   float64
	lastFill time.Time
}

// NewRateLimitedProvider wraps provider so that at most rpm requests per
// minute are sent. A non-positive rpm returns provider unchanged.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		return provider
	}
	return &RateLimitedProvider{
		provider: provider,
		rpm:      rpm,
		tokens:   float64(rpm),
		lastFill: time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

// take refills the bucket and consumes one token if available. It returns
// how long to wait before a token will be available otherwise.
func (r *RateLimitedProvider) take() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	perSecond := float64(r.rpm) / 60.0
	r.tokens += now.Sub(r.lastFill).Seconds() * perSecond
	if r.tokens > float64(r.rpm) {
		r.tokens = float64(r.rpm)
	}
	r.lastFill = now

	if r.tokens >= 1 {
		r.tokens--
		return 0
	}
	return time.Duration((1 - r.tokens) / perSecond * float64(time.Second))
}

func (r *RateLimitedProvider) wait(ctx context.Context) error {
	for {
		delay := r.take()
		if delay == 0 {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
