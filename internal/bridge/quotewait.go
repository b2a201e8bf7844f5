package bridge

import (
	"context"
	"fmt"
	"time"

	"kbridge/internal/domain"
)

// QuoteAwaiter turns the broker's asynchronous quote events into blocking
// calls with a bounded wait. It replaces a sleep-polling loop over shared
// per-code state: each request gets its own correlation-id-keyed entry and an
// explicit wake channel, so concurrent requests for the same code never see
// each other's data and an unresponsive broker cannot block forever.
type QuoteAwaiter struct {
	reg     *Registry
	timeout time.Duration
}

// NewQuoteAwaiter creates an awaiter with the given default timeout.
func NewQuoteAwaiter(reg *Registry, timeout time.Duration) *QuoteAwaiter {
	return &QuoteAwaiter{reg: reg, timeout: timeout}
}

// AwaitQuote registers a pending entry, invokes trigger with the fresh
// correlation id to start the broker's fetch, and blocks until the quote
// arrives, the timeout elapses, or ctx is cancelled. The pending entry is
// removed on every exit path.
func (a *QuoteAwaiter) AwaitQuote(ctx context.Context, code string, trigger func(correlationID string) error) (domain.Quote, error) {
	id := a.reg.NextID()
	ch := a.reg.Register(id, code)
	defer a.reg.Cancel(id)

	if err := trigger(id); err != nil {
		return domain.Quote{}, fmt.Errorf("starting quote fetch for %s: %w", code, err)
	}

	timer := time.NewTimer(a.timeout)
	defer timer.Stop()

	select {
	case q := <-ch:
		return q, nil
	case <-timer.C:
		return domain.Quote{}, fmt.Errorf("%w: %s after %s", domain.ErrQuoteTimeout, code, a.timeout)
	case <-ctx.Done():
		return domain.Quote{}, ctx.Err()
	}
}
