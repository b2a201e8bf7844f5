// Package bridge is the translation and correlation core between the
// synchronous request surface and the asynchronous brokerage backend. It
// turns signed order intents into broker-native requests, correlates
// asynchronous quote events back to their waiting callers, and merges cash
// and inventory into flat balance results.
package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"

	"kbridge/internal/domain"
)

// pendingQuote is one in-flight quote request. The channel is buffered so a
// resolve never blocks on a departed waiter.
type pendingQuote struct {
	code string
	ch   chan domain.Quote
}

// Registry issues correlation ids for outbound broker calls and routes
// asynchronous quote events back to the waiter that started them. Ids are
// strictly increasing for the life of the process; the pending table is the
// only shared mutable state in the core.
type Registry struct {
	seq atomic.Uint64

	mu      sync.Mutex
	pending map[string]pendingQuote
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[string]pendingQuote)}
}

// NextID returns a fresh correlation id. Tokens are "RQ_<n>" with a
// process-lifetime monotonic counter; uniqueness does not survive restarts.
func (r *Registry) NextID() string {
	return fmt.Sprintf("RQ_%d", r.seq.Add(1))
}

// Register creates a pending entry for id and returns the channel its quote
// will arrive on. Entries are keyed by correlation id, never by instrument
// code, so concurrent requests for the same code cannot collide.
func (r *Registry) Register(id, code string) <-chan domain.Quote {
	ch := make(chan domain.Quote, 1)
	r.mu.Lock()
	r.pending[id] = pendingQuote{code: code, ch: ch}
	r.mu.Unlock()
	return ch
}

// Resolve delivers a quote to the waiter registered under id and removes the
// entry. Unknown ids are a no-op: late or duplicate broker callbacks race
// with cancellation and are expected.
func (r *Registry) Resolve(id string, q domain.Quote) {
	r.mu.Lock()
	entry, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	select {
	case entry.ch <- q:
	default:
		// Waiter already gone.
	}
}

// Cancel removes the pending entry for id, if any. Safe to call after
// Resolve; every wait exit path calls it so entries never accumulate.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// Pending returns the number of in-flight entries.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
