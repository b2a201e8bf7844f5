// Package broker defines the contract the bridge requires from a brokerage
// backend and provides implementations for live trading and simulation.
package broker

import (
	"context"

	"kbridge/internal/domain"
)

// QuoteEvent is pushed on the broker's quote stream when an asynchronous
// quote fetch completes. CorrelationID ties the event back to the request
// that started the fetch.
type QuoteEvent struct {
	Code          string
	CorrelationID string
	Quote         domain.Quote
	Err           error
}

// Broker abstracts the brokerage backend. Orders and balance queries are
// synchronous round-trips; quote fetches are asynchronous and complete on the
// Quotes stream. Implementations may serialize access to their underlying
// session; callers must not assume overlapping calls are safe.
type Broker interface {
	// Name returns the broker identifier (e.g. "alpaca", "simulator").
	Name() string

	// SubmitOrder sends a translated order to the brokerage for execution.
	SubmitOrder(ctx context.Context, req domain.BrokerOrderRequest) (domain.OrderResult, error)

	// RequestCash returns the account's cash components, in the order they
	// were configured. The bridge sums them; their individual semantics are
	// broker-specific.
	RequestCash(ctx context.Context, accountNo string) ([]int64, error)

	// RequestInventory returns the account's held positions. Sold-out
	// positions may appear as zero-quantity rows.
	RequestInventory(ctx context.Context, accountNo string) ([]domain.InventoryItem, error)

	// BeginQuoteFetch starts an asynchronous quote lookup for code. The
	// result arrives on Quotes carrying the same correlation id.
	BeginQuoteFetch(ctx context.Context, code, correlationID string) error

	// Quotes is the broker's asynchronous quote event stream.
	Quotes() <-chan QuoteEvent
}
