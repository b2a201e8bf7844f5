// Package store persists what flows through the bridge: an order journal in
// SQLite and a quote archive in Parquet.
package store

import (
	"context"
	"time"

	"kbridge/internal/domain"
)

// OrderRecord is one journaled order submission: the translated request plus
// the broker's verdict.
type OrderRecord struct {
	CorrelationID string
	AccountNo     string
	Code          string
	Side          string
	Qty           int64
	Price         int64
	PriceMode     string
	OrderNo       string
	Status        string
	FilledQty     int64
	AvgPrice      int64
	SubmittedAt   time.Time
}

// OrderJournal persists submitted orders and their broker results.
type OrderJournal interface {
	// SaveOrder appends one order submission to the journal.
	SaveOrder(ctx context.Context, rec OrderRecord) error

	// ListOrders returns journaled orders for an account, newest first.
	ListOrders(ctx context.Context, accountNo string) ([]OrderRecord, error)

	// Close releases the journal's resources.
	Close() error
}

// QuoteRecord is one resolved quote lookup.
type QuoteRecord struct {
	Code          string
	CorrelationID string
	Price         int64
	Volume        int64
	ObservedAt    time.Time
}

// QuoteArchive persists resolved quote lookups for later analysis.
type QuoteArchive interface {
	// AppendQuotes persists a batch of resolved quotes.
	AppendQuotes(ctx context.Context, quotes []QuoteRecord) error

	// ReadQuotes returns archived quotes for a code on a given day.
	ReadQuotes(ctx context.Context, code string, day time.Time) ([]QuoteRecord, error)
}

// NewQuoteRecord builds a QuoteRecord from a resolved quote.
func NewQuoteRecord(correlationID string, q domain.Quote, at time.Time) QuoteRecord {
	return QuoteRecord{
		Code:          q.Code,
		CorrelationID: correlationID,
		Price:         q.Price,
		Volume:        q.Volume,
		ObservedAt:    at,
	}
}
