package broker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"kbridge/internal/domain"
)

// Compile-time interface check.
var _ Broker = (*SimulatorBroker)(nil)

// SimulatorBroker implements the Broker interface in memory for paper
// trading and tests. It models the quirks of a real inventory feed: sold-out
// positions stay behind as zero-quantity rows, and quote fetches complete
// asynchronously after a configurable delay.
type SimulatorBroker struct {
	mu        sync.Mutex
	cash      map[string][]int64                  // accountNo → cash components
	inventory map[string][]domain.InventoryItem   // accountNo → positions
	quotes    map[string]domain.Quote             // code → seeded quote
	orders    map[string]domain.BrokerOrderRequest // orderNo → submitted request

	quoteDelay time.Duration
	orderSeq   atomic.Int64
	events     chan QuoteEvent
}

// NewSimulatorBroker creates a simulator with empty accounts. Quote fetches
// complete after quoteDelay.
func NewSimulatorBroker(quoteDelay time.Duration) *SimulatorBroker {
	return &SimulatorBroker{
		cash:       make(map[string][]int64),
		inventory:  make(map[string][]domain.InventoryItem),
		quotes:     make(map[string]domain.Quote),
		orders:     make(map[string]domain.BrokerOrderRequest),
		quoteDelay: quoteDelay,
		events:     make(chan QuoteEvent, 16),
	}
}

// Name returns "simulator".
func (b *SimulatorBroker) Name() string { return "simulator" }

// SetCash seeds the cash components for an account.
func (b *SimulatorBroker) SetCash(accountNo string, components ...int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cash[accountNo] = components
}

// SetInventory seeds the inventory feed for an account, zero rows included.
func (b *SimulatorBroker) SetInventory(accountNo string, items ...domain.InventoryItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inventory[accountNo] = items
}

// SetQuote seeds the quote returned for a code.
func (b *SimulatorBroker) SetQuote(q domain.Quote) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quotes[q.Code] = q
}

// SubmitOrder records the order and simulates an immediate full fill,
// adjusting the account's inventory. A position sold down to zero keeps its
// row, quantity zero, the way the real feed reports it.
func (b *SimulatorBroker) SubmitOrder(_ context.Context, req domain.BrokerOrderRequest) (domain.OrderResult, error) {
	if req.Qty <= 0 {
		return domain.OrderResult{}, &domain.BrokerError{Broker: b.Name(), Err: fmt.Errorf("non-positive quantity %d", req.Qty)}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	orderNo := fmt.Sprintf("SIM-%d", b.orderSeq.Add(1))
	b.orders[orderNo] = req

	delta := req.Qty
	if req.Side == domain.SideSell {
		delta = -req.Qty
	}
	b.applyInventoryDelta(req.AccountNo, req.Code, delta)

	price := req.Price
	if req.PriceMode != domain.PriceModeLimit {
		if q, ok := b.quotes[req.Code]; ok {
			price = q.Price
		}
	}

	return domain.OrderResult{
		CorrelationID: req.CorrelationID,
		OrderNo:       orderNo,
		Status:        "filled",
		Code:          req.Code,
		Side:          req.Side,
		Qty:           req.Qty,
		FilledQty:     req.Qty,
		AvgPrice:      price,
		SubmittedAt:   time.Now().UTC(),
	}, nil
}

func (b *SimulatorBroker) applyInventoryDelta(accountNo, code string, delta int64) {
	items := b.inventory[accountNo]
	for i := range items {
		if items[i].Code == code {
			items[i].Qty += delta
			return
		}
	}
	b.inventory[accountNo] = append(items, domain.InventoryItem{Code: code, Qty: delta})
}

// RequestCash returns the seeded cash components for the account.
func (b *SimulatorBroker) RequestCash(_ context.Context, accountNo string) ([]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	components, ok := b.cash[accountNo]
	if !ok {
		return nil, &domain.BrokerError{Broker: b.Name(), Err: fmt.Errorf("unknown account %s", accountNo)}
	}
	out := make([]int64, len(components))
	copy(out, components)
	return out, nil
}

// RequestInventory returns the account's positions, zero-quantity rows
// included. Filtering is the aggregator's job, not the feed's.
func (b *SimulatorBroker) RequestInventory(_ context.Context, accountNo string) ([]domain.InventoryItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.inventory[accountNo]
	out := make([]domain.InventoryItem, len(items))
	copy(out, items)
	return out, nil
}

// BeginQuoteFetch schedules delivery of the seeded quote after the
// configured delay. Unknown codes produce an event carrying an error.
func (b *SimulatorBroker) BeginQuoteFetch(ctx context.Context, code, correlationID string) error {
	b.mu.Lock()
	q, ok := b.quotes[code]
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.quoteDelay):
		}

		evt := QuoteEvent{Code: code, CorrelationID: correlationID, Quote: q}
		if !ok {
			evt.Err = fmt.Errorf("no quote for code %s", code)
		}
		select {
		case b.events <- evt:
		case <-ctx.Done():
		}
	}()
	return nil
}

// Quotes returns the simulator's quote event stream.
func (b *SimulatorBroker) Quotes() <-chan QuoteEvent { return b.events }

// Orders returns a copy of all submitted orders, keyed by order number.
func (b *SimulatorBroker) Orders() map[string]domain.BrokerOrderRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]domain.BrokerOrderRequest, len(b.orders))
	for k, v := range b.orders {
		out[k] = v
	}
	return out
}
