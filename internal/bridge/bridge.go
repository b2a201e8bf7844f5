package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kbridge/internal/broker"
	"kbridge/internal/domain"
	"kbridge/internal/store"
)

// Bridge is the single entry point between the request surface and the
// brokerage backend. The broker is passed in explicitly at construction,
// never reached through ambient state, so tests can substitute a fake.
// Journal and archive are optional; a nil store disables that concern.
type Bridge struct {
	broker  broker.Broker
	reg     *Registry
	trans   *Translator
	awaiter *QuoteAwaiter
	journal store.OrderJournal
	archive store.QuoteArchive
	log     *slog.Logger
}

// New creates a Bridge over the given broker. quoteTimeout bounds every
// quote wait.
func New(b broker.Broker, journal store.OrderJournal, archive store.QuoteArchive, quoteTimeout time.Duration, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	reg := NewRegistry()
	return &Bridge{
		broker:  b,
		reg:     reg,
		trans:   NewTranslator(reg),
		awaiter: NewQuoteAwaiter(reg, quoteTimeout),
		journal: journal,
		archive: archive,
		log:     log.With("component", "bridge", "broker", b.Name()),
	}
}

// Start launches the dispatcher that drains the broker's quote events into
// the registry. It returns once the goroutine is running; the dispatcher
// stops when ctx is cancelled or the broker closes its stream.
func (b *Bridge) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-b.broker.Quotes():
				if !ok {
					return
				}
				if evt.Err != nil {
					b.log.Warn("quote fetch failed", "code", evt.Code, "correlation_id", evt.CorrelationID, "error", evt.Err)
					// The waiter times out; late success for this id is a no-op.
					b.reg.Cancel(evt.CorrelationID)
					continue
				}
				b.reg.Resolve(evt.CorrelationID, evt.Quote)
			}
		}
	}()
}

// HandleOrder validates and translates the intent, submits it to the broker,
// and returns the broker's result verbatim. A zero-quantity intent
// short-circuits to a no-op success without touching the broker. All
// validation happens before any broker call.
func (b *Bridge) HandleOrder(ctx context.Context, intent domain.OrderIntent) (domain.OrderResult, error) {
	if intent.AccountNo == "" {
		return domain.OrderResult{}, fmt.Errorf("%w: missing account number", domain.ErrInvalidRequest)
	}
	if intent.Code == "" {
		return domain.OrderResult{}, fmt.Errorf("%w: missing instrument code", domain.ErrInvalidRequest)
	}
	if intent.Kind == domain.OrderKindLimit && intent.Price <= 0 {
		return domain.OrderResult{}, fmt.Errorf("%w: limit order needs a positive price", domain.ErrInvalidRequest)
	}

	req, err := b.trans.Translate(intent)
	if err != nil {
		return domain.OrderResult{}, err
	}
	if req == nil {
		b.log.Info("no-op order", "account", intent.AccountNo, "code", intent.Code)
		return domain.OrderResult{Code: intent.Code, Status: "no-op", NoOp: true}, nil
	}

	b.log.Info("submitting order",
		"correlation_id", req.CorrelationID, "account", req.AccountNo,
		"code", req.Code, "side", req.Side, "qty", req.Qty, "mode", req.PriceMode)

	res, err := b.broker.SubmitOrder(ctx, *req)
	if err != nil {
		return domain.OrderResult{}, err
	}

	b.journalOrder(ctx, *req, res)
	return res, nil
}

// journalOrder persists the submission. Journal failures are logged, not
// surfaced: the order is already at the broker.
func (b *Bridge) journalOrder(ctx context.Context, req domain.BrokerOrderRequest, res domain.OrderResult) {
	if b.journal == nil {
		return
	}
	rec := store.OrderRecord{
		CorrelationID: req.CorrelationID,
		AccountNo:     req.AccountNo,
		Code:          req.Code,
		Side:          string(req.Side),
		Qty:           req.Qty,
		Price:         req.Price,
		PriceMode:     string(req.PriceMode),
		OrderNo:       res.OrderNo,
		Status:        res.Status,
		FilledQty:     res.FilledQty,
		AvgPrice:      res.AvgPrice,
		SubmittedAt:   res.SubmittedAt,
	}
	if err := b.journal.SaveOrder(ctx, rec); err != nil {
		b.log.Error("journaling order", "correlation_id", req.CorrelationID, "error", err)
	}
}

// HandleBalance fetches the account's cash components and inventory from the
// broker, sequentially, and aggregates them into one flat result.
func (b *Bridge) HandleBalance(ctx context.Context, accountNo string) (domain.BalanceResult, error) {
	if accountNo == "" {
		return domain.BalanceResult{}, fmt.Errorf("%w: missing account number", domain.ErrInvalidRequest)
	}

	cash, err := b.broker.RequestCash(ctx, accountNo)
	if err != nil {
		return domain.BalanceResult{}, err
	}
	inventory, err := b.broker.RequestInventory(ctx, accountNo)
	if err != nil {
		return domain.BalanceResult{}, err
	}

	return AggregateBalance(cash, inventory), nil
}

// HandleQuote blocks for a quote through the wait adapter and archives the
// result. Archive failures are logged, not surfaced.
func (b *Bridge) HandleQuote(ctx context.Context, code string) (domain.Quote, error) {
	if code == "" {
		return domain.Quote{}, fmt.Errorf("%w: missing instrument code", domain.ErrInvalidRequest)
	}

	var id string
	q, err := b.awaiter.AwaitQuote(ctx, code, func(correlationID string) error {
		id = correlationID
		return b.broker.BeginQuoteFetch(ctx, code, correlationID)
	})
	if err != nil {
		return domain.Quote{}, err
	}

	if b.archive != nil {
		rec := store.NewQuoteRecord(id, q, time.Now().UTC())
		if aerr := b.archive.AppendQuotes(ctx, []store.QuoteRecord{rec}); aerr != nil {
			b.log.Error("archiving quote", "code", code, "error", aerr)
		}
	}
	return q, nil
}

// PendingQuotes reports the number of in-flight quote waits.
func (b *Bridge) PendingQuotes() int { return b.reg.Pending() }
