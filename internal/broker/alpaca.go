package broker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"kbridge/internal/domain"
	"kbridge/internal/util"
)

// Compile-time interface check.
var _ Broker = (*AlpacaBroker)(nil)

// AlpacaBroker implements the Broker interface against the Alpaca API.
// Prices cross this boundary in minor currency units (cents); quantities are
// whole shares. Quote fetches run on their own goroutine and complete on the
// event stream, matching the asynchronous contract.
type AlpacaBroker struct {
	trading *alpaca.Client
	data    *marketdata.Client

	// cashComponents names the account fields summed into the cash figure.
	// Which fields make sense is account-type specific, so the list is
	// configuration rather than hard-coded arithmetic.
	cashComponents []string

	quoteLimiter *util.RateLimiter
	events       chan QuoteEvent
	log          *slog.Logger
}

// NewAlpacaBroker creates an AlpacaBroker with the given credentials and
// endpoints. dataURL may be empty to use the SDK default.
func NewAlpacaBroker(apiKey, apiSecret, baseURL, dataURL string, cashComponents []string) *AlpacaBroker {
	if len(cashComponents) == 0 {
		cashComponents = []string{"cash"}
	}

	dataOpts := marketdata.ClientOpts{APIKey: apiKey, APISecret: apiSecret}
	if dataURL != "" {
		dataOpts.BaseURL = dataURL
	}

	return &AlpacaBroker{
		trading: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		data:           marketdata.NewClient(dataOpts),
		cashComponents: cashComponents,
		quoteLimiter:   util.NewRateLimiter(200),
		events:         make(chan QuoteEvent, 16),
		log:            slog.Default().With("broker", "alpaca"),
	}
}

// Name returns "alpaca".
func (b *AlpacaBroker) Name() string { return "alpaca" }

// SubmitOrder places the order via the Alpaca trading API. Pre-market-close
// orders have no Alpaca equivalent and are rejected at this boundary.
func (b *AlpacaBroker) SubmitOrder(_ context.Context, req domain.BrokerOrderRequest) (domain.OrderResult, error) {
	qty := decimal.NewFromInt(req.Qty)
	por := alpaca.PlaceOrderRequest{
		Symbol:        req.Code,
		Qty:           &qty,
		TimeInForce:   alpaca.Day,
		ClientOrderID: req.CorrelationID,
	}

	switch req.Side {
	case domain.SideBuy:
		por.Side = alpaca.Buy
	case domain.SideSell:
		por.Side = alpaca.Sell
	default:
		return domain.OrderResult{}, fmt.Errorf("%w: side %q", domain.ErrInvariant, req.Side)
	}

	switch req.PriceMode {
	case domain.PriceModeMarket:
		por.Type = alpaca.Market
	case domain.PriceModeLimit:
		por.Type = alpaca.Limit
		limit := decimal.New(req.Price, -2) // cents → dollars
		por.LimitPrice = &limit
	case domain.PriceModePreMarketClose:
		return domain.OrderResult{}, &domain.BrokerError{
			Broker: b.Name(),
			Err:    fmt.Errorf("pre-market close orders are not supported"),
		}
	default:
		return domain.OrderResult{}, fmt.Errorf("%w: price mode %q", domain.ErrInvariant, req.PriceMode)
	}

	order, err := b.trading.PlaceOrder(por)
	if err != nil {
		return domain.OrderResult{}, &domain.BrokerError{Broker: b.Name(), Err: err}
	}

	res := domain.OrderResult{
		CorrelationID: req.CorrelationID,
		OrderNo:       order.ID,
		Status:        string(order.Status),
		Code:          req.Code,
		Side:          req.Side,
		Qty:           req.Qty,
		FilledQty:     order.FilledQty.IntPart(),
		SubmittedAt:   order.CreatedAt.UTC(),
	}
	if order.FilledAvgPrice != nil {
		res.AvgPrice = order.FilledAvgPrice.Shift(2).Round(0).IntPart()
	}
	return res, nil
}

// RequestCash reads the account and returns the configured components in
// cents. Alpaca accounts are not addressed by account number, so accountNo is
// only logged.
func (b *AlpacaBroker) RequestCash(ctx context.Context, accountNo string) ([]int64, error) {
	var acct *alpaca.Account
	err := util.Retry(ctx, 3, time.Second, func() error {
		var err error
		acct, err = b.trading.GetAccount()
		return err
	})
	if err != nil {
		return nil, &domain.BrokerError{Broker: b.Name(), Err: fmt.Errorf("fetching account: %w", err)}
	}
	b.log.Debug("account fetched", "requested_account", accountNo, "alpaca_account", acct.AccountNumber)

	components := make([]int64, 0, len(b.cashComponents))
	for _, name := range b.cashComponents {
		v, err := accountComponent(acct, name)
		if err != nil {
			return nil, &domain.BrokerError{Broker: b.Name(), Err: err}
		}
		components = append(components, v.Shift(2).Round(0).IntPart())
	}
	return components, nil
}

func accountComponent(acct *alpaca.Account, name string) (decimal.Decimal, error) {
	switch name {
	case "cash":
		return acct.Cash, nil
	case "buying_power":
		return acct.BuyingPower, nil
	case "equity":
		return acct.Equity, nil
	case "last_equity":
		return acct.LastEquity, nil
	case "portfolio_value":
		return acct.PortfolioValue, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown cash component %q", name)
	}
}

// RequestInventory returns current positions as inventory items.
func (b *AlpacaBroker) RequestInventory(ctx context.Context, _ string) ([]domain.InventoryItem, error) {
	var positions []alpaca.Position
	err := util.Retry(ctx, 3, time.Second, func() error {
		var err error
		positions, err = b.trading.GetPositions()
		return err
	})
	if err != nil {
		return nil, &domain.BrokerError{Broker: b.Name(), Err: fmt.Errorf("fetching positions: %w", err)}
	}

	items := make([]domain.InventoryItem, 0, len(positions))
	for _, p := range positions {
		items = append(items, domain.InventoryItem{
			Code: p.Symbol,
			Qty:  p.Qty.IntPart(),
		})
	}
	return items, nil
}

// BeginQuoteFetch fetches the latest trade on its own goroutine and delivers
// it on the event stream, keyed by the caller's correlation id.
func (b *AlpacaBroker) BeginQuoteFetch(ctx context.Context, code, correlationID string) error {
	go func() {
		evt := QuoteEvent{Code: code, CorrelationID: correlationID}
		if err := b.quoteLimiter.Wait(ctx); err != nil {
			return
		}

		var trade *marketdata.Trade
		err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
			var err error
			trade, err = b.data.GetLatestTrade(code, marketdata.GetLatestTradeRequest{})
			return err
		})

		if err != nil {
			evt.Err = &domain.BrokerError{Broker: b.Name(), Err: fmt.Errorf("fetching quote for %s: %w", code, err)}
		} else {
			evt.Quote = domain.Quote{
				Code:   code,
				Price:  decimal.NewFromFloat(trade.Price).Shift(2).Round(0).IntPart(),
				Volume: int64(trade.Size),
			}
		}

		select {
		case b.events <- evt:
		case <-ctx.Done():
			b.log.Debug("quote fetch abandoned", "code", code, "correlation_id", correlationID)
		}
	}()
	return nil
}

// Quotes returns the broker's quote event stream.
func (b *AlpacaBroker) Quotes() <-chan QuoteEvent { return b.events }
