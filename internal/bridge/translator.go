package bridge

import (
	"fmt"

	"kbridge/internal/domain"
)

// Translator converts generic order intents into broker-native requests,
// drawing a fresh correlation id from the registry for each translated order.
type Translator struct {
	ids *Registry
}

// NewTranslator creates a Translator issuing ids from reg.
func NewTranslator(reg *Registry) *Translator {
	return &Translator{ids: reg}
}

// Translate builds a BrokerOrderRequest from intent. A zero quantity returns
// (nil, nil): the nothing-to-do case, not an error, and the caller must not
// issue a broker call. The sign of Qty picks the side; Kind picks
// the price mode, with the limit price carried only for limit orders.
func (t *Translator) Translate(intent domain.OrderIntent) (*domain.BrokerOrderRequest, error) {
	if intent.Qty == 0 {
		return nil, nil
	}

	side := domain.SideBuy
	qty := intent.Qty
	if qty < 0 {
		side = domain.SideSell
		qty = -qty
	}
	// Unreachable given the sign split above; kept to catch regressions.
	if qty <= 0 {
		return nil, fmt.Errorf("%w: translated quantity %d not positive", domain.ErrInvariant, qty)
	}

	var mode domain.PriceMode
	var price int64
	switch intent.Kind {
	case domain.OrderKindLimit:
		mode = domain.PriceModeLimit
		price = intent.Price
	case domain.OrderKindMarket:
		mode = domain.PriceModeMarket
	case domain.OrderKindPreMarket:
		mode = domain.PriceModePreMarketClose
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedOrderKind, intent.Kind)
	}

	return &domain.BrokerOrderRequest{
		AccountNo:     intent.AccountNo,
		Code:          intent.Code,
		Qty:           qty,
		Side:          side,
		PriceMode:     mode,
		Price:         price,
		CorrelationID: t.ids.NextID(),
	}, nil
}
