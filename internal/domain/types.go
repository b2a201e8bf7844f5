// Package domain defines the core types shared across the bridge: order
// intents, translated broker requests, quotes, and balance results.
package domain

import "time"

// OrderKind is the order type as named by the client protocol.
type OrderKind string

const (
	OrderKindMarket    OrderKind = "market"
	OrderKindLimit     OrderKind = "limit"
	OrderKindPreMarket OrderKind = "premarket"
)

// Side is the direction of a translated order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// PriceMode selects the price-discovery mode an order is submitted with.
// Brokers map these to their native price-type codes at the adapter boundary.
type PriceMode string

const (
	PriceModeMarket         PriceMode = "market"
	PriceModeLimit          PriceMode = "limit"
	PriceModePreMarketClose PriceMode = "premarket-close"
)

// OrderIntent is a generic order as received from the client. Quantity is
// signed: positive buys, negative sells, zero means nothing to do. Price is
// in minor currency units and only meaningful for limit orders.
type OrderIntent struct {
	AccountNo string
	Code      string
	Qty       int64
	Price     int64
	Kind      OrderKind
}

// BrokerOrderRequest is the broker-native form of an order intent. Qty is
// always positive; the direction lives in Side.
type BrokerOrderRequest struct {
	AccountNo     string
	Code          string
	Qty           int64
	Side          Side
	PriceMode     PriceMode
	Price         int64
	CorrelationID string
	OriginOrderNo string // set only when correcting or cancelling an earlier order
}

// OrderResult is the broker's response to a submitted order. The bridge
// passes it through without reinterpretation; the broker is the source of
// truth for fill and rejection status.
type OrderResult struct {
	CorrelationID string    `json:"correlation_id"`
	OrderNo       string    `json:"order_no"`
	Status        string    `json:"status"`
	Code          string    `json:"code"`
	Side          Side      `json:"side"`
	Qty           int64     `json:"qty"`
	FilledQty     int64     `json:"filled_qty"`
	AvgPrice      int64     `json:"avg_price"`
	SubmittedAt   time.Time `json:"submitted_at"`

	// NoOp marks the zero-quantity short-circuit: the bridge accepted the
	// request but issued no broker call. Distinguishable from a broker-confirmed
	// zero-effect order, which carries an OrderNo.
	NoOp bool `json:"no_op,omitempty"`
}

// Quote is a point-in-time price snapshot for an instrument.
type Quote struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Volume int64  `json:"volume"`
}

// InventoryItem is one held position as reported by the broker's inventory
// feed. Sold-out positions can appear as zero-quantity rows.
type InventoryItem struct {
	Code string
	Qty  int64
}

// BalanceResult merges cash and per-instrument holdings. Holdings never
// contains a zero-quantity entry.
type BalanceResult struct {
	Cash     int64
	Holdings map[string]int64
}
