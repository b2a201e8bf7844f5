// Package httpapi exposes the bridge over a small JSON REST surface,
// keeping the request and response field names of the legacy brokerage
// endpoints so existing clients keep working unchanged.
package httpapi

// OrderRequest is the body of POST /order. Qty carries direction in its
// sign: positive buys, negative sells, zero is a no-op. Price is in minor
// currency units and only meaningful for limit orders. Type is one of
// "market", "limit" or "premarket".
type OrderRequest struct {
	AccountNo string `json:"accno"`
	Code      string `json:"code"`
	Qty       int64  `json:"qty"`
	Price     int64  `json:"price,omitempty"`
	Type      string `json:"type"`
}

// BalanceRequest is the body of POST /balance.
type BalanceRequest struct {
	AccountNo string `json:"accno"`
}

// PriceRequest is the body of POST /price.
type PriceRequest struct {
	Code string `json:"code"`
}

// PriceResponse is the body returned by POST /price.
type PriceResponse struct {
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Volume int64  `json:"volume"`
}
