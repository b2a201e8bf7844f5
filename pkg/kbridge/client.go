// Package kbridge provides a Go SDK for the kbridge-server API, mirroring
// the semantics of the server's endpoints: signed quantities for orders,
// flat balance maps, blocking price lookups.
package kbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OrderResult is the server's response to an accepted order.
type OrderResult struct {
	CorrelationID string    `json:"correlation_id"`
	OrderNo       string    `json:"order_no"`
	Status        string    `json:"status"`
	Code          string    `json:"code"`
	Side          string    `json:"side"`
	Qty           int64     `json:"qty"`
	FilledQty     int64     `json:"filled_qty"`
	AvgPrice      int64     `json:"avg_price"`
	SubmittedAt   time.Time `json:"submitted_at"`
	NoOp          bool      `json:"no_op,omitempty"`
}

// Price is the server's response to a price lookup.
type Price struct {
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Volume int64  `json:"volume"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client provides a Go SDK for the kbridge-server API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new kbridge API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type orderRequest struct {
	AccountNo string `json:"accno"`
	Code      string `json:"code"`
	Qty       int64  `json:"qty"`
	Price     int64  `json:"price,omitempty"`
	Type      string `json:"type"`
}

// MarketOrder submits a market order. Qty carries direction in its sign:
// positive buys, negative sells. A zero quantity is a client-side no-op and
// never reaches the server. Set premarket for pre-market pricing.
func (c *Client) MarketOrder(ctx context.Context, accountNo, code string, qty int64, premarket bool) (*OrderResult, error) {
	if qty == 0 {
		return nil, nil
	}
	kind := "market"
	if premarket {
		kind = "premarket"
	}
	return c.submitOrder(ctx, orderRequest{AccountNo: accountNo, Code: code, Qty: qty, Type: kind})
}

// LimitOrder submits a limit order at the given price in minor currency
// units. Qty carries direction in its sign; zero is a client-side no-op.
func (c *Client) LimitOrder(ctx context.Context, accountNo, code string, qty, price int64) (*OrderResult, error) {
	if qty == 0 {
		return nil, nil
	}
	return c.submitOrder(ctx, orderRequest{AccountNo: accountNo, Code: code, Qty: qty, Price: price, Type: "limit"})
}

func (c *Client) submitOrder(ctx context.Context, req orderRequest) (*OrderResult, error) {
	var res OrderResult
	if err := c.post(ctx, "/order", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Balance retrieves the account balance as a flat map: the "cash" key plus
// one entry per held code. Zero-quantity entries are dropped.
func (c *Client) Balance(ctx context.Context, accountNo string) (map[string]int64, error) {
	var raw map[string]int64
	if err := c.post(ctx, "/balance", map[string]string{"accno": accountNo}, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		if k != "cash" && v == 0 {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// Price retrieves the current quote for a code. The call blocks until the
// server resolves the quote or times out.
func (c *Client) Price(ctx context.Context, code string) (*Price, error) {
	var res Price
	if err := c.post(ctx, "/price", map[string]string{"code": code}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := http.StatusText(resp.StatusCode)
		if data, err := io.ReadAll(resp.Body); err == nil {
			if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
				msg = apiErr.Error
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
