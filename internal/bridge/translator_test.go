package bridge

import (
	"errors"
	"testing"

	"kbridge/internal/domain"
)

func TestTranslateSignConvention(t *testing.T) {
	tests := []struct {
		qty      int64
		wantSide domain.Side
		wantQty  int64
	}{
		{qty: 1, wantSide: domain.SideBuy, wantQty: 1},
		{qty: 10, wantSide: domain.SideBuy, wantQty: 10},
		{qty: -1, wantSide: domain.SideSell, wantQty: 1},
		{qty: -250, wantSide: domain.SideSell, wantQty: 250},
	}

	tr := NewTranslator(NewRegistry())
	for _, tt := range tests {
		req, err := tr.Translate(domain.OrderIntent{
			AccountNo: "5500-01",
			Code:      "233740",
			Qty:       tt.qty,
			Kind:      domain.OrderKindMarket,
		})
		if err != nil {
			t.Fatalf("Translate(qty=%d) returned error: %v", tt.qty, err)
		}
		if req.Side != tt.wantSide {
			t.Errorf("Translate(qty=%d).Side = %q, want %q", tt.qty, req.Side, tt.wantSide)
		}
		if req.Qty != tt.wantQty {
			t.Errorf("Translate(qty=%d).Qty = %d, want %d", tt.qty, req.Qty, tt.wantQty)
		}
	}
}

func TestTranslateZeroQtyIsNoOp(t *testing.T) {
	tr := NewTranslator(NewRegistry())
	for _, kind := range []domain.OrderKind{domain.OrderKindMarket, domain.OrderKindLimit, domain.OrderKindPreMarket, "bogus"} {
		req, err := tr.Translate(domain.OrderIntent{
			AccountNo: "5500-01",
			Code:      "233740",
			Qty:       0,
			Price:     13000,
			Kind:      kind,
		})
		if err != nil {
			t.Errorf("Translate(qty=0, kind=%q) returned error: %v", kind, err)
		}
		if req != nil {
			t.Errorf("Translate(qty=0, kind=%q) = %+v, want nil no-op", kind, req)
		}
	}
}

func TestTranslateKindMapping(t *testing.T) {
	tests := []struct {
		kind      domain.OrderKind
		price     int64
		wantMode  domain.PriceMode
		wantPrice int64
	}{
		{kind: domain.OrderKindLimit, price: 13000, wantMode: domain.PriceModeLimit, wantPrice: 13000},
		{kind: domain.OrderKindMarket, price: 13000, wantMode: domain.PriceModeMarket, wantPrice: 0},
		{kind: domain.OrderKindPreMarket, price: 13000, wantMode: domain.PriceModePreMarketClose, wantPrice: 0},
	}

	tr := NewTranslator(NewRegistry())
	for _, tt := range tests {
		req, err := tr.Translate(domain.OrderIntent{
			AccountNo: "5500-01",
			Code:      "233740",
			Qty:       5,
			Price:     tt.price,
			Kind:      tt.kind,
		})
		if err != nil {
			t.Fatalf("Translate(kind=%q) returned error: %v", tt.kind, err)
		}
		if req.PriceMode != tt.wantMode {
			t.Errorf("Translate(kind=%q).PriceMode = %q, want %q", tt.kind, req.PriceMode, tt.wantMode)
		}
		if req.Price != tt.wantPrice {
			t.Errorf("Translate(kind=%q).Price = %d, want %d", tt.kind, req.Price, tt.wantPrice)
		}
	}
}

func TestTranslateUnsupportedKind(t *testing.T) {
	tr := NewTranslator(NewRegistry())
	for _, kind := range []domain.OrderKind{"", "stop", "MARKET", "limit "} {
		_, err := tr.Translate(domain.OrderIntent{
			AccountNo: "5500-01",
			Code:      "233740",
			Qty:       1,
			Kind:      kind,
		})
		if !errors.Is(err, domain.ErrUnsupportedOrderKind) {
			t.Errorf("Translate(kind=%q) error = %v, want ErrUnsupportedOrderKind", kind, err)
		}
	}
}

func TestTranslateAssignsFreshCorrelationIDs(t *testing.T) {
	tr := NewTranslator(NewRegistry())
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		req, err := tr.Translate(domain.OrderIntent{
			AccountNo: "5500-01",
			Code:      "233740",
			Qty:       1,
			Kind:      domain.OrderKindMarket,
		})
		if err != nil {
			t.Fatalf("Translate returned error: %v", err)
		}
		if seen[req.CorrelationID] {
			t.Fatalf("correlation id %q reused", req.CorrelationID)
		}
		seen[req.CorrelationID] = true
	}
}
