package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"kbridge/internal/domain"
)

func TestSimulatorSubmitOrderAdjustsInventory(t *testing.T) {
	b := NewSimulatorBroker(0)
	b.SetInventory("5500-01", domain.InventoryItem{Code: "233740", Qty: 10})

	res, err := b.SubmitOrder(context.Background(), domain.BrokerOrderRequest{
		AccountNo:     "5500-01",
		Code:          "233740",
		Qty:           10,
		Side:          domain.SideSell,
		PriceMode:     domain.PriceModeMarket,
		CorrelationID: "RQ_1",
	})
	if err != nil {
		t.Fatalf("SubmitOrder returned error: %v", err)
	}
	if res.Status != "filled" || res.FilledQty != 10 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.CorrelationID != "RQ_1" {
		t.Errorf("correlation id not echoed: %q", res.CorrelationID)
	}

	// The feed keeps sold-out positions as zero-quantity rows.
	items, err := b.RequestInventory(context.Background(), "5500-01")
	if err != nil {
		t.Fatalf("RequestInventory returned error: %v", err)
	}
	if len(items) != 1 || items[0].Code != "233740" || items[0].Qty != 0 {
		t.Errorf("expected single zero-quantity row, got %+v", items)
	}
}

func TestSimulatorSubmitOrderRejectsNonPositiveQty(t *testing.T) {
	b := NewSimulatorBroker(0)
	_, err := b.SubmitOrder(context.Background(), domain.BrokerOrderRequest{
		AccountNo: "5500-01",
		Code:      "233740",
		Qty:       0,
		Side:      domain.SideBuy,
		PriceMode: domain.PriceModeMarket,
	})
	var be *domain.BrokerError
	if !errors.As(err, &be) {
		t.Fatalf("expected BrokerError, got %v", err)
	}
}

func TestSimulatorRequestCashUnknownAccount(t *testing.T) {
	b := NewSimulatorBroker(0)
	if _, err := b.RequestCash(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown account")
	}
}

func TestSimulatorQuoteFetchDeliversEvent(t *testing.T) {
	b := NewSimulatorBroker(5 * time.Millisecond)
	b.SetQuote(domain.Quote{Code: "005930", Name: "Samsung Electronics", Price: 71000, Volume: 1234})

	if err := b.BeginQuoteFetch(context.Background(), "005930", "RQ_7"); err != nil {
		t.Fatalf("BeginQuoteFetch returned error: %v", err)
	}

	select {
	case evt := <-b.Quotes():
		if evt.CorrelationID != "RQ_7" || evt.Code != "005930" {
			t.Errorf("event misrouted: %+v", evt)
		}
		if evt.Err != nil {
			t.Errorf("unexpected event error: %v", evt.Err)
		}
		if evt.Quote.Price != 71000 {
			t.Errorf("quote price = %d, want 71000", evt.Quote.Price)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for quote event")
	}
}

func TestSimulatorQuoteFetchUnknownCode(t *testing.T) {
	b := NewSimulatorBroker(0)
	if err := b.BeginQuoteFetch(context.Background(), "999999", "RQ_1"); err != nil {
		t.Fatalf("BeginQuoteFetch returned error: %v", err)
	}

	select {
	case evt := <-b.Quotes():
		if evt.Err == nil {
			t.Error("expected event error for unknown code")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for quote event")
	}
}

func TestAlpacaBrokerName(t *testing.T) {
	b := NewAlpacaBroker("key", "secret", "https://paper-api.alpaca.markets", "", nil)
	if got := b.Name(); got != "alpaca" {
		t.Errorf("AlpacaBroker.Name() = %q, want %q", got, "alpaca")
	}
}

func TestAlpacaBrokerRejectsPreMarketClose(t *testing.T) {
	b := NewAlpacaBroker("key", "secret", "https://paper-api.alpaca.markets", "", nil)
	_, err := b.SubmitOrder(context.Background(), domain.BrokerOrderRequest{
		AccountNo: "acct",
		Code:      "AAPL",
		Qty:       1,
		Side:      domain.SideBuy,
		PriceMode: domain.PriceModePreMarketClose,
	})
	var be *domain.BrokerError
	if !errors.As(err, &be) {
		t.Fatalf("expected BrokerError, got %v", err)
	}
}
