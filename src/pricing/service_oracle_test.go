package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServiceOracleCurrentPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			http.NotFound(w, r)
			return
		}

		switch r.URL.Query().Get("symbol") {
		case "BTC/USDT":
			_ = json.NewEncoder(w).Encode(quoteResponse{Symbol: "BTC/USDT", Price: 50000.0})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	oracle := NewServiceOracle(server.URL)

	price, err := oracle.CurrentPrice(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 50000.0 {
		t.Fatalf("price mismatch. got=%v want=50000", price)
	}

	_, err = oracle.CurrentPrice(context.Background(), "UNKNOWN")
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("expected ErrPriceUnavailable for unknown symbol, got %v", err)
	}
}

func TestCacheOracle(t *testing.T) {
	oracle := NewCacheOracle(time.Minute)

	current := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	oracle.now = func() time.Time { return current }

	if _, err := oracle.CurrentPrice(context.Background(), "BTC/USDT"); !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("expected ErrPriceUnavailable for empty cache, got %v", err)
	}

	oracle.Set("BTC/USDT", 50000.0)

	price, err := oracle.CurrentPrice(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 50000.0 {
		t.Fatalf("price mismatch. got=%v want=50000", price)
	}

	// advance past maxAge. stale quotes must not fill orders
	current = current.Add(2 * time.Minute)
	if _, err := oracle.CurrentPrice(context.Background(), "BTC/USDT"); !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("expected ErrPriceUnavailable for stale quote, got %v", err)
	}
}
