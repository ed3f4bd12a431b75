package priceapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

func TestParsePriceValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{"bare number", `1.23`, 1.23, true},
		{"numeric string", `"4.56"`, 4.56, true},
		{"object with number price", `{"id":"x","price":7.89}`, 7.89, true},
		{"object with string price", `{"id":"x","price":"0.001"}`, 0.001, true},
		{"nested object price", `{"price":{"price":"2"}}`, 2, true},
		{"null", `null`, 0, false},
		{"non-numeric string", `"abc"`, 0, false},
		{"object without price", `{"id":"x"}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parsePriceValue(jsoniter.RawMessage(tt.raw))
			if ok != tt.ok || got != tt.want {
				t.Errorf("parsePriceValue(%s) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestGetPricesParsesMixedPayloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "ids=") {
			t.Errorf("expected ids query parameter, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"data":{
			"MintA":{"id":"MintA","price":"1.5"},
			"MintB":2.25,
			"MintC":null
		}}`))
	}))
	defer srv.Close()

	client := NewJupiterClient(srv.URL, srv.URL, time.Second, zap.NewNop())

	prices, err := client.GetPrices(context.Background(), []string{"MintA", "MintB", "MintC"})
	if err != nil {
		t.Fatalf("GetPrices() unexpected error: %v", err)
	}
	if prices["MintA"] != 1.5 {
		t.Errorf("MintA price = %v, want 1.5", prices["MintA"])
	}
	if prices["MintB"] != 2.25 {
		t.Errorf("MintB price = %v, want 2.25", prices["MintB"])
	}
	if _, ok := prices["MintC"]; ok {
		t.Errorf("MintC should be absent when its payload is unparseable")
	}
}

func TestGetPricesRejectsOversizedBatch(t *testing.T) {
	client := NewJupiterClient("http://unused.invalid", "http://unused.invalid", time.Second, zap.NewNop())

	mints := make([]string, MaxMintsPerPriceRequest+1)
	for i := range mints {
		mints[i] = "Mint"
	}
	if _, err := client.GetPrices(context.Background(), mints); err == nil {
		t.Fatal("expected error for oversized batch")
	}
}

func TestGetTokenRegistry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"address":"MintA","symbol":"AAA","name":"Token A","decimals":6,"logoURI":"https://img/a.png"},
			{"address":"","symbol":"BAD","name":"No Address","decimals":0}
		]`))
	}))
	defer srv.Close()

	client := NewJupiterClient(srv.URL, srv.URL, time.Second, zap.NewNop())

	registry, err := client.GetTokenRegistry(context.Background())
	if err != nil {
		t.Fatalf("GetTokenRegistry() unexpected error: %v", err)
	}
	if len(registry) != 1 {
		t.Fatalf("expected 1 registry entry, got %d", len(registry))
	}
	entry := registry["MintA"]
	if entry.Symbol != "AAA" || entry.Name != "Token A" || entry.LogoURI != "https://img/a.png" {
		t.Errorf("unexpected registry entry: %+v", entry)
	}
}
