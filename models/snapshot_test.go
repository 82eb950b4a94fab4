package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTriStateJSON(t *testing.T) {
	tests := []struct {
		state TriState
		want  string
	}{
		{StockIn, "true"},
		{StockOut, "false"},
		{StockUnknown, "null"},
	}

	for _, tt := range tests {
		b, err := json.Marshal(tt.state)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(b) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.state, b, tt.want)
		}

		var back TriState
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if back != tt.state {
			t.Errorf("round trip: got %v, want %v", back, tt.state)
		}
	}
}

func TestPriceSnapshotJSON(t *testing.T) {
	price := "USD 19.50"
	snap := &PriceSnapshot{
		Price:      &price,
		StockLabel: "In stock",
		StockState: StockIn,
		Context:    "latest_snapshot",
	}

	b, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"price":"USD 19.50"`) {
		t.Errorf("missing price: %s", s)
	}
	if !strings.Contains(s, `"stock_state":true`) {
		t.Errorf("stock_state should encode as bare true: %s", s)
	}
	if !strings.Contains(s, `"previous_price":null`) {
		t.Errorf("absent previous price should be explicit null: %s", s)
	}
}

func TestNewSnapshotRecord(t *testing.T) {
	rec := NewSnapshotRecord(7, nil)
	if rec.WatchID != 7 {
		t.Errorf("WatchID = %d", rec.WatchID)
	}
	if rec.Price != nil {
		t.Error("nil snapshot should leave price nil")
	}
	if rec.MarshalStockState() != nil {
		t.Error("unknown stock should persist as NULL")
	}

	price := "9.99"
	rec = NewSnapshotRecord(7, &PriceSnapshot{Price: &price, StockState: StockOut})
	if rec.Price == nil || *rec.Price != "9.99" {
		t.Errorf("Price = %v", rec.Price)
	}
	if v, ok := rec.MarshalStockState().(bool); !ok || v {
		t.Errorf("MarshalStockState() = %v, want false", rec.MarshalStockState())
	}
}
