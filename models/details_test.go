package models

import (
	"encoding/json"
	"testing"
)

func TestWatchDetailsUnmarshal(t *testing.T) {
	src := `{
		"title": "Product",
		"url": "https://shop.example.com/p",
		"last_checked": 1700000000,
		"last_changed": "2024-01-01T00:00:00Z",
		"last_notification": {"title": "alert", "timestamp": 1700000000},
		"latest_snapshot": {"price": 10},
		"latest_data": {"in_stock": true},
		"unexpected": {"future": "field"}
	}`

	var d WatchDetails
	if err := json.Unmarshal([]byte(src), &d); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if d.Title != "Product" {
		t.Errorf("Title = %q, want Product", d.Title)
	}
	if d.URL != "https://shop.example.com/p" {
		t.Errorf("URL = %q", d.URL)
	}
	if d.LastChecked != 1700000000.0 {
		t.Errorf("LastChecked = %v", d.LastChecked)
	}
	if d.LastChanged != "2024-01-01T00:00:00Z" {
		t.Errorf("LastChanged = %v", d.LastChanged)
	}
	if d.LatestSnapshot["price"] != 10.0 {
		t.Errorf("LatestSnapshot price = %v", d.LatestSnapshot["price"])
	}
	if d.LatestData["in_stock"] != true {
		t.Errorf("LatestData in_stock = %v", d.LatestData["in_stock"])
	}
	if d.LastNotification["title"] != "alert" {
		t.Errorf("LastNotification title = %v", d.LastNotification["title"])
	}
	if _, ok := d.Raw["unexpected"]; !ok {
		t.Error("Raw should keep unknown fields")
	}
}

func TestWatchDetailsUnmarshal_WrongShapes(t *testing.T) {
	// scalar where an object is expected is tolerated, not fatal
	src := `{"title": 42, "latest_snapshot": "not an object", "last_notification": null}`

	var d WatchDetails
	if err := json.Unmarshal([]byte(src), &d); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if d.Title != "" {
		t.Errorf("Title = %q, want empty for non-string value", d.Title)
	}
	if d.LatestSnapshot != nil {
		t.Errorf("LatestSnapshot = %v, want nil", d.LatestSnapshot)
	}
}

func TestHistoryEntryAccessors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantTS  interface{}
		hasSnap bool
		hasData bool
	}{
		{"timestamp key", `{"timestamp": 1, "snapshot": {"a": 1}}`, 1.0, true, false},
		{"ts alias", `{"ts": "2024-01-01"}`, "2024-01-01", false, false},
		{"time alias", `{"time": 5}`, 5.0, false, false},
		{"date alias", `{"date": "then", "data": {"b": 2}}`, "then", false, true},
		{"no timestamp", `{"data": {}}`, nil, false, true},
		{"alias priority", `{"date": "late", "timestamp": "first"}`, "first", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e HistoryEntry
			if err := json.Unmarshal([]byte(tt.src), &e); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if ts := e.Timestamp(); ts != tt.wantTS {
				t.Errorf("Timestamp() = %v, want %v", ts, tt.wantTS)
			}
			if (e.Snapshot() != nil) != tt.hasSnap {
				t.Errorf("Snapshot() presence = %v, want %v", e.Snapshot() != nil, tt.hasSnap)
			}
			if (e.Data() != nil) != tt.hasData {
				t.Errorf("Data() presence = %v, want %v", e.Data() != nil, tt.hasData)
			}
		})
	}
}
