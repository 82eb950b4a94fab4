package models

import (
	"encoding/json"
	"time"
)

// TriState represents a stock status that may be affirmative, negative or
// simply not determinable from the upstream payload. "unknown" is distinct
// from "out of stock": an absent key is not a sold-out product.
type TriState int8

const (
	StockUnknown TriState = iota
	StockOut
	StockIn
)

func (t TriState) String() string {
	switch t {
	case StockIn:
		return "true"
	case StockOut:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the tri-state as true/false/null so API consumers
// can distinguish "out of stock" from "no stock signal".
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case StockIn:
		return []byte("true"), nil
	case StockOut:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts true/false/null.
func (t *TriState) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*t = StockIn
	case "false":
		*t = StockOut
	default:
		*t = StockUnknown
	}
	return nil
}

// PriceSnapshot is the canonical commerce record extracted from one watch:
// whatever price, currency, stock and image information could be located in
// the upstream payload, normalized for display. A nil *PriceSnapshot means
// "no commerce signal found anywhere" and is a normal outcome, not an error.
type PriceSnapshot struct {
	Price         *string  `json:"price"`
	PreviousPrice *string  `json:"previous_price"`
	Currency      *string  `json:"currency"`
	StockLabel    string   `json:"stock_label"`
	StockState    TriState `json:"stock_state"`
	ImageURL      *string  `json:"image_url,omitempty"`
	Context       string   `json:"context,omitempty"`
	Timestamp     string   `json:"timestamp,omitempty"`
}

// HasPrice returns true if the snapshot carries a current price.
func (s *PriceSnapshot) HasPrice() bool {
	return s != nil && s.Price != nil && *s.Price != ""
}

// SnapshotRecord is one persisted extraction result for a tracked watch.
type SnapshotRecord struct {
	ID            int       `json:"id" db:"id"`
	WatchID       int       `json:"watch_id" db:"watch_id"`
	Price         *string   `json:"price" db:"price"`
	PreviousPrice *string   `json:"previous_price" db:"previous_price"`
	Currency      *string   `json:"currency" db:"currency"`
	StockLabel    string    `json:"stock_label" db:"stock_label"`
	StockState    TriState  `json:"stock_state" db:"stock_state"`
	Context       string    `json:"context" db:"context"`
	CheckedAt     time.Time `json:"checked_at" db:"checked_at"`
}

// NewSnapshotRecord builds a history row from an extraction result.
func NewSnapshotRecord(watchID int, snap *PriceSnapshot) *SnapshotRecord {
	rec := &SnapshotRecord{
		WatchID:   watchID,
		CheckedAt: time.Now(),
	}
	if snap != nil {
		rec.Price = snap.Price
		rec.PreviousPrice = snap.PreviousPrice
		rec.Currency = snap.Currency
		rec.StockLabel = snap.StockLabel
		rec.StockState = snap.StockState
		rec.Context = snap.Context
	}
	return rec
}

// MarshalStockState is used by repositories that store the tri-state as a
// nullable boolean column.
func (s *SnapshotRecord) MarshalStockState() interface{} {
	switch s.StockState {
	case StockIn:
		return true
	case StockOut:
		return false
	default:
		return nil
	}
}

var _ json.Marshaler = TriState(0)
