package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// TrackedWatch maps an owning user to one change-detection watch and carries
// the last extracted commerce signal in denormalized columns.
type TrackedWatch struct {
	ID             int            `json:"id" db:"id"`
	UserID         string         `json:"user_id" db:"user_id"`
	WatchUUID      string         `json:"watch_uuid" db:"watch_uuid"`
	URL            string         `json:"url" db:"url"`
	Name           string         `json:"name" db:"name"`
	Tags           pq.StringArray `json:"tags" db:"tags"`
	LastPrice      sql.NullString `json:"last_price" db:"last_price"`
	LastStock      sql.NullBool   `json:"last_stock" db:"last_stock"`
	LastSnapshotAt *time.Time     `json:"last_snapshot_at" db:"last_snapshot_at"`
	LastFailedAt   *time.Time     `json:"last_failed_at" db:"last_failed_at"`
	RetryCount     int            `json:"retry_count" db:"retry_count"`
	NextRetryAt    *time.Time     `json:"next_retry_at" db:"next_retry_at"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
	IsActive       bool           `json:"is_active" db:"is_active"`
}

// HasSnapshot returns true if the watch has ever produced a price snapshot.
func (w *TrackedWatch) HasSnapshot() bool {
	return w.LastSnapshotAt != nil
}

// CanRetry returns true if the watch can be retried now.
func (w *TrackedWatch) CanRetry() bool {
	if w.NextRetryAt == nil {
		return true
	}
	return time.Now().After(*w.NextRetryAt)
}

// ShouldRetry returns true if the last upstream fetch failed and another
// attempt is due.
func (w *TrackedWatch) ShouldRetry() bool {
	return w.LastFailedAt != nil && w.CanRetry() && w.RetryCount < 5
}

// GetRetryDelay returns the delay before the next retry based on how many
// attempts have already failed.
func (w *TrackedWatch) GetRetryDelay() time.Duration {
	switch w.RetryCount {
	case 0:
		return 10 * time.Minute
	case 1:
		return 30 * time.Minute
	case 2:
		return 1 * time.Hour
	case 3:
		return 3 * time.Hour
	case 4:
		return 6 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// MarshalJSON renders the nullable columns as plain values or null.
func (w *TrackedWatch) MarshalJSON() ([]byte, error) {
	type Alias TrackedWatch
	return json.Marshal(&struct {
		*Alias
		LastPrice *string `json:"last_price"`
		LastStock *bool   `json:"last_stock"`
	}{
		Alias:     (*Alias)(w),
		LastPrice: w.lastPricePtr(),
		LastStock: w.lastStockPtr(),
	})
}

func (w *TrackedWatch) lastPricePtr() *string {
	if w.LastPrice.Valid {
		p := w.LastPrice.String
		return &p
	}
	return nil
}

func (w *TrackedWatch) lastStockPtr() *bool {
	if w.LastStock.Valid {
		b := w.LastStock.Bool
		return &b
	}
	return nil
}

// AddWatchRequest is the request to register an existing change-detection
// watch with this service.
type AddWatchRequest struct {
	WatchUUID string   `json:"watch_uuid" validate:"required"`
	URL       string   `json:"url" validate:"required,url"`
	Name      string   `json:"name" validate:"required"`
	Tags      []string `json:"tags"`
}

// RefreshResponse is returned by the synchronous refresh endpoint. A nil
// Snapshot with Found=false means the watch carries no commerce signal.
type RefreshResponse struct {
	WatchID  int            `json:"watch_id"`
	Found    bool           `json:"found"`
	Snapshot *PriceSnapshot `json:"snapshot,omitempty"`
}
