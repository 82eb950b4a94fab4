package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"pricewatch/database"
	"pricewatch/models"
)

type WatchRepository struct{}

func NewWatchRepository() *WatchRepository {
	return &WatchRepository{}
}

const watchColumns = `id, user_id, watch_uuid, url, name, tags, last_price, last_stock,
	last_snapshot_at, last_failed_at, retry_count, next_retry_at, created_at, updated_at, is_active`

// AddWatch registers a change-detection watch for a user
func (r *WatchRepository) AddWatch(userID string, req *models.AddWatchRequest) (*models.TrackedWatch, error) {
	query := `
		INSERT INTO tracked_watches (user_id, watch_uuid, url, name, tags, created_at, updated_at, retry_count)
		VALUES ($1, $2, $3, $4, $5, $6, $6, 0)
		RETURNING ` + watchColumns

	now := time.Now()
	row := database.DB.QueryRow(query, userID, req.WatchUUID, req.URL, req.Name, pq.StringArray(req.Tags), now)

	watch, err := scanWatch(row)
	if err != nil {
		return nil, fmt.Errorf("failed to add watch: %v", err)
	}
	return watch, nil
}

// GetWatchesByUser returns all active watches owned by a user
func (r *WatchRepository) GetWatchesByUser(userID string) ([]models.TrackedWatch, error) {
	query := `
		SELECT ` + watchColumns + `
		FROM tracked_watches
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at DESC
	`

	rows, err := database.DB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watches: %v", err)
	}
	defer rows.Close()

	return scanWatches(rows)
}

// GetActiveWatches returns all active watches across users, for the scheduler
func (r *WatchRepository) GetActiveWatches() ([]models.TrackedWatch, error) {
	query := `
		SELECT ` + watchColumns + `
		FROM tracked_watches
		WHERE is_active = true
		ORDER BY created_at DESC
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active watches: %v", err)
	}
	defer rows.Close()

	return scanWatches(rows)
}

// GetWatchByID returns a tracked watch by ID
func (r *WatchRepository) GetWatchByID(id int) (*models.TrackedWatch, error) {
	query := `
		SELECT ` + watchColumns + `
		FROM tracked_watches
		WHERE id = $1 AND is_active = true
	`

	watch, err := scanWatch(database.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("watch not found")
		}
		return nil, fmt.Errorf("failed to get watch: %v", err)
	}
	return watch, nil
}

// UpdateSnapshot stores the latest extraction result on the watch row. A nil
// snapshot clears the denormalized columns but still bumps last_snapshot_at,
// recording that the watch was checked and carried no commerce signal.
func (r *WatchRepository) UpdateSnapshot(id int, snap *models.PriceSnapshot) error {
	query := `
		UPDATE tracked_watches
		SET last_price = $2, last_stock = $3, last_snapshot_at = $4, updated_at = $4
		WHERE id = $1
	`

	var price interface{}
	var stock interface{}
	if snap != nil {
		if snap.Price != nil {
			price = *snap.Price
		}
		switch snap.StockState {
		case models.StockIn:
			stock = true
		case models.StockOut:
			stock = false
		}
	}

	_, err := database.DB.Exec(query, id, price, stock, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update watch snapshot: %v", err)
	}
	return nil
}

// DeleteWatch soft-deletes a tracked watch
func (r *WatchRepository) DeleteWatch(id int) error {
	query := `UPDATE tracked_watches SET is_active = false WHERE id = $1`
	_, err := database.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete watch: %v", err)
	}
	return nil
}

// AddSnapshotHistory appends one extraction result to the history
func (r *WatchRepository) AddSnapshotHistory(rec *models.SnapshotRecord) error {
	query := `
		INSERT INTO snapshot_history (watch_id, price, previous_price, currency, stock_label, stock_state, context, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := database.DB.Exec(query, rec.WatchID, rec.Price, rec.PreviousPrice, rec.Currency,
		rec.StockLabel, rec.MarshalStockState(), rec.Context, rec.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to add snapshot history: %v", err)
	}
	return nil
}

// GetSnapshotHistory returns stored extraction results for a watch
func (r *WatchRepository) GetSnapshotHistory(watchID int, limit int) ([]models.SnapshotRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, watch_id, price, previous_price, currency, stock_label, stock_state, context, checked_at
		FROM snapshot_history
		WHERE watch_id = $1
		ORDER BY checked_at DESC
		LIMIT $2
	`

	rows, err := database.DB.Query(query, watchID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot history: %v", err)
	}
	defer rows.Close()

	var history []models.SnapshotRecord
	for rows.Next() {
		var rec models.SnapshotRecord
		var stock sql.NullBool
		var context sql.NullString
		err := rows.Scan(
			&rec.ID, &rec.WatchID, &rec.Price, &rec.PreviousPrice, &rec.Currency,
			&rec.StockLabel, &stock, &context, &rec.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot history: %v", err)
		}
		rec.StockState = models.StockUnknown
		if stock.Valid {
			if stock.Bool {
				rec.StockState = models.StockIn
			} else {
				rec.StockState = models.StockOut
			}
		}
		rec.Context = context.String
		history = append(history, rec)
	}

	return history, nil
}

// MarkCheckFailed marks an upstream fetch as failed and schedules a retry
func (r *WatchRepository) MarkCheckFailed(id int) error {
	query := `
		UPDATE tracked_watches
		SET last_failed_at = $1, retry_count = retry_count + 1, next_retry_at = $2, updated_at = $1
		WHERE id = $3
	`

	now := time.Now()
	nextRetry := now.Add(10 * time.Minute)

	_, err := database.DB.Exec(query, now, nextRetry, id)
	if err != nil {
		return fmt.Errorf("failed to mark check as failed: %v", err)
	}
	return nil
}

// MarkCheckSuccess resets retry state after a successful fetch
func (r *WatchRepository) MarkCheckSuccess(id int) error {
	query := `
		UPDATE tracked_watches
		SET last_failed_at = NULL, retry_count = 0, next_retry_at = NULL, updated_at = $1
		WHERE id = $2
	`

	_, err := database.DB.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark check as successful: %v", err)
	}
	return nil
}

// GetWatchesForRetry returns watches whose last fetch failed and whose
// backoff window has elapsed
func (r *WatchRepository) GetWatchesForRetry() ([]models.TrackedWatch, error) {
	query := `
		SELECT ` + watchColumns + `
		FROM tracked_watches
		WHERE is_active = true
		AND last_failed_at IS NOT NULL
		AND (next_retry_at IS NULL OR next_retry_at <= $1)
		AND retry_count < 5
		ORDER BY next_retry_at ASC
	`

	rows, err := database.DB.Query(query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to get watches for retry: %v", err)
	}
	defer rows.Close()

	return scanWatches(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWatch(row rowScanner) (*models.TrackedWatch, error) {
	var w models.TrackedWatch
	err := row.Scan(
		&w.ID, &w.UserID, &w.WatchUUID, &w.URL, &w.Name, &w.Tags,
		&w.LastPrice, &w.LastStock, &w.LastSnapshotAt, &w.LastFailedAt,
		&w.RetryCount, &w.NextRetryAt, &w.CreatedAt, &w.UpdatedAt, &w.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanWatches(rows *sql.Rows) ([]models.TrackedWatch, error) {
	var watches []models.TrackedWatch
	for rows.Next() {
		watch, err := scanWatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watch: %v", err)
		}
		watches = append(watches, *watch)
	}
	return watches, nil
}
