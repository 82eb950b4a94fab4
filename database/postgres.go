package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDatabase initializes the database connection
func InitDatabase() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var err error
	DB, err = sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	log.Println("Successfully connected to database")
	return nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tracked_watches (
			id SERIAL PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			watch_uuid VARCHAR(64) NOT NULL,
			url TEXT NOT NULL,
			name TEXT NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			last_price TEXT,
			last_stock BOOLEAN,
			last_snapshot_at TIMESTAMP,
			last_failed_at TIMESTAMP,
			retry_count INTEGER DEFAULT 0,
			next_retry_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN DEFAULT TRUE,
			UNIQUE (user_id, watch_uuid)
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_history (
			id SERIAL PRIMARY KEY,
			watch_id INTEGER REFERENCES tracked_watches(id) ON DELETE CASCADE,
			price TEXT,
			previous_price TEXT,
			currency TEXT,
			stock_label TEXT NOT NULL DEFAULT 'Unknown',
			stock_state BOOLEAN,
			context TEXT,
			checked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_tracked_watches_user ON tracked_watches (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tracked_watches_retry ON tracked_watches (last_failed_at, next_retry_at, retry_count)
		WHERE last_failed_at IS NOT NULL AND retry_count < 5`,
		`CREATE INDEX IF NOT EXISTS idx_snapshot_history_watch ON snapshot_history (watch_id, checked_at)`,
	}

	for _, query := range queries {
		_, err := DB.Exec(query)
		if err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
