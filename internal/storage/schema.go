package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createRatingsTable(ctx, db); err != nil {
		return err
	}
	return createSelectionsTable(ctx, db)
}

func createRatingsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS module_ratings (
		user_id TEXT NOT NULL,
		module_id INTEGER NOT NULL,
		module_code TEXT NOT NULL,
		module_prefix TEXT NOT NULL,
		institution TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK(rating BETWEEN 1 AND 10),
		rated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, module_code)
	);
	CREATE INDEX IF NOT EXISTS idx_module_ratings_prefix ON module_ratings(module_prefix);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create module_ratings table: %w", err)
	}
	return nil
}

func createSelectionsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS module_selections (
		user_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		module_id INTEGER NOT NULL,
		module_code TEXT NOT NULL,
		institution TEXT NOT NULL,
		title TEXT NOT NULL,
		reason TEXT NOT NULL,
		selected_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, module_code)
	);
	CREATE INDEX IF NOT EXISTS idx_module_selections_user ON module_selections(user_id, position);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create module_selections table: %w", err)
	}
	return nil
}
