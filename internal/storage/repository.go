package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garyellow/programme-matcher/internal/catalog"
	apperrors "github.com/garyellow/programme-matcher/internal/errors"
)

// slowQuery is the duration above which an operation is logged as slow.
const slowQuery = 100 * time.Millisecond

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewValidationError("userId", "user id is required")
	}
	if len(userID) > 128 {
		return apperrors.NewValidationError("userId", "user id too long")
	}
	return nil
}

func warnIfSlow(ctx context.Context, operation string, start time.Time, args ...any) {
	if duration := time.Since(start); duration > slowQuery {
		slog.WarnContext(ctx, "slow database operation",
			append([]any{"operation", operation, "duration_ms", duration.Milliseconds()}, args...)...)
	}
}

// RateModule inserts or updates a rating. A user has one rating per module
// code; the prefix is derived from the code.
func (db *DB) RateModule(ctx context.Context, r ModuleRating) error {
	if err := validateUserID(r.UserID); err != nil {
		return err
	}
	code := strings.TrimSpace(r.ModuleCode)
	if code == "" {
		return apperrors.NewValidationError("moduleCode", "module code is required")
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return apperrors.NewValidationError("rating", fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	moduleID := r.ModuleID
	if moduleID == 0 {
		moduleID = catalog.ModuleID(code)
	}

	query := `
		INSERT INTO module_ratings (user_id, module_id, module_code, module_prefix, institution, rating, rated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, module_code) DO UPDATE SET
			module_id = excluded.module_id,
			module_prefix = excluded.module_prefix,
			institution = excluded.institution,
			rating = excluded.rating,
			rated_at = excluded.rated_at
	`
	start := time.Now()
	_, err := db.writer.ExecContext(ctx, query,
		r.UserID, moduleID, code, catalog.CodePrefix(code), r.Institution, r.Rating, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save module rating",
			"module_code", code,
			"error", err)
		return fmt.Errorf("failed to save module rating: %w", err)
	}
	warnIfSlow(ctx, "RateModule", start, "module_code", code)
	return nil
}

// GetRatings returns a user's ratings, most recent first. A user without
// ratings gets an empty slice.
func (db *DB) GetRatings(ctx context.Context, userID string) ([]ModuleRating, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	query := `
		SELECT user_id, module_id, module_code, module_prefix, institution, rating, rated_at
		FROM module_ratings
		WHERE user_id = ?
		ORDER BY rated_at DESC, module_code ASC
	`
	start := time.Now()
	rows, err := db.reader.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query module ratings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ratings := []ModuleRating{}
	for rows.Next() {
		var r ModuleRating
		if err := rows.Scan(&r.UserID, &r.ModuleID, &r.ModuleCode, &r.ModulePrefix, &r.Institution, &r.Rating, &r.RatedAt); err != nil {
			return nil, fmt.Errorf("scan module rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	warnIfSlow(ctx, "GetRatings", start, "count", len(ratings))
	return ratings, nil
}

// SaveSelections replaces a user's saved selection with selections, keeping
// their order. Duplicate module codes keep the first entry.
func (db *DB) SaveSelections(ctx context.Context, userID string, selections []ModuleSelection) error {
	if err := validateUserID(userID); err != nil {
		return err
	}

	start := time.Now()
	selectedAt := time.Now().Unix()
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM module_selections WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear module selections: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO module_selections (user_id, position, module_id, module_code, institution, title, reason, selected_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, module_code) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("prepare module selection insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, s := range selections {
			code := strings.TrimSpace(s.ModuleCode)
			if code == "" {
				return apperrors.NewValidationError("moduleCode", fmt.Sprintf("selection %d has no module code", i))
			}
			moduleID := s.ModuleID
			if moduleID == 0 {
				moduleID = catalog.ModuleID(code)
			}
			if _, err := stmt.ExecContext(ctx, userID, i, moduleID, code, s.Institution, s.Title, s.Reason, selectedAt); err != nil {
				slog.ErrorContext(ctx, "failed to save module selection",
					"module_code", code,
					"error", err)
				return fmt.Errorf("failed to save module selection %s: %w", code, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "batch operation completed",
		"operation", "SaveSelections",
		"count", len(selections),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// GetSelections returns a user's saved selection in saved order.
func (db *DB) GetSelections(ctx context.Context, userID string) ([]ModuleSelection, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	query := `
		SELECT user_id, module_id, module_code, institution, title, reason, selected_at
		FROM module_selections
		WHERE user_id = ?
		ORDER BY position ASC
	`
	rows, err := db.reader.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query module selections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	selections := []ModuleSelection{}
	for rows.Next() {
		var s ModuleSelection
		if err := rows.Scan(&s.UserID, &s.ModuleID, &s.ModuleCode, &s.Institution, &s.Title, &s.Reason, &s.SelectedAt); err != nil {
			return nil, fmt.Errorf("scan module selection: %w", err)
		}
		selections = append(selections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return selections, nil
}
