// Package storage persists user outcomes of the recommendation flow in
// SQLite: module ratings and saved final selections.
package storage

import "context"

// RatingRepository defines the interface for module rating operations.
type RatingRepository interface {
	RateModule(ctx context.Context, rating ModuleRating) error
	GetRatings(ctx context.Context, userID string) ([]ModuleRating, error)
}

// SelectionRepository defines the interface for saved selection operations.
type SelectionRepository interface {
	SaveSelections(ctx context.Context, userID string, selections []ModuleSelection) error
	GetSelections(ctx context.Context, userID string) ([]ModuleSelection, error)
}

// Compile-time interface implementation checks.
var (
	_ RatingRepository    = (*DB)(nil)
	_ SelectionRepository = (*DB)(nil)
)
