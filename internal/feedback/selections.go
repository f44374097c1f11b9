// Package feedback turns a user's module ratings into a final selection.
package feedback

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/garyellow/programme-matcher/internal/catalog"
)

// Selection thresholds.
const (
	MinFavourableRating = 7
	MinSelections       = 5
	MaxSelections       = 10
)

// ErrNotEnoughRatings means fewer than MinSelections modules were rated
// favourably.
var ErrNotEnoughRatings = errors.New("feedback: not enough favourably rated modules")

// Selection is a module chosen for the final list.
type Selection struct {
	Module catalog.Module `json:"module"`
	Rating int            `json:"rating"`
	Reason string         `json:"reason"`
}

// FinalSelections keeps recommended modules rated at least
// MinFavourableRating, highest rating first with ties in recommendation
// order, capped at MaxSelections. ratings is keyed by module code.
func FinalSelections(recommended []catalog.Module, ratings map[string]int) ([]Selection, error) {
	var picked []Selection
	seen := make(map[string]bool, len(recommended))
	for _, m := range recommended {
		if seen[m.Code] {
			continue
		}
		seen[m.Code] = true

		rating, ok := ratings[m.Code]
		if !ok || rating < MinFavourableRating {
			continue
		}
		picked = append(picked, Selection{
			Module: m,
			Rating: rating,
			Reason: fmt.Sprintf("Rated %d/10 based on your preferences", rating),
		})
	}

	slices.SortStableFunc(picked, func(a, b Selection) int {
		return cmp.Compare(b.Rating, a.Rating)
	})

	if len(picked) < MinSelections {
		return []Selection{}, fmt.Errorf("%w: %d of %d needed", ErrNotEnoughRatings, len(picked), MinSelections)
	}
	return picked[:min(len(picked), MaxSelections)], nil
}
