// Package traitcode derives ranked trait codes from scored quiz components
// and compares them.
//
// The same normalizer serves both axes: RIASEC interests ("IRC") and work
// values ("AIS", or two-letter tokens such as "Rc" for Recognition).
package traitcode

import (
	"cmp"
	"slices"
)

// MaxLength is the number of top-ranked components that make up a code.
const MaxLength = 3

// ScoredComponent is one axis label with its aggregated quiz score.
// A nil Score ranks as zero.
type ScoredComponent struct {
	Component string   `json:"component" validate:"required"`
	Score     *float64 `json:"score"`
}

// Scored is a convenience constructor for a component with a known score.
func Scored(component string, score float64) ScoredComponent {
	return ScoredComponent{Component: component, Score: &score}
}

func (c ScoredComponent) value() float64 {
	if c.Score == nil {
		return 0
	}
	return *c.Score
}

// NormalizeCode ranks components by descending score, keeps the top three,
// maps each through mapper and concatenates the non-empty tokens.
//
// Equal scores keep their input order. Components the mapper does not
// recognise are dropped, so the result may be shorter than three tokens.
func NormalizeCode(components []ScoredComponent, mapper AxisMapper) string {
	if len(components) == 0 || mapper == nil {
		return ""
	}

	ranked := slices.Clone(components)
	slices.SortStableFunc(ranked, func(a, b ScoredComponent) int {
		return cmp.Compare(b.value(), a.value())
	})

	code := make([]byte, 0, MaxLength*2)
	for _, c := range ranked[:min(MaxLength, len(ranked))] {
		code = append(code, mapper(c.Component)...)
	}
	return string(code)
}
