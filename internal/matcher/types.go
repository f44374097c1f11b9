// Package matcher ranks university majors for a pair of trait codes using
// occupation-to-major reference data.
package matcher

// OccupationMajorMapping links one occupation to its trait codes and majors.
// A nil code means the occupation carries no code for that axis.
type OccupationMajorMapping struct {
	Occupation    string   `json:"occupation"`
	RIASECCode    *string  `json:"RIASEC_code"`
	WorkValueCode *string  `json:"work_value_code"`
	Majors        []string `json:"majors"`
}

// MatchType names the tier that produced a recommendation.
type MatchType string

// Match tiers in priority order. MatchPermutation is kept for response
// compatibility and is never produced.
const (
	MatchExact       MatchType = "exact"
	MatchPermutation MatchType = "permutation"
	MatchRIASEC      MatchType = "riasec"
	MatchWorkValue   MatchType = "workValue"
	MatchNone        MatchType = "none"
)

// MajorRecommendations is the outcome of matching a user's codes.
type MajorRecommendations struct {
	ExactMatches       []string  `json:"exactMatches"`
	PermutationMatches []string  `json:"permutationMatches"`
	RIASECMatches      []string  `json:"riasecMatches"`
	WorkValueMatches   []string  `json:"workValueMatches"`
	QuestionFiles      []string  `json:"questionFiles"`
	RIASECCode         string    `json:"riasecCode"`
	WorkValueCode      string    `json:"workValueCode"`
	MatchType          MatchType `json:"matchType"`
}

// Empty returns a recommendation with no matches for the given codes.
// Slices are non-nil so they encode as [] rather than null.
func Empty(riasecCode, workValueCode string) MajorRecommendations {
	return MajorRecommendations{
		ExactMatches:       []string{},
		PermutationMatches: []string{},
		RIASECMatches:      []string{},
		WorkValueMatches:   []string{},
		QuestionFiles:      []string{},
		RIASECCode:         riasecCode,
		WorkValueCode:      workValueCode,
		MatchType:          MatchNone,
	}
}

// AllMajors returns every bucket concatenated in tier order.
// Duplicates across buckets are kept.
func (r MajorRecommendations) AllMajors() []string {
	all := make([]string, 0, len(r.ExactMatches)+len(r.PermutationMatches)+len(r.RIASECMatches)+len(r.WorkValueMatches))
	all = append(all, r.ExactMatches...)
	all = append(all, r.PermutationMatches...)
	all = append(all, r.RIASECMatches...)
	all = append(all, r.WorkValueMatches...)
	return all
}

// Determining returns the bucket that set MatchType, or nil for MatchNone.
func (r MajorRecommendations) Determining() []string {
	switch r.MatchType {
	case MatchExact:
		return r.ExactMatches
	case MatchPermutation:
		return r.PermutationMatches
	case MatchRIASEC:
		return r.RIASECMatches
	case MatchWorkValue:
		return r.WorkValueMatches
	}
	return nil
}
