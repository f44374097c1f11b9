package matcher

import (
	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/sliceutil"
	"github.com/garyellow/programme-matcher/internal/traitcode"
)

// RecordsPerTier is how many occupation records each tier draws majors from.
const RecordsPerTier = 3

// Match sorts occupations into tiers for the user's codes.
//
// Tiers exclude by record, not by major: a major consumed by an exact-tier
// record can reappear in a lower tier through a different record.
// Records without a majors list never match.
func Match(records []OccupationMajorMapping, riasecCode, workValueCode string) MajorRecommendations {
	result := Empty(riasecCode, workValueCode)

	isExact := func(r OccupationMajorMapping) bool {
		return r.RIASECCode != nil && r.WorkValueCode != nil &&
			*r.RIASECCode == riasecCode && *r.WorkValueCode == workValueCode
	}
	isRIASEC := func(r OccupationMajorMapping) bool {
		if r.RIASECCode == nil {
			return false
		}
		code := *r.RIASECCode
		if len(code) <= 2 {
			return traitcode.MatchShortCode(code, riasecCode)
		}
		return code == riasecCode
	}
	isWorkValue := func(r OccupationMajorMapping) bool {
		return r.WorkValueCode != nil && *r.WorkValueCode == workValueCode
	}

	result.ExactMatches = collect(records, isExact)
	result.RIASECMatches = collect(records, func(r OccupationMajorMapping) bool {
		return isRIASEC(r) && !isExact(r)
	})
	result.WorkValueMatches = collect(records, func(r OccupationMajorMapping) bool {
		return isWorkValue(r) && !isExact(r) && !isRIASEC(r)
	})

	switch {
	case len(result.ExactMatches) > 0:
		result.MatchType = MatchExact
	case len(result.RIASECMatches) > 0:
		result.MatchType = MatchRIASEC
	case len(result.WorkValueMatches) > 0:
		result.MatchType = MatchWorkValue
	}

	for _, major := range result.Determining() {
		result.QuestionFiles = append(result.QuestionFiles, majorname.SanitizeToFilename(major))
	}

	return result
}

// collect flattens the majors of the first RecordsPerTier usable records
// accepted by keep, removing repeated names.
func collect(records []OccupationMajorMapping, keep func(OccupationMajorMapping) bool) []string {
	majors := []string{}
	taken := 0
	for _, r := range records {
		if taken == RecordsPerTier {
			break
		}
		if r.Majors == nil || !keep(r) {
			continue
		}
		majors = append(majors, r.Majors...)
		taken++
	}
	return sliceutil.Unique(majors)
}
