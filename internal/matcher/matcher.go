package matcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/garyellow/programme-matcher/internal/metrics"
)

// OccupationLoader provides the occupation-to-major reference dataset.
type OccupationLoader interface {
	Occupations(ctx context.Context) ([]OccupationMajorMapping, error)
}

// Matcher loads reference data and matches codes against it.
type Matcher struct {
	loader  OccupationLoader
	metrics *metrics.Metrics
}

// New creates a Matcher. m may be nil.
func New(loader OccupationLoader, m *metrics.Metrics) *Matcher {
	return &Matcher{loader: loader, metrics: m}
}

// GetMatchingMajors matches the codes against the current reference data.
// A load failure is logged and yields an empty result; no error is returned.
func (m *Matcher) GetMatchingMajors(ctx context.Context, riasecCode, workValueCode string) MajorRecommendations {
	start := time.Now()

	records, err := m.loader.Occupations(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load occupation mappings",
			"error", err,
			"riasec_code", riasecCode,
			"work_value_code", workValueCode)
		m.metrics.RecordRecommendation("majors", "data_error", time.Since(start).Seconds())
		m.metrics.RecordMatchTier(string(MatchNone))
		return Empty(riasecCode, workValueCode)
	}

	result := Match(records, riasecCode, workValueCode)

	outcome := "success"
	if result.MatchType == MatchNone {
		outcome = "empty"
	}
	m.metrics.RecordRecommendation("majors", outcome, time.Since(start).Seconds())
	m.metrics.RecordMatchTier(string(result.MatchType))

	slog.DebugContext(ctx, "Matched majors",
		"riasec_code", riasecCode,
		"work_value_code", workValueCode,
		"match_type", result.MatchType,
		"exact", len(result.ExactMatches),
		"riasec", len(result.RIASECMatches),
		"work_value", len(result.WorkValueMatches))

	return result
}
