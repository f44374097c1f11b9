// Package recommend turns matched majors into concrete course modules using
// each institution's prefix table and module catalog.
package recommend

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garyellow/programme-matcher/internal/catalog"
	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/matcher"
	"github.com/garyellow/programme-matcher/internal/metrics"
	"github.com/garyellow/programme-matcher/internal/sliceutil"
)

// Defaults applied when a cap is not positive.
const (
	DefaultMajorCap        = 5
	DefaultModulesPerMajor = 2
	DefaultLoadTimeout     = 15 * time.Second
)

// Reasons a major contributes no modules.
const (
	SkipNoInstitution = "no_institution"
	SkipNoPrefixes    = "no_prefixes"
)

// ReferenceLoader provides the prefix tables and institution catalogs.
type ReferenceLoader interface {
	PrefixMaps(ctx context.Context) (catalog.PrefixMaps, error)
	Catalog(ctx context.Context, inst majorname.Institution) ([]catalog.Module, error)
}

// Recommender selects modules for recommended majors.
type Recommender struct {
	loader  ReferenceLoader
	metrics *metrics.Metrics
	timeout time.Duration
}

// New creates a Recommender. m may be nil; a non-positive timeout uses
// DefaultLoadTimeout.
func New(loader ReferenceLoader, m *metrics.Metrics, timeout time.Duration) *Recommender {
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	return &Recommender{loader: loader, metrics: m, timeout: timeout}
}

type settings struct {
	majorCap        int
	modulesPerMajor int
}

// Option adjusts a single recommendation.
type Option func(*settings)

// WithMajorCap limits how many distinct majors are considered.
func WithMajorCap(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.majorCap = n
		}
	}
}

// WithModulesPerMajor limits how many modules each major contributes.
func WithModulesPerMajor(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.modulesPerMajor = n
		}
	}
}

type target struct {
	major       string
	bare        string
	institution majorname.Institution
}

// FetchModuleRecommendations returns modules for the recommended majors in
// major-then-catalog order. The same module may appear under two majors.
//
// A failure to load the prefix tables or any needed catalog yields an empty
// list; partial results are never returned. The error is logged, not
// returned.
func (r *Recommender) FetchModuleRecommendations(ctx context.Context, recs matcher.MajorRecommendations, opts ...Option) []catalog.Module {
	start := time.Now()
	s := settings{majorCap: DefaultMajorCap, modulesPerMajor: DefaultModulesPerMajor}
	for _, opt := range opts {
		opt(&s)
	}

	modules, err := r.recommend(ctx, recs, s)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load reference data for module recommendations",
			"error", err,
			"riasec_code", recs.RIASECCode,
			"work_value_code", recs.WorkValueCode)
		r.metrics.RecordRecommendation("modules", "data_error", time.Since(start).Seconds())
		return []catalog.Module{}
	}

	outcome := "success"
	if len(modules) == 0 {
		outcome = "empty"
	}
	r.metrics.RecordRecommendation("modules", outcome, time.Since(start).Seconds())
	r.metrics.RecordModulesReturned(len(modules))
	return modules
}

func (r *Recommender) recommend(ctx context.Context, recs matcher.MajorRecommendations, s settings) ([]catalog.Module, error) {
	majors := sliceutil.Take(sliceutil.Unique(recs.AllMajors()), s.majorCap)

	targets := make([]target, 0, len(majors))
	for _, major := range majors {
		inst, ok := majorname.InstitutionSuffix(major)
		if !ok {
			slog.WarnContext(ctx, "Skipping major without institution", "major", major)
			r.metrics.RecordMajorSkipped(SkipNoInstitution)
			continue
		}
		targets = append(targets, target{
			major:       major,
			bare:        majorname.StripInstitution(major),
			institution: inst,
		})
	}
	if len(targets) == 0 {
		return []catalog.Module{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prefixMaps, err := r.loader.PrefixMaps(ctx)
	if err != nil {
		return nil, err
	}

	prefixes := make([][]string, len(targets))
	var needed []majorname.Institution
	for i, t := range targets {
		prefixes[i] = prefixMaps.PrefixesForMajor(t.institution, t.bare)
		if len(prefixes[i]) == 0 {
			slog.WarnContext(ctx, "Skipping major without course prefixes",
				"major", t.major,
				"institution", t.institution)
			r.metrics.RecordMajorSkipped(SkipNoPrefixes)
			continue
		}
		needed = append(needed, t.institution)
	}

	catalogs, err := r.loadCatalogs(ctx, sliceutil.Unique(needed))
	if err != nil {
		return nil, err
	}

	out := make([]catalog.Module, 0, len(targets)*s.modulesPerMajor)
	for i, t := range targets {
		if len(prefixes[i]) == 0 {
			continue
		}
		matched := catalog.MatchPrefixes(catalogs[t.institution], prefixes[i], s.modulesPerMajor)
		slog.DebugContext(ctx, "Selected modules for major",
			"major", t.major,
			"prefixes", prefixes[i],
			"modules", len(matched))
		out = append(out, matched...)
	}
	return out, nil
}

// loadCatalogs loads every institution concurrently and fails as a whole.
func (r *Recommender) loadCatalogs(ctx context.Context, insts []majorname.Institution) (map[majorname.Institution][]catalog.Module, error) {
	results := make([][]catalog.Module, len(insts))
	g, gctx := errgroup.WithContext(ctx)
	for i, inst := range insts {
		g.Go(func() error {
			modules, err := r.loader.Catalog(gctx, inst)
			if err != nil {
				return err
			}
			results[i] = modules
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalogs := make(map[majorname.Institution][]catalog.Module, len(insts))
	for i, inst := range insts {
		catalogs[inst] = results[i]
	}
	return catalogs, nil
}
