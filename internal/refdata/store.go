package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/garyellow/programme-matcher/internal/catalog"
	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/matcher"
	"github.com/garyellow/programme-matcher/internal/metrics"
)

// Default cache settings.
const (
	DefaultTTL         = time.Hour
	DefaultLoadTimeout = 15 * time.Second
)

// Cache layers used for metrics labels.
const (
	layerMemory = "memory"
	layerRemote = "remote"
)

// RemoteCache is a shared byte cache consulted between the in-process cache
// and the Source. A miss returns ok == false and a nil error.
type RemoteCache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

type entry struct {
	value   any
	expires time.Time
}

// Store serves decoded reference documents. It is safe for concurrent use.
type Store struct {
	source  Source
	remote  RemoteCache
	metrics *metrics.Metrics
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
}

// Option configures a Store.
type Option func(*Store)

// WithRemoteCache adds a shared cache layer.
func WithRemoteCache(c RemoteCache) Option {
	return func(s *Store) { s.remote = c }
}

// WithTTL sets how long decoded documents stay in memory.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLoadTimeout bounds a single shared load.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMetrics records cache and load metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a Store reading from src.
func NewStore(src Source, opts ...Option) *Store {
	s := &Store{
		source:  src,
		ttl:     DefaultTTL,
		timeout: DefaultLoadTimeout,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SourceName reports where documents are read from.
func (s *Store) SourceName() string {
	return s.source.Name()
}

// Invalidate drops every decoded document held in memory.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
}

func (s *Store) lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (s *Store) store(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expires: s.now().Add(s.ttl)}
}

// cached returns the in-memory value for key or runs load once for all
// concurrent callers. The shared load is detached from the caller's
// cancellation and bounded by the store timeout instead.
func (s *Store) cached(ctx context.Context, kind, key string, load func(context.Context) (any, error)) (any, error) {
	if v, ok := s.lookup(key); ok {
		s.metrics.RecordCacheHit(layerMemory)
		return v, nil
	}
	s.metrics.RecordCacheMiss(layerMemory)

	ch := s.group.DoChan(key, func() (any, error) {
		if v, ok := s.lookup(key); ok {
			return v, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.store(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, apperrors.NewReferenceDataError(key, ctx.Err())
	case res := <-ch:
		if res.Shared {
			s.metrics.RecordSingleflightDedup(kind)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	}
}

// document loads, validates and decodes one raw document.
func (s *Store) document(ctx context.Context, kind, key string, schema *Schema, decode func([]byte) (any, error)) (any, error) {
	return s.cached(ctx, kind, key, func(ctx context.Context) (any, error) {
		if v, ok := s.fromRemote(ctx, key, schema, decode); ok {
			return v, nil
		}

		start := time.Now()
		data, err := s.source.Read(ctx, key)
		if err == nil {
			err = schema.Validate(data)
		}
		var v any
		if err == nil {
			v, err = decode(data)
		}
		if err != nil {
			s.metrics.RecordReferenceLoad(kind, "error", time.Since(start).Seconds())
			return nil, apperrors.NewReferenceDataError(key, err)
		}
		s.metrics.RecordReferenceLoad(kind, "success", time.Since(start).Seconds())

		if s.remote != nil {
			if err := s.remote.Set(ctx, key, data, s.ttl); err != nil {
				slog.WarnContext(ctx, "Failed to populate remote cache", "key", key, "error", err)
			}
		}
		return v, nil
	})
}

// fromRemote returns the decoded remote copy. Remote failures and corrupt
// entries fall through to the source.
func (s *Store) fromRemote(ctx context.Context, key string, schema *Schema, decode func([]byte) (any, error)) (any, bool) {
	if s.remote == nil {
		return nil, false
	}
	data, ok, err := s.remote.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Remote cache unavailable", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		s.metrics.RecordCacheMiss(layerRemote)
		return nil, false
	}
	if err := schema.Validate(data); err != nil {
		slog.WarnContext(ctx, "Discarding invalid remote cache entry", "key", key, "error", err)
		return nil, false
	}
	v, err := decode(data)
	if err != nil {
		slog.WarnContext(ctx, "Discarding undecodable remote cache entry", "key", key, "error", err)
		return nil, false
	}
	s.metrics.RecordCacheHit(layerRemote)
	return v, true
}

func decodeJSON[T any](data []byte) (any, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// Fetch loads the document at key and decodes it as JSON into T. schema may
// be nil. Values are shared between callers and must not be modified.
func Fetch[T any](ctx context.Context, s *Store, kind, key string, schema *Schema) (T, error) {
	var zero T
	v, err := s.document(ctx, kind, key, schema, decodeJSON[T])
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Occupations returns the occupation to major mapping records. Records that
// do not decode are logged and skipped so one bad entry leaves the rest usable.
func (s *Store) Occupations(ctx context.Context) ([]matcher.OccupationMajorMapping, error) {
	v, err := s.document(ctx, KindOccupations, KeyOccupations, occupationsSchema, func(data []byte) (any, error) {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		records := make([]matcher.OccupationMajorMapping, 0, len(raw))
		for i, r := range raw {
			var rec matcher.OccupationMajorMapping
			if err := json.Unmarshal(r, &rec); err != nil {
				slog.WarnContext(ctx, "Skipping malformed occupation record", "index", i, "error", err)
				continue
			}
			records = append(records, rec)
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]matcher.OccupationMajorMapping), nil
}

// PrefixMaps returns the course-code prefix tables of every institution.
func (s *Store) PrefixMaps(ctx context.Context) (catalog.PrefixMaps, error) {
	return Fetch[catalog.PrefixMaps](ctx, s, KindPrefixMaps, KeyPrefixMaps, prefixMapsSchema)
}

// Catalog returns the module catalog of inst in file order. Entries with a
// blank code are dropped.
func (s *Store) Catalog(ctx context.Context, inst majorname.Institution) ([]catalog.Module, error) {
	if !inst.Valid() {
		return nil, apperrors.NewValidationError("institution", fmt.Sprintf("unknown institution %q", inst))
	}
	v, err := s.document(ctx, KindCatalog, CatalogKey(inst), catalogSchema, func(data []byte) (any, error) {
		var records []catalogRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		modules := make([]catalog.Module, 0, len(records))
		for _, r := range records {
			if m, ok := r.module(inst); ok {
				modules = append(modules, m)
			}
		}
		return modules, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Module), nil
}

// catalogRecord accepts both catalog file entries and rows exported from the
// course database, which carry course_code instead of modulecode.
type catalogRecord struct {
	catalog.CatalogEntry
	CourseCode string   `json:"course_code"`
	University string   `json:"university"`
	Units      *float64 `json:"aus_cus"`
	Semester   string   `json:"semester"`
}

func (r catalogRecord) module(inst majorname.Institution) (catalog.Module, bool) {
	if strings.TrimSpace(r.ModuleCode) != "" {
		return catalog.FromCatalogEntry(r.CatalogEntry, inst), true
	}
	if strings.TrimSpace(r.CourseCode) == "" {
		return catalog.Module{}, false
	}
	m := catalog.FromSyncedModule(catalog.SyncedModule{
		ID:          r.ID,
		University:  r.University,
		CourseCode:  r.CourseCode,
		Title:       r.Title,
		Units:       r.Units,
		Semester:    r.Semester,
		Description: r.Description,
	})
	m.Institution = inst
	return m, true
}

// Catalogs loads every institution's catalog concurrently.
func (s *Store) Catalogs(ctx context.Context) (map[majorname.Institution][]catalog.Module, error) {
	results := make([][]catalog.Module, len(majorname.Institutions))
	g, gctx := errgroup.WithContext(ctx)
	for i, inst := range majorname.Institutions {
		g.Go(func() error {
			modules, err := s.Catalog(gctx, inst)
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

	out := make(map[majorname.Institution][]catalog.Module, len(results))
	for i, inst := range majorname.Institutions {
		out[inst] = results[i]
	}
	return out, nil
}

const searchIndexKey = "derived/search_index"

// SearchIndex returns a keyword index over every institution's catalog. It is
// rebuilt whenever it expires from memory.
func (s *Store) SearchIndex(ctx context.Context) (*catalog.Index, error) {
	v, err := s.cached(ctx, KindSearchIndex, searchIndexKey, func(ctx context.Context) (any, error) {
		start := time.Now()
		catalogs, err := s.Catalogs(ctx)
		if err != nil {
			return nil, err
		}
		var all []catalog.Module
		for _, inst := range majorname.Institutions {
			all = append(all, catalogs[inst]...)
		}
		idx, err := catalog.NewIndex(all)
		if err != nil {
			s.metrics.RecordReferenceLoad(KindSearchIndex, "error", time.Since(start).Seconds())
			return nil, apperrors.NewReferenceDataError(searchIndexKey, err)
		}
		s.metrics.RecordReferenceLoad(KindSearchIndex, "success", time.Since(start).Seconds())
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.Index), nil
}
