package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
// Record methods are no-ops on a nil *Metrics so components can run without a registry.
type Metrics struct {
	// Recommendation metrics
	RecommendationsTotal   *prometheus.CounterVec
	RecommendationDuration *prometheus.HistogramVec
	MatchTierTotal         *prometheus.CounterVec
	ModulesReturned        prometheus.Histogram
	MajorsSkippedTotal     *prometheus.CounterVec

	// Reference data metrics
	ReferenceLoadsTotal   *prometheus.CounterVec
	ReferenceLoadDuration *prometheus.HistogramVec
	CacheHitsTotal        *prometheus.CounterVec
	CacheMissesTotal      *prometheus.CounterVec
	SingleflightDedup     *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Assistant metrics
	AssistantCallsTotal   *prometheus.CounterVec
	AssistantTokensTotal  prometheus.Counter
	AssistantCallDuration prometheus.Histogram

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterUsers   *prometheus.GaugeVec

	// Warmup metrics
	WarmupTasksTotal *prometheus.CounterVec
	WarmupDuration   prometheus.Histogram
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		RecommendationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_recommendations_total",
				Help: "Total recommendation operations by operation and outcome",
			},
			[]string{"operation", "outcome"}, // operation: majors, modules; outcome: success, empty, data_error
		),

		RecommendationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pm_recommendation_duration_seconds",
				Help:    "Recommendation operation duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
			},
			[]string{"operation"},
		),

		MatchTierTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_match_tier_total",
				Help: "Major matches by determining tier",
			},
			[]string{"match_type"}, // exact, riasec, workValue, none
		),

		ModulesReturned: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pm_modules_returned",
				Help:    "Number of modules returned per module recommendation",
				Buckets: []float64{0, 1, 2, 4, 6, 8, 10, 20},
			},
		),

		MajorsSkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_majors_skipped_total",
				Help: "Majors dropped from module recommendation by reason",
			},
			[]string{"reason"}, // no_institution, no_prefixes
		),

		ReferenceLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_reference_loads_total",
				Help: "Reference document loads from the source by kind and status",
			},
			[]string{"kind", "status"}, // kind: occupations, prefix_maps, catalog, questions
		),

		ReferenceLoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pm_reference_load_duration_seconds",
				Help:    "Reference document load duration by kind",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15},
			},
			[]string{"kind"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_cache_hits_total",
				Help: "Reference cache hits by layer",
			},
			[]string{"layer"}, // memory, redis
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_cache_misses_total",
				Help: "Reference cache misses by layer",
			},
			[]string{"layer"},
		),

		SingleflightDedup: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_singleflight_dedup_total",
				Help: "Loads that waited on an in-flight load instead of executing",
			},
			[]string{"kind"},
		),

		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_http_errors_total",
				Help: "Total HTTP errors by type and route group",
			},
			[]string{"error_type", "module"},
		),

		AssistantCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_assistant_calls_total",
				Help: "Assistant completions by status",
			},
			[]string{"status"}, // success, error, rate_limited
		),

		AssistantTokensTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pm_assistant_tokens_total",
				Help: "Total tokens reported by the assistant provider",
			},
		),

		AssistantCallDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pm_assistant_call_duration_seconds",
				Help:    "Assistant completion latency",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 45},
			},
		),

		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"},
		),

		RateLimiterUsers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pm_rate_limiter_active_keys",
				Help: "Keys currently tracked by a keyed rate limiter",
			},
			[]string{"limiter_type"},
		),

		WarmupTasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pm_warmup_tasks_total",
				Help: "Total number of warmup tasks by document and status",
			},
			[]string{"document", "status"},
		),

		WarmupDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pm_warmup_duration_seconds",
				Help:    "Total duration of reference data warmup",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
	}
}

// RecordRecommendation records one recommendation operation
func (m *Metrics) RecordRecommendation(operation, outcome string, duration float64) {
	if m == nil {
		return
	}
	m.RecommendationsTotal.WithLabelValues(operation, outcome).Inc()
	m.RecommendationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordMatchTier records the tier that determined a major match
func (m *Metrics) RecordMatchTier(matchType string) {
	if m == nil {
		return
	}
	m.MatchTierTotal.WithLabelValues(matchType).Inc()
}

// RecordModulesReturned records the size of a module recommendation
func (m *Metrics) RecordModulesReturned(n int) {
	if m == nil {
		return
	}
	m.ModulesReturned.Observe(float64(n))
}

// RecordMajorSkipped records a major dropped from module recommendation
func (m *Metrics) RecordMajorSkipped(reason string) {
	if m == nil {
		return
	}
	m.MajorsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordReferenceLoad records a load from the reference source
func (m *Metrics) RecordReferenceLoad(kind, status string, duration float64) {
	if m == nil {
		return
	}
	m.ReferenceLoadsTotal.WithLabelValues(kind, status).Inc()
	m.ReferenceLoadDuration.WithLabelValues(kind).Observe(duration)
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(layer string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(layer).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(layer string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(layer).Inc()
}

// RecordSingleflightDedup records a load that shared an in-flight result
func (m *Metrics) RecordSingleflightDedup(kind string) {
	if m == nil {
		return
	}
	m.SingleflightDedup.WithLabelValues(kind).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordAssistantCall records one assistant completion
func (m *Metrics) RecordAssistantCall(status string, duration float64, tokens int64) {
	if m == nil {
		return
	}
	m.AssistantCallsTotal.WithLabelValues(status).Inc()
	if duration > 0 {
		m.AssistantCallDuration.Observe(duration)
	}
	if tokens > 0 {
		m.AssistantTokensTotal.Add(float64(tokens))
	}
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// SetRateLimiterUsers sets the number of keys tracked by a keyed limiter
func (m *Metrics) SetRateLimiterUsers(limiterType string, n int) {
	if m == nil {
		return
	}
	m.RateLimiterUsers.WithLabelValues(limiterType).Set(float64(n))
}

// RecordWarmupTask records a warmup task result
func (m *Metrics) RecordWarmupTask(document, status string) {
	if m == nil {
		return
	}
	m.WarmupTasksTotal.WithLabelValues(document, status).Inc()
}

// RecordWarmupDuration records total warmup duration
func (m *Metrics) RecordWarmupDuration(duration float64) {
	if m == nil {
		return
	}
	m.WarmupDuration.Observe(duration)
}
