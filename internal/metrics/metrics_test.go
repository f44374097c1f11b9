package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return pb.GetCounter().GetValue()
}

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.RecommendationsTotal == nil {
		t.Error("RecommendationsTotal is nil")
	}
	if m.MatchTierTotal == nil {
		t.Error("MatchTierTotal is nil")
	}
	if m.ModulesReturned == nil {
		t.Error("ModulesReturned is nil")
	}
	if m.ReferenceLoadsTotal == nil {
		t.Error("ReferenceLoadsTotal is nil")
	}
	if m.CacheHitsTotal == nil || m.CacheMissesTotal == nil {
		t.Error("cache metrics are nil")
	}
	if m.AssistantCallsTotal == nil {
		t.Error("AssistantCallsTotal is nil")
	}
	if m.RateLimiterDropped == nil {
		t.Error("RateLimiterDropped is nil")
	}
	if m.WarmupDuration == nil {
		t.Error("WarmupDuration is nil")
	}
}

func TestRecordMatchTier(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordMatchTier("exact")
	m.RecordMatchTier("exact")
	m.RecordMatchTier("none")

	if got := counterValue(t, m.MatchTierTotal.WithLabelValues("exact")); got != 2 {
		t.Errorf("exact tier count = %v, want 2", got)
	}
	if got := counterValue(t, m.MatchTierTotal.WithLabelValues("none")); got != 1 {
		t.Errorf("none tier count = %v, want 1", got)
	}
}

func TestRecordCache(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordCacheHit("memory")
	m.RecordCacheMiss("memory")
	m.RecordCacheMiss("redis")

	if got := counterValue(t, m.CacheMissesTotal.WithLabelValues("memory")); got != 1 {
		t.Errorf("memory misses = %v, want 1", got)
	}
	if got := counterValue(t, m.CacheHitsTotal.WithLabelValues("memory")); got != 1 {
		t.Errorf("memory hits = %v, want 1", got)
	}
}

func TestRecordAssistantCall(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordAssistantCall("success", 1.2, 350)
	m.RecordAssistantCall("rate_limited", 0, 0)

	if got := counterValue(t, m.AssistantTokensTotal); got != 350 {
		t.Errorf("tokens = %v, want 350", got)
	}
}

func TestRecordersDoNotPanic(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordRecommendation("majors", "success", 0.01)
	m.RecordRecommendation("modules", "data_error", 1.5)
	m.RecordModulesReturned(10)
	m.RecordMajorSkipped("no_institution")
	m.RecordReferenceLoad("catalog", "success", 0.2)
	m.RecordSingleflightDedup("catalog")
	m.RecordHTTPError("validation", "majors")
	m.RecordRateLimiterDrop("assistant")
	m.SetRateLimiterUsers("assistant", 3)
	m.RecordWarmupTask("occupations", "success")
	m.RecordWarmupDuration(2.5)
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics

	m.RecordRecommendation("majors", "success", 0.01)
	m.RecordMatchTier("exact")
	m.RecordCacheHit("memory")
	m.RecordAssistantCall("error", 1, 1)
	m.SetRateLimiterUsers("assistant", 1)
	m.RecordWarmupDuration(1)
}
