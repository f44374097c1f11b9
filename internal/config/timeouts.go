// Package config provides centralized timeout constants for the application.
//
// Reference data is small (a few MB of JSON at most), so load timeouts are
// sized for a cold object-storage fetch rather than for parsing.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the server read timeout. Request bodies are small JSON documents.
	HTTPRead = 10 * time.Second

	// HTTPWrite covers the slowest handler, an assistant completion.
	HTTPWrite = AssistantCall + 5*time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second
)

// Reference data timeouts
const (
	// ReferenceLoad bounds loading every document a single recommendation needs.
	ReferenceLoad = 15 * time.Second

	// ReferenceWarmup bounds the startup preload of all reference documents.
	ReferenceWarmup = 2 * time.Minute

	// WarmupGracePeriod is how long /readyz waits for the first warmup before
	// reporting ready anyway.
	WarmupGracePeriod = 3 * time.Minute
)

// Background job intervals
const (
	// RateLimiterCleanupInterval is how often idle per-user limiters are swept.
	RateLimiterCleanupInterval = 10 * time.Minute

	// MetricsUpdateInterval is how often gauge metrics are refreshed.
	MetricsUpdateInterval = 30 * time.Second
)

// Request timeouts
const (
	// AssistantCall bounds one chat completion against the assistant provider.
	AssistantCall = 45 * time.Second

	// ReadinessCheck bounds the database ping in /readyz.
	ReadinessCheck = 2 * time.Second

	// FeedbackWrite bounds saving ratings and selections. It runs detached
	// from the request so a client disconnect does not roll back a save.
	FeedbackWrite = 5 * time.Second

	// GracefulShutdown is the default shutdown budget.
	GracefulShutdown = 30 * time.Second
)
