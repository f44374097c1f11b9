// Package sentry initializes error tracking and exposes the gin middleware
// that attaches a hub to every request.
package sentry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Config holds Sentry settings.
type Config struct {
	// DSN is the project DSN. Empty disables error tracking.
	DSN string

	// Environment identifies the deployment (e.g. "production", "staging").
	Environment string

	// Release identifies the application build.
	Release string

	// SampleRate controls error sampling in (0,1]; zero means 1.0.
	SampleRate float64

	// Debug enables SDK debug logging.
	Debug bool
}

// Initialize sets up the SDK. An empty DSN leaves Sentry disabled and returns nil.
func Initialize(cfg Config) error {
	if cfg.DSN == "" {
		return nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	})
}

// Flush waits for buffered events. Returns true if all were sent in time.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled reports whether a client is bound to the current hub.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// Middleware binds a per-request hub and reports panics before re-raising
// them to the recovery middleware.
func Middleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}

// CaptureServerError reports err when status is a 5xx. Request-scoped hubs
// from Middleware are preferred so events carry the request.
func CaptureServerError(c *gin.Context, status int, err error) {
	if err == nil || status < http.StatusInternalServerError {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
		return
	}
	CaptureExceptionWithContext(c.Request.Context(), err)
}

// CaptureExceptionWithContext captures err on the context's hub, falling back to the global hub.
func CaptureExceptionWithContext(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}
