// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/programme-matcher/internal/assistant"
	"github.com/garyellow/programme-matcher/internal/buildinfo"
	"github.com/garyellow/programme-matcher/internal/config"
	"github.com/garyellow/programme-matcher/internal/logger"
	"github.com/garyellow/programme-matcher/internal/metrics"
	"github.com/garyellow/programme-matcher/internal/ratelimit"
	"github.com/garyellow/programme-matcher/internal/refdata"
	"github.com/garyellow/programme-matcher/internal/sentry"
	"github.com/garyellow/programme-matcher/internal/storage"
	"github.com/garyellow/programme-matcher/internal/warmup"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	db             *storage.DB
	store          *refdata.Store
	closeStore     func()
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	limiter        *ratelimit.KeyedLimiter
	readinessState *warmup.ReadinessState
	server         *http.Server
	wg             sync.WaitGroup // Tracks background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "programme-matcher")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context calls in domain packages pick up request IDs
	// through the ContextHandler of the default logger.
	slog.SetDefault(log.Logger)

	build := buildinfo.Get()
	log.WithField("version", build.Version).Info("Initializing application...")

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     build.Version,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, error tracking disabled")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error tracking enabled")
	}

	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	store, closeStore, err := newStore(ctx, cfg, m, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reference store: %w", err)
	}

	assistantClient := assistant.New(cfg.Assistant, m)
	var limiter *ratelimit.KeyedLimiter
	if assistantClient.Enabled() {
		limiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
			Name:          "assistant",
			Burst:         cfg.Assistant.BurstTokens,
			RefillRate:    cfg.Assistant.RefillPerHour / 3600.0, // Convert hourly to per-second
			DailyLimit:    cfg.Assistant.DailyLimit,
			CleanupPeriod: config.RateLimiterCleanupInterval,
			Metrics:       m,
		})
		log.WithField("model", assistantClient.Model()).Info("Assistant enabled")
	}

	readiness := warmup.NewReadinessState(config.WarmupGracePeriod)

	srv := NewServer(ServerConfig{
		Store:           store,
		DB:              db,
		Assistant:       assistantClient,
		Limiter:         limiter,
		Readiness:       readiness,
		Metrics:         m,
		Logger:          log,
		MajorCap:        cfg.MajorCap,
		ModulesPerMajor: cfg.ModulesPerMajor,
		LoadTimeout:     cfg.Reference.LoadTimeout,
	})

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(srv, log)
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsPassword != "", cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	app := &Application{
		cfg:            cfg,
		logger:         log,
		db:             db,
		store:          store,
		closeStore:     closeStore,
		metrics:        m,
		registry:       registry,
		limiter:        limiter,
		readinessState: readiness,
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: config.HTTPRead,
			ReadTimeout:       config.HTTPRead,
			WriteTimeout:      config.HTTPWrite,
			IdleTimeout:       config.HTTPIdle,
		},
	}

	log.Info("Initialization complete")
	return app, nil
}

// NewRouter returns a gin engine with the standard middleware chain and the
// server's routes.
func NewRouter(srv *Server, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentry.Middleware())
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	srv.Register(router)
	return router
}

// Run starts the HTTP server and background jobs, blocking until SIGINT or
// SIGTERM.
//
// Shutdown cancels background jobs and waits for them before closing the
// server and resources, so a warmup never runs against a closed database.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.referenceWarmup(ctx)
	})
	a.wg.Go(func() {
		a.updateLimiterMetrics(ctx)
	})
	a.wg.Go(func() {
		a.reloadOnSignal(ctx)
	})
}

func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops accepting requests, drains in-flight ones, then closes resources.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}
	a.closeStore()
	if a.limiter != nil {
		a.limiter.Stop()
	}

	sentry.Flush(2 * time.Second)
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}

// referenceWarmup preloads reference data on startup, then again every cache
// TTL so request paths rarely see an expired entry.
func (a *Application) referenceWarmup(ctx context.Context) {
	a.logger.Debug("Reference warmup job started")
	defer a.logger.Debug("Reference warmup job stopped")

	a.performWarmup(ctx)

	ticker := time.NewTicker(a.cfg.Reference.CacheTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Reference warmup received shutdown signal")
			return
		case <-ticker.C:
			a.performWarmup(ctx)
		}
	}
}

func (a *Application) performWarmup(ctx context.Context) {
	warmupCtx, cancel := context.WithTimeout(ctx, config.ReferenceWarmup)
	defer cancel()

	_, err := warmup.Run(warmupCtx, a.store, a.logger, warmup.Options{Metrics: a.metrics})
	if err != nil {
		a.readinessState.MarkFailed(err)
		a.logger.WithError(err).Error("Reference warmup failed")
		return
	}
	if !a.readinessState.WarmupCompleted() {
		a.logger.Info("Service marked as ready after initial warmup")
	}
	a.readinessState.MarkReady()
}

// reloadOnSignal drops cached reference documents and re-warms on SIGHUP so a
// publish takes effect before the cache TTL runs out.
func (a *Application) reloadOnSignal(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			a.reloadReference(ctx)
		}
	}
}

func (a *Application) reloadReference(ctx context.Context) {
	a.logger.Info("Reloading reference data")
	a.store.Invalidate()
	a.performWarmup(ctx)
}

// updateLimiterMetrics periodically records the number of tracked assistant users.
func (a *Application) updateLimiterMetrics(ctx context.Context) {
	if a.limiter == nil {
		return
	}
	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.metrics.SetRateLimiterUsers("assistant", a.limiter.ActiveCount())
		}
	}
}
