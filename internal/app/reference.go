package app

import (
	"context"
	"fmt"

	"github.com/garyellow/programme-matcher/internal/config"
	"github.com/garyellow/programme-matcher/internal/logger"
	"github.com/garyellow/programme-matcher/internal/metrics"
	"github.com/garyellow/programme-matcher/internal/r2client"
	"github.com/garyellow/programme-matcher/internal/rediscache"
	"github.com/garyellow/programme-matcher/internal/refdata"
)

// NewSource returns the configured reference document source.
func NewSource(ctx context.Context, ref config.ReferenceConfig) (refdata.Source, error) {
	switch ref.Source {
	case config.SourceR2:
		client, err := r2client.New(ctx, r2client.Config{
			Endpoint:    ref.R2Endpoint(),
			AccessKeyID: ref.R2AccessKeyID,
			SecretKey:   ref.R2SecretAccessKey,
			BucketName:  ref.R2BucketName,
			KeyPrefix:   ref.R2KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("r2 source: %w", err)
		}
		return refdata.NewR2Source(client), nil
	case config.SourceFile, "":
		return refdata.NewDirSource(ref.Dir), nil
	}
	return nil, fmt.Errorf("unknown reference source %q", ref.Source)
}

// newStore builds the layered reference store. A Redis outage at startup
// only disables the shared layer. The returned close func releases Redis.
func newStore(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*refdata.Store, func(), error) {
	src, err := NewSource(ctx, cfg.Reference)
	if err != nil {
		return nil, nil, err
	}

	opts := []refdata.Option{
		refdata.WithTTL(cfg.Reference.CacheTTL),
		refdata.WithLoadTimeout(cfg.Reference.LoadTimeout),
		refdata.WithMetrics(m),
	}

	closeFn := func() {}
	if cfg.HasRedis() {
		cache, err := rediscache.New(ctx, rediscache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, shared reference cache disabled")
		} else {
			opts = append(opts, refdata.WithRemoteCache(cache))
			closeFn = func() { _ = cache.Close() }
			log.WithField("addr", cfg.RedisAddr).Info("Shared reference cache enabled")
		}
	}

	store := refdata.NewStore(src, opts...)
	log.WithField("source", store.SourceName()).Info("Reference store ready")
	return store, closeFn, nil
}
