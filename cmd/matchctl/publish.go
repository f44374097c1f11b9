package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garyellow/programme-matcher/internal/logger"
	"github.com/garyellow/programme-matcher/internal/r2client"
	"github.com/garyellow/programme-matcher/internal/rediscache"
	"github.com/garyellow/programme-matcher/internal/refdata"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Validate a local reference directory and upload it to R2",
	Long: `Loads the occupation mappings, prefix maps, catalogs and every question bank
under --from through the schema checks the server applies, then uploads each
JSON file to the configured R2 bucket. Nothing is uploaded when validation
fails.

Each upload removes the object stored in the other encoding (key or key.zst)
so readers never see a stale copy. When Redis is configured, the published
keys are evicted from the shared cache afterwards.`,
	RunE: runPublish,
}

var (
	publishFrom       string
	publishCompressed bool
	publishDryRun     bool
)

func init() {
	publishCmd.Flags().StringVar(&publishFrom, "from", "", "Local reference directory (required)")
	publishCmd.Flags().BoolVar(&publishCompressed, "compress", true, "Upload zstd-compressed objects (key + .zst)")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Validate and list files without uploading")
	if err := publishCmd.MarkFlagRequired("from"); err != nil {
		panic(fmt.Sprintf("failed to mark from flag as required: %v", err))
	}
	rootCmd.AddCommand(publishCmd)
}

// documentBucket is the subset of the R2 client publishing needs.
type documentBucket interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	PublishCompressed(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	ObjectKey(key string) string
}

// documentCache is the shared cache whose entries a publish makes stale.
type documentCache interface {
	Delete(ctx context.Context, keys ...string) error
}

func runPublish(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := newLogger()

	keys, err := listDocuments(publishFrom)
	if err != nil {
		return err
	}
	local := refdata.NewStore(refdata.NewDirSource(publishFrom))
	if err := validateDocuments(ctx, local, keys); err != nil {
		return fmt.Errorf("validate %s: %w", publishFrom, err)
	}

	if publishDryRun {
		for _, key := range keys {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), key)
		}
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ref := cfg.Reference
	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    ref.R2Endpoint(),
		AccessKeyID: ref.R2AccessKeyID,
		SecretKey:   ref.R2SecretAccessKey,
		BucketName:  ref.R2BucketName,
		KeyPrefix:   ref.R2KeyPrefix,
	})
	if err != nil {
		return err
	}

	var cache documentCache
	if cfg.HasRedis() {
		rc, err := rediscache.New(ctx, rediscache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("shared cache must be reachable to evict published keys: %w", err)
		}
		defer func() { _ = rc.Close() }()
		cache = rc
	}

	return publishDocuments(ctx, cmd.OutOrStdout(), log, publishFrom, keys, client, cache, publishCompressed)
}

// validateDocuments loads the documents every request path depends on plus
// each question bank among keys.
func validateDocuments(ctx context.Context, store *refdata.Store, keys []string) error {
	if err := store.Warm(ctx); err != nil {
		return err
	}
	var errs []error
	for _, key := range keys {
		filename, ok := refdata.QuestionFilename(key)
		if !ok {
			continue
		}
		if _, err := store.QuestionBank(ctx, filename); err != nil {
			errs = append(errs, fmt.Errorf("question bank %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// publishDocuments uploads each key read from dir and then evicts the keys
// from cache, which may be nil.
func publishDocuments(ctx context.Context, out io.Writer, log *logger.Logger, dir string, keys []string, bucket documentBucket, cache documentCache, compressed bool) error {
	for _, key := range keys {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}

		var etag, stale string
		if compressed {
			etag, err = bucket.PublishCompressed(ctx, key, data)
			stale = key
		} else {
			etag, err = bucket.Upload(ctx, key, bytes.NewReader(data), "application/json")
			stale = key + r2client.CompressedSuffix
		}
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		if err := bucket.Delete(ctx, stale); err != nil {
			return fmt.Errorf("remove stale %s: %w", stale, err)
		}
		log.WithField("key", bucket.ObjectKey(key)).WithField("etag", etag).Info("Published reference document")
		_, _ = fmt.Fprintf(out, "published %s\n", key)
	}

	if cache != nil && len(keys) > 0 {
		if err := cache.Delete(ctx, keys...); err != nil {
			return fmt.Errorf("evict shared cache: %w", err)
		}
		_, _ = fmt.Fprintf(out, "evicted %d cached documents\n", len(keys))
	}
	return nil
}

// listDocuments returns the slash-separated keys of every .json file under dir.
func listDocuments(dir string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return keys, nil
}
