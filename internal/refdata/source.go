// Package refdata loads the static reference documents behind matching and
// module recommendation: occupation mappings, prefix tables, institution
// catalogs and question banks.
//
// Documents come from a Source (local directory or R2 bucket) and are kept in
// an in-process TTL cache, optionally backed by a shared remote cache.
// Concurrent misses for the same key share a single load.
package refdata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/r2client"
)

// Source reads raw reference documents by key. Implementations return an
// error wrapping errors.ErrNotFound when a key does not exist.
type Source interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Name() string
}

// DirSource reads documents from a local directory. A key missing on disk is
// retried as key + ".zst" and decompressed.
type DirSource struct {
	root string
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{root: dir}
}

// Name implements Source.
func (s *DirSource) Name() string { return "dir" }

// Read implements Source.
func (s *DirSource) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(key) {
		return nil, fmt.Errorf("%w: invalid key %q", apperrors.ErrInvalidInput, key)
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	compressed, err := os.ReadFile(path + r2client.CompressedSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s%s: %w", key, r2client.CompressedSuffix, err)
	}
	return r2client.Decompress(bytes.NewReader(compressed))
}

// ObjectReader is the subset of the R2 client a bucket source needs.
type ObjectReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// R2Source reads documents from an R2 bucket, preferring the plain object and
// falling back to a zstd-compressed copy.
type R2Source struct {
	client ObjectReader
}

// NewR2Source creates a bucket source.
func NewR2Source(client ObjectReader) *R2Source {
	return &R2Source{client: client}
}

// Name implements Source.
func (s *R2Source) Name() string { return "r2" }

// Read implements Source.
func (s *R2Source) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, r2client.ErrNotFound) {
		return nil, err
	}

	compressed, err := s.client.Get(ctx, key+r2client.CompressedSuffix)
	if errors.Is(err, r2client.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", key, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return r2client.Decompress(bytes.NewReader(compressed))
}

// MemorySource serves documents from memory. It is safe for concurrent use.
type MemorySource struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	reads map[string]int
}

// NewMemorySource creates a source holding a copy of docs.
func NewMemorySource(docs map[string][]byte) *MemorySource {
	s := &MemorySource{docs: make(map[string][]byte, len(docs)), reads: make(map[string]int)}
	for k, v := range docs {
		s.docs[k] = v
	}
	return s
}

// Name implements Source.
func (s *MemorySource) Name() string { return "memory" }

// Put replaces one document.
func (s *MemorySource) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = data
}

// Reads reports how many times key was read.
func (s *MemorySource) Reads(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[key]
}

// Read implements Source.
func (s *MemorySource) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[key]++
	data, ok := s.docs[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, apperrors.ErrNotFound)
	}
	return data, nil
}
