// Package file provides a JSON file implementation of the cache store.
// One record file exists per corpus; corrupt records are quarantined,
// never repaired in place.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
	"github.com/custodia-labs/docweave/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.CacheStore = (*Store)(nil)

// Store persists cache records as JSON files under a cache directory.
type Store struct {
	dir string
}

// NewStore creates a file-based cache store. If cacheDir is empty,
// defaults to ~/.docweave/cache.
func NewStore(cacheDir string) (*Store, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cacheDir = filepath.Join(home, ".docweave", "cache")
	}

	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, err
	}

	return &Store{dir: cacheDir}, nil
}

// Path returns the cache file path for a corpus.
func (s *Store) Path(corpus domain.CorpusID) string {
	return filepath.Join(s.dir, corpus.Slug()+".json")
}

// Load reads the record for a corpus. A missing file returns (nil, nil).
// A record that fails to decode or validate is moved to a quarantine
// path and also reported as absent, so the caller rebuilds.
func (s *Store) Load(_ context.Context, corpus domain.CorpusID) (*domain.CacheRecord, error) {
	path := s.Path(corpus)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}

	var record domain.CacheRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.quarantine(path, fmt.Errorf("decode: %w", err))
		return nil, nil
	}
	if err := validate(&record); err != nil {
		s.quarantine(path, err)
		return nil, nil
	}

	return &record, nil
}

// Save writes the record atomically: marshal to a temp file in the same
// directory, then rename over the destination.
func (s *Store) Save(_ context.Context, corpus domain.CorpusID, record *domain.CacheRecord) error {
	if record == nil {
		return fmt.Errorf("save cache: %w", domain.ErrInvalidInput)
	}
	if err := validate(record); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	path := s.Path(corpus)
	tmp, err := os.CreateTemp(s.dir, corpus.Slug()+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close cache: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod cache: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("publish cache: %w", err)
	}
	return nil
}

// quarantine moves a corrupt record aside under a unique name so it is
// preserved for inspection while the corpus rebuilds.
func (s *Store) quarantine(path string, cause error) {
	dest := fmt.Sprintf("%s.corrupt-%s-%s", path,
		time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
	if err := os.Rename(path, dest); err != nil {
		logger.Warn("Quarantine failed for %s: %v", path, err)
		return
	}
	logger.Warn("Quarantined corrupt cache %s: %v", dest, cause)
}

// validate checks the structural invariants of a record.
func validate(record *domain.CacheRecord) error {
	if record.ContentHash == "" {
		return fmt.Errorf("missing content hash: %w", domain.ErrCacheCorrupt)
	}
	if len(record.Chunks) != len(record.Embeddings) {
		return fmt.Errorf("%d chunks vs %d embeddings: %w",
			len(record.Chunks), len(record.Embeddings), domain.ErrCacheCorrupt)
	}
	for i, v := range record.Embeddings {
		if len(v) == 0 {
			return fmt.Errorf("empty embedding at %d: %w", i, domain.ErrCacheCorrupt)
		}
		if len(v) != len(record.Embeddings[0]) {
			return fmt.Errorf("embedding %d has %d dimensions, expected %d: %w",
				i, len(v), len(record.Embeddings[0]), domain.ErrCacheCorrupt)
		}
	}
	return nil
}
