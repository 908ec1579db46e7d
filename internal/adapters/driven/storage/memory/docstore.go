// Package memory provides an in-memory document store, used when the
// SQLite store is unavailable. Contents do not survive restarts.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// corpusState holds the stored files and snapshots of one corpus.
type corpusState struct {
	files     map[string]domain.CorpusFile
	snapshots map[string]string
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu       sync.RWMutex
	corpuses map[string]*corpusState
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		corpuses: make(map[string]*corpusState),
	}
}

// state returns the state for a corpus, creating it when needed.
// Callers must hold mu.
func (s *DocumentStore) state(corpus domain.CorpusID) *corpusState {
	slug := corpus.Slug()
	cs, ok := s.corpuses[slug]
	if !ok {
		cs = &corpusState{
			files:     make(map[string]domain.CorpusFile),
			snapshots: make(map[string]string),
		}
		s.corpuses[slug] = cs
	}
	return cs
}

// SaveFiles stores or replaces the files of a corpus.
func (s *DocumentStore) SaveFiles(
	_ context.Context, corpus domain.CorpusID, files []domain.CorpusFile,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.state(corpus)
	cs.files = make(map[string]domain.CorpusFile, len(files))
	for _, f := range files {
		cs.files[f.Path] = f
	}
	return nil
}

// GetFile retrieves one file by name or path.
func (s *DocumentStore) GetFile(
	_ context.Context, corpus domain.CorpusID, name string,
) (*domain.CorpusFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.corpuses[corpus.Slug()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if f, ok := cs.files[name]; ok {
		return &f, nil
	}

	// Fall back to a name match, lowest path first for determinism.
	var match *domain.CorpusFile
	for path := range cs.files {
		f := cs.files[path]
		if f.Name != name {
			continue
		}
		if match == nil || f.Path < match.Path {
			match = &f
		}
	}
	if match == nil {
		return nil, domain.ErrNotFound
	}
	return match, nil
}

// ListFiles returns all files of a corpus, sorted by path.
func (s *DocumentStore) ListFiles(
	_ context.Context, corpus domain.CorpusID,
) ([]domain.CorpusFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.corpuses[corpus.Slug()]
	if !ok {
		return nil, nil
	}

	files := make([]domain.CorpusFile, 0, len(cs.files))
	for path := range cs.files {
		files = append(files, cs.files[path])
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// SaveSnapshot stores the serialized tree for a file path.
func (s *DocumentStore) SaveSnapshot(
	_ context.Context, corpus domain.CorpusID, path, serialized string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state(corpus).snapshots[path] = serialized
	return nil
}

// GetSnapshot retrieves the serialized tree for a file path.
func (s *DocumentStore) GetSnapshot(
	_ context.Context, corpus domain.CorpusID, path string,
) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cs, ok := s.corpuses[corpus.Slug()]
	if !ok {
		return "", domain.ErrNotFound
	}
	snapshot, ok := cs.snapshots[path]
	if !ok {
		return "", domain.ErrNotFound
	}
	return snapshot, nil
}

// DeleteCorpus removes all stored state for a corpus.
func (s *DocumentStore) DeleteCorpus(_ context.Context, corpus domain.CorpusID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.corpuses, corpus.Slug())
	return nil
}

// Close releases resources. A no-op for the in-memory store.
func (s *DocumentStore) Close() error {
	return nil
}
