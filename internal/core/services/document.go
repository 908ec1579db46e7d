package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
	"github.com/custodia-labs/docweave/internal/core/ports/driving"
	"github.com/custodia-labs/docweave/internal/diffview"
	"github.com/custodia-labs/docweave/internal/doctree"
	"github.com/custodia-labs/docweave/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// IndexInvalidator flags a retrieval index as outdated after an edit.
type IndexInvalidator interface {
	MarkStale()
}

// DocumentService serves parsed document trees and applies
// copy-on-write edits to them.
type DocumentService struct {
	source driven.CorpusSource
	docs   driven.DocumentStore
	index  IndexInvalidator

	mu    sync.Mutex
	files []domain.CorpusFile
	trees map[string]*doctree.Tree
}

// DocumentOption configures the document service.
type DocumentOption func(*DocumentService)

// WithSnapshotStore persists serialized trees after edits. Optional.
func WithSnapshotStore(docs driven.DocumentStore) DocumentOption {
	return func(s *DocumentService) {
		s.docs = docs
	}
}

// WithIndexInvalidator marks the retrieval index stale after a
// successful edit. Optional.
func WithIndexInvalidator(index IndexInvalidator) DocumentOption {
	return func(s *DocumentService) {
		s.index = index
	}
}

// NewDocumentService creates a document service over one corpus source.
func NewDocumentService(source driven.CorpusSource, opts ...DocumentOption) *DocumentService {
	s := &DocumentService{
		source: source,
		trees:  make(map[string]*doctree.Tree),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the corpus files, sorted by path.
func (s *DocumentService) List(ctx context.Context) ([]domain.CorpusFile, error) {
	files, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := append([]domain.CorpusFile(nil), files...)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Get returns the parsed tree for a document. Trees are parsed lazily
// and served from memory afterwards, so repeated lookups and edits
// observe the same tree value until it is replaced by an edit.
func (s *DocumentService) Get(ctx context.Context, fileName string) (*doctree.Tree, error) {
	files, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tree, ok := s.trees[fileName]; ok {
		return tree, nil
	}
	for _, f := range files {
		if f.Name == fileName || f.Path == fileName {
			tree := doctree.Parse(f.Content)
			s.trees[fileName] = tree
			return tree, nil
		}
	}
	return nil, fmt.Errorf("document %q: %w", fileName, domain.ErrNotFound)
}

// UpdateNodeContent applies a copy-on-write edit to one node. A
// missing or non-editable node is a no-op: the current tree is
// returned unchanged and nothing is persisted or invalidated.
func (s *DocumentService) UpdateNodeContent(
	ctx context.Context, fileName, nodeID, newText string,
) (*doctree.Tree, error) {
	tree, err := s.Get(ctx, fileName)
	if err != nil {
		return nil, err
	}

	updated := doctree.UpdateNodeContent(tree, nodeID, newText)
	if updated == tree {
		logger.Debug("Edit no-op: node %q in %s", nodeID, fileName)
		return tree, nil
	}

	s.mu.Lock()
	s.trees[fileName] = updated
	s.mu.Unlock()

	if s.docs != nil {
		if err := s.docs.SaveSnapshot(ctx, s.source.Corpus(), fileName, doctree.Serialize(updated)); err != nil {
			logger.Warn("Snapshot persist failed for %s: %v", fileName, err)
		}
	}
	if s.index != nil {
		s.index.MarkStale()
	}
	logger.Info("Updated node %s in %s", nodeID, fileName)
	return updated, nil
}

// BuildDiff renders the token-level diff between two text blobs.
func (s *DocumentService) BuildDiff(oldText, newText string) diffview.RenderedDiff {
	return diffview.BuildDiff(oldText, newText)
}

// load fetches the corpus file list once and caches it.
func (s *DocumentService) load(ctx context.Context) ([]domain.CorpusFile, error) {
	s.mu.Lock()
	if s.files != nil {
		files := s.files
		s.mu.Unlock()
		return files, nil
	}
	s.mu.Unlock()

	files, err := s.source.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch corpus: %w", err)
	}

	s.mu.Lock()
	s.files = files
	s.mu.Unlock()
	return files, nil
}
