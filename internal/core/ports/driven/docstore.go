package driven

import (
	"context"

	"github.com/custodia-labs/docweave/internal/core/domain"
)

// DocumentStore persists fetched corpus files and their serialized tree
// snapshots so documents survive restarts without refetching.
type DocumentStore interface {
	// SaveFiles stores or replaces the files of a corpus.
	SaveFiles(ctx context.Context, corpus domain.CorpusID, files []domain.CorpusFile) error

	// GetFile retrieves one file by name. Returns domain.ErrNotFound
	// if absent.
	GetFile(ctx context.Context, corpus domain.CorpusID, name string) (*domain.CorpusFile, error)

	// ListFiles returns all files of a corpus, sorted by path.
	ListFiles(ctx context.Context, corpus domain.CorpusID) ([]domain.CorpusFile, error)

	// SaveSnapshot stores the serialized tree for a file path.
	SaveSnapshot(ctx context.Context, corpus domain.CorpusID, path, serialized string) error

	// GetSnapshot retrieves the serialized tree for a file path.
	// Returns domain.ErrNotFound if absent.
	GetSnapshot(ctx context.Context, corpus domain.CorpusID, path string) (string, error)

	// DeleteCorpus removes all stored state for a corpus.
	DeleteCorpus(ctx context.Context, corpus domain.CorpusID) error

	// Close releases resources.
	Close() error
}
