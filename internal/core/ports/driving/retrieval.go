// Package driving defines the inbound ports of the docweave core:
// the contracts consumed by the CLI and the MCP server.
package driving

import (
	"context"

	"github.com/custodia-labs/docweave/internal/core/domain"
)

// RetrievalService provides semantic retrieval over one corpus.
type RetrievalService interface {
	// SimilaritySearch embeds the query and returns the top k chunks by
	// cosine similarity. Failures degrade to an empty result list; "no
	// results" is a normal, displayable outcome.
	SimilaritySearch(ctx context.Context, query string, k int) ([]domain.SearchResult, error)

	// EnhancedSearch retrieves 2k raw neighbours and re-ranks them with
	// importance, section-summary and entity-overlap boosts before
	// truncating to k.
	EnhancedSearch(ctx context.Context, params domain.EnhancedSearchParams) ([]domain.SearchResult, error)

	// Rebuild refetches the corpus, rechunks, re-embeds and swaps the
	// in-memory index, persisting a fresh cache record. Only one
	// rebuild runs at a time; a concurrent call returns
	// domain.ErrRebuildInProgress.
	Rebuild(ctx context.Context) error

	// Load restores the index from cache when the stored content hash
	// still matches the corpus, rebuilding otherwise.
	Load(ctx context.Context) error

	// Stats describes the currently served index.
	Stats() IndexStats
}

// IndexStats describes the in-memory index.
type IndexStats struct {
	// Chunks is the number of indexed chunks.
	Chunks int

	// Files is the number of corpus files the index was built from.
	Files int

	// ContentHash is the corpus hash the index was built from.
	ContentHash string

	// Placeholders is the number of placeholder vectors substituted for
	// failed embeddings.
	Placeholders int
}
