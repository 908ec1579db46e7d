package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedNodeType indicates an edit targeted a node type that
	// cannot carry text. Tree edits never return this to callers; the
	// unchanged tree identity is the signal. It exists for logging.
	ErrUnsupportedNodeType = errors.New("unsupported node type")

	// ErrInvalidEmbedding indicates the provider returned a vector that
	// failed validation (too short, non-finite, or not a vector at all).
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrProviderUnavailable indicates the embedding provider could not be
	// reached or rejected the whole batch.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrCacheCorrupt indicates a cache record failed structural validation.
	// The corrupt file is quarantined, never repaired in place.
	ErrCacheCorrupt = errors.New("cache corrupt")

	// ErrRebuildInProgress indicates an index rebuild is already running.
	ErrRebuildInProgress = errors.New("rebuild in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSourceUnavailable indicates the corpus source is not configured
	// or could not be reached.
	ErrSourceUnavailable = errors.New("corpus source unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
