package driven

import (
	"context"

	"github.com/custodia-labs/docweave/internal/core/domain"
)

// CacheStore persists built corpus indices. One record exists per
// corpus identity, stored as a single JSON document.
type CacheStore interface {
	// Load returns the stored record for a corpus, or (nil, nil) when
	// no usable record exists. A structurally corrupt record is moved
	// aside to a timestamped quarantine path and reported as absent,
	// never repaired in place.
	Load(ctx context.Context, corpus domain.CorpusID) (*domain.CacheRecord, error)

	// Save durably writes the record for a corpus. The write is atomic:
	// a crash mid-save never leaves a truncated record behind.
	Save(ctx context.Context, corpus domain.CorpusID, record *domain.CacheRecord) error

	// Path returns the cache file path for a corpus. Used for
	// diagnostics output.
	Path(corpus domain.CorpusID) string
}
