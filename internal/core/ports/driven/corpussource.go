package driven

import (
	"context"

	"github.com/custodia-labs/docweave/internal/core/domain"
)

// CorpusSource fetches the raw documents of one corpus. The core calls
// back into it only to re-fetch current content for hash comparison; it
// never needs to know how content is stored or versioned.
type CorpusSource interface {
	// Type returns the source type identifier ("github", "filesystem").
	Type() string

	// Corpus returns the corpus identity this source serves.
	Corpus() domain.CorpusID

	// Capabilities returns what this source supports.
	Capabilities() SourceCapabilities

	// Files fetches the current corpus files in a stable, deterministic
	// order (sorted by path). Content hashing depends on this ordering.
	Files(ctx context.Context) ([]domain.CorpusFile, error)

	// Watch listens for content changes. Only available if
	// SupportsWatch is true. Each event names the changed path.
	Watch(ctx context.Context) (<-chan FileChange, error)

	// Close releases resources.
	Close() error
}

// SourceCapabilities describes what a corpus source supports.
type SourceCapabilities struct {
	// SupportsWatch indicates the source can push change events.
	SupportsWatch bool

	// SupportsRateLimiting indicates the source throttles its own API
	// calls. Informational.
	SupportsRateLimiting bool
}

// FileChangeType is the kind of a watched change.
type FileChangeType int

// Change kinds.
const (
	FileCreated FileChangeType = iota
	FileUpdated
	FileDeleted
)

// FileChange is a change event from a watching corpus source.
type FileChange struct {
	// Type is the kind of change.
	Type FileChangeType

	// Path is the changed file's corpus path.
	Path string
}
