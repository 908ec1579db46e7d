package driving

import (
	"context"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/diffview"
	"github.com/custodia-labs/docweave/internal/doctree"
)

// DocumentService provides tree-level access to corpus documents and
// copy-on-write edits.
type DocumentService interface {
	// List returns the corpus files, sorted by path.
	List(ctx context.Context) ([]domain.CorpusFile, error)

	// Get returns the parsed tree for a document by file name.
	// Returns domain.ErrNotFound if the document does not exist.
	Get(ctx context.Context, fileName string) (*doctree.Tree, error)

	// UpdateNodeContent applies a copy-on-write edit. When the node is
	// absent or not editable the returned tree is the current one,
	// reference-identical, and no state changes. On success the new
	// tree replaces the served one, a snapshot is persisted and the
	// retrieval index is marked stale.
	UpdateNodeContent(ctx context.Context, fileName, nodeID, newText string) (*doctree.Tree, error)

	// BuildDiff renders the token-level diff between two text blobs.
	BuildDiff(oldText, newText string) diffview.RenderedDiff
}
