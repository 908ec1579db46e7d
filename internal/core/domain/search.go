package domain

// SearchResult represents a single retrieval hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the relevance score. For plain similarity search this is
	// the cosine similarity; for enhanced search it is the boosted score.
	Score float64

	// Siblings are other chunks from the same section, attached when
	// context expansion is requested.
	Siblings []Chunk

	// SectionSummary is the summary chunk of the owning section,
	// attached when context expansion is requested.
	SectionSummary *Chunk
}

// EnhancedSearchParams configures a re-ranked similarity search.
type EnhancedSearchParams struct {
	// Query is the free-text query.
	Query string

	// K is the maximum number of results. Zero means the configured default.
	K int

	// MinRelevance drops candidates whose boosted score falls below it.
	// Zero means the configured default threshold.
	MinRelevance float64

	// NodeTypes restricts results to chunks of the given node types.
	// Empty means no restriction.
	NodeTypes []string

	// SectionID restricts results to chunks of one section.
	SectionID string

	// IncludeContext attaches sibling chunks and the owning section's
	// summary chunk to each result.
	IncludeContext bool
}

// Boost factors applied during enhanced search re-ranking.
const (
	// SectionSummaryBoost multiplies the score of section summary chunks.
	SectionSummaryBoost = 1.2

	// EntityMatchBoost is applied once per matched query entity.
	EntityMatchBoost = 0.1

	// MaxEntityBoost caps the cumulative entity multiplier.
	MaxEntityBoost = 1.5
)
