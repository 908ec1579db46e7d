package domain

import "time"

// CorpusID identifies a document corpus by its owner/repository pair.
// It is the unit of cache identity: one cache file exists per CorpusID.
type CorpusID struct {
	// Owner is the account or organisation that owns the corpus.
	Owner string

	// Repo is the repository or collection name.
	Repo string
}

// String returns the canonical "owner/repo" form.
func (c CorpusID) String() string {
	return c.Owner + "/" + c.Repo
}

// Slug returns a filesystem-safe identifier for cache and store paths.
func (c CorpusID) Slug() string {
	return c.Owner + "__" + c.Repo
}

// CorpusFile is a single raw document as fetched from a corpus source.
type CorpusFile struct {
	// Name is the display name (usually the base file name).
	Name string `json:"name"`

	// Path is the path within the corpus, unique per corpus.
	Path string `json:"path"`

	// Content is the full raw text.
	Content string `json:"content"`

	// SourceURL is a browsable URL for the file, if the source has one.
	SourceURL string `json:"sourceUrl,omitempty"`
}

// Chunk is a retrievable unit of document text with attached metadata.
// It is the unit embeddings are computed over.
type Chunk struct {
	// Text is the chunk content handed to the embedding provider.
	Text string `json:"text"`

	// Metadata locates the chunk within its source document.
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries the structural context of a chunk.
type ChunkMetadata struct {
	// FileName is the source document name.
	FileName string `json:"fileName"`

	// SourceURL is a browsable URL for the source document.
	SourceURL string `json:"sourceUrl,omitempty"`

	// NodeID is the tree node the chunk was built from, if any.
	NodeID string `json:"nodeId,omitempty"`

	// SectionID is the owning section, if any.
	SectionID string `json:"sectionId,omitempty"`

	// SectionPath is the heading hierarchy down to the chunk,
	// e.g. ["Installation", "Linux"].
	SectionPath []string `json:"sectionPath,omitempty"`

	// NodeType is the tree node type ("heading", "list_item", ...).
	NodeType string `json:"nodeType,omitempty"`

	// Importance is an optional relevance multiplier applied during
	// enhanced search. Zero means unset.
	Importance float64 `json:"importance,omitempty"`

	// SectionSummary marks the chunk as the summary chunk for its section.
	SectionSummary bool `json:"sectionSummary,omitempty"`

	// EntityMentions are lower-cased entity terms found in the chunk text.
	EntityMentions []string `json:"entityMentions,omitempty"`
}

// CacheRecord is the durable form of a built corpus index.
// Invariant: len(Chunks) == len(Embeddings).
type CacheRecord struct {
	// ContentHash is the whole-corpus content hash the record was built from.
	ContentHash string `json:"contentHash"`

	// Chunks are the retrievable units, in build order.
	Chunks []Chunk `json:"chunks"`

	// Embeddings are the vectors for Chunks, index-aligned.
	Embeddings [][]float32 `json:"embeddings"`

	// Timestamp is when the record was built.
	Timestamp time.Time `json:"timestamp"`

	// TreeSnapshots maps file paths to serialized document trees,
	// used for fast restart without re-parsing.
	TreeSnapshots map[string]string `json:"treeSnapshots,omitempty"`
}
