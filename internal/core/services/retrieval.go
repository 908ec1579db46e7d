package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/docweave/internal/chunker"
	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
	"github.com/custodia-labs/docweave/internal/core/ports/driving"
	"github.com/custodia-labs/docweave/internal/doctree"
	"github.com/custodia-labs/docweave/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Default retrieval configuration.
const (
	// DefaultK is the result count used when a caller passes k <= 0.
	DefaultK = 5

	// DefaultMinRelevance drops enhanced-search candidates scoring
	// below it.
	DefaultMinRelevance = 0.25

	// DefaultEmbedTimeout bounds a single embedding provider call. A
	// stalled provider must never block the pipeline indefinitely.
	DefaultEmbedTimeout = 60 * time.Second

	// embedBatchSize is the number of texts sent per provider request.
	embedBatchSize = 64

	// maxSiblings caps the context chunks attached per result.
	maxSiblings = 3
)

// scoredChunk holds an index entry with its similarity score.
type scoredChunk struct {
	index int
	score float64
}

// searchIndex is one immutable generation of the in-memory index.
// Rebuilds construct a fresh generation and swap it in whole, so
// readers observe either the old or the new index, never a mixture.
type searchIndex struct {
	chunks  []domain.Chunk
	vectors [][]float32

	byNode    map[string]int
	bySection map[string][]int
	byEntity  map[string][]int
	summaries map[string]int

	contentHash  string
	files        int
	placeholders int
}

// buildIndex derives the auxiliary lookup maps in one pass over the
// chunk set. Maps are rebuilt wholesale on every load, never patched.
func buildIndex(
	chunks []domain.Chunk, vectors [][]float32, hash string, files, placeholders int,
) *searchIndex {
	ix := &searchIndex{
		chunks:       chunks,
		vectors:      vectors,
		byNode:       make(map[string]int),
		bySection:    make(map[string][]int),
		byEntity:     make(map[string][]int),
		summaries:    make(map[string]int),
		contentHash:  hash,
		files:        files,
		placeholders: placeholders,
	}

	for i := range chunks {
		md := chunks[i].Metadata
		if md.NodeID != "" {
			if _, ok := ix.byNode[md.NodeID]; !ok {
				ix.byNode[md.NodeID] = i
			}
		}
		if md.SectionID != "" {
			ix.bySection[md.SectionID] = append(ix.bySection[md.SectionID], i)
			if md.SectionSummary {
				ix.summaries[md.SectionID] = i
			}
		}
		for _, term := range md.EntityMentions {
			ix.byEntity[term] = append(ix.byEntity[term], i)
		}
	}

	return ix
}

// topK scores the query vector against every stored vector and returns
// the top k by descending similarity. Ties keep insertion order.
func (ix *searchIndex) topK(query []float32, k int) []scoredChunk {
	scored := make([]scoredChunk, len(ix.vectors))
	for i, v := range ix.vectors {
		scored[i] = scoredChunk{index: i, score: CosineSimilarity(query, v)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// RetrievalService owns the in-memory vector index over one corpus and
// serves plain and re-ranked similarity search.
type RetrievalService struct {
	source   driven.CorpusSource
	embedder driven.EmbeddingService
	cache    driven.CacheStore
	docs     driven.DocumentStore
	chunker  *chunker.Chunker

	defaultK     int
	minRelevance float64
	strict       bool
	embedTimeout time.Duration

	// rebuildMu serializes rebuilds; a second caller gets
	// domain.ErrRebuildInProgress instead of queueing.
	rebuildMu sync.Mutex

	// mu guards index. Readers take RLock; rebuilds swap under Lock.
	mu    sync.RWMutex
	index *searchIndex

	stale atomic.Bool
}

// Option configures the retrieval service.
type Option func(*RetrievalService)

// WithDefaultK sets the result count used when callers pass k <= 0.
func WithDefaultK(k int) Option {
	return func(s *RetrievalService) {
		if k > 0 {
			s.defaultK = k
		}
	}
}

// WithMinRelevance sets the enhanced-search relevance threshold.
func WithMinRelevance(threshold float64) Option {
	return func(s *RetrievalService) {
		if threshold > 0 {
			s.minRelevance = threshold
		}
	}
}

// WithStrictEmbeddings makes rebuilds fail on provider errors instead
// of substituting placeholder vectors.
func WithStrictEmbeddings(strict bool) Option {
	return func(s *RetrievalService) {
		s.strict = strict
	}
}

// WithEmbedTimeout bounds individual embedding provider calls.
func WithEmbedTimeout(timeout time.Duration) Option {
	return func(s *RetrievalService) {
		if timeout > 0 {
			s.embedTimeout = timeout
		}
	}
}

// WithDocumentStore persists fetched files and tree snapshots across
// restarts. Optional.
func WithDocumentStore(docs driven.DocumentStore) Option {
	return func(s *RetrievalService) {
		s.docs = docs
	}
}

// NewRetrievalService creates a retrieval service over one corpus
// source and embedding provider.
func NewRetrievalService(
	source driven.CorpusSource,
	embedder driven.EmbeddingService,
	cache driven.CacheStore,
	opts ...Option,
) *RetrievalService {
	s := &RetrievalService{
		source:       source,
		embedder:     embedder,
		cache:        cache,
		chunker:      chunker.New(),
		defaultK:     DefaultK,
		minRelevance: DefaultMinRelevance,
		embedTimeout: DefaultEmbedTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores the index from the cache when the stored content hash
// still matches the corpus; otherwise it rebuilds from scratch.
func (s *RetrievalService) Load(ctx context.Context) error {
	logger.Section("Index Load")

	files, err := s.source.Files(ctx)
	if err != nil {
		return fmt.Errorf("fetch corpus: %w", err)
	}
	hash := ContentHashSorted(files)
	logger.Debug("Corpus: %d files, hash %.12s", len(files), hash)

	record, err := s.cache.Load(ctx, s.source.Corpus())
	if err != nil {
		logger.Warn("Cache load failed: %v", err)
		record = nil
	}

	if record != nil && record.ContentHash == hash && len(record.Chunks) == len(record.Embeddings) {
		logger.Info("Cache valid: serving %d chunks", len(record.Chunks))
		s.swap(buildIndex(record.Chunks, record.Embeddings, hash, len(files), 0))
		s.persistFiles(ctx, files, record.TreeSnapshots)
		return nil
	}

	logger.Info("Cache stale or absent, rebuilding")
	return s.rebuildGuarded(ctx, files)
}

// Rebuild refetches the corpus, rechunks, re-embeds and swaps the
// index. Only one rebuild runs at a time.
func (s *RetrievalService) Rebuild(ctx context.Context) error {
	return s.rebuildGuarded(ctx, nil)
}

// MarkStale flags the served index as out of date with respect to
// local edits. The next explicit rebuild clears the flag.
func (s *RetrievalService) MarkStale() {
	s.stale.Store(true)
}

// Stale reports whether local edits have outdated the served index.
func (s *RetrievalService) Stale() bool {
	return s.stale.Load()
}

// Stats describes the currently served index.
func (s *RetrievalService) Stats() driving.IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return driving.IndexStats{}
	}
	return driving.IndexStats{
		Chunks:       len(s.index.chunks),
		Files:        s.index.files,
		ContentHash:  s.index.contentHash,
		Placeholders: s.index.placeholders,
	}
}

// SimilaritySearch embeds the query and returns the top k chunks by
// cosine similarity. Provider or index failures degrade to an empty
// result list; they never surface as errors to the caller.
func (s *RetrievalService) SimilaritySearch(
	ctx context.Context, query string, k int,
) ([]domain.SearchResult, error) {
	logger.Section("Similarity Search")

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if k <= 0 {
		k = s.defaultK
	}

	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return []domain.SearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil || len(s.index.chunks) == 0 {
		return []domain.SearchResult{}, nil
	}

	scored := s.index.topK(queryVec, k)
	results := make([]domain.SearchResult, 0, len(scored))
	for _, sc := range scored {
		results = append(results, domain.SearchResult{
			Chunk: s.index.chunks[sc.index],
			Score: sc.score,
		})
	}
	logger.Debug("Results: %d", len(results))
	return results, nil
}

// EnhancedSearch retrieves 2k raw neighbours and re-scores each by
// multiplying the base similarity with importance, section-summary and
// entity-overlap boosts. Candidates below the relevance threshold or
// excluded by filters are dropped before truncating to k.
func (s *RetrievalService) EnhancedSearch(
	ctx context.Context, params domain.EnhancedSearchParams,
) ([]domain.SearchResult, error) {
	logger.Section("Enhanced Search")

	query := strings.TrimSpace(params.Query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}

	k := params.K
	if k <= 0 {
		k = s.defaultK
	}
	minRelevance := params.MinRelevance
	if minRelevance <= 0 {
		minRelevance = s.minRelevance
	}

	queryVec, err := s.embedQuery(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return []domain.SearchResult{}, nil
	}

	entities := chunker.ExtractEntities(query)
	logger.Debug("Query entities: %v", entities)

	typeFilter := make(map[string]bool, len(params.NodeTypes))
	for _, t := range params.NodeTypes {
		typeFilter[t] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil || len(s.index.chunks) == 0 {
		return []domain.SearchResult{}, nil
	}

	raw := s.index.topK(queryVec, 2*k)

	kept := make([]scoredChunk, 0, len(raw))
	for _, sc := range raw {
		md := s.index.chunks[sc.index].Metadata
		score := sc.score

		if md.Importance > 0 {
			score *= md.Importance
		}
		if md.SectionSummary {
			score *= domain.SectionSummaryBoost
		}
		if n := entityOverlap(entities, md.EntityMentions); n > 0 {
			boost := 1 + float64(n)*domain.EntityMatchBoost
			if boost > domain.MaxEntityBoost {
				boost = domain.MaxEntityBoost
			}
			score *= boost
		}

		if len(typeFilter) > 0 && !typeFilter[md.NodeType] {
			score = 0
		}
		if params.SectionID != "" && md.SectionID != params.SectionID {
			score = 0
		}
		if score < minRelevance {
			score = 0
		}
		if score == 0 {
			continue
		}
		kept = append(kept, scoredChunk{index: sc.index, score: score})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})
	if len(kept) > k {
		kept = kept[:k]
	}

	results := make([]domain.SearchResult, 0, len(kept))
	for _, sc := range kept {
		result := domain.SearchResult{
			Chunk: s.index.chunks[sc.index],
			Score: sc.score,
		}
		if params.IncludeContext {
			s.attachContext(&result, sc.index)
		}
		results = append(results, result)
	}
	logger.Debug("Results: %d (from %d raw)", len(results), len(raw))
	return results, nil
}

// attachContext adds same-section sibling chunks and the owning
// section's summary chunk to a result. Caller holds the read lock.
func (s *RetrievalService) attachContext(result *domain.SearchResult, index int) {
	md := s.index.chunks[index].Metadata
	if md.SectionID == "" {
		return
	}

	for _, i := range s.index.bySection[md.SectionID] {
		if i == index || len(result.Siblings) >= maxSiblings {
			continue
		}
		result.Siblings = append(result.Siblings, s.index.chunks[i])
	}

	if i, ok := s.index.summaries[md.SectionID]; ok && i != index {
		summary := s.index.chunks[i]
		result.SectionSummary = &summary
	}
}

// entityOverlap counts query entities present in the chunk's mentions.
func entityOverlap(query, mentions []string) int {
	if len(query) == 0 || len(mentions) == 0 {
		return 0
	}
	set := make(map[string]bool, len(mentions))
	for _, m := range mentions {
		set[m] = true
	}
	n := 0
	for _, q := range query {
		if set[q] {
			n++
		}
	}
	return n
}

// embedQuery embeds one query text under the configured timeout.
func (s *RetrievalService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()
	return s.embedder.Embed(ctx, query)
}

// rebuildGuarded runs one rebuild at a time. When files is nil the
// corpus is fetched fresh.
func (s *RetrievalService) rebuildGuarded(ctx context.Context, files []domain.CorpusFile) error {
	if !s.rebuildMu.TryLock() {
		return domain.ErrRebuildInProgress
	}
	defer s.rebuildMu.Unlock()

	if files == nil {
		var err error
		files, err = s.source.Files(ctx)
		if err != nil {
			return fmt.Errorf("fetch corpus: %w", err)
		}
	}
	return s.rebuild(ctx, files)
}

// rebuild chunks, embeds and swaps in a fresh index generation, then
// persists the cache record and document snapshots.
func (s *RetrievalService) rebuild(ctx context.Context, files []domain.CorpusFile) error {
	logger.Section("Index Rebuild")
	hash := ContentHashSorted(files)

	var chunks []domain.Chunk
	snapshots := make(map[string]string, len(files))
	for _, f := range files {
		tree := doctree.Parse(f.Content)
		chunks = append(chunks, s.chunker.Chunk(tree, f.Name, f.SourceURL)...)
		snapshots[f.Path] = doctree.Serialize(tree)
	}
	logger.Info("Chunked %d files into %d chunks", len(files), len(chunks))

	vectors, placeholders, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return err
	}
	if placeholders > 0 {
		logger.Warn("Substituted %d placeholder vectors", placeholders)
	}

	s.swap(buildIndex(chunks, vectors, hash, len(files), placeholders))
	s.stale.Store(false)

	record := &domain.CacheRecord{
		ContentHash:   hash,
		Chunks:        chunks,
		Embeddings:    vectors,
		Timestamp:     time.Now().UTC(),
		TreeSnapshots: snapshots,
	}
	if err := s.cache.Save(ctx, s.source.Corpus(), record); err != nil {
		// The in-memory index is already serving; a failed persist
		// only costs a rebuild on next start.
		logger.Warn("Cache persist failed: %v", err)
	}
	s.persistFiles(ctx, files, snapshots)
	return nil
}

// embedChunks embeds all chunk texts in batches. In strict mode any
// provider failure aborts the build; otherwise failed or invalid
// vectors are replaced with deterministic placeholders.
func (s *RetrievalService) embedChunks(
	ctx context.Context, chunks []domain.Chunk,
) ([][]float32, int, error) {
	if s.embedder == nil {
		return nil, 0, domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors := make([][]float32, len(texts))
	placeholders := 0

	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batchCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
		batch, err := s.embedder.EmbedBatch(batchCtx, texts[start:end])
		cancel()

		if err != nil {
			if s.strict {
				return nil, 0, fmt.Errorf("embed batch at %d: %w", start, err)
			}
			logger.Warn("Embedding batch at %d failed: %v", start, err)
			for i := start; i < end; i++ {
				vectors[i] = placeholderVector(i, s.embedder.Dimensions())
				placeholders++
			}
			continue
		}

		for i := start; i < end; i++ {
			var v []float32
			if i-start < len(batch) {
				v = batch[i-start]
			}
			if !validEmbedding(v) {
				if s.strict {
					return nil, 0, fmt.Errorf("chunk %d: %w", i, domain.ErrInvalidEmbedding)
				}
				logger.Warn("Chunk %d: %v, substituting placeholder", i, domain.ErrInvalidEmbedding)
				v = placeholderVector(i, s.embedder.Dimensions())
				placeholders++
			}
			vectors[i] = v
		}
	}

	return vectors, placeholders, nil
}

// swap publishes a new index generation.
func (s *RetrievalService) swap(ix *searchIndex) {
	s.mu.Lock()
	s.index = ix
	s.mu.Unlock()
}

// persistFiles stores fetched files and snapshots in the document
// store, when one is configured. Best effort.
func (s *RetrievalService) persistFiles(
	ctx context.Context, files []domain.CorpusFile, snapshots map[string]string,
) {
	if s.docs == nil {
		return
	}
	if err := s.docs.SaveFiles(ctx, s.source.Corpus(), files); err != nil {
		logger.Warn("Document store persist failed: %v", err)
		return
	}
	for path, serialized := range snapshots {
		if err := s.docs.SaveSnapshot(ctx, s.source.Corpus(), path, serialized); err != nil {
			logger.Warn("Snapshot persist failed for %s: %v", path, err)
		}
	}
}
