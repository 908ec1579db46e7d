package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driven"
	"github.com/custodia-labs/docweave/internal/core/ports/driving"
	"github.com/custodia-labs/docweave/internal/diffview"
	"github.com/custodia-labs/docweave/internal/doctree"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results    []domain.SearchResult
	stats      driving.IndexStats
	err        error
	loadErr    error
	lastK      int
	lastParams domain.EnhancedSearchParams
	enhanced   bool
}

func (m *mockRetrievalService) SimilaritySearch(
	_ context.Context, _ string, k int,
) ([]domain.SearchResult, error) {
	m.lastK = k
	return m.results, m.err
}

func (m *mockRetrievalService) EnhancedSearch(
	_ context.Context, params domain.EnhancedSearchParams,
) ([]domain.SearchResult, error) {
	m.enhanced = true
	m.lastParams = params
	return m.results, m.err
}

func (m *mockRetrievalService) Rebuild(_ context.Context) error {
	return m.err
}

func (m *mockRetrievalService) Load(_ context.Context) error {
	return m.loadErr
}

func (m *mockRetrievalService) Stats() driving.IndexStats {
	return m.stats
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	files   []domain.CorpusFile
	tree    *doctree.Tree
	updated *doctree.Tree
	err     error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.CorpusFile, error) {
	return m.files, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*doctree.Tree, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tree, nil
}

func (m *mockDocumentService) UpdateNodeContent(
	_ context.Context, _, _, _ string,
) (*doctree.Tree, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.updated != nil {
		return m.updated, nil
	}
	return m.tree, nil
}

func (m *mockDocumentService) BuildDiff(oldText, newText string) diffview.RenderedDiff {
	return diffview.BuildDiff(oldText, newText)
}

// mockCorpusSource is a mock implementation of driven.CorpusSource.
type mockCorpusSource struct {
	caps     driven.SourceCapabilities
	changes  chan driven.FileChange
	watchErr error
}

func (m *mockCorpusSource) Type() string {
	return "mock"
}

func (m *mockCorpusSource) Corpus() domain.CorpusID {
	return domain.CorpusID{Owner: "acme", Repo: "docs"}
}

func (m *mockCorpusSource) Capabilities() driven.SourceCapabilities {
	return m.caps
}

func (m *mockCorpusSource) Files(_ context.Context) ([]domain.CorpusFile, error) {
	return nil, nil
}

func (m *mockCorpusSource) Watch(_ context.Context) (<-chan driven.FileChange, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	return m.changes, nil
}

func (m *mockCorpusSource) Close() error {
	return nil
}

// mockConfigStore is an in-memory driven.ConfigStore.
type mockConfigStore struct {
	values map[string]any
	err    error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	if v, ok := m.values[key].(int64); ok {
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	if v, ok := m.values[key].(float64); ok {
		return v
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Delete(key string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.values, key)
	return nil
}

func (m *mockConfigStore) Save() error {
	return m.err
}

// searchFixture is a single result over a small parsed document.
func searchFixture() []domain.SearchResult {
	return []domain.SearchResult{
		{
			Chunk: domain.Chunk{
				Text: "Alpha body text.",
				Metadata: domain.ChunkMetadata{
					FileName:    "guide.md",
					NodeID:      "paragraph-1",
					SectionID:   "sec-heading-0",
					SectionPath: []string{"Alpha"},
					NodeType:    "paragraph",
				},
			},
			Score: 0.95,
		},
	}
}

// setupTestServices installs mock services and returns a cleanup func
// that restores the previous ones.
func setupTestServices() func() {
	oldRetrieval := retrievalService
	oldDocument := documentService
	oldConfig := configStore

	retrievalService = &mockRetrievalService{results: searchFixture()}
	documentService = &mockDocumentService{
		files: []domain.CorpusFile{
			{Name: "guide.md", Path: "docs/guide.md", SourceURL: "https://example.com/guide.md"},
		},
		tree: doctree.Parse("# Guide\n\n## Alpha\n\nAlpha body text.\n"),
	}
	configStore = newMockConfigStore()

	return func() {
		retrievalService = oldRetrieval
		documentService = oldDocument
		configStore = oldConfig
	}
}
