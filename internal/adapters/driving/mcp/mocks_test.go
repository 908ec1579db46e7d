package mcp

import (
	"context"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driving"
	"github.com/custodia-labs/docweave/internal/diffview"
	"github.com/custodia-labs/docweave/internal/doctree"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results    []domain.SearchResult
	stats      driving.IndexStats
	err        error
	lastK      int
	lastParams domain.EnhancedSearchParams
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
	m.lastParams = params
	return m.results, m.err
}

func (m *mockRetrievalService) Rebuild(_ context.Context) error {
	return m.err
}

func (m *mockRetrievalService) Load(_ context.Context) error {
	return m.err
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
	return m.tree, m.err
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
