package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/core/ports/driving"
	"github.com/custodia-labs/docweave/internal/doctree"
)

func readResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists corpus documents", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Documents: &mockDocumentService{
				files: []domain.CorpusFile{
					{Name: "guide.md", Path: "docs/guide.md", SourceURL: "https://example.com/guide.md"},
					{Name: "notes.md", Path: "docs/notes.md"},
				},
			},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, readResourceRequest(uriScheme+"documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "docs/guide.md")
		assert.Contains(t, result.Contents[0].Text, "https://example.com/guide.md")
		assert.Contains(t, result.Contents[0].Text, "notes.md")
	})

	t.Run("no document service returns empty list", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, readResourceRequest(uriScheme+"documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleIndexResource(t *testing.T) {
	ports := &Ports{
		Retrieval: &mockRetrievalService{
			stats: driving.IndexStats{
				Chunks:       12,
				Files:        3,
				ContentHash:  "abc123",
				Placeholders: 1,
			},
		},
	}
	server, err := NewServer(ports)
	require.NoError(t, err)

	result, err := server.handleIndexResource(context.Background(), readResourceRequest(uriScheme+"index"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, `"chunks": 12`)
	assert.Contains(t, result.Contents[0].Text, `"contentHash": "abc123"`)
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns rendered markdown", func(t *testing.T) {
		tree := doctree.Parse("# Guide\n\n## Alpha\n\nAlpha body text.\n")
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Documents: &mockDocumentService{tree: tree},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleDocumentContentResource(
			ctx, readResourceRequest(uriScheme+"documents/guide.md"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/markdown", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "## Alpha")
	})

	t.Run("no document service", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(
			ctx, readResourceRequest(uriScheme+"documents/guide.md"))
		assert.Error(t, err)
	})

	t.Run("malformed uri", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Documents: &mockDocumentService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(
			ctx, readResourceRequest(uriScheme+"other/guide.md"))
		assert.Error(t, err)
	})
}

func TestExtractDocumentFile(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{uriScheme + "documents/guide.md", "guide.md"},
		{uriScheme + "documents/docs/guide.md", "docs/guide.md"},
		{uriScheme + "documents/", ""},
		{uriScheme + "index", ""},
		{"https://example.com/documents/guide.md", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDocumentFile(tt.uri))
		})
	}
}
