package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/doctree"
)

// ErrDocumentsUnavailable is returned by document tools when no
// document service is wired.
var ErrDocumentsUnavailable = errors.New("mcp: document service is not configured")

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the free-text query to search the corpus with"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// EnhancedSearchInput is the input schema for the enhanced_search tool.
type EnhancedSearchInput struct {
	Query          string   `json:"query" jsonschema:"the free-text query to search the corpus with"`
	K              int      `json:"k,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	MinRelevance   float64  `json:"min_relevance,omitempty" jsonschema:"drop results whose boosted score falls below this threshold"`
	NodeTypes      []string `json:"node_types,omitempty" jsonschema:"restrict results to these node types (heading, paragraph, list_item, code, blockquote)"`
	SectionID      string   `json:"section_id,omitempty" jsonschema:"restrict results to one section"`
	IncludeContext bool     `json:"include_context,omitempty" jsonschema:"attach sibling chunks and the owning section summary to each result"`
}

// SearchOutput is the output schema for both search tools.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	Text           string   `json:"text"`
	Score          float64  `json:"score"`
	FileName       string   `json:"file_name"`
	SourceURL      string   `json:"source_url,omitempty"`
	NodeID         string   `json:"node_id,omitempty"`
	SectionID      string   `json:"section_id,omitempty"`
	SectionPath    []string `json:"section_path,omitempty"`
	NodeType       string   `json:"node_type,omitempty"`
	Siblings       []string `json:"siblings,omitempty"`
	SectionSummary string   `json:"section_summary,omitempty"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	File string `json:"file" jsonschema:"the document file name or corpus path"`
}

// GetDocumentOutput is the output schema for the get_document tool.
type GetDocumentOutput struct {
	Title    string          `json:"title,omitempty"`
	Markdown string          `json:"markdown"`
	Sections []SectionOutput `json:"sections,omitempty"`
	Nodes    int             `json:"nodes"`
}

// SectionOutput describes one addressable section of a document.
type SectionOutput struct {
	ID      string `json:"id"`
	Heading string `json:"heading"`
	Depth   int    `json:"depth"`
}

// UpdateNodeInput is the input schema for the update_node tool.
type UpdateNodeInput struct {
	File   string `json:"file" jsonschema:"the document file name or corpus path"`
	NodeID string `json:"node_id" jsonschema:"the tree node to rewrite, e.g. paragraph-3"`
	Text   string `json:"text" jsonschema:"the replacement text for the node"`
}

// UpdateNodeOutput is the output schema for the update_node tool.
type UpdateNodeOutput struct {
	Changed bool   `json:"changed"`
	Diff    string `json:"diff,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the corpus by semantic similarity",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "enhanced_search",
		Description: "Search the corpus with importance and entity re-ranking, filters and optional context expansion",
	}, s.handleEnhancedSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Get a document's markdown, title and section structure",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_node",
		Description: "Rewrite one block of a document and return the resulting diff",
	}, s.handleUpdateNode)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Retrieval.SimilaritySearch(ctx, input.Query, input.K)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, searchOutput(results), nil
}

// handleEnhancedSearch handles the enhanced_search tool invocation.
func (s *Server) handleEnhancedSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EnhancedSearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	params := domain.EnhancedSearchParams{
		Query:          input.Query,
		K:              input.K,
		MinRelevance:   input.MinRelevance,
		NodeTypes:      input.NodeTypes,
		SectionID:      input.SectionID,
		IncludeContext: input.IncludeContext,
	}

	results, err := s.ports.Retrieval.EnhancedSearch(ctx, params)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, searchOutput(results), nil
}

// handleGetDocument handles the get_document tool invocation.
func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	if s.ports.Documents == nil {
		return nil, GetDocumentOutput{}, ErrDocumentsUnavailable
	}

	tree, err := s.ports.Documents.Get(ctx, input.File)
	if err != nil {
		return nil, GetDocumentOutput{}, err
	}

	output := GetDocumentOutput{
		Title:    tree.Title,
		Markdown: doctree.Serialize(tree),
		Nodes:    tree.Len(),
	}
	for _, id := range tree.SectionIDs() {
		heading := tree.Section(id)
		output.Sections = append(output.Sections, SectionOutput{
			ID:      id,
			Heading: heading.Text,
			Depth:   heading.Depth,
		})
	}

	return nil, output, nil
}

// handleUpdateNode handles the update_node tool invocation.
func (s *Server) handleUpdateNode(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateNodeInput,
) (*mcp.CallToolResult, UpdateNodeOutput, error) {
	if s.ports.Documents == nil {
		return nil, UpdateNodeOutput{}, ErrDocumentsUnavailable
	}

	before, err := s.ports.Documents.Get(ctx, input.File)
	if err != nil {
		return nil, UpdateNodeOutput{}, err
	}
	oldText := doctree.Serialize(before)

	after, err := s.ports.Documents.UpdateNodeContent(ctx, input.File, input.NodeID, input.Text)
	if err != nil {
		return nil, UpdateNodeOutput{}, err
	}
	if after == before {
		return nil, UpdateNodeOutput{Changed: false}, nil
	}

	diff := s.ports.Documents.BuildDiff(oldText, doctree.Serialize(after))
	return nil, UpdateNodeOutput{Changed: true, Diff: diff.Plain()}, nil
}

// searchOutput converts domain results into the tool output shape.
func searchOutput(results []domain.SearchResult) SearchOutput {
	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		meta := results[i].Chunk.Metadata
		out := SearchResultOutput{
			Text:        results[i].Chunk.Text,
			Score:       results[i].Score,
			FileName:    meta.FileName,
			SourceURL:   meta.SourceURL,
			NodeID:      meta.NodeID,
			SectionID:   meta.SectionID,
			SectionPath: meta.SectionPath,
			NodeType:    meta.NodeType,
		}
		for _, sib := range results[i].Siblings {
			out.Siblings = append(out.Siblings, sib.Text)
		}
		if results[i].SectionSummary != nil {
			out.SectionSummary = results[i].SectionSummary.Text
		}
		output.Results[i] = out
	}

	return output
}
