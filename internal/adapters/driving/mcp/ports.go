package mcp

import (
	"github.com/custodia-labs/docweave/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval provides semantic search over the corpus.
	Retrieval driving.RetrievalService

	// Documents provides tree-level document access and edits.
	Documents driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Documents is optional; document tools report their absence.
	return nil
}
