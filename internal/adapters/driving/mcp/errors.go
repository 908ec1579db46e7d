// Package mcp provides an MCP (Model Context Protocol) server adapter
// for docweave. It exposes semantic retrieval and document editing to
// MCP clients over stdio or HTTP.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
