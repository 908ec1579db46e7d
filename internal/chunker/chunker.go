// Package chunker walks a document tree and produces retrievable chunks.
//
// Granularity follows the unit most likely to be independently edited:
// one chunk per section (heading plus its first content block) and one
// chunk per list item (heading context plus the item's text), so a
// single bullet can be retrieved on its own while section chunks keep
// the surrounding context.
package chunker

import (
	"strings"

	"github.com/custodia-labs/docweave/internal/core/domain"
	"github.com/custodia-labs/docweave/internal/doctree"
)

// TopSectionImportance is the importance multiplier assigned to chunks
// of depth-2 sections, which carry the document's main structure.
const TopSectionImportance = 1.2

// Chunker converts document trees into chunks.
type Chunker struct{}

// New creates a new chunker.
func New() *Chunker {
	return &Chunker{}
}

// Chunk produces the retrievable chunks for one document tree.
// Chunks appear in document order.
func (c *Chunker) Chunk(tree *doctree.Tree, fileName, sourceURL string) []domain.Chunk {
	var chunks []domain.Chunk

	var walk func(n *doctree.Node, path []string)
	walk = func(n *doctree.Node, path []string) {
		for _, child := range n.Children {
			if child.Type != doctree.TypeHeading {
				continue
			}
			if child.SectionID != "" {
				sectionPath := append(append([]string(nil), path...), child.Text)
				chunks = append(chunks, c.sectionChunks(child, fileName, sourceURL, sectionPath)...)
				walk(child, sectionPath)
				continue
			}
			walk(child, path)
		}
	}
	walk(tree.Root, nil)

	// Trees without sections still need retrievable units: fall back to
	// one chunk per top-level content block.
	if len(chunks) == 0 {
		chunks = c.blockChunks(tree, fileName, sourceURL)
	}

	return chunks
}

// sectionChunks emits the section summary chunk followed by one chunk
// per list item in the section's own content.
func (c *Chunker) sectionChunks(
	heading *doctree.Node, fileName, sourceURL string, sectionPath []string,
) []domain.Chunk {
	var chunks []domain.Chunk

	text := heading.Text
	if first := firstContentChild(heading); first != nil {
		text += "\n\n" + blockText(first)
	}

	importance := 0.0
	if heading.Depth == 2 {
		importance = TopSectionImportance
	}

	chunks = append(chunks, domain.Chunk{
		Text: text,
		Metadata: domain.ChunkMetadata{
			FileName:       fileName,
			SourceURL:      sourceURL,
			NodeID:         heading.ID,
			SectionID:      heading.SectionID,
			SectionPath:    sectionPath,
			NodeType:       string(doctree.TypeHeading),
			Importance:     importance,
			SectionSummary: true,
			EntityMentions: ExtractEntities(text),
		},
	})

	for _, child := range heading.Children {
		if child.Type != doctree.TypeList {
			continue
		}
		chunks = append(chunks, c.listItemChunks(child, heading, fileName, sourceURL, sectionPath)...)
	}

	return chunks
}

// listItemChunks emits one chunk per list item, carrying the owning
// section's heading as semantic context. Nested lists are flattened.
func (c *Chunker) listItemChunks(
	list, heading *doctree.Node, fileName, sourceURL string, sectionPath []string,
) []domain.Chunk {
	var chunks []domain.Chunk

	for _, item := range list.Children {
		if item.Type != doctree.TypeListItem {
			continue
		}

		text := heading.Text + "\n\n" + item.Text
		chunks = append(chunks, domain.Chunk{
			Text: text,
			Metadata: domain.ChunkMetadata{
				FileName:       fileName,
				SourceURL:      sourceURL,
				NodeID:         item.ID,
				SectionID:      heading.SectionID,
				SectionPath:    sectionPath,
				NodeType:       string(doctree.TypeListItem),
				EntityMentions: ExtractEntities(text),
			},
		})

		for _, nested := range item.Children {
			if nested.Type == doctree.TypeList {
				chunks = append(chunks, c.listItemChunks(nested, heading, fileName, sourceURL, sectionPath)...)
			}
		}
	}

	return chunks
}

// blockChunks is the fallback for trees without any sections: one chunk
// per top-level content block.
func (c *Chunker) blockChunks(tree *doctree.Tree, fileName, sourceURL string) []domain.Chunk {
	var chunks []domain.Chunk
	for _, n := range tree.Root.Children {
		text := blockText(n)
		if text == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Text: text,
			Metadata: domain.ChunkMetadata{
				FileName:       fileName,
				SourceURL:      sourceURL,
				NodeID:         n.ID,
				NodeType:       string(n.Type),
				EntityMentions: ExtractEntities(text),
			},
		})
	}
	return chunks
}

// firstContentChild returns the section's first non-heading child.
func firstContentChild(heading *doctree.Node) *doctree.Node {
	for _, child := range heading.Children {
		if child.Type != doctree.TypeHeading {
			return child
		}
	}
	return nil
}

// blockText flattens a content block to plain chunk text.
func blockText(n *doctree.Node) string {
	if n.Type != doctree.TypeList {
		return n.Text
	}
	var lines []string
	for _, item := range n.Children {
		if item.Type == doctree.TypeListItem {
			lines = append(lines, "- "+item.Text)
		}
	}
	return strings.Join(lines, "\n")
}
