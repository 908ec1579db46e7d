// Package doctree maintains an addressable tree representation of a
// Markdown document. Trees are immutable values: parsing builds a tree,
// and every edit produces a new tree that shares unmodified nodes with
// the old one.
package doctree

import "fmt"

// NodeType classifies a block-level tree node.
type NodeType string

// Node types recognised by the parser.
const (
	TypeHeading    NodeType = "heading"
	TypeParagraph  NodeType = "paragraph"
	TypeList       NodeType = "list"
	TypeListItem   NodeType = "list_item"
	TypeCode       NodeType = "code"
	TypeBlockquote NodeType = "blockquote"
)

// Node is a single block-level construct within a document tree.
type Node struct {
	// ID uniquely identifies the node within its tree. IDs are derived
	// from the node's pre-order position and type, so re-parsing the
	// same text always yields the same IDs.
	ID string

	// Type is the block construct kind.
	Type NodeType

	// ParentID is the parent node's ID, empty for the root.
	ParentID string

	// SectionID is the ID of the nearest enclosing section, if any.
	SectionID string

	// Depth is the heading level for heading nodes, zero otherwise.
	Depth int

	// Ordered marks an ordered list. Only meaningful for list nodes.
	Ordered bool

	// Language is the code fence language. Only meaningful for code nodes.
	Language string

	// Text is the node's own text content. Container nodes (lists,
	// the root) have empty text.
	Text string

	// Children are the node's child blocks, in document order.
	Children []*Node
}

// Tree is a parsed document. The zero value is not usable; build trees
// with Parse.
type Tree struct {
	// Title is the first depth-1 heading, excluded from the body.
	Title string

	// Root holds the top-level blocks. It is a synthetic node with
	// ID RootID and no text.
	Root *Node

	nodes    map[string]*Node
	sections map[string]*Node
}

// RootID is the ID of the synthetic root node.
const RootID = "root"

// Node returns the node with the given ID, or nil if absent.
func (t *Tree) Node(id string) *Node {
	return t.nodes[id]
}

// Section returns the heading node that owns the given section ID,
// or nil if absent.
func (t *Tree) Section(id string) *Node {
	return t.sections[id]
}

// SectionIDs returns the IDs of all sections, in document order.
func (t *Tree) SectionIDs() []string {
	ids := make([]string, 0, len(t.sections))
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Type == TypeHeading && n.SectionID != "" && t.sections[n.SectionID] == n {
			ids = append(ids, n.SectionID)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return ids
}

// Len returns the number of addressable nodes in the tree,
// excluding the synthetic root.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// Walk visits every node in pre-order, root first.
func (t *Tree) Walk(fn func(n *Node)) {
	var walk func(n *Node)
	walk = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
}

// nodeID builds a deterministic node ID from pre-order position and type.
func nodeID(typ NodeType, ord int) string {
	return fmt.Sprintf("%s-%d", typ, ord)
}

// sectionIDFor derives the section ID owned by a heading node.
func sectionIDFor(headingID string) string {
	return "sec-" + headingID
}
