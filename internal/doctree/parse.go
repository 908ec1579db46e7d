package doctree

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Parse tokenizes Markdown text into a document tree.
//
// The first depth-1 heading becomes the tree title and is excluded from
// the body. Headings of depth 2 and deeper establish sections; a new
// heading closes all open sections whose depth is greater than or equal
// to its own. Node IDs are assigned in pre-order, so parsing the same
// text always yields the same tree shape and IDs.
func Parse(input string) *Tree {
	src := []byte(input)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	root := &Node{ID: RootID}
	tree := &Tree{
		Root:     root,
		nodes:    map[string]*Node{RootID: root},
		sections: make(map[string]*Node),
	}

	b := &builder{src: src, tree: tree}

	// Stack of open headings, innermost last.
	var stack []*Node

	top := func() *Node {
		if len(stack) == 0 {
			return root
		}
		return stack[len(stack)-1]
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			b.addBlock(n, top())
			continue
		}

		if heading.Level == 1 && !b.titleTaken {
			tree.Title = b.blockText(heading)
			b.titleTaken = true
			continue
		}

		// Close open sections at or below this depth.
		for len(stack) > 0 && stack[len(stack)-1].Depth >= heading.Level {
			stack = stack[:len(stack)-1]
		}

		node := b.newNode(TypeHeading, top())
		node.Depth = heading.Level
		node.Text = b.blockText(heading)
		if heading.Level >= 2 {
			node.SectionID = sectionIDFor(node.ID)
			tree.sections[node.SectionID] = node
		}
		stack = append(stack, node)
	}

	return tree
}

// builder accumulates parser state while converting the goldmark AST.
type builder struct {
	src        []byte
	tree       *Tree
	ord        int
	titleTaken bool
}

// newNode creates a node, assigns its deterministic ID, inherits the
// parent's section and links it into the tree.
func (b *builder) newNode(typ NodeType, parent *Node) *Node {
	node := &Node{
		ID:        nodeID(typ, b.ord),
		Type:      typ,
		ParentID:  parent.ID,
		SectionID: parent.SectionID,
	}
	b.ord++
	parent.Children = append(parent.Children, node)
	b.tree.nodes[node.ID] = node
	return node
}

// addBlock converts a non-heading block construct into a tree node.
// Unsupported constructs (thematic breaks, raw HTML) are skipped.
func (b *builder) addBlock(n ast.Node, parent *Node) {
	switch v := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		txt := b.blockText(n)
		if txt == "" {
			return
		}
		node := b.newNode(TypeParagraph, parent)
		node.Text = txt

	case *ast.List:
		b.buildList(v, parent)

	case *ast.FencedCodeBlock:
		node := b.newNode(TypeCode, parent)
		node.Language = string(v.Language(b.src))
		node.Text = b.rawText(n)

	case *ast.CodeBlock:
		node := b.newNode(TypeCode, parent)
		node.Text = b.rawText(n)

	case *ast.Blockquote:
		var parts []string
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			if txt := b.blockText(c); txt != "" {
				parts = append(parts, txt)
			}
		}
		if len(parts) == 0 {
			return
		}
		node := b.newNode(TypeBlockquote, parent)
		node.Text = strings.Join(parts, "\n\n")
	}
}

// buildList converts a goldmark list into a list node with one
// list-item child per item. Nested lists become children of the item.
func (b *builder) buildList(l *ast.List, parent *Node) *Node {
	node := b.newNode(TypeList, parent)
	node.Ordered = l.IsOrdered()

	for it := l.FirstChild(); it != nil; it = it.NextSibling() {
		li, ok := it.(*ast.ListItem)
		if !ok {
			continue
		}

		item := b.newNode(TypeListItem, node)
		var parts []string
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if nested, ok := c.(*ast.List); ok {
				b.buildList(nested, item)
				continue
			}
			if txt := b.blockText(c); txt != "" {
				parts = append(parts, txt)
			}
		}
		item.Text = strings.Join(parts, "\n")
	}

	return node
}

// blockText extracts the raw source text of a block node, preserving
// inline markup such as emphasis markers.
func (b *builder) blockText(n ast.Node) string {
	return strings.TrimSpace(b.rawText(n))
}

// rawText joins the source lines of a block node. Falls back to inline
// text collection for nodes without line segments.
func (b *builder) rawText(n ast.Node) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(b.src))
		}
	}
	if buf.Len() == 0 {
		b.inlineText(n, &buf)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// inlineText collects text from inline children recursively.
func (b *builder) inlineText(n ast.Node, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(b.src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		b.inlineText(c, buf)
	}
}
