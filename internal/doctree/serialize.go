package doctree

import (
	"fmt"
	"strings"
)

// Serialize renders a tree back to Markdown text. Round-trips are lossy
// only with respect to the original whitespace, not structure or content.
func Serialize(t *Tree) string {
	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString("# " + t.Title + "\n\n")
	}

	for _, c := range t.Root.Children {
		writeBlock(&sb, c)
	}

	out := strings.TrimRight(sb.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

// writeBlock renders one top-level or section-level block followed by a
// blank separator line.
func writeBlock(sb *strings.Builder, n *Node) {
	switch n.Type {
	case TypeHeading:
		sb.WriteString(strings.Repeat("#", n.Depth) + " " + n.Text + "\n\n")
		for _, c := range n.Children {
			writeBlock(sb, c)
		}

	case TypeParagraph:
		sb.WriteString(n.Text + "\n\n")

	case TypeList:
		writeList(sb, n, "")
		sb.WriteString("\n")

	case TypeCode:
		sb.WriteString("```" + n.Language + "\n")
		if n.Text != "" {
			sb.WriteString(n.Text + "\n")
		}
		sb.WriteString("```\n\n")

	case TypeBlockquote:
		for _, line := range strings.Split(n.Text, "\n") {
			if line == "" {
				sb.WriteString(">\n")
				continue
			}
			sb.WriteString("> " + line + "\n")
		}
		sb.WriteString("\n")
	}
}

// writeList renders a list and its nested lists. Continuation lines and
// nested lists are indented to the item's content column so the output
// re-parses with the same structure.
func writeList(sb *strings.Builder, n *Node, indent string) {
	num := 1
	for _, item := range n.Children {
		if item.Type != TypeListItem {
			continue
		}

		marker := "- "
		if n.Ordered {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		cont := indent + strings.Repeat(" ", len(marker))

		lines := strings.Split(item.Text, "\n")
		sb.WriteString(indent + marker + lines[0] + "\n")
		for _, line := range lines[1:] {
			sb.WriteString(cont + line + "\n")
		}

		for _, c := range item.Children {
			if c.Type == TypeList {
				writeList(sb, c, cont)
			}
		}
	}
}
