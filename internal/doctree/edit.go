package doctree

// Editable node types. Edits targeting any other type are no-ops.
func editable(typ NodeType) bool {
	switch typ {
	case TypeHeading, TypeParagraph, TypeListItem:
		return true
	}
	return false
}

// UpdateNodeContent returns a new tree with the target node's text
// replaced. Only the nodes on the path from the target to the root are
// copied; untouched subtrees are shared between the old and new tree.
//
// If the node ID is absent or refers to a non-editable node type, the
// SAME tree reference is returned unchanged. Callers rely on reference
// equality to detect that nothing changed, so this identity contract
// must hold. Edits never return errors.
func UpdateNodeContent(t *Tree, id, newText string) *Tree {
	target := t.nodes[id]
	if target == nil || target.ID == RootID || !editable(target.Type) {
		return t
	}

	// Collect the path target -> root.
	path := []*Node{target}
	for cur := target; cur.ID != RootID; {
		parent := t.nodes[cur.ParentID]
		if parent == nil {
			return t
		}
		path = append(path, parent)
		cur = parent
	}

	// Clone upward, re-pointing each clone's child slot at the clone
	// below it.
	clones := make(map[string]*Node, len(path))
	var below *Node
	for _, orig := range path {
		clone := *orig
		clone.Children = append([]*Node(nil), orig.Children...)
		if below != nil {
			for i, c := range clone.Children {
				if c.ID == below.ID {
					clone.Children[i] = below
					break
				}
			}
		}
		clones[clone.ID] = &clone
		below = &clone
	}

	clones[id].Text = newText
	newRoot := below

	nodes := make(map[string]*Node, len(t.nodes))
	for nid, n := range t.nodes {
		if c, ok := clones[nid]; ok {
			nodes[nid] = c
		} else {
			nodes[nid] = n
		}
	}

	sections := make(map[string]*Node, len(t.sections))
	for sid, n := range t.sections {
		if c, ok := clones[n.ID]; ok {
			sections[sid] = c
		} else {
			sections[sid] = n
		}
	}

	return &Tree{
		Title:    t.Title,
		Root:     newRoot,
		nodes:    nodes,
		sections: sections,
	}
}
