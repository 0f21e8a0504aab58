package cst

// ParentIndex maps node IDs to their parents. It is rebuilt per generation.
type ParentIndex struct {
	nodes   map[NodeID]*Node
	parents map[NodeID]NodeID
}

// BuildParentIndex indexes every node under root.
func BuildParentIndex(root *Node) *ParentIndex {
	idx := &ParentIndex{
		nodes:   make(map[NodeID]*Node),
		parents: make(map[NodeID]NodeID),
	}
	if root == nil {
		return idx
	}
	idx.nodes[root.ID] = root
	var visit func(n *Node)
	visit = func(n *Node) {
		for _, c := range n.Children {
			idx.nodes[c.ID] = c
			idx.parents[c.ID] = n.ID
			visit(c)
		}
	}
	visit(root)
	return idx
}

// Node returns the node with the given ID.
func (idx *ParentIndex) Node(id NodeID) *Node { return idx.nodes[id] }

// Parent returns the parent of id, or nil for the root and unknown IDs.
func (idx *ParentIndex) Parent(id NodeID) *Node {
	p, ok := idx.parents[id]
	if !ok {
		return nil
	}
	return idx.nodes[p]
}

// Ancestors returns the parents of id from the innermost outwards.
func (idx *ParentIndex) Ancestors(id NodeID) []*Node {
	var out []*Node
	for p := idx.Parent(id); p != nil; p = idx.Parent(p.ID) {
		out = append(out, p)
	}
	return out
}

// Enclosing returns the nearest ancestor of id with one of the given kinds.
func (idx *ParentIndex) Enclosing(id NodeID, kinds ...Kind) *Node {
	for p := idx.Parent(id); p != nil; p = idx.Parent(p.ID) {
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}
	return nil
}

// Len returns the number of indexed nodes.
func (idx *ParentIndex) Len() int { return len(idx.nodes) }
