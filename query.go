package celltree

// Walk visits every node depth-first, parents before children, roots in
// order. fn receives the node and its depth below its root (roots are at
// depth 0); returning false skips that node's children.
func (t *Tree[P, V]) Walk(fn func(n *Node[P, V], depth int) bool) {
	for _, root := range t.roots {
		walk(root, 0, fn)
	}
}

func walk[P Position[P], V Payload[V]](n *Node[P, V], depth int, fn func(*Node[P, V], int) bool) {
	if !fn(n, depth) || n.left == nil {
		return
	}
	walk(n.left, depth+1, fn)
	walk(n.right, depth+1, fn)
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Roots       int     `json:"roots" yaml:"roots"`
	Nodes       int     `json:"nodes" yaml:"nodes"`
	Leaves      int     `json:"leaves" yaml:"leaves"`
	MaxDepth    int     `json:"max_depth" yaml:"max_depth"`
	TotalWeight float64 `json:"total_weight" yaml:"total_weight"`
	MaxRootSize float64 `json:"max_root_size" yaml:"max_root_size"`
}

// Stats walks the tree and counts its nodes.
func (t *Tree[P, V]) Stats() Stats {
	s := Stats{Roots: len(t.roots)}
	for _, r := range t.roots {
		s.TotalWeight += r.summary.Weight
		s.MaxRootSize = max(s.MaxRootSize, r.Size())
	}
	t.Walk(func(n *Node[P, V], depth int) bool {
		s.Nodes++
		if n.IsLeaf() {
			s.Leaves++
		}
		s.MaxDepth = max(s.MaxDepth, depth)
		return true
	})
	return s
}
