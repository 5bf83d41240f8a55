package analyzer

// DominatorTree holds, for each node reachable from root, its immediate
// dominator. Computed with the iterative "engineering a
// compiler" algorithm (Cooper, Harvey & Kennedy): repeatedly intersect the
// dominator sets of a node's already-processed predecessors in reverse
// postorder until the assignment reaches a fixed point.
type DominatorTree struct {
	root NodeID
	idom map[NodeID]NodeID
	order []NodeID
	indexOf map[NodeID]int
}

// ComputeDominators builds the dominator tree of g rooted at root, considering
// only Fall/True/False/Jump edges within the section. PerformCallEdge and
// PerformReturnEdge are both excluded: a Perform is an opaque call whose
// callee section is structured independently, so dominance must not
// cross into or out of it.
func ComputeDominators(g *Graph, root NodeID) *DominatorTree {
	order := reversePostorder(g, root)
	indexOf := make(map[NodeID]int, len(order))
	for i, id := range order {
		indexOf[id] = i
	}

	idom := make(map[NodeID]NodeID, len(order))
	idom[root] = root

	changed := true
	for changed {
		changed = false
		for _, id := range order {
			if id == root {
				continue
			}
			var newIdom NodeID
			set := false
			for _, e := range g.Predecessors(id) {
				if e.Kind == PerformReturnEdge || e.Kind == PerformCallEdge {
					continue
				}
				p := e.Origin
				if _, ok := idom[p]; !ok {
					continue
				}
				if !set {
					newIdom = p
					set = true
					continue
				}
				newIdom = intersect(idom, indexOf, newIdom, p)
			}
			if !set {
				continue
			}
			if cur, ok := idom[id]; !ok || cur != newIdom {
				idom[id] = newIdom
				changed = true
			}
		}
	}

	return &DominatorTree{root: root, idom: idom, order: order, indexOf: indexOf}
}

func intersect(idom map[NodeID]NodeID, indexOf map[NodeID]int, a, b NodeID) NodeID {
	for a != b {
		for indexOf[a] > indexOf[b] {
			a = idom[a]
		}
		for indexOf[b] > indexOf[a] {
			b = idom[b]
		}
	}
	return a
}

// Dominates reports whether a dominates b (every path from root to b passes
// through a). A node dominates itself.
func (d *DominatorTree) Dominates(a, b NodeID) bool {
	if a == b {
		return true
	}
	cur, ok := d.idom[b]
	for ok {
		if cur == a {
			return true
		}
		if cur == d.root {
			return cur == a
		}
		next, nok := d.idom[cur]
		if !nok || next == cur {
			return false
		}
		cur = next
		ok = nok
	}
	return false
}

// IDom returns the immediate dominator of id, or (id, false) if id is
// unreachable from root.
func (d *DominatorTree) IDom(id NodeID) (NodeID, bool) {
	v, ok := d.idom[id]
	return v, ok
}

// ReversePostorder exposes the traversal order dominator computation used,
// which downstream passes reuse for deterministic iteration.
func (d *DominatorTree) ReversePostorder() []NodeID {
	return d.order
}

func reversePostorder(g *Graph, root NodeID) []NodeID {
	visited := make(map[NodeID]bool)
	var post []NodeID
	var visit func(NodeID)
	visit = func(id NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, e := range g.Successors(id) {
			if e.Kind == PerformReturnEdge || e.Kind == PerformCallEdge {
				continue
			}
			visit(e.Target)
		}
		post = append(post, id)
	}
	visit(root)
	out := make([]NodeID, len(post))
	for i, id := range post {
		out[len(post)-1-i] = id
	}
	return out
}
