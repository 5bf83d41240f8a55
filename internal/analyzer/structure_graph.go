package analyzer

// BuildStructureGraph collapses maximal linear chains of StatementNodes
// (single outgoing Fall edge, successor has a single incoming edge) into
// one composite node carrying the concatenated statement range.
// Branch, join, section and perform-call boundaries are never crossed.
func BuildStructureGraph(g *Graph) *Graph {
	ng := g.Clone()

	for _, id := range sortedNodeIDs(g) {
		n := ng.Node(id)
		if n == nil || n.Kind != NodeStatement {
			continue
		}
		if _, ok := ng.SuccessorByKind(id, PerformCallEdge); ok {
			continue // a perform stays its own node
		}
		if len(ng.Predecessors(id)) != 1 {
			continue // not a chain interior node; leave as a chain head
		}
		pred := ng.Predecessors(id)[0]
		if pred.Kind != Fall {
			continue
		}
		head := ng.Node(pred.Origin)
		if head == nil || head.Kind != NodeStatement {
			continue
		}
		if len(ng.Successors(pred.Origin)) != 1 {
			continue
		}
		// Merge n into head: head absorbs n's statements and successors.
		head.Statements = append(append([]*Statement{}, head.Statements...), n.Statements...)
		ng.RemoveEdge(pred.Origin, Fall)
		for _, e := range ng.Successors(id) {
			ng.RemoveEdge(id, e.Kind)
			ng.AddEdge(pred.Origin, e.Target, e.Kind)
		}
		// Redirect any other predecessors of n (shouldn't exist given the
		// single-predecessor check, but PerformReturn targets can alias it)
		for _, e := range ng.Predecessors(id) {
			if e.Origin == pred.Origin {
				continue
			}
			ng.RemoveEdge(e.Origin, e.Kind)
			ng.AddEdge(e.Origin, pred.Origin, e.Kind)
		}
		delete(ng.nodes, id)
	}

	return ng
}

// sortedNodeIDs returns node ids in ascending order for deterministic
// traversal.
func sortedNodeIDs(g *Graph) []NodeID {
	ids := g.Nodes()
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
