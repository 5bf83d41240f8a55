package analyzer

// ReachabilityReport is the outcome of the Reachability Pruner:
// the subgraph reachable from the program entry, plus a side list of
// unreachable node ids kept for reporting but removed from the active graph.
type ReachabilityReport struct {
	Reachable map[NodeID]bool
	Unreachable []NodeID
}

// PruneUnreachable performs forward reachability from every section entry
// over all edge kinds except PerformReturnEdge, which is only traversed when
// entering a call: a PerformReturnEdge out of a callee's SectionExit
// should not, by itself, make the caller's return site reachable if the call
// site that produced it is not reachable on its own.
func PruneUnreachable(g *Graph, entries []NodeID) *ReachabilityReport {
	reachable := make(map[NodeID]bool)
	var visit func(NodeID)
	visit = func(id NodeID) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		for _, e := range g.Successors(id) {
			if e.Kind == PerformReturnEdge {
				continue
			}
			visit(e.Target)
		}
	}
	for _, e := range entries {
		visit(e)
	}

	// A PerformReturnEdge's target becomes reachable once its call site is:
	// the call returns only if it was itself invoked.
	changed := true
	for changed {
		changed = false
		for _, id := range g.Nodes() {
			if !reachable[id] {
				continue
			}
			if pr, ok := g.PerformReturnFor(id); ok && !reachable[pr.ReturnTo] {
				reachable[pr.ReturnTo] = true
				visit(pr.ReturnTo)
				changed = true
			}
		}
	}

	report := &ReachabilityReport{Reachable: reachable}
	for _, id := range g.Nodes() {
		if !reachable[id] {
			report.Unreachable = append(report.Unreachable, id)
		}
	}
	return report
}

// Pruned returns a new Graph containing only the reachable nodes and the
// edges between them; unreachable nodes are dropped from the active graph
// but remain available via the ReachabilityReport for diagnostics.
func (r *ReachabilityReport) Pruned(g *Graph) *Graph {
	ng := g.Clone()
	for _, id := range r.Unreachable {
		if n := ng.Node(id); n != nil {
			for _, e := range ng.Successors(id) {
				ng.RemoveEdge(id, e.Kind)
			}
			for _, e := range ng.Predecessors(id) {
				ng.RemoveEdge(e.Origin, e.Kind)
			}
			delete(ng.nodes, id)
			_ = n
		}
	}
	return ng
}

// UnreachableDiagnostics converts the pruner's side list into info-level
// Diagnostics.
func UnreachableDiagnostics(g *Graph, r *ReachabilityReport) []Diagnostic {
	diags := make([]Diagnostic, 0, len(r.Unreachable))
	for _, id := range r.Unreachable {
		n := g.Node(id)
		if n == nil || len(n.Statements) == 0 {
			continue
		}
		stmt := n.Statements[0]
		sectionName := ""
		if n.Section != nil {
			sectionName = n.Section.Name
		}
		diags = append(diags, Diagnostic{
			Kind: UnreachableCode, Severity: SeverityInfo, Section: sectionName,
			Location: stmt.Location, Message: "unreachable statement: " + stmt.Text,
		})
	}
	return diags
}
