package analyzer

import "sort"

// ScopeResult augments a Loop with its scope and exit information.
type ScopeResult struct {
	Loop *Loop
	Scope map[NodeID]bool
	ExitEdges []*Edge
	ExitNodes []NodeID
	// IsWhile is true when the loop has a single exit reached through a
	// branch whose other arm stays in scope.
	IsWhile bool
	WhileCond NodeID // the branch node whose false/true arm exits, if IsWhile
}

// BuildScopeGraphs computes scope and exit information for every loop found
// in a section, innermost loops first. Each scope is the loop's full natural
// body, so an outer loop's scope includes the nodes of any loop nested in it;
// inner loops are not collapsed into a single node for the outer pass. It
// rewrites dag in place, replacing every exit edge with a BreakMarker.
func BuildScopeGraphs(dag *Graph, loops []*Loop) []*ScopeResult {
	ordered := innermostFirst(loops)
	results := make([]*ScopeResult, 0, len(ordered))
	byID := make(map[LoopID]*Loop, len(loops))
	for _, l := range loops {
		byID[l.ID] = l
	}

	for _, l := range ordered {
		scope := make(map[NodeID]bool, len(l.Body))
		for id := range l.Body {
			scope[id] = true
		}

		var exitEdges []*Edge
		for id := range scope {
			for _, e := range dag.Successors(id) {
				if e.Kind == PerformReturnEdge || e.Kind == PerformCallEdge {
					continue
				}
				if dag.Node(e.Target) != nil && dag.Node(e.Target).Kind == NodeContinueMarker {
					continue
				}
				if !scope[e.Target] {
					exitEdges = append(exitEdges, e)
				}
			}
		}

		exitTargets := distinctTargets(exitEdges)
		res := &ScopeResult{Loop: l, Scope: scope, ExitEdges: exitEdges, ExitNodes: exitTargets}

		if len(exitTargets) == 1 && len(exitEdges) == 1 {
			originNode := dag.Node(exitEdges[0].Origin)
			if originNode != nil && originNode.Kind == NodeBranch {
				other := False
				if exitEdges[0].Kind == False {
					other = True
				}
				if oe, ok := dag.SuccessorByKind(exitEdges[0].Origin, other); ok && scope[oe.Target] {
					res.IsWhile = true
					res.WhileCond = exitEdges[0].Origin
				}
			}
		}

		l.ExitTargets = exitTargets
		results = append(results, res)

		for exitIdx, e := range exitEdges {
			dag.RemoveEdge(e.Origin, e.Kind)
			marker := dag.NewNode(NodeBreakMarker)
			marker.LoopID = l.ID
			marker.ExitID = exitIdx
			dag.AddEdge(e.Origin, marker.ID, e.Kind)
			dag.AddEdge(marker.ID, e.Target, Fall)
		}
	}

	return results
}

func distinctTargets(edges []*Edge) []NodeID {
	seen := make(map[NodeID]bool)
	var out []NodeID
	for _, e := range edges {
		if !seen[e.Target] {
			seen[e.Target] = true
			out = append(out, e.Target)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// innermostFirst orders loops so that a loop with a nesting parent is
// processed before that parent (deepest nesting level first).
func innermostFirst(loops []*Loop) []*Loop {
	depth := make(map[LoopID]int)
	byID := make(map[LoopID]*Loop, len(loops))
	for _, l := range loops {
		byID[l.ID] = l
	}
	var depthOf func(LoopID) int
	depthOf = func(id LoopID) int {
		if d, ok := depth[id]; ok {
			return d
		}
		l := byID[id]
		d := 0
		if l.HasParent {
			d = depthOf(l.Parent) + 1
		}
		depth[id] = d
		return d
	}
	out := append([]*Loop{}, loops...)
	for _, l := range out {
		depthOf(l.ID)
	}
	sort.SliceStable(out, func(i, j int) bool { return depth[out[i].ID] > depth[out[j].ID] })
	return out
}
