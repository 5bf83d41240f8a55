package analyzer

import "sort"

// LoopID is a stable identifier for a recovered loop, assigned in
// deterministic preorder of headers.
type LoopID int

// Loop records a recovered natural loop.
type Loop struct {
	ID LoopID
	Header NodeID
	Body map[NodeID]bool
	BackEdges []NodeID // origins of back edges targeting Header
	ExitTargets []NodeID // computed later by the Scope Graph Builder
	Parent LoopID // meaningful only when HasParent is true
	HasParent bool
}

// LoopFindResult is the outcome of loop recovery: a DAG per section (ContinueMarkers
// are terminal), the set of recovered loops, and any irreducible regions.
type LoopFindResult struct {
	DAG *Graph
	Loops []*Loop
	Irreducible [][]NodeID
	Diagnostics []Diagnostic
}

// FindLoopsAndBuildDAG finds natural loops in a single section's structure
// graph (identified by its entry node). Sections are structured
// independently, so dominators are computed fresh per section.
func FindLoopsAndBuildDAG(g *Graph, sectionEntry NodeID, sectionName string) *LoopFindResult {
	dom := ComputeDominators(g, sectionEntry)

	backEdgesByTarget := make(map[NodeID][]NodeID)
	var allBackEdgeTargets []NodeID
	for _, id := range dom.ReversePostorder() {
		for _, e := range g.Successors(id) {
			if e.Kind == PerformReturnEdge || e.Kind == PerformCallEdge {
				continue
			}
			if dom.Dominates(e.Target, id) {
				if _, seen := backEdgesByTarget[e.Target]; !seen {
					allBackEdgeTargets = append(allBackEdgeTargets, e.Target)
				}
				backEdgesByTarget[e.Target] = append(backEdgesByTarget[e.Target], id)
			}
		}
	}

	// Earliest textual position is canonical among ties; reversePostorder
	// already gives a deterministic discovery order, so sort targets by
	// their position in it to assign loop ids deterministically.
	sort.Slice(allBackEdgeTargets, func(i, j int) bool {
		return dom.indexOf[allBackEdgeTargets[i]] < dom.indexOf[allBackEdgeTargets[j]]
	})

	var loops []*Loop
	var irreducible [][]NodeID
	var diags []Diagnostic
	nextID := LoopID(0)

	for _, header := range allBackEdgeTargets {
		body := natural(g, header, backEdgesByTarget[header])

		// Irreducibility check: if this loop's body overlaps an
		// already-recovered loop whose header neither dominates nor is
		// dominated by this header, the region is irreducible.
		irr := false
		for _, other := range loops {
			if !overlaps(body, other.Body) {
				continue
			}
			if dom.Dominates(header, other.Header) || dom.Dominates(other.Header, header) {
				continue
			}
			irr = true
			merged := unionKeys(body, other.Body)
			irreducible = append(irreducible, merged)
			diags = append(diags, Diagnostic{
				Kind: IrreducibleControlFlow, Severity: SeverityWarning, Section: sectionName,
				Message: "irreducible control flow detected; no loop recovered for this region and its jumps are not rewritten as labeled gotos",
			})
		}
		if irr {
			continue
		}

		loops = append(loops, &Loop{
			ID: nextID, Header: header, Body: body, BackEdges: backEdgesByTarget[header], HasParent: false,
		})
		nextID++
	}

	assignNesting(loops, dom)

	dag := g.Clone()
	for _, l := range loops {
		insertLoopHeader(dag, l)
	}

	return &LoopFindResult{DAG: dag, Loops: loops, Irreducible: irreducible, Diagnostics: diags}
}

// natural computes the natural loop of header given its back-edge origins:
// header plus every node that can reach an origin without passing through
// header.
func natural(g *Graph, header NodeID, origins []NodeID) map[NodeID]bool {
	body := map[NodeID]bool{header: true}
	var stack []NodeID
	for _, o := range origins {
		if !body[o] {
			body[o] = true
			stack = append(stack, o)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.Predecessors(n) {
			if e.Kind == PerformReturnEdge || e.Kind == PerformCallEdge {
				continue
			}
			if !body[e.Origin] {
				body[e.Origin] = true
				stack = append(stack, e.Origin)
			}
		}
	}
	return body
}

func overlaps(a, b map[NodeID]bool) bool {
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for id := range small {
		if big[id] {
			return true
		}
	}
	return false
}

func unionKeys(a, b map[NodeID]bool) []NodeID {
	seen := make(map[NodeID]bool)
	var out []NodeID
	for id := range a {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// assignNesting sets Parent/HasParent: loop A is the nesting parent of loop B
// if A's header strictly dominates B's header and A's body is the smallest
// such body containing B's header (innermost enclosing loop).
func assignNesting(loops []*Loop, dom *DominatorTree) {
	for _, inner := range loops {
		var best *Loop
		for _, outer := range loops {
			if outer == inner || !outer.Body[inner.Header] {
				continue
			}
			if outer.Header == inner.Header {
				continue
			}
			if best == nil || len(outer.Body) < len(best.Body) {
				best = outer
			}
		}
		if best != nil {
			inner.Parent = best.ID
			inner.HasParent = true
		}
	}
}

// insertLoopHeader inserts a synthetic LoopHeader
// immediately before the original header, redirect external forward entries
// to it, and replace each back edge with a terminal ContinueMarker.
func insertLoopHeader(dag *Graph, l *Loop) {
	headerNode := dag.Node(l.Header)
	lh := dag.NewNode(NodeLoopHeader)
	lh.LoopID = l.ID
	lh.Section = headerNode.Section

	for _, e := range append([]*Edge{}, dag.Predecessors(l.Header)...) {
		if l.Body[e.Origin] {
			continue // internal back edge, handled below
		}
		dag.RemoveEdge(e.Origin, e.Kind)
		dag.AddEdge(e.Origin, lh.ID, e.Kind)
	}
	dag.AddEdge(lh.ID, l.Header, Fall)

	for _, origin := range l.BackEdges {
		for _, e := range append([]*Edge{}, dag.Successors(origin)...) {
			if e.Target != l.Header {
				continue
			}
			dag.RemoveEdge(origin, e.Kind)
			marker := dag.NewNode(NodeContinueMarker)
			marker.LoopID = l.ID
			marker.Section = headerNode.Section
			dag.AddEdge(origin, marker.ID, e.Kind)
		}
	}
}
