package analyzer

import (
	"fmt"

	"go.uber.org/atomic"
)

// NodeID is a stable integer id for a Graph Node. Ids never change across
// pipeline stages; rewrites produce new graphs with new arenas rather than
// mutating a prior graph's nodes.
type NodeID int

// EdgeKind is the closed set of edge types connecting Graph Nodes.
type EdgeKind int

const (
	Fall EdgeKind = iota
	True
	False
	PerformCallEdge
	PerformReturnEdge
	Jump
)

func (k EdgeKind) String() string {
	switch k {
	case Fall:
		return "fall"
	case True:
		return "true"
	case False:
		return "false"
	case PerformCallEdge:
		return "perform_call"
	case PerformReturnEdge:
		return "perform_return"
	case Jump:
		return "jump"
	default:
		return "unknown"
	}
}

// NodeKind tags the variant stored in a Node.
type NodeKind int

const (
	NodeStatement NodeKind = iota
	NodeBranch
	NodeJoin
	NodeSectionEntry
	NodeSectionExit
	NodeLoopHeader
	NodeContinueMarker
	NodeBreakMarker
	NodeGotoMarker
)

// Node is a tagged union over the Graph Node variants. Only the fields
// relevant to Kind are populated; callers should switch exhaustively on Kind.
type Node struct {
	ID NodeID
	Kind NodeKind

	// NodeStatement: a collapsed linear block of one or more statements.
	Statements []*Statement

	// NodeBranch: condition text carried by the If that produced this node.
	Condition string

	// NodeLoopHeader / NodeContinueMarker / NodeBreakMarker: identifies the loop.
	LoopID LoopID

	// NodeBreakMarker: which of the loop's exit targets this break reaches.
	ExitID int

	// NodeGotoMarker: the unresolved or irreducible-region label.
	Label string

	// Section this node belongs to, for section-scoped passes.
	Section *Section
}

// Edge is a directed, typed connection between two nodes. Edges are uniquely
// identified by (Origin, Kind): a node has at most one outgoing edge per kind.
type Edge struct {
	Origin NodeID
	Target NodeID
	Kind EdgeKind
	// PerformTarget names the callee for PerformCallEdge, for diagnostics.
	PerformTarget string
}

// Graph is an arena of Nodes plus per-kind successor/predecessor lookups.
// BuildStructureGraph and FindLoopsAndBuildDAG work on a Clone and leave
// their input untouched; BuildScopeGraphs rewrites the DAG it is given in place.
type Graph struct {
	nodes map[NodeID]*Node
	// succ[origin][kind] = edge
	succ map[NodeID]map[EdgeKind]*Edge
	pred map[NodeID][]*Edge

	Entry NodeID

	idCounter *atomic.Int64

	// performReturns tracks (call site, callee exit) -> return-to-statement
	// pairs out of band, since a paragraph performed from N call sites has
	// N distinct return targets off one shared SectionExit (see builder.go).
	performReturns map[NodeID]PerformReturn
}

// PerformReturn pairs a Perform call site with the statement its matching
// return lands on, plus the callee's SectionExit node it returns from.
type PerformReturn struct {
	CallSite NodeID
	CalleeEnd NodeID
	ReturnTo NodeID
}

func (g *Graph) recordPerformReturn(callSite, calleeEnd, returnTo NodeID) {
	if g.performReturns == nil {
		g.performReturns = make(map[NodeID]PerformReturn)
	}
	g.performReturns[callSite] = PerformReturn{CallSite: callSite, CalleeEnd: calleeEnd, ReturnTo: returnTo}
	// Also surface a PerformReturnEdge when this is the callee's first
	// recorded call site, matching edge-kind list for the common,
	// single-call-site case without breaking the one-edge-per-kind rule.
	if g.succ[calleeEnd] == nil || g.succ[calleeEnd][PerformReturnEdge] == nil {
		g.AddEdge(calleeEnd, returnTo, PerformReturnEdge)
	}
}

// PerformReturnFor looks up the return target recorded for a call site.
func (g *Graph) PerformReturnFor(callSite NodeID) (PerformReturn, bool) {
	pr, ok := g.performReturns[callSite]
	return pr, ok
}

// NewGraph creates an empty arena with its own id counter.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[NodeID]*Node),
		succ: make(map[NodeID]map[EdgeKind]*Edge),
		pred: make(map[NodeID][]*Edge),
		idCounter: atomic.NewInt64(0),
	}
}

// NewNode allocates a fresh node id and stores the node in the arena.
func (g *Graph) NewNode(kind NodeKind) *Node {
	id := NodeID(g.idCounter.Inc())
	n := &Node{ID: id, Kind: kind}
	g.nodes[id] = n
	return n
}

// Node looks up a node by id.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// Nodes returns every node id in the arena; order is not guaranteed.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// AddEdge records a typed edge. It is an error (panic, since it indicates a
// builder bug rather than malformed COBOL) to add a second edge of the same
// kind from the same origin.
func (g *Graph) AddEdge(origin, target NodeID, kind EdgeKind) *Edge {
	if g.succ[origin] == nil {
		g.succ[origin] = make(map[EdgeKind]*Edge)
	}
	if existing, ok := g.succ[origin][kind]; ok {
		panic(fmt.Sprintf("analyzer: duplicate %s edge from node %d (already -> %d)", kind, origin, existing.Target))
	}
	e := &Edge{Origin: origin, Target: target, Kind: kind}
	g.succ[origin][kind] = e
	g.pred[target] = append(g.pred[target], e)
	return e
}

// RemoveEdge deletes the edge of the given kind leaving origin, if any.
func (g *Graph) RemoveEdge(origin NodeID, kind EdgeKind) {
	e, ok := g.succ[origin][kind]
	if !ok {
		return
	}
	delete(g.succ[origin], kind)
	preds := g.pred[e.Target]
	for i, p := range preds {
		if p == e {
			g.pred[e.Target] = append(preds[:i], preds[i+1:]...)
			break
		}
	}
}

// Successors returns all outgoing edges of a node, in a fixed kind order.
func (g *Graph) Successors(id NodeID) []*Edge {
	kinds := []EdgeKind{Fall, True, False, PerformCallEdge, PerformReturnEdge, Jump}
	out := make([]*Edge, 0, 2)
	for _, k := range kinds {
		if e, ok := g.succ[id][k]; ok {
			out = append(out, e)
		}
	}
	return out
}

// SuccessorByKind returns the outgoing edge of the given kind, if any.
func (g *Graph) SuccessorByKind(id NodeID, kind EdgeKind) (*Edge, bool) {
	e, ok := g.succ[id][kind]
	return e, ok
}

// Predecessors returns all incoming edges of a node.
func (g *Graph) Predecessors(id NodeID) []*Edge {
	return g.pred[id]
}

// Clone produces a deep-enough copy of the graph (new arena, new id counter
// continuation) so a stage can rewrite edges without mutating its input.
func (g *Graph) Clone() *Graph {
	ng := &Graph{
		nodes: make(map[NodeID]*Node, len(g.nodes)),
		succ: make(map[NodeID]map[EdgeKind]*Edge, len(g.succ)),
		pred: make(map[NodeID][]*Edge, len(g.pred)),
		Entry: g.Entry,
		idCounter: atomic.NewInt64(g.idCounter.Load()),
		performReturns: make(map[NodeID]PerformReturn, len(g.performReturns)),
	}
	for k, v := range g.performReturns {
		ng.performReturns[k] = v
	}
	for id, n := range g.nodes {
		cp := *n
		ng.nodes[id] = &cp
	}
	for origin, byKind := range g.succ {
		m := make(map[EdgeKind]*Edge, len(byKind))
		for k, e := range byKind {
			ce := *e
			m[k] = &ce
			ng.pred[e.Target] = append(ng.pred[e.Target], &ce)
		}
		ng.succ[origin] = m
	}
	return ng
}

// NextNodeID allocates a fresh id in this graph's arena without attaching a
// node. Used by stages that build a node record before deciding its final Kind.
func (g *Graph) NextNodeID() NodeID {
	return NodeID(g.idCounter.Inc())
}

// PutNode inserts a fully-built node under its own id (used when a stage
// constructs a Node value directly rather than via NewNode).
func (g *Graph) PutNode(n *Node) {
	g.nodes[n.ID] = n
}
