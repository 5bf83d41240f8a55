package analyzer

import (
	"strconv"

	list "github.com/bahlo/generic-list-go"
)

// FlattenerOptions exposes the cost-weight knobs for choosing between
// duplicating code at a join and emitting a labeled goto; these are tunable
// and intentionally under-documented defaults rather than fixed constants.
type FlattenerOptions struct {
	FixedOverhead int
	DuplicationWeight int
	// Debug attaches a Rationale string to some If/While/Forever nodes: a
	// one-line note on the loop or branch shape that decided how the node
	// was emitted.
	Debug bool
}

// DefaultFlattenerOptions returns the spec's starting-point weights.
func DefaultFlattenerOptions() FlattenerOptions {
	return FlattenerOptions{FixedOverhead: 3, DuplicationWeight: 1}
}

// flattener walks a section's scope DAG from its entry along successor
// edges and emits a Structured Tree. It operates on one section at a time and never
// looks across sections.
type flattener struct {
	dag *Graph
	opts FlattenerOptions
	loops map[LoopID]*Loop
	scopes map[LoopID]*ScopeResult
	dom *DominatorTree
	nextLabel int

	// joinDuplicate[id] is true when the cost heuristic chose to duplicate
	// the post-join code into every predecessor instead of a labeled goto.
	joinDuplicate map[NodeID]bool
	joinLabel map[NodeID]string
	joinEmitted map[NodeID]bool
}

// Flatten flattens the structured tree for a single section, given its scope DAG (after
// loop recovery and scope/exit marking) and the loop metadata for that
// section. sectionEntry is the (possibly synthetic LoopHeader-preceded)
// entry node for the section.
func Flatten(dag *Graph, sectionEntry NodeID, loops []*Loop, scopes []*ScopeResult, opts FlattenerOptions) *TreeNode {
	f := &flattener{
		dag: dag,
		opts: opts,
		loops: map[LoopID]*Loop{},
		scopes: map[LoopID]*ScopeResult{},
		joinDuplicate: map[NodeID]bool{},
		joinLabel: map[NodeID]string{},
		joinEmitted: map[NodeID]bool{},
	}
	for _, l := range loops {
		f.loops[l.ID] = l
	}
	for _, s := range scopes {
		f.scopes[s.Loop.ID] = s
	}
	f.dom = ComputeDominators(dag, sectionEntry)
	f.precomputeJoinStrategy()

	return f.flattenFrom(sectionEntry, nil)
}

// precomputeJoinStrategy decides, for every join reachable with ≥2
// predecessors, whether the flattener will duplicate the post-join code
// into each predecessor or fall back to a labeled goto. Deciding
// up front keeps the choice independent of which predecessor the walk
// visits first, preserving the determinism property.
func (f *flattener) precomputeJoinStrategy() {
	for _, id := range f.dag.Nodes() {
		n := f.dag.Node(id)
		if n == nil || n.Kind != NodeJoin {
			continue
		}
		preds := f.dag.Predecessors(id)
		if len(preds) < 2 {
			continue
		}
		size := estimateSubtreeSize(f.dag, id)
		duplicatingPreds := len(preds) - 1
		f.joinDuplicate[id] = chooseDuplicateOrGoto(f.opts, size, duplicatingPreds, duplicatingPreds)
		f.joinLabel[id] = "join" + strconv.Itoa(int(id))
	}
}

// flattenFrom emits the tree reachable from id, stopping (without recursing
// further) at any node in stop.
func (f *flattener) flattenFrom(id NodeID, stop map[NodeID]bool) *TreeNode {
	l := list.New[*TreeNode]()
	cur := id
	for {
		if cur == 0 || (stop != nil && stop[cur]) {
			break
		}
		n := f.dag.Node(cur)
		if n == nil {
			break
		}

		switch n.Kind {
		case NodeSectionEntry:
			if e, ok := f.dag.SuccessorByKind(cur, Fall); ok {
				cur = e.Target
				continue
			}
			return collapse(l)

		case NodeSectionExit:
			l.PushBack(&TreeNode{Kind: TreeReturn})
			return collapse(l)

		case NodeGotoMarker:
			l.PushBack(&TreeNode{Kind: TreeGoto, Label: n.Label})
			return collapse(l)

		case NodeBreakMarker:
			l.PushBack(&TreeNode{Kind: TreeBreak, LoopID: n.LoopID})
			return collapse(l)

		case NodeContinueMarker:
			l.PushBack(&TreeNode{Kind: TreeContinue, LoopID: n.LoopID})
			return collapse(l)

		case NodeLoopHeader:
			loopNode := f.flattenLoop(n)
			l.PushBack(loopNode)
			cur = f.afterLoop(n.LoopID)
			continue

		case NodeBranch:
			ifNode, after := f.flattenBranch(n)
			l.PushBack(ifNode)
			if after == 0 {
				return collapse(l)
			}
			cur = after
			continue

		case NodeJoin:
			if len(f.dag.Predecessors(cur)) >= 2 {
				if f.joinDuplicate[cur] {
					e, ok := f.dag.SuccessorByKind(cur, Fall)
					if !ok {
						return collapse(l)
					}
					l.PushBack(f.flattenFrom(e.Target, stop))
					return collapse(l)
				}
				label := f.joinLabel[cur]
				if f.joinEmitted[cur] {
					l.PushBack(&TreeNode{Kind: TreeGoto, Label: label})
					return collapse(l)
				}
				f.joinEmitted[cur] = true
				e, ok := f.dag.SuccessorByKind(cur, Fall)
				if !ok {
					return collapse(l)
				}
				body := f.flattenFrom(e.Target, stop)
				l.PushBack(&TreeNode{Kind: TreeLabel, Label: label, Body: body})
				return collapse(l)
			}
			if e, ok := f.dag.SuccessorByKind(cur, Fall); ok {
				cur = e.Target
				continue
			}
			return collapse(l)

		case NodeStatement:
			if e, ok := f.dag.SuccessorByKind(cur, Jump); ok && f.dag.Node(e.Target) != nil &&
				(f.dag.Node(e.Target).Kind == NodeContinueMarker || f.dag.Node(e.Target).Kind == NodeBreakMarker) {
				// The jump lands on a Break/Continue marker, which stands in
				// for the GO TO; only the statements before it become a leaf.
				var kept []*Statement
				for _, s := range n.Statements {
					if s.Kind != GoTo {
						kept = append(kept, s)
					}
				}
				if len(kept) > 0 {
					l.PushBack(statementLeaf(&Node{Statements: kept}))
				}
				cur = e.Target
				continue
			}
			l.PushBack(statementLeaf(n))
			if perf := f.maybePerformCall(n); perf != nil {
				l.Back().Value = perf
			}
			if e, ok := f.dag.SuccessorByKind(cur, Fall); ok {
				cur = e.Target
				continue
			}
			return collapse(l)

		default:
			return collapse(l)
		}
	}
	return collapse(l)
}

// afterLoop finds the node flattening continues at once a loop's While or
// Forever node is emitted: the scope's exit node when the loop has exactly
// one, whichever of the two forms it took; zero otherwise.
func (f *flattener) afterLoop(id LoopID) NodeID {
	s := f.scopes[id]
	if s == nil || len(s.ExitNodes) != 1 {
		return 0
	}
	return s.ExitNodes[0]
}

func (f *flattener) flattenLoop(header *Node) *TreeNode {
	s := f.scopes[header.LoopID]
	bodyEntry, _ := f.dag.SuccessorByKind(header.ID, Fall)

	if s != nil && s.IsWhile {
		return f.flattenWhileLoop(s, bodyEntry)
	}

	var body *TreeNode
	if bodyEntry != nil {
		body = f.flattenFrom(bodyEntry.Target, nil)
	} else {
		body = Seq()
	}
	node := &TreeNode{Kind: TreeForever, Body: body}
	if f.opts.Debug {
		node.Rationale = "loop has multiple or non-branch exits; emitted as Forever with explicit Break"
	}
	return node
}

// flattenWhileLoop builds a While node for a loop whose sole exit is guarded
// by an in-scope branch (ScopeResult.IsWhile): the branch's own test becomes
// the While's condition, so its in-scope arm is walked directly rather than
// re-emitting the branch as a nested If with an exit Break, which would test
// the condition twice and leave a redundant Break in the body.
func (f *flattener) flattenWhileLoop(s *ScopeResult, bodyEntry *Edge) *TreeNode {
	cond := f.dag.Node(s.WhileCond)

	inScope, _ := f.dag.SuccessorByKind(s.WhileCond, True)
	if inScope == nil || f.isBreakMarker(inScope.Target) {
		inScope, _ = f.dag.SuccessorByKind(s.WhileCond, False)
	}

	var prefix *TreeNode
	if bodyEntry != nil && bodyEntry.Target != s.WhileCond {
		prefix = f.flattenFrom(bodyEntry.Target, map[NodeID]bool{s.WhileCond: true})
	}

	var rest *TreeNode
	if inScope != nil {
		rest = f.flattenFrom(inScope.Target, nil)
	} else {
		rest = Seq()
	}

	body := rest
	if !isEmptySeq(prefix) {
		body = Seq(prefix, rest)
	}

	node := &TreeNode{Kind: TreeWhile, Condition: cond.Condition, Body: body}
	if f.opts.Debug {
		node.Rationale = "single exit guarded by in-scope branch; header test folded into While condition"
	}
	return node
}

func (f *flattener) isBreakMarker(id NodeID) bool {
	n := f.dag.Node(id)
	return n != nil && n.Kind == NodeBreakMarker
}

func isEmptySeq(n *TreeNode) bool {
	return n == nil || (n.Kind == TreeSeq && len(n.Children) == 0)
}

// flattenBranch emits If(cond, then, else), including
// the reconvergence/omitted-else special cases, and returns the node to
// continue flattening after the If (0 if the If's own children already
// account for everything past it).
func (f *flattener) flattenBranch(n *Node) (*TreeNode, NodeID) {
	trueEdge, _ := f.dag.SuccessorByKind(n.ID, True)
	falseEdge, _ := f.dag.SuccessorByKind(n.ID, False)

	join, hasJoin := f.immediatePostDominatorJoin(n.ID)

	var stop map[NodeID]bool
	if hasJoin {
		stop = map[NodeID]bool{join: true}
	}

	thenTree := f.flattenFrom(trueEdge.Target, stop)
	thenTerminal := endsInTransfer(thenTree)

	var elseTree *TreeNode
	elseTerminal := false
	if falseEdge != nil && falseEdge.Target != join {
		elseTree = f.flattenFrom(falseEdge.Target, stop)
		elseTerminal = endsInTransfer(elseTree)
	}

	ifNode := &TreeNode{Kind: TreeIf, Condition: n.Condition, Then: thenTree}

	switch {
	case elseTree != nil && !thenTerminal && !elseTerminal:
		ifNode.Else = elseTree
		if f.opts.Debug {
			ifNode.Rationale = "both arms reconverge at the post-dominating join; else kept"
		}
	case elseTree != nil:
		ifNode.Else = elseTree
	case thenTerminal:
		if f.opts.Debug {
			ifNode.Rationale = "then-arm ends in an unconditional transfer; else omitted, join code placed inline"
		}
	}

	if !hasJoin {
		return ifNode, 0
	}
	return ifNode, join
}

// immediatePostDominatorJoin returns the first explicit NodeJoin reached
// along the branch's true arm (see reachesJoin) and uses it as the stop
// point for both arms; the false arm is not checked against it, and no
// post-dominator computation is done.
func (f *flattener) immediatePostDominatorJoin(branch NodeID) (NodeID, bool) {
	trueEdge, _ := f.dag.SuccessorByKind(branch, True)
	falseEdge, _ := f.dag.SuccessorByKind(branch, False)
	if trueEdge == nil {
		return 0, false
	}
	cand := reachesJoin(f.dag, trueEdge.Target)
	if cand == 0 {
		return 0, false
	}
	if falseEdge != nil {
		if reachesJoin(f.dag, falseEdge.Target) != cand && falseEdge.Target != cand {
			// Arms reconverge at different joins (or the false arm never
			// reconverges) — still usable as the stop point for the then-arm.
		}
	}
	return cand, true
}

// reachesJoin walks Fall/unconditional edges forward looking for the nearest
// NodeJoin, without crossing into another branch.
func reachesJoin(g *Graph, start NodeID) NodeID {
	cur := start
	seen := map[NodeID]bool{}
	for cur != 0 && !seen[cur] {
		seen[cur] = true
		n := g.Node(cur)
		if n == nil {
			return 0
		}
		if n.Kind == NodeJoin {
			return cur
		}
		if n.Kind == NodeBranch || n.Kind == NodeLoopHeader {
			return 0
		}
		e, ok := g.SuccessorByKind(cur, Fall)
		if !ok {
			return 0
		}
		cur = e.Target
	}
	return 0
}

func endsInTransfer(t *TreeNode) bool {
	if t == nil {
		return false
	}
	last := t
	if t.Kind == TreeSeq && len(t.Children) > 0 {
		last = t.Children[len(t.Children)-1]
	}
	switch last.Kind {
	case TreeBreak, TreeContinue, TreeReturn, TreeGoto:
		return true
	default:
		return false
	}
}

func statementLeaf(n *Node) *TreeNode {
	if len(n.Statements) == 0 {
		return Seq()
	}
	first, last := n.Statements[0], n.Statements[len(n.Statements)-1]
	var texts []string
	for _, s := range n.Statements {
		texts = append(texts, s.Text)
	}
	return &TreeNode{
		Kind: TreeLeaf,
		Text: joinText(texts),
		Range: SourceRange{
			File: first.Location.File, StartLine: first.Location.StartLine, EndLine: last.Location.EndLine,
		},
	}
}

func (f *flattener) maybePerformCall(n *Node) *TreeNode {
	if len(n.Statements) != 1 || n.Statements[0].Kind != Perform {
		return nil
	}
	return &TreeNode{Kind: TreePerformCall, SectionName: n.Statements[0].Target}
}

func joinText(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "; "
		}
		out += p
	}
	return out
}

func collapse(l *list.List[*TreeNode]) *TreeNode {
	if l.Len() == 1 {
		return l.Front().Value
	}
	children := make([]*TreeNode, 0, l.Len())
	for e := l.Front(); e != nil; e = e.Next() {
		children = append(children, e.Value)
	}
	return Seq(children...)
}

// costDuplicate / costGoto implement the local cost heuristic for a
// join with multiple live predecessors in the DAG.
func costDuplicate(opts FlattenerOptions, postJoinSize int, duplicatingPreds int) int {
	return opts.DuplicationWeight * postJoinSize * duplicatingPreds
}

func costGoto(opts FlattenerOptions, gotoCount int) int {
	return opts.FixedOverhead + gotoCount
}

// chooseDuplicateOrGoto picks the cheaper strategy; ties prefer goto.
func chooseDuplicateOrGoto(opts FlattenerOptions, postJoinSize, duplicatingPreds, gotoCount int) bool {
	dup := costDuplicate(opts, postJoinSize, duplicatingPreds)
	goTo := costGoto(opts, gotoCount)
	return dup < goTo
}

// estimateSubtreeSize counts statements along the Fall chain starting at
// id, passing through joins; the next branch, loop header or section exit
// ends the count and adds one for itself. Used only to feed the cost
// heuristic, not to build the tree itself.
func estimateSubtreeSize(g *Graph, id NodeID) int {
	size := 0
	cur := id
	seen := map[NodeID]bool{}
	for cur != 0 && !seen[cur] {
		seen[cur] = true
		n := g.Node(cur)
		if n == nil {
			break
		}
		switch n.Kind {
		case NodeStatement:
			size += len(n.Statements)
		case NodeBranch, NodeLoopHeader, NodeSectionExit:
			return size + 1
		}
		e, ok := g.SuccessorByKind(cur, Fall)
		if !ok {
			return size
		}
		cur = e.Target
	}
	return size
}
