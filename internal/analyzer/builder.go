package analyzer

// BuildOptions tunes builder behavior for the open questions.
type BuildOptions struct {
	// StrictCrossSectionGoto promotes CrossSectionGoto from warning to fatal.
	StrictCrossSectionGoto bool
}

// DefaultBuildOptions matches the source behavior the spec preserves:
// cross-section goto is accepted with a warning.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{StrictCrossSectionGoto: false}
}

// BuildResult bundles the per-section entry graphs the builder produced plus
// the name table (for diagnostics about duplicate names) and any warnings
// raised while resolving jumps.
type BuildResult struct {
	Graph *Graph
	NameTable *NameTable
	SectionByID map[NodeID]*Section
	Diagnostics []Diagnostic
}

// builder walks a Procedure and emits one shared Graph whose nodes are
// individual statements, with a distinguished SectionEntry per section.
type builder struct {
	g *Graph
	opts BuildOptions
	nt *NameTable

	// sectionEntry/sectionExit hold each section's synthetic delimiter
	// nodes; paraEntry maps a paragraph to the node id of its first
	// statement, filled in for every paragraph before any statement is linked.
	sectionEntry map[*Section]NodeID
	sectionExit map[*Section]NodeID
	paraEntry map[*Paragraph]NodeID

	diags []Diagnostic
}

// BuildStatementGraph consumes a parsed Procedure and emits a Graph with one
// entry node per section, wired by Fall/Jump/PerformCall/PerformReturn edges.
func BuildStatementGraph(proc *Procedure, opts BuildOptions) (*BuildResult, error) {
	nt := BuildNameTable(proc)
	b := &builder{
		g: NewGraph(),
		opts: opts,
		nt: nt,
		sectionEntry: make(map[*Section]NodeID),
		sectionExit: make(map[*Section]NodeID),
		paraEntry: make(map[*Paragraph]NodeID),
	}

	for _, dup := range nt.Duplicates {
		b.diags = append(b.diags, Diagnostic{
			Kind: DiagDuplicateName, Severity: SeverityWarning,
			Message: "duplicate name '" + dup.Name + "': first definition wins",
			Location: dup.DupeLoc, Section: dup.SectionName,
		})
	}

	// Pre-allocate an entry/exit node per section so forward references
	// (goto/perform to a section defined later) can resolve.
	for _, sec := range proc.Sections {
		entry := b.g.NewNode(NodeSectionEntry)
		entry.Section = sec
		exit := b.g.NewNode(NodeSectionExit)
		exit.Section = sec
		b.sectionEntry[sec] = entry.ID
		b.sectionExit[sec] = exit.ID
	}
	// Record every paragraph's first statement up front too, so a go
	// to/perform aimed at the current or a later paragraph lands on that
	// statement rather than on the section entry.
	for _, sec := range proc.Sections {
		for pi, para := range sec.Paragraphs {
			b.paraEntry[para] = b.firstStatementNodeID(sec, pi, 0)
		}
	}

	sectionByID := make(map[NodeID]*Section)
	for _, sec := range proc.Sections {
		sectionByID[b.sectionEntry[sec]] = sec
		if err := b.linkSection(proc, sec); err != nil {
			return nil, err
		}
	}

	if len(proc.Sections) > 0 {
		b.g.Entry = b.sectionEntry[proc.Sections[0]]
	}

	return &BuildResult{Graph: b.g, NameTable: nt, SectionByID: sectionByID, Diagnostics: b.diags}, nil
}

// linkSection wires the SectionEntry to the first paragraph's first
// statement, then links every statement in turn.
func (b *builder) linkSection(proc *Procedure, sec *Section) error {
	entryID := b.sectionEntry[sec]
	if len(sec.Paragraphs) == 0 {
		b.g.AddEdge(entryID, b.sectionExit[sec], Fall)
		return nil
	}

	for pi, para := range sec.Paragraphs {
		firstStmtID, err := b.linkParagraph(proc, sec, para, pi)
		if err != nil {
			return err
		}
		b.paraEntry[para] = firstStmtID
		if pi == 0 {
			b.g.AddEdge(entryID, firstStmtID, Fall)
		}
	}
	return nil
}

// fallthroughTarget computes the node id statements should fall into when
// they run off the end of a sentence/paragraph/section (the sequential-statement fallthrough rule).
func (b *builder) fallthroughTarget(sec *Section, paraIdx, sentIdx int) NodeID {
	para := sec.Paragraphs[paraIdx]
	if sentIdx+1 < len(para.Sentences) {
		return b.firstStatementNodeID(sec, paraIdx, sentIdx+1)
	}
	if paraIdx+1 < len(sec.Paragraphs) {
		return b.firstStatementNodeID(sec, paraIdx+1, 0)
	}
	return b.sectionExit[sec]
}

func (b *builder) firstStatementNodeID(sec *Section, paraIdx, sentIdx int) NodeID {
	para := sec.Paragraphs[paraIdx]
	if sentIdx >= len(para.Sentences) {
		if paraIdx+1 < len(sec.Paragraphs) {
			return b.firstStatementNodeID(sec, paraIdx+1, 0)
		}
		return b.sectionExit[sec]
	}
	sent := para.Sentences[sentIdx]
	if len(sent.Statements) == 0 {
		return b.fallthroughTarget(sec, paraIdx, sentIdx)
	}
	return NodeID(sent.Statements[0].ID)
}

func (b *builder) linkParagraph(proc *Procedure, sec *Section, para *Paragraph, paraIdx int) (NodeID, error) {
	if len(para.Sentences) == 0 {
		return b.firstStatementNodeID(sec, paraIdx, 0), nil
	}
	for si, sent := range para.Sentences {
		if err := b.linkSentence(sec, paraIdx, si, sent); err != nil {
			return 0, err
		}
	}
	return b.firstStatementNodeID(sec, paraIdx, 0), nil
}

func (b *builder) linkSentence(sec *Section, paraIdx, sentIdx int, sent *Sentence) error {
	for i, stmt := range sent.Statements {
		var next NodeID
		if i+1 < len(sent.Statements) {
			next = NodeID(sent.Statements[i+1].ID)
		} else {
			next = b.fallthroughTarget(sec, paraIdx, sentIdx)
		}
		if err := b.linkStatement(sec, stmt, next); err != nil {
			return err
		}
	}
	return nil
}

// linkStatement emits the node (if not already present) and its outgoing
// edge(s).
func (b *builder) linkStatement(sec *Section, stmt *Statement, fallTo NodeID) error {
	id := NodeID(stmt.ID)
	n := b.g.Node(id)
	if n == nil {
		n = &Node{ID: id, Kind: NodeStatement}
		b.g.PutNode(n)
	}
	n.Section = sec
	n.Statements = []*Statement{stmt}

	switch stmt.Kind {
	case GoTo:
		if stmt.TargetThru != "" {
			return newFatal(UnsupportedPerformRange, stmt.Location, sec.Name,
				"perform/go to of a paragraph range ('"+stmt.Target+"' thru '"+stmt.TargetThru+"') is unsupported")
		}
		targetSec, targetPara, ok := b.nt.ResolveParagraph(stmt.Target, sec)
		if !ok {
			return newFatal(UnresolvedLabel, stmt.Location, sec.Name, "go to unresolved label '"+stmt.Target+"'")
		}
		if err := b.checkCrossSection(sec, targetSec, stmt); err != nil {
			return err
		}
		b.g.AddEdge(id, b.targetEntryID(targetSec, targetPara), Jump)

	case NextSentence:
		// Jump to the first statement of the next sentence in the enclosing
		// paragraph, or the section exit if there is none.
		b.g.AddEdge(id, fallTo, Jump)

	case If:
		n.Kind = NodeBranch
		n.Condition = stmt.Condition
		joinID := b.g.NextNodeID()
		join := &Node{ID: joinID, Kind: NodeJoin, Section: sec}
		b.g.PutNode(join)
		b.g.AddEdge(joinID, fallTo, Fall)

		thenHead, thenTerminal, err := b.linkBody(sec, stmt.Then, joinID)
		if err != nil {
			return err
		}
		b.g.AddEdge(id, thenHead, True)
		_ = thenTerminal

		if len(stmt.Else) > 0 {
			elseHead, _, err := b.linkBody(sec, stmt.Else, joinID)
			if err != nil {
				return err
			}
			b.g.AddEdge(id, elseHead, False)
		} else {
			b.g.AddEdge(id, joinID, False)
		}

	case Perform:
		if stmt.TargetThru != "" {
			return newFatal(UnsupportedPerformRange, stmt.Location, sec.Name,
				"perform of a paragraph range ('"+stmt.Target+"' thru '"+stmt.TargetThru+"') is unsupported")
		}
		targetSec, targetPara, ok := b.nt.ResolveParagraph(stmt.Target, sec)
		if !ok {
			return newFatal(UnresolvedLabel, stmt.Location, sec.Name, "perform unresolved label '"+stmt.Target+"'")
		}
		edge := b.g.AddEdge(id, b.targetEntryID(targetSec, targetPara), PerformCallEdge)
		edge.PerformTarget = stmt.Target
		// The call's matching return lands on the statement following the
		// perform. A section's terminator can be the
		// target of many call sites, so the (target, return-site) pairing
		// required by this contract cannot live on a single PerformReturnEdge out of
		// the shared SectionExit without violating the one-edge-per-kind
		// invariant the moment a paragraph is performed from two
		// places; we track it out-of-band in b.g.performReturns instead,
		// keyed per call site; a PerformReturnEdge is added only for the
		// first call site recorded for each callee (see recordPerformReturn).
		b.g.recordPerformReturn(id, b.sectionExit[targetSec], fallTo)
		// Within the caller's section the Perform is treated as an opaque
		// single statement: the callee's body is structured
		// independently. The call site's own progression is a plain Fall.
		b.g.AddEdge(id, fallTo, Fall)

	case ExitSection:
		b.g.AddEdge(id, b.sectionExit[sec], Fall)

	case ExitProgram:
		// Terminal: no outgoing edge.

	default:
		b.g.AddEdge(id, fallTo, Fall)
	}

	return nil
}

// linkBody links an inline If-body (then/else) that isn't itself a full
// section, returning the head node id to jump into and whether the body
// ends in an unconditional transfer (so callers can decide whether the
// fallthrough to joinID is actually reachable). A fatal error from any
// statement in the body (an unresolved label, an unsupported perform
// range) propagates to the caller instead of leaving the statement
// dangling with no outgoing edge.
func (b *builder) linkBody(sec *Section, stmts []*Statement, joinID NodeID) (NodeID, bool, error) {
	if len(stmts) == 0 {
		return joinID, false, nil
	}
	for i, stmt := range stmts {
		var next NodeID
		if i+1 < len(stmts) {
			next = NodeID(stmts[i+1].ID)
		} else {
			next = joinID
		}
		if err := b.linkStatement(sec, stmt, next); err != nil {
			return 0, false, err
		}
	}
	last := stmts[len(stmts)-1]
	terminal := last.Kind == ExitProgram || last.Kind == ExitSection || last.Kind == GoTo
	return NodeID(stmts[0].ID), terminal, nil
}

func (b *builder) targetEntryID(sec *Section, para *Paragraph) NodeID {
	if para != nil {
		if id, ok := b.paraEntry[para]; ok {
			return id
		}
	}
	return b.sectionEntry[sec]
}

func (b *builder) checkCrossSection(from, to *Section, stmt *Statement) error {
	if from == to {
		return nil
	}
	msg := "go to '" + stmt.Target + "' crosses from section '" + from.Name + "' into '" + to.Name + "'"
	if b.opts.StrictCrossSectionGoto {
		return newFatal(CrossSectionGoto, stmt.Location, from.Name, msg)
	}
	b.diags = append(b.diags, Diagnostic{
		Kind: CrossSectionGoto, Severity: SeverityWarning, Section: from.Name, Location: stmt.Location, Message: msg,
	})
	return nil
}
