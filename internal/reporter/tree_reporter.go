// Package reporter renders the core pipeline's output: the final structured
// tree, or any of its named intermediate graphs, as text or Graphviz dot.
package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/mailru/easyjson/jwriter"
	"github.com/rivo/uniseg"
	"golang.org/x/term"

	"github.com/cobolstruct/cobolstruct/internal/analyzer"
)

// TreeReporter renders StructuredPrograms and graph stages to a writer.
type TreeReporter struct {
	writer io.Writer
	width  int
}

// NewTreeReporter creates a reporter. If width is 0, the reporter probes the
// writer's terminal width (falling back to 100 columns when it isn't a TTY).
func NewTreeReporter(writer io.Writer, width int) *TreeReporter {
	if width <= 0 {
		width = terminalWidth(writer)
	}
	return &TreeReporter{writer: writer, width: width}
}

func terminalWidth(w io.Writer) int {
	type fdWriter interface {
		Fd() uintptr
	}
	if f, ok := w.(fdWriter); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 100
}

// WriteText renders every section's structured tree as indented pseudocode.
func (r *TreeReporter) WriteText(prog *analyzer.StructuredProgram) error {
	for _, sec := range prog.Sections {
		if _, err := fmt.Fprintf(r.writer, "%s.\n", sec.Name); err != nil {
			return err
		}
		if err := r.writeNode(sec.Tree, 1); err != nil {
			return err
		}
	}
	for _, d := range prog.Diagnostics {
		if _, err := fmt.Fprintf(r.writer, "%s: %s\n", d.Kind, d.Message); err != nil {
			return err
		}
	}
	return nil
}

func (r *TreeReporter) writeNode(n *analyzer.TreeNode, depth int) error {
	if n == nil {
		return nil
	}
	indent := strings.Repeat("    ", depth)
	switch n.Kind {
	case analyzer.TreeSeq:
		for _, c := range n.Children {
			if err := r.writeNode(c, depth); err != nil {
				return err
			}
		}
	case analyzer.TreeIf:
		if _, err := fmt.Fprintf(r.writer, "%sif %s\n", indent, n.Condition); err != nil {
			return err
		}
		if err := r.writeNode(n.Then, depth+1); err != nil {
			return err
		}
		if n.Else != nil {
			if _, err := fmt.Fprintf(r.writer, "%selse\n", indent); err != nil {
				return err
			}
			if err := r.writeNode(n.Else, depth+1); err != nil {
				return err
			}
		}
	case analyzer.TreeWhile:
		if _, err := fmt.Fprintf(r.writer, "%swhile %s\n", indent, n.Condition); err != nil {
			return err
		}
		return r.writeNode(n.Body, depth+1)
	case analyzer.TreeForever:
		if _, err := fmt.Fprintf(r.writer, "%sloop\n", indent); err != nil {
			return err
		}
		return r.writeNode(n.Body, depth+1)
	case analyzer.TreeBreak:
		_, err := fmt.Fprintf(r.writer, "%sbreak\n", indent)
		return err
	case analyzer.TreeContinue:
		_, err := fmt.Fprintf(r.writer, "%scontinue\n", indent)
		return err
	case analyzer.TreeLabel:
		if _, err := fmt.Fprintf(r.writer, "%s%s:\n", indent, n.Label); err != nil {
			return err
		}
		return r.writeNode(n.Body, depth+1)
	case analyzer.TreeGoto:
		_, err := fmt.Fprintf(r.writer, "%sgoto %s\n", indent, n.Label)
		return err
	case analyzer.TreeReturn:
		_, err := fmt.Fprintf(r.writer, "%sreturn\n", indent)
		return err
	case analyzer.TreePerformCall:
		_, err := fmt.Fprintf(r.writer, "%scall %s\n", indent, n.SectionName)
		return err
	case analyzer.TreeLeaf:
		_, err := fmt.Fprintf(r.writer, "%s%s\n", indent, truncateToWidth(n.Text, r.width-depth*4))
		return err
	case analyzer.TreeComment:
		_, err := fmt.Fprintf(r.writer, "%s* %s\n", indent, n.Comment)
		return err
	}
	return nil
}

// truncateToWidth shortens s to at most width display columns, counting by
// grapheme cluster rather than byte or rune so multi-byte COBOL comment text
// doesn't get cut mid-character.
func truncateToWidth(s string, width int) string {
	if width <= 1 {
		return s
	}
	g := uniseg.NewGraphemes(s)
	var b strings.Builder
	count := 0
	for g.Next() {
		if count >= width-1 {
			b.WriteString("…")
			return b.String()
		}
		b.WriteString(g.Str())
		count++
	}
	return b.String()
}

// WriteJSON renders the structured program via the IR's hand-written
// easyjson marshaler.
func (r *TreeReporter) WriteJSON(prog *analyzer.StructuredProgram) error {
	w := &jwriter.Writer{}
	w.RawByte('{')
	w.RawString(`"run_id":`)
	w.String(string(prog.RunID))
	w.RawString(`,"sections":[`)
	for i, sec := range prog.Sections {
		if i > 0 {
			w.RawByte(',')
		}
		w.RawByte('{')
		w.RawString(`"name":`)
		w.String(sec.Name)
		w.RawString(`,"tree":`)
		sec.Tree.MarshalEasyJSON(w)
		w.RawByte('}')
	}
	w.RawByte(']')
	w.RawByte('}')
	_, err := w.DumpTo(r.writer)
	return err
}

// WriteDot renders one section's structured tree as a Graphviz digraph,
// useful for comparing the Flattener's output shape against the raw graph
// stages rendered by WriteGraphStageDot.
func (r *TreeReporter) WriteDot(sec *analyzer.StructuredSection) error {
	var sb strings.Builder
	sb.WriteString("digraph \"" + sec.Name + "\" {\n")
	next := 0
	var walk func(n *analyzer.TreeNode) string
	walk = func(n *analyzer.TreeNode) string {
		id := fmt.Sprintf("n%d", next)
		next++
		label := n.Kind.String()
		if n.Kind == analyzer.TreeLeaf {
			label = truncateToWidth(n.Text, 40)
		}
		sb.WriteString(fmt.Sprintf("  %s [label=%q];\n", id, label))
		for _, c := range n.Children {
			cid := walk(c)
			sb.WriteString(fmt.Sprintf("  %s -> %s;\n", id, cid))
		}
		if n.Then != nil {
			sb.WriteString(fmt.Sprintf("  %s -> %s [label=\"then\"];\n", id, walk(n.Then)))
		}
		if n.Else != nil {
			sb.WriteString(fmt.Sprintf("  %s -> %s [label=\"else\"];\n", id, walk(n.Else)))
		}
		if n.Body != nil {
			sb.WriteString(fmt.Sprintf("  %s -> %s [label=\"body\"];\n", id, walk(n.Body)))
		}
		return id
	}
	walk(sec.Tree)
	sb.WriteString("}\n")
	_, err := io.WriteString(r.writer, sb.String())
	return err
}

// WriteGraphStageDot renders one of the named intermediate graphs (the
// `graph` subcommand's --stage flag) rather than the final structured tree.
func WriteGraphStageDot(w io.Writer, g *analyzer.Graph, stageName string) error {
	var sb strings.Builder
	sb.WriteString("digraph \"" + stageName + "\" {\n")
	for _, id := range g.Nodes() {
		n := g.Node(id)
		label := nodeLabel(n)
		sb.WriteString(fmt.Sprintf("  n%d [label=%q];\n", id, label))
		for _, e := range g.Successors(id) {
			sb.WriteString(fmt.Sprintf("  n%d -> n%d [label=%q];\n", id, e.Target, e.Kind.String()))
		}
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func nodeLabel(n *analyzer.Node) string {
	if n == nil {
		return "?"
	}
	if len(n.Statements) > 0 {
		return truncateToWidth(n.Statements[0].Text, 40)
	}
	switch n.Kind {
	case analyzer.NodeSectionEntry:
		return "entry"
	case analyzer.NodeSectionExit:
		return "exit"
	case analyzer.NodeBranch:
		return "if " + n.Condition
	case analyzer.NodeJoin:
		return "join"
	case analyzer.NodeLoopHeader:
		return fmt.Sprintf("loop#%d", n.LoopID)
	case analyzer.NodeContinueMarker:
		return "continue"
	case analyzer.NodeBreakMarker:
		return "break"
	case analyzer.NodeGotoMarker:
		return "goto " + n.Label
	default:
		return "?"
	}
}
