package analyzer

import (
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// TreeKind is the closed set of Structured Tree variants.
type TreeKind int

const (
	TreeSeq TreeKind = iota
	TreeIf
	TreeForever
	TreeWhile
	TreeBreak
	TreeContinue
	TreeLabel
	TreeGoto
	TreeLeaf
	TreePerformCall
	TreeReturn
	TreeComment
)

func (k TreeKind) String() string {
	switch k {
	case TreeSeq:
		return "Seq"
	case TreeIf:
		return "If"
	case TreeForever:
		return "Forever"
	case TreeWhile:
		return "While"
	case TreeBreak:
		return "Break"
	case TreeContinue:
		return "Continue"
	case TreeLabel:
		return "Label"
	case TreeGoto:
		return "Goto"
	case TreeLeaf:
		return "Leaf"
	case TreePerformCall:
		return "PerformCall"
	case TreeReturn:
		return "Return"
	case TreeComment:
		return "Comment"
	default:
		return "Unknown"
	}
}

// TreeNode is the final IR, a tagged union modeled
// as a struct with kind-specific fields left zero when unused. Each node
// back-references a contiguous range of original COBOL source lines.
type TreeNode struct {
	Kind TreeKind `json:"kind"`

	Children []*TreeNode `json:"children,omitempty"`

	// If
	Condition string `json:"condition,omitempty"`
	Then *TreeNode `json:"then,omitempty"`
	Else *TreeNode `json:"else,omitempty"`

	// Forever / While
	Body *TreeNode `json:"body,omitempty"`

	// Break / Continue
	LoopID LoopID `json:"loop_id,omitempty"`

	// Label / Goto
	Label string `json:"label,omitempty"`

	// Leaf
	Range SourceRange `json:"range,omitzero"`
	Text string `json:"text,omitempty"`

	// PerformCall
	SectionName string `json:"section_name,omitempty"`

	// Comment
	Comment string `json:"comment,omitempty"`

	// Rationale is populated only when FlattenerOptions.Debug is set, and
	// only on some If/While/Forever nodes: a one-line note on the loop or
	// branch shape that decided how the node was emitted.
	Rationale string `json:"rationale,omitempty"`
}

// Seq constructs a TreeSeq node.
func Seq(children...*TreeNode) *TreeNode {
	return &TreeNode{Kind: TreeSeq, Children: children}
}

// StructuredProgram is the root artifact handed to renderers: one
// structured tree per section, plus the diagnostics accumulated along the
// way and a stable source-range map.
type StructuredProgram struct {
	RunID RunID `json:"run_id"`
	Sections []*StructuredSection `json:"sections"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// StructuredSection is one section's flattened tree.
type StructuredSection struct {
	Name string `json:"name"`
	Tree *TreeNode `json:"tree"`
}

// MarshalEasyJSON implements easyjson.Marshaler by hand (no generator is run
// in this repository) for the hot path of emitting the Structured Tree in
// the json output format (reporter.WriteJSON) without paying encoding/json's
// reflection cost on every node of a potentially large tree.
func (t *TreeNode) MarshalEasyJSON(w *jwriter.Writer) {
	if t == nil {
		w.RawString("null")
		return
	}
	w.RawByte('{')
	w.RawString(`"kind":`)
	w.String(t.Kind.String())

	if len(t.Children) > 0 {
		w.RawString(`,"children":[`)
		for i, c := range t.Children {
			if i > 0 {
				w.RawByte(',')
			}
			c.MarshalEasyJSON(w)
		}
		w.RawByte(']')
	}
	if t.Condition != "" {
		w.RawString(`,"condition":`)
		w.String(t.Condition)
	}
	if t.Then != nil {
		w.RawString(`,"then":`)
		t.Then.MarshalEasyJSON(w)
	}
	if t.Else != nil {
		w.RawString(`,"else":`)
		t.Else.MarshalEasyJSON(w)
	}
	if t.Body != nil {
		w.RawString(`,"body":`)
		t.Body.MarshalEasyJSON(w)
	}
	if t.Kind == TreeBreak || t.Kind == TreeContinue {
		w.RawString(`,"loop_id":`)
		w.Int(int(t.LoopID))
	}
	if t.Label != "" {
		w.RawString(`,"label":`)
		w.String(t.Label)
	}
	if t.Text != "" {
		w.RawString(`,"text":`)
		w.String(t.Text)
		w.RawString(`,"range":{"file":`)
		w.String(t.Range.File)
		w.RawString(`,"start_line":`)
		w.Int(t.Range.StartLine)
		w.RawString(`,"end_line":`)
		w.Int(t.Range.EndLine)
		w.RawByte('}')
	}
	if t.SectionName != "" {
		w.RawString(`,"section_name":`)
		w.String(t.SectionName)
	}
	if t.Comment != "" {
		w.RawString(`,"comment":`)
		w.String(t.Comment)
	}
	if t.Rationale != "" {
		w.RawString(`,"rationale":`)
		w.String(t.Rationale)
	}
	w.RawByte('}')
}

func treeKindFromString(s string) TreeKind {
	for k := TreeSeq; k <= TreeComment; k++ {
		if k.String() == s {
			return k
		}
	}
	return TreeSeq
}

// UnmarshalEasyJSON is a best-effort reader for a single node's scalar
// fields (kind, text, condition, label, section_name and comment); every
// other field, including range, children, then/else/body, loop_id and
// rationale, is skipped, so nested nodes are not rebuilt.
func (t *TreeNode) UnmarshalEasyJSON(l *jlexer.Lexer) {
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeFieldName(false)
		l.WantColon()
		switch key {
		case "kind":
			t.Kind = treeKindFromString(l.String())
		case "text":
			t.Text = l.String()
		case "condition":
			t.Condition = l.String()
		case "label":
			t.Label = l.String()
		case "section_name":
			t.SectionName = l.String()
		case "comment":
			t.Comment = l.String()
		default:
			l.SkipRecursive()
		}
		l.WantComma()
	}
	l.Delim('}')
}
