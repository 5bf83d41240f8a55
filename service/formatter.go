package service

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/internal/analyzer"
	"github.com/cobolstruct/cobolstruct/internal/reporter"
)

// OutputFormatterImpl implements domain.OutputFormatter over
// internal/reporter's text/JSON/dot renderers, plus a COBOL-pseudocode
// renderer for domain.OutputFormatCOBOL that has no reporter equivalent.
type OutputFormatterImpl struct{}

// NewOutputFormatter creates an OutputFormatterImpl.
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// Format renders resp as a string in the requested format.
func (f *OutputFormatterImpl) Format(resp *domain.RestructureResponse, format domain.OutputFormat) (string, error) {
	var buf bytes.Buffer
	if err := f.Write(resp, format, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Write renders resp into writer in the requested format.
func (f *OutputFormatterImpl) Write(resp *domain.RestructureResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText:
		return f.writeEachResult(resp, writer, func(r *reporter.TreeReporter, prog *analyzer.StructuredProgram) error {
			return r.WriteText(prog)
		})
	case domain.OutputFormatJSON:
		return f.writeEachResult(resp, writer, func(r *reporter.TreeReporter, prog *analyzer.StructuredProgram) error {
			return r.WriteJSON(prog)
		})
	case domain.OutputFormatDOT:
		return f.writeEachResult(resp, writer, func(r *reporter.TreeReporter, prog *analyzer.StructuredProgram) error {
			for _, sec := range prog.Sections {
				if err := r.WriteDot(sec); err != nil {
					return err
				}
			}
			return nil
		})
	case domain.OutputFormatCOBOL:
		return f.writeCobol(resp, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

func (f *OutputFormatterImpl) writeEachResult(resp *domain.RestructureResponse, writer io.Writer, fn func(*reporter.TreeReporter, *analyzer.StructuredProgram) error) error {
	r := reporter.NewTreeReporter(writer, 0)
	for _, fr := range resp.Results {
		if fr.Program == nil {
			continue
		}
		if err := fn(r, fr.Program); err != nil {
			return domain.NewOutputError(fmt.Sprintf("writing output for %s", fr.Path), err)
		}
	}
	return nil
}

// writeCobol renders each section's structured tree as COBOL-flavored
// pseudocode: IF/ELSE/END-IF and PERFORM UNTIL in place of the generic
// if/while vocabulary the text renderer uses, so the output reads like a
// COBOL developer's own restructuring of the procedure division.
func (f *OutputFormatterImpl) writeCobol(resp *domain.RestructureResponse, writer io.Writer) error {
	for _, fr := range resp.Results {
		if fr.Program == nil {
			continue
		}
		if _, err := fmt.Fprintf(writer, "      *> %s\n", fr.Path); err != nil {
			return err
		}
		for _, sec := range fr.Program.Sections {
			if _, err := fmt.Fprintf(writer, "       %s SECTION.\n", sec.Name); err != nil {
				return err
			}
			if err := writeCobolNode(writer, sec.Tree, 2); err != nil {
				return domain.NewOutputError(fmt.Sprintf("writing cobol output for %s", fr.Path), err)
			}
		}
	}
	return nil
}

func writeCobolNode(w io.Writer, n *analyzer.TreeNode, depth int) error {
	if n == nil {
		return nil
	}
	indent := strings.Repeat("    ", depth)
	switch n.Kind {
	case analyzer.TreeSeq:
		for _, c := range n.Children {
			if err := writeCobolNode(w, c, depth); err != nil {
				return err
			}
		}
	case analyzer.TreeIf:
		if _, err := fmt.Fprintf(w, "%sIF %s\n", indent, n.Condition); err != nil {
			return err
		}
		if err := writeCobolNode(w, n.Then, depth+1); err != nil {
			return err
		}
		if n.Else != nil {
			if _, err := fmt.Fprintf(w, "%sELSE\n", indent); err != nil {
				return err
			}
			if err := writeCobolNode(w, n.Else, depth+1); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%sEND-IF\n", indent)
		return err
	case analyzer.TreeWhile:
		if _, err := fmt.Fprintf(w, "%sPERFORM UNTIL NOT ( %s )\n", indent, n.Condition); err != nil {
			return err
		}
		if err := writeCobolNode(w, n.Body, depth+1); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%sEND-PERFORM\n", indent)
		return err
	case analyzer.TreeForever:
		if _, err := fmt.Fprintf(w, "%sPERFORM FOREVER\n", indent); err != nil {
			return err
		}
		if err := writeCobolNode(w, n.Body, depth+1); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%sEND-PERFORM\n", indent)
		return err
	case analyzer.TreeBreak:
		_, err := fmt.Fprintf(w, "%sEXIT PERFORM\n", indent)
		return err
	case analyzer.TreeContinue:
		_, err := fmt.Fprintf(w, "%sCONTINUE\n", indent)
		return err
	case analyzer.TreeLabel:
		if _, err := fmt.Fprintf(w, "%s%s.\n", indent, n.Label); err != nil {
			return err
		}
		return writeCobolNode(w, n.Body, depth+1)
	case analyzer.TreeGoto:
		_, err := fmt.Fprintf(w, "%sGO TO %s\n", indent, n.Label)
		return err
	case analyzer.TreeReturn:
		_, err := fmt.Fprintf(w, "%sEXIT SECTION\n", indent)
		return err
	case analyzer.TreePerformCall:
		_, err := fmt.Fprintf(w, "%sPERFORM %s\n", indent, n.SectionName)
		return err
	case analyzer.TreeLeaf:
		_, err := fmt.Fprintf(w, "%s%s\n", indent, n.Text)
		return err
	case analyzer.TreeComment:
		_, err := fmt.Fprintf(w, "%s*> %s\n", indent, n.Comment)
		return err
	}
	return nil
}
