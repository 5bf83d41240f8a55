package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/cobolstruct/cobolstruct/internal/analyzer"
)

// fixedFormat renders a handful of logical procedure-division lines as
// fixed-format source: seven leading columns (sequence area + indicator)
// followed by code starting at column 8.
func fixedFormat(lines ...string) []byte {
	var b strings.Builder
	for _, l := range lines {
		if l != "" {
			b.WriteString("       ")
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func mustParse(t *testing.T, lines ...string) *analyzer.Procedure {
	t.Helper()
	p := New("test.cbl")
	proc, err := p.Parse(context.Background(), fixedFormat(lines...))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return proc
}

func TestParseStraightLine(t *testing.T) {
	proc := mustParse(t,
		"PROCEDURE DIVISION.",
		"MAIN SECTION.",
		"MOVE 'X' TO A.",
		"PERFORM SUB.",
		"EXIT PROGRAM.",
	)

	if len(proc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(proc.Sections))
	}
	sec := proc.Sections[0]
	if sec.Name != "MAIN" {
		t.Errorf("expected section name MAIN, got %q", sec.Name)
	}
	if len(sec.Paragraphs) != 1 {
		t.Fatalf("expected 1 unnamed paragraph, got %d", len(sec.Paragraphs))
	}
	stmts := sec.Paragraphs[0].Sentences
	if len(stmts) != 3 {
		t.Fatalf("expected 3 sentences, got %d", len(stmts))
	}
	if stmts[0].Statements[0].Kind != analyzer.Move {
		t.Errorf("expected first statement to be Move, got %v", stmts[0].Statements[0].Kind)
	}
	if stmts[1].Statements[0].Kind != analyzer.Perform {
		t.Errorf("expected second statement to be Perform, got %v", stmts[1].Statements[0].Kind)
	}
	if stmts[1].Statements[0].Target != "SUB" {
		t.Errorf("expected perform target SUB, got %q", stmts[1].Statements[0].Target)
	}
	if stmts[2].Statements[0].Kind != analyzer.ExitProgram {
		t.Errorf("expected third statement to be ExitProgram, got %v", stmts[2].Statements[0].Kind)
	}
}

func TestParseIfThenElse(t *testing.T) {
	proc := mustParse(t,
		"PROCEDURE DIVISION.",
		"MAIN SECTION.",
		"IF A = 'X' THEN MOVE 1 TO B ELSE MOVE 2 TO B END-IF.",
	)

	sec := proc.Sections[0]
	stmt := sec.Paragraphs[0].Sentences[0].Statements[0]
	if stmt.Kind != analyzer.If {
		t.Fatalf("expected If statement, got %v", stmt.Kind)
	}
	if !strings.Contains(stmt.Condition, "A = 'X'") {
		t.Errorf("expected condition to contain \"A = 'X'\", got %q", stmt.Condition)
	}
	if len(stmt.Then) != 1 || len(stmt.Else) != 1 {
		t.Fatalf("expected one then and one else statement, got then=%d else=%d", len(stmt.Then), len(stmt.Else))
	}
}

func TestParseGoTo(t *testing.T) {
	proc := mustParse(t,
		"PROCEDURE DIVISION.",
		"MAIN SECTION.",
		"GO TO SUB-EXIT.",
		"SUB-EXIT.",
		"EXIT PROGRAM.",
	)

	sec := proc.Sections[0]
	if len(sec.Paragraphs) != 2 {
		t.Fatalf("expected 2 paragraphs (unnamed + SUB-EXIT), got %d", len(sec.Paragraphs))
	}
	gotoStmt := sec.Paragraphs[0].Sentences[0].Statements[0]
	if gotoStmt.Kind != analyzer.GoTo {
		t.Fatalf("expected GoTo statement, got %v", gotoStmt.Kind)
	}
	if gotoStmt.Target != "SUB-EXIT" {
		t.Errorf("expected target SUB-EXIT, got %q", gotoStmt.Target)
	}
	if sec.Paragraphs[1].Name != "SUB-EXIT" {
		t.Errorf("expected second paragraph named SUB-EXIT, got %q", sec.Paragraphs[1].Name)
	}
}

func TestParsePerformThruRejectedLater(t *testing.T) {
	// The parser itself accepts "PERFORM A THRU B" syntactically; rejection
	// as UnsupportedPerformRange is the builder's job, not the parser's.
	proc := mustParse(t,
		"PROCEDURE DIVISION.",
		"MAIN SECTION.",
		"PERFORM A THRU B.",
		"EXIT PROGRAM.",
	)
	stmt := proc.Sections[0].Paragraphs[0].Sentences[0].Statements[0]
	if stmt.Kind != analyzer.Perform {
		t.Fatalf("expected Perform statement, got %v", stmt.Kind)
	}
	if stmt.TargetThru != "B" {
		t.Errorf("expected TargetThru B, got %q", stmt.TargetThru)
	}
}

func TestParseNextSentence(t *testing.T) {
	proc := mustParse(t,
		"PROCEDURE DIVISION.",
		"MAIN SECTION.",
		"IF A = 'X' THEN NEXT SENTENCE END-IF.",
		"MOVE 2 TO B.",
	)
	sec := proc.Sections[0]
	ifStmt := sec.Paragraphs[0].Sentences[0].Statements[0]
	if len(ifStmt.Then) != 1 || ifStmt.Then[0].Kind != analyzer.NextSentence {
		t.Fatalf("expected then-branch to be a single NextSentence statement, got %+v", ifStmt.Then)
	}
}

func TestParseCommentLineSkipped(t *testing.T) {
	var b strings.Builder
	b.WriteString("      *THIS IS A COMMENT\n")
	b.WriteString("       PROCEDURE DIVISION.\n")
	b.WriteString("       MAIN SECTION.\n")
	b.WriteString("       EXIT PROGRAM.\n")

	p := New("test.cbl")
	proc, err := p.Parse(context.Background(), []byte(b.String()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(proc.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(proc.Sections))
	}
}
