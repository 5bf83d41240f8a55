// Package parser turns fixed-format COBOL source into the typed statement
// tree internal/analyzer consumes. It implements a small hand-written
// recursive-descent reader over the PROCEDURE DIVISION rather than a full
// COBOL grammar: the core pipeline only needs section/paragraph structure
// and the handful of control-flow verbs (IF, GO TO, PERFORM, EXIT, NEXT
// SENTENCE); every other verb is kept as an opaque statement leaf.
package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cobolstruct/cobolstruct/internal/analyzer"
)

// controlVerbs starts a new statement within a sentence; every other verb is
// folded into the preceding opaque statement's text until one of these (or
// the sentence's terminal period) is reached.
var controlVerbs = map[string]bool{
	"IF": true, "GO": true, "PERFORM": true, "EXIT": true, "NEXT": true,
}

// statementIDBase reserves a disjoint id namespace for statement nodes, so
// Statement.ID values never collide with the synthetic node ids the
// Statement Graph Builder's Graph arena allocates for section
// entries/exits and if-joins from its own independent counter.
const statementIDBase = 1 << 20

// Parser reads COBOL source into a Procedure.
type Parser struct {
	file   string
	nextID int
}

// New creates a Parser. file is used only to annotate SourceLocations.
func New(file string) *Parser {
	return &Parser{file: file, nextID: statementIDBase}
}

// Parse reads the PROCEDURE DIVISION out of source and returns its Procedure.
func (p *Parser) Parse(_ context.Context, source []byte) (*analyzer.Procedure, error) {
	words := lex(string(source))
	words = skipToProcedureDivision(words)

	b := &procBuilder{p: p, words: words}
	return b.run()
}

// ParseFile reads all of r and parses it.
func (p *Parser) ParseFile(ctx context.Context, r io.Reader) (*analyzer.Procedure, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	return p.Parse(ctx, source)
}

// skipToProcedureDivision discards the identification/environment/data
// divisions; everything before "PROCEDURE DIVISION" (and its optional USING
// phrase, up to the following period) is irrelevant to control-flow
// reconstruction.
func skipToProcedureDivision(words []word) []word {
	for i := 0; i+1 < len(words); i++ {
		if upper(trimPeriod(words[i].text)) == "PROCEDURE" && upper(trimPeriod(words[i+1].text)) == "DIVISION" {
			j := i + 2
			for j < len(words) && !endsSentence(words[j-1]) {
				j++
			}
			return words[j:]
		}
	}
	return nil
}

type procBuilder struct {
	p     *Parser
	words []word
	pos   int
}

func (b *procBuilder) run() (*analyzer.Procedure, error) {
	proc := &analyzer.Procedure{}
	var curSection *analyzer.Section
	var curParagraph *analyzer.Paragraph

	ensureSection := func() *analyzer.Section {
		if curSection == nil {
			curSection = &analyzer.Section{Name: ""}
			proc.Sections = append(proc.Sections, curSection)
		}
		return curSection
	}
	ensureParagraph := func() *analyzer.Paragraph {
		sec := ensureSection()
		if curParagraph == nil {
			curParagraph = &analyzer.Paragraph{Name: ""}
			sec.Paragraphs = append(sec.Paragraphs, curParagraph)
		}
		return curParagraph
	}

	for b.pos < len(b.words) {
		clauseEnd := b.clauseEnd(b.pos)
		clause := b.words[b.pos:clauseEnd]
		if len(clause) == 0 {
			break
		}

		if name, ok := sectionHeaderName(clause); ok {
			curSection = &analyzer.Section{Name: name, Location: locOf(clause[0], b.p.file)}
			proc.Sections = append(proc.Sections, curSection)
			curParagraph = nil
			b.pos = clauseEnd
			continue
		}

		if name, ok := paragraphHeaderName(clause); ok {
			sec := ensureSection()
			curParagraph = &analyzer.Paragraph{Name: name, Location: locOf(clause[0], b.p.file)}
			sec.Paragraphs = append(sec.Paragraphs, curParagraph)
			b.pos = clauseEnd
			continue
		}

		para := ensureParagraph()
		sent := b.parseSentence(clause)
		para.Sentences = append(para.Sentences, sent)
		b.pos = clauseEnd
	}

	return proc, nil
}

// clauseEnd returns the index one past the first sentence-terminating word
// starting at from (inclusive of that word).
func (b *procBuilder) clauseEnd(from int) int {
	i := from
	for i < len(b.words) {
		if endsSentence(b.words[i]) {
			return i + 1
		}
		i++
	}
	return i
}

// sectionHeaderName recognizes "NAME SECTION." (optionally with a segment
// number, e.g. "NAME SECTION 10.", which is dropped). "EXIT SECTION." is the
// statement, not a header.
func sectionHeaderName(clause []word) (string, bool) {
	if len(clause) < 2 {
		return "", false
	}
	if upper(trimPeriod(clause[1].text)) != "SECTION" || upper(clause[0].text) == "EXIT" {
		return "", false
	}
	return clause[0].text, true
}

// paragraphHeaderName recognizes a bare "NAME." on its own line that isn't a
// recognized verb (so a one-word sentence like "CONTINUE." isn't mistaken
// for a paragraph header).
func paragraphHeaderName(clause []word) (string, bool) {
	if len(clause) != 1 {
		return "", false
	}
	name := trimPeriod(clause[0].text)
	if controlVerbs[upper(name)] || upper(name) == "CONTINUE" {
		return "", false
	}
	return name, true
}

func (b *procBuilder) parseSentence(clause []word) *analyzer.Sentence {
	words := append([]word{}, clause...)
	if n := len(words); n > 0 {
		words[n-1].text = trimPeriod(words[n-1].text)
		if words[n-1].text == "" {
			words = words[:n-1]
		}
	}
	stmts := b.parseStatements(words)
	return &analyzer.Sentence{Statements: stmts}
}

func (b *procBuilder) parseStatements(words []word) []*analyzer.Statement {
	var out []*analyzer.Statement
	i := 0
	for i < len(words) {
		stmt, next := b.parseStatement(words, i)
		if stmt != nil {
			out = append(out, stmt)
		}
		if next <= i {
			break
		}
		i = next
	}
	return out
}

// parseStatement parses one statement starting at pos and returns it along
// with the index of the next unconsumed word.
func (b *procBuilder) parseStatement(words []word, pos int) (*analyzer.Statement, int) {
	verb := upper(words[pos].text)
	loc := locOf(words[pos], b.p.file)

	switch verb {
	case "GO":
		i := pos + 1
		if i < len(words) && upper(words[i].text) == "TO" {
			i++
		}
		target, i := takeWord(words, i)
		targetThru := ""
		if i < len(words) && (upper(words[i].text) == "THRU" || upper(words[i].text) == "THROUGH") {
			targetThru, i = takeWord(words, i+1)
		}
		return b.newStatement(analyzer.GoTo, loc, joinText(words[pos:i]), target, targetThru, nil, nil, ""), i

	case "PERFORM":
		i := pos + 1
		if i >= len(words) || !isPlainIdentifier(words[i].text) {
			return b.consumeOpaque(words, pos, verb)
		}
		target, i := takeWord(words, i)
		targetThru := ""
		if i < len(words) && (upper(words[i].text) == "THRU" || upper(words[i].text) == "THROUGH") {
			targetThru, i = takeWord(words, i+1)
		}
		if i < len(words) && !controlVerbs[upper(words[i].text)] {
			// PERFORM ... UNTIL/VARYING/TIMES/WITH TEST: an inline loop form,
			// already structured by the source program. Treat it as an
			// opaque statement rather than an out-of-line perform.
			end := scanToNextVerb(words, pos)
			return b.newStatement(analyzer.PerformInline, loc, joinText(words[pos:end]), "", "", nil, nil, ""), end
		}
		return b.newStatement(analyzer.Perform, loc, joinText(words[pos:i]), target, targetThru, nil, nil, ""), i

	case "EXIT":
		i := pos + 1
		if i < len(words) && upper(words[i].text) == "PROGRAM" {
			return b.newStatement(analyzer.ExitProgram, loc, joinText(words[pos:i+1]), "", "", nil, nil, ""), i + 1
		}
		if i < len(words) && upper(words[i].text) == "SECTION" {
			return b.newStatement(analyzer.ExitSection, loc, joinText(words[pos:i+1]), "", "", nil, nil, ""), i + 1
		}
		return b.newStatement(analyzer.ExitSection, loc, words[pos].text, "", "", nil, nil, ""), i

	case "NEXT":
		i := pos + 1
		if i < len(words) && upper(words[i].text) == "SENTENCE" {
			return b.newStatement(analyzer.NextSentence, loc, joinText(words[pos:i+1]), "", "", nil, nil, ""), i + 1
		}
		return b.consumeOpaque(words, pos, verb)

	case "IF":
		return b.parseIf(words, pos)

	default:
		return b.consumeOpaque(words, pos, verb)
	}
}

// parseIf parses IF <condition> [THEN] <then-stmts> [ELSE <else-stmts>]
// [END-IF]. Legacy fixed-format COBOL without END-IF lets the sentence's
// terminal period close the IF, so the then/else bodies simply run to the
// end of the supplied word list when no END-IF is present.
func (b *procBuilder) parseIf(words []word, pos int) (*analyzer.Statement, int) {
	loc := locOf(words[pos], b.p.file)
	i := pos + 1
	condStart := i
	for i < len(words) && upper(words[i].text) != "THEN" && !controlVerbs[upper(words[i].text)] {
		i++
	}
	condWords := words[condStart:i]
	if i < len(words) && upper(words[i].text) == "THEN" {
		i++
	}

	thenEnd := findIfBoundary(words, i)
	thenStmts := b.parseStatements(words[i:thenEnd])
	i = thenEnd

	var elseStmts []*analyzer.Statement
	if i < len(words) && upper(words[i].text) == "ELSE" {
		i++
		elseEnd := findEndIf(words, i)
		elseStmts = b.parseStatements(words[i:elseEnd])
		i = elseEnd
	}
	if i < len(words) && upper(trimPeriod(words[i].text)) == "END-IF" {
		i++
	}

	return b.newStatement(analyzer.If, loc, joinText(condWords), "", "", thenStmts, elseStmts, joinText(condWords)), i
}

// findIfBoundary finds where an IF's then-branch stops: at ELSE, END-IF, or
// the end of the word list.
func findIfBoundary(words []word, from int) int {
	for i := from; i < len(words); i++ {
		u := upper(trimPeriod(words[i].text))
		if u == "ELSE" || u == "END-IF" {
			return i
		}
	}
	return len(words)
}

func findEndIf(words []word, from int) int {
	for i := from; i < len(words); i++ {
		if upper(trimPeriod(words[i].text)) == "END-IF" {
			return i
		}
	}
	return len(words)
}

// consumeOpaque folds every word up to the next control verb into one
// Move-kind statement: any non-control-flow verb is treated as an opaque
// pass-through statement.
func (b *procBuilder) consumeOpaque(words []word, pos int, verb string) (*analyzer.Statement, int) {
	end := scanToNextVerb(words, pos)
	loc := locOf(words[pos], b.p.file)
	return b.newStatement(analyzer.Move, loc, joinText(words[pos:end]), "", "", nil, nil, ""), end
}

func scanToNextVerb(words []word, from int) int {
	i := from + 1
	for i < len(words) && !controlVerbs[upper(words[i].text)] {
		i++
	}
	return i
}

func (b *procBuilder) newStatement(kind analyzer.StatementKind, loc analyzer.SourceLocation, text, target, targetThru string, then, els []*analyzer.Statement, condition string) *analyzer.Statement {
	id := b.p.nextID
	b.p.nextID++
	return &analyzer.Statement{
		ID: id, Kind: kind, Text: strings.TrimSpace(text), Location: loc,
		Target: target, TargetThru: targetThru, Condition: condition, Then: then, Else: els,
	}
}

func takeWord(words []word, pos int) (string, int) {
	if pos >= len(words) {
		return "", pos
	}
	return trimPeriod(words[pos].text), pos + 1
}

func isPlainIdentifier(s string) bool {
	s = trimPeriod(s)
	if s == "" {
		return false
	}
	switch upper(s) {
	case "UNTIL", "VARYING", "TIMES", "WITH", "TEST":
		return false
	}
	return true
}

func joinText(words []word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}

func locOf(w word, file string) analyzer.SourceLocation {
	return analyzer.SourceLocation{File: file, StartLine: w.line, StartCol: w.col, EndLine: w.line, EndCol: w.col + len(w.text)}
}
