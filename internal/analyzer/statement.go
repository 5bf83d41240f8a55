// Package analyzer reconstructs structured control flow from a flat,
// goto-heavy COBOL procedure division. It turns a typed statement tree
// into a control-flow graph, recovers natural loops and their scopes,
// and flattens the result into a nested Structured Tree.
package analyzer

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// StatementKind is the closed set of COBOL statement shapes the core understands.
type StatementKind int

const (
	Move StatementKind = iota
	If
	GoTo
	Perform
	PerformInline
	ExitSection
	ExitProgram
	NextSentence
	SentenceKind
	Other
)

func (k StatementKind) String() string {
	switch k {
	case Move:
		return "Move"
	case If:
		return "If"
	case GoTo:
		return "GoTo"
	case Perform:
		return "Perform"
	case PerformInline:
		return "PerformInline"
	case ExitSection:
		return "ExitSection"
	case ExitProgram:
		return "ExitProgram"
	case NextSentence:
		return "NextSentence"
	case SentenceKind:
		return "Sentence"
	default:
		return "Other"
	}
}

// SourceLocation pinpoints a statement in the original COBOL source file.
type SourceLocation struct {
	File string
	StartLine int
	StartCol int
	EndLine int
	EndCol int
}

// SourceRange is an inclusive span of SourceLocations, used to back-reference
// the Structured Tree to the statements it was built from.
type SourceRange struct {
	File string
	StartLine int
	EndLine int
}

// Statement is a leaf unit mirroring one COBOL statement. Immutable after
// construction; StatementKind-specific data lives in the payload fields below.
type Statement struct {
	ID int
	Kind StatementKind
	Text string
	Location SourceLocation

	// GoTo / Perform payload.
	Target string

	// Perform "thru" payload; non-empty means a paragraph-range perform,
	// which the builder rejects with UnsupportedPerformRange.
	TargetThru string

	// If payload: condition text plus then/else bodies.
	Condition string
	Then []*Statement
	Else []*Statement
}

// Sentence owns an ordered list of statements, terminated by a period in
// the source text.
type Sentence struct {
	Statements []*Statement
}

// Paragraph owns an ordered list of sentences.
type Paragraph struct {
	Name string
	Sentences []*Sentence
	Location SourceLocation
}

// Section owns an ordered list of paragraphs. The zero-value unnamed section
// holds statements that precede the first named section header.
type Section struct {
	Name string
	Paragraphs []*Paragraph
	Location SourceLocation
}

// Procedure is the typed parse-tree root the core consumes: an ordered
// list of sections as produced by an upstream COBOL parser.
type Procedure struct {
	Sections []*Section
}

// NameTable resolves go to/perform targets to their first textual occurrence,
// preserving insertion order so duplicate names resolve deterministically.
// Built once per Procedure and consulted by the Statement Graph Builder.
type NameTable struct {
	// paragraphsBySection maps "section/paragraph" -> first Paragraph seen.
	paragraphsBySection *orderedmap.OrderedMap[string, *paragraphEntry]
	// paragraphsGlobal maps bare paragraph name -> first Paragraph seen anywhere.
	paragraphsGlobal *orderedmap.OrderedMap[string, *paragraphEntry]
	sectionsByName *orderedmap.OrderedMap[string, *Section]

	Duplicates []DuplicateName
}

type paragraphEntry struct {
	section *Section
	paragraph *Paragraph
}

// DuplicateName records a paragraph or section name that occurs more than once.
type DuplicateName struct {
	Name string
	SectionName string
	FirstLoc SourceLocation
	DupeLoc SourceLocation
}

// BuildNameTable scans the procedure in textual order, recording the first
// occurrence of every section and paragraph name.
func BuildNameTable(proc *Procedure) *NameTable {
	nt := &NameTable{
		paragraphsBySection: orderedmap.New[string, *paragraphEntry](),
		paragraphsGlobal: orderedmap.New[string, *paragraphEntry](),
		sectionsByName: orderedmap.New[string, *Section](),
	}
	for _, sec := range proc.Sections {
		if sec.Name != "" {
			if existing, ok := nt.sectionsByName.Get(sec.Name); ok {
				nt.Duplicates = append(nt.Duplicates, DuplicateName{
					Name: sec.Name, FirstLoc: existing.Location, DupeLoc: sec.Location,
				})
			} else {
				nt.sectionsByName.Set(sec.Name, sec)
			}
		}
		for _, para := range sec.Paragraphs {
			if para.Name == "" {
				continue
			}
			scopedKey := sec.Name + "/" + para.Name
			entry := &paragraphEntry{section: sec, paragraph: para}
			if existing, ok := nt.paragraphsBySection.Get(scopedKey); ok {
				nt.Duplicates = append(nt.Duplicates, DuplicateName{
					Name: para.Name, SectionName: sec.Name,
					FirstLoc: existing.paragraph.Location, DupeLoc: para.Location,
				})
			} else {
				nt.paragraphsBySection.Set(scopedKey, entry)
			}
			if _, ok := nt.paragraphsGlobal.Get(para.Name); !ok {
				nt.paragraphsGlobal.Set(para.Name, entry)
			}
		}
	}
	return nt
}

// ResolveParagraph finds the jump target for a bare paragraph/section name
// referenced from within enclosingSection: first occurrence in the enclosing
// section, else first occurrence anywhere.
func (nt *NameTable) ResolveParagraph(name string, enclosingSection *Section) (*Section, *Paragraph, bool) {
	if enclosingSection != nil {
		if entry, ok := nt.paragraphsBySection.Get(enclosingSection.Name + "/" + name); ok {
			return entry.section, entry.paragraph, true
		}
	}
	if entry, ok := nt.paragraphsGlobal.Get(name); ok {
		return entry.section, entry.paragraph, true
	}
	if sec, ok := nt.sectionsByName.Get(name); ok {
		return sec, firstParagraph(sec), true
	}
	return nil, nil, false
}

// ResolveSection finds a section by name.
func (nt *NameTable) ResolveSection(name string) (*Section, bool) {
	return nt.sectionsByName.Get(name)
}

func firstParagraph(sec *Section) *Paragraph {
	if len(sec.Paragraphs) == 0 {
		return nil
	}
	return sec.Paragraphs[0]
}
