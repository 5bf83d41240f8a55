package analyzer

import (
	"sort"

	"github.com/sourcegraph/conc/iter"
)

// PipelineOptions bundles every stage's tunables into one value for callers
// that just want to run the whole core pipeline.
type PipelineOptions struct {
	Build BuildOptions
	Flatten FlattenerOptions
}

// DefaultPipelineOptions matches the source behavior the spec preserves.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{Build: DefaultBuildOptions(), Flatten: DefaultFlattenerOptions()}
}

// Run executes every stage of the core pipeline in order (Statement Graph
// Builder, Reachability Pruner, Structure Graph Builder, then per section the
// Loop Finder, Scope Graph Builder and Flattener), producing one structured
// tree per section. Sections are structured independently of one another, so
// nothing here requires them to run in any particular order relative to each
// other — callers that want per-section concurrency should use RunConcurrent.
func Run(proc *Procedure, opts PipelineOptions) (*StructuredProgram, error) {
	build, err := BuildStatementGraph(proc, opts.Build)
	if err != nil {
		return nil, err
	}

	diags := append([]Diagnostic{}, build.Diagnostics...)

	entries := sortedEntries(build.SectionByID)
	report := PruneUnreachable(build.Graph, entries)
	diags = append(diags, UnreachableDiagnostics(build.Graph, report)...)
	structured := BuildStructureGraph(report.Pruned(build.Graph))

	entryBySection := make(map[*Section]NodeID, len(build.SectionByID))
	for id, sec := range build.SectionByID {
		entryBySection[sec] = id
	}

	prog := &StructuredProgram{RunID: NewRunID()}
	for _, sec := range proc.Sections {
		entry, ok := entryBySection[sec]
		if !ok {
			continue
		}
		tree, secDiags := structureSection(structured, entry, sec.Name, opts.Flatten)
		diags = append(diags, secDiags...)
		prog.Sections = append(prog.Sections, &StructuredSection{Name: sec.Name, Tree: tree})
	}

	prog.Diagnostics = diags
	return prog, nil
}

// structureSection runs the Loop Finder, Scope Graph Builder and Flattener
// for a single section's entry node against the already-pruned, already-
// collapsed structure graph shared by the whole program.
func structureSection(structured *Graph, entry NodeID, sectionName string, opts FlattenerOptions) (*TreeNode, []Diagnostic) {
	lf := FindLoopsAndBuildDAG(structured, entry, sectionName)
	scopes := BuildScopeGraphs(lf.DAG, lf.Loops)
	tree := Flatten(lf.DAG, entry, lf.Loops, scopes, opts)
	return tree, lf.Diagnostics
}

// RunConcurrent is equivalent to Run, except that the Loop Finder, Scope
// Graph Builder and Flattener for each section run concurrently via
// conc/iter.Map. Each section is
// structured independently off a shared, already-built, already-pruned
// structure graph that no goroutine mutates, so the only shared state is the
// read-only Graph itself; iter.Map preserves input order in its output, so
// the resulting StructuredProgram.Sections is byte-for-byte identical to
// what Run would have produced.
func RunConcurrent(proc *Procedure, opts PipelineOptions) (*StructuredProgram, error) {
	build, err := BuildStatementGraph(proc, opts.Build)
	if err != nil {
		return nil, err
	}

	diags := append([]Diagnostic{}, build.Diagnostics...)

	entries := sortedEntries(build.SectionByID)
	report := PruneUnreachable(build.Graph, entries)
	diags = append(diags, UnreachableDiagnostics(build.Graph, report)...)
	structured := BuildStructureGraph(report.Pruned(build.Graph))

	entryBySection := make(map[*Section]NodeID, len(build.SectionByID))
	for id, sec := range build.SectionByID {
		entryBySection[sec] = id
	}

	type sectionResult struct {
		name string
		tree *TreeNode
		diags []Diagnostic
		ok bool
	}

	results := iter.Map(proc.Sections, func(secp **Section) sectionResult {
		sec := *secp
		entry, ok := entryBySection[sec]
		if !ok {
			return sectionResult{ok: false}
		}
		tree, secDiags := structureSection(structured, entry, sec.Name, opts.Flatten)
		return sectionResult{name: sec.Name, tree: tree, diags: secDiags, ok: true}
	})

	prog := &StructuredProgram{RunID: NewRunID()}
	for _, r := range results {
		if !r.ok {
			continue
		}
		diags = append(diags, r.diags...)
		prog.Sections = append(prog.Sections, &StructuredSection{Name: r.name, Tree: r.tree})
	}

	prog.Diagnostics = diags
	return prog, nil
}

func sortedEntries(sectionByID map[NodeID]*Section) []NodeID {
	ids := make([]NodeID, 0, len(sectionByID))
	for id := range sectionByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
