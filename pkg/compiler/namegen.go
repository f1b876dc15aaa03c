package compiler

import "fmt"

// NameGen is the single counter that seeds both unique variable names and
// synthesized labels across semantic analysis and TAC generation. spec.md §9
// Design Notes recommends threading an explicit counter structure through the
// pipeline rather than using a module-level global; this mirrors the
// teacher's own CodeGen.nextLabel, a counter living on a struct rather than a
// package variable.
type NameGen struct {
	n int
}

// NewNameGen returns a counter starting at zero.
func NewNameGen() *NameGen {
	return &NameGen{}
}

func (g *NameGen) next() int {
	v := g.n
	g.n++
	return v
}

// UniqueVar mints "tmp.<name>.<n>" for a block-scoped declaration of name,
// per spec.md §4.1.1.
func (g *NameGen) UniqueVar(name string) string {
	return fmt.Sprintf("tmp.%s.%d", name, g.next())
}

// Label mints "<fn>_tmp_label.<n>" for a synthesized jump target: a loop's
// break/continue label (spec.md §4.1.5), or an if/conditional/short-circuit
// label minted during TAC generation (spec.md §4.2). Both uses share one
// counter and one naming scheme, matching original_source's single
// make_temp_label used for every synthesized label regardless of what
// constructs it.
func (g *NameGen) Label(fnName string) string {
	return fmt.Sprintf("%s_tmp_label.%d", fnName, g.next())
}

// LoopLabel is Label, named for its call sites in loop labeling.
func (g *NameGen) LoopLabel(fnName string) string {
	return g.Label(fnName)
}

// Temp mints "<fn>-tmp.<n>" for a TAC temporary, per spec.md §3/§4.2.
func (g *NameGen) Temp(fnName string) string {
	return fmt.Sprintf("%s-tmp.%d", fnName, g.next())
}
