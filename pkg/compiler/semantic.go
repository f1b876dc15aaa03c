package compiler

// Analyze runs the fixed sequence of semantic passes spec.md §4.1 requires:
// variable resolution, lvalue checking, duplicate-label checking,
// statement-after-label checking, then loop labeling. Each pass aborts the
// whole sequence on its first error.
func Analyze(prog *Program, gen *NameGen) error {
	if err := ResolveVariables(prog, gen); err != nil {
		return err
	}
	if err := CheckLvalues(prog); err != nil {
		return err
	}
	if err := CheckDuplicateLabels(prog); err != nil {
		return err
	}
	if err := CheckStatementAfterLabel(prog); err != nil {
		return err
	}
	if err := LabelLoops(prog, gen); err != nil {
		return err
	}
	return nil
}
