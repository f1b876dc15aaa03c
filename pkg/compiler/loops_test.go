package compiler

import (
	"strings"
	"testing"
)

func TestLabelLoopsAssignsDistinctLabels(t *testing.T) {
	prog := mustParse(t, "int main(void) { while (1) { break; continue; } return 0; }")
	if err := LabelLoops(prog, NewNameGen()); err != nil {
		t.Fatalf("LabelLoops: %v", err)
	}
	while := prog.Function.Body[0].(*WhileStmt)
	if while.BreakLabel == "" || while.ContinueLabel == "" {
		t.Fatalf("expected both labels to be set, got break=%q continue=%q", while.BreakLabel, while.ContinueLabel)
	}
	if while.BreakLabel == while.ContinueLabel {
		t.Fatalf("expected break and continue labels to differ, both are %q", while.BreakLabel)
	}
	body := while.Body.(*CompoundStmt)
	brk := body.Body[0].(*BreakStmt)
	cont := body.Body[1].(*ContinueStmt)
	if brk.Label != while.BreakLabel {
		t.Errorf("break statement got label %q, want loop's break label %q", brk.Label, while.BreakLabel)
	}
	if cont.Label != while.ContinueLabel {
		t.Errorf("continue statement got label %q, want loop's continue label %q", cont.Label, while.ContinueLabel)
	}
}

func TestLabelLoopsNestedUsesInnermost(t *testing.T) {
	prog := mustParse(t, "int main(void) { while (1) { for (;;) { break; } } return 0; }")
	if err := LabelLoops(prog, NewNameGen()); err != nil {
		t.Fatalf("LabelLoops: %v", err)
	}
	outer := prog.Function.Body[0].(*WhileStmt)
	outerBody := outer.Body.(*CompoundStmt)
	inner := outerBody.Body[0].(*ForStmt)
	innerBody := inner.Body.(*CompoundStmt)
	brk := innerBody.Body[0].(*BreakStmt)
	if brk.Label != inner.BreakLabel {
		t.Errorf("break inside nested for got %q, want innermost loop's label %q", brk.Label, inner.BreakLabel)
	}
	if brk.Label == outer.BreakLabel {
		t.Errorf("break inside nested for incorrectly bound to the outer while's label")
	}
}

func TestLabelLoopsRejectsBreakOutsideLoop(t *testing.T) {
	prog := mustParse(t, "int main(void) { break; }")
	// Declaration isn't well-formed as a loop-free program; parseStatement for
	// "break;" still parses fine even outside a loop — only labeling rejects it.
	err := LabelLoops(prog, NewNameGen())
	if err == nil || !strings.Contains(err.Error(), "outside of loop") {
		t.Fatalf("expected a break-outside-loop error, got %v", err)
	}
}

func TestLabelLoopsRejectsContinueOutsideLoop(t *testing.T) {
	prog := mustParse(t, "int main(void) { continue; }")
	err := LabelLoops(prog, NewNameGen())
	if err == nil || !strings.Contains(err.Error(), "outside of loop") {
		t.Fatalf("expected a continue-outside-loop error, got %v", err)
	}
}

func TestLabelLoopsDoWhile(t *testing.T) {
	prog := mustParse(t, "int main(void) { do { continue; } while (0); return 0; }")
	if err := LabelLoops(prog, NewNameGen()); err != nil {
		t.Fatalf("LabelLoops: %v", err)
	}
	do := prog.Function.Body[0].(*DoWhileStmt)
	body := do.Body.(*CompoundStmt)
	cont := body.Body[0].(*ContinueStmt)
	if cont.Label != do.ContinueLabel {
		t.Errorf("continue inside do-while got %q, want %q", cont.Label, do.ContinueLabel)
	}
}
