package compiler

import "fmt"

// loopLabels is the pair of synthesized jump targets threaded down from the
// nearest enclosing loop so that a break/continue statement can be stamped
// with where it needs to jump. spec.md §9 Open Question 1 flags that the
// source this was distilled from conflates break and continue into a single
// per-loop label; this implementation synthesizes the two separately, as the
// spec recommends.
type loopLabels struct {
	breakLabel    string
	continueLabel string
}

// LabelLoops implements spec.md §4.1.5: walks statements with a current
// loop-label stack, minting a fresh break/continue label pair for every
// while/do-while/for and stamping every break/continue inside it with the
// label of its nearest enclosing loop. A break/continue outside any loop is a
// semantic error.
func LabelLoops(prog *Program, gen *NameGen) error {
	fnName := prog.Function.Name
	return labelLoopsBlock(prog.Function.Body, nil, fnName, gen)
}

func labelLoopsBlock(body []Stmt, current *loopLabels, fnName string, gen *NameGen) error {
	for _, item := range body {
		if err := labelLoopsStmt(item, current, fnName, gen); err != nil {
			return err
		}
	}
	return nil
}

func labelLoopsStmt(stmt Stmt, current *loopLabels, fnName string, gen *NameGen) error {
	switch s := stmt.(type) {
	case *BreakStmt:
		if current == nil {
			return fmt.Errorf("break statement outside of loop")
		}
		s.Label = current.breakLabel
		return nil
	case *ContinueStmt:
		if current == nil {
			return fmt.Errorf("continue statement outside of loop")
		}
		s.Label = current.continueLabel
		return nil
	case *IfStmt:
		if err := labelLoopsStmt(s.Then, current, fnName, gen); err != nil {
			return err
		}
		if s.Else != nil {
			return labelLoopsStmt(s.Else, current, fnName, gen)
		}
		return nil
	case *CompoundStmt:
		return labelLoopsBlock(s.Body, current, fnName, gen)
	case *WhileStmt:
		labels := &loopLabels{breakLabel: gen.LoopLabel(fnName), continueLabel: gen.LoopLabel(fnName)}
		s.BreakLabel = labels.breakLabel
		s.ContinueLabel = labels.continueLabel
		return labelLoopsStmt(s.Body, labels, fnName, gen)
	case *DoWhileStmt:
		labels := &loopLabels{breakLabel: gen.LoopLabel(fnName), continueLabel: gen.LoopLabel(fnName)}
		s.BreakLabel = labels.breakLabel
		s.ContinueLabel = labels.continueLabel
		return labelLoopsStmt(s.Body, labels, fnName, gen)
	case *ForStmt:
		labels := &loopLabels{breakLabel: gen.LoopLabel(fnName), continueLabel: gen.LoopLabel(fnName)}
		s.BreakLabel = labels.breakLabel
		s.ContinueLabel = labels.continueLabel
		return labelLoopsStmt(s.Body, labels, fnName, gen)
	default:
		return nil
	}
}
