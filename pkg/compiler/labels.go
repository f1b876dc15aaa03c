package compiler

import "fmt"

// CheckDuplicateLabels implements spec.md §4.1.3: collects every label name
// declared by a LabelStmt within the function and rejects a repeat.
func CheckDuplicateLabels(prog *Program) error {
	seen := make(map[string]bool)
	return checkDuplicateLabelsBlock(prog.Function.Body, seen)
}

func checkDuplicateLabelsBlock(body []Stmt, seen map[string]bool) error {
	for _, item := range body {
		if err := checkDuplicateLabelsStmt(item, seen); err != nil {
			return err
		}
	}
	return nil
}

func checkDuplicateLabelsStmt(stmt Stmt, seen map[string]bool) error {
	switch s := stmt.(type) {
	case *LabelStmt:
		if seen[s.Name] {
			return fmt.Errorf("duplicate label: %q", s.Name)
		}
		seen[s.Name] = true
		return nil
	case *IfStmt:
		if err := checkDuplicateLabelsStmt(s.Then, seen); err != nil {
			return err
		}
		if s.Else != nil {
			return checkDuplicateLabelsStmt(s.Else, seen)
		}
		return nil
	case *CompoundStmt:
		return checkDuplicateLabelsBlock(s.Body, seen)
	case *WhileStmt:
		return checkDuplicateLabelsStmt(s.Body, seen)
	case *DoWhileStmt:
		return checkDuplicateLabelsStmt(s.Body, seen)
	case *ForStmt:
		return checkDuplicateLabelsStmt(s.Body, seen)
	default:
		return nil
	}
}

// CheckStatementAfterLabel implements spec.md §4.1.4: a LabelStmt must never
// be the last item of a block, and must never be immediately followed by a
// Declaration. This is the C17 grammar rule that a label only ever labels a
// statement, not a declaration or the closing brace. It is read-only: the
// program can only ever fail here, never be rewritten.
func CheckStatementAfterLabel(prog *Program) error {
	return checkStatementAfterLabelBlock(prog.Function.Body)
}

func checkStatementAfterLabelBlock(body []Stmt) error {
	for i, item := range body {
		if _, ok := item.(*LabelStmt); ok {
			if i == len(body)-1 {
				return fmt.Errorf("label %q must be followed by a statement, not end of block", item.(*LabelStmt).Name)
			}
			if _, ok := body[i+1].(*Declaration); ok {
				return fmt.Errorf("label %q must be followed by a statement, not a declaration", item.(*LabelStmt).Name)
			}
		}
		if err := checkStatementAfterLabelStmt(item); err != nil {
			return err
		}
	}
	return nil
}

func checkStatementAfterLabelStmt(stmt Stmt) error {
	switch s := stmt.(type) {
	case *IfStmt:
		if err := checkStatementAfterLabelStmt(s.Then); err != nil {
			return err
		}
		if s.Else != nil {
			return checkStatementAfterLabelStmt(s.Else)
		}
		return nil
	case *CompoundStmt:
		return checkStatementAfterLabelBlock(s.Body)
	case *WhileStmt:
		return checkStatementAfterLabelStmt(s.Body)
	case *DoWhileStmt:
		return checkStatementAfterLabelStmt(s.Body)
	case *ForStmt:
		return checkStatementAfterLabelStmt(s.Body)
	default:
		return nil
	}
}
