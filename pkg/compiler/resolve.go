package compiler

import "fmt"

// mapEntry records what a source name currently resolves to, and whether
// that binding was introduced in the block currently being resolved (as
// opposed to inherited from an enclosing scope).
type mapEntry struct {
	uniqueName       string
	fromCurrentBlock bool
}

// ResolveVariables implements spec.md §4.1.1: block-scoped renaming of every
// variable declaration and reference to a globally unique name. It mutates
// the AST in place.
func ResolveVariables(prog *Program, gen *NameGen) error {
	scope := make(map[string]mapEntry)
	return resolveBlock(prog.Function.Body, scope, gen)
}

// cloneForNestedBlock returns a copy of scope with every entry's
// fromCurrentBlock flag cleared, per original_source's variable_resolution.rs
// (the clone, not the original, is threaded into the nested block; the
// outer scope is restored automatically when the clone is discarded on
// return).
func cloneForNestedBlock(scope map[string]mapEntry) map[string]mapEntry {
	clone := make(map[string]mapEntry, len(scope))
	for name, entry := range scope {
		clone[name] = mapEntry{uniqueName: entry.uniqueName, fromCurrentBlock: false}
	}
	return clone
}

func resolveBlock(body []Stmt, scope map[string]mapEntry, gen *NameGen) error {
	for _, item := range body {
		if err := resolveBlockItem(item, scope, gen); err != nil {
			return err
		}
	}
	return nil
}

func resolveBlockItem(item Stmt, scope map[string]mapEntry, gen *NameGen) error {
	if decl, ok := item.(*Declaration); ok {
		return resolveDeclaration(decl, scope, gen)
	}
	return resolveStatement(item, scope, gen)
}

func resolveDeclaration(d *Declaration, scope map[string]mapEntry, gen *NameGen) error {
	if entry, ok := scope[d.Name]; ok && entry.fromCurrentBlock {
		return fmt.Errorf("duplicate declaration: %q already declared in this block", d.Name)
	}
	unique := gen.UniqueVar(d.Name)
	scope[d.Name] = mapEntry{uniqueName: unique, fromCurrentBlock: true}
	if d.Init != nil {
		if err := resolveExpr(&d.Init, scope); err != nil {
			return err
		}
	}
	d.Name = unique
	return nil
}

func resolveStatement(stmt Stmt, scope map[string]mapEntry, gen *NameGen) error {
	switch s := stmt.(type) {
	case *ReturnStmt:
		return resolveExpr(&s.Expr, scope)
	case *ExprStmt:
		return resolveExpr(&s.Expr, scope)
	case *NullStmt, *BreakStmt, *ContinueStmt, *GotoStmt, *LabelStmt:
		return nil
	case *IfStmt:
		if err := resolveExpr(&s.Cond, scope); err != nil {
			return err
		}
		if err := resolveStatement(s.Then, scope, gen); err != nil {
			return err
		}
		if s.Else != nil {
			return resolveStatement(s.Else, scope, gen)
		}
		return nil
	case *CompoundStmt:
		nested := cloneForNestedBlock(scope)
		return resolveBlock(s.Body, nested, gen)
	case *WhileStmt:
		if err := resolveExpr(&s.Cond, scope); err != nil {
			return err
		}
		return resolveStatement(s.Body, scope, gen)
	case *DoWhileStmt:
		if err := resolveExpr(&s.Cond, scope); err != nil {
			return err
		}
		return resolveStatement(s.Body, scope, gen)
	case *ForStmt:
		// The init-clause (including any declaration it introduces) gets its
		// own nested scope, matching a for-loop's own block scoping rules.
		nested := cloneForNestedBlock(scope)
		if s.Init != nil {
			if err := resolveBlockItem(s.Init, nested, gen); err != nil {
				return err
			}
		}
		if s.Cond != nil {
			if err := resolveExpr(&s.Cond, nested); err != nil {
				return err
			}
		}
		if s.Post != nil {
			if err := resolveExpr(&s.Post, nested); err != nil {
				return err
			}
		}
		return resolveStatement(s.Body, nested, gen)
	default:
		return fmt.Errorf("resolveStatement: unhandled statement type %T", stmt)
	}
}

func resolveExpr(expr *Expr, scope map[string]mapEntry) error {
	switch e := (*expr).(type) {
	case *IntLiteral:
		return nil
	case *VarExpr:
		entry, ok := scope[e.Name]
		if !ok {
			return fmt.Errorf("undeclared variable: %q", e.Name)
		}
		e.Name = entry.uniqueName
		return nil
	case *UnaryExpr:
		return resolveExpr(&e.Operand, scope)
	case *PostfixExpr:
		return resolveExpr(&e.Operand, scope)
	case *BinaryExpr:
		if err := resolveExpr(&e.Left, scope); err != nil {
			return err
		}
		return resolveExpr(&e.Right, scope)
	case *AssignExpr:
		if err := resolveExpr(&e.Left, scope); err != nil {
			return err
		}
		return resolveExpr(&e.Right, scope)
	case *ConditionalExpr:
		if err := resolveExpr(&e.Cond, scope); err != nil {
			return err
		}
		if err := resolveExpr(&e.Then, scope); err != nil {
			return err
		}
		return resolveExpr(&e.Else, scope)
	default:
		return fmt.Errorf("resolveExpr: unhandled expression type %T", e)
	}
}
