package tacky

import (
	"fmt"

	"cc64/pkg/compiler"
)

// Generate implements spec.md §4.2: lowers a semantically validated AST to a
// TAC program. gen is the shared counter already threaded through semantic
// analysis, so temporaries and labels minted here never collide with loop
// labels minted during loop labeling.
func Generate(prog *compiler.Program, gen *compiler.NameGen) (*Program, error) {
	fn, err := generateFunction(prog.Function, gen)
	if err != nil {
		return nil, err
	}
	return &Program{Function: fn}, nil
}

func generateFunction(fn *compiler.Function, gen *compiler.NameGen) (*Function, error) {
	var body []Instruction
	for _, item := range fn.Body {
		var err error
		body, err = generateBlockItem(fn.Name, item, body, gen)
		if err != nil {
			return nil, err
		}
	}
	// Every path must return (spec.md §4.2); a trailing implicit "return 0"
	// satisfies main's fallthrough case.
	body = append(body, &Return{Value: &Constant{Value: 0}})
	return &Function{Name: fn.Name, Body: body}, nil
}

func generateBlockItem(fnName string, item compiler.Stmt, body []Instruction, gen *compiler.NameGen) ([]Instruction, error) {
	if decl, ok := item.(*compiler.Declaration); ok {
		return generateDeclaration(fnName, decl, body, gen)
	}
	return generateStatement(fnName, item, body, gen)
}

func generateDeclaration(fnName string, d *compiler.Declaration, body []Instruction, gen *compiler.NameGen) ([]Instruction, error) {
	if d.Init == nil {
		return body, nil
	}
	val, body, err := generateExpr(fnName, d.Init, body, gen)
	if err != nil {
		return nil, err
	}
	body = append(body, &Copy{Src: val, Dst: &Var{Name: d.Name}})
	return body, nil
}

func generateStatement(fnName string, stmt compiler.Stmt, body []Instruction, gen *compiler.NameGen) ([]Instruction, error) {
	switch s := stmt.(type) {
	case *compiler.ReturnStmt:
		val, body, err := generateExpr(fnName, s.Expr, body, gen)
		if err != nil {
			return nil, err
		}
		return append(body, &Return{Value: val}), nil

	case *compiler.ExprStmt:
		_, body, err := generateExpr(fnName, s.Expr, body, gen)
		return body, err

	case *compiler.NullStmt:
		return body, nil

	case *compiler.CompoundStmt:
		for _, item := range s.Body {
			var err error
			body, err = generateBlockItem(fnName, item, body, gen)
			if err != nil {
				return nil, err
			}
		}
		return body, nil

	case *compiler.IfStmt:
		return generateIf(fnName, s, body, gen)

	case *compiler.WhileStmt:
		return generateWhile(fnName, s, body, gen)

	case *compiler.DoWhileStmt:
		return generateDoWhile(fnName, s, body, gen)

	case *compiler.ForStmt:
		return generateFor(fnName, s, body, gen)

	case *compiler.BreakStmt:
		return append(body, &Jump{Target: s.Label}), nil

	case *compiler.ContinueStmt:
		return append(body, &Jump{Target: s.Label}), nil

	case *compiler.GotoStmt:
		return append(body, &Jump{Target: s.Label}), nil

	case *compiler.LabelStmt:
		return append(body, &Label{Name: s.Name}), nil

	default:
		return nil, fmt.Errorf("generateStatement: unhandled statement type %T", stmt)
	}
}

func generateIf(fnName string, s *compiler.IfStmt, body []Instruction, gen *compiler.NameGen) ([]Instruction, error) {
	cond, body, err := generateExpr(fnName, s.Cond, body, gen)
	if err != nil {
		return nil, err
	}
	elseLabel := gen.Label(fnName)
	body = append(body, &JumpIfZero{Condition: cond, Target: elseLabel})
	body, err = generateStatement(fnName, s.Then, body, gen)
	if err != nil {
		return nil, err
	}
	if s.Else != nil {
		endLabel := gen.Label(fnName)
		body = append(body, &Jump{Target: endLabel}, &Label{Name: elseLabel})
		body, err = generateStatement(fnName, s.Else, body, gen)
		if err != nil {
			return nil, err
		}
		body = append(body, &Label{Name: endLabel})
		return body, nil
	}
	body = append(body, &Label{Name: elseLabel})
	return body, nil
}

// generateWhile implements spec.md §4.2's while lowering:
//
//	Label(Lc); cond -> cv; JumpIfZero{cv, Lb}; body; Jump(Lc); Label(Lb)
func generateWhile(fnName string, s *compiler.WhileStmt, body []Instruction, gen *compiler.NameGen) ([]Instruction, error) {
	body = append(body, &Label{Name: s.ContinueLabel})
	cond, body, err := generateExpr(fnName, s.Cond, body, gen)
	if err != nil {
		return nil, err
	}
	body = append(body, &JumpIfZero{Condition: cond, Target: s.BreakLabel})
	body, err = generateStatement(fnName, s.Body, body, gen)
	if err != nil {
		return nil, err
	}
	body = append(body, &Jump{Target: s.ContinueLabel}, &Label{Name: s.BreakLabel})
	return body, nil
}

// generateDoWhile implements spec.md §4.2's do-while lowering:
//
//	Ls := fresh; Label(Ls); body; Label(Lc); cond -> cv; JumpIfNotZero{cv, Ls}; Label(Lb)
func generateDoWhile(fnName string, s *compiler.DoWhileStmt, body []Instruction, gen *compiler.NameGen) ([]Instruction, error) {
	start := gen.Label(fnName)
	body = append(body, &Label{Name: start})
	body, err := generateStatement(fnName, s.Body, body, gen)
	if err != nil {
		return nil, err
	}
	body = append(body, &Label{Name: s.ContinueLabel})
	cond, body, err := generateExpr(fnName, s.Cond, body, gen)
	if err != nil {
		return nil, err
	}
	body = append(body, &JumpIfNotZero{Condition: cond, Target: start}, &Label{Name: s.BreakLabel})
	return body, nil
}

// generateFor implements spec.md §4.2's for lowering:
//
//	init; Ls := fresh; Label(Ls); [cond -> cv; JumpIfZero{cv, Lb}]; body;
//	Label(Lc); post; Jump(Ls); Label(Lb)
func generateFor(fnName string, s *compiler.ForStmt, body []Instruction, gen *compiler.NameGen) ([]Instruction, error) {
	var err error
	if s.Init != nil {
		body, err = generateBlockItem(fnName, s.Init, body, gen)
		if err != nil {
			return nil, err
		}
	}
	start := gen.Label(fnName)
	body = append(body, &Label{Name: start})
	if s.Cond != nil {
		var cond Value
		cond, body, err = generateExpr(fnName, s.Cond, body, gen)
		if err != nil {
			return nil, err
		}
		body = append(body, &JumpIfZero{Condition: cond, Target: s.BreakLabel})
	}
	body, err = generateStatement(fnName, s.Body, body, gen)
	if err != nil {
		return nil, err
	}
	body = append(body, &Label{Name: s.ContinueLabel})
	if s.Post != nil {
		_, body, err = generateExpr(fnName, s.Post, body, gen)
		if err != nil {
			return nil, err
		}
	}
	body = append(body, &Jump{Target: start}, &Label{Name: s.BreakLabel})
	return body, nil
}

// generateExpr lowers expr, appending whatever instructions are needed to
// body, and returns the Value the expression evaluates to.
func generateExpr(fnName string, expr compiler.Expr, body []Instruction, gen *compiler.NameGen) (Value, []Instruction, error) {
	switch e := expr.(type) {
	case *compiler.IntLiteral:
		return &Constant{Value: e.Value}, body, nil

	case *compiler.VarExpr:
		return &Var{Name: e.Name}, body, nil

	case *compiler.UnaryExpr:
		return generateUnary(fnName, e, body, gen)

	case *compiler.PostfixExpr:
		return generatePostfix(fnName, e, body, gen)

	case *compiler.BinaryExpr:
		return generateBinary(fnName, e, body, gen)

	case *compiler.AssignExpr:
		return generateAssign(fnName, e, body, gen)

	case *compiler.ConditionalExpr:
		return generateConditional(fnName, e, body, gen)

	default:
		return nil, nil, fmt.Errorf("generateExpr: unhandled expression type %T", expr)
	}
}

// generateUnary lowers ~e, -e, !e directly, and desugars prefix ++e/--e into
// a compound assignment (e += 1 / e -= 1), so prefix increment/decrement
// shares generateAssign's lowering.
func generateUnary(fnName string, e *compiler.UnaryExpr, body []Instruction, gen *compiler.NameGen) (Value, []Instruction, error) {
	switch e.Op {
	case compiler.PLUS_PLUS:
		return generateExpr(fnName, &compiler.AssignExpr{Left: e.Operand, Right: &compiler.IntLiteral{Value: 1}, CompoundOp: compiler.PLUS}, body, gen)
	case compiler.MINUS_MINUS:
		return generateExpr(fnName, &compiler.AssignExpr{Left: e.Operand, Right: &compiler.IntLiteral{Value: 1}, CompoundOp: compiler.MINUS}, body, gen)
	}
	src, body, err := generateExpr(fnName, e.Operand, body, gen)
	if err != nil {
		return nil, nil, err
	}
	op, err := unaryOpFor(e.Op)
	if err != nil {
		return nil, nil, err
	}
	dst := &Var{Name: gen.Temp(fnName)}
	body = append(body, &Unary{Op: op, Src: src, Dst: dst})
	return dst, body, nil
}

// generatePostfix lowers e++/e-- per spec.md §4.2: read the old value into a
// temporary, then perform the increment/decrement in place, and yield the old
// value (the defining difference from prefix ++/--).
func generatePostfix(fnName string, e *compiler.PostfixExpr, body []Instruction, gen *compiler.NameGen) (Value, []Instruction, error) {
	op := Add
	if e.Op == compiler.MINUS_MINUS {
		op = Subtract
	}
	src, body, err := generateExpr(fnName, e.Operand, body, gen)
	if err != nil {
		return nil, nil, err
	}
	dst := &Var{Name: gen.Temp(fnName)}
	body = append(body, &Copy{Src: src, Dst: dst})
	body = append(body, &Binary{Op: op, Src1: src, Src2: &Constant{Value: 1}, Dst: src})
	return dst, body, nil
}

// generateBinary lowers && and || with short-circuit jumps, and every other
// binary operator by evaluating both operands and emitting one Binary
// instruction.
func generateBinary(fnName string, e *compiler.BinaryExpr, body []Instruction, gen *compiler.NameGen) (Value, []Instruction, error) {
	switch e.Op {
	case compiler.AND_AND:
		return generateAnd(fnName, e, body, gen)
	case compiler.OR_OR:
		return generateOr(fnName, e, body, gen)
	}
	left, body, err := generateExpr(fnName, e.Left, body, gen)
	if err != nil {
		return nil, nil, err
	}
	right, body, err := generateExpr(fnName, e.Right, body, gen)
	if err != nil {
		return nil, nil, err
	}
	op, err := binaryOpFor(e.Op)
	if err != nil {
		return nil, nil, err
	}
	dst := &Var{Name: gen.Temp(fnName)}
	body = append(body, &Binary{Op: op, Src1: left, Src2: right, Dst: dst})
	return dst, body, nil
}

func generateAnd(fnName string, e *compiler.BinaryExpr, body []Instruction, gen *compiler.NameGen) (Value, []Instruction, error) {
	left, body, err := generateExpr(fnName, e.Left, body, gen)
	if err != nil {
		return nil, nil, err
	}
	falseLabel := gen.Label(fnName)
	dst := &Var{Name: gen.Temp(fnName)}
	body = append(body, &JumpIfZero{Condition: left, Target: falseLabel})
	right, body, err := generateExpr(fnName, e.Right, body, gen)
	if err != nil {
		return nil, nil, err
	}
	body = append(body, &JumpIfZero{Condition: right, Target: falseLabel})
	body = append(body, &Copy{Src: &Constant{Value: 1}, Dst: dst})
	end := gen.Label(fnName)
	body = append(body, &Jump{Target: end}, &Label{Name: falseLabel})
	body = append(body, &Copy{Src: &Constant{Value: 0}, Dst: dst})
	body = append(body, &Label{Name: end})
	return dst, body, nil
}

func generateOr(fnName string, e *compiler.BinaryExpr, body []Instruction, gen *compiler.NameGen) (Value, []Instruction, error) {
	left, body, err := generateExpr(fnName, e.Left, body, gen)
	if err != nil {
		return nil, nil, err
	}
	trueLabel := gen.Label(fnName)
	dst := &Var{Name: gen.Temp(fnName)}
	body = append(body, &JumpIfNotZero{Condition: left, Target: trueLabel})
	right, body, err := generateExpr(fnName, e.Right, body, gen)
	if err != nil {
		return nil, nil, err
	}
	body = append(body, &JumpIfNotZero{Condition: right, Target: trueLabel})
	body = append(body, &Copy{Src: &Constant{Value: 0}, Dst: dst})
	end := gen.Label(fnName)
	body = append(body, &Jump{Target: end}, &Label{Name: trueLabel})
	body = append(body, &Copy{Src: &Constant{Value: 1}, Dst: dst})
	body = append(body, &Label{Name: end})
	return dst, body, nil
}

// generateAssign lowers Left = Right and Left op= Right. Only a
// *compiler.VarExpr target is lowered; a prefix ++/-- target, which lvalue
// checking accepts, is rejected here with an error.
func generateAssign(fnName string, e *compiler.AssignExpr, body []Instruction, gen *compiler.NameGen) (Value, []Instruction, error) {
	varExpr, ok := e.Left.(*compiler.VarExpr)
	if !ok {
		return nil, nil, fmt.Errorf("generateAssign: left side %T is not a variable after lvalue checking", e.Left)
	}
	dst := &Var{Name: varExpr.Name}
	src, body, err := generateExpr(fnName, e.Right, body, gen)
	if err != nil {
		return nil, nil, err
	}
	if e.CompoundOp == compiler.EOF {
		body = append(body, &Copy{Src: src, Dst: dst})
		return dst, body, nil
	}
	op, err := binaryOpFor(e.CompoundOp)
	if err != nil {
		return nil, nil, err
	}
	body = append(body, &Binary{Op: op, Src1: dst, Src2: src, Dst: dst})
	return dst, body, nil
}

// generateConditional lowers Cond ? Then : Else per spec.md §4.2.
func generateConditional(fnName string, e *compiler.ConditionalExpr, body []Instruction, gen *compiler.NameGen) (Value, []Instruction, error) {
	cond, body, err := generateExpr(fnName, e.Cond, body, gen)
	if err != nil {
		return nil, nil, err
	}
	elseLabel := gen.Label(fnName)
	end := gen.Label(fnName)
	result := &Var{Name: gen.Temp(fnName)}
	body = append(body, &JumpIfZero{Condition: cond, Target: elseLabel})
	thenVal, body, err := generateExpr(fnName, e.Then, body, gen)
	if err != nil {
		return nil, nil, err
	}
	body = append(body, &Copy{Src: thenVal, Dst: result}, &Jump{Target: end}, &Label{Name: elseLabel})
	elseVal, body, err := generateExpr(fnName, e.Else, body, gen)
	if err != nil {
		return nil, nil, err
	}
	body = append(body, &Copy{Src: elseVal, Dst: result}, &Label{Name: end})
	return result, body, nil
}

func unaryOpFor(tt compiler.TokenType) (UnaryOperator, error) {
	switch tt {
	case compiler.TILDE:
		return Complement, nil
	case compiler.MINUS:
		return Negate, nil
	case compiler.NOT:
		return Not, nil
	default:
		return 0, fmt.Errorf("unaryOpFor: unhandled operator %s", tt)
	}
}

func binaryOpFor(tt compiler.TokenType) (BinaryOperator, error) {
	switch tt {
	case compiler.PLUS:
		return Add, nil
	case compiler.MINUS:
		return Subtract, nil
	case compiler.STAR:
		return Multiply, nil
	case compiler.SLASH:
		return Divide, nil
	case compiler.PERCENT:
		return Remainder, nil
	case compiler.AMP:
		return BitwiseAnd, nil
	case compiler.PIPE:
		return BitwiseOr, nil
	case compiler.CARET:
		return BitwiseXor, nil
	case compiler.SHL:
		return LeftShift, nil
	case compiler.SHR:
		return RightShift, nil
	case compiler.EQ:
		return Equal, nil
	case compiler.NEQ:
		return NotEqual, nil
	case compiler.LT:
		return LessThan, nil
	case compiler.LE:
		return Leq, nil
	case compiler.GT:
		return GreaterThan, nil
	case compiler.GE:
		return Geq, nil
	default:
		return 0, fmt.Errorf("binaryOpFor: unhandled operator %s", tt)
	}
}
