package x86asm

import (
	"fmt"

	"cc64/pkg/tacky"
)

// Construct implements spec.md §4.3: a straight-line lowering of a TAC
// program to an x86 instruction tree with Pseudo operands still in place
// (replacement and legalization run afterward).
func Construct(prog *tacky.Program) (*Program, error) {
	fn, err := constructFunction(prog.Function)
	if err != nil {
		return nil, err
	}
	return &Program{Function: fn}, nil
}

func constructFunction(fn *tacky.Function) (*Function, error) {
	var body []Instruction
	for _, instr := range fn.Body {
		out, err := constructInstruction(instr)
		if err != nil {
			return nil, err
		}
		body = append(body, out...)
	}
	return &Function{Name: fn.Name, Body: body}, nil
}

func constructInstruction(instr tacky.Instruction) ([]Instruction, error) {
	switch i := instr.(type) {
	case *tacky.Return:
		return []Instruction{
			&Mov{Src: constructOperand(i.Value), Dst: &Reg{Register: AX}},
			&Ret{},
		}, nil

	case *tacky.Unary:
		return constructUnary(i)

	case *tacky.Binary:
		return constructBinary(i)

	case *tacky.Copy:
		return []Instruction{
			&Mov{Src: constructOperand(i.Src), Dst: constructOperand(i.Dst)},
		}, nil

	case *tacky.Jump:
		return []Instruction{&Jmp{Target: i.Target}}, nil

	case *tacky.JumpIfZero:
		return []Instruction{
			&Cmp{Lhs: &Imm{Value: 0}, Rhs: constructOperand(i.Condition)},
			&JmpCC{Cond: E, Target: i.Target},
		}, nil

	case *tacky.JumpIfNotZero:
		return []Instruction{
			&Cmp{Lhs: &Imm{Value: 0}, Rhs: constructOperand(i.Condition)},
			&JmpCC{Cond: NE, Target: i.Target},
		}, nil

	case *tacky.Label:
		return []Instruction{&Label{Name: i.Name}}, nil

	default:
		return nil, fmt.Errorf("constructInstruction: unhandled TAC instruction %T", instr)
	}
}

// constructUnary implements spec.md §4.3's two unary rows: logical Not gets
// a compare-against-zero + SetCC idiom (it is not an x86 unary operator at
// all), while Complement/Negate map directly onto x86's not/neg.
func constructUnary(i *tacky.Unary) ([]Instruction, error) {
	dst := constructOperand(i.Dst)
	if i.Op == tacky.Not {
		return []Instruction{
			&Cmp{Lhs: constructOperand(i.Src), Rhs: &Imm{Value: 0}},
			&Mov{Src: &Imm{Value: 0}, Dst: dst},
			&SetCC{Cond: E, Operand: dst},
		}, nil
	}
	op, err := unaryOpFor(i.Op)
	if err != nil {
		return nil, err
	}
	return []Instruction{
		&Mov{Src: constructOperand(i.Src), Dst: dst},
		&Unary{Op: op, Operand: dst},
	}, nil
}

// constructBinary implements spec.md §4.3's Binary rows: plain ALU ops,
// division/remainder through Cdq+Idiv, shifts through %cl, and relational
// ops through Cmp+SetCC.
func constructBinary(i *tacky.Binary) ([]Instruction, error) {
	dst := constructOperand(i.Dst)
	a := constructOperand(i.Src1)
	b := constructOperand(i.Src2)

	switch i.Op {
	case tacky.Add, tacky.Subtract, tacky.Multiply, tacky.BitwiseAnd, tacky.BitwiseOr, tacky.BitwiseXor:
		op, err := aluOpFor(i.Op)
		if err != nil {
			return nil, err
		}
		return []Instruction{
			&Mov{Src: a, Dst: dst},
			&Binary{Op: op, Src: b, Dst: dst},
		}, nil

	case tacky.Divide:
		return []Instruction{
			&Mov{Src: a, Dst: &Reg{Register: AX}},
			&Cdq{},
			&Idiv{Operand: b},
			&Mov{Src: &Reg{Register: AX}, Dst: dst},
		}, nil

	case tacky.Remainder:
		return []Instruction{
			&Mov{Src: a, Dst: &Reg{Register: AX}},
			&Cdq{},
			&Idiv{Operand: b},
			&Mov{Src: &Reg{Register: DX}, Dst: dst},
		}, nil

	case tacky.LeftShift, tacky.RightShift:
		op := Shl
		if i.Op == tacky.RightShift {
			op = Shr
		}
		return []Instruction{
			&Mov{Src: a, Dst: dst},
			&Mov{Src: b, Dst: &Reg{Register: CX}},
			&Binary{Op: op, Src: &Reg{Register: CX}, Dst: dst},
		}, nil

	case tacky.Equal, tacky.NotEqual, tacky.LessThan, tacky.Leq, tacky.GreaterThan, tacky.Geq:
		cc, err := condCodeFor(i.Op)
		if err != nil {
			return nil, err
		}
		// Cmp's Lhs/Rhs are swapped relative to TAC's src1/src2: AT&T "cmp a,
		// b" sets flags from b-a, so placing src2 as Lhs and src1 as Rhs makes
		// the following SetCC{cc} true iff src1 `op` src2, matching the
		// source relation (spec.md §4.3 operand-order note).
		return []Instruction{
			&Cmp{Lhs: b, Rhs: a},
			&Mov{Src: &Imm{Value: 0}, Dst: dst},
			&SetCC{Cond: cc, Operand: dst},
		}, nil

	default:
		return nil, fmt.Errorf("constructBinary: unhandled operator %s", i.Op)
	}
}

func constructOperand(v tacky.Value) Operand {
	switch val := v.(type) {
	case *tacky.Constant:
		return &Imm{Value: int64(val.Value)}
	case *tacky.Var:
		return &Pseudo{Name: val.Name}
	default:
		panic(fmt.Sprintf("constructOperand: unhandled TAC value %T", v))
	}
}

func unaryOpFor(op tacky.UnaryOperator) (UnaryOperator, error) {
	switch op {
	case tacky.Complement:
		return Not, nil
	case tacky.Negate:
		return Neg, nil
	default:
		return 0, fmt.Errorf("unaryOpFor: unhandled operator %s", op)
	}
}

func aluOpFor(op tacky.BinaryOperator) (BinaryOperator, error) {
	switch op {
	case tacky.Add:
		return Add, nil
	case tacky.Subtract:
		return Sub, nil
	case tacky.Multiply:
		return Mul, nil
	case tacky.BitwiseAnd:
		return And, nil
	case tacky.BitwiseOr:
		return Or, nil
	case tacky.BitwiseXor:
		return Xor, nil
	default:
		return 0, fmt.Errorf("aluOpFor: unhandled operator %s", op)
	}
}

func condCodeFor(op tacky.BinaryOperator) (CondCode, error) {
	switch op {
	case tacky.Equal:
		return E, nil
	case tacky.NotEqual:
		return NE, nil
	case tacky.LessThan:
		return L, nil
	case tacky.Leq:
		return LE, nil
	case tacky.GreaterThan:
		return G, nil
	case tacky.Geq:
		return GE, nil
	default:
		return 0, fmt.Errorf("condCodeFor: unhandled operator %s", op)
	}
}
