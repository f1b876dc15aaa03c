package x86asm

// ReplacePseudos implements spec.md §4.4: rewrites every Pseudo operand in
// fn to a Stack slot, assigning the same offset to every occurrence of the
// same name. It returns the most negative offset assigned (0 if the
// function used no pseudos at all), so legalization knows the frame size to
// allocate.
func ReplacePseudos(fn *Function) int64 {
	offsets := make(map[string]int64)
	next := int64(-4)

	assign := func(op Operand) Operand {
		p, ok := op.(*Pseudo)
		if !ok {
			return op
		}
		offset, seen := offsets[p.Name]
		if !seen {
			offset = next
			offsets[p.Name] = offset
			next -= 4
		}
		return &Stack{Offset: offset}
	}

	for _, instr := range fn.Body {
		replaceInInstruction(instr, assign)
	}

	if len(offsets) == 0 {
		return 0
	}
	return next + 4 // next already advanced past the last assigned offset
}

func replaceInInstruction(instr Instruction, assign func(Operand) Operand) {
	switch i := instr.(type) {
	case *Mov:
		i.Src = assign(i.Src)
		i.Dst = assign(i.Dst)
	case *Unary:
		i.Operand = assign(i.Operand)
	case *Binary:
		i.Src = assign(i.Src)
		i.Dst = assign(i.Dst)
	case *Cmp:
		i.Lhs = assign(i.Lhs)
		i.Rhs = assign(i.Rhs)
	case *Idiv:
		i.Operand = assign(i.Operand)
	case *SetCC:
		i.Operand = assign(i.Operand)
	case *Ret, *Cdq, *Jmp, *JmpCC, *Label, *AllocateStack:
		// no operands to rewrite
	}
}
