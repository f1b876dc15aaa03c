package x86asm

// Legalize implements spec.md §4.5: prepends an AllocateStack for the
// frame size implied by minOffset (the most negative Stack offset
// ReplacePseudos assigned), then rewrites every instruction that violates
// an x86 operand-placement restriction into an ISA-legal equivalent.
func Legalize(fn *Function, minOffset int64) {
	frameSize := -minOffset
	var body []Instruction
	if frameSize > 0 {
		body = append(body, &AllocateStack{Bytes: frameSize})
	}
	for _, instr := range fn.Body {
		body = append(body, legalizeInstruction(instr)...)
	}
	fn.Body = body
}

func isStack(op Operand) bool {
	_, ok := op.(*Stack)
	return ok
}

func isImm(op Operand) bool {
	_, ok := op.(*Imm)
	return ok
}

func legalizeInstruction(instr Instruction) []Instruction {
	switch i := instr.(type) {
	case *Mov:
		if isStack(i.Src) && isStack(i.Dst) {
			return []Instruction{
				&Mov{Src: i.Src, Dst: &Reg{Register: R10}},
				&Mov{Src: &Reg{Register: R10}, Dst: i.Dst},
			}
		}
		return []Instruction{i}

	case *Binary:
		return legalizeBinary(i)

	case *Idiv:
		if isImm(i.Operand) {
			return []Instruction{
				&Mov{Src: i.Operand, Dst: &Reg{Register: R10}},
				&Idiv{Operand: &Reg{Register: R10}},
			}
		}
		return []Instruction{i}

	case *Cmp:
		return legalizeCmp(i)

	default:
		return []Instruction{instr}
	}
}

// legalizeBinary fixes up the two Binary shapes x86 cannot execute directly:
// a Stack/Stack ALU op (no memory-to-memory ALU operands), and an imul
// whose destination is memory (imul cannot write to memory).
func legalizeBinary(b *Binary) []Instruction {
	switch b.Op {
	case Add, Sub, And, Or, Xor:
		if isStack(b.Src) && isStack(b.Dst) {
			return []Instruction{
				&Mov{Src: b.Src, Dst: &Reg{Register: R10}},
				&Binary{Op: b.Op, Src: &Reg{Register: R10}, Dst: b.Dst},
			}
		}
		return []Instruction{b}

	case Mul:
		if isStack(b.Dst) {
			return []Instruction{
				&Mov{Src: b.Dst, Dst: &Reg{Register: R11}},
				&Binary{Op: Mul, Src: b.Src, Dst: &Reg{Register: R11}},
				&Mov{Src: &Reg{Register: R11}, Dst: b.Dst},
			}
		}
		return []Instruction{b}

	default:
		// Shl/Shr: construction already guarantees the count operand is CX,
		// and the destination is never immediate, so nothing to legalize.
		return []Instruction{b}
	}
}

// legalizeCmp fixes up Cmp{_, Imm}: cmp's second (AT&T: destination)
// operand cannot be an immediate; and Cmp{Stack, Stack}: cmp cannot take
// two memory operands.
func legalizeCmp(c *Cmp) []Instruction {
	if isStack(c.Lhs) && isStack(c.Rhs) {
		return []Instruction{
			&Mov{Src: c.Lhs, Dst: &Reg{Register: R10}},
			&Cmp{Lhs: &Reg{Register: R10}, Rhs: c.Rhs},
		}
	}
	if isImm(c.Rhs) {
		return []Instruction{
			&Mov{Src: c.Rhs, Dst: &Reg{Register: R11}},
			&Cmp{Lhs: c.Lhs, Rhs: &Reg{Register: R11}},
		}
	}
	return []Instruction{c}
}
