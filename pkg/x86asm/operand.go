// Package x86asm implements the x86-64 assembly tree that sits between TAC
// and the final AT&T text: construction from TAC, pseudo-operand
// replacement, legalization, and emission.
package x86asm

import "fmt"

// Register names the general-purpose registers this compiler ever targets.
// The 1-byte aliases exist for SetCC targets and Shl/Shr's %cl operand; they
// are the same physical register as their 4-byte sibling, never a separate
// Register value — the emitter picks the width when it prints the operand
// (see operandText).
type Register int

const (
	AX Register = iota
	DX
	CX
	R10
	R11
)

func (r Register) String() string {
	switch r {
	case AX:
		return "AX"
	case DX:
		return "DX"
	case CX:
		return "CX"
	case R10:
		return "R10"
	case R11:
		return "R11"
	default:
		return fmt.Sprintf("Register(%d)", int(r))
	}
}

// fourByteName and oneByteName are the AT&T register names for this
// register at 32-bit and 8-bit width respectively, per spec.md §4.6.
func (r Register) fourByteName() string {
	switch r {
	case AX:
		return "%eax"
	case DX:
		return "%edx"
	case CX:
		return "%ecx"
	case R10:
		return "%r10d"
	case R11:
		return "%r11d"
	default:
		panic(fmt.Sprintf("x86asm: unknown register %v", r))
	}
}

func (r Register) oneByteName() string {
	switch r {
	case AX:
		return "%al"
	case DX:
		return "%dl"
	case CX:
		return "%cl"
	case R10:
		return "%r10b"
	case R11:
		return "%r11b"
	default:
		panic(fmt.Sprintf("x86asm: unknown register %v", r))
	}
}

// Operand is a tagged union: Imm | Register | Pseudo | Stack.
type Operand interface {
	operandNode()
	String() string
}

// Imm is an immediate integer operand, printed as "$N".
type Imm struct {
	Value int64
}

func (*Imm) operandNode()      {}
func (i *Imm) String() string  { return fmt.Sprintf("$%d", i.Value) }

// Reg is a hard machine register reference.
type Reg struct {
	Register Register
}

func (*Reg) operandNode()      {}
func (r *Reg) String() string  { return fmt.Sprintf("%%%s", r.Register) }

// Pseudo is a not-yet-assigned virtual register, named after its TAC
// variable. Every Pseudo must be gone by the time replacement finishes; one
// reaching the emitter is a codegen bug (spec.md §7).
type Pseudo struct {
	Name string
}

func (*Pseudo) operandNode()      {}
func (p *Pseudo) String() string  { return fmt.Sprintf("Pseudo(%s)", p.Name) }

// Stack is a frame-relative memory operand, printed as "offset(%rbp)".
// Offset is always negative (locals only; this subset has no stack
// arguments).
type Stack struct {
	Offset int64
}

func (*Stack) operandNode()      {}
func (s *Stack) String() string  { return fmt.Sprintf("%d(%%rbp)", s.Offset) }
