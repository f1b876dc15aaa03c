package x86asm

import (
	"bufio"
	"fmt"
	"io"
	"runtime"
)

// Emit implements spec.md §4.6: writes prog as AT&T-syntax assembly text.
// On darwin the function's global symbol gets a leading underscore and the
// GNU-stack note is omitted (the Mach-O linker doesn't understand it); on
// every other target (linux is the one this compiler is tested against) the
// note is appended so the binary isn't marked executable-stack.
func Emit(w io.Writer, prog *Program) error {
	if err := checkNoPseudos(prog.Function); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := emitFunction(bw, prog.Function); err != nil {
		return err
	}
	if runtime.GOOS != "darwin" {
		if _, err := fmt.Fprintln(bw, `.section .note.GNU-stack,"",@progbits`); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func symbolName(name string) string {
	if runtime.GOOS == "darwin" {
		return "_" + name
	}
	return name
}

func emitFunction(w *bufio.Writer, fn *Function) error {
	name := symbolName(fn.Name)
	if _, err := fmt.Fprintf(w, ".globl %s\n%s:\n  pushq %%rbp\n  movq %%rsp, %%rbp\n", name, name); err != nil {
		return err
	}
	for _, instr := range fn.Body {
		if err := emitInstruction(w, instr); err != nil {
			return err
		}
	}
	return nil
}

func emitInstruction(w *bufio.Writer, instr Instruction) error {
	switch i := instr.(type) {
	case *Mov:
		_, err := fmt.Fprintf(w, "  movl %s, %s\n", operandText(i.Src, false), operandText(i.Dst, false))
		return err

	case *Ret:
		_, err := fmt.Fprint(w, "  movq %rbp, %rsp\n  popq %rbp\n  ret\n")
		return err

	case *AllocateStack:
		_, err := fmt.Fprintf(w, "  subq $%d, %%rsp\n", i.Bytes)
		return err

	case *Unary:
		_, err := fmt.Fprintf(w, "  %sl %s\n", i.Op, operandText(i.Operand, false))
		return err

	case *Binary:
		return emitBinary(w, i)

	case *Cmp:
		_, err := fmt.Fprintf(w, "  cmpl %s, %s\n", operandText(i.Lhs, false), operandText(i.Rhs, false))
		return err

	case *Idiv:
		_, err := fmt.Fprintf(w, "  idivl %s\n", operandText(i.Operand, false))
		return err

	case *Cdq:
		_, err := fmt.Fprint(w, "  cdq\n")
		return err

	case *Jmp:
		_, err := fmt.Fprintf(w, "  jmp .L%s\n", i.Target)
		return err

	case *JmpCC:
		_, err := fmt.Fprintf(w, "  j%s .L%s\n", i.Cond, i.Target)
		return err

	case *SetCC:
		_, err := fmt.Fprintf(w, "  set%s %s\n", i.Cond, operandText(i.Operand, true))
		return err

	case *Label:
		_, err := fmt.Fprintf(w, ".L%s:\n", i.Name)
		return err

	default:
		return fmt.Errorf("emitInstruction: unhandled x86 instruction %T", instr)
	}
}

// emitBinary special-cases the shift mnemonics, whose source operand is
// always %cl and prints with no width suffix on the count register.
func emitBinary(w *bufio.Writer, b *Binary) error {
	if b.Op == Shl || b.Op == Shr {
		_, err := fmt.Fprintf(w, "  %sl %s, %s\n", b.Op, operandText(b.Src, true), operandText(b.Dst, false))
		return err
	}
	_, err := fmt.Fprintf(w, "  %sl %s, %s\n", b.Op, operandText(b.Src, false), operandText(b.Dst, false))
	return err
}

// operandText renders op in AT&T syntax. byteWidth selects the 1-byte
// register alias, used for SetCC targets and shift counts (spec.md §4.6).
// checkNoPseudos runs before emission, so op is never a *Pseudo here.
func operandText(op Operand, byteWidth bool) string {
	switch o := op.(type) {
	case *Imm:
		return fmt.Sprintf("$%d", o.Value)
	case *Reg:
		if byteWidth {
			return o.Register.oneByteName()
		}
		return o.Register.fourByteName()
	case *Stack:
		return fmt.Sprintf("%d(%%rbp)", o.Offset)
	default:
		panic(fmt.Sprintf("x86asm: unhandled operand type %T", op))
	}
}

// checkNoPseudos implements spec.md §7's codegen-error case: a Pseudo
// operand surviving to the emitter means replacement or legalization has a
// bug, not a user-facing error, but it must still abort cleanly rather than
// panic mid-write.
func checkNoPseudos(fn *Function) error {
	bad := func(op Operand) error {
		if p, ok := op.(*Pseudo); ok {
			return fmt.Errorf("codegen error: pseudo-operand %q reached the emitter", p.Name)
		}
		return nil
	}
	for _, instr := range fn.Body {
		var ops []Operand
		switch i := instr.(type) {
		case *Mov:
			ops = []Operand{i.Src, i.Dst}
		case *Unary:
			ops = []Operand{i.Operand}
		case *Binary:
			ops = []Operand{i.Src, i.Dst}
		case *Cmp:
			ops = []Operand{i.Lhs, i.Rhs}
		case *Idiv:
			ops = []Operand{i.Operand}
		case *SetCC:
			ops = []Operand{i.Operand}
		}
		for _, op := range ops {
			if err := bad(op); err != nil {
				return err
			}
		}
	}
	return nil
}
