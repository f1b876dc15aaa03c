package x86asm

import (
	"strings"
	"testing"
)

func TestEmitSimpleReturn(t *testing.T) {
	prog := &Program{Function: &Function{Name: "main", Body: []Instruction{
		&Mov{Src: &Imm{Value: 2}, Dst: &Reg{Register: AX}},
		&Ret{},
	}}}
	var sb strings.Builder
	if err := Emit(&sb, prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		".globl main",
		"main:",
		"pushq %rbp",
		"movq %rsp, %rbp",
		"movl $2, %eax",
		"movq %rbp, %rsp",
		"popq %rbp",
		"ret",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestEmitRejectsSurvivingPseudo(t *testing.T) {
	prog := &Program{Function: &Function{Name: "main", Body: []Instruction{
		&Mov{Src: &Imm{Value: 2}, Dst: &Pseudo{Name: "a"}},
	}}}
	var sb strings.Builder
	err := Emit(&sb, prog)
	if err == nil || !strings.Contains(err.Error(), "pseudo-operand") {
		t.Fatalf("expected a pseudo-operand error, got %v (output: %q)", err, sb.String())
	}
	if sb.Len() != 0 {
		t.Errorf("expected no output to be written once a pseudo is detected, got %q", sb.String())
	}
}

func TestEmitAllocateStack(t *testing.T) {
	prog := &Program{Function: &Function{Name: "main", Body: []Instruction{
		&AllocateStack{Bytes: 16},
		&Ret{},
	}}}
	var sb strings.Builder
	if err := Emit(&sb, prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(sb.String(), "subq $16, %rsp") {
		t.Errorf("expected a subq for the frame allocation, got:\n%s", sb.String())
	}
}

func TestEmitStackOperand(t *testing.T) {
	prog := &Program{Function: &Function{Name: "main", Body: []Instruction{
		&Mov{Src: &Imm{Value: 1}, Dst: &Stack{Offset: -4}},
		&Ret{},
	}}}
	var sb strings.Builder
	if err := Emit(&sb, prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(sb.String(), "movl $1, -4(%rbp)") {
		t.Errorf("expected a frame-relative operand, got:\n%s", sb.String())
	}
}

func TestEmitShiftUsesByteWidthCountRegister(t *testing.T) {
	prog := &Program{Function: &Function{Name: "main", Body: []Instruction{
		&Binary{Op: Shl, Src: &Reg{Register: CX}, Dst: &Reg{Register: AX}},
		&Ret{},
	}}}
	var sb strings.Builder
	if err := Emit(&sb, prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(sb.String(), "sall %cl, %eax") {
		t.Errorf("expected the shift count to print as %%cl, got:\n%s", sb.String())
	}
}

func TestEmitSetCCUsesByteWidthDestination(t *testing.T) {
	prog := &Program{Function: &Function{Name: "main", Body: []Instruction{
		&SetCC{Cond: E, Operand: &Reg{Register: AX}},
		&Ret{},
	}}}
	var sb strings.Builder
	if err := Emit(&sb, prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(sb.String(), "sete %al") {
		t.Errorf("expected a byte-width SetCC destination, got:\n%s", sb.String())
	}
}

func TestEmitJumpsUseLocalLabelPrefix(t *testing.T) {
	prog := &Program{Function: &Function{Name: "main", Body: []Instruction{
		&Jmp{Target: "end"},
		&JmpCC{Cond: NE, Target: "loop"},
		&Label{Name: "end"},
		&Ret{},
	}}}
	var sb strings.Builder
	if err := Emit(&sb, prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"jmp .Lend", "jne .Lloop", ".Lend:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestEmitAppendsNoteGNUStack(t *testing.T) {
	prog := &Program{Function: &Function{Name: "main", Body: []Instruction{&Ret{}}}}
	var sb strings.Builder
	if err := Emit(&sb, prog); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	// This assertion only holds on non-darwin targets; the test suite runs on
	// linux, where the note is always appended.
	if !strings.Contains(sb.String(), ".note.GNU-stack") {
		t.Errorf("expected the GNU-stack note to be appended, got:\n%s", sb.String())
	}
}
