// Package driver implements spec.md §4.7: the outermost stage that shells
// out to gcc for preprocessing and, on success, for assembling/linking,
// running the in-process compiler pipeline in between.
package driver

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"

	"cc64/pkg/compiler"
	"cc64/pkg/tacky"
	"cc64/pkg/utils"
	"cc64/pkg/x86asm"
)

// StageOptions selects which pipeline stage to halt after (debug-dumping
// its output) and whether to keep the generated assembly instead of
// assembling/linking it. At most one stage flag is meaningful at a time;
// spec.md §6 leaves the behavior of combining several unspecified, so the
// first one reached below wins.
type StageOptions struct {
	Lex      bool
	Parse    bool
	Validate bool
	Tacky    bool
	Codegen  bool
	KeepAsm  bool
}

// Run compiles the single C source file at path per spec.md §4.7's
// sequence: preprocess, compile to assembly, then assemble/link unless a
// stage flag or -s says to stop early.
func Run(path string, opts StageOptions) error {
	iPath := utils.WithExt(path, ".i")
	sPath := utils.WithExt(path, ".s")
	outPath := utils.Stem(path)

	logrus.Debugf("preprocessing %s -> %s", path, iPath)
	if err := preprocess(path, iPath); err != nil {
		return err
	}

	src, err := os.ReadFile(iPath)
	if err != nil {
		os.Remove(iPath)
		return fmt.Errorf("reading preprocessed file: %w", err)
	}
	// The preprocessed text is now in memory; the temp file can go
	// immediately regardless of what happens next (spec.md §5 "scoped
	// resources").
	os.Remove(iPath)

	asmProg, halted, err := compile(string(src), opts)
	if err != nil {
		return err
	}
	if halted {
		return nil
	}

	asmFile, err := os.Create(sPath)
	if err != nil {
		return fmt.Errorf("creating assembly file: %w", err)
	}
	emitErr := x86asm.Emit(asmFile, asmProg)
	closeErr := asmFile.Close()
	if emitErr != nil {
		os.Remove(sPath)
		return fmt.Errorf("emitting assembly: %w", emitErr)
	}
	if closeErr != nil {
		os.Remove(sPath)
		return fmt.Errorf("writing assembly file: %w", closeErr)
	}

	if opts.KeepAsm {
		logrus.Debugf("wrote %s, stopping before assemble/link (-s)", sPath)
		return nil
	}

	logrus.Debugf("assembling and linking %s -> %s", sPath, outPath)
	err = assembleAndLink(sPath, outPath)
	os.Remove(sPath)
	return err
}

// compile runs every in-process pipeline stage over src and returns the
// finished x86 tree, or (nil, true, nil) if a stage flag asked to stop
// early after dumping that stage's IR.
func compile(src string, opts StageOptions) (*x86asm.Program, bool, error) {
	tokens, err := compiler.Lex(src)
	if err != nil {
		return nil, false, fmt.Errorf("lex error: %w", err)
	}
	if opts.Lex {
		dumpTokens(tokens)
		return nil, true, nil
	}

	prog, err := compiler.Parse(tokens, src)
	if err != nil {
		return nil, false, fmt.Errorf("parse error: %w", err)
	}
	if opts.Parse {
		dumpProgram(prog)
		return nil, true, nil
	}

	gen := compiler.NewNameGen()
	if err := compiler.Analyze(prog, gen); err != nil {
		return nil, false, fmt.Errorf("semantic error: %w", err)
	}
	if opts.Validate {
		dumpProgram(prog)
		return nil, true, nil
	}

	tackyProg, err := tacky.Generate(prog, gen)
	if err != nil {
		return nil, false, fmt.Errorf("tacky generation error: %w", err)
	}
	if opts.Tacky {
		dumpTacky(tackyProg)
		return nil, true, nil
	}

	asmProg, err := x86asm.Construct(tackyProg)
	if err != nil {
		return nil, false, fmt.Errorf("codegen error: %w", err)
	}
	minOffset := x86asm.ReplacePseudos(asmProg.Function)
	x86asm.Legalize(asmProg.Function, minOffset)
	if opts.Codegen {
		dumpAsm(asmProg)
		return nil, true, nil
	}

	return asmProg, false, nil
}

func preprocess(src, dst string) error {
	cmd := exec.Command("gcc", "-E", "-P", src, "-o", dst)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("preprocessor: %w", err)
	}
	return nil
}

func assembleAndLink(sPath, outPath string) error {
	cmd := exec.Command("gcc", sPath, "-o", outPath)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("assembler/linker: %w", err)
	}
	return nil
}

func dumpTokens(tokens []compiler.Token) {
	for _, t := range tokens {
		fmt.Println(t)
	}
}

func dumpProgram(prog *compiler.Program) {
	for _, stmt := range prog.Function.Body {
		fmt.Println(stmt)
	}
}

func dumpTacky(prog *tacky.Program) {
	for _, instr := range prog.Function.Body {
		fmt.Println(instr)
	}
}

func dumpAsm(prog *x86asm.Program) {
	for _, instr := range prog.Function.Body {
		fmt.Println(instr)
	}
}
