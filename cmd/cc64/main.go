// Command cc64 compiles a single C source file, in the supported subset, to
// a native executable via preprocess -> lex -> parse -> validate -> tacky ->
// codegen -> assemble/link.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"cc64/pkg/driver"
)

func main() {
	lex := flag.Bool("lex", false, "stop after lexing and dump the token stream")
	parse := flag.Bool("parse", false, "stop after parsing and dump the AST")
	validate := flag.Bool("validate", false, "stop after semantic analysis and dump the validated AST")
	tackyFlag := flag.Bool("tacky", false, "stop after TAC generation and dump the TAC program")
	codegen := flag.Bool("codegen", false, "stop after assembly construction, pseudo replacement and legalization and dump the x86 tree")
	keepAsm := flag.Bool("s", false, "keep the generated .s file and skip assembling/linking")
	verbose := flag.Bool("v", false, "log each pipeline stage as it runs")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file.c>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	opts := driver.StageOptions{
		Lex:      *lex,
		Parse:    *parse,
		Validate: *validate,
		Tacky:    *tackyFlag,
		Codegen:  *codegen,
		KeepAsm:  *keepAsm,
	}

	// Subprocess stderr is forwarded live (driver wires it straight to
	// os.Stderr), so only the error summary needs printing here.
	if err := driver.Run(flag.Arg(0), opts); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
