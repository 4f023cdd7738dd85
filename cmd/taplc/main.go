// Command taplc is the reference driver for the compiler core: it reads a
// single .tapl source file, runs it through the fixed five-stage pipeline
// (spec.md §6: type registry -> AST builder -> scoping pass -> typing pass
// -> C emitter), and reports diagnostics or writes the emitted C artifact
// layout.
//
// Grounded on funvibe-funxy/cmd/funxy's main(): a panic-recovery wrapper
// around the entry point that prints "Internal error: ..." and exits 1
// (re-panicking under DEBUG=1 for a full stack trace), and the
// pipeline-construct-then-Run-then-print-ctx.Errors shape of funxy's own
// runPipeline. TAPL has exactly one compilation mode (spec.md §1: one
// source file, one C program), so funxy's build/compile/run/eval/test
// sub-command dispatch collapses to a single code path here.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/hetorus/tapl/internal/backend"
	"github.com/hetorus/tapl/internal/config"
	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/lexer"
	"github.com/hetorus/tapl/internal/parser"
	"github.com/hetorus/tapl/internal/pipeline"
	"github.com/hetorus/tapl/internal/scoping"
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
	"github.com/hetorus/tapl/internal/typing"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: taplc <source.tapl>")
		os.Exit(1)
	}
	filePath := os.Args[1]

	sourceBytes, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	sourceCode := string(sourceBytes)

	build, err := config.LoadBuild("tapl.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid tapl.yaml: %s\n", err)
		os.Exit(1)
	}

	registry := types.NewRegistry()

	tokens, lexErr := lexer.New(sourceCode, registry).Lex()
	if lexErr != nil {
		printErrors([]*diagnostics.DiagnosticError{lexDiagnostic(filePath, lexErr)})
		os.Exit(1)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}

	ctx := &pipeline.Context{
		FilePath:     absPath,
		SourceCode:   sourceCode,
		Registry:     registry,
		Tokens:       tokens,
		HeaderDir:    build.HeaderDir,
		TemplatesDir: build.TemplatesDir,
		MainFile:     build.MainFile,
		Debug:        build.Debug,
	}

	result := pipeline.New(
		parser.Processor{},
		scoping.Processor{},
		typing.Processor{},
		backend.Processor{},
	).Run(ctx)

	if len(result.Errors) > 0 {
		printErrors(result.Errors)
		os.Exit(1)
	}
}

// lexDiagnostic wraps a plain tokenisation error in a DiagnosticError so
// it can be reported through the same path as parser/scoping/typing
// diagnostics (spec.md §7: the lexer lives outside the core pipeline
// stages, but its failures are still user-program problems, not internal
// compiler errors).
func lexDiagnostic(filePath string, err error) *diagnostics.DiagnosticError {
	return &diagnostics.DiagnosticError{
		Code:    diagnostics.ErrMalformedString,
		Token:   token.Token{},
		File:    filePath,
		Message: err.Error(),
	}
}

// printErrors reports diagnostics to stderr, colouring errors red when
// stdout is a terminal (SPEC_FULL.md "Terminal-aware diagnostic
// printing"), matching the on/off test
// funvibe-funxy/internal/evaluator/builtins_term.go uses for its own
// terminal output.
func printErrors(errs []*diagnostics.DiagnosticError) {
	colour := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) &&
		os.Getenv("NO_COLOR") == ""

	fmt.Fprintln(os.Stderr, "Processing failed with errors:")
	for _, err := range errs {
		if colour {
			fmt.Fprintf(os.Stderr, "\033[31m- %s\033[0m\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "- %s\n", err.Error())
		}
	}
}
