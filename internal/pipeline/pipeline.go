// Package pipeline threads the shared compilation state through the
// fixed stage order spec.md §6 mandates: type registry -> AST builder ->
// scoping pass -> typing pass -> C emitter. Each stage is a Processor
// that consumes and returns the same *Context and appends to its Errors.
// Run itself never stops early, but the scoping, typing and backend
// stages pass the Context through untouched once Errors is non-empty, so
// the diagnostics returned are those of the first failing stage. The
// driver decides, after Run, whether to exit(1) (spec.md §6, §7).
package pipeline

import (
	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

// Context carries state between pipeline stages.
type Context struct {
	FilePath   string
	SourceCode string

	Registry *types.Registry
	Tokens   []token.Token
	AstRoot  *ast.Program

	Errors []*diagnostics.DiagnosticError

	// Output locations for the C emitter (spec.md §6).
	HeaderDir    string
	TemplatesDir string
	MainFile     string

	// Debug gates scope-leave trace logging in the semantic passes
	// (SPEC_FULL.md "Recovered features"), threaded from tapl.yaml.
	Debug bool
}

// AddError appends err to ctx.Errors, filling in the file path if unset.
func (ctx *Context) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs a fixed sequence of Processors over one Context.
type Pipeline struct {
	stages []Processor
}

// New builds a Pipeline running stages in order.
func New(stages ...Processor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Run executes every stage in order, threading ctx through each.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, stage := range p.stages {
		ctx = stage.Process(ctx)
	}
	return ctx
}
