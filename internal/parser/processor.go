package parser

import "github.com/hetorus/tapl/internal/pipeline"

// Processor is the AST-builder pipeline stage (spec.md §6: type registry ->
// AST builder -> scoping pass -> typing pass -> C emitter).
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	p := New(ctx)
	ctx.AstRoot = p.ParseProgram()
	return ctx
}
