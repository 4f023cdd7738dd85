package scoping

import "github.com/hetorus/tapl/internal/pipeline"

// Processor is the scoping-pass pipeline stage (spec.md §6: type registry
// -> AST builder -> scoping pass -> typing pass -> C emitter).
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	errs := Run(ctx.AstRoot, ctx.Registry, ctx.FilePath, ctx.Debug)
	for _, err := range errs {
		ctx.AddError(err)
	}
	return ctx
}
