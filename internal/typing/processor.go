package typing

import "github.com/hetorus/tapl/internal/pipeline"

// Processor is the typing-pass pipeline stage (spec.md §6: type registry
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
	if len(ctx.Errors) > 0 {
		return ctx
	}
	// spec.md §4.D: verify_types() is the pass's own final sanity sweep,
	// run only once the pass itself reported zero diagnostics. A failure
	// here is an internal compiler error (spec.md §7), so it panics rather
	// than being reported as a diagnostic.
	if err := VerifyTypes(ctx.AstRoot); err != nil {
		panic("internal compiler error: " + err.Error())
	}
	return ctx
}
