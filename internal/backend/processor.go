package backend

import (
	"fmt"

	"github.com/hetorus/tapl/internal/pipeline"
)

// Processor is the C-emitter pipeline stage (spec.md §6: type registry ->
// AST builder -> scoping pass -> typing pass -> C emitter), the last stage
// in the fixed pipeline order.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	emitter := NewEmitter(ctx.Registry, ctx.HeaderDir, ctx.TemplatesDir, ctx.MainFile)
	if err := emitter.Emit(ctx.AstRoot, ctx.SourceCode); err != nil {
		// A failure here is a filesystem/os problem (a bad output path,
		// permissions, a missing template), not a diagnosis of the user's
		// program, so it is not appended to ctx.Errors alongside
		// parser/scoping/typing diagnostics (SPEC_FULL.md's §4.E addition).
		// It panics with the same "internal compiler error:" convention
		// the typing pass uses for its own non-recoverable failures so the
		// driver's single recover() wrapper reports it consistently.
		panic(fmt.Sprintf("internal compiler error: %v", err))
	}
	return ctx
}
