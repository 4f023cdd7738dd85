package scoping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetorus/tapl/internal/lexer"
	"github.com/hetorus/tapl/internal/parser"
	"github.com/hetorus/tapl/internal/pipeline"
	"github.com/hetorus/tapl/internal/scoping"
	"github.com/hetorus/tapl/internal/types"
)

// runScoping lexes, parses, and scope-checks source, returning the
// diagnostics from the scoping pass alone.
func runScoping(t *testing.T, source string) []error {
	t.Helper()
	registry := types.NewRegistry()
	tokens, err := lexer.New(source, registry).Lex()
	require.NoError(t, err)

	ctx := &pipeline.Context{Registry: registry, Tokens: tokens, SourceCode: source}
	ctx.AstRoot = parser.New(ctx).ParseProgram()
	require.Empty(t, ctx.Errors, "parsing must succeed before scoping is meaningful")

	errs := scoping.Run(ctx.AstRoot, registry, "<test>", false)
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

func TestScopingAcceptsDeclaredIdentifier(t *testing.T) {
	errs := runScoping(t, "u32 x = 5\nu32 y = x\n")
	assert.Empty(t, errs)
}

func TestScopingRejectsUnknownIdentifier(t *testing.T) {
	errs := runScoping(t, "u32 y = x\n")
	assert.NotEmpty(t, errs)
}

func TestScopingRejectsRedeclarationInSameScope(t *testing.T) {
	errs := runScoping(t, "u32 x = 1\nu32 x = 2\n")
	assert.NotEmpty(t, errs)
}

func TestScopingAllowsShadowingAcrossScopes(t *testing.T) {
	source := "u32 x = 1\nif true:\n    u32 x = 2\n"
	errs := runScoping(t, source)
	assert.Empty(t, errs, "a nested block may redeclare an outer identifier")
}

func TestScopingForLoopInitIsVisibleInBodyAndCheck(t *testing.T) {
	source := "for (u32 i = 0; i < 10; i += 1):\n    u32 doubled = i * 2\n"
	errs := runScoping(t, source)
	assert.Empty(t, errs)
}

func TestScopingForLoopInitIsNotVisibleAfterTheLoop(t *testing.T) {
	source := "for (u32 i = 0; i < 10; i += 1):\n    break\ni\n"
	errs := runScoping(t, source)
	assert.NotEmpty(t, errs, "the for-loop's own scope must not leak its init binding")
}

func TestScopingClassBodyCannotSeeOuterIdentifiers(t *testing.T) {
	source := "u32 outside = 1\nclass Counter:\n    u32 n\n    Counter():\n        n = outside\n"
	errs := runScoping(t, source)
	assert.NotEmpty(t, errs, "a class body is a clean scope (GLOSSARY Clean scope)")
}

func TestScopingUnknownFunctionCallIsAnError(t *testing.T) {
	errs := runScoping(t, "u32 x = not_a_function(1)\n")
	assert.NotEmpty(t, errs)
}

func TestScopingFunctionArgumentsAreVisibleInBody(t *testing.T) {
	source := "u32 add(u32 a, u32 b):\n    return a + b\n"
	errs := runScoping(t, source)
	assert.Empty(t, errs)
}

func TestScopingStdlibFunctionsAreInjected(t *testing.T) {
	source := `bool ok = read_file("path.txt", buf)` + "\n"
	// buf is unknown, so this must fail on buf, not on read_file itself.
	errs := runScoping(t, source)
	require.NotEmpty(t, errs)
	for _, e := range errs {
		assert.NotContains(t, e.Error(), "unknown function 'read_file'")
	}
}
