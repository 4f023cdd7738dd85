package typing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/lexer"
	"github.com/hetorus/tapl/internal/parser"
	"github.com/hetorus/tapl/internal/pipeline"
	"github.com/hetorus/tapl/internal/scoping"
	"github.com/hetorus/tapl/internal/types"
	"github.com/hetorus/tapl/internal/typing"
)

// runTyping lexes, parses, scope-checks, and type-checks source, returning
// the resulting program and the typing pass's own diagnostics. Scoping is
// required to succeed first, mirroring spec.md §7's "errors halt progress
// between passes".
func runTyping(t *testing.T, source string) (*ast.Program, []error) {
	t.Helper()
	registry := types.NewRegistry()
	tokens, err := lexer.New(source, registry).Lex()
	require.NoError(t, err)

	ctx := &pipeline.Context{Registry: registry, Tokens: tokens, SourceCode: source}
	ctx.AstRoot = parser.New(ctx).ParseProgram()
	require.Empty(t, ctx.Errors)

	scopeErrs := scoping.Run(ctx.AstRoot, registry, "<test>", false)
	require.Empty(t, scopeErrs)

	errs := typing.Run(ctx.AstRoot, registry, "<test>", false)
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return ctx.AstRoot, out
}

func TestTypingVarDeclMatchesDeclaredType(t *testing.T) {
	_, errs := runTyping(t, "u32 x = 5\n")
	assert.Empty(t, errs)
}

func TestTypingVarDeclMismatchIsAnError(t *testing.T) {
	_, errs := runTyping(t, `u32 x = "hi"` + "\n")
	assert.NotEmpty(t, errs)
}

func TestTypingBaseLiteralUnifiesWithAnyNumericType(t *testing.T) {
	prog, errs := runTyping(t, "f32 x = 5\n")
	assert.Empty(t, errs)
	decl := prog.Statements[0].(*ast.VarDeclStatement)
	assert.Equal(t, "f32", decl.Ref.Type.Keyword)
}

func TestTypingOutOfRangeLiteralIsAnError(t *testing.T) {
	_, errs := runTyping(t, "u8 x = 300\n")
	assert.NotEmpty(t, errs)
}

func TestTypingInRangeLiteralIsAccepted(t *testing.T) {
	_, errs := runTyping(t, "u8 x = 200\n")
	assert.Empty(t, errs)
}

func TestTypingRangeCheckAppliesOnAssignmentToo(t *testing.T) {
	_, errs := runTyping(t, "u8 x = 0\nx = 300\n")
	assert.NotEmpty(t, errs, "the recovered base-type range check must also fire on assignment, not only on var-decl init")
}

func TestTypingUpwardPromotionIsAnError(t *testing.T) {
	_, errs := runTyping(t, "u8 a = 1\nu32 b = a\n")
	assert.NotEmpty(t, errs, "distinct concrete keywords never unify, even along the promotion graph (spec.md §4.D rule 3)")
}

func TestTypingDownwardPromotionIsAnError(t *testing.T) {
	_, errs := runTyping(t, "u32 a = 70000\nu8 b = a\n")
	assert.NotEmpty(t, errs)
}

func TestTypingSignedUnsignedMismatchIsAnError(t *testing.T) {
	_, errs := runTyping(t, "u32 a = 1\ns32 b = 1\nb = a\n")
	assert.NotEmpty(t, errs)
}

func TestTypingFunctionReturnMismatchIsAnError(t *testing.T) {
	_, errs := runTyping(t, "u32 f():\n" + `    return "hi"` + "\n")
	assert.NotEmpty(t, errs)
}

func TestTypingVoidFunctionReturningValueIsAnError(t *testing.T) {
	_, errs := runTyping(t, "void f():\n    return 1\n")
	assert.NotEmpty(t, errs)
}

func TestTypingCallArityMismatchIsAnError(t *testing.T) {
	_, errs := runTyping(t, "u32 add(u32 a, u32 b):\n    return a + b\nu32 x = add(1)\n")
	assert.NotEmpty(t, errs)
}

func TestTypingCallArgumentTypeMismatchIsAnError(t *testing.T) {
	_, errs := runTyping(t, "u32 add(u32 a, u32 b):\n    return a + b\n"+`u32 x = add(1, "hi")`+"\n")
	assert.NotEmpty(t, errs)
}

func TestTypingRecursiveFunctionCallIsAllowed(t *testing.T) {
	source := "u32 fact(u32 n):\n    if n < 2:\n        return 1\n    return n * fact(n - 1)\n"
	_, errs := runTyping(t, source)
	assert.Empty(t, errs)
}

func TestTypingClassFieldAccessThroughThis(t *testing.T) {
	source := "class Counter:\n" +
		"    u32 n\n" +
		"    Counter():\n" +
		"        this.n = 0\n" +
		"    void increment():\n" +
		"        this.n += 1\n"
	_, errs := runTyping(t, source)
	assert.Empty(t, errs)
}

func TestTypingUnknownFieldAccessIsAnError(t *testing.T) {
	source := "class Counter:\n" +
		"    u32 n\n" +
		"    Counter():\n" +
		"        this.missing = 0\n"
	_, errs := runTyping(t, source)
	assert.NotEmpty(t, errs)
}

func TestTypingListMethodCallsAreTyped(t *testing.T) {
	source := "list[char] buf\nu64 n = buf.size()\n"
	_, errs := runTyping(t, source)
	assert.Empty(t, errs)
}

func TestTypingListUnknownMethodIsAnError(t *testing.T) {
	source := "list[char] buf\nu64 n = buf.sort()\n"
	_, errs := runTyping(t, source)
	assert.NotEmpty(t, errs)
}

func TestTypingCastFromNumericToCharIsAllowed(t *testing.T) {
	source := "u32 a = 5\nchar c = (char)a\n"
	_, errs := runTyping(t, source)
	assert.Empty(t, errs)
}

func TestTypingCastFromStringIsAnError(t *testing.T) {
	source := `string s = "hi"` + "\n" + "u32 a = (u32)s\n"
	_, errs := runTyping(t, source)
	assert.NotEmpty(t, errs)
}
