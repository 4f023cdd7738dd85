package backend

import (
	"os"
	"path/filepath"
	"strings"
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

// typedProgram runs source through the lexer and all three user-facing
// passes, requiring each to succeed, and returns the resulting *ast.Program
// fully typed and ready for lowering.
func typedProgram(t *testing.T, source string) (*ast.Program, *types.Registry) {
	t.Helper()
	registry := types.NewRegistry()
	tokens, err := lexer.New(source, registry).Lex()
	require.NoError(t, err)

	ctx := &pipeline.Context{Registry: registry, Tokens: tokens, SourceCode: source, FilePath: "<test>"}
	ctx.AstRoot = parser.New(ctx).ParseProgram()
	require.Empty(t, ctx.Errors)

	scopeErrs := scoping.Run(ctx.AstRoot, registry, "<test>", false)
	require.Empty(t, scopeErrs)
	typeErrs := typing.Run(ctx.AstRoot, registry, "<test>", false)
	require.Empty(t, typeErrs)

	return ctx.AstRoot, registry
}

func TestChainIncDecJoinsDirectlyWithNoTemporary(t *testing.T) {
	source := "class Counter:\n" +
		"    u32 n\n" +
		"    Counter():\n" +
		"        this.n = 0\n" +
		"    void increment():\n" +
		"        this.n++\n"
	prog, registry := typedProgram(t, source)

	lw := newLowering(registry, prog.Filename, source, "tapl_headers")
	class := prog.Statements[0].(*ast.ClassStatement)
	method := class.Functions[0]

	var b strings.Builder
	lw.writeStatement(&b, method.Body[0], 0)

	assert.Equal(t, "(this->n)++;\n", b.String())
}

func TestIdentifierChainUsesArrowForReferenceParameter(t *testing.T) {
	source := "class Point:\n" +
		"    u32 x\n" +
		"    Point():\n" +
		"        this.x = 0\n" +
		"u32 readX(Point p):\n" +
		"    return p.x\n"
	prog, registry := typedProgram(t, source)
	lw := newLowering(registry, prog.Filename, source, "tapl_headers")

	fn := prog.Statements[1].(*ast.FunctionStatement)
	ret := fn.Body[0].(*ast.ReturnStatement)
	got := lw.exprC(ret.Value)

	// Function parameters are is_reference (the C parameter is `Point* p`),
	// so the join is '->', not '.'.
	assert.Equal(t, "p->x", got)
}

func TestMethodCallLowersToClassNameUnderscore(t *testing.T) {
	source := "class Counter:\n" +
		"    u32 n\n" +
		"    Counter():\n" +
		"        this.n = 0\n" +
		"    u32 get():\n" +
		"        return this.n\n" +
		"u32 useIt(Counter c):\n" +
		"    return c.get()\n"
	prog, registry := typedProgram(t, source)
	lw := newLowering(registry, prog.Filename, source, "tapl_headers")

	fn := prog.Statements[1].(*ast.FunctionStatement)
	ret := fn.Body[0].(*ast.ReturnStatement)
	got := lw.exprC(ret.Value)

	// c is a reference parameter, so it is already the pointer the method
	// takes as `this`.
	assert.Equal(t, "Counter_get(c)", got)
}

func TestListMethodCallLowersToListUnderscoreInnerUnderscoreMethod(t *testing.T) {
	source := "list[char] buf\nu64 n = buf.size()\n"
	prog, registry := typedProgram(t, source)
	lw := newLowering(registry, prog.Filename, source, "tapl_headers")

	decl := prog.Statements[1].(*ast.VarDeclStatement)
	got := lw.exprC(decl.InitialValue)

	assert.Equal(t, "list_char_size(&buf)", got)
}

func TestListStatementLoweringEmitsConstructorCall(t *testing.T) {
	prog, registry := typedProgram(t, "list[char] buf\n")
	lw := newLowering(registry, prog.Filename, "list[char] buf\n", "tapl_headers")

	var b strings.Builder
	lw.writeStatement(&b, prog.Statements[0], 0)

	assert.Equal(t, "list_char buf;\nlist_char_constructor(&buf);\n", b.String())
}

func TestPrintStatementCollapsesInterpolationToOnePrintf(t *testing.T) {
	source := `u32 n = 5` + "\n" + `println("n={n}")` + "\n"
	prog, registry := typedProgram(t, source)
	lw := newLowering(registry, prog.Filename, source, "tapl_headers")

	var b strings.Builder
	lw.writeStatement(&b, prog.Statements[1], 0)

	assert.Equal(t, `printf("n=%u\n", n);`+"\n", b.String())
}

func TestPrintStatementEqualsFormLowersSourceTextAndValue(t *testing.T) {
	source := `u32 n = 5` + "\n" + `println("{n=}")` + "\n"
	prog, registry := typedProgram(t, source)
	lw := newLowering(registry, prog.Filename, source, "tapl_headers")

	var b strings.Builder
	lw.writeStatement(&b, prog.Statements[1], 0)

	assert.Equal(t, `printf("%s%u\n", "n", n);`+"\n", b.String())
}

func TestForLoopEmitsBreakallLabelAfterLoopBody(t *testing.T) {
	source := "for (u32 i = 0; i < 10; i += 1):\n    breakall\n"
	prog, registry := typedProgram(t, source)
	lw := newLowering(registry, prog.Filename, source, "tapl_headers")

	var b strings.Builder
	lw.writeStatement(&b, prog.Statements[0], 0)

	out := b.String()
	assert.Contains(t, out, "for (u32 i = 0; (i < 10); i += 1) {")
	assert.Contains(t, out, "goto breakall_")
	loop := prog.Statements[0].(*ast.ForLoopStatement)
	assert.Contains(t, out, loop.BreakallLabel+":;")
}

func TestNullLowersToIntegerZero(t *testing.T) {
	prog, registry := typedProgram(t, "u32 x = null\n")
	lw := newLowering(registry, prog.Filename, "u32 x = null\n", "tapl_headers")
	decl := prog.Statements[0].(*ast.VarDeclStatement)
	assert.Equal(t, "0", lw.exprC(decl.InitialValue))
}

func TestEmitWritesFullArtifactLayout(t *testing.T) {
	source := "class Counter:\n" +
		"    u32 n\n" +
		"    Counter():\n" +
		"        this.n = 0\n" +
		"    void increment():\n" +
		"        this.n++\n" +
		"u32 main_helper():\n" +
		"    return 1\n" +
		"list[char] buf\n" +
		"u32 x = 5\n" +
		`println("x={x}")` + "\n"
	prog, registry := typedProgram(t, source)

	dir := t.TempDir()
	headerDir := filepath.Join(dir, "tapl_headers")

	emitter := NewEmitter(registry, headerDir, "../../templates", filepath.Join(dir, "main.c"))
	err := emitter.Emit(prog, source)
	require.NoError(t, err)

	for _, name := range []string{"utility_functions.h", "types.h", "list.h", "classes.h", "functions.h"} {
		data, readErr := os.ReadFile(filepath.Join(headerDir, name))
		require.NoError(t, readErr, "missing artifact %s", name)
		assert.NotEmpty(t, data)
	}

	mainSrc, err := os.ReadFile(filepath.Join(dir, "main.c"))
	require.NoError(t, err)
	assert.Contains(t, string(mainSrc), "int main(int argc, char** argv) {")
	assert.Contains(t, string(mainSrc), "return 0;")

	classesSrc, err := os.ReadFile(filepath.Join(headerDir, "classes.h"))
	require.NoError(t, err)
	assert.Contains(t, string(classesSrc), "struct Counter_struct")
	assert.Contains(t, string(classesSrc), "Counter_constructor")

	listSrc, err := os.ReadFile(filepath.Join(headerDir, "list.h"))
	require.NoError(t, err)
	assert.Contains(t, string(listSrc), "list_char")
}

func TestFormatSpecifierSelectsByType(t *testing.T) {
	r := types.NewRegistry()
	assert.Equal(t, "%c", formatSpecifier(r.Get("char")))
	assert.Equal(t, "%s", formatSpecifier(r.Get("string")))
	assert.Equal(t, "%u", formatSpecifier(r.Get("u32")))
	assert.Equal(t, "%lu", formatSpecifier(r.Get("u64")))
	assert.Equal(t, "%d", formatSpecifier(r.Get("s32")))
	assert.Equal(t, "%ld", formatSpecifier(r.Get("s64")))
	assert.Equal(t, "%f", formatSpecifier(r.Get("f32")))
	assert.Equal(t, "%lf", formatSpecifier(r.Get("f64")))
}

func TestEscapeCStringDoublesPercentAndEscapesQuotes(t *testing.T) {
	assert.Equal(t, `100%%`, escapeCString("100%"))
	assert.Equal(t, `say \"hi\"`, escapeCString(`say "hi"`))
}
