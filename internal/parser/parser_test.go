package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/lexer"
	"github.com/hetorus/tapl/internal/parser"
	"github.com/hetorus/tapl/internal/pipeline"
	"github.com/hetorus/tapl/internal/types"
)

// parseProgram runs the lexer and parser exactly as the driver does,
// mirroring funvibe-funxy/internal/parser/parser_test.go's
// lex-then-parse-then-inspect shape.
func parseProgram(t *testing.T, source string) (*ast.Program, *pipeline.Context) {
	t.Helper()
	registry := types.NewRegistry()
	tokens, err := lexer.New(source, registry).Lex()
	require.NoError(t, err)

	ctx := &pipeline.Context{Registry: registry, Tokens: tokens, SourceCode: source}
	p := parser.New(ctx)
	prog := p.ParseProgram()
	return prog, ctx
}

func TestParserVarDeclStatement(t *testing.T) {
	prog, ctx := parseProgram(t, "u32 x = 5\n")
	require.Empty(t, ctx.Errors)
	require.Len(t, prog.Statements, 1)
	decl, ok := prog.Statements[0].(*ast.VarDeclStatement)
	require.True(t, ok, "expected a VarDeclStatement, got %T", prog.Statements[0])
	assert.Equal(t, "x", decl.Name.IdentifierValue())
	assert.NotNil(t, decl.InitialValue)
}

func TestParserListStatementHasNoInitializer(t *testing.T) {
	prog, ctx := parseProgram(t, "list[char] buf\n")
	require.Empty(t, ctx.Errors)
	require.Len(t, prog.Statements, 1)
	_, ok := prog.Statements[0].(*ast.ListStatement)
	assert.True(t, ok, "expected a ListStatement, got %T", prog.Statements[0])
}

func TestParserIfElseIfElseChain(t *testing.T) {
	source := "if true:\n    u32 a = 1\nelse if false:\n    u32 b = 2\nelse:\n    u32 c = 3\n"
	prog, ctx := parseProgram(t, source)
	require.Empty(t, ctx.Errors)
	require.Len(t, prog.Statements, 1)
	ifStmt, ok := prog.Statements[0].(*ast.IfStatement)
	require.True(t, ok)
	assert.Len(t, ifStmt.ElseIf, 1)
	assert.True(t, ifStmt.HasElse)
}

func TestParserForLoopOutermostGetsBreakallLabel(t *testing.T) {
	source := "for (u32 i = 0; i < 10; i += 1):\n    breakall\n"
	prog, ctx := parseProgram(t, source)
	require.Empty(t, ctx.Errors)
	require.Len(t, prog.Statements, 1)
	loop, ok := prog.Statements[0].(*ast.ForLoopStatement)
	require.True(t, ok)
	assert.NotEmpty(t, loop.BreakallLabel)
	require.Len(t, loop.Body, 1)
	breakall, ok := loop.Body[0].(*ast.BreakallStatement)
	require.True(t, ok)
	assert.Equal(t, loop.BreakallLabel, breakall.Label)
}

func TestParserWhileDesugarsToForLoopStatement(t *testing.T) {
	prog, ctx := parseProgram(t, "while true:\n    break\n")
	require.Empty(t, ctx.Errors)
	require.Len(t, prog.Statements, 1)
	loop, ok := prog.Statements[0].(*ast.ForLoopStatement)
	require.True(t, ok)
	assert.Nil(t, loop.Init)
	assert.Nil(t, loop.Loop)
}

func TestParserBreakOutsideLoopIsAnError(t *testing.T) {
	_, ctx := parseProgram(t, "break\n")
	assert.NotEmpty(t, ctx.Errors)
}

func TestParserReturnOutsideFunctionIsAnError(t *testing.T) {
	_, ctx := parseProgram(t, "return\n")
	assert.NotEmpty(t, ctx.Errors)
}

func TestParserClassWithConstructorDestructorAndMethod(t *testing.T) {
	source := "class Counter:\n" +
		"    u32 n\n" +
		"    Counter():\n" +
		"        n = 0\n" +
		"    ~Counter():\n" +
		"        n = 0\n" +
		"    void increment():\n" +
		"        this.n += 1\n"
	prog, ctx := parseProgram(t, source)
	require.Empty(t, ctx.Errors)
	require.Len(t, prog.Statements, 1)
	class, ok := prog.Statements[0].(*ast.ClassStatement)
	require.True(t, ok)
	assert.Len(t, class.Variables, 1)
	assert.NotNil(t, class.Constructor)
	assert.NotNil(t, class.Destructor)
	assert.Len(t, class.Functions, 1)
}

func TestParserDuplicateConstructorIsAnError(t *testing.T) {
	source := "class Counter:\n" +
		"    Counter():\n" +
		"        u32 x = 1\n" +
		"    Counter():\n" +
		"        u32 y = 2\n"
	_, ctx := parseProgram(t, source)
	assert.NotEmpty(t, ctx.Errors)
}

func TestParserVoidArgumentIsAnError(t *testing.T) {
	_, ctx := parseProgram(t, "void f(void x):\n    return\n")
	assert.NotEmpty(t, ctx.Errors)
}

func TestParserAssignmentToNonLvalueIsAnError(t *testing.T) {
	_, ctx := parseProgram(t, "1 = 2\n")
	assert.NotEmpty(t, ctx.Errors)
}

func TestParserRecoversAfterMalformedStatement(t *testing.T) {
	// The first line is missing its newline terminator; recovery must
	// still let the second, well-formed statement parse (spec.md §4.B
	// "error recovery").
	prog, ctx := parseProgram(t, "u32 x = 1 u32\nu32 y = 2\n")
	assert.NotEmpty(t, ctx.Errors)
	var decls int
	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*ast.VarDeclStatement); ok {
			decls++
		}
	}
	assert.GreaterOrEqual(t, decls, 1)
}

func TestParserPrintStatementNewlineFlag(t *testing.T) {
	prog, ctx := parseProgram(t, `print("hi")`+"\n"+`println("bye")`+"\n")
	require.Empty(t, ctx.Errors)
	require.Len(t, prog.Statements, 2)
	p1, ok := prog.Statements[0].(*ast.PrintStatement)
	require.True(t, ok)
	assert.False(t, p1.Newline)
	p2, ok := prog.Statements[1].(*ast.PrintStatement)
	require.True(t, ok)
	assert.True(t, p2.Newline)
}
