package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetorus/tapl/internal/lexer"
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

func lexKinds(t *testing.T, input string) []token.Type {
	t.Helper()
	tokens, err := lexer.New(input, types.NewRegistry()).Lex()
	require.NoError(t, err)
	kinds := make([]token.Type, len(tokens))
	for i, tok := range tokens {
		kinds[i] = tok.Kind
	}
	return kinds
}

func TestLexSimpleAssignment(t *testing.T) {
	kinds := lexKinds(t, "x = 5\n")
	assert.Equal(t, []token.Type{
		token.IDENTIFIER, token.EQUAL, token.NUMBER, token.NEWLINE, token.EOF,
	}, kinds)
}

func TestLexIndentationProducesIndentAndDedent(t *testing.T) {
	input := "if true:\n    x = 1\ny = 2\n"
	kinds := lexKinds(t, input)
	assert.Contains(t, kinds, token.INDENT)
	assert.Contains(t, kinds, token.DEDENT)
}

func TestLexBlankAndCommentLinesDoNotAffectIndentStack(t *testing.T) {
	input := "if true:\n    x = 1\n\n    # a comment\n    y = 2\n"
	kinds := lexKinds(t, input)
	indents := 0
	for _, k := range kinds {
		if k == token.INDENT {
			indents++
		}
	}
	assert.Equal(t, 1, indents, "a blank line and a comment-only line must not push a second INDENT")
}

func TestLexInconsistentIndentationIsAnError(t *testing.T) {
	input := "if true:\n    x = 1\n  y = 2\n"
	_, err := lexer.New(input, types.NewRegistry()).Lex()
	assert.Error(t, err)
}

func TestLexUnterminatedStringIsAnError(t *testing.T) {
	_, err := lexer.New(`x = "hello`, types.NewRegistry()).Lex()
	assert.Error(t, err)
}

func TestLexStringInterpolationFrames(t *testing.T) {
	kinds := lexKinds(t, `print("count={n}")`+"\n")
	assert.Contains(t, kinds, token.STRING_START)
	assert.Contains(t, kinds, token.STRING_EXPR_START)
	assert.Contains(t, kinds, token.STRING_EXPR_END)
	assert.Contains(t, kinds, token.STRING_END)
}

func TestLexStringEqualInterpolationHasNoExprEndToken(t *testing.T) {
	// `{n=}` resumes string-body mode directly after the '=' rather than
	// emitting a STRING_EXPR_END, since the parser consumes the EQUAL
	// token itself (lexer.go's readOperator, the `l.lastKind == EQUAL`
	// branch).
	tokens, err := lexer.New(`print("{n=}")`, types.NewRegistry()).Lex()
	require.NoError(t, err)
	for i, tok := range tokens {
		if tok.Kind == token.EQUAL && i > 0 && tokens[i-1].Kind == token.IDENTIFIER {
			if i+1 < len(tokens) {
				assert.NotEqual(t, token.STRING_EXPR_END, tokens[i+1].Kind)
			}
		}
	}
}

func TestLexListTypeIsResolvedAgainstRegistry(t *testing.T) {
	tokens, err := lexer.New("list[char] x\n", types.NewRegistry()).Lex()
	require.NoError(t, err)
	require.Equal(t, token.TYPE, tokens[0].Kind)
	typ, ok := tokens[0].Value.(*types.Type)
	require.True(t, ok)
	assert.Equal(t, "list[char]", typ.Keyword)
}

func TestLexKeywordsAreNotIdentifiers(t *testing.T) {
	kinds := lexKinds(t, "if this return\n")
	assert.Equal(t, []token.Type{token.IF, token.THIS, token.RETURN, token.NEWLINE, token.EOF}, kinds)
}

func TestLexOperators(t *testing.T) {
	kinds := lexKinds(t, "a++ b-- c+=1 d==e f!=g\n")
	assert.Contains(t, kinds, token.INCREMENT)
	assert.Contains(t, kinds, token.DECREMENT)
	assert.Contains(t, kinds, token.PLUS_EQUAL)
	assert.Contains(t, kinds, token.EQUAL_EQUAL)
	assert.Contains(t, kinds, token.NOT_EQUAL)
}

func TestLexUnexpectedCharacterIsAnError(t *testing.T) {
	_, err := lexer.New("x = 5 @\n", types.NewRegistry()).Lex()
	assert.Error(t, err)
}

func TestLexUnmatchedClosingBraceIsAnError(t *testing.T) {
	_, err := lexer.New("x = 5 }\n", types.NewRegistry()).Lex()
	assert.Error(t, err)
}

func TestLexCharacterEscapes(t *testing.T) {
	tokens, err := lexer.New(`'\n'`, types.NewRegistry()).Lex()
	require.NoError(t, err)
	require.Equal(t, token.CHARACTER, tokens[0].Kind)
	assert.Equal(t, '\n', tokens[0].Value)
}
