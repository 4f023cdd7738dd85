// Package lexer is a reference tokeniser producing the token stream
// contract internal/token and the parser agree on (spec.md §1, §6: the
// tokeniser itself is outside this module's scope, but a concrete one is
// included here so the rest of the pipeline can be exercised end to end
// in tests and by the driver).
//
// Structurally this mirrors funvibe-funxy's lexer.go (character-at-a-time
// scanning with explicit line/column tracking, a readChar/peekChar pair,
// and a big switch in NextToken), extended with an indentation stack
// since TAPL blocks are significant-whitespace rather than brace
// delimited, and a small frame stack for interpolated strings.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

var keywords = map[string]token.Type{
	"if":       token.IF,
	"else":     token.ELSE,
	"for":      token.FOR,
	"while":    token.WHILE,
	"break":    token.BREAK,
	"breakall": token.BREAKALL,
	"continue": token.CONTINUE,
	"return":   token.RETURN,
	"print":    token.PRINT,
	"println":  token.PRINTLN,
	"true":     token.TRUE,
	"false":    token.FALSE,
	"null":     token.NULL,
	"class":    token.CLASS,
	"this":     token.THIS,
}

// Lexer turns TAPL source text into a flat token.Token slice, resolving
// TYPE tokens against the shared registry as it goes (spec.md §6: "the
// tokeniser and the core must share the same registry instance").
type Lexer struct {
	input    string
	registry *types.Registry

	pos, readPos int
	ch           rune
	line, column int

	indents        []int
	pendingDedents int
	atLineStart    bool
	parenDepth     int // newlines are insignificant inside parens, per spec.md §4.B

	// stringFrames tracks interpolated-string nesting: true means the
	// scanner is currently inside a string body (STRING_CHARS mode),
	// false means normal/expression tokenization (top-level, or inside
	// a `{...}` interpolation region). The stack always starts with one
	// `false` frame for top-level code.
	stringFrames []bool
	lastKind     token.Type
}

// New constructs a Lexer over input sharing registry with the rest of the
// pipeline.
func New(input string, registry *types.Registry) *Lexer {
	l := &Lexer{
		input: input, registry: registry, line: 1,
		indents: []int{0}, atLineStart: true,
		stringFrames: []bool{false},
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		l.readPos++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) makeTok(kind token.Type, lexeme string, value any, start, length int) token.Token {
	return token.Token{
		Kind:     kind,
		Lexeme:   lexeme,
		Value:    value,
		Position: token.Position{Start: start, Length: length},
		Line:     l.line,
		Column:   l.column - length + 1,
	}
}

// Lex tokenises the full input, returning a stream terminated by EOF.
func (l *Lexer) Lex() ([]token.Token, error) {
	var out []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return out, nil
}

// next scans and returns exactly one token, updating lastKind for the
// `{expr=}` detection in readOperator.
func (l *Lexer) next() (token.Token, error) {
	tok, err := l.scanOne()
	if err != nil {
		return tok, err
	}
	l.lastKind = tok.Kind
	return tok, nil
}

func (l *Lexer) scanOne() (token.Token, error) {
	if l.pendingDedents > 0 {
		l.pendingDedents--
		return l.makeTok(token.DEDENT, "", nil, l.pos, 0), nil
	}

	if l.inStringBody() {
		return l.scanStringBody()
	}

	if l.atLineStart && l.parenDepth == 0 {
		if tok, handled, err := l.handleIndentation(); handled {
			return tok, err
		}
	}

	l.skipSpacesAndComments()

	start := l.pos
	switch {
	case l.ch == 0:
		return l.makeTok(token.EOF, "", nil, start, 0), nil
	case l.ch == '\n':
		l.readChar()
		if l.parenDepth > 0 {
			return l.next()
		}
		l.atLineStart = true
		return l.makeTok(token.NEWLINE, "\n", nil, start, 1), nil
	case unicode.IsDigit(l.ch):
		return l.readNumber(), nil
	case l.ch == '\'':
		return l.readCharacter()
	case l.ch == '"':
		return l.readStringStart(), nil
	case isIdentStart(l.ch):
		return l.readIdentifier(), nil
	default:
		return l.readOperator()
	}
}

func (l *Lexer) inStringBody() bool {
	return l.stringFrames[len(l.stringFrames)-1]
}

func (l *Lexer) pushFrame(inString bool) { l.stringFrames = append(l.stringFrames, inString) }
func (l *Lexer) popFrame()               { l.stringFrames = l.stringFrames[:len(l.stringFrames)-1] }

// scanStringBody runs while the top stringFrame is true: it accumulates
// literal text up to the next `"`, `{`, or end of input.
func (l *Lexer) scanStringBody() (token.Token, error) {
	start := l.pos
	for l.ch != '"' && l.ch != '{' && l.ch != 0 {
		l.readChar()
	}
	if l.pos > start {
		return l.makeTok(token.STRING_CHARS, l.input[start:l.pos], l.input[start:l.pos], start, l.pos-start), nil
	}
	switch l.ch {
	case '"':
		l.readChar()
		l.popFrame()
		return l.makeTok(token.STRING_END, `"`, nil, start, 1), nil
	case '{':
		l.readChar()
		l.pushFrame(false)
		return l.makeTok(token.STRING_EXPR_START, "{", nil, start, 1), nil
	default:
		return token.Token{}, fmt.Errorf("unterminated string literal at line %d", l.line)
	}
}

// handleIndentation runs at the start of a logical line: it measures
// leading whitespace and emits INDENT/DEDENT tokens relative to the
// indent stack. Blank and comment-only lines are skipped without
// affecting the stack.
func (l *Lexer) handleIndentation() (token.Token, bool, error) {
	start := l.pos
	width := 0
	for l.ch == ' ' || l.ch == '\t' {
		width++
		l.readChar()
	}
	if l.ch == '\n' || l.ch == '#' || l.ch == 0 {
		// blank or comment-only line: doesn't affect indentation.
		l.atLineStart = false
		return token.Token{}, false, nil
	}

	l.atLineStart = false
	top := l.indents[len(l.indents)-1]
	switch {
	case width > top:
		l.indents = append(l.indents, width)
		return l.makeTok(token.INDENT, "", nil, start, width), true, nil
	case width < top:
		count := 0
		for len(l.indents) > 1 && l.indents[len(l.indents)-1] > width {
			l.indents = l.indents[:len(l.indents)-1]
			count++
		}
		if l.indents[len(l.indents)-1] != width {
			return token.Token{}, true, fmt.Errorf("inconsistent indentation at line %d", l.line)
		}
		l.pendingDedents = count - 1
		return l.makeTok(token.DEDENT, "", nil, start, width), true, nil
	default:
		return token.Token{}, false, nil
	}
}

func (l *Lexer) skipSpacesAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	text := l.input[start:l.pos]

	if kind, ok := keywords[text]; ok {
		return l.makeTok(kind, text, nil, start, len(text))
	}
	if t := l.resolveListType(text); t != nil {
		return l.makeTok(token.TYPE, text, t, start, len(text))
	}
	// The name after `class` is registered as a class type so later uses
	// lex as TYPE; the declaration itself, a constructor `Name(` and a
	// destructor `~Name` keep the name as an IDENTIFIER for the parser.
	existing := l.registry.Get(text)
	if l.lastKind == token.CLASS && (existing == nil || existing.Kind == types.KindClass) {
		l.registry.AddClassType(text)
		return l.makeTok(token.IDENTIFIER, text, text, start, len(text))
	}
	if existing != nil && existing.Kind == types.KindClass && (l.lastKind == token.TILDE || l.ch == '(') {
		return l.makeTok(token.IDENTIFIER, text, text, start, len(text))
	}
	if t := existing; t != nil {
		return l.makeTok(token.TYPE, text, t, start, len(text))
	}
	return l.makeTok(token.IDENTIFIER, text, text, start, len(text))
}

// resolveListType recognises `list[inner]` type spellings and lazily
// instantiates them in the registry (spec.md §4.A).
func (l *Lexer) resolveListType(text string) *types.Type {
	if text != "list" || l.ch != '[' {
		return nil
	}
	save := *l
	l.readChar() // consume '['
	innerStart := l.pos
	for l.ch != ']' && l.ch != 0 {
		l.readChar()
	}
	inner := l.input[innerStart:l.pos]
	innerType := l.registry.Get(inner)
	if l.ch != ']' || innerType == nil {
		*l = save
		return nil
	}
	l.readChar() // consume ']'
	return l.registry.AddListType(innerType)
}

func (l *Lexer) readNumber() token.Token {
	start := l.pos
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	text := l.input[start:l.pos]
	var value int64
	for _, c := range text {
		value = value*10 + int64(c-'0')
	}
	return l.makeTok(token.NUMBER, text, value, start, len(text))
}

func (l *Lexer) readCharacter() (token.Token, error) {
	start := l.pos
	l.readChar() // consume opening '
	if l.ch == 0 {
		return token.Token{}, fmt.Errorf("unterminated character literal at line %d", l.line)
	}
	ch := l.ch
	if ch == '\\' {
		l.readChar()
		ch = unescape(l.ch)
	}
	l.readChar()
	if l.ch != '\'' {
		return token.Token{}, fmt.Errorf("unterminated character literal at line %d", l.line)
	}
	l.readChar() // consume closing '
	return l.makeTok(token.CHARACTER, l.input[start:l.pos], ch, start, l.pos-start), nil
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case '0':
		return 0
	default:
		return r
	}
}

// readStringStart begins lexing a (possibly interpolated) string literal.
// Only the opening STRING_START token is produced here; subsequent calls
// continue in string-body mode via the stringFrames stack until the
// matching STRING_END.
func (l *Lexer) readStringStart() token.Token {
	start := l.pos
	l.readChar() // consume opening quote
	l.pushFrame(true)
	return l.makeTok(token.STRING_START, `"`, nil, start, 1)
}

func (l *Lexer) readOperator() (token.Token, error) {
	start := l.pos
	ch := l.ch
	two := func(kind token.Type, lex string) (token.Token, error) {
		l.readChar()
		l.readChar()
		return l.makeTok(kind, lex, nil, start, 2), nil
	}
	one := func(kind token.Type) (token.Token, error) {
		l.readChar()
		return l.makeTok(kind, string(ch), nil, start, 1), nil
	}

	switch ch {
	case '(':
		l.parenDepth++
		return one(token.PAREN_OPEN)
	case ')':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		return one(token.PAREN_CLOSE)
	case '[':
		return one(token.BRACKET_OPEN)
	case ']':
		return one(token.BRACKET_CLOSE)
	case ',':
		return one(token.COMMA)
	case ':':
		return one(token.COLON)
	case ';':
		return one(token.SEMICOLON)
	case '.':
		return one(token.DOT)
	case '~':
		return one(token.TILDE)
	case '}':
		// Closes a `{...}` string-interpolation region (TAPL has no
		// other use for a bare brace). `{expr=}` is closed without a
		// distinct STRING_EXPR_END: the parser already saw the EQUAL
		// token and only needs the lexer to resume string-body mode.
		if len(l.stringFrames) <= 1 {
			return token.Token{}, fmt.Errorf("unexpected '}' at line %d", l.line)
		}
		l.readChar()
		l.popFrame()
		if l.lastKind == token.EQUAL {
			return l.next()
		}
		return l.makeTok(token.STRING_EXPR_END, "}", nil, start, 1), nil
	case '!':
		if l.peekChar() == '=' {
			return two(token.NOT_EQUAL, "!=")
		}
		return one(token.NOT)
	case '=':
		if l.peekChar() == '=' {
			return two(token.EQUAL_EQUAL, "==")
		}
		return one(token.EQUAL)
	case '<':
		if l.peekChar() == '=' {
			return two(token.LESS_EQUAL, "<=")
		}
		return one(token.LESS)
	case '>':
		if l.peekChar() == '=' {
			return two(token.GREATER_EQUAL, ">=")
		}
		return one(token.GREATER)
	case '&':
		if l.peekChar() == '&' {
			return two(token.AND_AND, "&&")
		}
	case '|':
		if l.peekChar() == '|' {
			return two(token.OR_OR, "||")
		}
	case '+':
		if l.peekChar() == '+' {
			return two(token.INCREMENT, "++")
		}
		if l.peekChar() == '=' {
			return two(token.PLUS_EQUAL, "+=")
		}
		return one(token.PLUS)
	case '-':
		if l.peekChar() == '-' {
			return two(token.DECREMENT, "--")
		}
		if l.peekChar() == '=' {
			return two(token.MINUS_EQUAL, "-=")
		}
		return one(token.MINUS)
	case '*':
		if l.peekChar() == '=' {
			return two(token.STAR_EQUAL, "*=")
		}
		return one(token.STAR)
	case '/':
		if l.peekChar() == '=' {
			return two(token.SLASH_EQUAL, "/=")
		}
		return one(token.SLASH)
	}
	return token.Token{}, fmt.Errorf("unexpected character %q at line %d", ch, l.line)
}
