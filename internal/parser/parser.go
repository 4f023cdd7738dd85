// Package parser implements the hand-written recursive-descent AST builder
// (spec.md §4.B): a precedence ladder over expressions, a priority-ordered
// statement dispatcher, and per-statement error recovery so one malformed
// statement never hides diagnostics from the rest of the file.
//
// Mirroring funvibe-funxy/internal/parser (current()/peek()/expect()
// primitives, errors appended directly to the shared pipeline context), but
// without its Pratt prefix/infix function tables: TAPL's grammar is a fixed
// four-level ladder (spec.md §4.B), so each level is its own method instead
// of a precedence-keyed dispatch table.
package parser

import (
	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/pipeline"
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

// maxRecursionDepth bounds primary()'s recursion so pathological input
// (deeply nested parentheses) fails with a diagnostic instead of a stack
// overflow, mirroring funvibe-funxy's own MaxRecursionDepth guard in
// internal/parser/expressions_core.go.
const maxRecursionDepth = 250

// Parser builds an *ast.Program from a token slice and a shared type
// registry, recording diagnostics directly into the pipeline context it was
// constructed with.
type Parser struct {
	ctx      *pipeline.Context
	registry *types.Registry
	tokens   []token.Token
	pos      int

	depth              int
	recursionTripped   bool
	inFunction         bool
	owningClass        *types.Type
	loopDepth          int
	breakallLabel      string
}

// New constructs a Parser over ctx.Tokens, sharing ctx.Registry.
func New(ctx *pipeline.Context) *Parser {
	return &Parser{ctx: ctx, registry: ctx.Registry, tokens: ctx.Tokens}
}

// ParseProgram parses every statement in the token stream and returns the
// resulting program root. It never returns nil, even if every statement
// fails to parse.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Filename: p.ctx.FilePath}
	for !p.curIs(token.EOF) {
		if p.curIs(token.NEWLINE) {
			p.advance()
			continue
		}
		stmt := p.parseStatementWithRecovery()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
	}
	return prog
}

// parseStatementWithRecovery runs statement() and, if it recorded any new
// diagnostic, discards tokens up to the next NEWLINE/EOF and any residual
// INDENT/DEDENT before returning (spec.md §4.B "Error recovery").
func (p *Parser) parseStatementWithRecovery() ast.Statement {
	errCount := len(p.ctx.Errors)
	stmt := p.statement()
	if len(p.ctx.Errors) > errCount {
		p.recover()
	}
	return stmt
}

func (p *Parser) recover() {
	for !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) {
		p.advance()
	}
	if p.curIs(token.NEWLINE) {
		p.advance()
	}
	for p.curIs(token.INDENT) || p.curIs(token.DEDENT) {
		p.advance()
	}
}

// block parses "empty, or INDENT followed by statements until the matching
// DEDENT" (spec.md §4.B).
func (p *Parser) block() []ast.Statement {
	var stmts []ast.Statement
	if !p.curIs(token.INDENT) {
		return stmts
	}
	p.advance() // consume INDENT
	for !p.curIs(token.DEDENT) && !p.curIs(token.EOF) {
		if p.curIs(token.NEWLINE) {
			p.advance()
			continue
		}
		stmt := p.parseStatementWithRecovery()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if p.curIs(token.DEDENT) {
		p.advance()
	}
	return stmts
}

// --- token-stream primitives ---

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() token.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if !p.curIs(token.EOF) {
		p.pos++
	}
	return t
}

func (p *Parser) curIs(kind token.Type) bool { return p.cur().Kind == kind }

// expect consumes the current token if it has the given kind, or records a
// diagnostic and leaves the cursor in place.
func (p *Parser) expect(kind token.Type, code diagnostics.ErrorCode, message string) (token.Token, bool) {
	if p.curIs(kind) {
		return p.advance(), true
	}
	p.error(code, message)
	return token.Token{}, false
}

func (p *Parser) error(code diagnostics.ErrorCode, message string) {
	p.ctx.AddError(diagnostics.NewError(code, p.cur(), message))
}

// typeOf extracts the resolved *types.Type a TYPE token carries, or nil.
func typeOf(tok token.Token) *types.Type {
	t, _ := tok.Value.(*types.Type)
	return t
}
