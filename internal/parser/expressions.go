package parser

import (
	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/token"
)

// expression is the grammar's entry point (spec.md §4.B): boolean is the
// lowest-precedence level.
func (p *Parser) expression() ast.Expression {
	return p.boolean()
}

func (p *Parser) boolean() ast.Expression {
	left := p.comparison()
	if left == nil {
		return nil
	}
	for p.curIs(token.AND_AND) || p.curIs(token.OR_OR) {
		opTok := p.advance()
		right := p.comparison()
		if right == nil {
			return nil
		}
		left = p.binary(left, opTok, right)
	}
	return left
}

func (p *Parser) comparison() ast.Expression {
	left := p.additive()
	if left == nil {
		return nil
	}
	for isComparisonOp(p.cur().Kind) {
		opTok := p.advance()
		right := p.additive()
		if right == nil {
			return nil
		}
		left = p.binary(left, opTok, right)
	}
	return left
}

func isComparisonOp(k token.Type) bool {
	switch k {
	case token.EQUAL_EQUAL, token.NOT_EQUAL, token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL:
		return true
	}
	return false
}

func (p *Parser) additive() ast.Expression {
	left := p.multiplicative()
	if left == nil {
		return nil
	}
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		opTok := p.advance()
		right := p.multiplicative()
		if right == nil {
			return nil
		}
		left = p.binary(left, opTok, right)
	}
	return left
}

func (p *Parser) multiplicative() ast.Expression {
	left := p.primary()
	if left == nil {
		return nil
	}
	for p.curIs(token.STAR) || p.curIs(token.SLASH) {
		opTok := p.advance()
		right := p.primary()
		if right == nil {
			return nil
		}
		left = p.binary(left, opTok, right)
	}
	return left
}

func (p *Parser) binary(left ast.Expression, opTok token.Token, right ast.Expression) ast.Expression {
	e := &ast.BinaryExpression{Left: left, Operator: opTok, Right: right}
	e.Loc = left.Pos().Cover(right.Pos())
	return e
}

// primary implements the grammar's primary production (spec.md §4.B),
// guarded by maxRecursionDepth against pathologically nested input.
func (p *Parser) primary() ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxRecursionDepth {
		if !p.recursionTripped {
			p.error(diagnostics.ErrRecursionTooDeep, "expression too deeply nested")
			p.recursionTripped = true
		}
		return nil
	}

	tok := p.cur()
	switch tok.Kind {
	case token.TRUE, token.FALSE, token.NULL, token.CHARACTER, token.NUMBER:
		p.advance()
		return tokenExpr(tok)
	case token.STRING_START:
		return p.stringExpression()
	case token.PAREN_OPEN:
		return p.parenExpression()
	case token.NOT:
		p.advance()
		inner := p.primary()
		if inner == nil {
			return nil
		}
		return unaryExpr(ast.LogicalNot, inner, tok.Position.Cover(inner.Pos()))
	case token.MINUS:
		p.advance()
		inner := p.primary()
		if inner == nil {
			return nil
		}
		return unaryExpr(ast.Negate, inner, tok.Position.Cover(inner.Pos()))
	case token.INCREMENT, token.DECREMENT:
		opTok := p.advance()
		identTok, ok := p.expect(token.IDENTIFIER, diagnostics.ErrUnexpectedToken, "expected identifier after prefix operator")
		if !ok {
			return nil
		}
		kind := ast.PreIncrement
		if opTok.Kind == token.DECREMENT {
			kind = ast.PreDecrement
		}
		return unaryExpr(kind, tokenExpr(identTok), opTok.Position.Cover(identTok.Position))
	case token.THIS:
		return p.thisExpression()
	case token.IDENTIFIER:
		return p.identifierTail()
	default:
		p.error(diagnostics.ErrUnexpectedToken, "unexpected token in expression")
		return nil
	}
}

func (p *Parser) parenExpression() ast.Expression {
	openTok := p.advance() // consume '('
	if p.curIs(token.TYPE) && p.peek(1).Kind == token.PAREN_CLOSE {
		typeTok := p.advance()
		p.advance() // consume ')'
		inner := p.primary()
		if inner == nil {
			return nil
		}
		e := &ast.TypeCastExpression{TargetTypeToken: typeTok, Inner: inner}
		e.Loc = openTok.Position.Cover(inner.Pos())
		return e
	}

	inner := p.expression()
	if inner == nil {
		for !p.curIs(token.PAREN_CLOSE) && !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) {
			p.advance()
		}
		if p.curIs(token.PAREN_CLOSE) {
			p.advance()
		}
		return nil
	}
	closeTok, ok := p.expect(token.PAREN_CLOSE, diagnostics.ErrUnexpectedToken, "expected ')' to close grouped expression")
	if !ok {
		return nil
	}
	return unaryExpr(ast.Grouping, inner, openTok.Position.Cover(closeTok.Position))
}

func (p *Parser) thisExpression() ast.Expression {
	thisTok := p.advance() // consume 'this'
	if p.owningClass == nil {
		p.error(diagnostics.ErrIllegalThis, "'this' used outside a class body")
	}
	if _, ok := p.expect(token.DOT, diagnostics.ErrUnexpectedToken, "expected '.' after 'this'"); !ok {
		return nil
	}
	inner := p.identifierTail()
	if inner == nil {
		return nil
	}
	e := &ast.ThisExpression{Inner: inner}
	e.Loc = thisTok.Position.Cover(inner.Pos())
	return e
}

// identifierTail parses one IDENTIFIER and everything the identifier_tail
// production allows after it: a postfix ++/--, a call, a `.` chain
// continuation, or nothing (spec.md §4.B grammar).
func (p *Parser) identifierTail() ast.Expression {
	identTok, ok := p.expect(token.IDENTIFIER, diagnostics.ErrUnexpectedToken, "expected identifier")
	if !ok {
		return nil
	}
	node := &ast.IdentifierExpression{Ident: identTok}
	node.Loc = identTok.Position

	switch p.cur().Kind {
	case token.INCREMENT, token.DECREMENT:
		opTok := p.advance()
		kind := ast.PostIncrement
		if opTok.Kind == token.DECREMENT {
			kind = ast.PostDecrement
		}
		return unaryExpr(kind, node, node.Loc.Cover(opTok.Position))
	case token.PAREN_OPEN:
		args, closeTok := p.callArguments()
		call := &ast.CallExpression{Callee: node, Arguments: args}
		call.Loc = node.Loc.Cover(closeTok.Position)
		return call
	case token.DOT:
		p.advance()
		inner := p.identifierTail()
		if inner == nil {
			return nil
		}
		node.Inner = inner
		node.Loc = node.Loc.Cover(inner.Pos())
		return node
	default:
		return node
	}
}

func (p *Parser) callArguments() ([]ast.Expression, token.Token) {
	p.advance() // consume '('
	var args []ast.Expression
	if !p.curIs(token.PAREN_CLOSE) {
		if a := p.expression(); a != nil {
			args = append(args, a)
		}
		for p.curIs(token.COMMA) {
			p.advance()
			if a := p.expression(); a != nil {
				args = append(args, a)
			}
		}
	}
	closeTok, _ := p.expect(token.PAREN_CLOSE, diagnostics.ErrUnexpectedToken, "expected ')' after call arguments")
	return args, closeTok
}

// stringExpression collects literal runs and interpolated expressions
// between STRING_START and STRING_END, handling both the plain `{expr}`
// form and the `{expr=}` form (spec.md §4.B, §8 scenario S5).
func (p *Parser) stringExpression() ast.Expression {
	startTok, ok := p.expect(token.STRING_START, diagnostics.ErrMalformedString, "expected string literal")
	if !ok {
		return nil
	}
	expr := &ast.StringExpression{}
	expr.Loc = startTok.Position

	for {
		switch p.cur().Kind {
		case token.STRING_CHARS:
			tok := p.advance()
			expr.Elements = append(expr.Elements, ast.StringElement{Token: &tok})
		case token.STRING_EXPR_START:
			p.advance()
			sourceStart := p.cur().Position
			inner := p.expression()
			if inner == nil {
				p.error(diagnostics.ErrMalformedString, "malformed interpolated expression")
				return expr
			}
			if p.curIs(token.EQUAL) {
				eqTok := p.advance()
				span := sourceStart.Cover(inner.Pos())
				source := ""
				if span.End() <= len(p.ctx.SourceCode) {
					source = p.ctx.SourceCode[span.Start:span.End()]
				}
				eq := &ast.StringEqualExpression{Inner: inner, EqualToken: eqTok, Filename: p.ctx.FilePath, SourceText: source}
				eq.Loc = span.Cover(eqTok.Position)
				expr.Elements = append(expr.Elements, ast.StringElement{Expr: eq})
			} else {
				p.expect(token.STRING_EXPR_END, diagnostics.ErrMalformedString, "expected '}' to close interpolated expression")
				expr.Elements = append(expr.Elements, ast.StringElement{Expr: inner})
			}
		case token.STRING_END:
			endTok := p.advance()
			expr.Loc = expr.Loc.Cover(endTok.Position)
			return expr
		case token.EOF:
			p.error(diagnostics.ErrMalformedString, "unterminated string literal")
			return expr
		default:
			p.error(diagnostics.ErrMalformedString, "unexpected token inside string literal")
			p.advance()
		}
	}
}

func tokenExpr(tok token.Token) *ast.TokenExpression {
	e := &ast.TokenExpression{Token: tok}
	e.Loc = tok.Position
	return e
}

func unaryExpr(kind ast.UnaryKind, inner ast.Expression, loc token.Position) *ast.UnaryExpression {
	e := &ast.UnaryExpression{Kind: kind, Inner: inner}
	e.Loc = loc
	return e
}
