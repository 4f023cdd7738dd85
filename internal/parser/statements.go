package parser

import (
	"fmt"

	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

// statement dispatches to one of the nine statement forms in the priority
// order spec.md §4.B fixes.
func (p *Parser) statement() ast.Statement {
	switch {
	case p.curIs(token.TYPE):
		return p.typeStartingStatement()
	case p.curIs(token.RETURN):
		return p.returnStatement()
	case p.curIs(token.PRINT), p.curIs(token.PRINTLN):
		return p.printStatement()
	case p.curIs(token.IF):
		return p.ifStatement()
	case p.curIs(token.FOR):
		return p.forStatement()
	case p.curIs(token.WHILE):
		return p.whileStatement()
	case p.curIs(token.CLASS):
		return p.classStatement()
	case p.curIs(token.BREAK):
		return p.breakStatement()
	case p.curIs(token.BREAKALL):
		return p.breakallStatement()
	case p.curIs(token.CONTINUE):
		return p.continueStatement()
	default:
		return p.expressionOrAssignmentStatement(true)
	}
}

func (p *Parser) typeStartingStatement() ast.Statement {
	typeTok := p.advance()
	nameTok, ok := p.expect(token.IDENTIFIER, diagnostics.ErrUnexpectedToken, "expected an identifier after a type")
	if !ok {
		return nil
	}
	if p.curIs(token.PAREN_OPEN) {
		return p.functionStatement(typeTok, nameTok)
	}
	return p.varOrListStatement(typeTok, nameTok, true)
}

func (p *Parser) parameterList() []ast.Argument {
	p.expect(token.PAREN_OPEN, diagnostics.ErrUnexpectedToken, "expected '(' to start a parameter list")
	var args []ast.Argument
	if !p.curIs(token.PAREN_CLOSE) {
		args = append(args, p.parameter())
		for p.curIs(token.COMMA) {
			p.advance()
			args = append(args, p.parameter())
		}
	}
	p.expect(token.PAREN_CLOSE, diagnostics.ErrUnexpectedToken, "expected ')' to close a parameter list")
	return args
}

func (p *Parser) parameter() ast.Argument {
	typeTok, ok := p.expect(token.TYPE, diagnostics.ErrUnexpectedToken, "expected a parameter type")
	if ok {
		if t := typeOf(typeTok); t != nil && t.Kind == types.KindVoid {
			p.error(diagnostics.ErrVoidArgument, "a function argument cannot have type 'void'")
		}
	}
	nameTok, _ := p.expect(token.IDENTIFIER, diagnostics.ErrUnexpectedToken, "expected a parameter name")
	return ast.Argument{TypeToken: typeTok, Name: nameTok}
}

func (p *Parser) functionStatement(typeTok, nameTok token.Token) ast.Statement {
	args := p.parameterList()
	colonTok, _ := p.expect(token.COLON, diagnostics.ErrUnexpectedToken, "expected ':' to start a function body")
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after ':'")

	wasInFunction := p.inFunction
	p.inFunction = true
	body := p.block()
	p.inFunction = wasInFunction

	stmt := &ast.FunctionStatement{
		ReturnTypeToken: typeTok,
		Name:            nameTok,
		OwningClass:     p.owningClass,
		Arguments:       args,
		Body:            body,
	}
	stmt.Loc = typeTok.Position.Cover(colonTok.Position)
	return stmt
}

// varOrListStatement parses the `Type name` / `Type name = value` forms,
// producing a ListStatement when the type resolved to a list type.
// requireNewline is false inside a for-loop's init clause (spec.md §4.B
// "must_end_with_newline=False").
func (p *Parser) varOrListStatement(typeTok, nameTok token.Token, requireNewline bool) ast.Statement {
	if t := typeOf(typeTok); t != nil && t.Kind == types.KindList {
		stmt := &ast.ListStatement{ListTypeToken: typeTok, Name: nameTok}
		stmt.Loc = typeTok.Position.Cover(nameTok.Position)
		if requireNewline {
			p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after a list declaration")
		}
		return stmt
	}

	var init ast.Expression
	loc := typeTok.Position.Cover(nameTok.Position)
	if p.curIs(token.EQUAL) {
		p.advance()
		init = p.expression()
		if init != nil {
			loc = loc.Cover(init.Pos())
		}
	}
	stmt := &ast.VarDeclStatement{TypeToken: typeTok, Name: nameTok, InitialValue: init}
	stmt.Loc = loc
	if requireNewline {
		p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after a variable declaration")
	}
	return stmt
}

func (p *Parser) returnStatement() ast.Statement {
	retTok := p.advance()
	if !p.inFunction {
		p.error(diagnostics.ErrIllegalReturn, "'return' used outside a function or lifecycle body")
	}
	var value ast.Expression
	loc := retTok.Position
	if !p.curIs(token.NEWLINE) && !p.curIs(token.EOF) {
		value = p.expression()
		if value != nil {
			loc = loc.Cover(value.Pos())
		}
	}
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after a return statement")
	stmt := &ast.ReturnStatement{Value: value}
	stmt.Loc = loc
	return stmt
}

func (p *Parser) printStatement() ast.Statement {
	kwTok := p.advance()
	p.expect(token.PAREN_OPEN, diagnostics.ErrUnexpectedToken, "expected '(' after print/println")
	value := p.expression()
	closeTok, _ := p.expect(token.PAREN_CLOSE, diagnostics.ErrUnexpectedToken, "expected ')' to close print/println")
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after a print statement")
	stmt := &ast.PrintStatement{Value: value, Newline: kwTok.Kind == token.PRINTLN}
	stmt.Loc = kwTok.Position.Cover(closeTok.Position)
	return stmt
}

func (p *Parser) ifStatement() ast.Statement {
	ifTok := p.advance()
	cond := p.expression()
	p.expect(token.COLON, diagnostics.ErrUnexpectedToken, "expected ':' after an if condition")
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after ':'")
	body := p.block()

	stmt := &ast.IfStatement{Condition: cond, Body: body}
	stmt.Loc = ifTok.Position

	for p.curIs(token.ELSE) && p.peek(1).Kind == token.IF {
		p.advance() // else
		p.advance() // if
		elseIfCond := p.expression()
		p.expect(token.COLON, diagnostics.ErrUnexpectedToken, "expected ':' after an else-if condition")
		p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after ':'")
		elseIfBody := p.block()
		stmt.ElseIf = append(stmt.ElseIf, ast.ElseIfBlock{Condition: elseIfCond, Body: elseIfBody})
	}

	if p.curIs(token.ELSE) {
		p.advance()
		p.expect(token.COLON, diagnostics.ErrUnexpectedToken, "expected ':' after else")
		p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after ':'")
		stmt.ElseBody = p.block()
		stmt.HasElse = true
	}
	return stmt
}

func (p *Parser) forStatement() ast.Statement {
	forTok := p.advance()
	outer := p.loopDepth == 0
	var label string
	if outer {
		label = fmt.Sprintf("breakall_%d", forTok.Position.Start)
		p.breakallLabel = label
	}
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	p.expect(token.PAREN_OPEN, diagnostics.ErrUnexpectedToken, "expected '(' after 'for'")
	var init ast.Statement
	if !p.curIs(token.SEMICOLON) {
		init = p.simpleClauseStatement()
	}
	p.expect(token.SEMICOLON, diagnostics.ErrUnexpectedToken, "expected ';' after a for-loop initializer")

	var check ast.Expression
	if !p.curIs(token.SEMICOLON) {
		check = p.expression()
	}
	p.expect(token.SEMICOLON, diagnostics.ErrUnexpectedToken, "expected ';' after a for-loop condition")

	var loop ast.Statement
	if !p.curIs(token.PAREN_CLOSE) {
		loop = p.simpleClauseStatement()
	}
	p.expect(token.PAREN_CLOSE, diagnostics.ErrUnexpectedToken, "expected ')' to close a for-loop header")
	p.expect(token.COLON, diagnostics.ErrUnexpectedToken, "expected ':' after a for-loop header")
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after ':'")
	body := p.block()

	stmt := &ast.ForLoopStatement{Init: init, Check: check, Loop: loop, Body: body}
	stmt.Loc = forTok.Position
	if outer {
		stmt.BreakallLabel = label
	}
	return stmt
}

func (p *Parser) whileStatement() ast.Statement {
	whileTok := p.advance()
	outer := p.loopDepth == 0
	var label string
	if outer {
		label = fmt.Sprintf("breakall_%d", whileTok.Position.Start)
		p.breakallLabel = label
	}
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	cond := p.expression()
	p.expect(token.COLON, diagnostics.ErrUnexpectedToken, "expected ':' after a while condition")
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after ':'")
	body := p.block()

	stmt := &ast.ForLoopStatement{Check: cond, Body: body}
	stmt.Loc = whileTok.Position
	if outer {
		stmt.BreakallLabel = label
	}
	return stmt
}

// simpleClauseStatement parses a var-declaration or expression/assignment
// statement without consuming a trailing newline, for use inside a
// for-loop's parenthesised header (spec.md §4.B).
func (p *Parser) simpleClauseStatement() ast.Statement {
	if p.curIs(token.TYPE) {
		typeTok := p.advance()
		nameTok, ok := p.expect(token.IDENTIFIER, diagnostics.ErrUnexpectedToken, "expected an identifier after a type")
		if !ok {
			return nil
		}
		return p.varOrListStatement(typeTok, nameTok, false)
	}
	return p.expressionOrAssignmentStatement(false)
}

func (p *Parser) breakStatement() ast.Statement {
	tok := p.advance()
	if p.loopDepth == 0 {
		p.error(diagnostics.ErrIllegalLoopControl, "'break' used outside a loop")
	}
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after break")
	stmt := &ast.BreakStatement{}
	stmt.Loc = tok.Position
	return stmt
}

func (p *Parser) continueStatement() ast.Statement {
	tok := p.advance()
	if p.loopDepth == 0 {
		p.error(diagnostics.ErrIllegalLoopControl, "'continue' used outside a loop")
	}
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after continue")
	stmt := &ast.ContinueStatement{}
	stmt.Loc = tok.Position
	return stmt
}

func (p *Parser) breakallStatement() ast.Statement {
	tok := p.advance()
	if p.loopDepth == 0 {
		p.error(diagnostics.ErrIllegalLoopControl, "'breakall' used outside a loop")
	}
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after breakall")
	stmt := &ast.BreakallStatement{Label: p.breakallLabel}
	stmt.Loc = tok.Position
	return stmt
}

func isAssignOp(k token.Type) bool {
	switch k {
	case token.EQUAL, token.PLUS_EQUAL, token.MINUS_EQUAL, token.STAR_EQUAL, token.SLASH_EQUAL:
		return true
	}
	return false
}

func isAssignableTarget(e ast.Expression) bool {
	switch e.(type) {
	case *ast.IdentifierExpression, *ast.ThisExpression:
		return true
	}
	return false
}

func (p *Parser) expressionOrAssignmentStatement(requireNewline bool) ast.Statement {
	expr := p.expression()
	if expr == nil {
		return nil
	}

	var stmt ast.Statement
	if isAssignOp(p.cur().Kind) {
		if !isAssignableTarget(expr) {
			p.error(diagnostics.ErrInvalidAssignTarget, "the left-hand side of an assignment must be an identifier or a member access")
		}
		opTok := p.advance()
		value := p.expression()
		as := &ast.AssignmentStatement{Target: expr, Operator: opTok, Value: value}
		loc := expr.Pos()
		if value != nil {
			loc = loc.Cover(value.Pos())
		}
		as.Loc = loc
		stmt = as
	} else {
		es := &ast.ExpressionStatement{Expression: expr}
		es.Loc = expr.Pos()
		stmt = es
	}

	if requireNewline {
		p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after a statement")
	}
	return stmt
}
