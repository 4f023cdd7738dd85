package parser

import (
	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

// classStatement parses `class Name:` and its body (spec.md §4.B "Class
// body parsing"): variable/list declarations, methods, and at most one
// constructor and one destructor.
func (p *Parser) classStatement() ast.Statement {
	classTok := p.advance()
	nameTok, ok := p.expect(token.IDENTIFIER, diagnostics.ErrUnexpectedToken, "expected a class name")
	if !ok {
		return nil
	}
	classType := p.registry.AddClassType(nameTok.IdentifierValue())

	p.expect(token.COLON, diagnostics.ErrUnexpectedToken, "expected ':' after a class name")
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after ':'")

	stmt := &ast.ClassStatement{ClassType: classType, Name: nameTok}
	stmt.Loc = classTok.Position.Cover(nameTok.Position)

	prevClass := p.owningClass
	p.owningClass = classType
	defer func() { p.owningClass = prevClass }()

	if p.curIs(token.INDENT) {
		p.advance()
		for !p.curIs(token.DEDENT) && !p.curIs(token.EOF) {
			if p.curIs(token.NEWLINE) {
				p.advance()
				continue
			}
			p.classMember(stmt, nameTok.IdentifierValue())
		}
		if p.curIs(token.DEDENT) {
			p.advance()
		}
	}
	return stmt
}

// classMember parses one member of a class body, recovering to the next
// NEWLINE on error so one bad member doesn't hide the rest (spec.md §4.B
// "any other token is an error").
func (p *Parser) classMember(stmt *ast.ClassStatement, className string) {
	errCount := len(p.ctx.Errors)

	switch {
	case p.curIs(token.IDENTIFIER) && p.cur().IdentifierValue() == className && p.peek(1).Kind == token.PAREN_OPEN:
		p.advance() // consume the class-name identifier
		ctor := p.lifecycleStatement(ast.Constructor, stmt.ClassType)
		if stmt.Constructor != nil {
			p.error(diagnostics.ErrDuplicateLifecycle, "a class may have only one constructor")
		} else {
			stmt.Constructor = ctor
		}

	case p.curIs(token.TILDE):
		p.advance()
		nameTok, ok := p.expect(token.IDENTIFIER, diagnostics.ErrUnexpectedToken, "expected the class name after '~'")
		if ok && nameTok.IdentifierValue() != className {
			p.error(diagnostics.ErrUnexpectedToken, "a destructor's name must match its class")
		}
		dtor := p.lifecycleStatement(ast.Destructor, stmt.ClassType)
		if stmt.Destructor != nil {
			p.error(diagnostics.ErrDuplicateLifecycle, "a class may have only one destructor")
		} else {
			stmt.Destructor = dtor
		}

	case p.curIs(token.TYPE):
		typeTok := p.advance()
		nameTok, ok := p.expect(token.IDENTIFIER, diagnostics.ErrUnexpectedToken, "expected a member name")
		if !ok {
			break
		}
		if p.curIs(token.PAREN_OPEN) {
			if fn, ok := p.functionStatement(typeTok, nameTok).(*ast.FunctionStatement); ok {
				stmt.Functions = append(stmt.Functions, fn)
			}
		} else {
			switch member := p.varOrListStatement(typeTok, nameTok, true).(type) {
			case *ast.VarDeclStatement:
				stmt.Variables = append(stmt.Variables, member)
			case *ast.ListStatement:
				stmt.Lists = append(stmt.Lists, member)
			}
		}

	default:
		p.error(diagnostics.ErrInvalidClassMember, "only variable, list, function, constructor, and destructor declarations are allowed in a class body")
	}

	if len(p.ctx.Errors) > errCount {
		p.recover()
	}
}

// lifecycleStatement parses a constructor or destructor body, assuming the
// class-name identifier (and, for a destructor, the leading '~') has
// already been consumed by the caller.
func (p *Parser) lifecycleStatement(kind ast.LifecycleKind, classType *types.Type) *ast.LifecycleStatement {
	startTok := p.previous()
	args := p.parameterList()
	p.expect(token.COLON, diagnostics.ErrUnexpectedToken, "expected ':' to start a lifecycle body")
	p.expect(token.NEWLINE, diagnostics.ErrMissingNewline, "expected a newline after ':'")

	wasInFunction := p.inFunction
	p.inFunction = true
	body := p.block()
	p.inFunction = wasInFunction

	stmt := &ast.LifecycleStatement{Kind: kind, OwningClass: classType, Arguments: args, Body: body}
	stmt.Loc = startTok.Position
	return stmt
}
