// Package scoping implements the first semantic pass (spec.md §4.C): a
// tree walk that builds lexical scopes and validates that every identifier
// reference resolves to a reachable declaration. It mutates no AST field;
// its only output is the diagnostics it accumulates.
//
// Grounded on funvibe-funxy/internal/analyzer's processor shape (a
// Run(program) []*diagnostics.DiagnosticError entry point that never calls
// os.Exit itself), generalized down to TAPL's simpler two-table scope
// (spec.md §3 "Lexical scope") instead of funxy's full symbol table.
package scoping

import (
	"fmt"
	"log"

	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/config"
	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/scope"
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/tracelog"
	"github.com/hetorus/tapl/internal/types"
)

// Pass carries the scope machinery for a single traversal of a program.
type Pass struct {
	registry *types.Registry
	wrapper  *scope.Wrapper
	stash    scope.Stash
	bag      diagnostics.Bag
	filePath string
	trace    *log.Logger
}

// Run walks program, returning every diagnostic collected. On success
// (spec.md §8 invariant 2) exactly the global scope remains and the stash
// is empty; a violation of that invariant is an internal compiler error.
// debug gates scope-leave trace logging (recovered from the original's
// new_scope/_clean_scope context managers) to stderr.
func Run(program *ast.Program, registry *types.Registry, filePath string, debug bool) []*diagnostics.DiagnosticError {
	p := &Pass{registry: registry, wrapper: scope.NewWrapper(), filePath: filePath, trace: tracelog.Logger(debug)}
	p.injectStdlib(p.wrapper.Scope())

	for _, stmt := range program.Statements {
		p.statement(stmt)
	}

	if !p.wrapper.AtGlobalScope() {
		panic("internal compiler error: scoping pass exited with unbalanced scopes")
	}
	if !p.stash.Empty() {
		panic("internal compiler error: scoping pass exited with a non-empty scope stash")
	}
	return p.bag.Errors
}

func (p *Pass) error(code diagnostics.ErrorCode, tok token.Token, message string) {
	p.bag.Add(diagnostics.NewError(code, tok, message), p.filePath)
}

func (p *Pass) injectStdlib(sc *scope.Scope) {
	for _, fn := range config.StdlibFunctions {
		sc.AddFunction(fn.Name, fn)
		sc.AddIdentifier(fn.Name, types.Ref{Type: p.registry.Get(fn.ReturnType)})
	}
}

func (p *Pass) declareIdentifier(tok token.Token, ref types.Ref) {
	name := tok.IdentifierValue()
	if p.wrapper.Scope().HasIdentifierLocal(name) {
		p.error(diagnostics.ErrIdentifierExists, tok, fmt.Sprintf("identifier '%s' already exists in this scope", name))
		return
	}
	p.wrapper.Scope().AddIdentifier(name, ref)
}

func (p *Pass) declareFunction(tok token.Token, fn *ast.FunctionStatement) {
	name := tok.IdentifierValue()
	if p.wrapper.Scope().HasFunctionLocal(name) {
		p.error(diagnostics.ErrIdentifierExists, tok, fmt.Sprintf("function '%s' already exists in this scope", name))
		return
	}
	p.wrapper.Scope().AddFunction(name, fn)
	p.wrapper.Scope().AddIdentifier(name, types.Ref{Type: typeOf(fn.ReturnTypeToken)})
}

func typeOf(tok token.Token) *types.Type {
	t, _ := tok.Value.(*types.Type)
	return t
}

// --- statements ---

func (p *Pass) statement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.VarDeclStatement:
		p.expr(n.InitialValue)
		p.declareIdentifier(n.Name, types.Ref{Type: typeOf(n.TypeToken)})
	case *ast.ListStatement:
		p.declareIdentifier(n.Name, types.Ref{Type: typeOf(n.ListTypeToken)})
	case *ast.FunctionStatement:
		p.functionStatement(n)
	case *ast.LifecycleStatement:
		p.lifecycleStatement(n)
	case *ast.ClassStatement:
		p.classStatement(n)
	case *ast.IfStatement:
		p.expr(n.Condition)
		p.block(n.Body)
		for _, ei := range n.ElseIf {
			p.expr(ei.Condition)
			p.block(ei.Body)
		}
		if n.HasElse {
			p.block(n.ElseBody)
		}
	case *ast.ForLoopStatement:
		close := p.wrapper.EnterScope()
		if n.Init != nil {
			p.statement(n.Init)
		}
		p.expr(n.Check)
		for _, stmt := range n.Body {
			p.statement(stmt)
		}
		if n.Loop != nil {
			p.statement(n.Loop)
		}
		close()
	case *ast.AssignmentStatement:
		p.expr(n.Target)
		p.expr(n.Value)
	case *ast.ExpressionStatement:
		p.expr(n.Expression)
	case *ast.PrintStatement:
		p.expr(n.Value)
	case *ast.ReturnStatement:
		p.expr(n.Value)
	case *ast.BreakStatement, *ast.ContinueStatement, *ast.BreakallStatement:
		// nothing to resolve
	default:
		panic(fmt.Sprintf("internal compiler error: scoping pass: unhandled statement type %T", s))
	}
}

func (p *Pass) block(stmts []ast.Statement) {
	close := p.wrapper.EnterScope()
	for _, s := range stmts {
		p.statement(s)
	}
	p.trace.Printf("scoping: leaving block scope, identifiers=%v", p.wrapper.Scope().Identifiers())
	close()
}

func (p *Pass) functionStatement(n *ast.FunctionStatement) {
	p.declareFunction(n.Name, n)
	close := p.wrapper.EnterScope()
	for _, arg := range n.Arguments {
		p.declareIdentifier(arg.Name, types.Ref{Type: typeOf(arg.TypeToken), IsReference: true})
	}
	for _, stmt := range n.Body {
		p.statement(stmt)
	}
	p.trace.Printf("scoping: leaving function %q scope, identifiers=%v", n.Name.IdentifierValue(), p.wrapper.Scope().Identifiers())
	close()
}

func (p *Pass) lifecycleStatement(n *ast.LifecycleStatement) {
	close := p.wrapper.EnterScope()
	for _, arg := range n.Arguments {
		p.declareIdentifier(arg.Name, types.Ref{Type: typeOf(arg.TypeToken), IsReference: true})
	}
	for _, stmt := range n.Body {
		p.statement(stmt)
	}
	p.trace.Printf("scoping: leaving lifecycle scope, identifiers=%v", p.wrapper.Scope().Identifiers())
	close()
}

// classStatement visits a class body in a clean scope stashed aside from
// the surrounding one (spec.md GLOSSARY "Clean scope"), so that identifiers
// declared outside the class are not visible inside it.
func (p *Pass) classStatement(n *ast.ClassStatement) {
	outer := p.wrapper
	p.stash.Push(outer)
	p.wrapper = scope.NewWrapper()
	p.injectStdlib(p.wrapper.Scope())

	for _, v := range n.Variables {
		p.statement(v)
	}
	for _, l := range n.Lists {
		p.statement(l)
	}
	if n.Constructor != nil {
		p.lifecycleStatement(n.Constructor)
	}
	if n.Destructor != nil {
		p.lifecycleStatement(n.Destructor)
	}
	for _, fn := range n.Functions {
		p.functionStatement(fn)
	}

	p.trace.Printf("scoping: leaving class %q scope, identifiers=%v", n.Name.IdentifierValue(), p.wrapper.Scope().Identifiers())
	p.wrapper = p.stash.Pop()
}

// --- expressions ---

// expr resolves every free identifier reference reachable from e. Member
// names following a '.' are not looked up here: resolving them needs the
// receiver's type, which is the typing pass's job (spec.md §4.D rule 10).
func (p *Pass) expr(e ast.Expression) {
	switch n := e.(type) {
	case nil:
		return
	case *ast.TokenExpression:
		if n.Token.Kind == token.IDENTIFIER {
			if _, ok := p.wrapper.Scope().GetIdentifier(n.Token.IdentifierValue()); !ok {
				p.error(diagnostics.ErrUnknownIdentifier, n.Token, fmt.Sprintf("unknown identifier '%s'", n.Token.IdentifierValue()))
			}
		}
	case *ast.BinaryExpression:
		p.expr(n.Left)
		p.expr(n.Right)
	case *ast.UnaryExpression:
		p.expr(n.Inner)
	case *ast.TypeCastExpression:
		p.expr(n.Inner)
	case *ast.StringExpression:
		for _, el := range n.Elements {
			if el.Expr != nil {
				p.expr(el.Expr)
			}
		}
	case *ast.StringEqualExpression:
		p.expr(n.Inner)
	case *ast.ThisExpression:
		p.chainTail(n.Inner)
	case *ast.IdentifierExpression:
		if _, ok := p.wrapper.Scope().GetIdentifier(n.Ident.IdentifierValue()); !ok {
			p.error(diagnostics.ErrUnknownIdentifier, n.Ident, fmt.Sprintf("unknown identifier '%s'", n.Ident.IdentifierValue()))
		}
		if n.Inner != nil {
			p.chainTail(n.Inner)
		}
	case *ast.CallExpression:
		if _, ok := p.wrapper.Scope().GetFunction(n.Callee.Ident.IdentifierValue()); !ok {
			p.error(diagnostics.ErrUnknownFunction, n.Callee.Ident, fmt.Sprintf("unknown function '%s'", n.Callee.Ident.IdentifierValue()))
		}
		for _, a := range n.Arguments {
			p.expr(a)
		}
	default:
		panic(fmt.Sprintf("internal compiler error: scoping pass: unhandled expression type %T", e))
	}
}

// chainTail walks a `.`-chain continuation without scope-checking the
// member name itself (only its arguments, if it is a call).
func (p *Pass) chainTail(e ast.Expression) {
	switch n := e.(type) {
	case *ast.IdentifierExpression:
		if n.Inner != nil {
			p.chainTail(n.Inner)
		}
	case *ast.CallExpression:
		for _, a := range n.Arguments {
			p.expr(a)
		}
	case *ast.UnaryExpression:
		p.chainTail(n.Inner)
	default:
		panic(fmt.Sprintf("internal compiler error: scoping pass: unexpected chain continuation %T", e))
	}
}
