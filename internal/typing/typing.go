// Package typing implements the second semantic pass (spec.md §4.D): a
// tree walk that assigns a concrete *types.Type to every expression node,
// validates assignment/call/return/cast compatibility, and enforces the
// numeric range of literals flowing into a narrower declared type.
//
// Grounded on funvibe-funxy/internal/analyzer's processor shape (a
// Run(program) []*diagnostics.DiagnosticError entry point, no os.Exit
// inside the pass), generalized from funxy's Hindley-Milner inference down
// to TAPL's much smaller structural check_types/promotion rule (spec.md
// §4.D rule 3), which itself is grounded on internal/types.Type's own
// promotion graph (CanPromoteTo).
package typing

import (
	"fmt"
	"log"
	"math"

	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/config"
	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/scope"
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/tracelog"
	"github.com/hetorus/tapl/internal/types"
)

// Pass carries the typing machinery for a single traversal of a program.
type Pass struct {
	registry    *types.Registry
	wrapper     *scope.Wrapper
	stash       scope.Stash
	classScopes map[string]*scope.Wrapper
	returnTypes []*types.Type
	owningClass *types.Type
	bag         diagnostics.Bag
	filePath    string
	trace       *log.Logger
}

// Run walks program, assigning a type to every expression it can resolve
// and returning every diagnostic collected. Intended to run only after the
// scoping pass reports no errors (spec.md §7's "errors halt progress
// between passes"), since it assumes every identifier it looks up exists.
// debug gates scope-leave trace logging (recovered from the original's
// new_scope/_clean_scope context managers) to stderr.
func Run(program *ast.Program, registry *types.Registry, filePath string, debug bool) []*diagnostics.DiagnosticError {
	p := &Pass{
		registry:    registry,
		wrapper:     scope.NewWrapper(),
		classScopes: make(map[string]*scope.Wrapper),
		filePath:    filePath,
		trace:       tracelog.Logger(debug),
	}
	p.injectStdlib(p.wrapper.Scope())

	for _, stmt := range program.Statements {
		p.statement(stmt)
	}
	return p.bag.Errors
}

func (p *Pass) error(code diagnostics.ErrorCode, pos token.Position, message string) {
	p.bag.Add(diagnostics.NewError(code, token.Token{Position: pos}, message), p.filePath)
}

func (p *Pass) injectStdlib(sc *scope.Scope) {
	for _, fn := range config.StdlibFunctions {
		sc.AddFunction(fn.Name, fn)
		sc.AddIdentifier(fn.Name, types.Ref{Type: p.registry.Get(fn.ReturnType)})
	}
}

func typeOf(tok token.Token) *types.Type {
	t, _ := tok.Value.(*types.Type)
	return t
}

func safeKeyword(t *types.Type) string {
	if t == nil {
		return "<unknown>"
	}
	return t.Keyword
}

// checkTypes implements spec.md §4.D rule 3: two numeric types are
// compatible if either is the undetermined `base` literal type (which
// unifies to the other's concrete type), or if their keywords are
// identical. Any other pairing of distinct keywords is an error, even if
// the promotion graph (§4.A) would allow one to widen into the other —
// the promotion graph is consulted only for literal-range checking, never
// by this compatibility rule. Returns the resulting type and whether the
// pair is compatible.
func checkTypes(left, right *types.Type) (*types.Type, bool) {
	if left == nil || right == nil {
		return nil, false
	}
	if left == right {
		return left, true
	}
	if left.Kind == types.KindNumeric && right.Kind == types.KindNumeric {
		if left.Keyword == "base" {
			return right, true
		}
		if right.Keyword == "base" {
			return left, true
		}
	}
	if left.Keyword == right.Keyword {
		return left, true
	}
	return nil, false
}

func numericBounds(t *types.Type) (int64, int64) {
	switch t.NumericKind {
	case types.Unsigned:
		if t.NumBits >= 64 {
			return 0, math.MaxInt64
		}
		return 0, (int64(1) << uint(t.NumBits)) - 1
	case types.Signed:
		if t.NumBits >= 64 {
			return math.MinInt64, math.MaxInt64
		}
		half := int64(1) << uint(t.NumBits-1)
		return -half, half - 1
	default: // FloatingPoint
		return math.MinInt64, math.MaxInt64
	}
}

// literalValue recovers the compile-time integer value of e if e is, after
// unwrapping grouping/negation, a literal NUMBER token. Used only by
// rangeCheck, which needs the concrete value to compare against bounds.
func literalValue(e ast.Expression) (int64, bool) {
	switch n := e.(type) {
	case *ast.TokenExpression:
		if n.Token.Kind == token.NUMBER {
			return n.Token.NumberValue(), true
		}
		return 0, false
	case *ast.UnaryExpression:
		switch n.Kind {
		case ast.Grouping:
			return literalValue(n.Inner)
		case ast.Negate:
			v, ok := literalValue(n.Inner)
			return -v, ok
		}
	}
	return 0, false
}

// rangeCheck is the recovered base-type range check (SPEC_FULL.md
// "Recovered features"), applied at all four flow sites a `base`-typed
// literal can settle into a concrete numeric slot: var-decl initializer,
// assignment, argument passing, and return.
func (p *Pass) rangeCheck(declared *types.Type, valueExpr ast.Expression, pos token.Position) {
	if declared == nil || declared.Kind != types.KindNumeric {
		return
	}
	if valueExpr.Type() == nil || valueExpr.Type().Keyword != "base" {
		return
	}
	value, ok := literalValue(valueExpr)
	if !ok {
		return
	}
	lo, hi := numericBounds(declared)
	if value < lo || value > hi {
		p.error(diagnostics.ErrNumericOutOfRange, pos,
			fmt.Sprintf("can't assign '%d' to '%s', value must be between [%d, %d]!", value, declared.Keyword, lo, hi))
	}
}

// --- statements ---

func (p *Pass) statement(s ast.Statement) {
	switch n := s.(type) {
	case *ast.VarDeclStatement:
		p.varDeclStatement(n)
	case *ast.ListStatement:
		n.Ref = types.Ref{Type: typeOf(n.ListTypeToken)}
		p.wrapper.Scope().AddIdentifier(n.Name.IdentifierValue(), n.Ref)
	case *ast.FunctionStatement:
		p.functionStatement(n)
	case *ast.LifecycleStatement:
		p.lifecycleStatement(n)
	case *ast.ClassStatement:
		p.classStatement(n)
	case *ast.IfStatement:
		p.typeExpr(n.Condition)
		p.blockScope(n.Body)
		for i := range n.ElseIf {
			p.typeExpr(n.ElseIf[i].Condition)
			p.blockScope(n.ElseIf[i].Body)
		}
		if n.HasElse {
			p.blockScope(n.ElseBody)
		}
	case *ast.ForLoopStatement:
		close := p.wrapper.EnterScope()
		if n.Init != nil {
			p.statement(n.Init)
		}
		if n.Check != nil {
			p.typeExpr(n.Check)
		}
		for _, stmt := range n.Body {
			p.statement(stmt)
		}
		if n.Loop != nil {
			p.statement(n.Loop)
		}
		close()
	case *ast.AssignmentStatement:
		p.assignmentStatement(n)
	case *ast.ExpressionStatement:
		p.typeExpr(n.Expression)
	case *ast.PrintStatement:
		p.typeExpr(n.Value)
	case *ast.ReturnStatement:
		p.returnStatement(n)
	case *ast.BreakStatement, *ast.ContinueStatement, *ast.BreakallStatement:
		// nothing to type
	default:
		panic(fmt.Sprintf("internal compiler error: typing pass: unhandled statement type %T", s))
	}
}

func (p *Pass) blockScope(stmts []ast.Statement) {
	close := p.wrapper.EnterScope()
	for _, s := range stmts {
		p.statement(s)
	}
	p.trace.Printf("typing: leaving block scope, identifiers=%v", p.wrapper.Scope().Identifiers())
	close()
}

func (p *Pass) varDeclStatement(n *ast.VarDeclStatement) {
	declared := typeOf(n.TypeToken)
	if n.InitialValue != nil {
		p.typeExpr(n.InitialValue)
		if declared != nil && n.InitialValue.Type() != nil {
			if _, ok := checkTypes(n.InitialValue.Type(), declared); !ok {
				p.error(diagnostics.ErrTypeMismatch, n.InitialValue.Pos(),
					fmt.Sprintf("can't assign '%s' to '%s'", n.InitialValue.Type().Keyword, declared.Keyword))
			} else {
				p.rangeCheck(declared, n.InitialValue, n.InitialValue.Pos())
			}
		}
	}
	n.Ref = types.Ref{Type: declared}
	p.wrapper.Scope().AddIdentifier(n.Name.IdentifierValue(), n.Ref)
}

func (p *Pass) assignmentStatement(n *ast.AssignmentStatement) {
	p.typeExpr(n.Target)
	p.typeExpr(n.Value)
	lt, rt := n.Target.Type(), n.Value.Type()
	if lt == nil || rt == nil {
		return
	}
	if _, ok := checkTypes(rt, lt); !ok {
		p.error(diagnostics.ErrTypeMismatch, n.Value.Pos(), fmt.Sprintf("can't assign '%s' to '%s'", rt.Keyword, lt.Keyword))
		return
	}
	p.rangeCheck(lt, n.Value, n.Value.Pos())
}

func (p *Pass) returnStatement(n *ast.ReturnStatement) {
	if len(p.returnTypes) == 0 {
		panic("internal compiler error: typing pass: return statement outside a function (should have been rejected by the parser)")
	}
	expected := p.returnTypes[len(p.returnTypes)-1]
	if n.Value == nil {
		if expected != nil && expected.NonVoid() {
			p.error(diagnostics.ErrReturnMismatch, n.Pos(), fmt.Sprintf("expected a return value of type '%s', found none", expected.Keyword))
		}
		return
	}
	p.typeExpr(n.Value)
	if expected == nil {
		return
	}
	if !expected.NonVoid() {
		p.error(diagnostics.ErrReturnMismatch, n.Value.Pos(), "a 'void' function must not return a value")
		return
	}
	actual := n.Value.Type()
	if actual == nil {
		return
	}
	if _, ok := checkTypes(actual, expected); !ok {
		p.error(diagnostics.ErrReturnMismatch, n.Value.Pos(),
			fmt.Sprintf("expected a return value of type '%s', found '%s'", expected.Keyword, actual.Keyword))
		return
	}
	p.rangeCheck(expected, n.Value, n.Value.Pos())
}

// functionStatement implements spec.md §4.D rule 13: the function's name
// is added to the surrounding scope with its return type before the body
// is visited (enabling direct recursion), arguments are marked
// is_reference, and the return type is pushed so nested return statements
// can be checked against it.
func (p *Pass) functionStatement(n *ast.FunctionStatement) {
	retType := typeOf(n.ReturnTypeToken)
	n.ReturnRef = types.Ref{Type: retType}
	p.wrapper.Scope().AddFunction(n.Name.IdentifierValue(), n)
	p.wrapper.Scope().AddIdentifier(n.Name.IdentifierValue(), n.ReturnRef)

	close := p.wrapper.EnterScope()
	for i := range n.Arguments {
		n.Arguments[i].Ref = types.Ref{Type: typeOf(n.Arguments[i].TypeToken), IsReference: true}
		p.wrapper.Scope().AddIdentifier(n.Arguments[i].Name.IdentifierValue(), n.Arguments[i].Ref)
	}
	p.returnTypes = append(p.returnTypes, retType)
	for _, stmt := range n.Body {
		p.statement(stmt)
	}
	p.returnTypes = p.returnTypes[:len(p.returnTypes)-1]
	p.trace.Printf("typing: leaving function %q scope, identifiers=%v", n.Name.IdentifierValue(), p.wrapper.Scope().Identifiers())
	close()
}

func (p *Pass) lifecycleStatement(n *ast.LifecycleStatement) {
	close := p.wrapper.EnterScope()
	for i := range n.Arguments {
		n.Arguments[i].Ref = types.Ref{Type: typeOf(n.Arguments[i].TypeToken), IsReference: true}
		p.wrapper.Scope().AddIdentifier(n.Arguments[i].Name.IdentifierValue(), n.Arguments[i].Ref)
	}
	p.returnTypes = append(p.returnTypes, p.registry.Get("void"))
	for _, stmt := range n.Body {
		p.statement(stmt)
	}
	p.returnTypes = p.returnTypes[:len(p.returnTypes)-1]
	p.trace.Printf("typing: leaving lifecycle scope, identifiers=%v", p.wrapper.Scope().Identifiers())
	close()
}

// classStatement implements spec.md §4.D rule 14: the class body is typed
// in a clean scope (stashed aside from the surrounding one) with the
// standard library re-injected, and the resulting scope is saved under the
// class's keyword so later `receiver.member` chains elsewhere in the
// program can resolve its fields and methods.
func (p *Pass) classStatement(n *ast.ClassStatement) {
	outer := p.wrapper
	p.stash.Push(outer)
	classWrapper := scope.NewWrapper()
	p.wrapper = classWrapper
	p.classScopes[n.ClassType.Keyword] = classWrapper
	p.injectStdlib(p.wrapper.Scope())

	prevClass := p.owningClass
	p.owningClass = n.ClassType

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

	p.owningClass = prevClass
	p.trace.Printf("typing: leaving class %q scope, identifiers=%v", n.Name.IdentifierValue(), p.wrapper.Scope().Identifiers())
	p.wrapper = p.stash.Pop()
}

// --- expressions ---

func (p *Pass) typeExpr(e ast.Expression) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.TokenExpression:
		p.tokenExpr(n)
	case *ast.BinaryExpression:
		p.binaryExpr(n)
	case *ast.UnaryExpression:
		p.unaryExpr(n)
	case *ast.TypeCastExpression:
		p.typeCastExpr(n)
	case *ast.StringExpression:
		p.stringExpr(n)
	case *ast.StringEqualExpression:
		p.stringEqualExpr(n)
	case *ast.ThisExpression:
		p.thisExpr(n)
	case *ast.IdentifierExpression:
		p.identifierExpr(n)
	case *ast.CallExpression:
		p.freeCallExpr(n)
	default:
		panic(fmt.Sprintf("internal compiler error: typing pass: unhandled expression type %T", e))
	}
}

func (p *Pass) tokenExpr(n *ast.TokenExpression) {
	switch n.Token.Kind {
	case token.NUMBER, token.TRUE, token.FALSE, token.NULL:
		// base: the undetermined literal type, per spec.md GLOSSARY
		// ("assigned to integer literals and to boolean/null tokens
		// until context forces a concrete type").
		n.SetType(p.registry.Get("base"))
	case token.CHARACTER:
		n.SetType(p.registry.Get("char"))
	case token.IDENTIFIER:
		// the bare operand of a prefix ++/--.
		ref, ok := p.wrapper.Scope().GetIdentifier(n.Token.IdentifierValue())
		if !ok {
			p.error(diagnostics.ErrTypeMismatch, n.Pos(), fmt.Sprintf("unknown identifier '%s'", n.Token.IdentifierValue()))
			n.SetType(p.registry.Get("base"))
			return
		}
		n.SetType(ref.Type)
	default:
		panic(fmt.Sprintf("internal compiler error: typing pass: unexpected token kind in TokenExpression: %s", n.Token.Kind))
	}
}

// binaryExpr implements spec.md §4.D rule 4. Open question (b): every
// binary operator (arithmetic, comparison, and logical alike) inherits the
// operand type via checkTypes rather than always producing bool — kept as
// specified, see DESIGN.md.
func (p *Pass) binaryExpr(n *ast.BinaryExpression) {
	p.typeExpr(n.Left)
	p.typeExpr(n.Right)
	lt, rt := n.Left.Type(), n.Right.Type()
	if lt == nil || rt == nil {
		n.SetType(p.registry.Get("base"))
		return
	}
	result, ok := checkTypes(lt, rt)
	if !ok {
		p.error(diagnostics.ErrTypeMismatch, n.Pos(), fmt.Sprintf("'%s' and '%s' can't be used together", lt.Keyword, rt.Keyword))
		result = lt
	}
	n.SetType(result)
}

func (p *Pass) unaryExpr(n *ast.UnaryExpression) {
	p.typeExpr(n.Inner)
	it := n.Inner.Type()
	if it == nil {
		n.SetType(p.registry.Get("base"))
		return
	}
	if n.Kind == ast.Grouping {
		n.SetType(it)
		return
	}
	if it.Kind != types.KindNumeric {
		p.error(diagnostics.ErrUnaryOperandType, n.Pos(), fmt.Sprintf("operator requires a numeric operand, found '%s'", it.Keyword))
	}
	n.SetType(it)
}

func (p *Pass) typeCastExpr(n *ast.TypeCastExpression) {
	p.typeExpr(n.Inner)
	target := typeOf(n.TargetTypeToken)
	if target == nil {
		target = p.registry.Get("base")
	}
	inner := n.Inner.Type()
	targetOK := target.Kind == types.KindNumeric || target.Kind == types.KindCharacter
	innerOK := inner != nil && (inner.Kind == types.KindNumeric || inner.Kind == types.KindCharacter)
	if !targetOK || !innerOK {
		p.error(diagnostics.ErrUncastableType, n.Pos(), fmt.Sprintf("cannot cast '%s' to '%s'", safeKeyword(inner), target.Keyword))
	}
	n.SetType(target)
}

func (p *Pass) stringExpr(n *ast.StringExpression) {
	for _, el := range n.Elements {
		if el.Expr != nil {
			p.typeExpr(el.Expr)
		}
	}
	n.SetType(p.registry.Get("string"))
}

func (p *Pass) stringEqualExpr(n *ast.StringEqualExpression) {
	p.typeExpr(n.Inner)
	if t := n.Inner.Type(); t != nil {
		n.SetType(t)
	} else {
		n.SetType(p.registry.Get("base"))
	}
}

func (p *Pass) thisExpr(n *ast.ThisExpression) {
	if p.owningClass == nil {
		panic("internal compiler error: typing pass: 'this' typed outside a class (should have been rejected by the parser)")
	}
	p.memberExpr(n.Inner, p.owningClass)
	n.SetType(deepestType(n.Inner))
}

// identifierExpr implements spec.md §4.D rule 10: the chain's root
// identifier is resolved in the current scope; if it continues with
// `.member`, the member is resolved against the root's own type (a class's
// field/method table, or a list's fixed callable table) rather than the
// ambient scope.
func (p *Pass) identifierExpr(n *ast.IdentifierExpression) {
	ref, ok := p.wrapper.Scope().GetIdentifier(n.Ident.IdentifierValue())
	if !ok {
		p.error(diagnostics.ErrTypeMismatch, n.Pos(), fmt.Sprintf("unknown identifier '%s'", n.Ident.IdentifierValue()))
		n.SetType(p.registry.Get("base"))
		return
	}
	n.Ref = ref
	rootType := ref.Type
	if rootType != nil {
		if rootType.Kind == types.KindClass {
			n.ClassType = rootType
		}
		if rootType.Kind == types.KindList {
			n.ListType = rootType
		}
	}
	if n.Inner == nil {
		n.SetType(rootType)
		return
	}
	if rootType == nil {
		n.SetType(p.registry.Get("base"))
		return
	}
	p.memberExpr(n.Inner, rootType)
	n.SetType(deepestType(n.Inner))
}

// deepestType returns the type of the last element of a `.`-chain.
func deepestType(e ast.Expression) *types.Type {
	if n, ok := e.(*ast.IdentifierExpression); ok && n.Inner != nil {
		return deepestType(n.Inner)
	}
	return e.Type()
}

// memberExpr resolves one link of a `.`-chain continuation against
// receiver's own member table (spec.md §4.D rule 10's "receiver-type
// stack"): a class's field/method scope, or a list's fixed callable table.
func (p *Pass) memberExpr(e ast.Expression, receiver *types.Type) {
	switch n := e.(type) {
	case *ast.IdentifierExpression:
		p.memberIdentifier(n, receiver)
	case *ast.CallExpression:
		p.memberCall(n, receiver)
	case *ast.UnaryExpression:
		p.memberExpr(n.Inner, receiver)
		n.SetType(n.Inner.Type())
	default:
		panic(fmt.Sprintf("internal compiler error: typing pass: unexpected chain continuation %T", e))
	}
}

func (p *Pass) memberIdentifier(n *ast.IdentifierExpression, receiver *types.Type) {
	if receiver.Kind != types.KindClass {
		p.error(diagnostics.ErrNotCallable, n.Pos(), fmt.Sprintf("'%s' has no member '%s'", receiver.Keyword, n.Ident.IdentifierValue()))
		n.SetType(p.registry.Get("base"))
		return
	}
	classWrapper, ok := p.classScopes[receiver.Keyword]
	if !ok {
		panic("internal compiler error: typing pass: class scope not recorded for " + receiver.Keyword)
	}
	ref, ok := classWrapper.Scope().GetIdentifier(n.Ident.IdentifierValue())
	if !ok {
		p.error(diagnostics.ErrUnknownIdentifier, n.Pos(), fmt.Sprintf("'%s' has no field '%s'", receiver.Keyword, n.Ident.IdentifierValue()))
		n.SetType(p.registry.Get("base"))
		return
	}
	n.Ref = ref
	if ref.Type != nil {
		if ref.Type.Kind == types.KindClass {
			n.ClassType = ref.Type
		}
		if ref.Type.Kind == types.KindList {
			n.ListType = ref.Type
		}
	}
	if n.Inner == nil {
		n.SetType(ref.Type)
		return
	}
	if ref.Type == nil {
		n.SetType(p.registry.Get("base"))
		return
	}
	p.memberExpr(n.Inner, ref.Type)
	n.SetType(deepestType(n.Inner))
}

// resolveFunctionCall types args against fn's declared parameters
// (user-defined or stdlib) and returns its return type.
func (p *Pass) resolveFunctionCall(fnEntry any, args []ast.Expression, pos token.Position) *types.Type {
	switch fn := fnEntry.(type) {
	case *ast.FunctionStatement:
		p.checkCallArguments(fn.Arguments, args, pos)
		return typeOf(fn.ReturnTypeToken)
	case config.StdlibFunction:
		p.checkStdlibArguments(fn, args, pos)
		return p.registry.Get(fn.ReturnType)
	default:
		panic("internal compiler error: typing pass: function table entry of unexpected type")
	}
}

func (p *Pass) checkCallArguments(params []ast.Argument, args []ast.Expression, pos token.Position) {
	for _, a := range args {
		p.typeExpr(a)
	}
	if len(args) != len(params) {
		p.error(diagnostics.ErrArityMismatch, pos, fmt.Sprintf("expected %d argument(s), found %d", len(params), len(args)))
		return
	}
	for i, a := range args {
		paramType := typeOf(params[i].TypeToken)
		argType := a.Type()
		if paramType == nil || argType == nil {
			continue
		}
		if _, ok := checkTypes(argType, paramType); !ok {
			p.error(diagnostics.ErrArgumentType, a.Pos(), fmt.Sprintf("argument %d: expected '%s', found '%s'", i+1, paramType.Keyword, argType.Keyword))
			continue
		}
		p.rangeCheck(paramType, a, a.Pos())
	}
}

func (p *Pass) checkStdlibArguments(fn config.StdlibFunction, args []ast.Expression, pos token.Position) {
	for _, a := range args {
		p.typeExpr(a)
	}
	if len(args) != len(fn.ArgTypes) {
		p.error(diagnostics.ErrArityMismatch, pos, fmt.Sprintf("expected %d argument(s), found %d", len(fn.ArgTypes), len(args)))
		return
	}
	for i, a := range args {
		paramType := p.registry.Get(fn.ArgTypes[i])
		argType := a.Type()
		if paramType == nil || argType == nil {
			continue
		}
		if _, ok := checkTypes(argType, paramType); !ok {
			p.error(diagnostics.ErrArgumentType, a.Pos(), fmt.Sprintf("argument %d: expected '%s', found '%s'", i+1, paramType.Keyword, argType.Keyword))
			continue
		}
		p.rangeCheck(paramType, a, a.Pos())
	}
}

// freeCallExpr types a call whose callee is looked up in the ambient
// function scope (a free function call, or a stdlib call, never a member
// dispatch: method calls are always the tail of a `.`-chain and are typed
// by memberCall instead).
func (p *Pass) freeCallExpr(n *ast.CallExpression) {
	fnEntry, ok := p.wrapper.Scope().GetFunction(n.Callee.Ident.IdentifierValue())
	if !ok {
		p.error(diagnostics.ErrNotCallable, n.Pos(), fmt.Sprintf("unknown function '%s'", n.Callee.Ident.IdentifierValue()))
		for _, a := range n.Arguments {
			p.typeExpr(a)
		}
		n.SetType(p.registry.Get("base"))
		return
	}
	n.SetType(p.resolveFunctionCall(fnEntry, n.Arguments, n.Pos()))
}

// memberCall implements the call-dispatch half of spec.md §4.D rule 9/10:
// a call appearing as the tail of a `.`-chain is resolved against the
// receiver's own member table rather than the ambient scope.
func (p *Pass) memberCall(n *ast.CallExpression, receiver *types.Type) {
	name := n.Callee.Ident.IdentifierValue()
	n.OwningClass = receiver

	switch receiver.Kind {
	case types.KindList:
		retKeyword, ok := types.CallableFunctions()[name]
		if !ok {
			p.error(diagnostics.ErrNotCallable, n.Pos(), fmt.Sprintf("'%s' is not a callable list method", name))
			for _, a := range n.Arguments {
				p.typeExpr(a)
			}
			n.SetType(p.registry.Get("base"))
			return
		}
		for _, a := range n.Arguments {
			p.typeExpr(a)
		}
		n.SetType(p.registry.Get(retKeyword))
	case types.KindClass:
		classWrapper, ok := p.classScopes[receiver.Keyword]
		if !ok {
			panic("internal compiler error: typing pass: class scope not recorded for " + receiver.Keyword)
		}
		fnEntry, ok := classWrapper.Scope().GetFunction(name)
		if !ok {
			p.error(diagnostics.ErrNotCallable, n.Pos(), fmt.Sprintf("'%s' of a '%s' is not callable", name, receiver.Keyword))
			for _, a := range n.Arguments {
				p.typeExpr(a)
			}
			n.SetType(p.registry.Get("base"))
			return
		}
		n.SetType(p.resolveFunctionCall(fnEntry, n.Arguments, n.Pos()))
	default:
		p.error(diagnostics.ErrNotCallable, n.Pos(), fmt.Sprintf("a member of a '%s' is not callable", receiver.Keyword))
		for _, a := range n.Arguments {
			p.typeExpr(a)
		}
		n.SetType(p.registry.Get("base"))
	}
}
