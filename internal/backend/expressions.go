package backend

import (
	"fmt"
	"strings"

	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

// exprC lowers e to a single C expression (spec.md §4.E "Binary/unary/
// cast/grouping/token expressions lower to the obvious C forms"). Identifier
// chains and method calls get their own helpers below since they need the
// is_reference join rule and the method-dispatch renaming.
func (lw *lowering) exprC(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.TokenExpression:
		return lw.tokenExprC(n)
	case *ast.BinaryExpression:
		return fmt.Sprintf("(%s %s %s)", lw.exprC(n.Left), n.Operator.Lexeme, lw.exprC(n.Right))
	case *ast.UnaryExpression:
		return lw.unaryExprC(n)
	case *ast.TypeCastExpression:
		return fmt.Sprintf("(%s)(%s)", cTypeName(typeOfToken(n.TargetTypeToken)), lw.exprC(n.Inner))
	case *ast.StringExpression:
		return lw.stringLiteralC(n)
	case *ast.StringEqualExpression:
		// Only ever reached standalone if a `{expr=}` form is used outside a
		// string literal, which the grammar does not allow; fall back to the
		// inner value so a malformed tree still emits something.
		return lw.exprC(n.Inner)
	case *ast.IdentifierExpression:
		return lw.identifierExprC(n)
	case *ast.ThisExpression:
		return lw.thisExprC(n)
	case *ast.CallExpression:
		return lw.freeCallC(n)
	default:
		panic(fmt.Sprintf("internal compiler error: backend: unhandled expression type %T", e))
	}
}

func typeOfToken(tok token.Token) *types.Type {
	t, _ := tok.Value.(*types.Type)
	return t
}

// tokenExprC lowers a single primitive token used as an expression. `null`
// lowers to the integer literal 0 (spec.md §4.E, §9 open question (d)).
func (lw *lowering) tokenExprC(n *ast.TokenExpression) string {
	switch n.Token.Kind {
	case token.NUMBER:
		return n.Token.Lexeme
	case token.CHARACTER:
		return n.Token.Lexeme
	case token.TRUE:
		return "true"
	case token.FALSE:
		return "false"
	case token.NULL:
		return "0"
	case token.IDENTIFIER:
		return n.Token.IdentifierValue()
	default:
		panic(fmt.Sprintf("internal compiler error: backend: unexpected token kind in TokenExpression: %s", n.Token.Kind))
	}
}

// unaryExprC handles grouping, logical-not, unary-minus, and a *bare*
// increment/decrement (one whose operand is a single identifier, not a
// `.`-chain member — chain members are lowered by chainIncDecC instead, since
// they need the receiver's is_reference join).
func (lw *lowering) unaryExprC(n *ast.UnaryExpression) string {
	switch n.Kind {
	case ast.Grouping:
		return "(" + lw.exprC(n.Inner) + ")"
	case ast.LogicalNot:
		return "(!" + lw.exprC(n.Inner) + ")"
	case ast.Negate:
		return "(-" + lw.exprC(n.Inner) + ")"
	case ast.PreIncrement, ast.PreDecrement, ast.PostIncrement, ast.PostDecrement:
		return incDecC(bareIdentifierName(n.Inner), n.Kind)
	default:
		panic(fmt.Sprintf("internal compiler error: backend: unhandled unary kind %d", n.Kind))
	}
}

// bareIdentifierName extracts the plain identifier name from the operand of
// a prefix (TokenExpression) or postfix (IdentifierExpression with no Inner)
// increment/decrement, per spec.md §4.B's grammar (both forms only ever
// apply directly to a single identifier, never a `.`-chain tail — a chain
// member's ++/-- is parsed as the chain's Inner instead, see chainIncDecC).
func bareIdentifierName(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.TokenExpression:
		return n.Token.IdentifierValue()
	case *ast.IdentifierExpression:
		return n.Ident.IdentifierValue()
	default:
		panic(fmt.Sprintf("internal compiler error: backend: unexpected ++/-- operand %T", e))
	}
}

func incDecC(name string, kind ast.UnaryKind) string {
	switch kind {
	case ast.PreIncrement:
		return "(++" + name + ")"
	case ast.PreDecrement:
		return "(--" + name + ")"
	case ast.PostIncrement:
		return "(" + name + ")++"
	case ast.PostDecrement:
		return "(" + name + ")--"
	default:
		panic(fmt.Sprintf("internal compiler error: backend: unhandled inc/dec kind %d", kind))
	}
}

// identifierExprC lowers a root identifier, continuing into its `.`-chain
// if it has one.
func (lw *lowering) identifierExprC(n *ast.IdentifierExpression) string {
	root := n.Ident.IdentifierValue()
	if n.Inner == nil {
		return root
	}
	return lw.chainTailC(root, n.Ref, n.Inner)
}

// thisExprC lowers `this.member...`; `this` is always a pointer (spec.md
// §4.E "This-prefixed member access lowers as this->field").
func (lw *lowering) thisExprC(n *ast.ThisExpression) string {
	return lw.chainTailC("this", types.Ref{IsReference: true}, n.Inner)
}

// chainTailC lowers one more link of a `.`-chain whose already-lowered
// receiver is receiverText, joining with `->` if receiverRef.IsReference
// (spec.md §4.E "the join between an identifier and its inner expression is
// -> if the identifier's type is_reference, else .").
func (lw *lowering) chainTailC(receiverText string, receiverRef types.Ref, tail ast.Expression) string {
	switch t := tail.(type) {
	case *ast.IdentifierExpression:
		memberText := receiverText + joinOperator(receiverRef) + t.Ident.IdentifierValue()
		if t.Inner == nil {
			return memberText
		}
		return lw.chainTailC(memberText, t.Ref, t.Inner)
	case *ast.CallExpression:
		return lw.methodCallC(receiverText, receiverRef, t)
	case *ast.UnaryExpression:
		return lw.chainIncDecC(receiverText, receiverRef, t)
	default:
		panic(fmt.Sprintf("internal compiler error: backend: unexpected chain continuation %T", tail))
	}
}

func joinOperator(ref types.Ref) string {
	if ref.IsReference {
		return "->"
	}
	return "."
}

// chainIncDecC lowers `receiver.member++` and its sibling forms. The
// member name is always a plain field (the grammar permits ++/-- only
// directly on an identifier, never after a call), so the fully-joined field
// expression is itself the resolved location spec.md §9 open question (c)
// asks for — no temporary is needed since nothing between the chain's root
// and the incremented field can have a side effect.
func (lw *lowering) chainIncDecC(receiverText string, receiverRef types.Ref, u *ast.UnaryExpression) string {
	member, ok := u.Inner.(*ast.IdentifierExpression)
	if !ok {
		panic(fmt.Sprintf("internal compiler error: backend: unexpected ++/-- chain operand %T", u.Inner))
	}
	fieldExpr := receiverText + joinOperator(receiverRef) + member.Ident.IdentifierValue()
	return incDecC(fieldExpr, u.Kind)
}

// methodCallC lowers `receiver.method(args)` to the flattened C call spec.md
// §4.E describes: `ClassName_method(&receiver, args)` for a value receiver,
// `ClassName_method(receiver, args)` for a reference one, and the
// `list_<inner>_method` form for list methods.
func (lw *lowering) methodCallC(receiverText string, receiverRef types.Ref, call *ast.CallExpression) string {
	recvArg := receiverText
	if !receiverRef.IsReference {
		recvArg = "&" + receiverText
	}
	args := make([]string, 0, len(call.Arguments)+1)
	args = append(args, recvArg)
	for _, a := range call.Arguments {
		args = append(args, lw.exprC(a))
	}

	var fnName string
	switch {
	case call.OwningClass == nil:
		panic("internal compiler error: backend: method call lowered with no resolved receiver type")
	case call.OwningClass.Kind == types.KindList:
		fnName = fmt.Sprintf("list_%s_%s", call.OwningClass.Inner.Keyword, call.Callee.Ident.IdentifierValue())
	default:
		fnName = fmt.Sprintf("%s_%s", call.OwningClass.Keyword, call.Callee.Ident.IdentifierValue())
	}
	return fnName + "(" + strings.Join(args, ", ") + ")"
}

// freeCallC lowers a plain function call (not a `.`-chain tail): `f(args)`.
func (lw *lowering) freeCallC(n *ast.CallExpression) string {
	args := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		args = append(args, lw.exprC(a))
	}
	return n.Callee.Ident.IdentifierValue() + "(" + strings.Join(args, ", ") + ")"
}

// stringLiteralC lowers a StringExpression used outside of a print
// statement to a plain quoted C string. Interpolation (`{expr}`/`{expr=}`)
// only has defined lowering semantics inside print/println (spec.md §4.E);
// a string literal used elsewhere (e.g. a filename argument to
// read_file/write_file) is never written with interpolation in practice, so
// only the literal text runs are emitted here.
func (lw *lowering) stringLiteralC(n *ast.StringExpression) string {
	var b strings.Builder
	b.WriteString(`"`)
	for _, el := range n.Elements {
		if el.Token != nil {
			b.WriteString(escapeCString(el.Token.IdentifierValue()))
		}
	}
	b.WriteString(`"`)
	return b.String()
}

// escapeCString escapes s for inclusion inside a C string literal that is
// also a printf format string: backslash and double-quote are escaped for
// C, percent is doubled so literal text is never misread as a conversion
// specifier.
func escapeCString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '%':
			b.WriteString("%%")
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func quoteCString(s string) string { return `"` + escapeCString(s) + `"` }

// formatSpecifier returns the printf conversion for a value of type t
// (spec.md §4.E: "%c, %d/%u/%f with l prefix for >32-bit numerics").
func formatSpecifier(t *types.Type) string {
	if t == nil {
		return "%d"
	}
	switch t.Kind {
	case types.KindCharacter:
		return "%c"
	case types.KindString:
		return "%s"
	case types.KindNumeric:
		wide := t.NumBits > 32
		switch t.NumericKind {
		case types.Unsigned:
			if wide {
				return "%lu"
			}
			return "%u"
		case types.FloatingPoint:
			if wide {
				return "%lf"
			}
			return "%f"
		default: // Signed
			if wide {
				return "%ld"
			}
			return "%d"
		}
	default:
		return "%d"
	}
}
