package ast

import (
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

// UnaryKind discriminates the unary expression variants (spec.md §3).
type UnaryKind int

const (
	Grouping UnaryKind = iota
	LogicalNot
	Negate
	PreIncrement
	PreDecrement
	PostIncrement
	PostDecrement
)

// BinaryExpression is `left op right` for any of the logical, comparison,
// additive, or multiplicative operators (spec.md §4.B grammar).
type BinaryExpression struct {
	exprBase
	Left     Expression
	Operator token.Token
	Right    Expression
}

// CallExpression is a call `callee(args...)`, either a free function call
// or (when OwningClass/receiver context applies) a method/list-method
// dispatch resolved by the typing pass.
type CallExpression struct {
	exprBase
	Callee       *IdentifierExpression
	OwningClass  *types.Type // set when the call is a method dispatch
	Arguments    []Expression
	CallConsumed bool
}

// IdentifierExpression is a single identifier, optionally continuing into
// a `.member` chain via Inner. ClassType/ListType are filled in by the
// typing pass when the identifier's resolved type is a class or list
// (spec.md §4.D rule 10), and Ref carries the resolved type plus
// is_reference flag used by the emitter to choose `->` vs `.`.
type IdentifierExpression struct {
	exprBase
	Ident     token.Token
	Inner     Expression // nil if this is the chain's tail
	ClassType *types.Type
	ListType  *types.Type
	Ref       types.Ref
}

// StringElement is one piece of an interpolated string literal: either a
// raw run of characters (Token set) or an embedded expression (Expr set,
// possibly a *StringEqualExpression).
type StringElement struct {
	Token *token.Token
	Expr  Expression
}

// StringExpression is the sequence of literal and interpolated pieces
// between STRING_START and STRING_END. LineEnd is filled in by the
// PrintStatement that owns it (spec.md §3).
type StringExpression struct {
	exprBase
	Elements []StringElement
	LineEnd  string
}

// StringEqualExpression is the `{expr=}` interpolation form: it prints
// both Inner's literal source text and its computed value.
type StringEqualExpression struct {
	exprBase
	Inner      Expression
	EqualToken token.Token
	Filename   string
	SourceText string // the literal source text of Inner, captured at parse time
}

// ThisExpression is `this.member...`; Inner is the IdentifierExpression
// chain rooted at member.
type ThisExpression struct {
	exprBase
	Inner Expression
}

// TokenExpression is a single primitive token used directly as an
// expression: a literal (NUMBER/CHARACTER/STRING_CHARS), TRUE/FALSE/NULL,
// or a bare identifier in a position that cannot start a `.`/`(` chain
// (the operand of a prefix ++/--, spec.md §4.B grammar).
type TokenExpression struct {
	exprBase
	Token token.Token
}

// TypeCastExpression is `(Type) primary`.
type TypeCastExpression struct {
	exprBase
	TargetTypeToken token.Token
	Inner           Expression
}

// UnaryExpression covers grouping, logical-not, unary-minus, and
// pre/post increment/decrement.
type UnaryExpression struct {
	exprBase
	Kind  UnaryKind
	Inner Expression
}
