package ast

import (
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

// Argument is one parameter of a function/lifecycle declaration: the type
// token as written, the resolved type (with is_reference set true by the
// typing pass, per spec.md §4.D rule 13), and the parameter name.
type Argument struct {
	TypeToken token.Token
	Ref       types.Ref
	Name      token.Token
}

// LifecycleKind distinguishes a class constructor from its destructor.
type LifecycleKind int

const (
	Constructor LifecycleKind = iota
	Destructor
)

// AssignmentStatement is `target op value`, where target is a
// ThisExpression or IdentifierExpression and op is one of
// = += -= *= /=.
type AssignmentStatement struct {
	stmtBase
	Target   Expression
	Operator token.Token
	Value    Expression
}

// BreakStatement is a bare `break`.
type BreakStatement struct {
	stmtBase
}

// BreakallStatement is `breakall`; Label is filled in by the parser with
// the enclosing outermost loop's generated label (spec.md §4.B).
type BreakallStatement struct {
	stmtBase
	Label string
}

// ClassStatement is a `class Name:` declaration.
type ClassStatement struct {
	stmtBase
	ClassType   *types.Type
	Name        token.Token
	Variables   []*VarDeclStatement
	Lists       []*ListStatement
	Functions   []*FunctionStatement
	Constructor *LifecycleStatement
	Destructor  *LifecycleStatement
}

// ContinueStatement is a bare `continue`.
type ContinueStatement struct {
	stmtBase
}

// ExpressionStatement is an expression used for its side effect.
type ExpressionStatement struct {
	stmtBase
	Expression Expression
}

// ForLoopStatement models both `for(init;check;loop):` and `while cond:`
// (the latter desugars to an empty Init/Loop, spec.md §4.B rule 6).
type ForLoopStatement struct {
	stmtBase
	Init  Statement  // nil if omitted
	Check Expression // nil if omitted
	Loop  Statement  // nil if omitted
	Body  []Statement
	// BreakallLabel is non-empty only on the outermost loop of a nest; it
	// is the label every breakall inside the nest gotos to (spec.md §4.B,
	// §8 invariant 8).
	BreakallLabel string
}

// FunctionStatement is a top-level or class-method function declaration.
type FunctionStatement struct {
	stmtBase
	ReturnTypeToken token.Token
	ReturnRef       types.Ref
	Name            token.Token
	OwningClass     *types.Type // nil for free functions
	Arguments       []Argument
	Body            []Statement
}

// ElseIfBlock is one `else if cond:` arm of an IfStatement.
type ElseIfBlock struct {
	Condition Expression
	Body      []Statement
}

// IfStatement is `if cond: ... (else if cond: ...)* (else: ...)?`.
type IfStatement struct {
	stmtBase
	Condition    Expression
	Body         []Statement
	ElseIf       []ElseIfBlock
	ElseBody     []Statement // nil if no else
	HasElse      bool
}

// LifecycleStatement is a class constructor or destructor.
type LifecycleStatement struct {
	stmtBase
	Kind        LifecycleKind
	OwningClass *types.Type
	Arguments   []Argument
	Body        []Statement
}

// ListStatement is a `list[T] name` declaration.
type ListStatement struct {
	stmtBase
	ListTypeToken token.Token
	Ref           types.Ref
	Name          token.Token
}

// PrintStatement is `print(...)` or `println(...)`.
type PrintStatement struct {
	stmtBase
	Value   Expression
	Newline bool
}

// ReturnStatement is `return` or `return value`.
type ReturnStatement struct {
	stmtBase
	Value Expression // nil if bare return
}

// VarDeclStatement is `Type name` or `Type name = value`.
type VarDeclStatement struct {
	stmtBase
	TypeToken    token.Token
	Ref          types.Ref
	Name         token.Token
	InitialValue Expression // nil if omitted
}
