// Package ast defines the typed abstract syntax tree built by the parser
// (spec.md §3 "AST nodes") and walked by the two semantic passes and the
// C emitter.
//
// Node dispatch in each pass is a plain Go type switch over the sum types
// below rather than a visitor/Accept double-dispatch: spec.md §9 calls
// this out explicitly ("Deep inheritance / visitor pattern... A
// tagged-variant dispatch with exhaustiveness-checked matching replaces
// it"), and a closed interface plus type switch gives the same
// exhaustiveness property Go can check (a missing case is a silent bug
// only if the default case doesn't panic, so every pass's default case
// panics with "internal compiler error").
package ast

import (
	"github.com/hetorus/tapl/internal/token"
	"github.com/hetorus/tapl/internal/types"
)

// Node is the common interface of every AST node: it can report the
// source span it covers.
type Node interface {
	Pos() token.Position
}

// Statement is a Node that appears in a statement list.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that can be typed. Typ starts nil (the "unknown"
// sentinel of spec.md's "Expression type slot") and is filled in by the
// typing pass; after a successful typing pass no reachable expression may
// still report Typ() == nil (spec.md §8 invariant 1).
type Expression interface {
	Node
	expressionNode()
	Type() *types.Type
	SetType(*types.Type)
}

// exprBase is embedded by every Expression implementation to provide the
// common source-location and type-slot machinery.
type exprBase struct {
	Loc token.Position
	Typ *types.Type
}

func (e *exprBase) Pos() token.Position   { return e.Loc }
func (e *exprBase) Type() *types.Type     { return e.Typ }
func (e *exprBase) SetType(t *types.Type) { e.Typ = t }
func (*exprBase) expressionNode()         {}

// stmtBase is embedded by every Statement implementation.
type stmtBase struct {
	Loc token.Position
}

func (s *stmtBase) Pos() token.Position { return s.Loc }
func (*stmtBase) statementNode()        {}

// Program is the root of every tree this parser produces: the ordered
// top-level statement list of a single source file (spec.md §1's
// "one source file produces one C program").
type Program struct {
	Filename   string
	Statements []Statement
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) == 0 {
		return token.Position{}
	}
	pos := p.Statements[0].Pos()
	for _, s := range p.Statements[1:] {
		pos = pos.Cover(s.Pos())
	}
	return pos
}
