package typing

import (
	"fmt"

	"github.com/hetorus/tapl/internal/ast"
)

// VerifyTypes re-walks program asserting that every expression reachable
// from it carries a non-nil type (spec.md §8 invariant 1). It is meant to
// run immediately after Run reports zero diagnostics, as the typing pass's
// own final sanity sweep rather than a second independent type check: a
// violation here means this compiler has a bug, not that the user's
// program is ill-typed, so it returns a plain error rather than a
// diagnostics.DiagnosticError.
func VerifyTypes(program *ast.Program) error {
	for _, stmt := range program.Statements {
		if err := verifyStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func verifyStatements(stmts []ast.Statement) error {
	for _, s := range stmts {
		if err := verifyStatement(s); err != nil {
			return err
		}
	}
	return nil
}

func verifyStatement(s ast.Statement) error {
	switch n := s.(type) {
	case *ast.VarDeclStatement:
		return verifyExpr(n.InitialValue)
	case *ast.ListStatement:
		return nil
	case *ast.FunctionStatement:
		return verifyStatements(n.Body)
	case *ast.LifecycleStatement:
		return verifyStatements(n.Body)
	case *ast.ClassStatement:
		for _, v := range n.Variables {
			if err := verifyStatement(v); err != nil {
				return err
			}
		}
		if n.Constructor != nil {
			if err := verifyStatement(n.Constructor); err != nil {
				return err
			}
		}
		if n.Destructor != nil {
			if err := verifyStatement(n.Destructor); err != nil {
				return err
			}
		}
		for _, fn := range n.Functions {
			if err := verifyStatement(fn); err != nil {
				return err
			}
		}
		return nil
	case *ast.IfStatement:
		if err := verifyExpr(n.Condition); err != nil {
			return err
		}
		if err := verifyStatements(n.Body); err != nil {
			return err
		}
		for _, ei := range n.ElseIf {
			if err := verifyExpr(ei.Condition); err != nil {
				return err
			}
			if err := verifyStatements(ei.Body); err != nil {
				return err
			}
		}
		return verifyStatements(n.ElseBody)
	case *ast.ForLoopStatement:
		if n.Init != nil {
			if err := verifyStatement(n.Init); err != nil {
				return err
			}
		}
		if err := verifyExpr(n.Check); err != nil {
			return err
		}
		if err := verifyStatements(n.Body); err != nil {
			return err
		}
		if n.Loop != nil {
			return verifyStatement(n.Loop)
		}
		return nil
	case *ast.AssignmentStatement:
		if err := verifyExpr(n.Target); err != nil {
			return err
		}
		return verifyExpr(n.Value)
	case *ast.ExpressionStatement:
		return verifyExpr(n.Expression)
	case *ast.PrintStatement:
		return verifyExpr(n.Value)
	case *ast.ReturnStatement:
		return verifyExpr(n.Value)
	case *ast.BreakStatement, *ast.ContinueStatement, *ast.BreakallStatement:
		return nil
	default:
		panic(fmt.Sprintf("internal compiler error: verify_types: unhandled statement type %T", s))
	}
}

func verifyExpr(e ast.Expression) error {
	if e == nil {
		return nil
	}
	if e.Type() == nil {
		return fmt.Errorf("internal compiler error: expression at offset %d has no resolved type", e.Pos().Start)
	}
	switch n := e.(type) {
	case *ast.BinaryExpression:
		if err := verifyExpr(n.Left); err != nil {
			return err
		}
		return verifyExpr(n.Right)
	case *ast.UnaryExpression:
		return verifyExpr(n.Inner)
	case *ast.TypeCastExpression:
		return verifyExpr(n.Inner)
	case *ast.StringExpression:
		for _, el := range n.Elements {
			if el.Expr != nil {
				if err := verifyExpr(el.Expr); err != nil {
					return err
				}
			}
		}
		return nil
	case *ast.StringEqualExpression:
		return verifyExpr(n.Inner)
	case *ast.ThisExpression:
		return verifyExpr(n.Inner)
	case *ast.IdentifierExpression:
		return verifyExpr(n.Inner)
	case *ast.CallExpression:
		for _, a := range n.Arguments {
			if err := verifyExpr(a); err != nil {
				return err
			}
		}
		return nil
	case *ast.TokenExpression:
		return nil
	default:
		panic(fmt.Sprintf("internal compiler error: verify_types: unhandled expression type %T", e))
	}
}
