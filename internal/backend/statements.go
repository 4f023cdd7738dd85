package backend

import (
	"fmt"
	"strings"

	"github.com/hetorus/tapl/internal/ast"
)

func indentStr(indent int) string { return strings.Repeat("    ", indent) }

// writeStatement lowers one statement into buf at the given indent level
// (spec.md §4.E's per-statement rules).
func (lw *lowering) writeStatement(buf *strings.Builder, s ast.Statement, indent int) {
	pad := indentStr(indent)
	switch n := s.(type) {
	case *ast.VarDeclStatement:
		buf.WriteString(pad + lw.varDeclC(n) + ";\n")
	case *ast.ListStatement:
		name := n.Name.IdentifierValue()
		inner := n.Ref.Type.Inner.Keyword
		buf.WriteString(fmt.Sprintf("%slist_%s %s;\n", pad, inner, name))
		buf.WriteString(fmt.Sprintf("%slist_%s_constructor(&%s);\n", pad, inner, name))
	case *ast.AssignmentStatement:
		buf.WriteString(pad + lw.assignmentC(n) + ";\n")
	case *ast.ExpressionStatement:
		buf.WriteString(pad + lw.exprC(n.Expression) + ";\n")
	case *ast.IfStatement:
		lw.ifStatementC(buf, n, indent)
	case *ast.ForLoopStatement:
		lw.forLoopC(buf, n, indent)
	case *ast.BreakStatement:
		buf.WriteString(pad + "break;\n")
	case *ast.ContinueStatement:
		buf.WriteString(pad + "continue;\n")
	case *ast.BreakallStatement:
		buf.WriteString(pad + "goto " + n.Label + ";\n")
	case *ast.ReturnStatement:
		if n.Value == nil {
			buf.WriteString(pad + "return;\n")
		} else {
			buf.WriteString(pad + "return " + lw.exprC(n.Value) + ";\n")
		}
	case *ast.PrintStatement:
		lw.printStatementC(buf, n, indent)
	default:
		panic(fmt.Sprintf("internal compiler error: backend: unhandled statement type %T", s))
	}
}

func (lw *lowering) varDeclC(n *ast.VarDeclStatement) string {
	decl := fmt.Sprintf("%s %s", cTypeName(n.Ref.Type), n.Name.IdentifierValue())
	if n.InitialValue == nil {
		return decl
	}
	return decl + " = " + lw.exprC(n.InitialValue)
}

func (lw *lowering) assignmentC(n *ast.AssignmentStatement) string {
	return fmt.Sprintf("%s %s %s", lw.exprC(n.Target), n.Operator.Lexeme, lw.exprC(n.Value))
}

func (lw *lowering) ifStatementC(buf *strings.Builder, n *ast.IfStatement, indent int) {
	pad := indentStr(indent)
	buf.WriteString(pad + "if (" + lw.exprC(n.Condition) + ") {\n")
	for _, stmt := range n.Body {
		lw.writeStatement(buf, stmt, indent+1)
	}
	buf.WriteString(pad + "}")
	for _, ei := range n.ElseIf {
		buf.WriteString(" else if (" + lw.exprC(ei.Condition) + ") {\n")
		for _, stmt := range ei.Body {
			lw.writeStatement(buf, stmt, indent+1)
		}
		buf.WriteString(pad + "}")
	}
	if n.HasElse {
		buf.WriteString(" else {\n")
		for _, stmt := range n.ElseBody {
			lw.writeStatement(buf, stmt, indent+1)
		}
		buf.WriteString(pad + "}")
	}
	buf.WriteString("\n")
}

// forLoopC lowers both `for(init;check;loop):` and the `while cond:`
// desugaring (spec.md §4.B rule 6, both share ForLoopStatement). A
// nonempty BreakallLabel marks the outermost loop of a nest, after which
// a label target for every nested `breakall` is emitted (spec.md §4.E,
// §8 invariant 8).
func (lw *lowering) forLoopC(buf *strings.Builder, n *ast.ForLoopStatement, indent int) {
	pad := indentStr(indent)
	initText := ""
	if n.Init != nil {
		initText = lw.headerStmt(n.Init)
	}
	checkText := ""
	if n.Check != nil {
		checkText = lw.exprC(n.Check)
	}
	loopText := ""
	if n.Loop != nil {
		loopText = lw.headerStmt(n.Loop)
	}
	buf.WriteString(fmt.Sprintf("%sfor (%s; %s; %s) {\n", pad, initText, checkText, loopText))
	for _, stmt := range n.Body {
		lw.writeStatement(buf, stmt, indent+1)
	}
	buf.WriteString(pad + "}\n")
	if n.BreakallLabel != "" {
		buf.WriteString(pad + n.BreakallLabel + ":;\n")
	}
}

// headerStmt lowers a for-loop init/loop clause: the same statement forms
// as writeStatement handles but without a trailing semicolon, indent, or
// newline, since the caller joins all three clauses on one line.
func (lw *lowering) headerStmt(s ast.Statement) string {
	switch n := s.(type) {
	case *ast.VarDeclStatement:
		return lw.varDeclC(n)
	case *ast.AssignmentStatement:
		return lw.assignmentC(n)
	case *ast.ExpressionStatement:
		return lw.exprC(n.Expression)
	default:
		panic(fmt.Sprintf("internal compiler error: backend: unexpected for-loop header clause %T", s))
	}
}

// printStatementC lowers print/println to a single printf call (spec.md
// §4.E: "print/println interpolation lowers to one printf call"). A
// StringExpression's literal runs become format-string text, each
// embedded expression contributes a format specifier chosen by its
// resolved type plus a trailing printf argument, and `{expr=}` additionally
// prefixes the literal source text of expr as a quoted %s before its value.
// A non-string print argument (e.g. `print(x)`) is treated as a single
// implicit `{x}`.
func (lw *lowering) printStatementC(buf *strings.Builder, n *ast.PrintStatement, indent int) {
	pad := indentStr(indent)
	lineEnd := ""
	if n.Newline {
		lineEnd = "\\n"
	}

	str, ok := n.Value.(*ast.StringExpression)
	if !ok {
		format := formatSpecifier(n.Value.Type()) + lineEnd
		buf.WriteString(fmt.Sprintf("%sprintf(\"%s\", %s);\n", pad, format, lw.exprC(n.Value)))
		return
	}

	var format strings.Builder
	var args []string
	for _, el := range str.Elements {
		switch {
		case el.Token != nil:
			format.WriteString(escapeCString(el.Token.IdentifierValue()))
		default:
			switch expr := el.Expr.(type) {
			case *ast.StringEqualExpression:
				format.WriteString("%s" + formatSpecifier(expr.Inner.Type()))
				args = append(args, quoteCString(expr.SourceText), lw.exprC(expr.Inner))
			default:
				format.WriteString(formatSpecifier(expr.Type()))
				args = append(args, lw.exprC(expr))
			}
		}
	}
	format.WriteString(lineEnd)

	call := "printf(\"" + format.String() + "\""
	for _, a := range args {
		call += ", " + a
	}
	call += ");\n"
	buf.WriteString(pad + call)
}
