package backend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hetorus/tapl/internal/ast"
	"github.com/hetorus/tapl/internal/types"
)

// lowering carries the running output buffers for one program's emission.
// Grounded on funvibe-funxy/internal/backend/treewalk.go's single-pass
// tree walk over the AST, but producing C source text instead of
// evaluator.Object results.
type lowering struct {
	registry   *types.Registry
	filename   string
	sourceCode string
	headerDir  string

	classes   strings.Builder
	functions strings.Builder
	main      strings.Builder
}

func newLowering(registry *types.Registry, filename, sourceCode, headerDir string) *lowering {
	return &lowering{registry: registry, filename: filename, sourceCode: sourceCode, headerDir: headerDir}
}

func cTypeName(t *types.Type) string {
	if t == nil || t.Kind == types.KindVoid {
		return "void"
	}
	if t.Kind == types.KindList {
		return t.UnderlyingType
	}
	return t.Keyword
}

// isObjectType reports whether t is passed by address at call sites and by
// pointer as a function parameter (spec.md §4.E: method receivers always
// are; this generalises the same rule to every class/list-typed argument
// rather than treating `this` as a special case).
func isObjectType(t *types.Type) bool {
	return t != nil && (t.Kind == types.KindClass || t.Kind == types.KindList)
}

// topLevel dispatches one top-level statement into the classes.h,
// functions.h, or main() buffer (spec.md §4.E item 4).
func (lw *lowering) topLevel(s ast.Statement) {
	switch n := s.(type) {
	case *ast.ClassStatement:
		lw.classStatement(n)
	case *ast.FunctionStatement:
		lw.functions.WriteString(lw.functionDecl(n) + ";\n")
		lw.functions.WriteString(lw.functionDef(n) + "\n\n")
	default:
		lw.writeStatement(&lw.main, s, 1)
	}
}

func (lw *lowering) classesHeader() string {
	out := pragmaOnce + fmt.Sprintf("#include <%s/types.h>\n#include <%s/list.h>\n\n", filepath.Base(lw.headerBase()), filepath.Base(lw.headerBase()))
	out += lw.classes.String()
	return out
}

func (lw *lowering) functionsHeader() string {
	out := pragmaOnce + fmt.Sprintf("#include <%s/classes.h>\n\n", filepath.Base(lw.headerBase()))
	out += lw.functions.String()
	return out
}

// headerBase exists only so classesHeader/functionsHeader can spell the
// include path the same way Emitter does, without Emitter itself needing
// to reach back into lowering for it.
func (lw *lowering) headerBase() string { return lw.headerDir }

func (lw *lowering) mainFile() string {
	headerDir := lw.headerDir
	var out strings.Builder
	out.WriteString(fmt.Sprintf("#include <%s/utility_functions.h>\n", filepath.Base(headerDir)))
	out.WriteString(fmt.Sprintf("#include <%s/types.h>\n", filepath.Base(headerDir)))
	out.WriteString(fmt.Sprintf("#include <%s/list.h>\n", filepath.Base(headerDir)))
	out.WriteString(fmt.Sprintf("#include <%s/classes.h>\n", filepath.Base(headerDir)))
	out.WriteString(fmt.Sprintf("#include <%s/functions.h>\n\n", filepath.Base(headerDir)))
	out.WriteString("int main(int argc, char** argv) {\n")
	out.WriteString(lw.main.String())
	out.WriteString("    return 0;\n}\n")
	return out.String()
}

// classStatement implements spec.md §4.E item 4's class lowering: a
// typedef'd struct of every member variable/list, followed by a generated
// constructor and destructor (each default-empty when the class does not
// declare it), followed by every method.
func (lw *lowering) classStatement(n *ast.ClassStatement) {
	name := n.ClassType.Keyword
	lw.classes.WriteString(fmt.Sprintf("typedef struct %s_struct %s;\n", name, name))
	lw.classes.WriteString(fmt.Sprintf("struct %s_struct {\n", name))
	for _, v := range n.Variables {
		lw.classes.WriteString(fmt.Sprintf("    %s %s;\n", cTypeName(v.Ref.Type), v.Name.IdentifierValue()))
	}
	for _, l := range n.Lists {
		lw.classes.WriteString(fmt.Sprintf("    %s %s;\n", cTypeName(l.Ref.Type), l.Name.IdentifierValue()))
	}
	lw.classes.WriteString("};\n\n")

	lw.classes.WriteString(lw.lifecycleDef(name, "constructor", n.Constructor) + "\n\n")
	lw.classes.WriteString(lw.lifecycleDef(name, "destructor", n.Destructor) + "\n\n")

	for _, fn := range n.Functions {
		lw.classes.WriteString(lw.methodDef(name, fn) + "\n\n")
	}
}

func (lw *lowering) lifecycleDef(className, which string, n *ast.LifecycleStatement) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("void %s_%s(%s* this", className, which, className))
	if n != nil {
		for _, arg := range n.Arguments {
			b.WriteString(", " + lw.paramDecl(arg))
		}
	}
	b.WriteString(") {\n")
	if n != nil {
		for _, stmt := range n.Body {
			lw.writeStatement(&b, stmt, 1)
		}
	}
	b.WriteString("}")
	return b.String()
}

func (lw *lowering) methodDef(className string, fn *ast.FunctionStatement) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s_%s(%s* this", cTypeName(fn.ReturnRef.Type), className, fn.Name.IdentifierValue(), className))
	for _, arg := range fn.Arguments {
		b.WriteString(", " + lw.paramDecl(arg))
	}
	b.WriteString(") {\n")
	for _, stmt := range fn.Body {
		lw.writeStatement(&b, stmt, 1)
	}
	b.WriteString("}")
	return b.String()
}

func (lw *lowering) paramDecl(arg ast.Argument) string {
	name := arg.Name.IdentifierValue()
	if isObjectType(arg.Ref.Type) {
		return cTypeName(arg.Ref.Type) + "* " + name
	}
	return cTypeName(arg.Ref.Type) + " " + name
}

func (lw *lowering) functionDecl(fn *ast.FunctionStatement) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s(", cTypeName(fn.ReturnRef.Type), fn.Name.IdentifierValue()))
	for i, arg := range fn.Arguments {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(lw.paramDecl(arg))
	}
	b.WriteString(")")
	return b.String()
}

func (lw *lowering) functionDef(fn *ast.FunctionStatement) string {
	var b strings.Builder
	b.WriteString(lw.functionDecl(fn))
	b.WriteString(" {\n")
	for _, stmt := range fn.Body {
		lw.writeStatement(&b, stmt, 1)
	}
	b.WriteString("}")
	return b.String()
}
