// Package scope implements the lexical scope machinery shared by the
// scoping pass and the typing pass (spec.md §3 "Lexical scope", §4.C,
// §4.D): a chain of Scopes linked to their parent, wrapped by a Wrapper
// that tracks the currently innermost one, plus a one-deep Stash used to
// swap the active wrapper aside when entering a class body.
package scope

import "github.com/hetorus/tapl/internal/types"

// FunctionEntry is the scope's reference to a function declaration: a
// reference to the AST node owned by the AST root (the scope does not
// own it), kept so call sites can re-discover the declaration for
// argument checking. It is declared as `any` here to avoid an import
// cycle with the ast package (which itself does not need to know about
// scopes); the typing package asserts it back to *ast.FunctionStatement or
// config.StdlibFunction.
type FunctionEntry any

// Scope owns one lexical level's identifier and function tables, plus a
// back-pointer to its parent. The global scope has a nil parent.
type Scope struct {
	identifiers map[string]types.Ref
	functions   map[string]FunctionEntry
	parent      *Scope
}

func newScope(parent *Scope) *Scope {
	return &Scope{
		identifiers: make(map[string]types.Ref),
		functions:   make(map[string]FunctionEntry),
		parent:      parent,
	}
}

// Parent returns the enclosing scope, or nil if s is the global scope.
func (s *Scope) Parent() *Scope { return s.parent }

// HasIdentifierLocal reports whether name is declared directly in s
// (shadowing outer scopes is allowed; only the innermost scope's own
// table is checked here, per spec.md §4.C).
func (s *Scope) HasIdentifierLocal(name string) bool {
	_, ok := s.identifiers[name]
	return ok
}

// AddIdentifier declares name in s with the given type reference.
func (s *Scope) AddIdentifier(name string, ref types.Ref) {
	s.identifiers[name] = ref
}

// GetIdentifier looks up name in s and its ancestors, outward.
func (s *Scope) GetIdentifier(name string) (types.Ref, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if ref, ok := cur.identifiers[name]; ok {
			return ref, true
		}
	}
	return types.Ref{}, false
}

// Identifiers returns the names declared directly in s (used for debug
// tracing when a scope is torn down).
func (s *Scope) Identifiers() []string {
	names := make([]string, 0, len(s.identifiers))
	for name := range s.identifiers {
		names = append(names, name)
	}
	return names
}

// HasFunctionLocal reports whether name is declared directly in s.
func (s *Scope) HasFunctionLocal(name string) bool {
	_, ok := s.functions[name]
	return ok
}

// AddFunction declares a function by name in s.
func (s *Scope) AddFunction(name string, fn FunctionEntry) {
	s.functions[name] = fn
}

// GetFunction looks up a function by name in s and its ancestors.
func (s *Scope) GetFunction(name string) (FunctionEntry, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if fn, ok := cur.functions[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Wrapper owns the chain of scopes currently active in one pass, tracking
// the innermost scope and allowing descent/ascent through block
// boundaries.
type Wrapper struct {
	current *Scope
}

// NewWrapper creates a Wrapper holding a single, empty global scope.
func NewWrapper() *Wrapper {
	return &Wrapper{current: newScope(nil)}
}

// Scope returns the currently innermost scope.
func (w *Wrapper) Scope() *Scope { return w.current }

// AtGlobalScope reports whether no block scope is currently pushed.
func (w *Wrapper) AtGlobalScope() bool { return w.current.parent == nil }

// AddScope pushes a new inner scope whose parent is the current one.
func (w *Wrapper) AddScope() { w.current = newScope(w.current) }

// RemoveScope pops back to the parent scope. It panics if called at the
// global scope: that is always an internal compiler bug, never a user
// error (spec.md §7).
func (w *Wrapper) RemoveScope() {
	if w.current.parent == nil {
		panic("internal compiler error: attempted to remove the global scope")
	}
	w.current = w.current.parent
}

// EnterScope pushes a new scope and returns a function that pops it. The
// returned function is meant to be deferred immediately, so the scope is
// left on every exit path including a panic unwind (spec.md §9 "Scoped
// resources" design note).
func (w *Wrapper) EnterScope() func() {
	w.AddScope()
	return w.RemoveScope
}

// Stash holds at most one Wrapper aside, used when a class body needs a
// scope wrapper independent of the surrounding one (spec.md §3).
type Stash struct {
	wrapper *Wrapper
}

// Empty reports whether the stash currently holds nothing.
func (s *Stash) Empty() bool { return s.wrapper == nil }

// Push stashes w aside. It panics if the stash is already occupied.
func (s *Stash) Push(w *Wrapper) {
	if s.wrapper != nil {
		panic("internal compiler error: scope stash already occupied")
	}
	s.wrapper = w
}

// Pop retrieves and clears the stashed wrapper. It panics if empty.
func (s *Stash) Pop() *Wrapper {
	if s.wrapper == nil {
		panic("internal compiler error: scope stash is empty")
	}
	w := s.wrapper
	s.wrapper = nil
	return w
}
