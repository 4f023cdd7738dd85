package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hetorus/tapl/internal/scope"
	"github.com/hetorus/tapl/internal/types"
)

func TestWrapperStartsAtGlobalScope(t *testing.T) {
	w := scope.NewWrapper()
	assert.True(t, w.AtGlobalScope())
}

func TestAddIdentifierIsVisibleThroughGetIdentifierFromAnInnerScope(t *testing.T) {
	w := scope.NewWrapper()
	w.Scope().AddIdentifier("x", types.Ref{})
	w.AddScope()

	_, ok := w.Scope().GetIdentifier("x")
	assert.True(t, ok, "an outer identifier must be visible from a nested scope")
}

func TestHasIdentifierLocalDoesNotSeeOuterScopeBindings(t *testing.T) {
	w := scope.NewWrapper()
	w.Scope().AddIdentifier("x", types.Ref{})
	w.AddScope()

	assert.False(t, w.Scope().HasIdentifierLocal("x"), "HasIdentifierLocal must only check the innermost scope's own table")
}

func TestEnterScopeReturnsAFunctionThatRestoresTheOuterScope(t *testing.T) {
	w := scope.NewWrapper()
	outer := w.Scope()

	leave := w.EnterScope()
	assert.NotSame(t, outer, w.Scope())
	leave()
	assert.Same(t, outer, w.Scope())
}

func TestRemoveScopeAtGlobalScopePanics(t *testing.T) {
	w := scope.NewWrapper()
	assert.Panics(t, func() {
		w.RemoveScope()
	})
}

func TestGetFunctionLooksUpThroughAncestors(t *testing.T) {
	w := scope.NewWrapper()
	w.Scope().AddFunction("f", "entry")
	w.AddScope()

	fn, ok := w.Scope().GetFunction("f")
	assert.True(t, ok)
	assert.Equal(t, scope.FunctionEntry("entry"), fn)
}

func TestStashPushThenPopRoundTrips(t *testing.T) {
	var s scope.Stash
	assert.True(t, s.Empty())

	w := scope.NewWrapper()
	s.Push(w)
	assert.False(t, s.Empty())

	got := s.Pop()
	assert.Same(t, w, got)
	assert.True(t, s.Empty())
}

func TestStashPushWhileOccupiedPanics(t *testing.T) {
	var s scope.Stash
	s.Push(scope.NewWrapper())

	assert.Panics(t, func() {
		s.Push(scope.NewWrapper())
	})
}

func TestStashPopWhileEmptyPanics(t *testing.T) {
	var s scope.Stash
	assert.Panics(t, func() {
		s.Pop()
	})
}
