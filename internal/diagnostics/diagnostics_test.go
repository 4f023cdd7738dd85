package diagnostics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/token"
)

func TestErrorFormatsFileLineColumnCodeAndMessage(t *testing.T) {
	tok := token.Token{Line: 3, Column: 7}
	err := diagnostics.NewError(diagnostics.ErrUnknownIdentifier, tok, "unknown identifier 'x'")
	err.File = "main.tapl"

	assert.Equal(t, "main.tapl:3:7: S001: unknown identifier 'x'", err.Error())
}

func TestErrorFallsBackToAngleInputWhenFileIsUnset(t *testing.T) {
	err := diagnostics.NewError(diagnostics.ErrTypeMismatch, token.Token{Line: 1, Column: 1}, "mismatch")
	assert.Contains(t, err.Error(), "<input>:1:1:")
}

func TestBagAddSetsFileOnlyWhenUnset(t *testing.T) {
	var bag diagnostics.Bag
	err := diagnostics.NewError(diagnostics.ErrArityMismatch, token.Token{}, "bad arity")
	bag.Add(err, "default.tapl")
	assert.Equal(t, "default.tapl", err.File)

	err2 := &diagnostics.DiagnosticError{Code: diagnostics.ErrArityMismatch, File: "explicit.tapl", Message: "bad arity"}
	bag.Add(err2, "default.tapl")
	assert.Equal(t, "explicit.tapl", err2.File, "Add must not overwrite a File already set on the error")
}

func TestBagHasErrorsReflectsAccumulatedCount(t *testing.T) {
	var bag diagnostics.Bag
	assert.False(t, bag.HasErrors())

	bag.Add(diagnostics.NewError(diagnostics.ErrNotCallable, token.Token{}, "not callable"), "f.tapl")
	assert.True(t, bag.HasErrors())
}
