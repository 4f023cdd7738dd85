package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hetorus/tapl/internal/diagnostics"
	"github.com/hetorus/tapl/internal/pipeline"
	"github.com/hetorus/tapl/internal/token"
)

type recordingStage struct {
	name string
	ran  *[]string
}

func (s recordingStage) Process(ctx *pipeline.Context) *pipeline.Context {
	*s.ran = append(*s.ran, s.name)
	return ctx
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	var ran []string
	p := pipeline.New(
		recordingStage{name: "first", ran: &ran},
		recordingStage{name: "second", ran: &ran},
		recordingStage{name: "third", ran: &ran},
	)

	p.Run(&pipeline.Context{})

	assert.Equal(t, []string{"first", "second", "third"}, ran)
}

func TestAddErrorFillsInFileWhenUnset(t *testing.T) {
	ctx := &pipeline.Context{FilePath: "main.tapl"}
	err := diagnostics.NewError(diagnostics.ErrUnknownIdentifier, token.Token{}, "boom")

	ctx.AddError(err)

	assert.Len(t, ctx.Errors, 1)
	assert.Equal(t, "main.tapl", ctx.Errors[0].File)
}

func TestAddErrorDoesNotOverwriteAnExplicitFile(t *testing.T) {
	ctx := &pipeline.Context{FilePath: "main.tapl"}
	err := &diagnostics.DiagnosticError{Code: diagnostics.ErrTypeMismatch, File: "other.tapl"}

	ctx.AddError(err)

	assert.Equal(t, "other.tapl", ctx.Errors[0].File)
}
