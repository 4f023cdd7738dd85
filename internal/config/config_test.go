package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetorus/tapl/internal/config"
)

func TestLoadBuildFallsBackToDefaultsWhenFileIsMissing(t *testing.T) {
	build, err := config.LoadBuild(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultBuild(), build)
}

func TestLoadBuildOverridesOnlyFieldsThePresentFileSets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tapl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("header_dir: custom_headers\n"), 0o644))

	build, err := config.LoadBuild(path)
	require.NoError(t, err)
	assert.Equal(t, "custom_headers", build.HeaderDir)
	assert.Equal(t, config.DefaultBuild().TemplatesDir, build.TemplatesDir)
	assert.Equal(t, config.DefaultBuild().MainFile, build.MainFile)
}

func TestLoadBuildMalformedYamlIsAnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tapl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("header_dir: [unterminated\n"), 0o644))

	_, err := config.LoadBuild(path)
	assert.Error(t, err)
}

func TestStdlibFunctionsMatchesScopingAndTypingExpectations(t *testing.T) {
	names := make(map[string]config.StdlibFunction)
	for _, fn := range config.StdlibFunctions {
		names[fn.Name] = fn
	}
	readFile, ok := names["read_file"]
	require.True(t, ok)
	assert.Equal(t, "bool", readFile.ReturnType)
	assert.Equal(t, []string{"string", "list[char]"}, readFile.ArgTypes)
}
