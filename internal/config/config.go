// Package config holds the fixed tables the compiler needs regardless of
// user configuration (recognised source extensions, the injected stdlib
// signatures), plus the Build type loaded from an optional tapl.yaml
// driving the driver's output layout (spec.md §6, SPEC_FULL.md "AMBIENT
// STACK / Configuration").
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SourceFileExtensions lists the file extensions the driver recognises as
// TAPL source.
var SourceFileExtensions = []string{".tapl"}

// StdlibFunction describes one of the fixed standard-library functions
// injected into every top-level and class scope (spec.md §4.D): a name,
// a return type keyword, and its argument type keywords in order.
type StdlibFunction struct {
	Name       string
	ReturnType string
	ArgTypes   []string
}

// StdlibFunctions is the fixed standard library injected into every
// top-level and every class scope.
var StdlibFunctions = []StdlibFunction{
	{Name: "read_file", ReturnType: "bool", ArgTypes: []string{"string", "list[char]"}},
	{Name: "write_file", ReturnType: "bool", ArgTypes: []string{"string", "list[char]"}},
}

// Build is the driver's output-layout configuration, normally loaded from
// tapl.yaml. Every field has a default matching spec.md §6's emitted
// artifact layout, so an absent config file is equivalent to the zero
// value after DefaultBuild().
type Build struct {
	HeaderDir    string `yaml:"header_dir"`
	TemplatesDir string `yaml:"templates_dir"`
	MainFile     string `yaml:"main_file"`
	Debug        bool   `yaml:"debug"`
}

// DefaultBuild returns the layout spec.md §6 describes when no tapl.yaml
// is present.
func DefaultBuild() Build {
	return Build{
		HeaderDir:    "tapl_headers",
		TemplatesDir: "templates",
		MainFile:     "main.c",
	}
}

// LoadBuild reads and parses a tapl.yaml file at path, falling back to
// DefaultBuild for any field left unset in the file. A missing file is
// not an error: it is equivalent to an empty file.
func LoadBuild(path string) (Build, error) {
	build := DefaultBuild()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return build, nil
	}
	if err != nil {
		return build, err
	}

	var override Build
	if err := yaml.Unmarshal(data, &override); err != nil {
		return build, err
	}
	if override.HeaderDir != "" {
		build.HeaderDir = override.HeaderDir
	}
	if override.TemplatesDir != "" {
		build.TemplatesDir = override.TemplatesDir
	}
	if override.MainFile != "" {
		build.MainFile = override.MainFile
	}
	build.Debug = override.Debug
	return build, nil
}
