package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/hetorus/tapl/internal/types"
)

const pragmaOnce = "#pragma once\n"

// utilityFunctionsHeader is fixed content (spec.md §4.E item 1): ANSI
// colour macros and a panic() used by recovered list methods and by
// user-triggered runtime failures.
func utilityFunctionsHeader() string {
	return pragmaOnce + `#include <stdio.h>
#include <stdlib.h>

#define ANSI_RED     "\x1b[31m"
#define ANSI_GREEN   "\x1b[32m"
#define ANSI_YELLOW  "\x1b[33m"
#define ANSI_RESET   "\x1b[0m"

static inline void panic(const char* message) {
    fprintf(stderr, ANSI_RED "panic: %s" ANSI_RESET "\n", message);
    exit(1);
}
`
}

// typesHeader emits one typedef per basic type whose underlying_type
// differs from its own keyword (spec.md §4.E item 2), in registry
// registration order. The internal `base` placeholder type never reaches
// emitted C: every base-typed literal is concretized to a real slot by the
// time the typing pass returns (spec.md §8 invariant 1), so it is skipped
// here rather than typedef'd to nothing useful.
func (e *Emitter) typesHeader() string {
	out := pragmaOnce + fmt.Sprintf("#include <%s/utility_functions.h>\n", filepath.Base(e.HeaderDir)) +
		"#include <stdint.h>\n#include <stdbool.h>\n\n"
	for _, kw := range e.Registry.Keywords() {
		t := e.Registry.Get(kw)
		if t.Keyword != kw {
			continue // a syntactic-sugar alias, not the canonical entry
		}
		if !t.IsBasicType || t.Keyword == "base" {
			continue
		}
		if t.UnderlyingType == "" || t.UnderlyingType == t.Keyword {
			continue
		}
		out += fmt.Sprintf("typedef %s %s;\n", t.UnderlyingType, t.Keyword)
	}
	return out
}

var typeWordPattern = regexp.MustCompile(`TYPE`)

// listHeader emits one inclusion of the list template per list[T] the type
// registry has instantiated (spec.md §4.E item 3), substituting every
// occurrence of TYPE (including inside names such as list_TYPE_push) with
// T's keyword.
func (e *Emitter) listHeader() (string, error) {
	templatePath := filepath.Join(e.TemplatesDir, "list.h")
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("backend: reading list template %s: %w", templatePath, err)
	}

	out := pragmaOnce + fmt.Sprintf("#include <%s/types.h>\n\n", filepath.Base(e.HeaderDir))
	for _, kw := range e.Registry.Keywords() {
		t := e.Registry.Get(kw)
		if t.Keyword != kw || t.Kind != types.KindList {
			continue
		}
		out += fmt.Sprintf("/* list[%s] */\n", t.Inner.Keyword)
		out += typeWordPattern.ReplaceAllString(string(raw), t.Inner.Keyword)
		out += "\n"
	}
	return out, nil
}
