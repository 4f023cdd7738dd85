// Package tracelog provides the scope-leave debug trace shared
// by the scoping and typing passes.
//
// ast_checks/typing_pass.py's `new_scope` and `_clean_scope` context
// managers printed the set of identifiers a scope held whenever it was
// torn down. Unconditional stdout printing would pollute the driver's
// stdout contract (spec.md §6: diagnostics and exit code are the only
// observable driver contract), so this is recovered as structured
// debug-level logging gated by a Debug flag instead, using the standard
// log package since no ecosystem logging library appears anywhere in the
// retrieved dependency stack.
package tracelog

import (
	"io"
	"log"
	"os"
)

var stderrLogger = log.New(os.Stderr, "tapl: ", log.Lshortfile)
var discardLogger = log.New(io.Discard, "", 0)

// Logger returns a logger writing to stderr when enabled, or one that
// discards everything otherwise, so call sites never branch on enabled
// themselves.
func Logger(enabled bool) *log.Logger {
	if enabled {
		return stderrLogger
	}
	return discardLogger
}
