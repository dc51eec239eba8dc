// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path diagnostics for the level queue stack
//
// Purpose:
//   - Reports arena mapping failures, teardown errors and CLI progress.
//   - Writes straight to stderr through utils.PrintWarning; no fmt, no logger state.
//
// ⚠️ Never invoke from Insert/Increment/Decrement hot paths.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"os"

	"github.com/jiverson002/sbma-sub001/utils"
)

// exit is swapped by tests so Fatal can be observed without ending the process.
var exit = os.Exit

// DropError logs prefix and err on one line. A nil err logs the prefix alone.
//
//go:nosplit
//go:inline
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
		return
	}
	utils.PrintWarning(prefix + "\n")
}

// DropMessage logs a tagged diagnostic line.
//
//go:nosplit
//go:inline
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}

// Fatal logs err under prefix and terminates the process with status 2.
func Fatal(prefix string, err error) {
	DropError(prefix+" [fatal]", err)
	exit(2)
}
