// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go - cold-path diagnostic logging
//
// Purpose:
//   - Reports topology, configuration and per-pair progress on stderr.
//   - Keeps stdout reserved for the rendered latency report.
//
// Notes:
//   - Avoids fmt on the message path; callers build strings with utils.Itoa.
//   - Verbose lines are dropped unless SetVerbose(true) was called.
//
// ⚠️ Never invoke while a pair is being measured.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import (
	"sync/atomic"

	"c2clat/utils"
)

var verbose atomic.Bool

// SetVerbose toggles emission of DropVerbose lines.
func SetVerbose(on bool) {
	verbose.Store(on)
}

// Verbose reports whether verbose diagnostics are enabled.
func Verbose() bool {
	return verbose.Load()
}

// DropError logs an error line "prefix: err". With a nil error only the
// prefix is printed, which is how tagged warnings are emitted.
//
//go:nosplit
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
		return
	}
	utils.PrintWarning(prefix + "\n")
}

// DropMessage logs "prefix: message".
//
//go:nosplit
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}

// DropVerbose is DropMessage gated on the verbose flag.
func DropVerbose(prefix, message string) {
	if verbose.Load() {
		DropMessage(prefix, message)
	}
}
