// Package logutil provides package-level, verbosity-gated logging for
// library code that doesn't carry a *log.Logger through every call.
//
// Command-line entry points should prefer their own *log.Logger (see
// cmd/cmsis-pack-manager's -v flag, which sets Verbose below); this
// package exists for the best-effort paths in xmlutil (whose
// VecFromChildren the pdsc and pidx parsers use) and config, where a
// dropped child element or a dropped seed-file line needs to be surfaced
// without threading a logger through every function signature.
package logutil

import (
	"fmt"
	"os"
)

// Verbose gates Vlogf. Set by the CLI's -v flag.
var Verbose bool

// Logf writes a formatted, prefixed line to stderr unconditionally.
func Logf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "cmsis-pack-manager: "+format+"\n", args...)
}

// Vlogf writes a formatted, prefixed line to stderr only when Verbose is set.
// This is the sink for best-effort parse warnings (§4.1's "dominant failure
// model"): a malformed child is dropped and logged here, never escalated.
func Vlogf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	Logf(format, args...)
}
