package pdsc

import "fmt"

// warnings accumulates the non-fatal diagnostics produced while parsing one
// package descriptor — duplicate device names, duplicate condition ids,
// empty bundles — so that callers (notably the "check" CLI operation) can
// inspect them as structured data rather than only as log lines (spec.md
// §4.3, §7: "Parse ... recovered locally: best-effort lists skip the bad
// entry with a warning").
type warnings struct {
	list []string
}

func (w *warnings) add(format string, args ...interface{}) {
	if w == nil {
		return
	}
	w.list = append(w.list, fmt.Sprintf(format, args...))
}
