package pdsc

import "fmt"

// ConditionFinding is one row of the "check" CLI operation's condition
// integrity report (spec.md §7): either a component/file referencing a
// condition id that doesn't exist, or a condition id that nothing
// references.
type ConditionFinding struct {
	Severity string // "error" for unresolved references, "info" for dead conditions
	Message  string
}

// CheckConditions cross-references every component's and file's
// condition attribute against the package's condition table (spec.md
// §7): unresolved references are reported as errors, and condition ids
// declared but never referenced are reported as informational dead-code
// findings. Duplicate condition ids are already surfaced via Warnings
// when the package was parsed.
func (p Package) CheckConditions() []ConditionFinding {
	lookup := p.ConditionLookup()
	referenced := make(map[string]bool, len(lookup))
	var findings []ConditionFinding

	checkRef := func(owner string, cond *string) {
		if cond == nil {
			return
		}
		referenced[*cond] = true
		if _, ok := lookup[*cond]; !ok {
			findings = append(findings, ConditionFinding{
				Severity: "error",
				Message:  fmt.Sprintf("%s references undefined condition %q", owner, *cond),
			})
		}
	}

	for _, cb := range p.components {
		owner := fmt.Sprintf("component %s.%s", stringOr(cb.Vendor, "?"), stringOr(cb.Class, "?"))
		checkRef(owner, cb.Condition)
		for _, f := range cb.Files {
			checkRef(fmt.Sprintf("%s file %q", owner, f.Path), f.Condition)
		}
	}

	for id := range lookup {
		if !referenced[id] {
			findings = append(findings, ConditionFinding{
				Severity: "info",
				Message:  fmt.Sprintf("condition %q is never referenced", id),
			})
		}
	}

	return findings
}
