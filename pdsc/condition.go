package pdsc

import (
	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// ConditionComponent is one device-shape predicate inside a condition's
// accept/deny/require list (spec.md §3): all fields are optional, absence
// meaning "don't care" about that axis.
type ConditionComponent struct {
	DeviceFamily    *string
	DeviceSubFamily *string
	DeviceVariant   *string
	DeviceVendor    *string
	DeviceName      *string
}

// conditionComponentFromElement reads the Dfamily/Dsubfamily/Dvariant/
// Dvendor/Dname attributes directly off the accept/deny/require element
// itself. The Rust source this is grounded on reads these attributes off
// the parent <condition> instead of the child being iterated — a bug this
// implementation does not reproduce, since it would make every
// ConditionComponent in a condition identical.
func conditionComponentFromElement(e xmlutil.Element) (ConditionComponent, error) {
	return ConditionComponent{
		DeviceFamily:    optionalAttrPtr(e, "Dfamily"),
		DeviceSubFamily: optionalAttrPtr(e, "Dsubfamily"),
		DeviceVariant:   optionalAttrPtr(e, "Dvariant"),
		DeviceVendor:    optionalAttrPtr(e, "Dvendor"),
		DeviceName:      optionalAttrPtr(e, "Dname"),
	}, nil
}

func optionalAttrPtr(e xmlutil.Element, name string) *string {
	if v, ok := xmlutil.AttrMapOptional(e, name); ok {
		return &v
	}
	return nil
}

// Condition is a named predicate referenced by a Component's or FileRef's
// condition attribute (spec.md §3).
type Condition struct {
	ID      string
	Accept  []ConditionComponent
	Deny    []ConditionComponent
	Require []ConditionComponent
}

func conditionFromElement(e xmlutil.Element) (Condition, error) {
	if err := xmlutil.AssertRootName(e, "condition"); err != nil {
		return Condition{}, err
	}
	id, err := xmlutil.AttrMap(e, "id")
	if err != nil {
		return Condition{}, err
	}

	c := Condition{ID: id}
	for _, child := range e.Children() {
		switch child.LocalName() {
		case "accept":
			if cc, err := conditionComponentFromElement(child); err == nil {
				c.Accept = append(c.Accept, cc)
			}
		case "deny":
			if cc, err := conditionComponentFromElement(child); err == nil {
				c.Deny = append(c.Deny, cc)
			}
		case "require":
			if cc, err := conditionComponentFromElement(child); err == nil {
				c.Require = append(c.Require, cc)
			}
		case "description":
			// free text, not modeled
		default:
			// unknown sub-element: ignore per the best-effort policy
		}
	}
	return c, nil
}

// conditionsFromElement parses a <conditions> block. Duplicate ids are
// logged into w; the later declaration wins, matching golang/dep-style
// "last registration overwrites" map semantics used elsewhere in this
// package for duplicate devices.
func conditionsFromElement(e xmlutil.Element, w *warnings) ([]Condition, error) {
	if err := xmlutil.AssertRootName(e, "conditions"); err != nil {
		return nil, err
	}
	parsed := xmlutil.VecFromChildren(conditionFromElement, e.Children())

	seen := make(map[string]bool, len(parsed))
	for _, c := range parsed {
		if seen[c.ID] {
			w.add("duplicate condition id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return parsed, nil
}

// ConditionLookup builds an id -> *Condition map for integrity checking
// (spec.md §4.3's condition table; used by the "check" CLI operation).
// On a duplicate id, the later entry wins, and w (if non-nil) records it.
func ConditionLookup(conditions []Condition, w *warnings) map[string]*Condition {
	m := make(map[string]*Condition, len(conditions))
	for i := range conditions {
		c := &conditions[i]
		if _, dup := m[c.ID]; dup {
			w.add("duplicate condition id %q", c.ID)
		}
		m[c.ID] = c
	}
	return m
}
