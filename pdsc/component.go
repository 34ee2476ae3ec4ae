package pdsc

import (
	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// ComponentBuilder is a <component> before bundle inheritance and package
// defaults have been applied (spec.md §3).
type ComponentBuilder struct {
	Vendor       *string
	Class        *string
	Group        *string
	SubGroup     *string
	Variant      *string
	Version      *string
	APIVersion   *string
	Condition    *string
	MaxInstances *uint8
	IsDefault    bool
	Deprecated   bool
	Description  string
	RTEAddition  string
	Files        []FileRef
}

func componentBuilderFromElement(e xmlutil.Element) (ComponentBuilder, error) {
	if err := xmlutil.AssertRootName(e, "component"); err != nil {
		return ComponentBuilder{}, err
	}

	description, err := xmlutil.ChildText(e, "description")
	if err != nil {
		return ComponentBuilder{}, err
	}

	cb := ComponentBuilder{
		Vendor:      optionalAttrPtr(e, "Cvendor"),
		Class:       optionalAttrPtr(e, "Cclass"),
		Group:       optionalAttrPtr(e, "Cgroup"),
		SubGroup:    optionalAttrPtr(e, "Csub"),
		Version:     optionalAttrPtr(e, "Cversion"),
		Variant:     optionalAttrPtr(e, "Cvariant"),
		APIVersion:  optionalAttrPtr(e, "Capiversion"),
		Condition:   optionalAttrPtr(e, "condition"),
		IsDefault:   true,
		Description: description,
	}

	if raw, ok := xmlutil.AttrMapOptional(e, "maxInstances"); ok {
		if n, err := xmlutil.ParseNumber(raw); err == nil {
			v := uint8(n)
			cb.MaxInstances = &v
		}
	}
	if raw, ok := xmlutil.AttrMapOptional(e, "isDefaultVariant"); ok {
		if b, err := xmlutil.ParseBool(raw); err == nil {
			cb.IsDefault = b
		}
	}
	if text, ok := xmlutil.ChildTextOptional(e, "deprecated"); ok {
		if b, err := xmlutil.ParseBool(text); err == nil {
			cb.Deprecated = b
		}
	}
	if text, ok := xmlutil.ChildTextOptional(e, "RTE_components_h"); ok {
		cb.RTEAddition = text
	}

	for _, child := range e.Children() {
		if child.LocalName() == "files" {
			cb.Files = xmlutil.VecFromChildren(fileRefFromElement, child.Children())
		}
	}
	return cb, nil
}

// Bundle is a syntactic grouping of components that share class, version
// and vendor unless a member overrides them (spec.md §3).
type Bundle struct {
	Name        string
	Class       string
	Version     string
	Vendor      *string
	Description string
	Doc         string
	Components  []ComponentBuilder
}

func bundleFromElement(e xmlutil.Element) (Bundle, error) {
	if err := xmlutil.AssertRootName(e, "bundle"); err != nil {
		return Bundle{}, err
	}
	name, err := xmlutil.AttrMap(e, "Cbundle")
	if err != nil {
		return Bundle{}, err
	}
	class, err := xmlutil.AttrMap(e, "Cclass")
	if err != nil {
		return Bundle{}, err
	}
	version, err := xmlutil.AttrMap(e, "Cversion")
	if err != nil {
		return Bundle{}, err
	}
	description, err := xmlutil.ChildText(e, "description")
	if err != nil {
		return Bundle{}, err
	}
	doc, err := xmlutil.ChildText(e, "doc")
	if err != nil {
		return Bundle{}, err
	}

	var comps []xmlutil.Element
	for _, child := range e.Children() {
		if child.LocalName() == "component" {
			comps = append(comps, child)
		}
	}

	return Bundle{
		Name:        name,
		Class:       class,
		Version:     version,
		Vendor:      optionalAttrPtr(e, "Cvendor"),
		Description: description,
		Doc:         doc,
		Components:  xmlutil.VecFromChildren(componentBuilderFromElement, comps),
	}, nil
}

// IntoComponents expands a Bundle into its member ComponentBuilders,
// inheriting class, version and vendor onto any member that doesn't
// already declare its own (spec.md §4.3: "every expanded component
// inherits the bundle's class, version, and vendor when its own field is
// absent"). An empty bundle is a reportable warning, not an error.
func (b Bundle) IntoComponents(w *warnings) []ComponentBuilder {
	if len(b.Components) == 0 {
		w.add("bundle %q declares no components", b.Name)
	}
	out := make([]ComponentBuilder, len(b.Components))
	for i, c := range b.Components {
		if c.Class == nil {
			class := b.Class
			c.Class = &class
		}
		if c.Version == nil {
			version := b.Version
			c.Version = &version
		}
		if c.Vendor == nil {
			c.Vendor = b.Vendor
		}
		out[i] = c
	}
	return out
}

// componentsFromElement parses a <components> block, which may mix
// <component> and <bundle> children (spec.md §4.3). Any other child tag
// is a warning, and parsing continues.
func componentsFromElement(e xmlutil.Element, w *warnings) ([]ComponentBuilder, error) {
	if err := xmlutil.AssertRootName(e, "components"); err != nil {
		return nil, err
	}

	var out []ComponentBuilder
	for _, child := range e.Children() {
		switch child.LocalName() {
		case "component":
			cb, err := componentBuilderFromElement(child)
			if err != nil {
				w.add("skipping malformed component: %v", err)
				continue
			}
			out = append(out, cb)
		case "bundle":
			bundle, err := bundleFromElement(child)
			if err != nil {
				w.add("skipping malformed bundle: %v", err)
				continue
			}
			out = append(out, bundle.IntoComponents(w)...)
		default:
			w.add("unexpected element <%s> in components", child.LocalName())
		}
	}
	return out, nil
}

// Component is a ComponentBuilder with its package-default-resolved
// fields (spec.md §3): vendor, class, group and version are always
// present on a fully resolved Component.
type Component struct {
	Vendor       string    `json:"vendor"`
	Class        string    `json:"class"`
	Group        string    `json:"group"`
	SubGroup     *string   `json:"sub_group,omitempty"`
	Variant      *string   `json:"variant,omitempty"`
	Version      string    `json:"version"`
	APIVersion   *string   `json:"api_version,omitempty"`
	Condition    *string   `json:"condition,omitempty"`
	MaxInstances *uint8    `json:"max_instances,omitempty"`
	IsDefault    bool      `json:"is_default"`
	Deprecated   bool      `json:"deprecated"`
	Description  string    `json:"description"`
	RTEAddition  string    `json:"rte_addition,omitempty"`
	Files        []FileRef `json:"files"`
}

func stringOr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}
