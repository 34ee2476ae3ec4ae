package pdsc

import (
	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// Package is the fully parsed contents of one .pdsc document (spec.md §3,
// C3). Warnings accumulates every non-fatal diagnostic raised while
// parsing its sub-trees (duplicate ids, empty bundles, malformed leaves)
// so callers can surface them without re-walking the document.
type Package struct {
	Name        string
	Description string
	Vendor      string
	URL         string
	License     *string

	components []ComponentBuilder
	Releases   Releases
	Conditions []Condition
	Devices    map[string]Device
	Boards     []Board
	Warnings   []string
}

// FromElement parses a <package> root element into a Package (spec.md
// §4.3). Only name, description, vendor and url are mandatory; every
// other block defaults to empty when absent or malformed, with the
// reason recorded in Warnings.
func FromElement(e xmlutil.Element) (Package, error) {
	if err := xmlutil.AssertRootName(e, "package"); err != nil {
		return Package{}, err
	}

	name, err := xmlutil.ChildText(e, "name")
	if err != nil {
		return Package{}, err
	}
	description, err := xmlutil.ChildText(e, "description")
	if err != nil {
		return Package{}, err
	}
	vendor, err := xmlutil.ChildText(e, "vendor")
	if err != nil {
		return Package{}, err
	}
	url, err := xmlutil.ChildText(e, "url")
	if err != nil {
		return Package{}, err
	}

	p := Package{
		Name:        name,
		Description: description,
		Vendor:      vendor,
		URL:         url,
	}
	if lic, ok := xmlutil.ChildTextOptional(e, "license"); ok {
		p.License = &lic
	}

	w := &warnings{}

	for _, child := range e.Children() {
		switch child.LocalName() {
		case "releases":
			releases, err := releasesFromElement(child, w)
			if err != nil {
				w.add("releases: %v", err)
				continue
			}
			p.Releases = releases
		case "conditions":
			conditions, err := conditionsFromElement(child, w)
			if err != nil {
				w.add("conditions: %v", err)
				continue
			}
			p.Conditions = conditions
		case "components":
			comps, err := componentsFromElement(child, w)
			if err != nil {
				w.add("components: %v", err)
				continue
			}
			p.components = comps
		case "devices":
			devices, err := devicesFromElement(child, w)
			if err != nil {
				w.add("devices: %v", err)
				continue
			}
			p.Devices = devices
		case "boards":
			for _, board := range child.Children() {
				b, err := boardFromElement(board)
				if err != nil {
					w.add("skipping malformed board: %v", err)
					continue
				}
				p.Boards = append(p.Boards, b)
			}
		}
	}

	if len(p.Releases) == 0 {
		w.add("package declares no releases")
	}

	p.Warnings = w.list
	return p, nil
}

// MakeComponents resolves every parsed ComponentBuilder against the
// package's own vendor and latest release version as the last-resort
// default (spec.md §4.3):
// a component missing Cvendor, Cclass, Cgroup or Cversion falls back to
// the package vendor, a placeholder class/group name, and the latest
// release version, respectively, rather than failing the whole package.
func (p Package) MakeComponents() []Component {
	fallbackVersion := ""
	if len(p.Releases) > 0 {
		fallbackVersion = p.Releases.LatestRelease().Version
	}

	out := make([]Component, 0, len(p.components))
	for _, cb := range p.components {
		out = append(out, Component{
			Vendor:       stringOr(cb.Vendor, p.Vendor),
			Class:        stringOr(cb.Class, "Class"),
			Group:        stringOr(cb.Group, "Group"),
			SubGroup:     cb.SubGroup,
			Variant:      cb.Variant,
			Version:      stringOr(cb.Version, fallbackVersion),
			APIVersion:   cb.APIVersion,
			Condition:    cb.Condition,
			MaxInstances: cb.MaxInstances,
			IsDefault:    cb.IsDefault,
			Deprecated:   cb.Deprecated,
			Description:  cb.Description,
			RTEAddition:  cb.RTEAddition,
			Files:        cb.Files,
		})
	}
	return out
}

// ConditionLookup builds the id -> *Condition table used by the "check"
// CLI operation (spec.md §7) to cross-reference every component's and
// file's condition attribute.
func (p Package) ConditionLookup() map[string]*Condition {
	return ConditionLookup(p.Conditions, nil)
}

// FromPack names the pack a DumpDevice was extracted from, so catalog
// output stays self-describing after many packages have been merged
// into one device list (spec.md §4.8).
type FromPack struct {
	Vendor  string `json:"vendor"`
	Pack    string `json:"pack"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

// DumpDevice is the catalog's flattened device record (spec.md §4.8):
// every Device plus the pack provenance it came from.
type DumpDevice struct {
	Name       string      `json:"name"`
	Memories   Memories    `json:"memories"`
	Algorithms []Algorithm `json:"algorithms"`
	Processors []Processor `json:"processors"`
	FromPack   FromPack    `json:"from_pack"`
	Vendor     *string     `json:"vendor,omitempty"`
	Family     string      `json:"family"`
	SubFamily  *string     `json:"sub_family,omitempty"`
}

// MakeDumpDevices flattens the package's device tree into catalog
// records, stamping each with this package's identity as its FromPack
// provenance (spec.md §4.8).
func (p Package) MakeDumpDevices() []DumpDevice {
	version := ""
	if len(p.Releases) > 0 {
		version = p.Releases.LatestRelease().Version
	}
	fromPack := FromPack{
		Vendor:  p.Vendor,
		Pack:    p.Name,
		Version: version,
		URL:     p.URL,
	}

	out := make([]DumpDevice, 0, len(p.Devices))
	for _, d := range p.Devices {
		out = append(out, DumpDevice{
			Name:       d.Name,
			Memories:   d.Memories,
			Algorithms: d.Algorithms,
			Processors: d.Processors,
			FromPack:   fromPack,
			Vendor:     d.Vendor,
			Family:     d.Family,
			SubFamily:  d.SubFamily,
		})
	}
	return out
}
