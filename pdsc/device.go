package pdsc

import (
	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// DeviceBuilder accumulates a device's fields during the top-down walk of
// a <devices> tree; family/sub-family/device/variant levels each
// contribute to the same builder before it is resolved into a Device
// (spec.md §4.4).
type DeviceBuilder struct {
	Memories   Memories
	Algorithms []Algorithm
	Processors []ProcessorSpec
	Debugs     []DebugSpec
}

func deviceBuilderFromElement(e xmlutil.Element) DeviceBuilder {
	var b DeviceBuilder
	b.Memories = make(Memories)
	for _, child := range e.Children() {
		switch child.LocalName() {
		case "memory":
			if me, err := memElemFromElement(child); err == nil {
				b.Memories[me.name] = me.mem
			}
		case "algorithm":
			if a, err := algorithmFromElement(child); err == nil {
				b.Algorithms = append(b.Algorithms, a)
			}
		case "processor":
			b.Processors = append(b.Processors, processorSpecFromElement(child))
		case "debug":
			b.Debugs = append(b.Debugs, debugSpecFromElement(child))
		}
	}
	return b
}

// addParent folds a less-specific level's builder into this (more
// specific) one, per the inheritance resolver's merge contracts (spec.md
// §4.4): Memories is a mapping merge, Algorithms concatenates, Debugs
// appends the parent's entries after the child's, and Processors follows
// the processor-spec merge contract.
func (b DeviceBuilder) addParent(parent DeviceBuilder) (DeviceBuilder, error) {
	merged := DeviceBuilder{
		Memories:   mergeMemories(b.Memories, parent.Memories),
		Algorithms: append(append([]Algorithm{}, b.Algorithms...), parent.Algorithms...),
		Debugs:     append(append([]DebugSpec{}, b.Debugs...), parent.Debugs...),
	}
	procs, err := mergeProcessorSpecs(b.Processors, parent.Processors)
	if err != nil {
		return DeviceBuilder{}, err
	}
	merged.Processors = procs
	return merged, nil
}

// Device is a single, fully resolved device or device variant (spec.md
// §3), the terminal leaf of a family/sub-family/device/variant
// hierarchy.
type Device struct {
	Name       string
	Memories   Memories
	Algorithms []Algorithm
	Processors []Processor
	Vendor     *string
	Family     string
	SubFamily  *string
}

func (b DeviceBuilder) build(name, family string, subFamily, vendor *string) (Device, error) {
	procs, err := buildProcessors(b.Processors, b.Debugs)
	if err != nil {
		return Device{}, err
	}
	return Device{
		Name:       name,
		Memories:   b.Memories,
		Algorithms: b.Algorithms,
		Processors: procs,
		Vendor:     vendor,
		Family:     family,
		SubFamily:  subFamily,
	}, nil
}

// Board is a physical evaluation board that mounts one or more devices
// (spec.md §3).
type Board struct {
	Name           string   `json:"name"`
	MountedDevices []string `json:"mounted_devices"`
}

func boardFromElement(e xmlutil.Element) (Board, error) {
	if err := xmlutil.AssertRootName(e, "board"); err != nil {
		return Board{}, err
	}
	name, err := xmlutil.AttrMap(e, "name")
	if err != nil {
		return Board{}, err
	}

	b := Board{Name: name}
	for _, child := range e.Children() {
		if child.LocalName() != "mountedDevice" {
			continue
		}
		if dname, ok := xmlutil.AttrMapOptional(child, "Dname"); ok {
			b.MountedDevices = append(b.MountedDevices, dname)
		}
	}
	return b, nil
}

// devicesFromElement parses a <devices> block, walking family -> sub-family
// -> device -> variant exactly as the CMSIS schema nests them, merging
// each level's DeviceBuilder down into its children and resolving a
// Device at every <device> or <variant> leaf (spec.md §4.4). Malformed
// leaves are dropped with a warning rather than aborting the whole walk,
// and duplicate device names overwrite with a warning.
func devicesFromElement(e xmlutil.Element, w *warnings) (map[string]Device, error) {
	if err := xmlutil.AssertRootName(e, "devices"); err != nil {
		return nil, err
	}

	out := make(map[string]Device)
	for _, family := range e.Children() {
		if family.LocalName() != "family" {
			continue
		}
		if err := parseFamily(family, out, w); err != nil {
			w.add("skipping malformed family: %v", err)
		}
	}
	return out, nil
}

func parseFamily(e xmlutil.Element, out map[string]Device, w *warnings) error {
	familyName, ok := xmlutil.AttrMapOptional(e, "Dfamily")
	if !ok {
		return errNoFamilyName
	}
	vendor := optionalAttrPtr(e, "Dvendor")
	builder := deviceBuilderFromElement(e)

	for _, child := range e.Children() {
		switch child.LocalName() {
		case "subFamily":
			parseSubFamily(child, familyName, vendor, builder, out, w)
		case "device":
			parseDevice(child, familyName, nil, vendor, builder, out, w)
		}
	}
	return nil
}

func parseSubFamily(e xmlutil.Element, family string, vendor *string, parent DeviceBuilder, out map[string]Device, w *warnings) {
	subFamilyName, ok := xmlutil.AttrMapOptional(e, "DsubFamily")
	if !ok {
		w.add("subFamily of family %q has no DsubFamily", family)
		return
	}
	own := deviceBuilderFromElement(e)
	merged, err := own.addParent(parent)
	if err != nil {
		w.add("subFamily %q: %v", subFamilyName, err)
		return
	}

	for _, child := range e.Children() {
		if child.LocalName() == "device" {
			parseDevice(child, family, &subFamilyName, vendor, merged, out, w)
		}
	}
}

func parseDevice(e xmlutil.Element, family string, subFamily, vendor *string, parent DeviceBuilder, out map[string]Device, w *warnings) {
	name, ok := xmlutil.AttrMapOptional(e, "Dname")
	if !ok {
		w.add("device of family %q has no Dname", family)
		return
	}
	own := deviceBuilderFromElement(e)
	merged, err := own.addParent(parent)
	if err != nil {
		w.add("device %q: %v", name, err)
		return
	}

	hasVariant := false
	for _, child := range e.Children() {
		if child.LocalName() != "variant" {
			continue
		}
		hasVariant = true
		variantName, ok := xmlutil.AttrMapOptional(child, "Dvariant")
		if !ok {
			w.add("variant of device %q has no Dvariant", name)
			continue
		}
		variantBuilder := deviceBuilderFromElement(child)
		variantMerged, err := variantBuilder.addParent(merged)
		if err != nil {
			w.add("variant %q: %v", variantName, err)
			continue
		}
		addDevice(out, variantMerged, variantName, family, subFamily, vendor, w)
	}

	if !hasVariant {
		addDevice(out, merged, name, family, subFamily, vendor, w)
	}
}

func addDevice(out map[string]Device, b DeviceBuilder, name, family string, subFamily, vendor *string, w *warnings) {
	d, err := b.build(name, family, subFamily, vendor)
	if err != nil {
		w.add("device %q: %v", name, err)
		return
	}
	if _, dup := out[name]; dup {
		w.add("duplicate device name %q", name)
	}
	out[name] = d
}
