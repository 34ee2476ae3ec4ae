package pdsc

import (
	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// Core is one of the ARM core names a <processor>'s Dcore attribute may
// name (spec.md §3: "closed enum of ARM core names").
type Core string

const (
	CoreCortexM0     Core = "Cortex-M0"
	CoreCortexM0Plus Core = "Cortex-M0+"
	CoreCortexM1     Core = "Cortex-M1"
	CoreCortexM3     Core = "Cortex-M3"
	CoreCortexM4     Core = "Cortex-M4"
	CoreCortexM7     Core = "Cortex-M7"
	CoreCortexM23    Core = "Cortex-M23"
	CoreCortexM33    Core = "Cortex-M33"
	CoreSC000        Core = "SC000"
	CoreSC300        Core = "SC300"
	CoreARMV8MBL     Core = "ARMV8MBL"
	CoreARMV8MML     Core = "ARMV8MML"
	CoreCortexR4     Core = "Cortex-R4"
	CoreCortexR5     Core = "Cortex-R5"
	CoreCortexR7     Core = "Cortex-R7"
	CoreCortexR8     Core = "Cortex-R8"
	CoreCortexA5     Core = "Cortex-A5"
	CoreCortexA7     Core = "Cortex-A7"
	CoreCortexA8     Core = "Cortex-A8"
	CoreCortexA9     Core = "Cortex-A9"
	CoreCortexA15    Core = "Cortex-A15"
	CoreCortexA17    Core = "Cortex-A17"
	CoreCortexA32    Core = "Cortex-A32"
	CoreCortexA35    Core = "Cortex-A35"
	CoreCortexA53    Core = "Cortex-A53"
	CoreCortexA57    Core = "Cortex-A57"
	CoreCortexA72    Core = "Cortex-A72"
	CoreCortexA73    Core = "Cortex-A73"
)

var validCores = map[Core]bool{
	CoreCortexM0: true, CoreCortexM0Plus: true, CoreCortexM1: true, CoreCortexM3: true,
	CoreCortexM4: true, CoreCortexM7: true, CoreCortexM23: true, CoreCortexM33: true,
	CoreSC000: true, CoreSC300: true, CoreARMV8MBL: true, CoreARMV8MML: true,
	CoreCortexR4: true, CoreCortexR5: true, CoreCortexR7: true, CoreCortexR8: true,
	CoreCortexA5: true, CoreCortexA7: true, CoreCortexA8: true, CoreCortexA9: true,
	CoreCortexA15: true, CoreCortexA17: true, CoreCortexA32: true, CoreCortexA35: true,
	CoreCortexA53: true, CoreCortexA57: true, CoreCortexA72: true, CoreCortexA73: true,
}

func parseCore(raw string) (Core, error) {
	c := Core(raw)
	if !validCores[c] {
		return "", errors.Errorf("pdsc: unknown core %q", raw)
	}
	return c, nil
}

// FPU is the closed set a <processor>'s Dfpu attribute may hold, along
// with its numeric and legacy aliases (spec.md §3).
type FPU string

const (
	FPUNone            FPU = "None"
	FPUSinglePrecision FPU = "SinglePrecision"
	FPUDoublePrecision FPU = "DoublePrecision"
)

func parseFPU(raw string) (FPU, error) {
	switch raw {
	case "FPU", "SP_FPU", "1":
		return FPUSinglePrecision, nil
	case "None", "0":
		return FPUNone, nil
	case "DP_FPU", "2":
		return FPUDoublePrecision, nil
	default:
		return "", errors.Errorf("pdsc: unknown fpu %q", raw)
	}
}

// MPU is the closed set a <processor>'s Dmpu attribute may hold (spec.md
// §3).
type MPU string

const (
	MPUNotPresent MPU = "NotPresent"
	MPUPresent    MPU = "Present"
)

func parseMPU(raw string) (MPU, error) {
	switch raw {
	case "MPU", "1":
		return MPUPresent, nil
	case "None", "0":
		return MPUNotPresent, nil
	default:
		return "", errors.Errorf("pdsc: unknown mpu %q", raw)
	}
}

// ProcessorSpec is one <processor> element before hierarchy merge and
// unit expansion (spec.md §3).
type ProcessorSpec struct {
	Core  *Core
	Units *uint8
	Name  *string
	FPU   *FPU
	MPU   *MPU
}

func processorSpecFromElement(e xmlutil.Element) ProcessorSpec {
	var spec ProcessorSpec
	if raw, ok := xmlutil.AttrMapOptional(e, "Dcore"); ok {
		if c, err := parseCore(raw); err == nil {
			spec.Core = &c
		}
	}
	if raw, ok := xmlutil.AttrMapOptional(e, "Punits"); ok {
		if n, err := xmlutil.ParseNumber(raw); err == nil {
			u := uint8(n)
			spec.Units = &u
		}
	}
	if raw, ok := xmlutil.AttrMapOptional(e, "Pname"); ok {
		spec.Name = &raw
	}
	if raw, ok := xmlutil.AttrMapOptional(e, "Dfpu"); ok {
		if f, err := parseFPU(raw); err == nil {
			spec.FPU = &f
		}
	}
	if raw, ok := xmlutil.AttrMapOptional(e, "Dmpu"); ok {
		if m, err := parseMPU(raw); err == nil {
			spec.MPU = &m
		}
	}
	return spec
}

func mergeProcessorSpecScalar(child, parent ProcessorSpec) ProcessorSpec {
	return ProcessorSpec{
		Core:  orElse(child.Core, parent.Core),
		Units: orElseUint8(child.Units, parent.Units),
		Name:  orElse(child.Name, parent.Name),
		FPU:   orElse(child.FPU, parent.FPU),
		MPU:   orElse(child.MPU, parent.MPU),
	}
}

func orElse[T any](child, parent *T) *T {
	if child != nil {
		return child
	}
	return parent
}

func orElseUint8(child, parent *uint8) *uint8 {
	if child != nil {
		return child
	}
	return parent
}

// mergeProcessorSpecs implements the inheritance resolver's processor-spec
// merge contract (spec.md §4.4): child wins field-by-field against a
// single parent spec; merging two multi-entry (AMP) lists is fatal.
func mergeProcessorSpecs(child, parent []ProcessorSpec) ([]ProcessorSpec, error) {
	if len(child) == 0 {
		return parent, nil
	}
	if len(parent) == 0 {
		return child, nil
	}
	if len(parent) != 1 {
		return nil, errMixedProcessors
	}
	merged := make([]ProcessorSpec, len(child))
	for i, c := range child {
		merged[i] = mergeProcessorSpecScalar(c, parent[0])
	}
	return merged, nil
}

// DebugSpec is one <debug> element before hierarchy merge (spec.md §3).
type DebugSpec struct {
	AP                   *uint8
	DP                   *uint8
	APID                 *string
	Address              *string
	SVD                  *string
	Name                 *string
	Unit                 *uint8
	DefaultResetSequence *string
}

func debugSpecFromElement(e xmlutil.Element) DebugSpec {
	var d DebugSpec
	if raw, ok := xmlutil.AttrMapOptional(e, "__ap"); ok {
		if n, err := xmlutil.ParseNumber(raw); err == nil {
			v := uint8(n)
			d.AP = &v
		}
	}
	if raw, ok := xmlutil.AttrMapOptional(e, "__dp"); ok {
		if n, err := xmlutil.ParseNumber(raw); err == nil {
			v := uint8(n)
			d.DP = &v
		}
	}
	d.APID = optionalAttrPtr(e, "__apid")
	d.Address = optionalAttrPtr(e, "address")
	d.SVD = optionalAttrPtr(e, "svd")
	d.Name = optionalAttrPtr(e, "Pname")
	if raw, ok := xmlutil.AttrMapOptional(e, "Punit"); ok {
		if n, err := xmlutil.ParseNumber(raw); err == nil {
			v := uint8(n)
			d.Unit = &v
		}
	}
	d.DefaultResetSequence = optionalAttrPtr(e, "defaultResetSequence")
	return d
}

// Processor is one fully resolved processor core of a Device (spec.md
// §3), after unit expansion and debug-record matching.
type Processor struct {
	Core                 Core    `json:"core"`
	FPU                  FPU     `json:"fpu"`
	MPU                  MPU     `json:"mpu"`
	AP                   uint8   `json:"ap"`
	DP                   uint8   `json:"dp"`
	APID                 *string `json:"apid,omitempty"`
	Address              *string `json:"address,omitempty"`
	SVD                  *string `json:"svd,omitempty"`
	Name                 *string `json:"name,omitempty"`
	Unit                 uint8   `json:"unit"`
	DefaultResetSequence *string `json:"default_reset_sequence,omitempty"`
}

// buildProcessors expands specs into Processor records and matches each
// against debugs (spec.md §4.4, "Device build" steps 1-2).
func buildProcessors(specs []ProcessorSpec, debugs []DebugSpec) ([]Processor, error) {
	if len(specs) == 0 {
		return nil, errNoProcessor
	}

	var out []Processor
	for _, spec := range specs {
		if spec.Core == nil {
			return nil, errNoCore
		}
		units := uint8(1)
		if spec.Units != nil {
			units = *spec.Units
		}
		fpu := FPUNone
		if spec.FPU != nil {
			fpu = *spec.FPU
		}
		mpu := MPUNotPresent
		if spec.MPU != nil {
			mpu = *spec.MPU
		}

		for unit := uint8(0); unit < units; unit++ {
			d := matchDebug(debugs, spec.Name, unit)
			p := Processor{
				Core:                 *spec.Core,
				FPU:                  fpu,
				MPU:                  mpu,
				Name:                 spec.Name,
				Unit:                 unit,
				AP:                   valueOr(d.AP, 0),
				DP:                   valueOr(d.DP, 0),
				APID:                 d.APID,
				Address:              d.Address,
				SVD:                  d.SVD,
				DefaultResetSequence: d.DefaultResetSequence,
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// matchDebug selects the DebugSpec whose Name equals procName and whose
// Unit is either absent or equal to unit (spec.md §4.4, "Device build"
// step 2). A zero-filled default is used when no entry matches.
func matchDebug(debugs []DebugSpec, procName *string, unit uint8) DebugSpec {
	for _, d := range debugs {
		if !namesEqual(d.Name, procName) {
			continue
		}
		if d.Unit != nil && *d.Unit != unit {
			continue
		}
		return d
	}
	return DebugSpec{}
}

func namesEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func valueOr(p *uint8, fallback uint8) uint8 {
	if p != nil {
		return *p
	}
	return fallback
}
