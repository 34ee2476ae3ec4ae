package pdsc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

func TestParseCoreRejectsUnknownName(t *testing.T) {
	_, err := parseCore("Cortex-Q1")
	require.Error(t, err)
}

func TestParseFPUAliases(t *testing.T) {
	cases := map[string]FPU{
		"FPU": FPUSinglePrecision, "SP_FPU": FPUSinglePrecision, "1": FPUSinglePrecision,
		"None": FPUNone, "0": FPUNone,
		"DP_FPU": FPUDoublePrecision, "2": FPUDoublePrecision,
	}
	for raw, want := range cases {
		got, err := parseFPU(raw)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestParseMPUAliases(t *testing.T) {
	got, err := parseMPU("MPU")
	require.NoError(t, err)
	require.Equal(t, MPUPresent, got)

	got, err = parseMPU("None")
	require.NoError(t, err)
	require.Equal(t, MPUNotPresent, got)

	_, err = parseMPU("bogus")
	require.Error(t, err)
}

func TestProcessorSpecFromElement(t *testing.T) {
	node, err := xmlutil.Parse([]byte(`<processor Dcore="Cortex-M4" Dfpu="FPU" Dmpu="MPU" Punits="2" Pname="cpu0"/>`))
	require.NoError(t, err)

	spec := processorSpecFromElement(node)
	require.Equal(t, CoreCortexM4, *spec.Core)
	require.Equal(t, FPUSinglePrecision, *spec.FPU)
	require.Equal(t, MPUPresent, *spec.MPU)
	require.Equal(t, uint8(2), *spec.Units)
	require.Equal(t, "cpu0", *spec.Name)
}

func TestMergeProcessorSpecsChildWinsOverSingleParent(t *testing.T) {
	parentCore := CoreCortexM0
	parentFPU := FPUNone
	childCore := CoreCortexM4

	merged, err := mergeProcessorSpecs(
		[]ProcessorSpec{{Core: &childCore}},
		[]ProcessorSpec{{Core: &parentCore, FPU: &parentFPU}},
	)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	require.Equal(t, CoreCortexM4, *merged[0].Core)
	require.Equal(t, FPUNone, *merged[0].FPU)
}

func TestMergeProcessorSpecsEmptyChildInheritsParent(t *testing.T) {
	core := CoreCortexM3
	merged, err := mergeProcessorSpecs(nil, []ProcessorSpec{{Core: &core}})
	require.NoError(t, err)
	require.Len(t, merged, 1)
	require.Equal(t, CoreCortexM3, *merged[0].Core)
}

func TestMergeProcessorSpecsEmptyParentKeepsChild(t *testing.T) {
	core := CoreCortexM3
	merged, err := mergeProcessorSpecs([]ProcessorSpec{{Core: &core}}, nil)
	require.NoError(t, err)
	require.Len(t, merged, 1)
}

func TestMergeProcessorSpecsRejectsTwoMultiEntryLists(t *testing.T) {
	c0, c1 := CoreCortexM0, CoreCortexM4
	_, err := mergeProcessorSpecs(
		[]ProcessorSpec{{Core: &c0}, {Core: &c1}},
		[]ProcessorSpec{{Core: &c0}, {Core: &c1}},
	)
	require.ErrorIs(t, err, errMixedProcessors)
}

func TestBuildProcessorsExpandsUnits(t *testing.T) {
	core := CoreCortexM4
	units := uint8(2)
	specs := []ProcessorSpec{{Core: &core, Units: &units}}

	procs, err := buildProcessors(specs, nil)
	require.NoError(t, err)
	require.Len(t, procs, 2)
	require.Equal(t, uint8(0), procs[0].Unit)
	require.Equal(t, uint8(1), procs[1].Unit)
	require.Equal(t, FPUNone, procs[0].FPU)
	require.Equal(t, MPUNotPresent, procs[0].MPU)
}

func TestBuildProcessorsMatchesDebugByNameAndUnit(t *testing.T) {
	core := CoreCortexM4
	units := uint8(2)
	name := "cpu0"
	specs := []ProcessorSpec{{Core: &core, Units: &units, Name: &name}}

	ap := uint8(1)
	unit1 := uint8(1)
	debugs := []DebugSpec{{Name: &name, Unit: &unit1, AP: &ap}}

	procs, err := buildProcessors(specs, debugs)
	require.NoError(t, err)
	require.Equal(t, uint8(0), procs[0].AP) // no matching debug record for unit 0
	require.Equal(t, uint8(1), procs[1].AP) // matches unit 1
}

func TestBuildProcessorsFailsWithoutAnyProcessor(t *testing.T) {
	_, err := buildProcessors(nil, nil)
	require.ErrorIs(t, err, errNoProcessor)
}

func TestBuildProcessorsFailsWithoutCore(t *testing.T) {
	_, err := buildProcessors([]ProcessorSpec{{}}, nil)
	require.ErrorIs(t, err, errNoCore)
}
