package pdsc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

const samplePackageXML = `<package schemaVersion="1.7.0">
	<name>Sample_Pack</name>
	<description>A sample pack for testing</description>
	<vendor>ACME</vendor>
	<url>http://example.com/packs/</url>
	<license>LICENSE.txt</license>
	<releases>
		<release version="2.0.0">Second release</release>
		<release version="1.0.0">First release</release>
	</releases>
	<conditions>
		<condition id="ARM Device">
			<accept Dvendor="ARM:82"/>
		</condition>
	</conditions>
	<components>
		<component Cclass="Device" Cgroup="Startup" Cversion="1.0.0" condition="ARM Device">
			<description>Startup</description>
			<files>
				<file name="startup.c" category="sourceC"/>
			</files>
		</component>
		<component Cclass="Device" Cgroup="NoVersion">
			<description>Falls back to package version</description>
		</component>
	</components>
	<devices>
		<family Dfamily="Sample" Dvendor="ACME:1">
			<processor Dcore="Cortex-M4"/>
			<device Dname="SampleDevice">
				<memory id="IROM1" start="0x0" size="0x1000"/>
			</device>
		</family>
	</devices>
	<boards>
		<board name="Sample Board">
			<mountedDevice Dname="SampleDevice"/>
		</board>
	</boards>
</package>`

func TestFromElementParsesFullPackage(t *testing.T) {
	p, err := xmlutil.FromString(FromElement, samplePackageXML)
	require.NoError(t, err)

	require.Equal(t, "Sample_Pack", p.Name)
	require.Equal(t, "ACME", p.Vendor)
	require.Equal(t, "2.0.0", p.Releases.LatestRelease().Version)
	require.Len(t, p.Conditions, 1)
	require.Len(t, p.Devices, 1)
	require.Len(t, p.Boards, 1)
}

func TestMakeComponentsAppliesPackageDefaults(t *testing.T) {
	p, err := xmlutil.FromString(FromElement, samplePackageXML)
	require.NoError(t, err)

	comps := p.MakeComponents()
	require.Len(t, comps, 2)

	require.Equal(t, "ACME", comps[0].Vendor)
	require.Equal(t, "1.0.0", comps[0].Version)
	require.Equal(t, "2.0.0", comps[1].Version) // falls back to latest release
}

func TestMakeDumpDevicesStampsFromPack(t *testing.T) {
	p, err := xmlutil.FromString(FromElement, samplePackageXML)
	require.NoError(t, err)

	dumps := p.MakeDumpDevices()
	require.Len(t, dumps, 1)
	require.Equal(t, "ACME", dumps[0].FromPack.Vendor)
	require.Equal(t, "Sample_Pack", dumps[0].FromPack.Pack)
	require.Equal(t, "2.0.0", dumps[0].FromPack.Version)
}

func TestFromElementMissingReleasesIsWarnedNotFatal(t *testing.T) {
	doc := `<package>
		<name>N</name>
		<description>D</description>
		<vendor>V</vendor>
		<url>U</url>
	</package>`

	p, err := xmlutil.FromString(FromElement, doc)
	require.NoError(t, err)
	require.Empty(t, p.Releases)
	require.NotEmpty(t, p.Warnings)
}

func TestFromElementWrongRoot(t *testing.T) {
	_, err := xmlutil.FromString(FromElement, `<notPackage/>`)
	require.ErrorIs(t, err, xmlutil.ErrWrongRoot)
}
