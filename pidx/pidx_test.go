package pidx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

func TestPackageRefFromElementMissingAttr(t *testing.T) {
	bad := []string{
		`<pdsc/>`,
		`<pdsc url="U" name="N" version="V"/>`, // vendor absent
		`<pdsc vendor="V" name="N" version="V"/>`,
		`<pdsc vendor="V" url="U" version="V"/>`,
		`<pdsc vendor="V" url="U" name="N"/>`,
	}
	for _, s := range bad {
		_, err := xmlutil.FromString(PackageRefFromElement, s)
		require.Error(t, err, s)
	}
}

func TestPackageRefMissingVendorNamesField(t *testing.T) {
	_, err := xmlutil.FromString(PackageRefFromElement, `<pdsc url="U" name="N" version="V"/>`)
	require.ErrorContains(t, err, "vendor")
}

func TestPackageRefFromElementWrongRoot(t *testing.T) {
	_, err := xmlutil.FromString(PackageRefFromElement, `<notPdsc vendor="V" url="U" name="N" version="V"/>`)
	require.ErrorIs(t, err, xmlutil.ErrWrongRoot)
}

func TestPackageRefFromElementOptionals(t *testing.T) {
	ref, err := xmlutil.FromString(PackageRefFromElement,
		`<pdsc vendor="V" url="U" name="N" version="1.2.3-alpha" date="D" deprecated="true" replacement="R" size="8MB"/>`)
	require.NoError(t, err)
	require.Equal(t, "D", *ref.Date)
	require.Equal(t, "true", *ref.Deprecated)
	require.Equal(t, "R", *ref.Replacement)
	require.Equal(t, "8MB", *ref.Size)
}

func TestVendorIndexEntryIndexURL(t *testing.T) {
	v := VendorIndexEntry{URL: "http://x/", Vendor: "V"}
	require.Equal(t, "http://x/V.pidx", v.IndexURL())
}

func TestPackageRefDescriptorURL(t *testing.T) {
	p := PackageRef{URL: "http://x", Vendor: "V", Name: "N", Version: "1.0"}
	require.Equal(t, "http://x/V.N.pdsc", p.DescriptorURL())

	p.URL = "http://x/"
	require.Equal(t, "http://x/V.N.pdsc", p.DescriptorURL())
}

func TestParseVendorIndex(t *testing.T) {
	doc := `<index>
		<vendor>Keil</vendor>
		<url>http://www.keil.com/pack/</url>
		<timestamp>2020-01-01</timestamp>
		<pindex>
			<pdsc vendor="ARM" url="http://x/" name="CMSIS" version="5.0.0"/>
		</pindex>
		<vindex>
			<pidx vendor="NXP" url="http://y/"/>
		</vindex>
	</index>`

	vi, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, "Keil", vi.Vendor)
	require.Equal(t, "http://www.keil.com/pack/", vi.URL)
	require.NotNil(t, vi.Timestamp)
	require.Len(t, vi.Packages, 1)
	require.Equal(t, "CMSIS", vi.Packages[0].Name)
	require.Len(t, vi.SubIndices, 1)
	require.Equal(t, "http://y/NXP.pidx", vi.SubIndices[0].IndexURL())
}

func TestParseVendorIndexWrongRoot(t *testing.T) {
	_, err := Parse([]byte(`<notindex><vendor>Keil</vendor><url>http://x/</url></notindex>`))
	require.ErrorIs(t, err, xmlutil.ErrWrongRoot)
}

func TestParseVendorIndexMissingRequiredChild(t *testing.T) {
	_, err := Parse([]byte(`<index><vendor>Keil</vendor></index>`))
	require.Error(t, err)
}
