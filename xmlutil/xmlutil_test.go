package xmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"0x10", 16},
		{"010", 8},
		{"10", 10},
		{"0x0", 0},
		{"0", 0},
	}
	for _, c := range cases {
		got, err := ParseNumber(c.in)
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, got, c.in)
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "1"} {
		v, err := ParseBool(s)
		require.NoError(t, err)
		require.True(t, v)
	}
	for _, s := range []string{"false", "0"} {
		v, err := ParseBool(s)
		require.NoError(t, err)
		require.False(t, v)
	}
	_, err := ParseBool("yes")
	require.Error(t, err)
}

func TestAssertRootName(t *testing.T) {
	root, err := Parse([]byte(`<pdsc url="U" name="N" version="V"/>`))
	require.NoError(t, err)

	require.NoError(t, AssertRootName(root, "pdsc"))
	err = AssertRootName(root, "package")
	require.ErrorIs(t, err, ErrWrongRoot)
}

func TestAttrMapMissing(t *testing.T) {
	root, err := Parse([]byte(`<pdsc url="U" name="N" version="V"/>`))
	require.NoError(t, err)

	_, err = AttrMap(root, "vendor")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAttrMapOptionalPresent(t *testing.T) {
	root, err := Parse([]byte(`<pdsc url="U" vendor="V" name="N" version="1.2.3-alpha" date="D" deprecated="true" replacement="R" size="8MB"/>`))
	require.NoError(t, err)

	for attr, want := range map[string]string{
		"date":        "D",
		"deprecated":  "true",
		"replacement": "R",
		"size":        "8MB",
	} {
		v, ok := AttrMapOptional(root, attr)
		require.True(t, ok, attr)
		require.Equal(t, want, v, attr)
	}
}

func TestChildText(t *testing.T) {
	root, err := Parse([]byte(`<index><vendor>Keil</vendor><url>http://x/</url></index>`))
	require.NoError(t, err)

	v, err := ChildText(root, "vendor")
	require.NoError(t, err)
	require.Equal(t, "Keil", v)

	_, err = ChildText(root, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVecFromChildrenDropsMalformed(t *testing.T) {
	root, err := Parse([]byte(`<files><file path="a.c"/><file/><file path="b.c"/></files>`))
	require.NoError(t, err)

	parse := func(e Element) (string, error) {
		return AttrMap(e, "path")
	}
	got := VecFromChildren(parse, root.Children())
	require.Equal(t, []string{"a.c", "b.c"}, got)
}

func TestLocalNameIgnoresNamespace(t *testing.T) {
	root, err := Parse([]byte(`<package xmlns:xs="http://www.w3.org/2001/XMLSchema-instance"><xs:name>foo</xs:name></package>`))
	require.NoError(t, err)
	require.Equal(t, "package", root.LocalName())
	v, err := ChildText(root, "name")
	require.NoError(t, err)
	require.Equal(t, "foo", v)
}
