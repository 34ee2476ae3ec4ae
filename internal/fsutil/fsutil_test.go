package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsDirReportsDirectory(t *testing.T) {
	dir := t.TempDir()
	isDir, err := IsDir(dir)
	require.NoError(t, err)
	require.True(t, isDir)
}

func TestIsDirReportsFalseForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.pdsc")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	isDir, err := IsDir(path)
	require.NoError(t, err)
	require.False(t, isDir)
}

func TestIsDirReportsFalseForMissingPath(t *testing.T) {
	isDir, err := IsDir(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	require.False(t, isDir)
}

func TestIsRegularReportsTrueForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.pdsc")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	isRegular, err := IsRegular(path)
	require.NoError(t, err)
	require.True(t, isRegular)
}

func TestIsRegularReportsFalseForDirectory(t *testing.T) {
	isRegular, err := IsRegular(t.TempDir())
	require.NoError(t, err)
	require.False(t, isRegular)
}

func TestIsRegularReportsFalseForMissingPath(t *testing.T) {
	isRegular, err := IsRegular(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	require.False(t, isRegular)
}
