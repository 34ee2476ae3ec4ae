package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCreatesPackStore(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "store")

	cfg, err := New(store)
	require.NoError(t, err)
	require.Equal(t, store, cfg.PackStore)
	require.Equal(t, 32, cfg.MaxConcurrentDownloads)
	require.Equal(t, 6, cfg.MaxConcurrentPerHost)

	info, err := os.Stat(store)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestNewAppliesTomlOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, tomlConfigName),
		[]byte("max_concurrent_downloads = 8\nmax_concurrent_per_host = 2\n"),
		0o644,
	))

	cfg, err := New(dir)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.MaxConcurrentDownloads)
	require.Equal(t, 2, cfg.MaxConcurrentPerHost)
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestReadVendorIndexListCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	require.NoError(t, err)

	urls, err := cfg.ReadVendorIndexList()
	require.NoError(t, err)
	require.Equal(t, []string{DefaultVendorIndexURL}, urls)

	data, err := os.ReadFile(cfg.VendorIndexListPath())
	require.NoError(t, err)
	require.Contains(t, string(data), DefaultVendorIndexURL)
}

func TestReadVendorIndexListDropsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	require.NoError(t, err)

	content := "https://a.example/x.pidx\n\n# comment\nnot-a-url\nhttp://b.example/y.pidx\n"
	require.NoError(t, os.WriteFile(cfg.VendorIndexListPath(), []byte(content), 0o644))

	urls, err := cfg.ReadVendorIndexList()
	require.NoError(t, err)
	require.Equal(t, []string{"https://a.example/x.pidx", "http://b.example/y.pidx"}, urls)
}
