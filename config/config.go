// Package config resolves the on-disk configuration the core needs to
// operate: the pack-store directory and the vendor-index seed file.
//
// Discovery of *where* these live (XDG dirs, flags, environment) is the
// CLI's job, same as spec.md §1 calls out "configuration directory
// resolution" as an external collaborator. This package only knows how to
// turn a resolved root directory into a validated Config, and how to read
// or create the seed file within it.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/theckman/go-flock"

	"github.com/pyocd/cmsis-pack-manager/internal/logutil"
)

// DefaultVendorIndexURL is the well-known Keil vendor index seeded into a
// fresh vendor-index list file (spec.md §6, "Vendor-index seed file").
const DefaultVendorIndexURL = "https://www.keil.com/pack/keil.pidx"

const vendorIndexListName = "vendor_index.list"
const tomlConfigName = "cpackman.toml"

// Config is the resolved, immutable configuration the core consumes.
// The CLI and FFI layers build one of these and pass it down; the core
// never re-derives it.
type Config struct {
	// PackStore is the root of the local pack mirror (spec.md §6, "Local
	// layout").
	PackStore string

	// MaxConcurrentDownloads is the global in-flight cap for the bounded
	// downloader (spec.md §4.7, default 32).
	MaxConcurrentDownloads int

	// MaxConcurrentPerHost is the per-host in-flight cap (spec.md §4.7,
	// default 6).
	MaxConcurrentPerHost int
}

// fileConfig is the optional on-disk override, read from <packStore>/cpackman.toml
// with github.com/pelletier/go-toml, the same library the teacher uses for
// its manifest format.
type fileConfig struct {
	MaxConcurrentDownloads int `toml:"max_concurrent_downloads"`
	MaxConcurrentPerHost   int `toml:"max_concurrent_per_host"`
}

// New resolves a Config rooted at packStore, creating the directory if
// absent and applying any cpackman.toml override found inside it.
func New(packStore string) (*Config, error) {
	if packStore == "" {
		return nil, errors.New("config: pack store path must not be empty")
	}
	if err := os.MkdirAll(packStore, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating pack store %s", packStore)
	}

	cfg := &Config{
		PackStore:              packStore,
		MaxConcurrentDownloads: 32,
		MaxConcurrentPerHost:   6,
	}

	fc, err := readFileConfig(filepath.Join(packStore, tomlConfigName))
	if err != nil {
		return nil, errors.Wrap(err, "reading cpackman.toml")
	}
	if fc != nil {
		if fc.MaxConcurrentDownloads > 0 {
			cfg.MaxConcurrentDownloads = fc.MaxConcurrentDownloads
		}
		if fc.MaxConcurrentPerHost > 0 {
			cfg.MaxConcurrentPerHost = fc.MaxConcurrentPerHost
		}
	}
	return cfg, nil
}

func readFileConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var fc fileConfig
	if err := toml.NewDecoder(f).Decode(&fc); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &fc, nil
}

// VendorIndexListPath returns the path of the vendor-index seed file inside
// the pack store.
func (c *Config) VendorIndexListPath() string {
	return filepath.Join(c.PackStore, vendorIndexListName)
}

// ReadVendorIndexList reads the vendor-index seed file, one URL per line.
// If the file is absent it is created with a single DefaultVendorIndexURL
// line (spec.md §6). Concurrent creation is racy by design (spec.md §5,
// "Shared resources") since the content is a fixed default seed — the
// advisory flock below only prevents a torn write, not a duplicate-create
// race, which is harmless here.
//
// Lines that are not http:// or https:// URLs are dropped with a log, not
// an error (spec.md §6's "parse errors on individual lines are logged and
// that line is dropped"); blank lines and lines starting with "#" are
// skipped without a log.
func (c *Config) ReadVendorIndexList() ([]string, error) {
	path := c.VendorIndexListPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := c.writeDefaultVendorIndexList(path); err != nil {
			return nil, err
		}
	}
	return ReadVendorIndexListFrom(path)
}

// ReadVendorIndexListFrom parses a vendor-index seed file at an arbitrary
// path, bypassing the pack store entirely. The FFI facade's
// `update_pdsc_index` accepts an explicit vidx_list override for exactly
// this reason (spec.md §6's CLI surface describes the same override for
// the "update" operation's config resolution).
func ReadVendorIndexListFrom(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !looksLikeURL(line) {
			logutil.Vlogf("config: dropping malformed vendor-index line %q", line)
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return urls, nil
}

func (c *Config) writeDefaultVendorIndexList(path string) error {
	lock := flock.NewFlock(path + ".lock")
	locked, err := lock.TryLock()
	if err == nil && locked {
		defer lock.Unlock()
	}
	// Best-effort: proceed regardless of whether the lock was acquired, per
	// spec.md §5 — the last writer wins and the content is fixed, so a lost
	// race just means one extra identical write.
	return errors.Wrapf(
		os.WriteFile(path, []byte(DefaultVendorIndexURL+"\n"), 0o644),
		"writing default vendor index list to %s", path,
	)
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
