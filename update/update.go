// Package update wires the crawler (C6), downloader (C7) and fetch
// primitive (C5) together into the two top-level operations named in
// spec.md §6's CLI surface: "update" (resolve vendor indices and fetch
// all referenced descriptors) and "install" (given descriptor paths,
// fetch the pack archives). Both the CLI and the FFI facade call into
// this package rather than duplicating the wiring.
package update

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/catalog"
	"github.com/pyocd/cmsis-pack-manager/config"
	"github.com/pyocd/cmsis-pack-manager/crawl"
	"github.com/pyocd/cmsis-pack-manager/download"
	"github.com/pyocd/cmsis-pack-manager/fetch"
	"github.com/pyocd/cmsis-pack-manager/internal/fsutil"
	"github.com/pyocd/cmsis-pack-manager/pdsc"
	"github.com/pyocd/cmsis-pack-manager/pidx"
	"github.com/pyocd/cmsis-pack-manager/progress"
	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// Result reports what an Index or Install run produced.
type Result struct {
	Paths    []string
	Failures []download.Failure
}

// Index resolves every vendor index reachable from the config's seed
// list and downloads each referenced package descriptor into the pack
// store's flat layout (spec.md §6, "Local layout": "<store>/<vendor>.
// <name>.<version>.pdsc").
func Index(ctx context.Context, cfg *config.Config, client fetch.Client, sink progress.Sink) (Result, error) {
	seeds, err := cfg.ReadVendorIndexList()
	if err != nil {
		return Result{}, err
	}
	return IndexWithSeeds(ctx, cfg, client, seeds, sink)
}

// IndexWithSeeds is Index with an explicit seed list, bypassing the
// config's own vendor-index seed file — the path the FFI facade's
// vidx_list override takes (spec.md §6).
func IndexWithSeeds(ctx context.Context, cfg *config.Config, client fetch.Client, seeds []string, sink progress.Sink) (Result, error) {
	refs, err := crawl.Crawl(ctx, seeds, vendorIndexFetcher(client), sink)
	if err != nil {
		return Result{}, err
	}

	jobs := make([]download.Job, 0, len(refs))
	for _, ref := range refs {
		dest := filepath.Join(cfg.PackStore, ref.Vendor+"."+ref.Name+"."+ref.Version+".pdsc")
		job, err := download.JobFromURI(ref.DescriptorURL(), dest)
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}

	d := download.New(fetchFunc(client)).WithCaps(cfg.MaxConcurrentDownloads, cfg.MaxConcurrentPerHost)
	defer d.Close()

	results, failures, err := download.Download(ctx, d, jobs, sink)
	return Result{Paths: results, Failures: failures}, err
}

// Install parses each descriptor in pdscPaths and downloads the archive
// of its latest release, nested as "<store>/<vendor>/<name>/
// <version>.pack" (spec.md §6). Older releases are not downloaded, and a
// descriptor with no releases is skipped.
func Install(ctx context.Context, cfg *config.Config, client fetch.Client, pdscPaths []string, sink progress.Sink) (Result, error) {
	var jobs []download.Job
	for _, path := range pdscPaths {
		p, err := xmlutil.FromPath(pdsc.FromElement, path)
		if err != nil {
			return Result{}, errors.Wrapf(err, "update: parsing %s", path)
		}
		if len(p.Releases) == 0 {
			continue
		}
		version := p.Releases.LatestRelease().Version
		ref := pidx.PackageRef{URL: p.URL, Vendor: p.Vendor, Name: p.Name, Version: version}

		dest := filepath.Join(cfg.PackStore, p.Vendor, p.Name, version+".pack")
		job, err := download.JobFromURI(ref.ArchiveURL(), dest)
		if err != nil {
			return Result{}, err
		}
		jobs = append(jobs, job)
	}

	d := download.New(fetchFunc(client)).WithCaps(cfg.MaxConcurrentDownloads, cfg.MaxConcurrentPerHost)
	defer d.Close()

	results, failures, err := download.Download(ctx, d, jobs, sink)
	return Result{Paths: results, Failures: failures}, err
}

// DumpCatalog reads every descriptor under input (a directory or a
// single file) and writes the aggregated device/board/component JSON
// (spec.md §4.8, §6's "dump-devices" operation).
func DumpCatalog(input, devicesPath, boardsPath, componentsPath string) error {
	packages, err := readInput(input)
	if err != nil {
		return err
	}
	if err := catalog.DumpDevices(packages, devicesPath); err != nil {
		return err
	}
	if err := catalog.DumpBoards(packages, boardsPath); err != nil {
		return err
	}
	if componentsPath != "" {
		if err := catalog.DumpComponents(packages, componentsPath); err != nil {
			return err
		}
	}
	return nil
}

func readInput(input string) ([]pdsc.Package, error) {
	isDir, err := fsutil.IsDir(input)
	if err != nil {
		return nil, errors.Wrapf(err, "update: reading %s", input)
	}
	if isDir {
		return catalog.ReadDescriptors(input)
	}
	p, err := xmlutil.FromPath(pdsc.FromElement, input)
	if err != nil {
		return nil, err
	}
	return []pdsc.Package{p}, nil
}

// vendorIndexFetcher adapts fetch.Fetch (which writes to a destination
// path) into a crawl.Fetcher (which hands back a parsed *pidx.
// VendorIndex): each vidx/pidx document is fetched to a scratch file,
// parsed, and discarded — only the derived PackageRefs persist.
func vendorIndexFetcher(client fetch.Client) crawl.Fetcher {
	return func(ctx context.Context, url string) (*pidx.VendorIndex, error) {
		tmp, err := os.CreateTemp("", "cpackman-vidx-*.xml")
		if err != nil {
			return nil, errors.Wrap(err, "update: creating scratch file")
		}
		tmpPath := tmp.Name()
		tmp.Close()
		os.Remove(tmpPath) // fetch.Fetch must create it fresh to write the response
		defer os.Remove(tmpPath)

		if _, err := fetch.Fetch(ctx, client, url, tmpPath, nil); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return nil, errors.Wrapf(err, "update: reading fetched index %s", url)
		}
		return pidx.Parse(data)
	}
}

func fetchFunc(client fetch.Client) download.FetchFunc {
	return func(ctx context.Context, uri, destPath string, sink progress.Sink) (string, error) {
		return fetch.Fetch(ctx, client, uri, destPath, sink)
	}
}
