package pdsc

import (
	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// Release is one entry in a package's release history (spec.md §3).
type Release struct {
	Version string
	Text    string
}

func releaseFromElement(e xmlutil.Element) (Release, error) {
	if err := xmlutil.AssertRootName(e, "release"); err != nil {
		return Release{}, err
	}
	version, err := xmlutil.AttrMap(e, "version")
	if err != nil {
		return Release{}, err
	}
	return Release{Version: version, Text: xmlutil.ElementText(e)}, nil
}

// Releases is the non-empty, declaration-ordered release history of a
// package; index 0 is the latest release (spec.md §3: "a non-empty
// ordered sequence is required on every package; index 0 is the 'latest
// release'").
type Releases []Release

// LatestRelease returns element 0 (spec.md §8: "latestRelease(package).
// version == package.releases[0].version").
func (r Releases) LatestRelease() Release {
	return r[0]
}

// ErrNoReleases is returned when a <releases> block yields no usable
// entries (spec.md §4.3: "Releases: must be non-empty on success; empty
// releases is an error").
var ErrNoReleases = errors.New("pdsc: a package must declare at least one release")

func releasesFromElement(e xmlutil.Element, w *warnings) (Releases, error) {
	if err := xmlutil.AssertRootName(e, "releases"); err != nil {
		return nil, err
	}
	out := xmlutil.VecFromChildren(releaseFromElement, e.Children())
	if len(out) == 0 {
		return nil, ErrNoReleases
	}
	for _, r := range out {
		if _, err := semver.NewVersion(r.Version); err != nil {
			w.add("release %q is not a valid semantic version: %v", r.Version, err)
		}
	}
	return out, nil
}
