// Package pidx parses the two-tier CMSIS index XML: a vendor index (VIDX)
// listing package references (PIDX entries) and further vendor indices to
// crawl, and the PackageRef records within (spec.md §3, §4.2, C2).
//
// VIDX and PIDX files share one schema, rooted at <index>; this package
// does not distinguish between them structurally; the crawler (package
// crawl) is what gives the distinction operational meaning.
package pidx

import (
	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// PackageRef points at one versioned package (spec.md §3).
type PackageRef struct {
	URL         string
	Vendor      string
	Name        string
	Version     string
	Date        *string
	Deprecated  *string
	Replacement *string
	Size        *string
}

// DescriptorURL computes the .pdsc URL for this ref (spec.md §6): the base
// URL, a separating slash unless URL already ends in one, vendor, a dot,
// name, and the .pdsc suffix.
func (p PackageRef) DescriptorURL() string {
	return joinPackURL(p.URL, p.Vendor, p.Name, p.Version, "pdsc")
}

// ArchiveURL computes the .pack archive URL for this ref, using the same
// join rule as DescriptorURL but with a version-qualified suffix (spec.md
// §6: "The pack-archive URL uses the same rule with suffix .<version>.pack").
func (p PackageRef) ArchiveURL() string {
	return joinPackURL(p.URL, p.Vendor, p.Name, p.Version, p.Version+".pack")
}

func joinPackURL(base, vendor, name, version, suffix string) string {
	sep := "/"
	if len(base) > 0 && base[len(base)-1] == '/' {
		sep = ""
	}
	if suffix == "pdsc" {
		return base + sep + vendor + "." + name + ".pdsc"
	}
	return base + sep + vendor + "." + name + "." + suffix
}

// dedupKey is the "canonical pdsc URL" key used to deduplicate PackageRefs
// (spec.md §4.6): URL, vendor and name, ignoring version.
func (p PackageRef) dedupKey() string {
	return p.URL + "|" + p.Vendor + "|" + p.Name
}

// DedupKey exposes dedupKey for callers outside this package (the crawler)
// that need the same identity without re-deriving the format.
func (p PackageRef) DedupKey() string { return p.dedupKey() }

// PackageRefFromElement parses a single <pdsc> child of <pindex> into a
// PackageRef. Required
// attributes: url, vendor, name, version; optional: date, deprecated,
// replacement, size (spec.md §4.2).
func PackageRefFromElement(e xmlutil.Element) (PackageRef, error) {
	if err := xmlutil.AssertRootName(e, "pdsc"); err != nil {
		return PackageRef{}, err
	}
	var p PackageRef
	var err error
	if p.URL, err = xmlutil.AttrMap(e, "url"); err != nil {
		return PackageRef{}, err
	}
	if p.Vendor, err = xmlutil.AttrMap(e, "vendor"); err != nil {
		return PackageRef{}, err
	}
	if p.Name, err = xmlutil.AttrMap(e, "name"); err != nil {
		return PackageRef{}, err
	}
	if p.Version, err = xmlutil.AttrMap(e, "version"); err != nil {
		return PackageRef{}, err
	}
	p.Date = optionalAttr(e, "date")
	p.Deprecated = optionalAttr(e, "deprecated")
	p.Replacement = optionalAttr(e, "replacement")
	p.Size = optionalAttr(e, "size")
	return p, nil
}

func optionalAttr(e xmlutil.Element, name string) *string {
	if v, ok := xmlutil.AttrMapOptional(e, name); ok {
		return &v
	}
	return nil
}

// VendorIndexEntry points at another vendor index to crawl (spec.md §3).
type VendorIndexEntry struct {
	URL    string
	Vendor string
	Date   *string
}

// IndexURL computes the URL of the vendor index this entry refers to
// (spec.md §3, §6): url || vendor || ".pidx", concatenated with no
// separator at all — not even a slash.
func (v VendorIndexEntry) IndexURL() string {
	return v.URL + v.Vendor + ".pidx"
}

func vendorIndexEntryFromElement(e xmlutil.Element) (VendorIndexEntry, error) {
	if err := xmlutil.AssertRootName(e, "pidx"); err != nil {
		return VendorIndexEntry{}, err
	}
	var v VendorIndexEntry
	var err error
	if v.URL, err = xmlutil.AttrMap(e, "url"); err != nil {
		return VendorIndexEntry{}, err
	}
	if v.Vendor, err = xmlutil.AttrMap(e, "vendor"); err != nil {
		return VendorIndexEntry{}, err
	}
	v.Date = optionalAttr(e, "date")
	return v, nil
}

// VendorIndex is the parsed root <index> element: either a VIDX (listing
// further indices) or a PIDX (listing package descriptors), or both
// (spec.md §3).
type VendorIndex struct {
	Vendor     string
	URL        string
	Timestamp  *string
	Packages   []PackageRef
	SubIndices []VendorIndexEntry
}

// Parse parses one <index> document. The root element name must equal
// "index"; vendor and url child text are required (spec.md §4.2).
func Parse(data []byte) (*VendorIndex, error) {
	root, err := xmlutil.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "pidx: parsing index document")
	}
	return FromElement(root)
}

// FromElement implements xmlutil.FromElement[*VendorIndex] for an already
// parsed <index> element.
func FromElement(elem xmlutil.Element) (*VendorIndex, error) {
	if err := xmlutil.AssertRootName(elem, "index"); err != nil {
		return nil, err
	}

	vi := &VendorIndex{}
	var err error
	if vi.Vendor, err = xmlutil.ChildText(elem, "vendor"); err != nil {
		return nil, errors.Wrap(err, "pidx")
	}
	if vi.URL, err = xmlutil.ChildText(elem, "url"); err != nil {
		return nil, errors.Wrap(err, "pidx")
	}
	if ts, ok := xmlutil.ChildTextOptional(elem, "timestamp"); ok {
		vi.Timestamp = &ts
	}

	var pindexChildren []xmlutil.Element
	var vindexChildren []xmlutil.Element
	for _, c := range elem.Children() {
		switch c.LocalName() {
		case "pindex":
			pindexChildren = append(pindexChildren, c.Children()...)
		case "vindex":
			vindexChildren = append(vindexChildren, c.Children()...)
		case "vendor", "url", "timestamp":
			// already consumed above
		default:
			// Unknown top-level child: ignore per the best-effort policy
			// (spec.md §4.1); nothing more specific is named for <index>.
		}
	}
	vi.Packages = xmlutil.VecFromChildren(PackageRefFromElement, pindexChildren)
	vi.SubIndices = xmlutil.VecFromChildren(vendorIndexEntryFromElement, vindexChildren)
	return vi, nil
}
