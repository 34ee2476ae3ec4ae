package pdsc

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// FileCategory is the closed set a <file>'s category attribute must
// belong to (spec.md §3).
type FileCategory string

const (
	CategoryDoc              FileCategory = "doc"
	CategoryHeader            FileCategory = "header"
	CategoryInclude           FileCategory = "include"
	CategoryLibrary           FileCategory = "library"
	CategoryObject            FileCategory = "object"
	CategorySource            FileCategory = "source"
	CategorySourceC           FileCategory = "sourceC"
	CategorySourceCpp         FileCategory = "sourceCpp"
	CategorySourceAsm         FileCategory = "sourceAsm"
	CategoryLinkerScript      FileCategory = "linkerScript"
	CategoryUtility           FileCategory = "utility"
	CategoryImage             FileCategory = "image"
	CategoryPreIncludeGlobal  FileCategory = "preIncludeGlobal"
	CategoryPreIncludeLocal   FileCategory = "preIncludeLocal"
	CategoryOther             FileCategory = "other"
)

func parseFileCategory(raw string) (FileCategory, error) {
	switch FileCategory(raw) {
	case CategoryDoc, CategoryHeader, CategoryInclude, CategoryLibrary, CategoryObject,
		CategorySource, CategorySourceC, CategorySourceCpp, CategorySourceAsm,
		CategoryLinkerScript, CategoryUtility, CategoryImage,
		CategoryPreIncludeGlobal, CategoryPreIncludeLocal, CategoryOther:
		return FileCategory(raw), nil
	default:
		return "", errors.Errorf("pdsc: unknown file category %q", raw)
	}
}

// FileAttribute is the closed set a <file>'s attr attribute may hold
// (spec.md §3).
type FileAttribute string

const (
	AttrConfig   FileAttribute = "config"
	AttrTemplate FileAttribute = "template"
)

func parseFileAttribute(raw string) (FileAttribute, error) {
	switch FileAttribute(raw) {
	case AttrConfig, AttrTemplate:
		return FileAttribute(raw), nil
	default:
		return "", errors.Errorf("pdsc: unknown file attribute %q", raw)
	}
}

// FileRef is one file entry inside a component (spec.md §3).
type FileRef struct {
	Path      string         `json:"path"`
	Category  FileCategory   `json:"category"`
	Attr      *FileAttribute `json:"attr,omitempty"`
	Condition *string        `json:"condition,omitempty"`
	Select    *string        `json:"select,omitempty"`
	Src       *string        `json:"src,omitempty"`
	Version   *string        `json:"version,omitempty"`
}

func fileRefFromElement(e xmlutil.Element) (FileRef, error) {
	if err := xmlutil.AssertRootName(e, "file"); err != nil {
		return FileRef{}, err
	}
	name, err := xmlutil.AttrMap(e, "name")
	if err != nil {
		return FileRef{}, err
	}
	rawCat, err := xmlutil.AttrMap(e, "category")
	if err != nil {
		return FileRef{}, err
	}
	category, err := parseFileCategory(rawCat)
	if err != nil {
		return FileRef{}, err
	}

	fr := FileRef{
		Path:      strings.ReplaceAll(name, "\\", "/"),
		Category:  category,
		Condition: optionalAttrPtr(e, "condition"),
		Select:    optionalAttrPtr(e, "select"),
		Src:       optionalAttrPtr(e, "src"),
		Version:   optionalAttrPtr(e, "version"),
	}
	if rawAttr, ok := xmlutil.AttrMapOptional(e, "attr"); ok {
		if a, err := parseFileAttribute(rawAttr); err == nil {
			fr.Attr = &a
		}
	}
	return fr, nil
}
