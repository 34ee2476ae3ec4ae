package pdsc

import (
	"strings"

	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// Algorithm describes a flash programming algorithm (spec.md §3).
type Algorithm struct {
	FileName string  `json:"file_name"`
	Start    uint64  `json:"start"`
	Size     uint64  `json:"size"`
	Default  bool    `json:"default"`
	RAMStart *uint64 `json:"ram_start,omitempty"`
	RAMSize  *uint64 `json:"ram_size,omitempty"`
}

func algorithmFromElement(e xmlutil.Element) (Algorithm, error) {
	name, err := xmlutil.AttrMap(e, "name")
	if err != nil {
		return Algorithm{}, err
	}
	start, err := xmlutil.AttrParseHex(e, "start")
	if err != nil {
		return Algorithm{}, err
	}
	size, err := xmlutil.AttrParseHex(e, "size")
	if err != nil {
		return Algorithm{}, err
	}

	a := Algorithm{
		FileName: strings.ReplaceAll(name, "\\", "/"),
		Start:    start,
		Size:     size,
		Default:  optionalBool(e, "default"),
	}
	if v, err := xmlutil.AttrParseHex(e, "RAMstart"); err == nil {
		a.RAMStart = &v
	}
	if v, err := xmlutil.AttrParseHex(e, "RAMsize"); err == nil {
		a.RAMSize = &v
	}
	return a, nil
}
