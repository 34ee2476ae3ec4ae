package pdsc

import (
	"strings"

	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// MemoryPermissions are the access flags for one Memory region, either
// read from an explicit access string or derived from the region's id
// (spec.md §3).
type MemoryPermissions struct {
	Read              bool `json:"read"`
	Write             bool `json:"write"`
	Execute           bool `json:"execute"`
	Peripheral        bool `json:"peripheral"`
	Secure            bool `json:"secure"`
	NonSecure         bool `json:"non_secure"`
	NonSecureCallable bool `json:"non_secure_callable"`
}

func memoryPermissionsFromString(s string) MemoryPermissions {
	var p MemoryPermissions
	for _, c := range s {
		switch c {
		case 'r':
			p.Read = true
		case 'w':
			p.Write = true
		case 'x':
			p.Execute = true
		case 'p':
			p.Peripheral = true
		case 's':
			p.Secure = true
		case 'n':
			p.NonSecure = true
		case 'c':
			p.NonSecureCallable = true
		}
	}
	return p
}

// Memory is one named memory region of a Device (spec.md §3).
type Memory struct {
	Access  MemoryPermissions `json:"access"`
	Start   uint64            `json:"start"`
	Size    uint64            `json:"size"`
	Startup bool              `json:"startup"`
	Default bool              `json:"default"`
	PName   *string           `json:"p_name,omitempty"`
}

// memElem is the (name, Memory) pair parsed off one <memory> element;
// memory entries are keyed by name in a Device, so parsing yields the key
// alongside the value rather than a standalone FromElement.
type memElem struct {
	name string
	mem  Memory
}

func memElemFromElement(e xmlutil.Element) (memElem, error) {
	accessStr, hasAccess := xmlutil.AttrMapOptional(e, "access")
	if !hasAccess {
		memType, _ := xmlutil.AttrMapOptional(e, "id")
		switch {
		case strings.Contains(memType, "ROM"):
			accessStr = "rx"
		case strings.Contains(memType, "RAM"):
			accessStr = "rw"
		default:
			accessStr = ""
		}
	}

	name, ok := xmlutil.AttrMapOptional(e, "id")
	if !ok {
		name, ok = xmlutil.AttrMapOptional(e, "name")
		if !ok {
			return memElem{}, errNoMemoryName
		}
	}

	start, err := xmlutil.AttrParseHex(e, "start")
	if err != nil {
		return memElem{}, err
	}
	size, err := xmlutil.AttrParseHex(e, "size")
	if err != nil {
		return memElem{}, err
	}

	mem := Memory{
		Access:  memoryPermissionsFromString(accessStr),
		Start:   start,
		Size:    size,
		Startup: optionalBool(e, "startup"),
		Default: optionalBool(e, "default"),
		PName:   optionalAttrPtr(e, "Pname"),
	}
	return memElem{name: name, mem: mem}, nil
}

func optionalBool(e xmlutil.Element, attr string) bool {
	raw, ok := xmlutil.AttrMapOptional(e, attr)
	if !ok {
		return false
	}
	b, err := xmlutil.ParseBool(raw)
	if err != nil {
		return false
	}
	return b
}

// Memories maps memory region name to Memory.
type Memories map[string]Memory

// mergeMemories implements the inheritance resolver's mapping merge
// (spec.md §4.4): "parent entries are added only if the child lacks that
// key (child overrides parent)".
func mergeMemories(child Memories, parent Memories) Memories {
	out := make(Memories, len(child)+len(parent))
	for k, v := range child {
		out[k] = v
	}
	for k, v := range parent {
		if _, has := out[k]; !has {
			out[k] = v
		}
	}
	return out
}
