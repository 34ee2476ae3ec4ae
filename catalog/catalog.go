// Package catalog implements the cross-pack catalog aggregator (spec.md
// §4.8, C8): it folds the devices, boards and components parsed out of
// many package descriptors into merged JSON documents, preserving
// entries from packs that aren't part of the current run.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/internal/atomicfile"
	"github.com/pyocd/cmsis-pack-manager/internal/fsutil"
	"github.com/pyocd/cmsis-pack-manager/pdsc"
	"github.com/pyocd/cmsis-pack-manager/xmlutil"
)

// ReadDescriptors walks dir for .pdsc files and parses each into a
// Package, dropping (and naming) any file that fails to parse rather
// than aborting the whole walk — the same best-effort policy the PDSC
// parser itself uses for malformed sub-elements.
func ReadDescriptors(dir string) ([]pdsc.Package, error) {
	var paths []string
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".pdsc") {
				paths = append(paths, path)
			}
			return nil
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "catalog: walking %s", dir)
	}

	var packages []pdsc.Package
	var failed []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			failed = append(failed, path)
			continue
		}
		root, err := xmlutil.Parse(data)
		if err != nil {
			failed = append(failed, path)
			continue
		}
		p, err := pdsc.FromElement(root)
		if err != nil {
			failed = append(failed, path)
			continue
		}
		packages = append(packages, p)
	}
	if len(failed) > 0 {
		return packages, errors.Errorf("catalog: failed to parse %d descriptor(s): %s", len(failed), strings.Join(failed, ", "))
	}
	return packages, nil
}

// DumpDevices aggregates every package's devices into one name-keyed map
// and writes it as pretty-printed JSON (spec.md §4.8, steps 1-3). When
// path is non-empty and already exists, its contents seed the output map
// so devices from packs outside this run survive the write. An empty
// path writes to standard output instead.
func DumpDevices(packages []pdsc.Package, path string) error {
	merged := make(map[string]pdsc.DumpDevice)
	if path != "" {
		if err := loadExisting(path, &merged); err != nil {
			return err
		}
	}
	for _, p := range packages {
		for _, d := range p.MakeDumpDevices() {
			merged[d.Name] = d
		}
	}
	return writeOrPrint(path, merged)
}

// DumpBoards is DumpDevices' counterpart for boards (spec.md §4.8, step
// 4): "same procedure for boards."
func DumpBoards(packages []pdsc.Package, path string) error {
	merged := make(map[string]pdsc.Board)
	if path != "" {
		if err := loadExisting(path, &merged); err != nil {
			return err
		}
	}
	for _, p := range packages {
		for _, b := range p.Boards {
			merged[b.Name] = b
		}
	}
	return writeOrPrint(path, merged)
}

// DumpComponents serializes the flattened component list across every
// package with no merge and no on-disk union (spec.md §4.8:
// "dumpsComponents serializes the flattened component list with no merge
// and no on-disk union").
func DumpComponents(packages []pdsc.Package, path string) error {
	var all []pdsc.Component
	for _, p := range packages {
		all = append(all, p.MakeComponents()...)
	}
	return writeOrPrint(path, all)
}

func loadExisting(path string, out interface{}) error {
	exists, err := fsutil.IsRegular(path)
	if err != nil {
		return errors.Wrapf(err, "catalog: checking existing %s", path)
	}
	if !exists {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "catalog: reading existing %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "catalog: parsing existing %s", path)
	}
	return nil
}

func writeOrPrint(path string, v interface{}) error {
	if path == "" {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "catalog: marshaling")
		}
		_, err = fmt.Println(string(data))
		return err
	}
	return atomicfile.WriteJSON(path, v)
}
