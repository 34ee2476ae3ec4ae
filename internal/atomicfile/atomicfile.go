// Package atomicfile writes a file so that readers never observe a
// partial write: marshal to a temp file in the destination's directory,
// then rename into place, falling back to a copy when the rename crosses
// a filesystem boundary.
//
// This is the same write-to-temp-then-rename shape golang/dep's
// SafeWriter uses for its manifest/lock/vendor writes, stripped down to
// the single-file case the catalog aggregator needs.
package atomicfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"

	shutil "github.com/termie/go-shutil"

	"github.com/pkg/errors"
)

// WriteJSON marshals v as pretty-printed JSON and writes it to path
// atomically (spec.md §4.8: "Write the merged map as pretty-printed
// JSON").
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "atomicfile: marshaling %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "atomicfile: creating directory for %s", path)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "atomicfile: creating temp file for %s", path)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrapf(err, "atomicfile: writing %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "atomicfile: closing %s", tmpPath)
	}

	if err := renameWithFallback(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "atomicfile: finalizing %s", path)
	}
	return nil
}

func renameWithFallback(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	linkErr, ok := err.(*os.LinkError)
	if !ok || linkErr.Err != syscall.EXDEV {
		return err
	}

	if cerr := shutil.CopyFile(src, dst, true); cerr != nil {
		return cerr
	}
	return os.Remove(src)
}
