// Package fetch implements the HTTP fetch primitive (spec.md §4.5, C5): one
// URL retrieved to one local path, with redirect following, streamed
// progress reporting, and a tmp-file-then-rename write so a reader never
// observes a partially written destination.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"syscall"

	shutil "github.com/termie/go-shutil"

	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/progress"
)

// MaxRedirects bounds the redirect hops Fetch will follow before giving up
// (spec.md §4.5: "Follow at least five redirect hops").
const MaxRedirects = 5

// partSuffix is appended to destPath while a download is in flight
// (spec.md §4.5, §5: "a .part file left by an aborted process is
// overwritten on the next run").
const partSuffix = ".part"

// StatusError reports an HTTP response status >= 400 (spec.md §4.5).
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch: %s: HTTP status %d", e.URL, e.Code)
}

// Client is the subset of *http.Client Fetch needs; tests substitute a
// fake. A real Client must not itself follow redirects (CheckRedirect
// should return http.ErrUseLastResponse) so Fetch can implement the hop
// count and relative-Location resolution itself.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns an *http.Client configured the way Fetch expects:
// redirects handled manually.
func NewHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Fetch retrieves uri to destPath (spec.md §4.5).
//
// If destPath already exists, Fetch returns immediately without making any
// network request — downloads are idempotent because pack-store filenames
// encode version (spec.md §6, "Local layout"). Otherwise it creates
// destPath's parent directory, streams the response body into
// destPath+".part" while reporting each chunk's length to sink, and
// atomically renames the part file into place on success.
//
// On an HTTP status >= 400, Fetch fails with *StatusError. On any I/O
// failure, the .part file is removed before returning the error.
func Fetch(ctx context.Context, client Client, uri, destPath string, sink progress.Sink) (string, error) {
	if sink == nil {
		sink = progress.Nop{}
	}

	if _, err := os.Stat(destPath); err == nil {
		return destPath, nil
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "fetch: stat %s", destPath)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", errors.Wrapf(err, "fetch: creating parent directory for %s", destPath)
	}

	partPath := destPath + partSuffix
	resp, finalURL, err := doWithRedirects(ctx, client, uri)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &StatusError{URL: finalURL, Code: resp.StatusCode}
	}

	if err := stream(partPath, resp.Body, sink); err != nil {
		os.Remove(partPath)
		return "", errors.Wrapf(err, "fetch: writing %s", partPath)
	}

	if err := atomicRename(partPath, destPath); err != nil {
		os.Remove(partPath)
		return "", errors.Wrapf(err, "fetch: finalizing %s", destPath)
	}
	return destPath, nil
}

func doWithRedirects(ctx context.Context, client Client, uri string) (*http.Response, string, error) {
	current := uri
	for hop := 0; hop <= MaxRedirects; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return nil, "", errors.Wrapf(err, "fetch: building request for %s", current)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, "", errors.Wrapf(err, "fetch: requesting %s", current)
		}

		if resp.StatusCode < 300 || resp.StatusCode >= 400 {
			return resp, current, nil
		}

		loc := resp.Header.Get("Location")
		resp.Body.Close()
		if loc == "" {
			return nil, "", errors.Errorf("fetch: redirect from %s with no Location header", current)
		}

		next, err := resolveLocation(current, loc)
		if err != nil {
			return nil, "", errors.Wrapf(err, "fetch: resolving redirect Location %q", loc)
		}
		current = next
	}
	return nil, "", errors.Errorf("fetch: too many redirects (>%d) starting from %s", MaxRedirects, uri)
}

// resolveLocation resolves a possibly-relative Location header against the
// previous absolute URL (spec.md §4.5).
func resolveLocation(prevAbsolute, location string) (string, error) {
	base, err := url.Parse(prevAbsolute)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func stream(partPath string, body io.Reader, sink progress.Sink) error {
	f, err := os.Create(partPath)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return werr
			}
			sink.Progress(n)
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// atomicRename moves src to dst. When the rename fails because src and dst
// live on different filesystems (syscall.EXDEV — common in containerized
// pack-store mounts), it falls back to a copy-then-remove using
// github.com/termie/go-shutil, the same fallback golang/dep's internal fs
// package implements for its own "write to temp dir, then move into place"
// transactional writer.
func atomicRename(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	linkErr, ok := err.(*os.LinkError)
	if !ok || linkErr.Err != syscall.EXDEV {
		return err
	}

	if cerr := shutil.CopyFile(src, dst, true); cerr != nil {
		return errors.Wrapf(cerr, "rename fallback: copying %s to %s", src, dst)
	}
	return os.Remove(src)
}
