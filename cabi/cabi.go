// Package cabi is the handle-returning facade the cgo shim in
// cmd/libcmsis-pack-manager wraps with //export functions (spec.md §6,
// "FFI surface"). It is pure Go — no `import "C"` here — so it can be
// exercised directly by tests without a cgo build.
//
// Every long-running operation is started on its own goroutine behind an
// updatepoll.Poll and handed back as an opaque uint64 handle; the caller
// drives it to completion with repeated poll/get-status calls the way the
// original implementation's host (a GUI event loop) must, since neither
// can block a UI thread on a multi-minute crawl-and-download run.
package cabi

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/pyocd/cmsis-pack-manager/config"
	"github.com/pyocd/cmsis-pack-manager/progress"
	"github.com/pyocd/cmsis-pack-manager/update"
	"github.com/pyocd/cmsis-pack-manager/updatepoll"
)

var errUnknownHandle = errors.New("cabi: unknown job handle")

// job bundles one in-flight update run with the progress sink the caller
// can poll for live byte/file counts (spec.md §4.9).
type job struct {
	poll   *updatepoll.Poll[update.Result]
	status *progress.Channel
}

// resultCursor hands out one path at a time from a finished run's output,
// so the C side can pull results through a fixed-arity "next" call instead
// of crossing the boundary with a whole slice at once.
type resultCursor struct {
	paths []string
	pos   int
}

func (c *resultCursor) next() (string, bool) {
	if c.pos >= len(c.paths) {
		return "", false
	}
	p := c.paths[c.pos]
	c.pos++
	return p, true
}

var (
	jobs    = newRegistry[*job]()
	results = newRegistry[*resultCursor]()
)

// UpdatePdscIndex starts an asynchronous vendor-index crawl and descriptor
// download rooted at packStore (spec.md §6, "update_pdsc_index"). If
// vidxListOverride is non-empty, it is read instead of the pack store's
// own vendor-index seed file. Returns a job handle, or 0 on failure (with
// the error retrievable via ErrGetLastMessage).
func UpdatePdscIndex(packStore, vidxListOverride string) uint64 {
	return Landingpad(func() (uint64, error) {
		cfg, err := config.New(packStore)
		if err != nil {
			return 0, err
		}

		var seeds []string
		if vidxListOverride != "" {
			seeds, err = config.ReadVendorIndexListFrom(vidxListOverride)
			if err != nil {
				return 0, err
			}
		}

		status := progress.NewChannel(64)
		client := http.DefaultClient

		work := func(ctx context.Context) (update.Result, error) {
			defer status.Close()
			if vidxListOverride != "" {
				return update.IndexWithSeeds(ctx, cfg, client, seeds, status)
			}
			return update.Index(ctx, cfg, client, status)
		}

		j := &job{poll: updatepoll.Start(context.Background(), work), status: status}
		return jobs.put(j), nil
	})
}

// UpdatePdscInstall starts an asynchronous pack-archive download of the
// latest release of each descriptor in pdscPaths (spec.md §6,
// "update_pdsc_install" / "install"). Returns a job handle, or 0 on failure.
func UpdatePdscInstall(packStore string, pdscPaths []string) uint64 {
	return Landingpad(func() (uint64, error) {
		cfg, err := config.New(packStore)
		if err != nil {
			return 0, err
		}

		status := progress.NewChannel(64)
		client := http.DefaultClient

		work := func(ctx context.Context) (update.Result, error) {
			defer status.Close()
			return update.Install(ctx, cfg, client, pdscPaths, status)
		}

		j := &job{poll: updatepoll.Start(context.Background(), work), status: status}
		return jobs.put(j), nil
	})
}

// UpdatePdscPoll reports whether the job behind handle has finished
// (spec.md §6, "update_pdsc_poll"). A missing handle reports done so a
// caller that raced a Free doesn't spin forever.
func UpdatePdscPoll(handle uint64) bool {
	j, ok := jobs.get(handle)
	if !ok {
		return true
	}
	return j.poll.Poll()
}

// StatusSnapshot mirrors progress.Update for the C side, which can't see
// Go struct field names but can read three plain integers.
type StatusSnapshot struct {
	Total      int
	BytesSoFar int
	Completed  int
}

// UpdatePdscGetStatus returns the latest progress snapshot for a running
// job without consuming anything (spec.md §4.9, "update_pdsc_get_status").
// Safe to call repeatedly while the job runs and after it completes.
func UpdatePdscGetStatus(handle uint64) (StatusSnapshot, bool) {
	j, ok := jobs.get(handle)
	if !ok {
		return StatusSnapshot{}, false
	}
	u := j.status.Latest()
	return StatusSnapshot{Total: u.Total, BytesSoFar: u.BytesSoFar, Completed: u.Completed}, true
}

// UpdatePdscResult drains the finished job behind handle and stores its
// output paths in a resultCursor, returning a fresh handle for
// UpdatePdscResultNext to pull from (spec.md §6, "update_pdsc_result").
// Returns 0 if the job isn't complete yet or the handle is unknown.
func UpdatePdscResult(handle uint64) uint64 {
	return Landingpad(func() (uint64, error) {
		j, ok := jobs.get(handle)
		if !ok {
			return 0, errUnknownHandle
		}
		res, err := j.poll.Result()
		if err != nil {
			return 0, err
		}
		return results.put(&resultCursor{paths: res.Paths}), nil
	})
}

// UpdatePdscResultNext pops the next output path off a result cursor
// (spec.md §6, "update_pdsc_index_next"). The bool is false once the
// cursor is exhausted or the handle is unknown.
func UpdatePdscResultNext(handle uint64) (string, bool) {
	c, ok := results.get(handle)
	if !ok {
		return "", false
	}
	return c.next()
}

// UpdatePdscIndexFree releases a job handle, cancelling its work if still
// running (spec.md §6, "update_pdsc_index_free").
func UpdatePdscIndexFree(handle uint64) {
	if j, ok := jobs.get(handle); ok {
		j.poll.Cancel()
		j.status.Close()
	}
	jobs.delete(handle)
}

// UpdatePdscResultFree releases a result-cursor handle.
func UpdatePdscResultFree(handle uint64) {
	results.delete(handle)
}

// ErrGetLastMessage consumes and returns the calling goroutine's last
// recorded error message (spec.md §6, "err_get_last_message"). The bool
// is false if no error is pending.
func ErrGetLastMessage() (string, bool) {
	return takeLastError()
}
