// Package download implements the bounded concurrent downloader (spec.md
// §4.7, C7): a set of (uri, host, destPath) jobs is scheduled under a
// global in-flight cap and a per-host in-flight cap, driving a
// progress.Sink as each job completes.
//
// Unlike golang/dep's gps.sourceCoordinator, which owns one long-lived
// goroutine per source and joins callers onto it through return channels,
// this scheduler is a one-shot fan-out over a fixed job list: concurrency
// is bounded with buffered channels used as counting semaphores and an
// errgroup.Group collects the per-job goroutines, the same pattern the
// in-tree package manager example uses for bounding registry fetches.
package download

import (
	"context"
	"net/url"
	"os"
	"sync"

	"github.com/sdboyer/constext"
	"golang.org/x/sync/errgroup"

	"github.com/pyocd/cmsis-pack-manager/progress"
)

// DefaultGlobalCap is the default global in-flight download cap (spec.md
// §4.7: "a global in-flight cap (default 32)").
const DefaultGlobalCap = 32

// DefaultPerHostCap is the default per-host in-flight download cap
// (spec.md §4.7: "a per-host in-flight cap (default 6)").
const DefaultPerHostCap = 6

// Job is one scheduled download (spec.md §4.7: "a work queue of (uri,
// host, destPath) triples").
type Job struct {
	URI      string
	Host     string
	DestPath string
}

// JobFromURI builds a Job, deriving Host from uri.
func JobFromURI(uri, destPath string) (Job, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Job{}, err
	}
	return Job{URI: uri, Host: u.Host, DestPath: destPath}, nil
}

// FetchFunc retrieves one job's URI to its destPath, reporting progress
// through sink. download.Downloader is transport-agnostic; callers
// typically bind fetch.Fetch to an *http.Client via a closure.
type FetchFunc func(ctx context.Context, uri, destPath string, sink progress.Sink) (string, error)

// Failure records one job that could not be completed (spec.md §7: "the
// downloader records the failure, drops the file, and continues").
type Failure struct {
	Job Job
	Err error
}

// Downloader schedules FetchFunc calls under the concurrency caps.
// A Downloader is reusable across multiple Download calls; Close cancels
// its lifetime context, aborting any call still in flight and rejecting
// any call made afterward — the same inctx/lifetime-ctx split golang/dep's
// callManager uses to let either the caller or the owning manager end a
// call, combined here with constext.Cons rather than callManager's
// bespoke bookkeeping.
type Downloader struct {
	fetch      FetchFunc
	globalCap  int
	perHostCap int
	lifetime   context.Context
	cancel     context.CancelFunc
}

// New returns a Downloader with the default concurrency caps.
func New(fetch FetchFunc) *Downloader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Downloader{
		fetch:      fetch,
		globalCap:  DefaultGlobalCap,
		perHostCap: DefaultPerHostCap,
		lifetime:   ctx,
		cancel:     cancel,
	}
}

// WithCaps returns a copy of d using the given concurrency caps.
func (d *Downloader) WithCaps(global, perHost int) *Downloader {
	nd := *d
	nd.globalCap = global
	nd.perHostCap = perHost
	return &nd
}

// Close cancels the Downloader's lifetime context. Safe to call more than
// once.
func (d *Downloader) Close() { d.cancel() }

// Download runs jobs to completion under the configured caps (spec.md
// §4.7). Jobs whose destination already exists are resolved immediately
// without a network request or consuming a concurrency slot (spec.md §8:
// "For any input whose destination already exists, no network request is
// issued"). sink.Size is called once with len(jobs); sink.Complete fires
// exactly once per job. A nil sink is treated as progress.Nop{}.
//
// Download returns the completed destination paths — in completion
// order, not submission order (spec.md §5) — and the jobs that failed
// after FetchFunc returned an error. A failed job does not abort the
// batch; only a canceled ctx or closed Downloader does.
func Download(ctx context.Context, d *Downloader, jobs []Job, sink progress.Sink) ([]string, []Failure, error) {
	if sink == nil {
		sink = progress.Nop{}
	}
	sink.Size(len(jobs))

	cctx, cancel := constext.Cons(ctx, d.lifetime)
	defer cancel()

	g, gctx := errgroup.WithContext(cctx)
	global := make(chan struct{}, d.globalCap)

	var hostMu sync.Mutex
	hostSems := make(map[string]chan struct{})
	hostSem := func(host string) chan struct{} {
		hostMu.Lock()
		defer hostMu.Unlock()
		if s, ok := hostSems[host]; ok {
			return s
		}
		s := make(chan struct{}, d.perHostCap)
		hostSems[host] = s
		return s
	}

	var resMu sync.Mutex
	var results []string
	var failures []Failure

	for _, job := range jobs {
		job := job

		if _, err := os.Stat(job.DestPath); err == nil {
			resMu.Lock()
			results = append(results, job.DestPath)
			resMu.Unlock()
			sink.Complete()
			continue
		}

		hs := hostSem(job.Host)
		g.Go(func() error {
			select {
			case global <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-global }()

			select {
			case hs <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-hs }()

			dest, err := d.fetch(gctx, job.URI, job.DestPath, sink.ForFile(job.DestPath))
			sink.Complete()

			resMu.Lock()
			defer resMu.Unlock()
			if err != nil {
				failures = append(failures, Failure{Job: job, Err: err})
				return nil
			}
			results = append(results, dest)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, failures, err
	}
	return results, failures, nil
}
