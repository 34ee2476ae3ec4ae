// Package crawl implements the transitive vendor-index crawl (spec.md §4.6,
// C6): starting from a seed list of vendor-index URLs, it discovers further
// indices referenced from each one, fetches them through a caller-supplied
// Fetcher, retries failures a bounded number of times, and returns the
// deduplicated set of package references reachable from the seeds.
//
// The state tracking here — a URL→state map plus a URL→attempt-count map,
// walked in rounds rather than recursively — mirrors the bookkeeping
// golang/dep's sourceCoordinator uses to fold concurrent discovery requests
// for the same source into one another; the crawl engine applies the same
// idea to a single-threaded round loop instead of goroutine fan-in.
package crawl

import (
	"context"

	"github.com/pyocd/cmsis-pack-manager/pidx"
	"github.com/pyocd/cmsis-pack-manager/progress"
)

// MaxAttempts bounds retries per URL (spec.md §4.6, §8: "exactly 3 ×
// |unique URLs| fetch attempts are made" when every URL fails).
const MaxAttempts = 3

// Fetcher retrieves and parses one vendor-index document. Implementations
// typically compose fetch.Fetch (to a temp or cache path) with pidx.Parse;
// Crawl itself is transport-agnostic.
type Fetcher func(ctx context.Context, url string) (*pidx.VendorIndex, error)

// Crawl resolves seeds transitively into a deduplicated PackageRef list
// (spec.md §4.6). It terminates once no URL remains pending — either
// because every reachable index was fetched, or every still-failing URL
// has exhausted MaxAttempts.
//
// sink.Size is called once with the seed count; sink.Complete fires once
// per URL that reaches a terminal state (fetched, or permanently failed).
// A nil sink is treated as progress.Nop{}.
func Crawl(ctx context.Context, seeds []string, fetch Fetcher, sink progress.Sink) ([]pidx.PackageRef, error) {
	if sink == nil {
		sink = progress.Nop{}
	}
	sink.Size(len(seeds))

	known := make(map[string]bool)
	attempts := make(map[string]int)

	frontier := dedupeStrings(seeds)
	for _, u := range frontier {
		known[u] = true
	}

	var refs []pidx.PackageRef
	for len(frontier) > 0 {
		round := dedupeStrings(frontier)
		frontier = nil

		for _, url := range round {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			vi, err := fetch(ctx, url)
			if err != nil {
				attempts[url]++
				if attempts[url] < MaxAttempts {
					frontier = append(frontier, url)
					continue
				}
				sink.Complete()
				continue
			}

			sink.Complete()
			refs = append(refs, vi.Packages...)
			for _, sub := range vi.SubIndices {
				childURL := sub.IndexURL()
				if known[childURL] {
					continue
				}
				known[childURL] = true
				frontier = append(frontier, childURL)
			}
		}
	}

	return dedupeRefs(refs), nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// dedupeRefs keeps the first occurrence of each (url, vendor, name) key
// (spec.md §4.6: "deduplicate PackageRefs by ... format(url, vendor, name)
// (ignoring version)"), preserving first-seen order.
func dedupeRefs(in []pidx.PackageRef) []pidx.PackageRef {
	seen := make(map[string]bool, len(in))
	out := make([]pidx.PackageRef, 0, len(in))
	for _, r := range in {
		key := r.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
