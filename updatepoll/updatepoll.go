// Package updatepoll implements the PackageRef update poll state machine
// the FFI layer drives across the cgo boundary (spec.md §4.8 "State
// machines", §6 "FFI surface"): states {Running, Complete, Drained}.
//
// The bitflag-over-channel shape an asynchronous gateway's readiness is
// tracked with elsewhere in this module's lineage is overkill for a
// three-state, one-shot poll: a single atomic int32 plus a closed-on-done
// channel is enough to make Poll non-blocking and Result idempotent.
package updatepoll

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// State is one of the three states a Poll may be in.
type State int32

const (
	// Running is the state from construction until the driving goroutine
	// finishes.
	Running State = iota
	// Complete is entered exactly once, when the driving goroutine
	// finishes; it is safe to observe from many concurrent Poll calls.
	Complete
	// Drained is entered when Result is called on a Complete poll,
	// consuming it; all further calls see Drained.
	Drained
)

// ErrNotReady is returned by Result when the poll is still Running.
var ErrNotReady = errors.New("updatepoll: result not ready")

// Work is the long-running operation a Poll drives to completion —
// typically a crawl+download run — reporting its own progress through
// whatever sink the caller wired in before returning.
type Work[T any] func(ctx context.Context) (T, error)

// Poll drives one Work call to completion in the background and exposes
// its outcome through a non-blocking, poll-friendly state machine
// (spec.md §6: `update_pdsc_poll`/`update_pdsc_get_status`/
// `update_pdsc_result`).
type Poll[T any] struct {
	state  atomic.Int32
	done   chan struct{}
	cancel context.CancelFunc

	mu     sync.Mutex
	result T
	err    error
}

// Start launches work in its own goroutine under a context derived from
// ctx, returning immediately in the Running state.
func Start[T any](ctx context.Context, work Work[T]) *Poll[T] {
	cctx, cancel := context.WithCancel(ctx)
	p := &Poll[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}
	p.state.Store(int32(Running))

	go func() {
		defer close(p.done)
		result, err := work(cctx)
		p.mu.Lock()
		p.result, p.err = result, err
		p.mu.Unlock()
		p.state.CompareAndSwap(int32(Running), int32(Complete))
	}()

	return p
}

// Poll reports whether the driving goroutine has finished (spec.md §6:
// `update_pdsc_poll(*UpdatePoll) -> bool done`). The transition out of
// Running happens exactly once and is safe to call repeatedly —
// "transition is idempotent on subsequent polls".
func (p *Poll[T]) Poll() bool {
	select {
	case <-p.done:
		p.state.CompareAndSwap(int32(Running), int32(Complete))
		return true
	default:
		return false
	}
}

// State returns the poll's current state without blocking.
func (p *Poll[T]) State() State {
	return State(p.state.Load())
}

// Result consumes the poll's outcome: on Complete it transitions to
// Drained and returns the stored (result, err); on Running it returns
// ErrNotReady; on Drained it returns ErrNotReady again (spec.md §4.8:
// "Drained -> Drained").
func (p *Poll[T]) Result() (T, error) {
	var zero T
	if !p.state.CompareAndSwap(int32(Complete), int32(Drained)) {
		if State(p.state.Load()) != Drained {
			return zero, ErrNotReady
		}
		return zero, ErrNotReady
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.err
}

// Cancel stops the driving goroutine's context; it does not change the
// poll's observable state (spec.md §5: "no mid-flight cancel; pending
// requests run to completion or failure" at the downloader level — the
// FFI facade instead exposes a done flag the worker sets on its own
// termination, not on cancellation taking effect here).
func (p *Poll[T]) Cancel() {
	p.cancel()
}
