// Package progress defines the sink capability contract used by the fetch
// primitive, the crawler and the bounded downloader to report progress
// without coupling them to a specific UI (spec.md §4.9, C9). The CLI's
// terminal rendering and the FFI's polled updates are both just Sink
// implementations.
package progress

// Sink receives progress notifications for a batch of work. size is called
// once before any downloads start to announce the total item count;
// progress may be called many times per item as bytes stream in; complete
// is called exactly once per item regardless of success or failure.
// forFile may return a child sink scoped to one file, for per-file
// reporters; implementations that don't need per-file detail can return
// themselves.
type Sink interface {
	Size(n int)
	Progress(bytes int)
	Complete()
	ForFile(name string) Sink
}

// Nop is a Sink that does nothing, used whenever a caller doesn't care
// about progress (e.g. the FFI's synchronous test helpers).
type Nop struct{}

func (Nop) Size(int)           {}
func (Nop) Progress(int)       {}
func (Nop) Complete()          {}
func (Nop) ForFile(string) Sink { return Nop{} }

// Update is one snapshot of overall progress, as delivered by Channel.
type Update struct {
	// Total is the item count announced by Size, or 0 before it's known.
	Total int
	// BytesSoFar is the cumulative byte count reported across all
	// Progress calls so far.
	BytesSoFar int
	// Completed is the number of items whose Complete has fired.
	Completed int
}

// Channel is a Sink backed by a buffered channel of Update snapshots,
// suitable for driving polled asynchronous updates from a long-running
// download — the FFI layer's update_pdsc_get_status is built on exactly
// this (spec.md §4.9: "A channel-backed implementation is required for
// driving polled asynchronous updates").
//
// Channel is safe for concurrent use by multiple downloader tasks; each
// call to Progress/Complete/Size hands its change to the one background
// goroutine that owns the state, which applies it and pushes a new
// snapshot, so readers draining Updates always see monotonically advancing
// counters.
type Channel struct {
	updates chan Update
	state   chan func(*Update)
	done    chan struct{}
	snap    Update
}

// NewChannel creates a Channel sink. bufSize bounds how many Update
// snapshots can be buffered before Progress/Complete/Size block; callers
// that poll slowly should pick a larger buffer or drain promptly.
func NewChannel(bufSize int) *Channel {
	c := &Channel{
		updates: make(chan Update, bufSize),
		state:   make(chan func(*Update)),
		done:    make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Channel) run() {
	for {
		select {
		case f := <-c.state:
			f(&c.snap)
			select {
			case c.updates <- c.snap:
			default:
				// Drop the oldest buffered update rather than block the
				// downloader's scheduling loop; Updates always reflects at
				// least the latest state because we retry the send below.
				select {
				case <-c.updates:
				default:
				}
				select {
				case c.updates <- c.snap:
				default:
				}
			}
		case <-c.done:
			close(c.updates)
			return
		}
	}
}

func (c *Channel) apply(f func(*Update)) {
	select {
	case c.state <- f:
	case <-c.done:
	}
}

// Size announces the total item count.
func (c *Channel) Size(n int) {
	c.apply(func(u *Update) { u.Total = n })
}

// Progress reports bytes downloaded for the current item.
func (c *Channel) Progress(bytes int) {
	c.apply(func(u *Update) { u.BytesSoFar += bytes })
}

// Complete marks one item's download finished, successfully or not.
func (c *Channel) Complete() {
	c.apply(func(u *Update) { u.Completed++ })
}

// ForFile returns c itself: Channel does not distinguish per-file sinks,
// since the FFI's polling API reports aggregate progress only.
func (c *Channel) ForFile(string) Sink { return c }

// Updates returns the channel of Update snapshots. It is closed once
// Close is called and all buffered updates have been drained.
func (c *Channel) Updates() <-chan Update { return c.updates }

// Close stops the background goroutine and closes Updates. Safe to call
// more than once.
func (c *Channel) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// Latest returns the most recently observed snapshot without consuming
// from Updates, used by update_pdsc_get_status which may be polled more
// often than Updates is drained.
func (c *Channel) Latest() Update {
	result := make(chan Update, 1)
	c.apply(func(u *Update) { result <- *u })
	select {
	case u := <-result:
		return u
	case <-c.done:
		return Update{}
	}
}
