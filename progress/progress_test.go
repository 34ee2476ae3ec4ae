package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNopSatisfiesSink(t *testing.T) {
	var s Sink = Nop{}
	s.Size(3)
	s.Progress(10)
	s.Complete()
	require.IsType(t, Nop{}, s.ForFile("x"))
}

func TestChannelAccumulates(t *testing.T) {
	c := NewChannel(8)
	defer c.Close()

	c.Size(2)
	c.Progress(100)
	c.Progress(50)
	c.Complete()

	var last Update
	deadline := time.After(time.Second)
	for {
		select {
		case u := <-c.Updates():
			last = u
			if last.Completed == 1 && last.BytesSoFar == 150 && last.Total == 2 {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for expected update, last seen: %+v", last)
		}
	}
}

func TestChannelLatestReflectsState(t *testing.T) {
	c := NewChannel(1)
	defer c.Close()

	c.Size(5)
	c.Complete()
	c.Complete()

	latest := c.Latest()
	require.Equal(t, 5, latest.Total)
	require.Equal(t, 2, latest.Completed)
}

func TestChannelForFileReturnsSelf(t *testing.T) {
	c := NewChannel(1)
	defer c.Close()
	require.Same(t, c, c.ForFile("anything"))
}
