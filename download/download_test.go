package download

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/pyocd/cmsis-pack-manager/progress"
)

func TestJobFromURIDerivesHost(t *testing.T) {
	j, err := JobFromURI("http://example.com/ARM.CMSIS.pdsc", "/tmp/out")
	require.NoError(t, err)
	require.Equal(t, "example.com", j.Host)
}

func TestDownloadSkipsExistingDestinations(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "already-there")
	require.NoError(t, os.WriteFile(dest, []byte("x"), 0o644))

	var calls int32
	fetch := func(_ context.Context, uri, destPath string, sink progress.Sink) (string, error) {
		atomic.AddInt32(&calls, 1)
		return destPath, nil
	}

	d := New(fetch)
	defer d.Close()

	results, failures, err := Download(context.Background(), d, []Job{{URI: "http://x/a", Host: "x", DestPath: dest}}, nil)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Equal(t, []string{dest}, results)
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestDownloadRunsAllJobsAndReportsCompletion(t *testing.T) {
	dir := t.TempDir()
	fetch := func(_ context.Context, uri, destPath string, sink progress.Sink) (string, error) {
		return destPath, nil
	}

	jobs := make([]Job, 0, 10)
	for i := 0; i < 10; i++ {
		jobs = append(jobs, Job{
			URI:      "http://host/pkg",
			Host:     "host",
			DestPath: filepath.Join(dir, string(rune('a'+i))),
		})
	}

	sink := &countingSink{}
	d := New(fetch)
	defer d.Close()

	results, failures, err := Download(context.Background(), d, jobs, sink)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, results, 10)
	require.Equal(t, int32(10), atomic.LoadInt32(&sink.completed))
	require.Equal(t, 10, sink.size)
}

func TestDownloadRecordsFailuresWithoutAbortingBatch(t *testing.T) {
	dir := t.TempDir()
	fetch := func(_ context.Context, uri, destPath string, sink progress.Sink) (string, error) {
		if uri == "http://host/bad" {
			return "", errors.New("boom")
		}
		return destPath, nil
	}

	jobs := []Job{
		{URI: "http://host/good", Host: "host", DestPath: filepath.Join(dir, "good")},
		{URI: "http://host/bad", Host: "host", DestPath: filepath.Join(dir, "bad")},
	}

	d := New(fetch)
	defer d.Close()

	results, failures, err := Download(context.Background(), d, jobs, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, failures, 1)
	require.Equal(t, "http://host/bad", failures[0].Job.URI)
}

func TestDownloadRespectsPerHostCap(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	inFlight := 0
	maxSeen := 0

	fetch := func(_ context.Context, uri, destPath string, sink progress.Sink) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxSeen {
			maxSeen = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return destPath, nil
	}

	jobs := make([]Job, 0, 20)
	for i := 0; i < 20; i++ {
		jobs = append(jobs, Job{
			URI:      "http://host/pkg",
			Host:     "host",
			DestPath: filepath.Join(dir, string(rune('a'+i))),
		})
	}

	d := New(fetch).WithCaps(DefaultGlobalCap, 3)
	defer d.Close()

	_, failures, err := Download(context.Background(), d, jobs, nil)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.LessOrEqual(t, maxSeen, 3)
}

func TestDownloadHonorsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	fetch := func(_ context.Context, uri, destPath string, sink progress.Sink) (string, error) {
		<-block
		return destPath, nil
	}

	d := New(fetch).WithCaps(1, 1)
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	jobs := []Job{
		{URI: "http://host/a", Host: "host", DestPath: "/nonexistent/a"},
		{URI: "http://host/b", Host: "host", DestPath: "/nonexistent/b"},
	}

	errCh := make(chan error, 1)
	go func() {
		_, _, err := Download(ctx, d, jobs, nil)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	close(block)

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Download did not return after cancellation")
	}
}

type countingSink struct {
	size      int
	completed int32
}

func (s *countingSink) Size(n int)     { s.size = n }
func (s *countingSink) Progress(int)   {}
func (s *countingSink) Complete()      { atomic.AddInt32(&s.completed, 1) }
func (s *countingSink) ForFile(string) progress.Sink { return s }
