package cabi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpdatePdscIndexRunsToCompletionAndYieldsResults(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	srv = httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/root.pidx", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<index>
			<vendor>Root</vendor>
			<url>` + srv.URL + `/</url>
			<pindex><pdsc url="` + srv.URL + `/" vendor="ARM" name="CMSIS" version="5.0.0"/></pindex>
		</index>`))
	})
	mux.HandleFunc("/ARM.CMSIS.pdsc", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<package/>"))
	})

	dir := t.TempDir()
	listPath := filepath.Join(dir, "seeds.list")
	require.NoError(t, os.WriteFile(listPath, []byte(srv.URL+"/root.pidx\n"), 0o644))

	handle := UpdatePdscIndex(dir, listPath)
	require.NotZero(t, handle)
	defer UpdatePdscIndexFree(handle)

	waitForDone(t, handle)

	resHandle := UpdatePdscResult(handle)
	require.NotZero(t, resHandle)
	defer UpdatePdscResultFree(resHandle)

	path, ok := UpdatePdscResultNext(resHandle)
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "ARM.CMSIS.5.0.0.pdsc"), path)

	_, ok = UpdatePdscResultNext(resHandle)
	require.False(t, ok)
}

func TestUpdatePdscIndexEmptyPackStoreSetsLastError(t *testing.T) {
	handle := UpdatePdscIndex("", "")
	require.Zero(t, handle)

	msg, ok := ErrGetLastMessage()
	require.True(t, ok)
	require.NotEmpty(t, msg)

	_, ok = ErrGetLastMessage()
	require.False(t, ok, "error slot must be consumed on read")
}

func TestUpdatePdscResultUnknownHandleSetsLastError(t *testing.T) {
	h := UpdatePdscResult(999999)
	require.Zero(t, h)

	msg, ok := ErrGetLastMessage()
	require.True(t, ok)
	require.NotEmpty(t, msg)
}

func TestUpdatePdscGetStatusUnknownHandle(t *testing.T) {
	_, ok := UpdatePdscGetStatus(424242)
	require.False(t, ok)
}

func TestUpdatePdscPollUnknownHandleReportsDone(t *testing.T) {
	require.True(t, UpdatePdscPoll(123456))
}

func waitForDone(t *testing.T, handle uint64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if UpdatePdscPoll(handle) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not complete in time")
}
