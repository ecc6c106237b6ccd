package adapters

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("MZ-installer"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "setup.exe")
	written, err := NewHTTPFetcherAdapter(5, 3, 1).Fetch(t.Context(), server.URL+"/setup.exe", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(len("MZ-installer")), written)
	assert.Equal(t, int32(2), calls.Load())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "MZ-installer", string(data))
}

func TestHTTPFetcherNotFoundLeavesNoFile(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	dir := t.TempDir()
	_, err := NewHTTPFetcherAdapter(5, 2, 1).Fetch(t.Context(), server.URL+"/missing.exe", filepath.Join(dir, "missing.exe"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHTTPRetryDelayIsCapped(t *testing.T) {
	cfg := normalizeHTTPConfig(0, 0, 1500)
	assert.Equal(t, defaultHTTPTimeout, cfg.timeout)
	assert.Equal(t, defaultHTTPRetries, cfg.retries)
	delay := httpRetryDelay(4, cfg)
	assert.GreaterOrEqual(t, delay, maxHTTPRetryDelay)
	assert.LessOrEqual(t, delay, maxHTTPRetryDelay+maxHTTPRetryDelay/2)
}

func TestHTTPFetcherTimeoutDoesNotCutSlowBody(t *testing.T) {
	chunk := make([]byte, 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for range 4 {
			_, _ = w.Write(chunk)
			flusher.Flush()
			time.Sleep(500 * time.Millisecond)
		}
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "big.msi")
	written, err := NewHTTPFetcherAdapter(1, 1, 1).Fetch(t.Context(), server.URL+"/big.msi", dest)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), written)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size())
}

func TestHTTPFetcherTimesOutWaitingForHeaders(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPFetcherAdapter(1, 1, 1).Fetch(t.Context(), server.URL+"/stuck.exe", filepath.Join(t.TempDir(), "stuck.exe"))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}
