package livereload

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livedev/internal/logging"
)

func newTestHandler() (*Handler, *Registry) {
	registry := NewRegistry(nil)
	return NewHandler(registry, logging.Discard()), registry
}

func waitForClients(t *testing.T, r *Registry, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return r.Len() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamReceivesUpdate(t *testing.T) {
	h, registry := newTestHandler()
	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	waitForClients(t, registry, 1)
	assert.Equal(t, 1, registry.Broadcast())

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: update\n", line)
	blank, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "\n", blank)

	// The response ends after the frame.
	_, err = reader.ReadByte()
	assert.Error(t, err)
	assert.Equal(t, 0, registry.Len())
}

func TestStreamRemovesClientOnDisconnect(t *testing.T) {
	h, registry := newTestHandler()
	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	waitForClients(t, registry, 1)
	cancel()
	waitForClients(t, registry, 0)
}

func TestUpdateBroadcastsToAllStreams(t *testing.T) {
	h, registry := newTestHandler()
	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.Stream)
	mux.HandleFunc("/events-update", h.Update)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	const n = 3
	bodies := make([]*bufio.Reader, n)
	for i := 0; i < n; i++ {
		resp, err := http.Get(srv.URL + "/events")
		require.NoError(t, err)
		defer resp.Body.Close()
		bodies[i] = bufio.NewReader(resp.Body)
	}
	waitForClients(t, registry, n)

	resp, err := http.Get(srv.URL + "/events-update")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store", resp.Header.Get("Cache-Control"))

	for _, body := range bodies {
		line, err := body.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "data: update\n", line)
	}
	assert.Equal(t, 0, registry.Len())
}

func TestUpdateWithoutClients(t *testing.T) {
	h, _ := newTestHandler()
	rec := httptest.NewRecorder()

	h.Update(rec, httptest.NewRequest(http.MethodGet, "/events-update", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
