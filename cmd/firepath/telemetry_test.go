package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/firepath"
)

func TestSetupPrometheus_ExportsSearchMetrics(t *testing.T) {
	handler, shutdown, err := setupPrometheus()
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	g := firepath.NewGrid(4)
	_, err = firepath.BFS(context.Background(), g, g.Start(), g.Goal())
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	defer server.Close()
	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "firepath_search")
	assert.Contains(t, string(body), `algorithm="bfs"`)
}
