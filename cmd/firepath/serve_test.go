package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/firepath/internal/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg = config.Default()
	return newRouter(newStepServer(slog.Default(), cfg.Serve.SessionTTL), nil)
}

func do(router http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router http.Handler, query string) string {
	t.Helper()
	w := do(router, http.MethodPost, "/sessions?"+query)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID   string   `json:"id"`
		Size int      `json:"size"`
		Rows []string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Len(t, created.Rows, created.Size)
	return created.ID
}

func TestServe_Health(t *testing.T) {
	router := newTestRouter(t)
	w := do(router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServe_StepToCompletion(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router, "dim=5&density=0&seed=3")

	var snap snapshot
	for i := 0; i < 100 && !snap.Done; i++ {
		w := do(router, http.MethodGet, "/sessions/"+id+"/next")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, i+1, snap.Step)
	}
	require.True(t, snap.Done)
	assert.True(t, snap.Found)
	assert.Len(t, snap.Path, 9)
	assert.Equal(t, point{0, 0}, snap.Path[0])
	assert.Equal(t, point{4, 4}, snap.Goal)
	assert.Zero(t, snap.FieldLayers)

	w := do(router, http.MethodDelete, "/sessions/"+id)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(router, http.MethodGet, "/sessions/"+id+"/next")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServe_FireSession(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router, "dim=6&density=0&seed=9&fire=1&spread=0.2")

	w := do(router, http.MethodGet, "/sessions/"+id+"/next")
	require.Equal(t, http.StatusOK, w.Code)
	var snap snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "F", string(snap.Rows[0][5]))
	assert.GreaterOrEqual(t, snap.FieldLayers, 2)

	w = do(router, http.MethodPost, "/sessions/"+id+"/evaluate?spread=0&limit=0.2&seed=4")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var eval evaluation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eval))
	assert.True(t, eval.Planned)
	assert.True(t, eval.Survived)
	assert.Zero(t, eval.Replans)
	assert.Equal(t, eval.Plan, eval.Walked)
	assert.NotContains(t, eval.Walked, point{0, 5})
}

func TestServe_BadRequests(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPost, "/sessions?dim=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(router, http.MethodPost, "/sessions?density=2")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(router, http.MethodPost, "/sessions?heuristic=chebyshev")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(router, http.MethodPost, "/sessions?fire=1&spread=3")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/sessions/not-a-uuid/next")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(router, http.MethodDelete, "/sessions/2f1b4c3e-8d7a-4b6c-9e5f-0a1b2c3d4e5f")
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := createSession(t, router, "dim=4&density=0&seed=1")
	w = do(router, http.MethodPost, "/sessions/"+id+"/evaluate?limit=7")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServe_Stream(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router, "dim=4&density=0&seed=2")

	server := httptest.NewServer(router)
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/sessions/" + id + "/stream?rate=1000"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	var snaps []snapshot
	for {
		var snap snapshot
		if err := ws.ReadJSON(&snap); err != nil {
			break
		}
		snaps = append(snaps, snap)
	}
	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]
	assert.True(t, last.Done)
	assert.True(t, last.Found)
	assert.Len(t, last.Path, 7)
	for i, snap := range snaps {
		assert.Equal(t, i+1, snap.Step)
	}

	w := do(router, http.MethodGet, "/sessions/"+id+"/stream?rate=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStepServer_EvictsExpiredSessions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg = config.Default()
	server := newStepServer(slog.Default(), time.Minute)
	router := newRouter(server, nil)

	stale := createSession(t, router, "dim=3&density=0&seed=1")
	fresh := createSession(t, router, "dim=3&density=0&seed=2")

	server.mu.Lock()
	for id, sess := range server.sessions {
		if id.String() == stale {
			sess.created = sess.created.Add(-2 * time.Minute)
		}
	}
	evicted := server.evictExpired(time.Now())
	server.mu.Unlock()
	assert.Equal(t, 1, evicted)

	w := do(router, http.MethodGet, "/sessions/"+stale+"/next")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(router, http.MethodGet, "/sessions/"+fresh+"/next")
	assert.Equal(t, http.StatusOK, w.Code)

	forever := newStepServer(slog.Default(), 0)
	forever.sessions[uuid.New()] = &session{created: time.Unix(0, 0)}
	assert.Zero(t, forever.evictExpired(time.Now()))
	assert.Len(t, forever.sessions, 1)
}
