package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/retrodesk/internal/api/middleware"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/config"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Wallpapers.Dir = t.TempDir()
	return cfg
}

func request(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestNewServer(t *testing.T) {
	s, err := NewServer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	s.Hydrate(context.Background())

	w := request(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = request(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	w = request(t, s, http.MethodGet, "/vfs", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewServerInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Desktop.GridSize = 0

	_, err := NewServer(cfg)
	assert.Error(t, err)
}

func TestServerPublishesEvents(t *testing.T) {
	s, err := NewServer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var got []types.EventType
	cancel := s.Events().Subscribe(func(evt types.Event) { got = append(got, evt.Type) })
	defer cancel()

	w := request(t, s, http.MethodPost, "/windows", `{"app_id":"terminal"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = request(t, s, http.MethodPut, "/fs/file", `{"path":"~/hello.txt","content":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, []types.EventType{types.EventWindowOpened, types.EventFileWritten}, got)
}

func TestServerPersistsAcrossRestart(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Dir = t.TempDir()
	cfg.Storage.Compress = true

	first, err := NewServer(cfg)
	require.NoError(t, err)
	first.Hydrate(context.Background())

	w := request(t, first, http.MethodPut, "/fs/file", `{"path":"~/drafts/todo.txt","content":"ship it"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = request(t, first, http.MethodPost, "/windows", `{"app_id":"notes"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = request(t, first, http.MethodPut, "/windows/1/geometry", `{"x":40,"y":40,"width":400,"height":320}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = request(t, first, http.MethodPut, "/settings", `{"mode":"dark","iconSize":"large"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, first.Close())

	second, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	second.Hydrate(context.Background())

	w = request(t, second, http.MethodGet, "/fs/file?path=~/drafts/todo.txt", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "ship it")

	w = request(t, second, http.MethodPost, "/windows", `{"app_id":"notes"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"geometry":{"x":40,"y":40,"width":400,"height":320}`)

	w = request(t, second, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"dark"`)
	assert.Contains(t, w.Body.String(), `"iconSize":"large"`)
}

func TestServerSnapshotFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes", "plan.md"), []byte("# plan"), 0o644))

	cfg := testConfig(t)
	cfg.Snapshot.Dir = dir

	s, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	s.Hydrate(context.Background())

	w := request(t, s, http.MethodGet, "/fs/file?path=~/notes/plan.md", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"bundled":true`)
}
