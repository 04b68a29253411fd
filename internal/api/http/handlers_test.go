package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/retrodesk/internal/domain/registry"
	"github.com/GriffinCanCode/retrodesk/internal/domain/settings"
	"github.com/GriffinCanCode/retrodesk/internal/domain/shell"
	"github.com/GriffinCanCode/retrodesk/internal/domain/vfs"
	"github.com/GriffinCanCode/retrodesk/internal/domain/wallpaper"
	"github.com/GriffinCanCode/retrodesk/internal/domain/window"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/storage"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sunset.png"), pngMagic, 0o644))

	store := storage.NewMemoryStore()
	metrics := monitoring.NewMetrics()
	apps := registry.NewDefault()
	fs := vfs.New(store, vfs.StaticSource{Tree: vfs.DefaultTree()}, nil)
	fs.Hydrate(context.Background())

	cfg := window.DefaultConfig()
	cfg.Viewport = types.Viewport{Width: 1000, Height: 800}
	windows := window.NewManager(cfg, apps, window.NewGeometryStore(store), nil).WithMetrics(metrics)

	h := NewHandlers(Deps{
		Windows:    windows,
		FS:         fs,
		Apps:       apps,
		Shell:      shell.New(fs, nil),
		Wallpapers: wallpaper.NewLister(dir, nil),
		Settings:   settings.New(store, settings.Defaults([]string{"/wallpapers/sunset.png"}), nil),
		Metrics:    metrics,
	})

	r := gin.New()
	h.Routes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, len(registry.Builtins()), body["apps"])
}

func TestApps(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/apps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, len(registry.Builtins()), decode(t, w)["count"])

	w = do(t, r, http.MethodGet, "/apps/chat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Chat", decode(t, w)["name"])

	w = do(t, r, http.MethodGet, "/apps/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWindowLifecycle(t *testing.T) {
	r := setupRouter(t)
	payload := map[string]interface{}{"path": []string{"~", "about.txt"}}

	w := do(t, r, http.MethodPost, "/windows", OpenRequest{AppID: "notes", Payload: payload})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode(t, w)
	assert.EqualValues(t, 1, first["id"])

	// Same payload refocuses the existing window
	w = do(t, r, http.MethodPost, "/windows", OpenRequest{AppID: "notes", Payload: payload})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["id"])

	w = do(t, r, http.MethodPost, "/windows", OpenRequest{AppID: "terminal"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["id"])

	w = do(t, r, http.MethodPost, "/windows/1/focus", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/desktop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	desktop := decode(t, w)
	assert.EqualValues(t, 2, desktop["open_windows"])
	assert.EqualValues(t, 1, desktop["focused_id"])

	w = do(t, r, http.MethodPut, "/windows/1/geometry", types.Rect{X: 101, Y: 203, Width: 301, Height: 199})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	geometry := decode(t, w)["geometry"].(map[string]interface{})
	assert.EqualValues(t, 104, geometry["x"])
	assert.EqualValues(t, 200, geometry["y"])
	assert.EqualValues(t, 304, geometry["width"])
	assert.EqualValues(t, 200, geometry["height"])

	w = do(t, r, http.MethodPut, "/windows/1/title", TitleRequest{Title: "about"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["changed"])

	w = do(t, r, http.MethodGet, "/windows/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "about", decode(t, w)["title_override"])

	w = do(t, r, http.MethodDelete, "/windows/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/windows", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["windows"], 1)
}

func TestWindowErrors(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
		status int
	}{
		{"unknown app", http.MethodPost, "/windows", OpenRequest{AppID: "solitaire"}, http.StatusNotFound},
		{"missing app id", http.MethodPost, "/windows", map[string]string{}, http.StatusBadRequest},
		{"unknown window", http.MethodPost, "/windows/42/focus", nil, http.StatusNotFound},
		{"bad window id", http.MethodGet, "/windows/abc", nil, http.StatusBadRequest},
		{"close unknown", http.MethodDelete, "/windows/7", nil, http.StatusNotFound},
		{"zero size", http.MethodPut, "/windows/1/geometry", types.Rect{Width: 0, Height: 10}, http.StatusBadRequest},
		{"bad viewport", http.MethodPut, "/desktop/viewport", types.Viewport{Width: 0, Height: 10}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestSetAppearance(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/windows", OpenRequest{AppID: "chat"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPut, "/windows/1/appearance", map[string]interface{}{"opacity": 0.5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	record := decode(t, w)
	assert.EqualValues(t, 0.5, record["opacity"])
	assert.Equal(t, "dark", record["theme"])

	w = do(t, r, http.MethodPut, "/windows/1/appearance", map[string]interface{}{"opacity": 2.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilesystemRoutes(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/fs/file?path=~/about.txt", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Contains(t, body["content"], "portfolio")
	assert.Equal(t, true, body["bundled"])

	w = do(t, r, http.MethodPut, "/fs/file", WriteRequest{Path: "~/drafts/todo.txt", Content: "ship it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info := decode(t, w)
	assert.Equal(t, true, info["exists"])
	assert.EqualValues(t, len("ship it"), info["size"])

	w = do(t, r, http.MethodGet, "/fs/list?path=~/drafts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"todo.txt"}, decode(t, w)["entries"])

	w = do(t, r, http.MethodGet, "/fs/overlay", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"~":{"drafts":{"todo.txt":"ship it"}}}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/fs/mkdir", MkdirRequest{Path: "~/drafts/old"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["dir"])

	w = do(t, r, http.MethodGet, "/fs/stat?path=~/nothing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["exists"])

	w = do(t, r, http.MethodGet, "/vfs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "drafts")

	w = do(t, r, http.MethodGet, "/fs/resolve?expr=../about.txt&cwd=~/projects", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resolved := decode(t, w)
	assert.Equal(t, "~/about.txt", resolved["path"])
	assert.Equal(t, false, resolved["dir"])
}

func TestFilesystemErrors(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
		status int
	}{
		{"read missing", http.MethodGet, "/fs/file?path=~/missing.txt", nil, http.StatusNotFound},
		{"read directory", http.MethodGet, "/fs/file?path=~/projects", nil, http.StatusNotFound},
		{"list file", http.MethodGet, "/fs/list?path=~/about.txt", nil, http.StatusConflict},
		{"write over directory", http.MethodPut, "/fs/file", WriteRequest{Path: "~/projects", Content: "x"}, http.StatusConflict},
		{"write under file", http.MethodPut, "/fs/file", WriteRequest{Path: "~/about.txt/x", Content: "x"}, http.StatusConflict},
		{"relative path", http.MethodGet, "/fs/file?path=~/../etc", nil, http.StatusBadRequest},
		{"empty path", http.MethodGet, "/fs/stat", nil, http.StatusBadRequest},
		{"resolve missing", http.MethodGet, "/fs/resolve?expr=nowhere", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestTerminalExec(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/terminal/exec", ExecRequest{Line: "cd projects"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res ExecResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "~/projects", res.Cwd)
	assert.Equal(t, []string{"~", "projects"}, res.Segments)
	assert.Empty(t, res.Output)

	w = do(t, r, http.MethodPost, "/terminal/exec", ExecRequest{Cwd: res.Cwd, Line: "ls"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"README.txt  glitch-app.txt"}, res.Output)

	w = do(t, r, http.MethodPost, "/terminal/exec", ExecRequest{Line: "frobnicate"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"command not found: frobnicate"}, res.Output)
}

func TestWallpapers(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/wallpapers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"/wallpapers/sunset.png"}, decode(t, w)["images"])

	w = do(t, r, http.MethodGet, "/wallpapers/sunset.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngMagic, w.Body.Bytes())

	w = do(t, r, http.MethodGet, "/wallpapers/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStreamLogs(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/logs", UILogStreamRequest{
		Source:  "ui",
		Entries: []UILogEntry{{ID: "1", Level: "warn", Message: "slow paint"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["entries_received"])

	w = do(t, r, http.MethodPost, "/logs", UILogStreamRequest{Source: "ui"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/logs", UILogStreamRequest{Source: "kernel", Entries: []UILogEntry{{}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsSummary(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodPost, "/windows", OpenRequest{AppID: "terminal"})

	w := do(t, r, http.MethodGet, "/metrics/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap MetricsSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.Desktop.OpenWindows)
	assert.EqualValues(t, 1, snap.Backend.OpenWindows)
}

func TestSettingsRoutes(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "light", body["mode"])
	assert.EqualValues(t, 1, body["windowOpacity"])
	assert.Equal(t, "/wallpapers/sunset.png", body["wallpaper"].(map[string]interface{})["value"])

	w = do(t, r, http.MethodPut, "/settings", map[string]interface{}{"mode": "dark", "windowOpacity": 0.8})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "dark", body["mode"])
	assert.EqualValues(t, 0.8, body["windowOpacity"])

	w = do(t, r, http.MethodPost, "/settings/wallpapers", map[string]string{"type": "color", "value": "#222"})
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["wallpapers"], 2)
	assert.Equal(t, "#222", body["wallpaper"].(map[string]interface{})["value"])

	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
	}{
		{"opacity below range", http.MethodPut, "/settings", map[string]interface{}{"windowOpacity": 0.5}},
		{"unknown mode", http.MethodPut, "/settings", map[string]interface{}{"mode": "sepia"}},
		{"malformed body", http.MethodPut, "/settings", "not an object"},
		{"wallpaper without value", http.MethodPost, "/settings/wallpapers", map[string]string{"type": "image"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w), "error")
		})
	}

	w = do(t, r, http.MethodGet, "/settings", nil)
	assert.Equal(t, "dark", decode(t, w)["mode"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{window.ErrNotFound, http.StatusNotFound},
		{vfs.ErrNotFound, http.StatusNotFound},
		{wallpaper.ErrNotFound, http.StatusNotFound},
		{vfs.ErrIsDirectory, http.StatusConflict},
		{vfs.ErrNotDirectory, http.StatusConflict},
		{vfs.ErrInvalidPath, http.StatusBadRequest},
		{vfs.ErrInvalidContent, http.StatusBadRequest},
		{window.ErrInvalidAppearance, http.StatusBadRequest},
		{settings.ErrInvalid, http.StatusBadRequest},
		{vfs.ErrSnapshotFetch, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(tt.err))
		})
	}
}
