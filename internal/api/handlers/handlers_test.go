package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpanel/brightpanel-go/internal/api/middleware"
	"github.com/brightpanel/brightpanel-go/internal/config"
	"github.com/brightpanel/brightpanel-go/internal/core/brightness"
	"github.com/brightpanel/brightpanel-go/internal/core/detector"
	"github.com/brightpanel/brightpanel-go/internal/core/panel"
	"github.com/brightpanel/brightpanel-go/internal/core/security"
	"github.com/brightpanel/brightpanel-go/internal/core/settings"
	"github.com/brightpanel/brightpanel-go/internal/core/syscheck"
	"github.com/brightpanel/brightpanel-go/internal/database"
	"github.com/brightpanel/brightpanel-go/internal/websocket"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeRunner struct{ outputs map[string]string }

func (f *fakeRunner) Run(ctx context.Context, operation string, command []string) (string, error) {
	return f.outputs[operation], nil
}

type fakeMethod struct {
	mu    sync.Mutex
	level int
	sets  []int
}

func (m *fakeMethod) Get(ctx context.Context, d detector.Display) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level, nil
}

func (m *fakeMethod) Set(ctx context.Context, d detector.Display, level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = append(m.sets, level)
	m.level = level
	return nil
}

func (m *fakeMethod) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sets)
}

type staticStrategy struct{ displays []detector.Display }

func (s *staticStrategy) Name() string { return "static" }

func (s *staticStrategy) Detect(ctx context.Context) ([]detector.Display, error) {
	return s.displays, nil
}

type testEnv struct {
	router *gin.Engine
	method *fakeMethod
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testLogger()
	validator := security.NewValidator(log)

	det := detector.NewService(log, &staticStrategy{displays: []detector.Display{
		{ID: "d1", Name: "Laptop Display 1", Type: detector.DisplayInternal, Method: detector.MethodWMI},
	}})
	det.Detect(context.Background())

	method := &fakeMethod{level: 50}
	ctrl := brightness.NewController(validator, log, map[detector.ControlMethod]brightness.MethodController{
		detector.MethodWMI: method,
	})

	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"), log)
	hub := websocket.NewHub(log, nil)

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	history := database.NewHistoryRepository(db, 50)

	panelSvc := panel.New(det, ctrl, store, hub, history, log, 10*time.Millisecond, time.Second)

	runner := &fakeRunner{outputs: map[string]string{
		"probe_powershell": "ok\n",
		"probe_wmi":        "1\n",
	}}
	checker := syscheck.NewChecker(runner, validator, log, time.Second, true)

	cfg := &config.Config{}
	cfg.Server.Mode = "test"

	h := NewHandlers(cfg, log, hub, det, ctrl, panelSvc, store, checker, history)

	router := gin.New()
	router.GET("/health", h.Health)
	api := router.Group("/api/v1")
	api.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		api.GET("/displays", h.GetDisplays)
		api.POST("/displays/refresh", h.RefreshDisplays)
		api.POST("/displays/select", h.SelectDisplay)
		api.GET("/displays/support", h.TestSupport)
		api.GET("/brightness", h.GetBrightness)
		api.PUT("/brightness", h.SetBrightness)
		api.POST("/brightness/slide", h.SlideBrightness)
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
		api.GET("/history", h.GetHistory)
		api.GET("/system/info", h.GetSystemInfo)
	}

	return &testEnv{router: router, method: method}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Contains(t, w.Body.String(), "brightpanel")
}

func TestGetDisplays(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/displays", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Count    int                `json:"count"`
			Displays []detector.Display `json:"displays"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Equal(t, 1, resp.Data.Count)
	assert.Equal(t, "Laptop Display 1", resp.Data.Displays[0].Name)
}

func TestSelectDisplayBadIndex(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/displays/select", gin.H{"index": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelectDisplayMissingBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/displays/select", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetBrightness(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/v1/brightness", gin.H{"level": 70})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.method.setCount())

	w = env.do(t, http.MethodGet, "/api/v1/brightness", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"brightness":70`)
}

func TestSetBrightnessOutOfRangeRejectedWithoutCall(t *testing.T) {
	env := newTestEnv(t)

	for _, level := range []int{-1, 101} {
		w := env.do(t, http.MethodPut, "/api/v1/brightness", gin.H{"level": level})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Zero(t, env.method.setCount())
}

func TestSlideBrightnessAccepted(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/brightness/slide", gin.H{"level": 33})
	assert.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		return env.method.setCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSupportEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/displays/support", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data brightness.SupportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.MethodAvailable)
	assert.True(t, resp.Data.CanGet)
	assert.True(t, resp.Data.CanSet)
	assert.Equal(t, 50, resp.Data.Level)
}

func TestSettingsRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/v1/settings", gin.H{
		"last_brightness":    75,
		"last_display_index": 0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"last_brightness":75`)
}

func TestSettingsRejectsOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/api/v1/settings", gin.H{
		"last_brightness":    150,
		"last_display_index": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryAfterSet(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPut, "/api/v1/brightness", gin.H{"level": 60})

	w := env.do(t, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"level":60`)
}

func TestHistoryBadLimit(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSystemInfo(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/system/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy":true`)
}
