package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RowanMueller/ai-production/pkg/config"
	"github.com/RowanMueller/ai-production/pkg/di"
	"github.com/RowanMueller/ai-production/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.New()
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})

	container := di.New(cfg, log)
	r := New(container)
	r.SetupRoutes()
	return r
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	// The analysis service is not running, so the gateway reports degraded
	// rather than failing the probe outright.
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "status")
	assert.Contains(t, body, "components")
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	// A prior request so the request counter has something to report
	warm := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	r.Engine.ServeHTTP(httptest.NewRecorder(), warm)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gateway_requests_total")
}

func TestStatsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "uptime_seconds")
	assert.Contains(t, body, "active_sessions")
}

func TestAvailableStocksServedLocally(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/available-stocks", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Stocks []map[string]any `json:"stocks"`
		Count  int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, len(body.Stocks), body.Count)
	assert.NotEmpty(t, body.Stocks)
}

func TestErrorResponsesCountedInStatusClass(t *testing.T) {
	r := newTestRouter(t)

	// Fails validation, so no upstream call is involved
	req := httptest.NewRequest(http.MethodPost, "/api/stocks/predict", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	scrape := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mw := httptest.NewRecorder()
	r.Engine.ServeHTTP(mw, scrape)
	require.Equal(t, http.StatusOK, mw.Code)

	assert.Contains(t, mw.Body.String(),
		`gateway_requests_total{method="POST",status="4xx"}`,
		"rejected requests must be counted under their real status class")
	assert.NotContains(t, mw.Body.String(),
		`gateway_requests_total{method="POST",status="2xx"}`)
}

func TestCORSAllowlist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(corsMiddleware([]string{"http://localhost:3000"}))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"),
		"origins outside the allowlist must not be reflected")
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/stats", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRouteReturns404(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
