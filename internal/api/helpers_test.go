package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RowanMueller/ai-production/internal/service"
	"github.com/RowanMueller/ai-production/internal/session"
	"github.com/RowanMueller/ai-production/internal/upstream/upstreamtest"
	apperrors "github.com/RowanMueller/ai-production/pkg/errors"
	"github.com/RowanMueller/ai-production/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// newTestEngine builds a gin engine with the error middleware the real
// router installs, then lets the test register handler routes.
func newTestEngine(register func(rg *gin.RouterGroup)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(apperrors.ErrorHandler())
	register(engine.Group("/api"))
	return engine
}

func newChatTestEngine(fake *upstreamtest.Fake) *gin.Engine {
	store := session.NewStore(session.Options{})
	log := logger.New(logger.DefaultConfig())
	svc := service.NewChatService(store, fake, nil, log, 10)
	handler := NewChatHandler(svc)
	return newTestEngine(handler.RegisterRoutes)
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func errorField(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "response has no error object: %s", w.Body.String())
	details, ok := errObj["details"].(map[string]any)
	if !ok {
		return ""
	}
	field, _ := details["field"].(string)
	return field
}
