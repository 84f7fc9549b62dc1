package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RowanMueller/ai-production/internal/models"
	"github.com/RowanMueller/ai-production/pkg/cache"
	apperrors "github.com/RowanMueller/ai-production/pkg/errors"
	"github.com/RowanMueller/ai-production/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, responseCache *cache.Cache) *Client {
	return New(Options{
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
		Cache:   responseCache,
		Logger:  logger.New(logger.DefaultConfig()),
	})
}

func TestGetPassesThroughBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stocks/available", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stocks":["AAPL","TSLA"]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	raw, err := client.AvailableStocks(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"stocks":["AAPL","TSLA"]}`, string(raw))
}

func TestGetUsesCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"stocks":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, cache.New(time.Minute, 0, 100))

	_, err := client.AvailableStocks(context.Background())
	require.NoError(t, err)
	_, err = client.AvailableStocks(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, hits.Load(), "second lookup must be served from cache")
}

func TestHistoryQueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "6mo", r.URL.Query().Get("period"))
		w.Write([]byte(`{"symbol":"AAPL"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	_, err := client.History(context.Background(), "AAPL", "6mo")
	require.NoError(t, err)
}

func TestPostForwardsRawBodyUnchanged(t *testing.T) {
	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	body := []byte(`{"portfolio":[{"symbol":"AAPL","value":1000}]}`)
	_, err := client.PortfolioAnalyze(context.Background(), body)
	require.NoError(t, err)
	assert.Equal(t, body, received)
}

func TestNonSuccessCarriesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"unknown symbol"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	_, err := client.Analysis(context.Background(), "ZZZZ")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode)
	assert.Equal(t, apperrors.CodeUpstream, appErr.Code)
	assert.Equal(t, []byte(`{"error":"unknown symbol"}`), appErr.RawBody)
}

func TestTransportFailureMapsToBadGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(server.URL, nil)
	_, err := client.Sentiment(context.Background(), "AAPL")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
}

func TestPredictSendsNormalizedRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"symbol":"AAPL","days":7,"model":"lstm"}`, string(body))
		w.Write([]byte(`{"symbol":"AAPL"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	req := models.PredictRequest{Symbol: "AAPL"}
	req.ApplyDefaults()
	_, err := client.Predict(context.Background(), req)
	require.NoError(t, err)
}

func TestChatDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"hello","confidence":0.9,"suggestions":["Analyze AAPL"],"updatedContext":{"stock_interests":["AAPL"]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	resp, err := client.Chat(context.Background(), ChatRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Response)
	assert.InDelta(t, 0.9, resp.Confidence, 1e-9)
	assert.Equal(t, []string{"Analyze AAPL"}, resp.Suggestions)
	assert.Equal(t, []any{"AAPL"}, resp.UpdatedContext["stock_interests"].([]any))
}

func TestBreakerOpensAfterRepeatedServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	// Failure threshold is five; each 5xx counts
	for i := 0; i < 5; i++ {
		_, err := client.StockInfo(context.Background(), "AAPL")
		require.Error(t, err)
	}
	require.EqualValues(t, 5, hits.Load())

	// Circuit is now open; the upstream must not be touched
	_, err := client.StockInfo(context.Background(), "AAPL")
	require.Error(t, err)
	assert.EqualValues(t, 5, hits.Load())

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
}
