// Package upstream is the HTTP client for the analysis service: prediction,
// sentiment, portfolio intelligence and chat completion all live behind it.
package upstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RowanMueller/ai-production/internal/models"
	"github.com/RowanMueller/ai-production/pkg/cache"
	"github.com/RowanMueller/ai-production/pkg/errors"
	"github.com/RowanMueller/ai-production/pkg/logger"
	"github.com/RowanMueller/ai-production/pkg/metrics"
	"github.com/RowanMueller/ai-production/pkg/resilience"

	"github.com/go-resty/resty/v2"
)

// AnalysisService is the part of the client the handlers depend on.
// Tests substitute a fake.
type AnalysisService interface {
	AvailableStocks(ctx context.Context) (json.RawMessage, error)
	Predict(ctx context.Context, req models.PredictRequest) (json.RawMessage, error)
	History(ctx context.Context, symbol, period string) (json.RawMessage, error)
	Analysis(ctx context.Context, symbol string) (json.RawMessage, error)
	Sentiment(ctx context.Context, symbol string) (json.RawMessage, error)
	Recommendations(ctx context.Context, body []byte) (json.RawMessage, error)
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	PortfolioAnalyze(ctx context.Context, body []byte) (json.RawMessage, error)
	PortfolioRecommendations(ctx context.Context, body []byte) (json.RawMessage, error)
	StockInfo(ctx context.Context, symbol string) (json.RawMessage, error)
	RiskMetrics(ctx context.Context, symbol string) (json.RawMessage, error)
	Health(ctx context.Context) error
}

// ChatHistoryEntry is one prior turn passed to the chat completion endpoint
type ChatHistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload for the upstream chat completion endpoint
type ChatRequest struct {
	Message   string             `json:"message"`
	SessionID string             `json:"sessionId,omitempty"`
	Context   models.Context     `json:"context,omitempty"`
	History   []ChatHistoryEntry `json:"history,omitempty"`
}

// ChatResponse is the upstream chat completion result
type ChatResponse struct {
	Response       string         `json:"response"`
	Confidence     float64        `json:"confidence"`
	Intent         string         `json:"intent,omitempty"`
	Sentiment      string         `json:"sentiment,omitempty"`
	Symbol         string         `json:"symbol,omitempty"`
	Suggestions    []string       `json:"suggestions"`
	UpdatedContext models.Context `json:"updatedContext,omitempty"`
	Timestamp      string         `json:"timestamp,omitempty"`
}

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Cache      *cache.Cache
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
}

// Client talks to the analysis service over HTTP
type Client struct {
	http    *resty.Client
	breaker *resilience.CircuitBreaker
	cache   *cache.Cache
	metrics *metrics.Metrics
	log     *logger.Logger
}

// New creates a Client for the given upstream base URL
func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.GetGlobal()
	}
	log = log.WithComponent("upstream")

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseURL)
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("Content-Type", "application/json")
	if opts.RetryCount > 0 {
		// Bounded retry applies to idempotent GETs only
		httpClient.SetRetryCount(opts.RetryCount)
		httpClient.AddRetryCondition(func(r *resty.Response, err error) bool {
			if r != nil && r.Request.Method != resty.MethodGet {
				return false
			}
			return err != nil || (r != nil && r.StatusCode() >= 500)
		})
	}

	return &Client{
		http:    httpClient,
		breaker: resilience.NewCircuitBreaker(resilience.DefaultConfig("analysis-service"), log),
		cache:   opts.Cache,
		metrics: opts.Metrics,
		log:     log,
	}
}

// AvailableStocks lists the symbols the upstream can analyze
func (c *Client) AvailableStocks(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/stocks/available", nil, "stocks:available")
}

// Predict submits a normalized forecast request
func (c *Client) Predict(ctx context.Context, req models.PredictRequest) (json.RawMessage, error) {
	return c.post(ctx, "/predict", req)
}

// History fetches the historical price series for a symbol and period
func (c *Client) History(ctx context.Context, symbol, period string) (json.RawMessage, error) {
	query := map[string]string{"symbol": symbol, "period": period}
	return c.get(ctx, "/history", query, "history:"+symbol+":"+period)
}

// Analysis fetches the technical/fundamental snapshot for a symbol
func (c *Client) Analysis(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.get(ctx, "/analysis/"+symbol, nil, "analysis:"+symbol)
}

// Sentiment fetches market sentiment for a symbol
func (c *Client) Sentiment(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.get(ctx, "/sentiment/"+symbol, nil, "sentiment:"+symbol)
}

// Recommendations forwards an arbitrary recommendations payload verbatim
func (c *Client) Recommendations(ctx context.Context, body []byte) (json.RawMessage, error) {
	return c.post(ctx, "/recommendations", body)
}

// Chat calls the chat completion endpoint
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	raw, err := c.post(ctx, "/chat", req)
	if err != nil {
		return nil, err
	}
	var resp ChatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.log.LogError(err, "Malformed chat response from analysis service")
		return nil, errors.NewUpstreamError(0, nil)
	}
	return &resp, nil
}

// PortfolioAnalyze forwards a validated portfolio body verbatim
func (c *Client) PortfolioAnalyze(ctx context.Context, body []byte) (json.RawMessage, error) {
	return c.post(ctx, "/portfolio/analyze", body)
}

// PortfolioRecommendations forwards a validated recommendations body verbatim
func (c *Client) PortfolioRecommendations(ctx context.Context, body []byte) (json.RawMessage, error) {
	return c.post(ctx, "/portfolio/recommendations", body)
}

// StockInfo fetches detailed stock information for a symbol
func (c *Client) StockInfo(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.get(ctx, "/portfolio/stock-info/"+symbol, nil, "stock-info:"+symbol)
}

// RiskMetrics fetches risk metrics for a symbol
func (c *Client) RiskMetrics(ctx context.Context, symbol string) (json.RawMessage, error) {
	return c.get(ctx, "/portfolio/risk-metrics/"+symbol, nil, "risk-metrics:"+symbol)
}

// Health probes the upstream liveness endpoint
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return errors.NewUpstreamError(0, nil)
	}
	if !resp.IsSuccess() {
		return errors.NewUpstreamError(resp.StatusCode(), resp.Body())
	}
	return nil
}

// get performs a cached, breaker-guarded GET
func (c *Client) get(ctx context.Context, path string, query map[string]string, cacheKey string) (json.RawMessage, error) {
	if c.cache != nil && cacheKey != "" {
		if cached, ok := c.cache.Get(cacheKey); ok {
			return cached.(json.RawMessage), nil
		}
	}

	var body json.RawMessage
	err := c.execute(func() (*resty.Response, error) {
		req := c.http.R().SetContext(ctx)
		if query != nil {
			req.SetQueryParams(query)
		}
		return req.Get(path)
	}, &body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && cacheKey != "" {
		c.cache.Set(cacheKey, body)
	}
	return body, nil
}

// post performs a breaker-guarded POST. A []byte payload is sent as-is so
// validated client bodies pass through byte-for-byte.
func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	var body json.RawMessage
	err := c.execute(func() (*resty.Response, error) {
		return c.http.R().SetContext(ctx).SetBody(payload).Post(path)
	}, &body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// execute runs one upstream exchange through the circuit breaker and maps
// failures onto the gateway error taxonomy.
func (c *Client) execute(do func() (*resty.Response, error), out *json.RawMessage) error {
	var appErr *errors.AppError

	breakerErr := c.breaker.Execute(func() error {
		resp, err := do()
		if err != nil {
			c.log.LogError(err, "Analysis service request failed")
			appErr = errors.NewUpstreamError(0, nil)
			return err
		}
		if !resp.IsSuccess() {
			// Non-2xx responses are surfaced with upstream status and body.
			// Only server-side failures trip the breaker.
			raw := make([]byte, len(resp.Body()))
			copy(raw, resp.Body())
			appErr = errors.NewUpstreamError(resp.StatusCode(), raw)
			if resp.StatusCode() >= 500 {
				return appErr
			}
			return nil
		}
		raw := make([]byte, len(resp.Body()))
		copy(raw, resp.Body())
		*out = raw
		return nil
	})

	if c.metrics != nil {
		c.metrics.ObserveUpstreamCall(breakerErr == nil && appErr == nil)
	}

	if breakerErr == resilience.ErrCircuitOpen {
		return errors.NewUpstreamError(0, nil)
	}
	if appErr != nil {
		return appErr
	}
	if breakerErr != nil {
		return errors.NewUpstreamError(0, nil)
	}
	return nil
}
