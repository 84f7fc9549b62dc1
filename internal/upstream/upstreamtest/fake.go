// Package upstreamtest provides a configurable in-memory AnalysisService for
// handler and service tests.
package upstreamtest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/RowanMueller/ai-production/internal/models"
	"github.com/RowanMueller/ai-production/internal/upstream"
)

// Fake implements upstream.AnalysisService, recording calls and payloads
type Fake struct {
	mu    sync.Mutex
	calls map[string]int

	// Err, when set, is returned by every method
	Err error
	// Responses overrides the raw payload returned per call name;
	// the default is an empty JSON object
	Responses map[string]json.RawMessage
	// ChatResponse is returned by Chat when Err is nil
	ChatResponse *upstream.ChatResponse

	LastPredict       models.PredictRequest
	LastChat          upstream.ChatRequest
	LastForwardedBody []byte
	LastSymbol        string
	LastPeriod        string
}

// New creates an empty fake
func New() *Fake {
	return &Fake{
		calls:     make(map[string]int),
		Responses: make(map[string]json.RawMessage),
	}
}

// CallCount reports how many times the named method was invoked
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// TotalCalls reports the number of upstream invocations of any kind
func (f *Fake) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *Fake) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *Fake) raw(name string) (json.RawMessage, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if resp, ok := f.Responses[name]; ok {
		return resp, nil
	}
	return json.RawMessage(`{}`), nil
}

func (f *Fake) AvailableStocks(ctx context.Context) (json.RawMessage, error) {
	f.record("AvailableStocks")
	return f.raw("AvailableStocks")
}

func (f *Fake) Predict(ctx context.Context, req models.PredictRequest) (json.RawMessage, error) {
	f.record("Predict")
	f.mu.Lock()
	f.LastPredict = req
	f.mu.Unlock()
	return f.raw("Predict")
}

func (f *Fake) History(ctx context.Context, symbol, period string) (json.RawMessage, error) {
	f.record("History")
	f.mu.Lock()
	f.LastSymbol, f.LastPeriod = symbol, period
	f.mu.Unlock()
	return f.raw("History")
}

func (f *Fake) Analysis(ctx context.Context, symbol string) (json.RawMessage, error) {
	f.record("Analysis")
	f.mu.Lock()
	f.LastSymbol = symbol
	f.mu.Unlock()
	return f.raw("Analysis")
}

func (f *Fake) Sentiment(ctx context.Context, symbol string) (json.RawMessage, error) {
	f.record("Sentiment")
	f.mu.Lock()
	f.LastSymbol = symbol
	f.mu.Unlock()
	return f.raw("Sentiment")
}

func (f *Fake) Recommendations(ctx context.Context, body []byte) (json.RawMessage, error) {
	f.record("Recommendations")
	f.mu.Lock()
	f.LastForwardedBody = body
	f.mu.Unlock()
	return f.raw("Recommendations")
}

func (f *Fake) Chat(ctx context.Context, req upstream.ChatRequest) (*upstream.ChatResponse, error) {
	f.record("Chat")
	f.mu.Lock()
	f.LastChat = req
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if f.ChatResponse != nil {
		return f.ChatResponse, nil
	}
	return &upstream.ChatResponse{Response: "ok", Confidence: 0.5}, nil
}

func (f *Fake) PortfolioAnalyze(ctx context.Context, body []byte) (json.RawMessage, error) {
	f.record("PortfolioAnalyze")
	f.mu.Lock()
	f.LastForwardedBody = body
	f.mu.Unlock()
	return f.raw("PortfolioAnalyze")
}

func (f *Fake) PortfolioRecommendations(ctx context.Context, body []byte) (json.RawMessage, error) {
	f.record("PortfolioRecommendations")
	f.mu.Lock()
	f.LastForwardedBody = body
	f.mu.Unlock()
	return f.raw("PortfolioRecommendations")
}

func (f *Fake) StockInfo(ctx context.Context, symbol string) (json.RawMessage, error) {
	f.record("StockInfo")
	f.mu.Lock()
	f.LastSymbol = symbol
	f.mu.Unlock()
	return f.raw("StockInfo")
}

func (f *Fake) RiskMetrics(ctx context.Context, symbol string) (json.RawMessage, error) {
	f.record("RiskMetrics")
	f.mu.Lock()
	f.LastSymbol = symbol
	f.mu.Unlock()
	return f.raw("RiskMetrics")
}

func (f *Fake) Health(ctx context.Context) error {
	f.record("Health")
	return f.Err
}
