package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Prediction model selectors accepted by the upstream service
const (
	ModelLSTM     = "lstm"
	ModelLinear   = "linear"
	ModelEnsemble = "ensemble"
)

// Risk tolerance levels for portfolio recommendations
const (
	RiskConservative = "conservative"
	RiskModerate     = "moderate"
	RiskAggressive   = "aggressive"
)

// DefaultPredictionDays is the horizon used when the client omits one
const DefaultPredictionDays = 7

// DefaultHistoryPeriod is the calendar range used when the client omits one
const DefaultHistoryPeriod = "1y"

// HistoryPeriods is the fixed set of accepted calendar ranges
var HistoryPeriods = map[string]bool{
	"1mo": true,
	"3mo": true,
	"6mo": true,
	"1y":  true,
	"2y":  true,
	"5y":  true,
	"max": true,
}

// PredictRequest asks the upstream service for a price forecast
type PredictRequest struct {
	Symbol string `json:"symbol" binding:"required,min=1,max=10"`
	Days   int    `json:"days" binding:"omitempty,min=1,max=30"`
	Model  string `json:"model" binding:"omitempty,oneof=lstm linear ensemble"`
}

// ApplyDefaults fills omitted fields with their documented defaults
func (r *PredictRequest) ApplyDefaults() {
	if r.Days == 0 {
		r.Days = DefaultPredictionDays
	}
	if r.Model == "" {
		r.Model = ModelLSTM
	}
}

// ChatSendRequest carries one user message into a session
type ChatSendRequest struct {
	SessionID string  `json:"session_id"`
	Message   string  `json:"message" binding:"required,min=1,max=1000"`
	Context   Context `json:"context"`
}

// PortfolioEntry is one holding submitted for analysis. Value is monetary,
// kept as a decimal so serialization round-trips without float drift.
type PortfolioEntry struct {
	Symbol string          `json:"symbol"`
	Value  decimal.Decimal `json:"value"`
}

// Validate checks a single entry, reporting the offending field
func (e *PortfolioEntry) Validate(index int) (string, error) {
	if len(e.Symbol) < 1 || len(e.Symbol) > 10 {
		return fmt.Sprintf("portfolio[%d].symbol", index), fmt.Errorf("symbol must be 1-10 characters")
	}
	if !e.Value.IsPositive() {
		return fmt.Sprintf("portfolio[%d].value", index), fmt.Errorf("value must be a positive number")
	}
	return "", nil
}

// PortfolioAnalyzeRequest is the payload for portfolio risk analysis
type PortfolioAnalyzeRequest struct {
	Portfolio []PortfolioEntry `json:"portfolio"`
}

// Validate checks the submitted portfolio, reporting the first offending field
func (r *PortfolioAnalyzeRequest) Validate() (string, error) {
	if len(r.Portfolio) == 0 {
		return "portfolio", fmt.Errorf("portfolio must contain at least one entry")
	}
	for i := range r.Portfolio {
		if field, err := r.Portfolio[i].Validate(i); err != nil {
			return field, err
		}
	}
	return "", nil
}

// PortfolioRecommendationsRequest adds an optional risk tolerance
type PortfolioRecommendationsRequest struct {
	Portfolio     []PortfolioEntry `json:"portfolio"`
	RiskTolerance string           `json:"risk_tolerance"`
}

// Validate checks the payload and applies the risk tolerance default
func (r *PortfolioRecommendationsRequest) Validate() (string, error) {
	analyze := PortfolioAnalyzeRequest{Portfolio: r.Portfolio}
	if field, err := analyze.Validate(); err != nil {
		return field, err
	}
	switch r.RiskTolerance {
	case "":
		r.RiskTolerance = RiskModerate
	case RiskConservative, RiskModerate, RiskAggressive:
	default:
		return "risk_tolerance", fmt.Errorf("risk_tolerance must be one of conservative, moderate, aggressive")
	}
	return "", nil
}

// ValidateSymbol checks a path symbol parameter against the shared bound
func ValidateSymbol(symbol string) (string, error) {
	if len(symbol) < 1 || len(symbol) > 10 {
		return "symbol", fmt.Errorf("symbol must be 1-10 characters")
	}
	return "", nil
}

// ValidatePeriod checks a history period, applying the default when empty
func ValidatePeriod(period string) (string, string, error) {
	if period == "" {
		return DefaultHistoryPeriod, "", nil
	}
	if !HistoryPeriods[period] {
		return "", "period", fmt.Errorf("period must be one of 1mo, 3mo, 6mo, 1y, 2y, 5y, max")
	}
	return period, "", nil
}
