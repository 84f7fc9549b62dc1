package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictRequestDefaults(t *testing.T) {
	req := PredictRequest{Symbol: "AAPL"}
	req.ApplyDefaults()

	assert.Equal(t, 7, req.Days)
	assert.Equal(t, ModelLSTM, req.Model)
}

func TestPredictRequestDefaultsDoNotOverride(t *testing.T) {
	req := PredictRequest{Symbol: "AAPL", Days: 14, Model: ModelEnsemble}
	req.ApplyDefaults()

	assert.Equal(t, 14, req.Days)
	assert.Equal(t, ModelEnsemble, req.Model)
}

func TestPortfolioAnalyzeValidateEmpty(t *testing.T) {
	req := PortfolioAnalyzeRequest{}
	field, err := req.Validate()

	require.Error(t, err)
	assert.Equal(t, "portfolio", field)
}

func TestPortfolioAnalyzeValidateEntries(t *testing.T) {
	tests := []struct {
		name      string
		entry     PortfolioEntry
		wantField string
	}{
		{
			name:      "empty symbol",
			entry:     PortfolioEntry{Symbol: "", Value: decimal.NewFromInt(100)},
			wantField: "portfolio[0].symbol",
		},
		{
			name:      "symbol too long",
			entry:     PortfolioEntry{Symbol: "ABCDEFGHIJK", Value: decimal.NewFromInt(100)},
			wantField: "portfolio[0].symbol",
		},
		{
			name:      "zero value",
			entry:     PortfolioEntry{Symbol: "AAPL", Value: decimal.Zero},
			wantField: "portfolio[0].value",
		},
		{
			name:      "negative value",
			entry:     PortfolioEntry{Symbol: "AAPL", Value: decimal.NewFromInt(-5)},
			wantField: "portfolio[0].value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PortfolioAnalyzeRequest{Portfolio: []PortfolioEntry{tt.entry}}
			field, err := req.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.wantField, field)
		})
	}
}

func TestPortfolioAnalyzeValidateOK(t *testing.T) {
	req := PortfolioAnalyzeRequest{Portfolio: []PortfolioEntry{
		{Symbol: "AAPL", Value: decimal.NewFromInt(1000)},
		{Symbol: "MSFT", Value: decimal.NewFromFloat(250.50)},
	}}

	field, err := req.Validate()
	assert.NoError(t, err)
	assert.Empty(t, field)
}

func TestPortfolioRecommendationsRiskToleranceDefault(t *testing.T) {
	req := PortfolioRecommendationsRequest{
		Portfolio: []PortfolioEntry{{Symbol: "AAPL", Value: decimal.NewFromInt(1000)}},
	}

	_, err := req.Validate()
	require.NoError(t, err)
	assert.Equal(t, RiskModerate, req.RiskTolerance)
}

func TestPortfolioRecommendationsRiskToleranceInvalid(t *testing.T) {
	req := PortfolioRecommendationsRequest{
		Portfolio:     []PortfolioEntry{{Symbol: "AAPL", Value: decimal.NewFromInt(1000)}},
		RiskTolerance: "reckless",
	}

	field, err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, "risk_tolerance", field)
}

func TestValidatePeriod(t *testing.T) {
	period, field, err := ValidatePeriod("")
	require.NoError(t, err)
	assert.Empty(t, field)
	assert.Equal(t, "1y", period)

	period, _, err = ValidatePeriod("3mo")
	require.NoError(t, err)
	assert.Equal(t, "3mo", period)

	_, field, err = ValidatePeriod("14d")
	require.Error(t, err)
	assert.Equal(t, "period", field)
}

func TestValidateSymbol(t *testing.T) {
	_, err := ValidateSymbol("AAPL")
	assert.NoError(t, err)

	field, err := ValidateSymbol("")
	require.Error(t, err)
	assert.Equal(t, "symbol", field)

	_, err = ValidateSymbol("TOOLONGSYMBOL")
	assert.Error(t, err)
}

func TestContextMergeShallow(t *testing.T) {
	ctx := Context{}
	ctx = ctx.Merge(Context{"a": 1})
	ctx = ctx.Merge(Context{"b": 2})
	assert.Equal(t, Context{"a": 1, "b": 2}, ctx)

	ctx = ctx.Merge(Context{"a": 3})
	assert.Equal(t, Context{"a": 3, "b": 2}, ctx)
}

func TestContextMergeDoesNotMutate(t *testing.T) {
	base := Context{"a": 1}
	_ = base.Merge(Context{"a": 2, "b": 3})
	assert.Equal(t, Context{"a": 1}, base)
}

func TestSessionLastMessages(t *testing.T) {
	sess := Session{}
	for i := 0; i < 15; i++ {
		sess.Messages = append(sess.Messages, Message{Content: string(rune('a' + i))})
	}

	last := sess.LastMessages(10)
	require.Len(t, last, 10)
	assert.Equal(t, "f", last[0].Content)
	assert.Equal(t, "o", last[9].Content)

	assert.Len(t, sess.LastMessages(100), 15)
	assert.Nil(t, sess.LastMessages(0))
}
