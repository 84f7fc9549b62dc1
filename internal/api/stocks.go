package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/RowanMueller/ai-production/internal/models"
	"github.com/RowanMueller/ai-production/internal/upstream"
	apperrors "github.com/RowanMueller/ai-production/pkg/errors"

	"github.com/gin-gonic/gin"
)

// StockHandler exposes the stock analysis endpoints. Every route validates
// input and forwards to the analysis service.
type StockHandler struct {
	ai upstream.AnalysisService
}

// NewStockHandler creates a stock handler
func NewStockHandler(ai upstream.AnalysisService) *StockHandler {
	return &StockHandler{ai: ai}
}

// RegisterRoutes registers the stock routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stocks := rg.Group("/stocks")
	{
		stocks.GET("/available", h.Available)
		stocks.POST("/predict", h.Predict)
		stocks.GET("/history/:symbol", h.History)
		stocks.GET("/analysis/:symbol", h.Analysis)
		stocks.GET("/sentiment/:symbol", h.Sentiment)
		stocks.POST("/recommendations", h.Recommendations)
	}
}

// Available lists the symbols the analysis service can handle
func (h *StockHandler) Available(c *gin.Context) {
	raw, err := h.ai.AvailableStocks(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// Predict validates a forecast request, applies defaults and forwards it
func (h *StockHandler) Predict(c *gin.Context) {
	var req models.PredictRequest
	if appErr := bindJSON(c, &req); appErr != nil {
		c.Error(appErr)
		return
	}
	req.ApplyDefaults()

	raw, err := h.ai.Predict(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// History returns the historical series for a symbol and period
func (h *StockHandler) History(c *gin.Context) {
	symbol := c.Param("symbol")
	if field, err := models.ValidateSymbol(symbol); err != nil {
		c.Error(apperrors.NewValidationError(field, err.Error()))
		return
	}
	period, field, err := models.ValidatePeriod(c.Query("period"))
	if err != nil {
		c.Error(apperrors.NewValidationError(field, err.Error()))
		return
	}

	raw, err := h.ai.History(c.Request.Context(), symbol, period)
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// Analysis returns the technical/fundamental snapshot for a symbol
func (h *StockHandler) Analysis(c *gin.Context) {
	h.forwardSymbolGet(c, h.ai.Analysis)
}

// Sentiment returns market sentiment for a symbol
func (h *StockHandler) Sentiment(c *gin.Context) {
	h.forwardSymbolGet(c, h.ai.Sentiment)
}

// Recommendations forwards an arbitrary recommendations payload
func (h *StockHandler) Recommendations(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(apperrors.NewValidationError("body", "unable to read request body"))
		return
	}

	raw, upErr := h.ai.Recommendations(c.Request.Context(), body)
	if upErr != nil {
		c.Error(upErr)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// symbolCall is any upstream lookup keyed by a single symbol
type symbolCall func(ctx context.Context, symbol string) (json.RawMessage, error)

// forwardSymbolGet validates the path symbol and relays a GET-style call
func (h *StockHandler) forwardSymbolGet(c *gin.Context, call symbolCall) {
	symbol := c.Param("symbol")
	if field, err := models.ValidateSymbol(symbol); err != nil {
		c.Error(apperrors.NewValidationError(field, err.Error()))
		return
	}

	raw, err := call(c.Request.Context(), symbol)
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
