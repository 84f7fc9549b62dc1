package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/RowanMueller/ai-production/internal/catalog"
	"github.com/RowanMueller/ai-production/internal/models"
	"github.com/RowanMueller/ai-production/internal/upstream"
	apperrors "github.com/RowanMueller/ai-production/pkg/errors"

	"github.com/gin-gonic/gin"
)

// PortfolioHandler exposes the portfolio endpoints. Analyze and
// recommendations bodies are validated, then forwarded to the analysis
// service byte-for-byte.
type PortfolioHandler struct {
	ai upstream.AnalysisService
}

// NewPortfolioHandler creates a portfolio handler
func NewPortfolioHandler(ai upstream.AnalysisService) *PortfolioHandler {
	return &PortfolioHandler{ai: ai}
}

// RegisterRoutes registers the portfolio routes on the given group
func (h *PortfolioHandler) RegisterRoutes(rg *gin.RouterGroup) {
	portfolio := rg.Group("/portfolio")
	{
		portfolio.POST("/analyze", h.Analyze)
		portfolio.POST("/recommendations", h.Recommendations)
		portfolio.GET("/stock-info/:symbol", h.StockInfo)
		portfolio.GET("/risk-metrics/:symbol", h.RiskMetrics)
		portfolio.GET("/available-stocks", h.AvailableStocks)
	}
}

// Analyze validates a portfolio submission and forwards it unchanged
func (h *PortfolioHandler) Analyze(c *gin.Context) {
	body, appErr := h.readAndValidate(c, func(body []byte) (string, error) {
		var req models.PortfolioAnalyzeRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "body", err
		}
		return req.Validate()
	})
	if appErr != nil {
		c.Error(appErr)
		return
	}

	raw, err := h.ai.PortfolioAnalyze(c.Request.Context(), body)
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// Recommendations validates a recommendations payload and forwards it unchanged
func (h *PortfolioHandler) Recommendations(c *gin.Context) {
	body, appErr := h.readAndValidate(c, func(body []byte) (string, error) {
		var req models.PortfolioRecommendationsRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "body", err
		}
		return req.Validate()
	})
	if appErr != nil {
		c.Error(appErr)
		return
	}

	raw, err := h.ai.PortfolioRecommendations(c.Request.Context(), body)
	if err != nil {
		c.Error(err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// StockInfo returns detailed stock information for a symbol
func (h *PortfolioHandler) StockInfo(c *gin.Context) {
	h.forwardSymbolGet(c, h.ai.StockInfo)
}

// RiskMetrics returns risk metrics for a symbol
func (h *PortfolioHandler) RiskMetrics(c *gin.Context) {
	h.forwardSymbolGet(c, h.ai.RiskMetrics)
}

// AvailableStocks serves the static curated list; no upstream call
func (h *PortfolioHandler) AvailableStocks(c *gin.Context) {
	stocks := catalog.Popular()
	c.JSON(http.StatusOK, gin.H{
		"stocks": stocks,
		"count":  len(stocks),
	})
}

// readAndValidate reads the raw body so the validated payload can be
// forwarded without re-serialization.
func (h *PortfolioHandler) readAndValidate(c *gin.Context, validate func([]byte) (string, error)) ([]byte, *apperrors.AppError) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apperrors.NewValidationError("body", "unable to read request body")
	}

	if field, err := validate(body); err != nil {
		if field == "body" {
			return nil, apperrors.NewValidationError("body", "request body must be valid JSON")
		}
		return nil, apperrors.NewValidationError(field, err.Error())
	}
	return body, nil
}

func (h *PortfolioHandler) forwardSymbolGet(c *gin.Context, call symbolCall) {
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
