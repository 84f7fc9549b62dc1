package api

import (
	"net/http"

	"github.com/RowanMueller/ai-production/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves the dashboard counters
type StatsHandler struct {
	metrics *metrics.Metrics
}

// NewStatsHandler creates a stats handler
func NewStatsHandler(m *metrics.Metrics) *StatsHandler {
	return &StatsHandler{metrics: m}
}

// Stats returns a JSON snapshot of the gateway counters
func (h *StatsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}
