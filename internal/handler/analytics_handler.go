package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techfront-institute/academy-api/internal/service"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
	"github.com/techfront-institute/academy-api/pkg/response"
)

// AnalyticsHandler exposes dashboard aggregation endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Collections godoc
// @Summary Monthly fee collection figures for a window
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param from_month query string true "Start month abbreviation"
// @Param from_year query int true "Start year"
// @Param to_month query string true "End month abbreviation"
// @Param to_year query int true "End year"
// @Success 200 {object} response.Envelope
// @Router /analytics/collections [get]
func (h *AnalyticsHandler) Collections(c *gin.Context) {
	var query service.LedgerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	summary, err := h.analytics.MonthlyCollections(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
