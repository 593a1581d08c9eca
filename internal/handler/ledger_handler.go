package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techfront-institute/academy-api/internal/service"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
	"github.com/techfront-institute/academy-api/pkg/response"
)

// LedgerHandler exposes the read-side fee ledger report.
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler constructs LedgerHandler.
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Report godoc
// @Summary Flattened fee ledger report for a month window
// @Tags Ledger
// @Produce json
// @Security BearerAuth
// @Param from_month query string true "Start month abbreviation, e.g. Jan"
// @Param from_year query int true "Start year"
// @Param to_month query string true "End month abbreviation"
// @Param to_year query int true "End year"
// @Param search query string false "Search by student name or number"
// @Param course_id query string false "Filter by course"
// @Param status query string false "active, inactive or all"
// @Success 200 {object} response.Envelope
// @Router /ledger [get]
func (h *LedgerHandler) Report(c *gin.Context) {
	var query service.LedgerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	rows, err := h.ledger.Report(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil, map[string]interface{}{"count": len(rows)})
}
