package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techfront-institute/academy-api/internal/models"
	"github.com/techfront-institute/academy-api/internal/service"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
	"github.com/techfront-institute/academy-api/pkg/response"
)

// FeeHandler exposes ledger write endpoints and the waiver approval queue.
type FeeHandler struct {
	fees    *service.FeeService
	metrics *service.MetricsService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees *service.FeeService, metrics *service.MetricsService) *FeeHandler {
	return &FeeHandler{fees: fees, metrics: metrics}
}

// Record godoc
// @Summary Record a payment or waiver for a billing month
// @Description Waiver-bearing submissions from non-admins are staged for approval.
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /fees [post]
func (h *FeeHandler) Record(c *gin.Context) {
	var req service.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.fees.RecordPayment(c.Request.Context(), currentClaims(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountPayment(string(result.Status))
	if result.Status == models.PaymentPending {
		response.JSON(c, http.StatusAccepted, result, nil)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// History godoc
// @Summary Fee history for a student and course
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/courses/{courseId}/fees [get]
func (h *FeeHandler) History(c *gin.Context) {
	txs, err := h.fees.History(c.Request.Context(), c.Param("id"), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, txs, nil)
}

// ListPending godoc
// @Summary List staged waivers awaiting approval
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /fees/pending [get]
func (h *FeeHandler) ListPending(c *gin.Context) {
	pending, err := h.fees.ListPendingWaivers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending, nil)
}

// Approve godoc
// @Summary Approve a staged waiver
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Pending waiver ID"
// @Success 200 {object} response.Envelope
// @Router /fees/pending/{id}/approve [post]
func (h *FeeHandler) Approve(c *gin.Context) {
	entry, err := h.fees.ApproveWaiver(c.Request.Context(), currentClaims(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.CountWaiverApproval()
	response.JSON(c, http.StatusOK, entry, nil)
}

// Reject godoc
// @Summary Reject a staged waiver
// @Tags Fees
// @Security BearerAuth
// @Param id path string true "Pending waiver ID"
// @Success 204
// @Router /fees/pending/{id} [delete]
func (h *FeeHandler) Reject(c *gin.Context) {
	if err := h.fees.RejectWaiver(c.Request.Context(), currentClaims(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
