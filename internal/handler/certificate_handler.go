package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techfront-institute/academy-api/internal/service"
	"github.com/techfront-institute/academy-api/pkg/response"
)

// CertificateHandler renders completion certificates.
type CertificateHandler struct {
	certificates *service.CertificateService
}

// NewCertificateHandler constructs CertificateHandler.
func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Generate godoc
// @Summary Completion certificate PDF for a finished course
// @Tags Certificates
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Success 200
// @Router /students/{id}/courses/{courseId}/certificate [get]
func (h *CertificateHandler) Generate(c *gin.Context) {
	pdf, serial, err := h.certificates.Generate(c.Request.Context(), c.Param("id"), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", serial+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
