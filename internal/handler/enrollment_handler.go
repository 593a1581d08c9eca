package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techfront-institute/academy-api/internal/service"
	appErrors "github.com/techfront-institute/academy-api/pkg/errors"
	"github.com/techfront-institute/academy-api/pkg/response"
)

// EnrollmentHandler exposes course subscription endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Enroll godoc
// @Summary Enroll a student in an additional course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/courses [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.enrollments.Enroll(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Remove godoc
// @Summary Remove a course subscription
// @Description Fee history for the pair is retained.
// @Tags Enrollments
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Success 204
// @Router /students/{id}/courses/{courseId} [delete]
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	if err := h.enrollments.Remove(c.Request.Context(), c.Param("id"), c.Param("courseId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetStatus godoc
// @Summary Transition a course subscription's lifecycle state
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param courseId path string true "Course ID"
// @Param payload body service.CourseStatusRequest true "Status payload"
// @Success 204
// @Router /students/{id}/courses/{courseId}/status [put]
func (h *EnrollmentHandler) SetStatus(c *gin.Context) {
	var req service.CourseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.SetCourseStatus(c.Request.Context(), c.Param("id"), c.Param("courseId"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
