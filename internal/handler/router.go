package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/techfront-institute/academy-api/internal/middleware"
	"github.com/techfront-institute/academy-api/internal/models"
	"github.com/techfront-institute/academy-api/internal/service"
)

// Dependencies bundles everything the route table needs.
type Dependencies struct {
	Auth         *service.AuthService
	Users        *UserHandler
	AuthH        *AuthHandler
	Courses      *CourseHandler
	Students     *StudentHandler
	Enrollments  *EnrollmentHandler
	Fees         *FeeHandler
	Ledger       *LedgerHandler
	Analytics    *AnalyticsHandler
	Exports      *ExportHandler
	Certificates *CertificateHandler
}

// RegisterRoutes mounts the API surface under the given prefix.
func RegisterRoutes(r *gin.Engine, prefix string, deps Dependencies) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.AuthH.Login)
		auth.POST("/refresh", deps.AuthH.Refresh)
		auth.POST("/logout", middleware.JWT(deps.Auth), deps.AuthH.Logout)
		auth.GET("/me", middleware.JWT(deps.Auth), deps.AuthH.Me)
		auth.POST("/accounts",
			middleware.JWT(deps.Auth),
			middleware.RequireRoles(models.RoleAdmin),
			deps.AuthH.CreateAccount)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(deps.Auth))

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	anyStaff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher, models.RoleCashier)
	billingStaff := middleware.RequireRoles(models.RoleAdmin, models.RoleCashier)

	users := protected.Group("/users", adminOnly)
	{
		users.GET("", deps.Users.List)
		users.GET("/:id", deps.Users.Get)
	}

	courses := protected.Group("/courses")
	{
		courses.GET("", anyStaff, deps.Courses.List)
		courses.GET("/:id", anyStaff, deps.Courses.Get)
		courses.POST("", adminOnly, deps.Courses.Create)
		courses.PUT("/:id", adminOnly, deps.Courses.Update)
		courses.DELETE("/:id", adminOnly, deps.Courses.Delete)
	}

	students := protected.Group("/students")
	{
		students.GET("", anyStaff, deps.Students.List)
		students.POST("", anyStaff, deps.Students.Register)
		students.GET("/pending", adminOnly, deps.Students.ListPending)
		students.POST("/pending/:id/approve", adminOnly, deps.Students.Approve)
		students.DELETE("/pending/:id", adminOnly, deps.Students.Reject)
		students.GET("/:id", anyStaff, deps.Students.Get)
		students.POST("/:id/courses", adminOnly, deps.Enrollments.Enroll)
		students.DELETE("/:id/courses/:courseId", adminOnly, deps.Enrollments.Remove)
		students.PUT("/:id/courses/:courseId/status", adminOnly, deps.Enrollments.SetStatus)
		students.GET("/:id/courses/:courseId/fees", billingStaff, deps.Fees.History)
		students.GET("/:id/courses/:courseId/certificate", anyStaff, deps.Certificates.Generate)
	}

	fees := protected.Group("/fees")
	{
		fees.POST("", billingStaff, deps.Fees.Record)
		fees.GET("/pending", adminOnly, deps.Fees.ListPending)
		fees.POST("/pending/:id/approve", adminOnly, deps.Fees.Approve)
		fees.DELETE("/pending/:id", adminOnly, deps.Fees.Reject)
	}

	protected.GET("/ledger", anyStaff, deps.Ledger.Report)
	protected.GET("/analytics/collections", anyStaff, deps.Analytics.Collections)

	exports := api.Group("/exports")
	{
		// download authenticates through the signed token itself
		exports.GET("/download", deps.Exports.Download)
		exports.POST("", middleware.JWT(deps.Auth), anyStaff, deps.Exports.Enqueue)
		exports.GET("/:id", middleware.JWT(deps.Auth), anyStaff, deps.Exports.Status)
	}
}
