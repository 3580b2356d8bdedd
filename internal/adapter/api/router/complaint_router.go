package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"civicsolve/internal/adapter/api/handler"
	"civicsolve/internal/adapter/api/middleware"
	"civicsolve/internal/infrastructure/ratelimit"
)

func SetupComplaintRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	complaintHandler := handler.GetComplaintHandler()
	mediaHandler := handler.GetMediaHandler()

	complaints := e.Group("/v1/complaints")

	complaints.GET("", complaintHandler.ListComplaints)
	complaints.GET("/stats", complaintHandler.GetStats)
	complaints.GET("/my-complaints", complaintHandler.MyComplaints, authMiddleware.Authenticate)
	complaints.GET("/:id", complaintHandler.GetComplaint)

	complaints.POST("", complaintHandler.CreateComplaint, authMiddleware.OptionalAuth)
	complaints.POST("/media", mediaHandler.Upload, authMiddleware.OptionalAuth, echomw.BodyLimit("11M"))

	complaints.PATCH("/:id/status", complaintHandler.UpdateStatus, authMiddleware.Authenticate)
	complaints.POST("/:id/upvote", complaintHandler.Upvote,
		authMiddleware.Authenticate, middleware.RateLimit(limiter, ActionUpvote))
	complaints.POST("/:id/escalate", complaintHandler.Escalate,
		authMiddleware.Authenticate, middleware.RateLimit(limiter, ActionEscalate))
}
