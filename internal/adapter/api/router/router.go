package router

import (
	"github.com/labstack/echo/v4"

	"civicsolve/internal/adapter/api/middleware"
	"civicsolve/internal/infrastructure/ratelimit"
)

const (
	ActionUpvote   = "upvote"
	ActionEscalate = "escalate"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, limiter *ratelimit.RateLimiter) {
	SetupComplaintRouter(e, authMiddleware, limiter)
	SetupUserRouter(e, authMiddleware, adminMiddleware)
	SetupDepartmentRouter(e, authMiddleware, adminMiddleware)
	SetupAssistantRouter(e)
	SetupWebSocketRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
