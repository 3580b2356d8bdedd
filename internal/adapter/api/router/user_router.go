package router

import (
	"github.com/labstack/echo/v4"

	"civicsolve/internal/adapter/api/handler"
	"civicsolve/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")

	users.POST("/register", userHandler.Register, authMiddleware.OptionalAuth)

	users.GET("/profile", userHandler.GetProfile, authMiddleware.Authenticate)
	users.PATCH("/profile", userHandler.UpdateProfile, authMiddleware.Authenticate)
	users.GET("/dashboard", userHandler.GetDashboard, authMiddleware.Authenticate)

	users.GET("/search", userHandler.SearchUsers, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
}
