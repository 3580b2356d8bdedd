package router

import (
	"github.com/labstack/echo/v4"

	"civicsolve/internal/adapter/api/handler"
	"civicsolve/internal/adapter/api/middleware"
)

func SetupWebSocketRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	wsHandler := handler.GetWebSocketHandler()
	e.GET("/v1/ws", wsHandler.HandleWebSocket, authMiddleware.QueryTokenAuth)
}
