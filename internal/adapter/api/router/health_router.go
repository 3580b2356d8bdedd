package router

import (
	"github.com/labstack/echo/v4"

	"civicsolve/internal/adapter/api/handler"
	"civicsolve/internal/infrastructure/metrics"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/health/store", healthHandler.CheckStore)
	e.GET("/metrics", metrics.Handler())
}
