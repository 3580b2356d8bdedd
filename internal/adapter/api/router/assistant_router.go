package router

import (
	"github.com/labstack/echo/v4"

	"civicsolve/internal/adapter/api/handler"
)

func SetupAssistantRouter(e *echo.Echo) {
	assistantHandler := handler.GetAssistantHandler()

	assistant := e.Group("/v1/assistant")
	assistant.GET("/greeting", assistantHandler.Greeting)
	assistant.POST("/messages", assistantHandler.SendMessage)
}
