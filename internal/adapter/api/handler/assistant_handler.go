package handler

import (
	"github.com/labstack/echo/v4"

	"civicsolve/internal/assistant"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/response"
)

type AssistantHandler struct{}

func NewAssistantHandler() *AssistantHandler {
	return &AssistantHandler{}
}

type assistantMessageRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

func (h *AssistantHandler) SendMessage(c echo.Context) error {
	var req assistantMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, assistant.Answer(req.Message))
}

func (h *AssistantHandler) Greeting(c echo.Context) error {
	return response.Success(c, assistant.Greet())
}
