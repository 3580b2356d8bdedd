package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"civicsolve/internal/domain/repository"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/response"
)

type HealthHandler struct {
	complaintRepo repository.ComplaintRepository
}

func NewHealthHandler(complaintRepo repository.ComplaintRepository) *HealthHandler {
	return &HealthHandler{
		complaintRepo: complaintRepo,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// CheckStore pings the entity store; an unreachable store answers 503.
func (h *HealthHandler) CheckStore(c echo.Context) error {
	if err := h.complaintRepo.Ping(c.Request().Context()); err != nil {
		if !errors.IsStoreUnavailable(err) {
			err = errors.StoreUnavailable(err)
		}
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"status": "Store connected",
	})
}
