package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"civicsolve/internal/adapter/api/middleware"
	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/query"
	"civicsolve/internal/usecase"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/response"
)

type ComplaintHandler struct {
	complaintUseCase *usecase.ComplaintUseCase
	lifecycleUseCase *usecase.LifecycleUseCase
	statsUseCase     *usecase.StatsUseCase
}

func NewComplaintHandler(
	complaintUseCase *usecase.ComplaintUseCase,
	lifecycleUseCase *usecase.LifecycleUseCase,
	statsUseCase *usecase.StatsUseCase,
) *ComplaintHandler {
	return &ComplaintHandler{
		complaintUseCase: complaintUseCase,
		lifecycleUseCase: lifecycleUseCase,
		statsUseCase:     statsUseCase,
	}
}

type coordinatesRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

type mediaRequest struct {
	Type string `json:"type" validate:"oneof=image video audio document"`
	URI  string `json:"uri" validate:"required"`
	Name string `json:"name"`
}

type createComplaintRequest struct {
	Title       string              `json:"title" validate:"required,max=100"`
	Description string              `json:"description" validate:"required,max=500"`
	Category    string              `json:"category" validate:"required,complaint_category"`
	Priority    string              `json:"priority" validate:"omitempty,oneof=high medium low"`
	Location    string              `json:"location"`
	Coordinates *coordinatesRequest `json:"coordinates" validate:"required"`
	Media       []mediaRequest      `json:"media" validate:"omitempty,dive"`
}

func (r *createComplaintRequest) trim() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Priority = strings.TrimSpace(r.Priority)
}

func (r *createComplaintRequest) input() usecase.CreateComplaintInput {
	media := make([]entity.MediaAttachment, 0, len(r.Media))
	for _, m := range r.Media {
		media = append(media, entity.MediaAttachment{Type: entity.MediaType(m.Type), URI: m.URI, Name: m.Name})
	}
	return usecase.CreateComplaintInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
		Location:    r.Location,
		Coordinates: &entity.Coordinates{Latitude: r.Coordinates.Latitude, Longitude: r.Coordinates.Longitude},
		Media:       media,
	}
}

type updateStatusRequest struct {
	Status          string `json:"status"`
	WorkOrderNumber string `json:"workOrderNumber"`
}

func paginated(c echo.Context, result *query.Result) error {
	return response.Paginated(c, result.Items, response.Pagination{
		CurrentPage:  result.Meta.CurrentPage,
		TotalPages:   result.Meta.TotalPages,
		TotalItems:   result.Meta.TotalItems,
		ItemsPerPage: result.Meta.ItemsPerPage,
	})
}

// ListComplaints serves one page of the filtered listing. A missing, non-numeric or
// non-positive page or limit falls back to 1 and 10, and limit is capped at 100, so
// pagination.itemsPerPage reports the size actually used.
func (h *ComplaintHandler) ListComplaints(c echo.Context) error {
	result, err := h.complaintUseCase.ListComplaints(c.Request().Context(), query.FromValues(c.QueryParams()))
	if err != nil {
		return response.Error(c, err)
	}
	return paginated(c, result)
}

func (h *ComplaintHandler) GetStats(c echo.Context) error {
	stats, err := h.statsUseCase.GetStats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, stats)
}

func (h *ComplaintHandler) MyComplaints(c echo.Context) error {
	result, err := h.complaintUseCase.MyComplaints(c.Request().Context(), middleware.UserID(c), query.FromValues(c.QueryParams()))
	if err != nil {
		return response.Error(c, err)
	}
	return paginated(c, result)
}

func (h *ComplaintHandler) GetComplaint(c echo.Context) error {
	complaint, err := h.complaintUseCase.GetComplaint(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, complaint)
}

func (h *ComplaintHandler) CreateComplaint(c echo.Context) error {
	var req createComplaintRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	req.trim()
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	complaint, err := h.complaintUseCase.CreateComplaint(c.Request().Context(), middleware.UserID(c), req.input())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, "Complaint created successfully", complaint)
}

func (h *ComplaintHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	complaint, err := h.lifecycleUseCase.UpdateStatus(c.Request().Context(), c.Param("id"), usecase.UpdateStatusInput{
		Status:          req.Status,
		WorkOrderNumber: req.WorkOrderNumber,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, "Complaint status updated successfully", complaint)
}

func (h *ComplaintHandler) Upvote(c echo.Context) error {
	upvotes, err := h.lifecycleUseCase.Upvote(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, "Complaint upvoted successfully", map[string]int{
		"upvotes": upvotes,
	})
}

func (h *ComplaintHandler) Escalate(c echo.Context) error {
	count, err := h.lifecycleUseCase.Escalate(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, "Complaint escalated successfully", map[string]int{
		"escalationCount": count,
	})
}
