package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"civicsolve/internal/adapter/api/middleware"
	"civicsolve/internal/domain/entity"
	"civicsolve/internal/usecase"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/response"
	"civicsolve/pkg/utils"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type registerRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,len=10,numeric"`
	CitizenID string `json:"citizenId" validate:"required"`
	DOB       string `json:"dob" validate:"required"` // YYYY-MM-DD or RFC 3339
	Location  string `json:"location" validate:"required"`
	Gender    string `json:"gender" validate:"required,oneof=male female other"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

type updateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Phone    string `json:"phone" validate:"omitempty,len=10,numeric"`
	Location string `json:"location"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	dob, err := parseDate(req.DOB)
	if err != nil {
		return response.Error(c, errors.Validation("dob must be a date (YYYY-MM-DD)"))
	}

	user, err := h.userUseCase.Register(c.Request().Context(), middleware.UserID(c), usecase.RegisterInput{
		Name:      req.Name,
		Phone:     req.Phone,
		CitizenID: req.CitizenID,
		DOB:       dob,
		Location:  req.Location,
		Gender:    entity.Gender(req.Gender),
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, "User registered successfully", map[string]interface{}{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"phone": user.Phone,
	})
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userUseCase.GetProfile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), middleware.UserID(c), entity.ProfileUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		Location: req.Location,
		Email:    req.Email,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, "Profile updated successfully", user)
}

func (h *UserHandler) GetDashboard(c echo.Context) error {
	dashboard, err := h.userUseCase.GetDashboard(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, dashboard)
}

func (h *UserHandler) SearchUsers(c echo.Context) error {
	page := utils.GetPaginationParams(c)

	users, total, err := h.userUseCase.SearchUsers(c.Request().Context(), c.QueryParam("search"), page)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, users, response.Pagination{
		CurrentPage:  page.Page,
		TotalPages:   utils.TotalPages(total, page.PageSize),
		TotalItems:   total,
		ItemsPerPage: page.PageSize,
	})
}
