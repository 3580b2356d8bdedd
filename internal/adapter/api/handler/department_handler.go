package handler

import (
	"github.com/labstack/echo/v4"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/usecase"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/response"
)

type DepartmentHandler struct {
	departmentUseCase *usecase.DepartmentUseCase
}

func NewDepartmentHandler(departmentUseCase *usecase.DepartmentUseCase) *DepartmentHandler {
	return &DepartmentHandler{
		departmentUseCase: departmentUseCase,
	}
}

type createDepartmentRequest struct {
	Name        string         `json:"name" validate:"required,max=100"`
	Description string         `json:"description" validate:"max=500"`
	Contact     entity.Contact `json:"contact"`
}

type createBranchRequest struct {
	Name     string                `json:"name" validate:"required,max=100"`
	Location entity.BranchLocation `json:"location"`
	Contact  entity.Contact        `json:"contact"`
}

func (h *DepartmentHandler) ListDepartments(c echo.Context) error {
	departments, err := h.departmentUseCase.ListDepartments(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, departments)
}

func (h *DepartmentHandler) CreateDepartment(c echo.Context) error {
	var req createDepartmentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	department, err := h.departmentUseCase.CreateDepartment(c.Request().Context(), usecase.CreateDepartmentInput{
		Name:        req.Name,
		Description: req.Description,
		Contact:     req.Contact,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, "Department created successfully", department)
}

func (h *DepartmentHandler) ListBranches(c echo.Context) error {
	branches, err := h.departmentUseCase.ListBranches(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, branches)
}

func (h *DepartmentHandler) CreateBranch(c echo.Context) error {
	var req createBranchRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	branch, err := h.departmentUseCase.CreateBranch(c.Request().Context(), c.Param("id"), usecase.CreateBranchInput{
		Name:     req.Name,
		Location: req.Location,
		Contact:  req.Contact,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, "Branch created successfully", branch)
}
