package router

import (
	"github.com/labstack/echo/v4"

	"civicsolve/internal/adapter/api/handler"
	"civicsolve/internal/adapter/api/middleware"
)

func SetupDepartmentRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	departmentHandler := handler.GetDepartmentHandler()

	departments := e.Group("/v1/departments")

	departments.GET("", departmentHandler.ListDepartments)
	departments.GET("/:id/branches", departmentHandler.ListBranches)

	departments.POST("", departmentHandler.CreateDepartment, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
	departments.POST("/:id/branches", departmentHandler.CreateBranch, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
}
