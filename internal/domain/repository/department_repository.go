package repository

import (
	"context"

	"civicsolve/internal/domain/entity"
)

type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department *entity.Department) error
	GetDepartment(ctx context.Context, id string) (*entity.Department, error)
	GetDepartmentByName(ctx context.Context, name string) (*entity.Department, error)
	ListDepartments(ctx context.Context, activeOnly bool) ([]*entity.Department, error)

	CreateBranch(ctx context.Context, branch *entity.Branch) error
	GetBranch(ctx context.Context, id string) (*entity.Branch, error)
	ListBranches(ctx context.Context, departmentID string) ([]*entity.Branch, error)
}
