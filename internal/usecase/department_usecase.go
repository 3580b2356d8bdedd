package usecase

import (
	"context"
	"strings"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/repository"
	"civicsolve/pkg/errors"
)

type DepartmentUseCase struct {
	departmentRepo repository.DepartmentRepository
}

func NewDepartmentUseCase(departmentRepo repository.DepartmentRepository) *DepartmentUseCase {
	return &DepartmentUseCase{
		departmentRepo: departmentRepo,
	}
}

type CreateDepartmentInput struct {
	Name        string
	Description string
	Contact     entity.Contact
}

type CreateBranchInput struct {
	Name     string
	Location entity.BranchLocation
	Contact  entity.Contact
}

func (uc *DepartmentUseCase) ListDepartments(ctx context.Context) ([]*entity.Department, error) {
	return uc.departmentRepo.ListDepartments(ctx, true)
}

func (uc *DepartmentUseCase) CreateDepartment(ctx context.Context, input CreateDepartmentInput) (*entity.Department, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.MissingField("name")
	}

	department := &entity.Department{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Contact:     input.Contact,
		IsActive:    true,
	}
	if err := uc.departmentRepo.CreateDepartment(ctx, department); err != nil {
		return nil, err
	}
	return department, nil
}

func (uc *DepartmentUseCase) ListBranches(ctx context.Context, departmentID string) ([]*entity.Branch, error) {
	if _, err := uc.departmentRepo.GetDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	return uc.departmentRepo.ListBranches(ctx, departmentID)
}

func (uc *DepartmentUseCase) CreateBranch(ctx context.Context, departmentID string, input CreateBranchInput) (*entity.Branch, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.MissingField("name")
	}

	branch := &entity.Branch{
		Name:         name,
		DepartmentID: departmentID,
		Location:     input.Location,
		Contact:      input.Contact,
		IsActive:     true,
	}
	if err := uc.departmentRepo.CreateBranch(ctx, branch); err != nil {
		return nil, err
	}
	return branch, nil
}
