package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"civicsolve/internal/domain/entity"
	"civicsolve/pkg/errors"
)

type MemoryDepartmentRepository struct {
	mu          sync.RWMutex
	departments map[string]*entity.Department
	branches    map[string]*entity.Branch
}

func NewMemoryDepartmentRepository() *MemoryDepartmentRepository {
	return &MemoryDepartmentRepository{
		departments: make(map[string]*entity.Department),
		branches:    make(map[string]*entity.Branch),
	}
}

func (r *MemoryDepartmentRepository) CreateDepartment(ctx context.Context, department *entity.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.departments {
		if strings.EqualFold(existing.Name, department.Name) {
			return errors.Conflict("Department already exists")
		}
	}
	if department.ID == "" {
		department.ID = uuid.New().String()
	}
	now := time.Now()
	department.CreatedAt = now
	department.UpdatedAt = now

	copied := *department
	r.departments[department.ID] = &copied
	return nil
}

func (r *MemoryDepartmentRepository) GetDepartment(ctx context.Context, id string) (*entity.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	department, ok := r.departments[id]
	if !ok {
		return nil, errors.NotFound("Department", nil)
	}
	copied := *department
	return &copied, nil
}

func (r *MemoryDepartmentRepository) GetDepartmentByName(ctx context.Context, name string) (*entity.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, department := range r.departments {
		if strings.EqualFold(department.Name, name) {
			copied := *department
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Department", nil)
}

func (r *MemoryDepartmentRepository) ListDepartments(ctx context.Context, activeOnly bool) ([]*entity.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Department, 0, len(r.departments))
	for _, department := range r.departments {
		if activeOnly && !department.IsActive {
			continue
		}
		copied := *department
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryDepartmentRepository) CreateBranch(ctx context.Context, branch *entity.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.departments[branch.DepartmentID]; !ok {
		return errors.NotFound("Department", nil)
	}
	if branch.ID == "" {
		branch.ID = uuid.New().String()
	}
	now := time.Now()
	branch.CreatedAt = now
	branch.UpdatedAt = now

	copied := *branch
	r.branches[branch.ID] = &copied
	return nil
}

func (r *MemoryDepartmentRepository) GetBranch(ctx context.Context, id string) (*entity.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	branch, ok := r.branches[id]
	if !ok {
		return nil, errors.NotFound("Branch", nil)
	}
	copied := *branch
	return &copied, nil
}

func (r *MemoryDepartmentRepository) ListBranches(ctx context.Context, departmentID string) ([]*entity.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Branch, 0)
	for _, branch := range r.branches {
		if departmentID != "" && branch.DepartmentID != departmentID {
			continue
		}
		copied := *branch
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
