package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/repository"
	"civicsolve/pkg/errors"

	"github.com/google/uuid"
)

const (
	departmentsCollection = "departments"
	branchesCollection    = "branches"
)

type firestoreDepartmentRepository struct {
	client *firestore.Client
}

func NewFirestoreDepartmentRepository(client *firestore.Client) repository.DepartmentRepository {
	return &firestoreDepartmentRepository{
		client: client,
	}
}

func (r *firestoreDepartmentRepository) CreateDepartment(ctx context.Context, department *entity.Department) error {
	existing, err := r.GetDepartmentByName(ctx, department.Name)
	if err != nil && !errors.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return errors.Conflict("Department already exists")
	}

	if department.ID == "" {
		department.ID = uuid.New().String()
	}
	now := time.Now()
	department.CreatedAt = now
	department.UpdatedAt = now

	if _, err := r.client.Collection(departmentsCollection).Doc(department.ID).Set(ctx, department); err != nil {
		return storeError("Failed to create department", err)
	}
	return nil
}

func (r *firestoreDepartmentRepository) GetDepartment(ctx context.Context, id string) (*entity.Department, error) {
	doc, err := r.client.Collection(departmentsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Department", err)
		}
		return nil, storeError("Failed to get department", err)
	}

	var department entity.Department
	if err := doc.DataTo(&department); err != nil {
		return nil, errors.Internal("Failed to parse department data", err)
	}
	department.ID = doc.Ref.ID
	return &department, nil
}

func (r *firestoreDepartmentRepository) GetDepartmentByName(ctx context.Context, name string) (*entity.Department, error) {
	iter := r.client.Collection(departmentsCollection).Where("name", "==", name).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Department", nil)
		}
		return nil, storeError("Failed to query department", err)
	}

	var department entity.Department
	if err := doc.DataTo(&department); err != nil {
		return nil, errors.Internal("Failed to parse department data", err)
	}
	department.ID = doc.Ref.ID
	return &department, nil
}

func (r *firestoreDepartmentRepository) ListDepartments(ctx context.Context, activeOnly bool) ([]*entity.Department, error) {
	q := r.client.Collection(departmentsCollection).Query
	if activeOnly {
		q = q.Where("isActive", "==", true)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	departments := make([]*entity.Department, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("Failed to iterate departments", err)
		}

		var department entity.Department
		if err := doc.DataTo(&department); err != nil {
			return nil, errors.Internal("Failed to parse department data", err)
		}
		department.ID = doc.Ref.ID
		departments = append(departments, &department)
	}

	sort.Slice(departments, func(i, j int) bool { return departments[i].Name < departments[j].Name })
	return departments, nil
}

func (r *firestoreDepartmentRepository) CreateBranch(ctx context.Context, branch *entity.Branch) error {
	if _, err := r.GetDepartment(ctx, branch.DepartmentID); err != nil {
		return err
	}

	if branch.ID == "" {
		branch.ID = uuid.New().String()
	}
	now := time.Now()
	branch.CreatedAt = now
	branch.UpdatedAt = now

	if _, err := r.client.Collection(branchesCollection).Doc(branch.ID).Set(ctx, branch); err != nil {
		return storeError("Failed to create branch", err)
	}
	return nil
}

func (r *firestoreDepartmentRepository) GetBranch(ctx context.Context, id string) (*entity.Branch, error) {
	doc, err := r.client.Collection(branchesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Branch", err)
		}
		return nil, storeError("Failed to get branch", err)
	}

	var branch entity.Branch
	if err := doc.DataTo(&branch); err != nil {
		return nil, errors.Internal("Failed to parse branch data", err)
	}
	branch.ID = doc.Ref.ID
	return &branch, nil
}

func (r *firestoreDepartmentRepository) ListBranches(ctx context.Context, departmentID string) ([]*entity.Branch, error) {
	q := r.client.Collection(branchesCollection).Query
	if departmentID != "" {
		q = q.Where("departmentId", "==", departmentID)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	branches := make([]*entity.Branch, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("Failed to iterate branches", err)
		}

		var branch entity.Branch
		if err := doc.DataTo(&branch); err != nil {
			return nil, errors.Internal("Failed to parse branch data", err)
		}
		branch.ID = doc.Ref.ID
		branches = append(branches, &branch)
	}

	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}
