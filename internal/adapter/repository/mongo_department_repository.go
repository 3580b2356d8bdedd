package repository

import (
	"context"
	stderrors "errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/repository"
	"civicsolve/pkg/errors"

	"github.com/google/uuid"
)

type mongoDepartmentRepository struct {
	db *mongo.Database
}

func NewMongoDepartmentRepository(db *mongo.Database) repository.DepartmentRepository {
	return &mongoDepartmentRepository{
		db: db,
	}
}

func (r *mongoDepartmentRepository) CreateDepartment(ctx context.Context, department *entity.Department) error {
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

	if _, err := r.db.Collection(departmentsCollection).InsertOne(ctx, department); err != nil {
		return storeError("Failed to create department", err)
	}
	return nil
}

func (r *mongoDepartmentRepository) GetDepartment(ctx context.Context, id string) (*entity.Department, error) {
	return r.findDepartment(ctx, bson.M{"_id": id})
}

func (r *mongoDepartmentRepository) GetDepartmentByName(ctx context.Context, name string) (*entity.Department, error) {
	return r.findDepartment(ctx, bson.M{"name": bson.M{"$regex": "^" + regexp.QuoteMeta(name) + "$", "$options": "i"}})
}

func (r *mongoDepartmentRepository) findDepartment(ctx context.Context, filter bson.M) (*entity.Department, error) {
	var department entity.Department
	if err := r.db.Collection(departmentsCollection).FindOne(ctx, filter).Decode(&department); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.NotFound("Department", nil)
		}
		return nil, storeError("Failed to get department", err)
	}
	return &department, nil
}

func (r *mongoDepartmentRepository) ListDepartments(ctx context.Context, activeOnly bool) ([]*entity.Department, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}

	cursor, err := r.db.Collection(departmentsCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, storeError("Failed to list departments", err)
	}
	defer cursor.Close(ctx)

	departments := make([]*entity.Department, 0)
	if err := cursor.All(ctx, &departments); err != nil {
		return nil, storeError("Failed to decode departments", err)
	}
	return departments, nil
}

func (r *mongoDepartmentRepository) CreateBranch(ctx context.Context, branch *entity.Branch) error {
	if _, err := r.GetDepartment(ctx, branch.DepartmentID); err != nil {
		return err
	}

	if branch.ID == "" {
		branch.ID = uuid.New().String()
	}
	now := time.Now()
	branch.CreatedAt = now
	branch.UpdatedAt = now

	if _, err := r.db.Collection(branchesCollection).InsertOne(ctx, branch); err != nil {
		return storeError("Failed to create branch", err)
	}
	return nil
}

func (r *mongoDepartmentRepository) GetBranch(ctx context.Context, id string) (*entity.Branch, error) {
	var branch entity.Branch
	if err := r.db.Collection(branchesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&branch); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.NotFound("Branch", nil)
		}
		return nil, storeError("Failed to get branch", err)
	}
	return &branch, nil
}

func (r *mongoDepartmentRepository) ListBranches(ctx context.Context, departmentID string) ([]*entity.Branch, error) {
	filter := bson.M{}
	if departmentID != "" {
		filter["departmentId"] = departmentID
	}

	cursor, err := r.db.Collection(branchesCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, storeError("Failed to list branches", err)
	}
	defer cursor.Close(ctx)

	branches := make([]*entity.Branch, 0)
	if err := cursor.All(ctx, &branches); err != nil {
		return nil, storeError("Failed to decode branches", err)
	}
	return branches, nil
}
