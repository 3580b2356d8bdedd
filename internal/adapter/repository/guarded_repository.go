package repository

import (
	"context"
	stderrors "errors"
	"time"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/query"
	"civicsolve/internal/domain/repository"
	"civicsolve/internal/infrastructure/metrics"
	"civicsolve/internal/infrastructure/reliability/circuitbreaker"
	"civicsolve/pkg/errors"
)

// ErrCircuitOpen is wrapped into StoreUnavailable while the breaker rejects calls.
var ErrCircuitOpen = stderrors.New("store circuit open")

// StoreGuard bounds every store call with a timeout and trips a circuit breaker on
// connectivity failures. Domain errors such as NotFound count as successes.
type StoreGuard struct {
	timeout time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

func NewStoreGuard(timeout time.Duration, breaker *circuitbreaker.CircuitBreaker) *StoreGuard {
	return &StoreGuard{timeout: timeout, breaker: breaker}
}

func guard[T any](ctx context.Context, g *StoreGuard, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if !g.breaker.AllowRequest() {
		return zero, errors.StoreUnavailable(ErrCircuitOpen)
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result, err := fn(callCtx)
	if err == nil {
		g.breaker.RecordSuccess()
		return result, nil
	}

	// A caller that went away says nothing about the store.
	if ctx.Err() != nil {
		return zero, err
	}

	if errors.IsStoreUnavailable(err) || isConnectivityError(err) {
		g.breaker.RecordFailure()
		metrics.ObserveStoreFailure(op)
		if !errors.IsStoreUnavailable(err) {
			err = errors.StoreUnavailable(err)
		}
		return zero, err
	}

	g.breaker.RecordSuccess()
	return zero, err
}

type guardedComplaintRepository struct {
	next  repository.ComplaintRepository
	guard *StoreGuard
}

func NewGuardedComplaintRepository(next repository.ComplaintRepository, g *StoreGuard) repository.ComplaintRepository {
	return &guardedComplaintRepository{next: next, guard: g}
}

func (r *guardedComplaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	_, err := guard(ctx, r.guard, "complaint.Create", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.Create(ctx, complaint)
	})
	return err
}

func (r *guardedComplaintRepository) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	return guard(ctx, r.guard, "complaint.GetByID", func(ctx context.Context) (*entity.Complaint, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *guardedComplaintRepository) GetByComplaintID(ctx context.Context, complaintID string) (*entity.Complaint, error) {
	return guard(ctx, r.guard, "complaint.GetByComplaintID", func(ctx context.Context) (*entity.Complaint, error) {
		return r.next.GetByComplaintID(ctx, complaintID)
	})
}

type listResult struct {
	items []*entity.Complaint
	total int64
}

func (r *guardedComplaintRepository) List(ctx context.Context, criteria query.Criteria) ([]*entity.Complaint, int64, error) {
	res, err := guard(ctx, r.guard, "complaint.List", func(ctx context.Context) (listResult, error) {
		items, total, err := r.next.List(ctx, criteria)
		return listResult{items: items, total: total}, err
	})
	return res.items, res.total, err
}

type statusResult struct {
	complaint *entity.Complaint
	previous  entity.Status
}

func (r *guardedComplaintRepository) UpdateStatus(ctx context.Context, id string, update entity.StatusUpdate, rule entity.TransitionRule) (*entity.Complaint, entity.Status, error) {
	var previous entity.Status
	res, err := guard(ctx, r.guard, "complaint.UpdateStatus", func(ctx context.Context) (statusResult, error) {
		complaint, prev, err := r.next.UpdateStatus(ctx, id, update, rule)
		previous = prev
		return statusResult{complaint: complaint, previous: prev}, err
	})
	if err != nil {
		return nil, previous, err
	}
	return res.complaint, res.previous, nil
}

func (r *guardedComplaintRepository) IncrementUpvotes(ctx context.Context, id string) (int, error) {
	return guard(ctx, r.guard, "complaint.IncrementUpvotes", func(ctx context.Context) (int, error) {
		return r.next.IncrementUpvotes(ctx, id)
	})
}

func (r *guardedComplaintRepository) IncrementEscalations(ctx context.Context, id string) (int, error) {
	return guard(ctx, r.guard, "complaint.IncrementEscalations", func(ctx context.Context) (int, error) {
		return r.next.IncrementEscalations(ctx, id)
	})
}

func (r *guardedComplaintRepository) CountByStatus(ctx context.Context, reportedBy string) (entity.StatusCounts, error) {
	return guard(ctx, r.guard, "complaint.CountByStatus", func(ctx context.Context) (entity.StatusCounts, error) {
		return r.next.CountByStatus(ctx, reportedBy)
	})
}

func (r *guardedComplaintRepository) CountByCategory(ctx context.Context) ([]entity.CategoryCount, error) {
	return guard(ctx, r.guard, "complaint.CountByCategory", func(ctx context.Context) ([]entity.CategoryCount, error) {
		return r.next.CountByCategory(ctx)
	})
}

// Ping bypasses the breaker so the health probe can observe recovery.
func (r *guardedComplaintRepository) Ping(ctx context.Context) error {
	if r.guard.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.guard.timeout)
		defer cancel()
	}
	if err := r.next.Ping(ctx); err != nil {
		if !errors.IsStoreUnavailable(err) {
			return errors.StoreUnavailable(err)
		}
		return err
	}
	return nil
}

type guardedUserRepository struct {
	next  repository.UserRepository
	guard *StoreGuard
}

func NewGuardedUserRepository(next repository.UserRepository, g *StoreGuard) repository.UserRepository {
	return &guardedUserRepository{next: next, guard: g}
}

func (r *guardedUserRepository) Create(ctx context.Context, user *entity.User) error {
	_, err := guard(ctx, r.guard, "user.Create", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.Create(ctx, user)
	})
	return err
}

func (r *guardedUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return guard(ctx, r.guard, "user.GetByID", func(ctx context.Context) (*entity.User, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *guardedUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return guard(ctx, r.guard, "user.GetByEmail", func(ctx context.Context) (*entity.User, error) {
		return r.next.GetByEmail(ctx, email)
	})
}

func (r *guardedUserRepository) FindConflict(ctx context.Context, email, phone, citizenID, excludeID string) (*entity.User, error) {
	return guard(ctx, r.guard, "user.FindConflict", func(ctx context.Context) (*entity.User, error) {
		return r.next.FindConflict(ctx, email, phone, citizenID, excludeID)
	})
}

func (r *guardedUserRepository) Update(ctx context.Context, user *entity.User) error {
	_, err := guard(ctx, r.guard, "user.Update", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.Update(ctx, user)
	})
	return err
}

type userPage struct {
	users []*entity.User
	total int64
}

func (r *guardedUserRepository) Search(ctx context.Context, search string, limit, offset int) ([]*entity.User, int64, error) {
	res, err := guard(ctx, r.guard, "user.Search", func(ctx context.Context) (userPage, error) {
		users, total, err := r.next.Search(ctx, search, limit, offset)
		return userPage{users: users, total: total}, err
	})
	return res.users, res.total, err
}

func (r *guardedUserRepository) GetSummaries(ctx context.Context, ids []string) (map[string]*entity.UserSummary, error) {
	return guard(ctx, r.guard, "user.GetSummaries", func(ctx context.Context) (map[string]*entity.UserSummary, error) {
		return r.next.GetSummaries(ctx, ids)
	})
}

type guardedDepartmentRepository struct {
	next  repository.DepartmentRepository
	guard *StoreGuard
}

func NewGuardedDepartmentRepository(next repository.DepartmentRepository, g *StoreGuard) repository.DepartmentRepository {
	return &guardedDepartmentRepository{next: next, guard: g}
}

func (r *guardedDepartmentRepository) CreateDepartment(ctx context.Context, department *entity.Department) error {
	_, err := guard(ctx, r.guard, "department.CreateDepartment", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.CreateDepartment(ctx, department)
	})
	return err
}

func (r *guardedDepartmentRepository) GetDepartment(ctx context.Context, id string) (*entity.Department, error) {
	return guard(ctx, r.guard, "department.GetDepartment", func(ctx context.Context) (*entity.Department, error) {
		return r.next.GetDepartment(ctx, id)
	})
}

func (r *guardedDepartmentRepository) GetDepartmentByName(ctx context.Context, name string) (*entity.Department, error) {
	return guard(ctx, r.guard, "department.GetDepartmentByName", func(ctx context.Context) (*entity.Department, error) {
		return r.next.GetDepartmentByName(ctx, name)
	})
}

func (r *guardedDepartmentRepository) ListDepartments(ctx context.Context, activeOnly bool) ([]*entity.Department, error) {
	return guard(ctx, r.guard, "department.ListDepartments", func(ctx context.Context) ([]*entity.Department, error) {
		return r.next.ListDepartments(ctx, activeOnly)
	})
}

func (r *guardedDepartmentRepository) CreateBranch(ctx context.Context, branch *entity.Branch) error {
	_, err := guard(ctx, r.guard, "department.CreateBranch", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.CreateBranch(ctx, branch)
	})
	return err
}

func (r *guardedDepartmentRepository) GetBranch(ctx context.Context, id string) (*entity.Branch, error) {
	return guard(ctx, r.guard, "department.GetBranch", func(ctx context.Context) (*entity.Branch, error) {
		return r.next.GetBranch(ctx, id)
	})
}

func (r *guardedDepartmentRepository) ListBranches(ctx context.Context, departmentID string) ([]*entity.Branch, error) {
	return guard(ctx, r.guard, "department.ListBranches", func(ctx context.Context) ([]*entity.Branch, error) {
		return r.next.ListBranches(ctx, departmentID)
	})
}
