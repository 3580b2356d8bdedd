package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/query"
	"civicsolve/pkg/errors"
)

// MemoryComplaintRepository keeps complaints in process. It backs STORE_DRIVER=memory and
// the test suites; SetUnavailable simulates a lost store connection.
type MemoryComplaintRepository struct {
	mu          sync.RWMutex
	complaints  map[string]*entity.Complaint
	unavailable error
}

func NewMemoryComplaintRepository() *MemoryComplaintRepository {
	return &MemoryComplaintRepository{
		complaints: make(map[string]*entity.Complaint),
	}
}

// SetUnavailable makes every call fail with StoreUnavailable until cleared with nil.
func (r *MemoryComplaintRepository) SetUnavailable(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = err
}

func (r *MemoryComplaintRepository) check() error {
	if r.unavailable != nil {
		return errors.StoreUnavailable(r.unavailable)
	}
	return nil
}

func (r *MemoryComplaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(); err != nil {
		return err
	}

	if complaint.ID == "" {
		complaint.ID = uuid.New().String()
	}
	if _, exists := r.complaints[complaint.ID]; exists {
		return errors.Conflict("Complaint already exists")
	}
	for _, existing := range r.complaints {
		if existing.ComplaintID == complaint.ComplaintID {
			return errors.Conflict("Complaint ID already in use")
		}
	}

	now := time.Now()
	if complaint.CreatedDate.IsZero() {
		complaint.CreatedDate = now
	}
	if complaint.UpdatedAt.IsZero() {
		complaint.UpdatedAt = now
	}
	complaint.PriorityRank = complaint.Priority.Rank()

	r.complaints[complaint.ID] = complaint.Clone()
	return nil
}

func (r *MemoryComplaintRepository) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(); err != nil {
		return nil, err
	}

	complaint, ok := r.complaints[id]
	if !ok {
		return nil, errors.NotFound("Complaint", nil)
	}
	return complaint.Clone(), nil
}

func (r *MemoryComplaintRepository) GetByComplaintID(ctx context.Context, complaintID string) (*entity.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(); err != nil {
		return nil, err
	}

	for _, complaint := range r.complaints {
		if complaint.ComplaintID == complaintID {
			return complaint.Clone(), nil
		}
	}
	return nil, errors.NotFound("Complaint", nil)
}

func (r *MemoryComplaintRepository) List(ctx context.Context, criteria query.Criteria) ([]*entity.Complaint, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(); err != nil {
		return nil, 0, err
	}

	candidates := make([]*entity.Complaint, 0, len(r.complaints))
	for _, complaint := range r.complaints {
		candidates = append(candidates, complaint)
	}

	page, total := query.Apply(candidates, criteria)
	out := make([]*entity.Complaint, len(page))
	for i, complaint := range page {
		out[i] = complaint.Clone()
	}
	return out, total, nil
}

func (r *MemoryComplaintRepository) UpdateStatus(ctx context.Context, id string, update entity.StatusUpdate, rule entity.TransitionRule) (*entity.Complaint, entity.Status, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(); err != nil {
		return nil, "", err
	}

	complaint, ok := r.complaints[id]
	if !ok {
		return nil, "", errors.NotFound("Complaint", nil)
	}

	previous := complaint.Status
	if !rule(previous, update.Status) {
		return nil, previous, errors.InvalidTransition(string(previous), string(update.Status))
	}

	update.Apply(complaint)
	return complaint.Clone(), previous, nil
}

func (r *MemoryComplaintRepository) IncrementUpvotes(ctx context.Context, id string) (int, error) {
	return r.increment(id, func(c *entity.Complaint) int {
		c.Upvotes++
		return c.Upvotes
	})
}

func (r *MemoryComplaintRepository) IncrementEscalations(ctx context.Context, id string) (int, error) {
	return r.increment(id, func(c *entity.Complaint) int {
		c.EscalationCount++
		return c.EscalationCount
	})
}

func (r *MemoryComplaintRepository) increment(id string, inc func(*entity.Complaint) int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(); err != nil {
		return 0, err
	}

	complaint, ok := r.complaints[id]
	if !ok {
		return 0, errors.NotFound("Complaint", nil)
	}
	complaint.UpdatedAt = time.Now()
	return inc(complaint), nil
}

func (r *MemoryComplaintRepository) CountByStatus(ctx context.Context, reportedBy string) (entity.StatusCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var counts entity.StatusCounts
	if err := r.check(); err != nil {
		return counts, err
	}

	for _, complaint := range r.complaints {
		if reportedBy != "" && complaint.ReportedBy != reportedBy {
			continue
		}
		counts.Add(complaint.Status, 1)
	}
	return counts, nil
}

func (r *MemoryComplaintRepository) CountByCategory(ctx context.Context) ([]entity.CategoryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(); err != nil {
		return nil, err
	}

	counts := make(map[entity.Category]int64)
	for _, complaint := range r.complaints {
		counts[complaint.Category]++
	}
	return sortCategoryCounts(counts), nil
}

func (r *MemoryComplaintRepository) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.check()
}
