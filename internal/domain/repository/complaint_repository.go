package repository

import (
	"context"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/query"
)

// ComplaintRepository is the complaint half of the entity store. Implementations return
// errors.StoreUnavailable when the store cannot be reached and errors.NotFound for
// unknown ids; an empty listing is never an error.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *entity.Complaint) error
	GetByID(ctx context.Context, id string) (*entity.Complaint, error)
	GetByComplaintID(ctx context.Context, complaintID string) (*entity.Complaint, error)
	List(ctx context.Context, criteria query.Criteria) ([]*entity.Complaint, int64, error)

	// UpdateStatus applies update atomically when rule allows the move and returns the
	// updated complaint together with the status it had before.
	UpdateStatus(ctx context.Context, id string, update entity.StatusUpdate, rule entity.TransitionRule) (*entity.Complaint, entity.Status, error)
	IncrementUpvotes(ctx context.Context, id string) (int, error)
	IncrementEscalations(ctx context.Context, id string) (int, error)

	// CountByStatus counts every complaint, or only those of reportedBy when it is set.
	CountByStatus(ctx context.Context, reportedBy string) (entity.StatusCounts, error)
	CountByCategory(ctx context.Context) ([]entity.CategoryCount, error)

	Ping(ctx context.Context) error
}
