package repository

import (
	"context"

	"civicsolve/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindConflict returns a user other than excludeID sharing any non-empty unique field, or nil.
	FindConflict(ctx context.Context, email, phone, citizenID, excludeID string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Search(ctx context.Context, search string, limit, offset int) ([]*entity.User, int64, error)
	GetSummaries(ctx context.Context, ids []string) (map[string]*entity.UserSummary, error)
}
