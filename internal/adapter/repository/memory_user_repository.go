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

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*entity.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if _, exists := r.users[user.ID]; exists {
		return errors.Conflict("User already exists")
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *MemoryUserRepository) FindConflict(ctx context.Context, email, phone, citizenID, excludeID string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == excludeID {
			continue
		}
		if (email != "" && strings.EqualFold(user.Email, email)) ||
			(phone != "" && user.Phone == phone) ||
			(citizenID != "" && user.CitizenID == citizenID) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *MemoryUserRepository) Search(ctx context.Context, search string, limit, offset int) ([]*entity.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	var matched []*entity.User
	for _, user := range r.users {
		if needle == "" || userMatches(user, needle) {
			copied := *user
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*entity.User{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// userMatches is the admin search: case-insensitive on name, email, phone and citizen id.
func userMatches(user *entity.User, needle string) bool {
	return strings.Contains(strings.ToLower(user.Name), needle) ||
		strings.Contains(strings.ToLower(user.Email), needle) ||
		strings.Contains(user.Phone, needle) ||
		strings.Contains(strings.ToLower(user.CitizenID), needle)
}

func (r *MemoryUserRepository) GetSummaries(ctx context.Context, ids []string) (map[string]*entity.UserSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make(map[string]*entity.UserSummary, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			summaries[id] = user.Summary()
		}
	}
	return summaries, nil
}
