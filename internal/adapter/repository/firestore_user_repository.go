package repository

import (
	"context"
	"strings"
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

const usersCollection = "users"

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("User already exists")
		}
		return storeError("Failed to create user", err)
	}
	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, storeError("Failed to get user", err)
	}

	return decodeUser(doc)
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := r.firstWhere(ctx, "email", strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *firestoreUserRepository) firstWhere(ctx context.Context, field, value string) (*entity.User, error) {
	iter := r.client.Collection(usersCollection).Where(field, "==", value).Limit(2).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("Failed to query users", err)
	}
	return decodeUser(doc)
}

func decodeUser(doc *firestore.DocumentSnapshot) (*entity.User, error) {
	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.ID = doc.Ref.ID
	return &user, nil
}

func (r *firestoreUserRepository) FindConflict(ctx context.Context, email, phone, citizenID, excludeID string) (*entity.User, error) {
	terms := []struct{ field, value string }{
		{"email", strings.ToLower(email)},
		{"phone", phone},
		{"citizenId", citizenID},
	}

	for _, term := range terms {
		if term.value == "" {
			continue
		}

		iter := r.client.Collection(usersCollection).Where(term.field, "==", term.value).Limit(2).Documents(ctx)
		docs, err := iter.GetAll()
		if err != nil {
			return nil, storeError("Failed to check user uniqueness", err)
		}
		for _, doc := range docs {
			if doc.Ref.ID == excludeID {
				continue
			}
			return decodeUser(doc)
		}
	}

	return nil, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return storeError("Failed to update user", err)
	}
	return nil
}

// Search matches name, email or phone in process; the user collection is small and
// Firestore has no substring operator.
func (r *firestoreUserRepository) Search(ctx context.Context, search string, limit, offset int) ([]*entity.User, int64, error) {
	iter := r.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	needle := strings.ToLower(strings.TrimSpace(search))
	var matched []*entity.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, storeError("Failed to iterate users", err)
		}

		user, err := decodeUser(doc)
		if err != nil {
			return nil, 0, err
		}
		if needle == "" || userMatches(user, needle) {
			matched = append(matched, user)
		}
	}

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

func (r *firestoreUserRepository) GetSummaries(ctx context.Context, ids []string) (map[string]*entity.UserSummary, error) {
	summaries := make(map[string]*entity.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, r.client.Collection(usersCollection).Doc(id))
	}

	docs, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, storeError("Failed to load reporters", err)
	}
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		summaries[user.ID] = user.Summary()
	}

	return summaries, nil
}
