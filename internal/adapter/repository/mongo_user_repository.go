package repository

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/repository"
	"civicsolve/pkg/errors"

	"github.com/google/uuid"
)

type mongoUserRepository struct {
	db *mongo.Database
}

func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		db: db,
	}
}

func (r *mongoUserRepository) collection() *mongo.Collection {
	return r.db.Collection(usersCollection)
}

func (r *mongoUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := r.collection().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Conflict("User with this email, phone, or citizen ID already exists")
		}
		return storeError("Failed to create user", err)
	}
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var user entity.User
	if err := r.collection().FindOne(ctx, filter).Decode(&user); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.NotFound("User", nil)
		}
		return nil, storeError("Failed to get user", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindConflict(ctx context.Context, email, phone, citizenID, excludeID string) (*entity.User, error) {
	or := bson.A{}
	if email != "" {
		or = append(or, bson.M{"email": strings.ToLower(email)})
	}
	if phone != "" {
		or = append(or, bson.M{"phone": phone})
	}
	if citizenID != "" {
		or = append(or, bson.M{"citizenId": citizenID})
	}
	if len(or) == 0 {
		return nil, nil
	}

	filter := bson.M{"$or": or}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	user, err := r.findOne(ctx, filter)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	return user, err
}

func (r *mongoUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	result, err := r.collection().ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Conflict("Email, phone, or citizen ID already in use")
		}
		return storeError("Failed to update user", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}

func (r *mongoUserRepository) Search(ctx context.Context, search string, limit, offset int) ([]*entity.User, int64, error) {
	filter := bson.M{}
	if search = strings.TrimSpace(search); search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"phone": pattern},
			bson.M{"citizenId": pattern},
		}
	}

	total, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError("Failed to count users", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, storeError("Failed to search users", err)
	}
	defer cursor.Close(ctx)

	users := make([]*entity.User, 0, limit)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, storeError("Failed to decode users", err)
	}
	return users, total, nil
}

func (r *mongoUserRepository) GetSummaries(ctx context.Context, ids []string) (map[string]*entity.UserSummary, error) {
	summaries := make(map[string]*entity.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	cursor, err := r.collection().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeError("Failed to load reporters", err)
	}
	defer cursor.Close(ctx)

	var users []*entity.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, storeError("Failed to decode reporters", err)
	}
	for _, user := range users {
		summaries[user.ID] = user.Summary()
	}
	return summaries, nil
}
