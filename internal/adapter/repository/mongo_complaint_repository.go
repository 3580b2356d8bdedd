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
	"civicsolve/internal/domain/query"
	"civicsolve/internal/domain/repository"
	"civicsolve/pkg/errors"

	"github.com/google/uuid"
)

type mongoComplaintRepository struct {
	db *mongo.Database
}

func NewMongoComplaintRepository(db *mongo.Database) repository.ComplaintRepository {
	return &mongoComplaintRepository{
		db: db,
	}
}

func (r *mongoComplaintRepository) collection() *mongo.Collection {
	return r.db.Collection(complaintsCollection)
}

func (r *mongoComplaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.New().String()
	}

	now := time.Now()
	if complaint.CreatedDate.IsZero() {
		complaint.CreatedDate = now
	}
	complaint.UpdatedAt = now
	complaint.PriorityRank = complaint.Priority.Rank()

	if _, err := r.collection().InsertOne(ctx, complaint); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Conflict("Complaint already exists")
		}
		return storeError("Failed to create complaint", err)
	}
	return nil
}

func (r *mongoComplaintRepository) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoComplaintRepository) GetByComplaintID(ctx context.Context, complaintID string) (*entity.Complaint, error) {
	return r.findOne(ctx, bson.M{"complaintId": complaintID})
}

func (r *mongoComplaintRepository) findOne(ctx context.Context, filter bson.M) (*entity.Complaint, error) {
	var complaint entity.Complaint
	if err := r.collection().FindOne(ctx, filter).Decode(&complaint); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.NotFound("Complaint", nil)
		}
		return nil, storeError("Failed to get complaint", err)
	}
	return &complaint, nil
}

// mongoFilter renders a query.Filter; the search term is escaped so user input is never
// interpreted as a pattern.
func mongoFilter(filter query.Filter) bson.M {
	m := bson.M{}
	for field, value := range filter.Equalities() {
		m[field] = value
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		m["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"location": pattern},
		}
	}
	return m
}

func mongoSort(order query.SortOrder) bson.D {
	keys := order.Keys()
	sort := make(bson.D, 0, len(keys))
	for _, key := range keys {
		field := key.Field
		if field == "id" {
			field = "_id"
		}
		direction := 1
		if key.Desc {
			direction = -1
		}
		sort = append(sort, bson.E{Key: field, Value: direction})
	}
	return sort
}

func (r *mongoComplaintRepository) List(ctx context.Context, criteria query.Criteria) ([]*entity.Complaint, int64, error) {
	filter := mongoFilter(criteria.Filter)

	total, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError("Failed to count complaints", err)
	}
	if total == 0 || int64(criteria.Page.Offset) >= total {
		return []*entity.Complaint{}, total, nil
	}

	opts := options.Find().
		SetSort(mongoSort(criteria.Sort)).
		SetSkip(int64(criteria.Page.Offset)).
		SetLimit(int64(criteria.Page.PageSize))

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, storeError("Failed to list complaints", err)
	}
	defer cursor.Close(ctx)

	complaints := make([]*entity.Complaint, 0, criteria.Page.PageSize)
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, 0, storeError("Failed to decode complaints", err)
	}
	return complaints, total, nil
}

// UpdateStatus guards the write with the statuses the rule accepts, so the check and the
// write are one server-side operation. resolvedDate is only set while it is still null.
func (r *mongoComplaintRepository) UpdateStatus(ctx context.Context, id string, update entity.StatusUpdate, rule entity.TransitionRule) (*entity.Complaint, entity.Status, error) {
	set := bson.D{
		{Key: "status", Value: bson.D{{Key: "$literal", Value: string(update.Status)}}},
		{Key: "updatedAt", Value: update.At},
	}
	if update.WorkOrderNumber != "" {
		set = append(set, bson.E{Key: "workOrderNumber", Value: bson.D{{Key: "$literal", Value: update.WorkOrderNumber}}})
	}
	if update.Status.Terminal() {
		set = append(set, bson.E{Key: "resolvedDate", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$resolvedDate", update.At}}}})
	}

	allowed := make(bson.A, 0, len(entity.Statuses))
	for _, s := range rule.AllowedFrom(update.Status) {
		allowed = append(allowed, string(s))
	}

	filter := bson.M{"_id": id, "status": bson.M{"$in": allowed}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before entity.Complaint
	err := r.collection().FindOneAndUpdate(ctx, filter, mongo.Pipeline{{{Key: "$set", Value: set}}}, opts).Decode(&before)
	if err != nil {
		if !stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", storeError("Failed to update complaint status", err)
		}

		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, "", getErr
		}
		return nil, current.Status, errors.InvalidTransition(string(current.Status), string(update.Status))
	}

	updated := before.Clone()
	update.Apply(updated)
	return updated, before.Status, nil
}

func (r *mongoComplaintRepository) IncrementUpvotes(ctx context.Context, id string) (int, error) {
	complaint, err := r.increment(ctx, id, "upvotes")
	if err != nil {
		return 0, err
	}
	return complaint.Upvotes, nil
}

func (r *mongoComplaintRepository) IncrementEscalations(ctx context.Context, id string) (int, error) {
	complaint, err := r.increment(ctx, id, "escalationCount")
	if err != nil {
		return 0, err
	}
	return complaint.EscalationCount, nil
}

func (r *mongoComplaintRepository) increment(ctx context.Context, id, field string) (*entity.Complaint, error) {
	update := bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var complaint entity.Complaint
	if err := r.collection().FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&complaint); err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.NotFound("Complaint", nil)
		}
		return nil, storeError("Failed to increment "+field, err)
	}
	return &complaint, nil
}

func (r *mongoComplaintRepository) CountByStatus(ctx context.Context, reportedBy string) (entity.StatusCounts, error) {
	var counts entity.StatusCounts

	match := bson.M{}
	if reportedBy != "" {
		match["reportedBy"] = reportedBy
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	var rows []struct {
		Status entity.Status `bson:"_id"`
		Count  int64         `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return counts, err
	}

	for _, row := range rows {
		counts.Add(row.Status, row.Count)
	}
	return counts, nil
}

func (r *mongoComplaintRepository) CountByCategory(ctx context.Context) ([]entity.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}

	var rows []struct {
		Category entity.Category `bson:"_id"`
		Count    int64           `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}

	counts := make(map[entity.Category]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return sortCategoryCounts(counts), nil
}

func (r *mongoComplaintRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return storeError("Failed to aggregate complaints", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return storeError("Failed to decode aggregation", err)
	}
	return nil
}

func (r *mongoComplaintRepository) Ping(ctx context.Context) error {
	if err := r.db.Client().Ping(ctx, nil); err != nil {
		return errors.StoreUnavailable(err)
	}
	return nil
}
