package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/query"
	"civicsolve/internal/domain/repository"
	"civicsolve/pkg/errors"

	"github.com/google/uuid"
)

const complaintsCollection = "complaints"

type firestoreComplaintRepository struct {
	client *firestore.Client
}

func NewFirestoreComplaintRepository(client *firestore.Client) repository.ComplaintRepository {
	return &firestoreComplaintRepository{
		client: client,
	}
}

func (r *firestoreComplaintRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(complaintsCollection)
}

func (r *firestoreComplaintRepository) Create(ctx context.Context, complaint *entity.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.New().String()
	}

	now := time.Now()
	if complaint.CreatedDate.IsZero() {
		complaint.CreatedDate = now
	}
	complaint.UpdatedAt = now
	complaint.PriorityRank = complaint.Priority.Rank()

	// Firestore has no unique index, so the complaintId lookup and the write share a transaction.
	ref := r.collection().Doc(complaint.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		iter := tx.Documents(r.collection().Where("complaintId", "==", complaint.ComplaintID).Limit(1))
		defer iter.Stop()

		if _, err := iter.Next(); err != iterator.Done {
			if err == nil {
				return errors.Conflict("Complaint ID already in use")
			}
			return err
		}
		return tx.Create(ref, complaint)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Complaint already exists")
		}
		return storeError("Failed to create complaint", err)
	}

	return nil
}

func (r *firestoreComplaintRepository) GetByID(ctx context.Context, id string) (*entity.Complaint, error) {
	doc, err := r.collection().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Complaint", err)
		}
		return nil, storeError("Failed to get complaint", err)
	}

	return decodeComplaint(doc)
}

func (r *firestoreComplaintRepository) GetByComplaintID(ctx context.Context, complaintID string) (*entity.Complaint, error) {
	iter := r.collection().Where("complaintId", "==", complaintID).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Complaint", nil)
		}
		return nil, storeError("Failed to query complaint", err)
	}

	return decodeComplaint(doc)
}

func decodeComplaint(doc *firestore.DocumentSnapshot) (*entity.Complaint, error) {
	var complaint entity.Complaint
	if err := doc.DataTo(&complaint); err != nil {
		return nil, errors.Internal("Failed to parse complaint data", err)
	}
	complaint.ID = doc.Ref.ID
	return &complaint, nil
}

// filtered applies every equality term. Firestore has no substring operator, so the
// search term is never part of the native query.
func (r *firestoreComplaintRepository) filtered(filter query.Filter) firestore.Query {
	q := r.collection().Query
	for field, value := range filter.Equalities() {
		q = q.Where(field, "==", value)
	}
	return q
}

func (r *firestoreComplaintRepository) List(ctx context.Context, criteria query.Criteria) ([]*entity.Complaint, int64, error) {
	if criteria.Filter.Search != "" {
		return r.listWithSearch(ctx, criteria)
	}

	base := r.filtered(criteria.Filter)

	total, err := r.count(ctx, base)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 || int64(criteria.Page.Offset) >= total {
		return []*entity.Complaint{}, total, nil
	}

	q := base
	for _, key := range criteria.Sort.Keys() {
		direction := firestore.Asc
		if key.Desc {
			direction = firestore.Desc
		}
		q = q.OrderBy(key.Field, direction)
	}
	q = q.Offset(criteria.Page.Offset).Limit(criteria.Page.PageSize)

	complaints, err := r.collect(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

// listWithSearch narrows by the equality terms natively and finishes in process.
func (r *firestoreComplaintRepository) listWithSearch(ctx context.Context, criteria query.Criteria) ([]*entity.Complaint, int64, error) {
	candidates, err := r.collect(ctx, r.filtered(criteria.Filter))
	if err != nil {
		return nil, 0, err
	}

	page, total := query.Apply(candidates, criteria)
	return page, total, nil
}

func (r *firestoreComplaintRepository) collect(ctx context.Context, q firestore.Query) ([]*entity.Complaint, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	complaints := make([]*entity.Complaint, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError("Failed to iterate complaints", err)
		}

		complaint, err := decodeComplaint(doc)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, complaint)
	}

	return complaints, nil
}

func (r *firestoreComplaintRepository) count(ctx context.Context, q firestore.Query) (int64, error) {
	result, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, storeError("Failed to count complaints", err)
	}

	raw, ok := result["all"]
	if !ok {
		return 0, errors.Internal("Count aggregation returned no value", nil)
	}
	value, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, errors.Internal("Count aggregation returned an unexpected type", nil)
	}
	return value.GetIntegerValue(), nil
}

func (r *firestoreComplaintRepository) UpdateStatus(ctx context.Context, id string, update entity.StatusUpdate, rule entity.TransitionRule) (*entity.Complaint, entity.Status, error) {
	var (
		updated  *entity.Complaint
		previous entity.Status
	)

	ref := r.collection().Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		complaint, err := decodeComplaint(doc)
		if err != nil {
			return err
		}

		previous = complaint.Status
		if !rule(previous, update.Status) {
			return errors.InvalidTransition(string(previous), string(update.Status))
		}

		update.Apply(complaint)
		updated = complaint
		return tx.Set(ref, complaint)
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, "", errors.NotFound("Complaint", err)
		}
		return nil, previous, storeError("Failed to update complaint status", err)
	}

	return updated, previous, nil
}

func (r *firestoreComplaintRepository) IncrementUpvotes(ctx context.Context, id string) (int, error) {
	return r.increment(ctx, id, "upvotes", func(c *entity.Complaint) int { return c.Upvotes })
}

func (r *firestoreComplaintRepository) IncrementEscalations(ctx context.Context, id string) (int, error) {
	return r.increment(ctx, id, "escalationCount", func(c *entity.Complaint) int { return c.EscalationCount })
}

func (r *firestoreComplaintRepository) increment(ctx context.Context, id, field string, current func(*entity.Complaint) int) (int, error) {
	var next int

	ref := r.collection().Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}

		complaint, err := decodeComplaint(doc)
		if err != nil {
			return err
		}

		next = current(complaint) + 1
		return tx.Update(ref, []firestore.Update{
			{Path: field, Value: firestore.Increment(1)},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, errors.NotFound("Complaint", err)
		}
		return 0, storeError("Failed to increment "+field, err)
	}

	return next, nil
}

func (r *firestoreComplaintRepository) CountByStatus(ctx context.Context, reportedBy string) (entity.StatusCounts, error) {
	base := r.collection().Query
	if reportedBy != "" {
		base = base.Where("reportedBy", "==", reportedBy)
	}

	total, err := r.count(ctx, base)
	if err != nil {
		return entity.StatusCounts{}, err
	}

	byStatus := make(map[entity.Status]int64, len(entity.Statuses))
	for _, s := range entity.Statuses {
		n, err := r.count(ctx, base.Where("status", "==", string(s)))
		if err != nil {
			return entity.StatusCounts{}, err
		}
		byStatus[s] = n
	}

	return statusCounts(total, byStatus), nil
}

func (r *firestoreComplaintRepository) CountByCategory(ctx context.Context) ([]entity.CategoryCount, error) {
	counts := make(map[entity.Category]int64, len(entity.Categories))
	for _, category := range entity.Categories {
		n, err := r.count(ctx, r.collection().Where("category", "==", string(category)))
		if err != nil {
			return nil, err
		}
		counts[category] = n
	}

	return sortCategoryCounts(counts), nil
}

func (r *firestoreComplaintRepository) Ping(ctx context.Context) error {
	iter := r.collection().Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return storeError("Failed to reach complaint store", err)
	}
	return nil
}
