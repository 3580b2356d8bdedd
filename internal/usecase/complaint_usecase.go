package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/query"
	"civicsolve/internal/domain/repository"
	"civicsolve/internal/domain/service"
	"civicsolve/internal/infrastructure/metrics"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/logger"
)

// LocationNotSpecified is the placeholder clients send when no address was resolved.
const LocationNotSpecified = "Location not specified"

const complaintIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type ComplaintUseCase struct {
	complaintRepo  repository.ComplaintRepository
	userRepo       repository.UserRepository
	departmentRepo repository.DepartmentRepository
	dispatcher     service.Dispatcher
	policy         ComplaintPolicy
	now            func() time.Time
}

// ComplaintPolicy holds the deployment choices for complaint creation.
type ComplaintPolicy struct {
	// AnonymousUserID is the reporter used when no identity is present; empty disables
	// anonymous reporting.
	AnonymousUserID string
	// Router links new complaints to a department; nil disables routing.
	Router DepartmentRouter
}

func NewComplaintUseCase(
	complaintRepo repository.ComplaintRepository,
	userRepo repository.UserRepository,
	departmentRepo repository.DepartmentRepository,
	dispatcher service.Dispatcher,
	policy ComplaintPolicy,
) *ComplaintUseCase {
	return &ComplaintUseCase{
		complaintRepo:  complaintRepo,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
		dispatcher:     dispatcher,
		policy:         policy,
		now:            time.Now,
	}
}

// CreateComplaintInput arrives validated by the HTTP layer; the use case only applies
// defaults.
type CreateComplaintInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Location    string
	Coordinates *entity.Coordinates
	Media       []entity.MediaAttachment
}

func (uc *ComplaintUseCase) CreateComplaint(ctx context.Context, actorID string, input CreateComplaintInput) (*entity.Complaint, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	if input.Coordinates == nil {
		return nil, errors.MissingField("coordinates")
	}

	reporterID := actorID
	if reporterID == "" {
		if uc.policy.AnonymousUserID == "" {
			return nil, errors.AuthRequired()
		}
		reporterID = uc.policy.AnonymousUserID
	}

	priority := entity.Priority(strings.TrimSpace(input.Priority))
	if priority == "" {
		priority = entity.PriorityMedium
	}

	media := input.Media
	if media == nil {
		media = []entity.MediaAttachment{}
	}

	now := uc.now()
	complaint := &entity.Complaint{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		Category:    entity.Category(input.Category),
		Location:    resolveLocation(input.Location, *input.Coordinates),
		Coordinates: *input.Coordinates,
		Priority:    priority,
		Status:      entity.StatusReported,
		ReportedBy:  reporterID,
		Media:       media,
		CreatedDate: now,
		UpdatedAt:   now,
	}

	uc.routeDepartment(ctx, complaint)

	if err := uc.insert(ctx, complaint); err != nil {
		return nil, err
	}

	metrics.ObserveComplaintCreated(string(complaint.Category))
	logger.WithComplaint(complaint.ComplaintID, "complaint").Info("Complaint created")

	uc.enrich(ctx, []*entity.Complaint{complaint})
	uc.dispatch(ctx, entity.ComplaintEvent{
		Type:      entity.EventComplaintCreated,
		NewStatus: complaint.Status,
		Complaint: *complaint.Clone(),
	})

	return complaint, nil
}

// insert retries on the rare complaintId collision.
func (uc *ComplaintUseCase) insert(ctx context.Context, complaint *entity.Complaint) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		complaint.ComplaintID = NewComplaintID(uc.now())
		err = uc.complaintRepo.Create(ctx, complaint)
		if !errors.Is(err, errors.CodeConflict) {
			return err
		}
	}
	return err
}

func resolveLocation(location string, c entity.Coordinates) string {
	location = strings.TrimSpace(location)
	if location == "" || location == LocationNotSpecified {
		return fmt.Sprintf("Lat: %g, Lng: %g", c.Latitude, c.Longitude)
	}
	return location
}

// NewComplaintID renders CMP-<epoch ms>-<5 uppercase base36 characters>.
func NewComplaintID(at time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = complaintIDAlphabet[rand.Intn(len(complaintIDAlphabet))]
	}
	return fmt.Sprintf("CMP-%d-%s", at.UnixMilli(), suffix)
}

func (uc *ComplaintUseCase) routeDepartment(ctx context.Context, complaint *entity.Complaint) {
	if uc.policy.Router == nil || uc.departmentRepo == nil {
		return
	}

	name := uc.policy.Router.Route(complaint)
	department, err := uc.departmentRepo.GetDepartmentByName(ctx, name)
	if err != nil {
		if !errors.IsNotFound(err) {
			logger.Warn("Department routing skipped: %v", err)
		}
		return
	}
	complaint.DepartmentID = department.ID
}

// GetComplaint accepts either the store id or the human-readable complaintId.
func (uc *ComplaintUseCase) GetComplaint(ctx context.Context, id string) (*entity.Complaint, error) {
	complaint, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.enrich(ctx, []*entity.Complaint{complaint})
	return complaint, nil
}

func (uc *ComplaintUseCase) find(ctx context.Context, id string) (*entity.Complaint, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NotFound("Complaint", nil)
	}
	if strings.HasPrefix(id, "CMP-") {
		return uc.complaintRepo.GetByComplaintID(ctx, id)
	}
	return uc.complaintRepo.GetByID(ctx, id)
}

func (uc *ComplaintUseCase) ListComplaints(ctx context.Context, req query.Request) (*query.Result, error) {
	return uc.list(ctx, query.Normalize(req))
}

// MyComplaints lists the caller's own complaints with the same filters as the public listing.
func (uc *ComplaintUseCase) MyComplaints(ctx context.Context, userID string, req query.Request) (*query.Result, error) {
	if userID == "" {
		return nil, errors.AuthRequired()
	}

	criteria := query.Normalize(req)
	criteria.Filter.ReportedBy = userID
	return uc.list(ctx, criteria)
}

// RecentComplaints returns the newest complaints of one reporter.
func (uc *ComplaintUseCase) RecentComplaints(ctx context.Context, userID string, limit int) ([]*entity.Complaint, error) {
	criteria := query.Normalize(query.Request{Limit: fmt.Sprint(limit)})
	criteria.Filter.ReportedBy = userID

	result, err := uc.list(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (uc *ComplaintUseCase) list(ctx context.Context, criteria query.Criteria) (*query.Result, error) {
	items, total, err := uc.complaintRepo.List(ctx, criteria)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.Complaint{}
	}

	uc.enrich(ctx, items)
	return &query.Result{Items: items, Meta: criteria.Meta(total)}, nil
}

// enrich joins reporter, department and branch names. Join failures only drop the join.
func (uc *ComplaintUseCase) enrich(ctx context.Context, complaints []*entity.Complaint) {
	if len(complaints) == 0 {
		return
	}

	ids := make([]string, 0, len(complaints))
	for _, c := range complaints {
		if c.Media == nil {
			c.Media = []entity.MediaAttachment{}
		}
		ids = append(ids, c.ReportedBy)
	}

	reporters, err := uc.userRepo.GetSummaries(ctx, ids)
	if err != nil {
		logger.Warn("Failed to join reporters: %v", err)
	}

	departments := make(map[string]*entity.NamedRef)
	branches := make(map[string]*entity.NamedRef)
	for _, c := range complaints {
		if r, ok := reporters[c.ReportedBy]; ok {
			c.Reporter = r
		}
		if c.DepartmentID != "" && uc.departmentRepo != nil {
			c.Department = uc.departmentRef(ctx, departments, c.DepartmentID)
		}
		if c.BranchID != "" && uc.departmentRepo != nil {
			c.Branch = uc.branchRef(ctx, branches, c.BranchID)
		}
	}
}

func (uc *ComplaintUseCase) departmentRef(ctx context.Context, cache map[string]*entity.NamedRef, id string) *entity.NamedRef {
	if ref, ok := cache[id]; ok {
		return ref
	}
	var ref *entity.NamedRef
	if d, err := uc.departmentRepo.GetDepartment(ctx, id); err == nil {
		ref = &entity.NamedRef{ID: d.ID, Name: d.Name}
	}
	cache[id] = ref
	return ref
}

func (uc *ComplaintUseCase) branchRef(ctx context.Context, cache map[string]*entity.NamedRef, id string) *entity.NamedRef {
	if ref, ok := cache[id]; ok {
		return ref
	}
	var ref *entity.NamedRef
	if b, err := uc.departmentRepo.GetBranch(ctx, id); err == nil {
		ref = &entity.NamedRef{ID: b.ID, Name: b.Name}
	}
	cache[id] = ref
	return ref
}

// dispatch addresses the event to the complaint's reporter and never fails the caller.
func (uc *ComplaintUseCase) dispatch(ctx context.Context, event entity.ComplaintEvent) {
	dispatchEvent(ctx, uc.dispatcher, event)
}

func dispatchEvent(ctx context.Context, dispatcher service.Dispatcher, event entity.ComplaintEvent) {
	if dispatcher == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if r := event.Complaint.Reporter; r != nil {
		event.Recipient = entity.Recipient{UserID: r.ID, Name: r.Name, Email: r.Email}
	} else {
		event.Recipient = entity.Recipient{UserID: event.Complaint.ReportedBy}
	}

	if err := dispatcher.Dispatch(ctx, event); err != nil {
		logger.WithComplaint(event.Complaint.ComplaintID, "notification").
			WithError(err).
			Warn("Failed to dispatch complaint event")
	}
}
