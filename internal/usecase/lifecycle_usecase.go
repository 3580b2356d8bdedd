package usecase

import (
	"context"
	"strings"
	"time"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/repository"
	"civicsolve/internal/domain/service"
	"civicsolve/internal/infrastructure/metrics"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/logger"
)

type LifecycleUseCase struct {
	complaintRepo repository.ComplaintRepository
	complaints    *ComplaintUseCase
	dispatcher    service.Dispatcher
	rule          entity.TransitionRule
	now           func() time.Time
}

// NewLifecycleUseCase enforces forward-only moves when strict is set and accepts any
// valid status otherwise.
func NewLifecycleUseCase(
	complaintRepo repository.ComplaintRepository,
	complaints *ComplaintUseCase,
	dispatcher service.Dispatcher,
	strict bool,
) *LifecycleUseCase {
	rule := entity.TransitionRule(entity.AnyTransition)
	if strict {
		rule = entity.ForwardOnly
	}

	return &LifecycleUseCase{
		complaintRepo: complaintRepo,
		complaints:    complaints,
		dispatcher:    dispatcher,
		rule:          rule,
		now:           time.Now,
	}
}

type UpdateStatusInput struct {
	Status          string
	WorkOrderNumber string
}

func (uc *LifecycleUseCase) UpdateStatus(ctx context.Context, id string, input UpdateStatusInput) (*entity.Complaint, error) {
	status := entity.Status(strings.TrimSpace(input.Status))
	if !status.Valid() {
		return nil, errors.InvalidStatus(input.Status)
	}

	storeID, err := uc.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	update := entity.StatusUpdate{
		Status:          status,
		WorkOrderNumber: strings.TrimSpace(input.WorkOrderNumber),
		At:              uc.now(),
	}

	updated, previous, err := uc.complaintRepo.UpdateStatus(ctx, storeID, update, uc.rule)
	if err != nil {
		return nil, err
	}

	metrics.ObserveTransition(string(previous), string(status))
	logger.WithComplaint(updated.ComplaintID, "lifecycle").
		WithField("from", previous).
		WithField("to", status).
		Info("Complaint status updated")

	uc.complaints.enrich(ctx, []*entity.Complaint{updated})
	dispatchEvent(ctx, uc.dispatcher, entity.ComplaintEvent{
		Type:      entity.EventStatusChanged,
		OldStatus: previous,
		NewStatus: status,
		Complaint: *updated.Clone(),
	})

	return updated, nil
}

func (uc *LifecycleUseCase) Upvote(ctx context.Context, id string) (int, error) {
	storeID, err := uc.resolveID(ctx, id)
	if err != nil {
		return 0, err
	}

	upvotes, err := uc.complaintRepo.IncrementUpvotes(ctx, storeID)
	if err != nil {
		return 0, err
	}

	metrics.ObserveUpvote()
	return upvotes, nil
}

func (uc *LifecycleUseCase) Escalate(ctx context.Context, id string) (int, error) {
	storeID, err := uc.resolveID(ctx, id)
	if err != nil {
		return 0, err
	}

	count, err := uc.complaintRepo.IncrementEscalations(ctx, storeID)
	if err != nil {
		return 0, err
	}

	metrics.ObserveEscalation()
	logger.WithFields(map[string]interface{}{"id": storeID, "escalations": count}).Info("Complaint escalated")
	return count, nil
}

// resolveID maps a complaintId to the store id; store ids pass through untouched.
func (uc *LifecycleUseCase) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NotFound("Complaint", nil)
	}
	if !strings.HasPrefix(id, "CMP-") {
		return id, nil
	}

	complaint, err := uc.complaintRepo.GetByComplaintID(ctx, id)
	if err != nil {
		return "", err
	}
	return complaint.ID, nil
}
