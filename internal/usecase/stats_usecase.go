package usecase

import (
	"context"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/repository"
)

// StatsUseCase reads aggregates fresh from the store on every call.
type StatsUseCase struct {
	complaintRepo repository.ComplaintRepository
}

func NewStatsUseCase(complaintRepo repository.ComplaintRepository) *StatsUseCase {
	return &StatsUseCase{
		complaintRepo: complaintRepo,
	}
}

func (uc *StatsUseCase) GetStats(ctx context.Context) (*entity.ComplaintStats, error) {
	overall, err := uc.complaintRepo.CountByStatus(ctx, "")
	if err != nil {
		return nil, err
	}

	byCategory, err := uc.complaintRepo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	if byCategory == nil {
		byCategory = []entity.CategoryCount{}
	}

	return &entity.ComplaintStats{
		Overall:    overall,
		ByCategory: byCategory,
	}, nil
}

func (uc *StatsUseCase) GetUserStats(ctx context.Context, userID string) (entity.StatusCounts, error) {
	return uc.complaintRepo.CountByStatus(ctx, userID)
}
