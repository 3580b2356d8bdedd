package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/infrastructure/reliability/circuitbreaker"
	apperrors "civicsolve/pkg/errors"
)

func TestGuardedRepository_TripsOnOutage(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryComplaintRepository()
	breaker := circuitbreaker.New(2, 1, time.Hour)
	repo := NewGuardedComplaintRepository(inner, NewStoreGuard(time.Second, breaker))

	inner.SetUnavailable(errors.New("dial tcp: connection refused"))
	for i := 0; i < 2; i++ {
		_, err := repo.CountByStatus(ctx, "")
		assert.True(t, apperrors.IsStoreUnavailable(err))
	}
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	inner.SetUnavailable(nil)
	_, err := repo.GetByID(ctx, "anything")
	assert.True(t, apperrors.IsStoreUnavailable(err), "open breaker fails fast")
	assert.ErrorIs(t, err, ErrCircuitOpen)

	assert.NoError(t, repo.Ping(ctx), "ping bypasses the breaker")
}

func TestGuardedRepository_NotFoundIsNotAnOutage(t *testing.T) {
	breaker := circuitbreaker.New(1, 1, time.Hour)
	repo := NewGuardedComplaintRepository(NewMemoryComplaintRepository(), NewStoreGuard(time.Second, breaker))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())
}

func TestGuardedRepository_PassesResultsThrough(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryComplaintRepository()
	repo := NewGuardedComplaintRepository(inner, NewStoreGuard(time.Second, circuitbreaker.New(3, 1, time.Minute)))

	c := &entity.Complaint{ComplaintID: "CMP-1-ABCDE", Title: "Pothole", Category: entity.CategoryRoadTransport, Status: entity.StatusReported, Priority: entity.PriorityHigh}
	require.NoError(t, repo.Create(ctx, c))

	updated, previous, err := repo.UpdateStatus(ctx, c.ID, entity.StatusUpdate{Status: entity.StatusInProgress, At: time.Now()}, entity.ForwardOnly)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReported, previous)
	assert.Equal(t, entity.StatusInProgress, updated.Status)

	n, err := repo.IncrementEscalations(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
