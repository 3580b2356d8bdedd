package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicsolve/internal/domain/entity"
	"civicsolve/pkg/errors"
)

func TestConcurrentUpvotes(t *testing.T) {
	f := newFixture(t, ComplaintPolicy{})
	created := f.create(t, nil)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.lifecycle.Upvote(context.Background(), created.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.complaints.GetComplaint(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.Upvotes)
}

func TestUpvoteAndEscalateByComplaintID(t *testing.T) {
	f := newFixture(t, ComplaintPolicy{})
	created := f.create(t, nil)
	ctx := context.Background()

	upvotes, err := f.lifecycle.Upvote(ctx, created.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, 1, upvotes)

	count, err := f.lifecycle.Escalate(ctx, created.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = f.lifecycle.Upvote(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestUpdateStatusSetsResolvedDateOnce(t *testing.T) {
	f := newFixture(t, ComplaintPolicy{})
	created := f.create(t, nil)
	ctx := context.Background()

	resolvedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.lifecycle.now = func() time.Time { return resolvedAt }

	resolved, err := f.lifecycle.UpdateStatus(ctx, created.ID, UpdateStatusInput{Status: "resolved", WorkOrderNumber: "WO-7"})
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedDate)
	assert.True(t, resolved.ResolvedDate.Equal(resolvedAt))
	assert.Equal(t, "WO-7", resolved.WorkOrderNumber)

	f.lifecycle.now = func() time.Time { return resolvedAt.Add(48 * time.Hour) }
	closed, err := f.lifecycle.UpdateStatus(ctx, created.ComplaintID, UpdateStatusInput{Status: "closed"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusClosed, closed.Status)
	assert.True(t, closed.ResolvedDate.Equal(resolvedAt))
	assert.Equal(t, "WO-7", closed.WorkOrderNumber)

	events := f.dispatcher.events()
	require.Len(t, events, 3)
	assert.Equal(t, entity.EventStatusChanged, events[2].Type)
	assert.Equal(t, entity.StatusResolved, events[2].OldStatus)
	assert.Equal(t, entity.StatusClosed, events[2].NewStatus)
	assert.Equal(t, "asha@example.com", events[2].Recipient.Email)
}

func TestUpdateStatusErrors(t *testing.T) {
	f := newFixture(t, ComplaintPolicy{})
	created := f.create(t, nil)
	ctx := context.Background()

	_, err := f.lifecycle.UpdateStatus(ctx, created.ID, UpdateStatusInput{Status: "done"})
	assert.True(t, errors.Is(err, errors.CodeInvalidStatus))

	_, err = f.lifecycle.UpdateStatus(ctx, "missing", UpdateStatusInput{Status: "resolved"})
	assert.True(t, errors.IsNotFound(err))

	_, err = f.lifecycle.UpdateStatus(ctx, created.ID, UpdateStatusInput{Status: "in_progress"})
	require.NoError(t, err)

	_, err = f.lifecycle.UpdateStatus(ctx, created.ID, UpdateStatusInput{Status: "reported"})
	assert.True(t, errors.Is(err, errors.CodeInvalidTransition))

	got, err := f.complaints.GetComplaint(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, got.Status)
}

func TestUpdateStatusLenientRule(t *testing.T) {
	f := newFixture(t, ComplaintPolicy{})
	lenient := NewLifecycleUseCase(f.complaintRepo, f.complaints, f.dispatcher, false)
	created := f.create(t, nil)
	ctx := context.Background()

	_, err := lenient.UpdateStatus(ctx, created.ID, UpdateStatusInput{Status: "resolved"})
	require.NoError(t, err)

	reopened, err := lenient.UpdateStatus(ctx, created.ID, UpdateStatusInput{Status: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, reopened.Status)
	assert.NotNil(t, reopened.ResolvedDate)
}

func TestStoreUnavailableSurfaces(t *testing.T) {
	f := newFixture(t, ComplaintPolicy{})
	created := f.create(t, nil)
	f.complaintRepo.SetUnavailable(assert.AnError)

	_, err := f.lifecycle.Upvote(context.Background(), created.ID)
	assert.True(t, errors.IsStoreUnavailable(err))

	_, err = f.stats.GetStats(context.Background())
	assert.True(t, errors.IsStoreUnavailable(err))
}
