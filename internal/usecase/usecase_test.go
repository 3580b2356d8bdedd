package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"civicsolve/internal/adapter/repository"
	"civicsolve/internal/domain/entity"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event entity.ComplaintEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// events returns every event the dispatcher received, in order.
func (m *MockDispatcher) events() []entity.ComplaintEvent {
	var events []entity.ComplaintEvent
	for _, call := range m.Calls {
		if call.Method == "Dispatch" {
			events = append(events, call.Arguments.Get(1).(entity.ComplaintEvent))
		}
	}
	return events
}

type fixture struct {
	complaintRepo  *repository.MemoryComplaintRepository
	userRepo       *repository.MemoryUserRepository
	departmentRepo *repository.MemoryDepartmentRepository
	dispatcher     *MockDispatcher

	complaints *ComplaintUseCase
	lifecycle  *LifecycleUseCase
	stats      *StatsUseCase
	users      *UserUseCase
	reporter   *entity.User
}

func newFixture(t *testing.T, policy ComplaintPolicy) *fixture {
	t.Helper()

	f := &fixture{
		complaintRepo:  repository.NewMemoryComplaintRepository(),
		userRepo:       repository.NewMemoryUserRepository(),
		departmentRepo: repository.NewMemoryDepartmentRepository(),
		dispatcher:     new(MockDispatcher),
	}
	f.dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)

	f.complaints = NewComplaintUseCase(f.complaintRepo, f.userRepo, f.departmentRepo, f.dispatcher, policy)
	f.lifecycle = NewLifecycleUseCase(f.complaintRepo, f.complaints, f.dispatcher, true)
	f.stats = NewStatsUseCase(f.complaintRepo)
	f.users = NewUserUseCase(f.userRepo, f.complaints, f.stats, nil)

	f.reporter = &entity.User{
		ID:        "user-1",
		Name:      "Asha Rao",
		Phone:     "9876543210",
		CitizenID: "CIT-001",
		Email:     "asha@example.com",
		Role:      entity.RoleCitizen,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.userRepo.Create(context.Background(), f.reporter))
	return f
}

func validInput() CreateComplaintInput {
	return CreateComplaintInput{
		Title:       "Pothole on Main St",
		Description: "Large pothole near the bus stop",
		Category:    string(entity.CategoryRoadTransport),
		Priority:    string(entity.PriorityHigh),
		Location:    "Main St, Ward 4",
		Coordinates: &entity.Coordinates{Latitude: 12.97, Longitude: 77.59},
	}
}

func (f *fixture) create(t *testing.T, mutate func(*CreateComplaintInput)) *entity.Complaint {
	t.Helper()
	input := validInput()
	if mutate != nil {
		mutate(&input)
	}
	complaint, err := f.complaints.CreateComplaint(context.Background(), f.reporter.ID, input)
	require.NoError(t, err)
	return complaint
}
