package notification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/infrastructure/reliability/retry"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Name() string {
	return "mock"
}

func (m *MockSink) Deliver(ctx context.Context, event entity.ComplaintEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*gomail.Message
	err  error
}

func (r *recordingMailer) DialAndSend(m ...*gomail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, m...)
	return nil
}

type fakePusher struct {
	userID  string
	message []byte
	online  bool
}

func (f *fakePusher) SendToUser(userID string, message []byte) int {
	f.userID = userID
	f.message = message
	if f.online {
		return 1
	}
	return 0
}

func fastRetry() *retry.Config {
	return &retry.Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func sampleEvent(eventType entity.EventType, status entity.Status) entity.ComplaintEvent {
	return entity.ComplaintEvent{
		ID:        "evt-1",
		Type:      eventType,
		OldStatus: entity.StatusReported,
		NewStatus: status,
		Complaint: entity.Complaint{
			ID:          "c1",
			ComplaintID: "CMP-1700000000000-AB12C",
			Title:       "Pothole on Main St",
			Description: "Large pothole",
			Category:    entity.CategoryRoadTransport,
			Priority:    entity.PriorityHigh,
			Location:    "Main St",
			Status:      status,
			CreatedDate: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
		Recipient: entity.Recipient{UserID: "u1", Name: "Asha", Email: "asha@example.com"},
	}
}

func TestDelivererRetriesTransientFailures(t *testing.T) {
	sink := new(MockSink)
	event := sampleEvent(entity.EventStatusChanged, entity.StatusInProgress)
	sink.On("Deliver", mock.Anything, event).Return(errors.New("smtp timeout")).Twice()
	sink.On("Deliver", mock.Anything, event).Return(nil).Once()

	ok := NewDeliverer(fastRetry(), sink).Deliver(context.Background(), event)

	assert.True(t, ok)
	sink.AssertNumberOfCalls(t, "Deliver", 3)
}

func TestDelivererDoesNotRetryMissingRecipient(t *testing.T) {
	sink := new(MockSink)
	event := sampleEvent(entity.EventStatusChanged, entity.StatusInProgress)
	sink.On("Deliver", mock.Anything, event).Return(ErrNoRecipient)

	ok := NewDeliverer(fastRetry(), sink).Deliver(context.Background(), event)

	assert.True(t, ok)
	sink.AssertNumberOfCalls(t, "Deliver", 1)
}

func TestDelivererReportsExhaustedSink(t *testing.T) {
	failing := new(MockSink)
	healthy := new(MockSink)
	event := sampleEvent(entity.EventStatusChanged, entity.StatusResolved)
	failing.On("Deliver", mock.Anything, event).Return(errors.New("down"))
	healthy.On("Deliver", mock.Anything, event).Return(nil)

	ok := NewDeliverer(fastRetry(), failing, healthy).Deliver(context.Background(), event)

	assert.False(t, ok)
	failing.AssertNumberOfCalls(t, "Deliver", 3)
	healthy.AssertNumberOfCalls(t, "Deliver", 1)
}

func TestAsyncDispatcherDeliversQueuedEventsOnClose(t *testing.T) {
	sink := new(MockSink)
	sink.On("Deliver", mock.Anything, mock.Anything).Return(nil)

	dispatcher := NewAsyncDispatcher(NewDeliverer(fastRetry(), sink), 16)
	for i := 0; i < 5; i++ {
		require.NoError(t, dispatcher.Dispatch(context.Background(), sampleEvent(entity.EventComplaintCreated, entity.StatusReported)))
	}
	dispatcher.Start(context.Background(), 2)
	dispatcher.Close()

	sink.AssertNumberOfCalls(t, "Deliver", 5)
}

func TestAsyncDispatcherDropsWhenFull(t *testing.T) {
	dispatcher := NewAsyncDispatcher(NewDeliverer(fastRetry()), 1)
	event := sampleEvent(entity.EventComplaintCreated, entity.StatusReported)

	require.NoError(t, dispatcher.Dispatch(context.Background(), event))
	assert.ErrorIs(t, dispatcher.Dispatch(context.Background(), event), ErrQueueFull)

	dispatcher.Close()
	assert.ErrorIs(t, dispatcher.Dispatch(context.Background(), event), ErrQueueFull)
}

func TestRedisDispatcherCloseStopsWorkers(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	defer rdb.Close()

	dispatcher := NewRedisDispatcher(rdb, "civicsolve:test", NewDeliverer(fastRetry()))
	dispatcher.Start(context.Background(), 2)

	closed := make(chan struct{})
	go func() {
		dispatcher.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("Close did not stop the queue workers")
	}
}

func TestEmailSinkStatusChange(t *testing.T) {
	mailer := &recordingMailer{}
	sink := NewEmailSink(mailer, "noreply@civicsolve.local", "admin@civicsolve.local")
	event := sampleEvent(entity.EventStatusChanged, entity.StatusInProgress)
	event.Complaint.WorkOrderNumber = "WO-42"

	require.NoError(t, sink.Deliver(context.Background(), event))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"asha@example.com"}, mailer.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Complaint Status Update - Pothole on Main St"}, mailer.sent[0].GetHeader("Subject"))
}

func TestEmailSinkCreationAlertsAdmin(t *testing.T) {
	mailer := &recordingMailer{}
	sink := NewEmailSink(mailer, "noreply@civicsolve.local", "admin@civicsolve.local")

	require.NoError(t, sink.Deliver(context.Background(), sampleEvent(entity.EventComplaintCreated, entity.StatusReported)))
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, []string{"admin@civicsolve.local"}, mailer.sent[1].GetHeader("To"))
	assert.Equal(t, []string{"New Complaint Reported - Pothole on Main St"}, mailer.sent[1].GetHeader("Subject"))
}

func TestEmailSinkWithoutAddress(t *testing.T) {
	mailer := &recordingMailer{}
	sink := NewEmailSink(mailer, "noreply@civicsolve.local", "")
	event := sampleEvent(entity.EventStatusChanged, entity.StatusClosed)
	event.Recipient.Email = ""

	assert.ErrorIs(t, sink.Deliver(context.Background(), event), ErrNoRecipient)
	assert.Empty(t, mailer.sent)
}

func TestStatusEmailRendering(t *testing.T) {
	event := sampleEvent(entity.EventStatusChanged, entity.StatusInProgress)
	event.Complaint.WorkOrderNumber = "WO-42"
	event.Complaint.Title = "<b>Broken</b> light"

	email, err := statusEmail(event)
	require.NoError(t, err)

	assert.Contains(t, email.Text, "Status: IN PROGRESS")
	assert.Contains(t, email.Text, "Your complaint is now being processed by our team.")
	assert.Contains(t, email.Text, "Work Order Number: WO-42")
	assert.Contains(t, email.HTML, "&lt;b&gt;Broken&lt;/b&gt; light")
	assert.False(t, strings.Contains(email.HTML, "<b>Broken</b>"))

	event.Complaint.WorkOrderNumber = ""
	email, err = statusEmail(event)
	require.NoError(t, err)
	assert.NotContains(t, email.Text, "Work Order Number")
}

func TestNewComplaintEmailRendering(t *testing.T) {
	email, err := newComplaintEmail(sampleEvent(entity.EventComplaintCreated, entity.StatusReported))
	require.NoError(t, err)

	assert.Contains(t, email.Text, "Priority: HIGH")
	assert.Contains(t, email.Text, "Reported by: Asha (asha@example.com)")
	assert.Contains(t, email.Text, "Reported on: 01 May 2024 10:00 UTC")
}

func TestWebsocketSink(t *testing.T) {
	event := sampleEvent(entity.EventStatusChanged, entity.StatusResolved)

	online := &fakePusher{online: true}
	require.NoError(t, NewWebsocketSink(online).Deliver(context.Background(), event))
	assert.Equal(t, "u1", online.userID)
	assert.Contains(t, string(online.message), `"type":"notification"`)
	assert.Contains(t, string(online.message), `"newStatus":"resolved"`)

	offline := &fakePusher{}
	assert.ErrorIs(t, NewWebsocketSink(offline).Deliver(context.Background(), event), ErrNoRecipient)

	event.Recipient.UserID = ""
	assert.ErrorIs(t, NewWebsocketSink(online).Deliver(context.Background(), event), ErrNoRecipient)
}
