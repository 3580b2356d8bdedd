package notification

import (
	"context"
	"fmt"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/infrastructure/websocket"
)

// Pusher is the part of the websocket manager the sink uses.
type Pusher interface {
	SendToUser(userID string, message []byte) int
}

type WebsocketSink struct {
	pusher Pusher
}

func NewWebsocketSink(pusher Pusher) *WebsocketSink {
	return &WebsocketSink{pusher: pusher}
}

func (s *WebsocketSink) Name() string {
	return "websocket"
}

type pushPayload struct {
	Event       entity.EventType `json:"event"`
	ID          string           `json:"id"`
	ComplaintID string           `json:"complaintId"`
	Title       string           `json:"title"`
	OldStatus   entity.Status    `json:"oldStatus,omitempty"`
	NewStatus   entity.Status    `json:"newStatus"`
	Message     string           `json:"message"`
}

// Deliver pushes to every open connection of the reporter. An offline reporter is not a
// failure.
func (s *WebsocketSink) Deliver(ctx context.Context, event entity.ComplaintEvent) error {
	if event.Recipient.UserID == "" {
		return ErrNoRecipient
	}

	msg, err := websocket.NewMessage(websocket.MessageTypeNotification, pushPayload{
		Event:       event.Type,
		ID:          event.Complaint.ID,
		ComplaintID: event.Complaint.ComplaintID,
		Title:       event.Complaint.Title,
		OldStatus:   event.OldStatus,
		NewStatus:   event.NewStatus,
		Message:     StatusMessage(event.NewStatus),
	})
	if err != nil {
		return fmt.Errorf("failed to encode push: %w", err)
	}

	if s.pusher.SendToUser(event.Recipient.UserID, msg) == 0 {
		return ErrNoRecipient
	}
	return nil
}
