package entity

import (
	"time"
)

type EventType string

const (
	EventComplaintCreated EventType = "complaint_created"
	EventStatusChanged    EventType = "status_changed"
)

// Recipient is the user a lifecycle event is delivered to.
type Recipient struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// ComplaintEvent carries a lifecycle transition to the notification dispatcher.
type ComplaintEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OldStatus  Status    `json:"oldStatus,omitempty"`
	NewStatus  Status    `json:"newStatus"`
	Complaint  Complaint `json:"complaint"`
	Recipient  Recipient `json:"recipient"`
	OccurredAt time.Time `json:"occurredAt"`
	Attempts   int       `json:"attempts,omitempty"`
}
