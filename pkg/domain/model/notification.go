package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus int

const (
	NotificationPending NotificationStatus = iota
	NotificationSent
	NotificationFailed
)

func (s NotificationStatus) String() string {
	switch s {
	case NotificationSent:
		return "Sent"
	case NotificationFailed:
		return "Failed"
	}
	return "Pending"
}

// Notification is a message to a customer about their account or orders.
type Notification struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Recipient     string
	Subject       string
	Body          string
	Status        NotificationStatus
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	SentAt        *time.Time
}

type NotificationRepository interface {
	NextID() (uuid.UUID, error)
	Create(notification *Notification) error
	Update(notification *Notification) error
	FindByUserID(userID uuid.UUID) ([]Notification, error)
}

type NotificationSender interface {
	Send(recipient, subject, body string) error
}
