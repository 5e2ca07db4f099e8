package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"shop/pkg/domain/model"
)

type NotificationService interface {
	NotifyUser(userID uuid.UUID, subject, body string) error
	GetUserNotifications(userID uuid.UUID) ([]model.Notification, error)
}

func NewNotificationService(
	repo model.NotificationRepository,
	users model.UserRepository,
	sender model.NotificationSender,
	dispatcher EventDispatcher,
) NotificationService {
	return &notificationService{repo: repo, users: users, sender: sender, dispatcher: dispatcher}
}

type notificationService struct {
	repo       model.NotificationRepository
	users      model.UserRepository
	sender     model.NotificationSender
	dispatcher EventDispatcher
}

// NotifyUser records a notification and hands it to the sender. A sender
// failure is kept on the notification and is not returned.
func (s *notificationService) NotifyUser(userID uuid.UUID, subject, body string) error {
	user, err := s.users.Find(userID)
	if err != nil {
		return err
	}

	notificationID, err := s.repo.NextID()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	notification := &model.Notification{
		ID:        notificationID,
		UserID:    userID,
		Recipient: user.Email,
		Subject:   subject,
		Body:      body,
		Status:    model.NotificationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(notification); err != nil {
		return err
	}

	if err := s.sender.Send(user.Email, subject, body); err != nil {
		notification.Status = model.NotificationFailed
		notification.FailureReason = err.Error()
		_ = s.dispatcher.Dispatch(model.NotificationDeliveryFailed{NotificationID: notificationID, UserID: userID, Reason: err.Error()})
	} else {
		sentAt := time.Now().UTC()
		notification.Status = model.NotificationSent
		notification.SentAt = &sentAt
		_ = s.dispatcher.Dispatch(model.NotificationDelivered{NotificationID: notificationID, UserID: userID})
	}
	notification.UpdatedAt = time.Now().UTC()

	return s.repo.Update(notification)
}

func (s *notificationService) GetUserNotifications(userID uuid.UUID) ([]model.Notification, error) {
	return s.repo.FindByUserID(userID)
}

// Notifier turns customer-facing domain events into notifications.
type Notifier struct {
	notifications NotificationService
}

func NewNotifier(notifications NotificationService) *Notifier {
	return &Notifier{notifications: notifications}
}

func (n *Notifier) Dispatch(event Event) error {
	switch e := event.(type) {
	case model.UserRegistered:
		return n.notifications.NotifyUser(e.UserID, "Welcome to our store!",
			fmt.Sprintf("Hi %s, thanks for joining us!", e.Username))
	case model.OrderCreated:
		return n.notifications.NotifyUser(e.UserID,
			fmt.Sprintf("Your order %s has been confirmed!", e.OrderID),
			fmt.Sprintf("We have received your order of %d item(s) totalling %s and will process it shortly.",
				e.ItemCount, e.TotalAmount.StringFixed(2)))
	case model.PaymentSucceeded:
		return n.notifications.NotifyUser(e.UserID,
			fmt.Sprintf("Payment received for order %s", e.OrderID),
			fmt.Sprintf("We received %s. Transaction %s.", e.Amount.StringFixed(2), e.TransactionID))
	case model.PaymentFailed:
		return n.notifications.NotifyUser(e.UserID,
			fmt.Sprintf("Payment failed for order %s", e.OrderID),
			"Unfortunately, the payment for your order was declined. You can try again.")
	}
	return nil
}
