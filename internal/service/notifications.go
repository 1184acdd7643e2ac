package service

import (
	"context"
	"fmt"
	"time"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/models"
	"venuehub/internal/notify"
)

const notificationPageSize = 50

type NotificationService struct {
	store NotificationStore
	now   func() time.Time
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

// List returns the recipient's latest notifications with their age filled in.
func (s *NotificationService) List(ctx context.Context, recipientID string) ([]models.Notification, error) {
	notifications, err := s.store.ListByRecipient(ctx, recipientID, notificationPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	now := s.now()
	for i := range notifications {
		notifications[i].TimeAgo = notify.TimeAgo(notifications[i].CreatedAt, now)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, recipientID, id string) error {
	ok, err := s.store.MarkRead(ctx, recipientID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !ok {
		return apperrors.NotFound("notification not found")
	}
	return nil
}
