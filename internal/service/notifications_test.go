package service

import (
	"context"
	"testing"
	"time"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationStore struct {
	ListByRecipientFunc func(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkReadFunc        func(ctx context.Context, recipientID, id string) (bool, error)
}

func (f *fakeNotificationStore) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	return f.ListByRecipientFunc(ctx, recipientID, limit)
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, recipientID, id string) (bool, error) {
	return f.MarkReadFunc(ctx, recipientID, id)
}

func TestListNotificationsFillsTimeAgo(t *testing.T) {
	store := &fakeNotificationStore{
		ListByRecipientFunc: func(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
			assert.Equal(t, clientID, recipientID)
			assert.Equal(t, notificationPageSize, limit)
			return []models.Notification{
				{ID: "n1", CreatedAt: testNow.Add(-5 * time.Minute)},
				{ID: "n2", CreatedAt: testNow.Add(-26 * time.Hour)},
			}, nil
		},
	}
	svc := NewNotificationService(store)
	svc.now = func() time.Time { return testNow }

	list, err := svc.List(context.Background(), clientID)
	require.NoError(t, err)
	assert.Equal(t, "5 minutes ago", list[0].TimeAgo)
	assert.Equal(t, "1 day ago", list[1].TimeAgo)
}

func TestMarkNotificationRead(t *testing.T) {
	store := &fakeNotificationStore{
		MarkReadFunc: func(ctx context.Context, recipientID, id string) (bool, error) {
			return id == "n1", nil
		},
	}
	svc := NewNotificationService(store)

	assert.NoError(t, svc.MarkRead(context.Background(), clientID, "n1"))
	assert.ErrorIs(t, svc.MarkRead(context.Background(), clientID, "n2"), apperrors.ErrNotFound)
}
