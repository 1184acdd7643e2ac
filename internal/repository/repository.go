package repository

import (
	"context"
	"fmt"

	"venuehub/internal/database"
	"venuehub/internal/models"

	"github.com/google/uuid"
)

// NotificationStore persists notifications; Postgres and MongoDB both implement it.
// Create reports false when a notification with the same id already exists.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (bool, error)
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID, id string) (bool, error)
}

type Repositories struct {
	Identities    *IdentityRepository
	Venues        *VenueRepository
	Bookings      *BookingRepository
	Dashboards    *DashboardRepository
	Notifications NotificationStore
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Identities:    NewIdentityRepository(db),
		Venues:        NewVenueRepository(db),
		Bookings:      NewBookingRepository(db),
		Dashboards:    NewDashboardRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// WithNotificationStore swaps the notification store, e.g. for MongoDB.
func (r *Repositories) WithNotificationStore(store NotificationStore) *Repositories {
	r.Notifications = store
	return r
}

// validID guards UUID columns so malformed path parameters read as missing rows.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// OpenNotificationStore selects the notification backend. kind is "postgres"
// or "mongo"; the returned close func releases the Mongo client when one was
// opened.
func OpenNotificationStore(ctx context.Context, db *database.DB, kind, mongoURI, mongoDatabase string) (NotificationStore, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch kind {
	case "", "postgres":
		return NewNotificationRepository(db), noop, nil
	case "mongo":
		client, err := ConnectMongo(ctx, mongoURI)
		if err != nil {
			return nil, noop, err
		}
		store, err := NewNotificationMongoRepository(ctx, client, mongoDatabase)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, noop, err
		}
		return store, client.Disconnect, nil
	default:
		return nil, noop, fmt.Errorf("unknown notification store %q", kind)
	}
}
