package repository

import (
	"context"
	"database/sql"
	"errors"

	"venuehub/internal/database"
	"venuehub/internal/models"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts n unless a notification with its id exists, in which case it
// reports false and leaves the stored row untouched.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}

	query := `
		INSERT INTO notifications (id, recipient_id, recipient_role, venue_id, booking_id, title, message, dot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		n.ID,
		n.RecipientID,
		n.RecipientRole,
		n.VenueID,
		n.BookingID,
		n.Title,
		n.Message,
		n.Dot,
	).Scan(&n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	notifications := []models.Notification{}
	if !validID(recipientID) {
		return notifications, nil
	}

	query := `
		SELECT id, recipient_id, recipient_role, venue_id, booking_id, title, message, dot, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	err := r.db.SelectContext(ctx, &notifications, query, recipientID, limit)
	return notifications, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
