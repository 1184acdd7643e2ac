package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"venuehub/internal/database"
	apperrors "venuehub/internal/errors"
	"venuehub/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// settledIndex backs the one-settled-booking-per-client-and-venue rule.
const settledIndex = "bookings_client_venue_settled_uidx"

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, venue_id, owner_id, client_id, event_date, number_of_guests,
		       base_amount, service_charge, total_amount, caution_fee, caution_fee_status,
		       payment_status, payment_reference, paid_at, booking_status, version, created_at, updated_at`

func errAlreadyBooked() error {
	return apperrors.Conflict("you already have an accepted and paid booking for this venue")
}

// Create inserts a booking unless the client already holds an accepted and
// paid booking for the same venue. The check and insert share a serializable
// transaction so concurrent creates cannot both pass the check.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.Serializable(ctx, func(tx *sqlx.Tx) error {
		var settled bool
		err := tx.GetContext(ctx, &settled, `
			SELECT EXISTS (
				SELECT 1 FROM bookings
				WHERE client_id = $1 AND venue_id = $2
				  AND booking_status = 'accepted' AND payment_status = 'paid'
			)`, booking.ClientID, booking.VenueID)
		if err != nil {
			return fmt.Errorf("checking settled bookings: %w", err)
		}
		if settled {
			return errAlreadyBooked()
		}

		query := `
			INSERT INTO bookings (venue_id, owner_id, client_id, event_date, number_of_guests,
			                      base_amount, service_charge, total_amount, caution_fee,
			                      caution_fee_status, payment_status, booking_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id, version, created_at, updated_at`

		err = tx.QueryRowContext(ctx, query,
			booking.VenueID,
			booking.OwnerID,
			booking.ClientID,
			booking.EventDate,
			booking.NumberOfGuests,
			booking.BaseAmount,
			booking.ServiceCharge,
			booking.TotalAmount,
			booking.CautionFee,
			booking.CautionFeeStatus,
			booking.PaymentStatus,
			booking.Status,
		).Scan(&booking.ID, &booking.Version, &booking.CreatedAt, &booking.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting booking: %w", err)
		}
		return nil
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE payment_reference = $1`, reference)
}

func (r *BookingRepository) getOne(ctx context.Context, query string, args ...any) (*models.Booking, error) {
	booking := &models.Booking{}
	err := r.db.GetContext(ctx, booking, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ListByClient returns the client's bookings in the given statuses, newest first.
func (r *BookingRepository) ListByClient(ctx context.Context, clientID string, statuses []models.BookingStatus) ([]models.Booking, error) {
	bookings := []models.Booking{}
	if !validID(clientID) {
		return bookings, nil
	}

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE client_id = $1 AND booking_status = ANY($2)
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &bookings, query, clientID, pq.Array(names))
	return bookings, err
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	if !validID(ownerID) {
		return bookings, nil
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE owner_id = $1
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &bookings, query, ownerID)
	return bookings, err
}

// TransitionStatus moves booking_status from one value to another. It reports
// false when the booking was not in the expected state.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND booking_status = $3`

	return r.exec(ctx, query, to, id, from)
}

// AttachPaymentReference starts a new payment attempt on an accepted, unpaid booking.
func (r *BookingRepository) AttachPaymentReference(ctx context.Context, id, reference string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_reference = $1, payment_status = 'pending', version = version + 1, updated_at = NOW()
		WHERE id = $2 AND booking_status = 'accepted' AND payment_status <> 'paid'`

	return r.exec(ctx, query, reference, id)
}

// MarkPaid settles an accepted booking. The settled index turns a second
// settled booking for the same client and venue into a conflict.
func (r *BookingRepository) MarkPaid(ctx context.Context, id, reference string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'paid', payment_reference = $1, paid_at = NOW(), version = version + 1, updated_at = NOW()
		WHERE id = $2 AND booking_status = 'accepted' AND payment_status <> 'paid'`

	ok, err := r.exec(ctx, query, reference, id)
	if database.IsUniqueViolation(err, settledIndex) {
		return false, errAlreadyBooked()
	}
	return ok, err
}

// MarkPaymentFailed records a failed charge for the booking's current attempt.
func (r *BookingRepository) MarkPaymentFailed(ctx context.Context, id, reference string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'failed', payment_reference = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND booking_status = 'accepted' AND payment_status = 'pending'
		  AND (payment_reference = $1 OR payment_reference IS NULL)`

	return r.exec(ctx, query, reference, id)
}

func (r *BookingRepository) RefundCautionFee(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE bookings
		SET caution_fee_status = 'refunded', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND booking_status = 'accepted' AND payment_status = 'paid'
		  AND caution_fee_status = 'pending'`

	return r.exec(ctx, query, id)
}

func (r *BookingRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
