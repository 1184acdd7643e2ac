package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"venuehub/internal/database"
	"venuehub/internal/models"

	"github.com/lib/pq"
)

type VenueRepository struct {
	db *database.DB
}

func NewVenueRepository(db *database.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

const venueColumns = `id, owner_id, name, description, street, city, state, capacity_min, capacity_max,
		       price, caution_fee, open_time, close_time, hall_size, type, amenities, documents,
		       available, featured, featured_until, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVenue(row rowScanner) (*models.Venue, error) {
	var v models.Venue
	err := row.Scan(
		&v.ID,
		&v.OwnerID,
		&v.Name,
		&v.Description,
		&v.Street,
		&v.City,
		&v.State,
		&v.CapacityMin,
		&v.CapacityMax,
		&v.Price,
		&v.CautionFee,
		&v.OpenTime,
		&v.CloseTime,
		&v.HallSize,
		&v.Type,
		pq.Array(&v.Amenities),
		&v.Documents,
		&v.Available,
		&v.Featured,
		&v.FeaturedUntil,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if v.Amenities == nil {
		v.Amenities = []string{}
	}
	return &v, nil
}

func (r *VenueRepository) Create(ctx context.Context, venue *models.Venue) error {
	query := `
		INSERT INTO venues (owner_id, name, description, street, city, state, capacity_min, capacity_max,
		                    price, caution_fee, open_time, close_time, hall_size, type, amenities, documents,
		                    available, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		venue.OwnerID,
		venue.Name,
		venue.Description,
		venue.Street,
		venue.City,
		venue.State,
		venue.CapacityMin,
		venue.CapacityMax,
		venue.Price,
		venue.CautionFee,
		venue.OpenTime,
		venue.CloseTime,
		venue.HallSize,
		venue.Type,
		pq.Array(venue.Amenities),
		venue.Documents,
		venue.Available,
		venue.Status,
	).Scan(&venue.ID, &venue.CreatedAt, &venue.UpdatedAt)
}

func (r *VenueRepository) GetByID(ctx context.Context, id string) (*models.Venue, error) {
	if !validID(id) {
		return nil, nil
	}

	query := `SELECT ` + venueColumns + ` FROM venues WHERE id = $1 AND deleted_at IS NULL`

	venue, err := scanVenue(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return venue, err
}

// Update writes the owner-editable fields. Status and featuring are admin-only
// and left untouched.
func (r *VenueRepository) Update(ctx context.Context, venue *models.Venue) error {
	query := `
		UPDATE venues
		SET name = $1, description = $2, street = $3, city = $4, state = $5,
		    capacity_min = $6, capacity_max = $7, price = $8, caution_fee = $9,
		    open_time = $10, close_time = $11, hall_size = $12, type = $13,
		    amenities = $14, documents = $15, available = $16, updated_at = NOW()
		WHERE id = $17 AND owner_id = $18 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		venue.Name,
		venue.Description,
		venue.Street,
		venue.City,
		venue.State,
		venue.CapacityMin,
		venue.CapacityMax,
		venue.Price,
		venue.CautionFee,
		venue.OpenTime,
		venue.CloseTime,
		venue.HallSize,
		venue.Type,
		pq.Array(venue.Amenities),
		venue.Documents,
		venue.Available,
		venue.ID,
		venue.OwnerID,
	).Scan(&venue.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return err
}

// SoftDelete hides the venue; bookings keep referencing it.
func (r *VenueRepository) SoftDelete(ctx context.Context, id, ownerID string) (bool, error) {
	query := `
		UPDATE venues SET deleted_at = NOW(), available = FALSE, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *VenueRepository) UpdateStatus(ctx context.Context, id string, status models.VenueStatus) (bool, error) {
	query := `UPDATE venues SET status = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *VenueRepository) SetFeatured(ctx context.Context, id string, until time.Time) (bool, error) {
	query := `
		UPDATE venues SET featured = TRUE, featured_until = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, until, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *VenueRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Venue, error) {
	if !validID(ownerID) {
		return []models.Venue{}, nil
	}

	query := `SELECT ` + venueColumns + ` FROM venues
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	return r.list(ctx, query, ownerID)
}

// Search lists verified venues matching the filter, currently featured venues first.
func (r *VenueRepository) Search(ctx context.Context, filter models.VenueFilter) ([]models.Venue, int64, error) {
	filter.Normalize()

	conds := []string{"deleted_at IS NULL", "status = 'verified'"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		p := arg("%" + q + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR city ILIKE %s)", p, p, p))
	}
	if filter.City != "" {
		conds = append(conds, "city ILIKE "+arg(filter.City))
	}
	if filter.State != "" {
		conds = append(conds, "state ILIKE "+arg(filter.State))
	}
	if filter.Type != "" {
		conds = append(conds, "type = "+arg(filter.Type))
	}
	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM venues WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + venueColumns + ` FROM venues WHERE ` + where + `
		ORDER BY (featured AND (featured_until IS NULL OR featured_until > NOW())) DESC, created_at DESC
		LIMIT ` + arg(filter.PageSize) + ` OFFSET ` + arg(filter.Offset())

	venues, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return venues, total, nil
}

func (r *VenueRepository) list(ctx context.Context, query string, args ...any) ([]models.Venue, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := []models.Venue{}
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, *venue)
	}

	return venues, rows.Err()
}
