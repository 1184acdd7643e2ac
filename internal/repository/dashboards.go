package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"venuehub/internal/database"
	"venuehub/internal/models"
)

type DashboardRepository struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Stats reads every count a dashboard summary is derived from in one
// statement, so the figures come from a single snapshot. monthStart is the
// first instant of the current calendar month.
func (r *DashboardRepository) Stats(ctx context.Context, ownerID string, monthStart time.Time) (*models.DashboardStats, error) {
	prevStart := monthStart.AddDate(0, -1, 0)
	nextStart := monthStart.AddDate(0, 1, 0)

	query := `
		WITH owned AS (
			SELECT id, created_at FROM venues WHERE owner_id = $1 AND deleted_at IS NULL
		)
		SELECT
			(SELECT COUNT(*) FROM owned) AS total_venues,
			(SELECT COUNT(*) FROM owned WHERE created_at >= $2 AND created_at < $4) AS venues_this_month,
			(SELECT COUNT(*) FROM owned WHERE created_at >= $3 AND created_at < $2) AS venues_last_month,
			COUNT(b.id) FILTER (WHERE b.booking_status = 'accepted') AS confirmed_bookings,
			COUNT(b.id) FILTER (WHERE b.booking_status = 'pending') AS pending_bookings,
			COALESCE(SUM(b.total_amount) FILTER (WHERE b.payment_status = 'paid'), 0) AS revenue_total,
			COALESCE(SUM(b.total_amount) FILTER (
				WHERE b.payment_status = 'paid' AND b.paid_at >= $2 AND b.paid_at < $4), 0) AS revenue_this_month,
			COALESCE(SUM(b.total_amount) FILTER (
				WHERE b.payment_status = 'paid' AND b.paid_at >= $3 AND b.paid_at < $2), 0) AS revenue_last_month,
			COUNT(DISTINCT b.venue_id) FILTER (
				WHERE b.booking_status = 'accepted' AND b.venue_id IN (SELECT id FROM owned)
				  AND b.event_date >= $5 AND b.event_date < $7) AS occupied_this_month,
			COUNT(DISTINCT b.venue_id) FILTER (
				WHERE b.booking_status = 'accepted' AND b.venue_id IN (SELECT id FROM owned)
				  AND b.event_date >= $6 AND b.event_date < $5) AS occupied_last_month
		FROM bookings b
		WHERE b.owner_id = $1`

	stats := &models.DashboardStats{}
	err := r.db.GetContext(ctx, stats, query,
		ownerID, monthStart, prevStart, nextStart,
		models.DateOf(monthStart), models.DateOf(prevStart), models.DateOf(nextStart))
	if err != nil {
		return nil, err
	}
	return stats, nil
}

type summaryRow struct {
	OwnerID           string       `db:"owner_id"`
	TotalVenues       int64        `db:"total_venues"`
	TotalVenuesTrend  float64      `db:"total_venues_trend"`
	ConfirmedBookings int64        `db:"confirmed_bookings"`
	PendingBookings   int64        `db:"pending_bookings"`
	RevenueTotal      models.Money `db:"revenue_total"`
	RevenueTrend      float64      `db:"revenue_trend"`
	OccupancyRate     float64      `db:"occupancy_rate"`
	OccupancyTrend    float64      `db:"occupancy_trend"`
	UpdatedAt         time.Time    `db:"updated_at"`
}

func (row summaryRow) toModel() *models.DashboardSummary {
	return &models.DashboardSummary{
		OwnerID:       row.OwnerID,
		TotalVenues:   models.CountStat{Total: row.TotalVenues, Trend: row.TotalVenuesTrend},
		ActiveBooking: models.ActiveBookingStat{Confirmed: row.ConfirmedBookings, Pending: row.PendingBookings},
		Revenue:       models.RevenueStat{Total: row.RevenueTotal, Trend: row.RevenueTrend},
		OccupancyRate: models.RateStat{Total: row.OccupancyRate, Trend: row.OccupancyTrend},
		UpdatedAt:     row.UpdatedAt,
	}
}

// Provision creates the empty summary row for a new venue owner.
func (r *DashboardRepository) Provision(ctx context.Context, ownerID string) error {
	query := `INSERT INTO dashboard_summaries (owner_id) VALUES ($1) ON CONFLICT (owner_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, ownerID)
	return err
}

// Upsert overwrites the owner's summary with freshly computed values.
func (r *DashboardRepository) Upsert(ctx context.Context, s *models.DashboardSummary) error {
	query := `
		INSERT INTO dashboard_summaries (owner_id, total_venues, total_venues_trend, confirmed_bookings,
		                                 pending_bookings, revenue_total, revenue_trend, occupancy_rate,
		                                 occupancy_trend, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET
			total_venues = EXCLUDED.total_venues,
			total_venues_trend = EXCLUDED.total_venues_trend,
			confirmed_bookings = EXCLUDED.confirmed_bookings,
			pending_bookings = EXCLUDED.pending_bookings,
			revenue_total = EXCLUDED.revenue_total,
			revenue_trend = EXCLUDED.revenue_trend,
			occupancy_rate = EXCLUDED.occupancy_rate,
			occupancy_trend = EXCLUDED.occupancy_trend,
			updated_at = NOW()
		RETURNING updated_at`

	return r.db.QueryRowContext(ctx, query,
		s.OwnerID,
		s.TotalVenues.Total,
		s.TotalVenues.Trend,
		s.ActiveBooking.Confirmed,
		s.ActiveBooking.Pending,
		s.Revenue.Total,
		s.Revenue.Trend,
		s.OccupancyRate.Total,
		s.OccupancyRate.Trend,
	).Scan(&s.UpdatedAt)
}

func (r *DashboardRepository) Get(ctx context.Context, ownerID string) (*models.DashboardSummary, error) {
	if !validID(ownerID) {
		return nil, nil
	}

	var row summaryRow
	query := `
		SELECT owner_id, total_venues, total_venues_trend, confirmed_bookings, pending_bookings,
		       revenue_total, revenue_trend, occupancy_rate, occupancy_trend, updated_at
		FROM dashboard_summaries
		WHERE owner_id = $1`

	err := r.db.GetContext(ctx, &row, query, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// ListOwnerIDs returns every venue owner, for bulk recomputation.
func (r *DashboardRepository) ListOwnerIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	query := `SELECT id FROM identities WHERE role = 'venue_owner' ORDER BY created_at`
	err := r.db.SelectContext(ctx, &ids, query)
	return ids, err
}
