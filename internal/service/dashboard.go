package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/logger"
	"venuehub/internal/metrics"
	"venuehub/internal/models"
)

type DashboardService struct {
	store DashboardStore
	now   func() time.Time
}

func NewDashboardService(store DashboardStore) *DashboardService {
	return &DashboardService{store: store, now: time.Now}
}

// Recompute derives the owner's summary from current venue and booking state
// and stores it. Running it twice without intervening changes yields the
// same summary.
func (s *DashboardService) Recompute(ctx context.Context, ownerID string) (*models.DashboardSummary, error) {
	summary, err := s.recompute(ctx, ownerID)
	metrics.DashboardRecomputes.WithLabelValues(metrics.ResultOf(err)).Inc()
	return summary, err
}

func (s *DashboardService) recompute(ctx context.Context, ownerID string) (*models.DashboardSummary, error) {
	stats, err := s.store.Stats(ctx, ownerID, monthStart(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	summary := BuildSummary(ownerID, stats)
	if err := s.store.Upsert(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to store dashboard: %w", err)
	}
	return summary, nil
}

func (s *DashboardService) Get(ctx context.Context, ownerID string) (*models.DashboardSummary, error) {
	summary, err := s.store.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard: %w", err)
	}
	if summary == nil {
		return nil, apperrors.NotFound("dashboard not found")
	}
	return summary, nil
}

// Provision creates an empty summary for a newly registered owner.
func (s *DashboardService) Provision(ctx context.Context, ownerID string) error {
	if err := s.store.Provision(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to provision dashboard: %w", err)
	}
	return nil
}

// RecomputeAll refreshes every owner's summary and reports how many succeeded.
// One owner failing does not stop the rest.
func (s *DashboardService) RecomputeAll(ctx context.Context) (int, error) {
	ownerIDs, err := s.store.ListOwnerIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list owners: %w", err)
	}

	var errs []error
	done := 0
	for _, ownerID := range ownerIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := s.Recompute(ctx, ownerID); err != nil {
			logger.WithContext(ctx).Error("Dashboard recompute failed", "owner_id", ownerID, "error", err)
			errs = append(errs, fmt.Errorf("owner %s: %w", ownerID, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

// BuildSummary turns raw counts into the dashboard summary. Trends compare the
// current calendar month with the previous one.
func BuildSummary(ownerID string, st *models.DashboardStats) *models.DashboardSummary {
	summary := &models.DashboardSummary{
		OwnerID: ownerID,
		TotalVenues: models.CountStat{
			Total: st.TotalVenues,
			Trend: percentChange(float64(st.VenuesThisMonth), float64(st.VenuesLastMonth)),
		},
		ActiveBooking: models.ActiveBookingStat{
			Confirmed: st.ConfirmedBookings,
			Pending:   st.PendingBookings,
		},
		Revenue: models.RevenueStat{
			Total: st.RevenueTotal,
			Trend: percentChange(float64(st.RevenueThisMonth), float64(st.RevenueLastMonth)),
		},
	}

	if st.TotalVenues > 0 {
		summary.OccupancyRate = models.RateStat{
			Total: round2(float64(st.OccupiedThisMonth) * 100 / float64(st.TotalVenues)),
			Trend: percentChange(float64(st.OccupiedThisMonth), float64(st.OccupiedLastMonth)),
		}
	}
	return summary
}

// percentChange is 0 when there is nothing to compare against.
func percentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return round2((current - previous) / previous * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
