package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSummary(t *testing.T) {
	tests := []struct {
		name  string
		stats models.DashboardStats
		want  models.DashboardSummary
	}{
		{
			name:  "no venues",
			stats: models.DashboardStats{},
			want:  models.DashboardSummary{OwnerID: ownerID},
		},
		{
			name: "growth against previous month",
			stats: models.DashboardStats{
				TotalVenues:       4,
				VenuesThisMonth:   3,
				VenuesLastMonth:   2,
				ConfirmedBookings: 5,
				PendingBookings:   2,
				RevenueTotal:      models.NewMoney(330000),
				RevenueThisMonth:  models.NewMoney(220000),
				RevenueLastMonth:  models.NewMoney(110000),
				OccupiedThisMonth: 1,
				OccupiedLastMonth: 2,
			},
			want: models.DashboardSummary{
				OwnerID:       ownerID,
				TotalVenues:   models.CountStat{Total: 4, Trend: 50},
				ActiveBooking: models.ActiveBookingStat{Confirmed: 5, Pending: 2},
				Revenue:       models.RevenueStat{Total: models.NewMoney(330000), Trend: 100},
				OccupancyRate: models.RateStat{Total: 25, Trend: -50},
			},
		},
		{
			name: "nothing last month",
			stats: models.DashboardStats{
				TotalVenues:       3,
				VenuesThisMonth:   3,
				RevenueTotal:      models.NewMoney(1000),
				RevenueThisMonth:  models.NewMoney(1000),
				OccupiedThisMonth: 1,
			},
			want: models.DashboardSummary{
				OwnerID:       ownerID,
				TotalVenues:   models.CountStat{Total: 3},
				Revenue:       models.RevenueStat{Total: models.NewMoney(1000)},
				OccupancyRate: models.RateStat{Total: 33.33},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.stats
			assert.Equal(t, &tt.want, BuildSummary(ownerID, &stats))
		})
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	store := newMemDashboards()
	store.stats[ownerID] = &models.DashboardStats{TotalVenues: 2, ConfirmedBookings: 1, RevenueTotal: models.NewMoney(110000)}

	svc := NewDashboardService(store)
	svc.now = func() time.Time { return testNow }

	first, err := svc.Recompute(context.Background(), ownerID)
	require.NoError(t, err)
	second, err := svc.Recompute(context.Background(), ownerID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), store.months[0])

	stored, err := svc.Get(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, models.NewMoney(110000), stored.Revenue.Total)
}

func TestDashboardGetMissing(t *testing.T) {
	svc := NewDashboardService(newMemDashboards())

	_, err := svc.Get(context.Background(), ownerID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.Provision(context.Background(), ownerID))
	summary, err := svc.Get(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalVenues.Total)
}

func TestRecomputeAllContinuesPastFailures(t *testing.T) {
	store := newMemDashboards()
	store.stats["owner-a"] = &models.DashboardStats{TotalVenues: 1}
	store.stats["owner-c"] = &models.DashboardStats{TotalVenues: 2}
	store.statsErr["owner-b"] = errors.New("timeout")

	svc := NewDashboardService(store)
	done, err := svc.RecomputeAll(context.Background())

	assert.Equal(t, 2, done)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner-b")

	c, err := svc.Get(context.Background(), "owner-c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.TotalVenues.Total)
}
