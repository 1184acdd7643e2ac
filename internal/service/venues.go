package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/logger"
	"venuehub/internal/models"
)

type VenueService struct {
	venues     VenueStore
	index      VenueIndex
	publisher  EventPublisher
	dashboards DashboardRecomputer
	now        func() time.Time
}

// NewVenueService builds the venue catalog. index may be nil, in which case
// search runs against the venue store.
func NewVenueService(venues VenueStore, index VenueIndex, publisher EventPublisher, dashboards DashboardRecomputer) *VenueService {
	return &VenueService{
		venues:     venues,
		index:      index,
		publisher:  publisher,
		dashboards: dashboards,
		now:        time.Now,
	}
}

// Create lists a new venue for the owner. New venues await admin verification.
func (s *VenueService) Create(ctx context.Context, ownerID string, req models.VenueRequest) (*models.Venue, error) {
	venue := &models.Venue{
		OwnerID: ownerID,
		Status:  models.VenueStatusPending,
	}
	applyVenueRequest(venue, req)

	if err := s.venues.Create(ctx, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	logger.WithContext(ctx).Info("Venue created", "venue_id", venue.ID, "owner_id", ownerID)

	s.reindex(ctx, venue)
	s.recompute(ctx, ownerID)
	return venue, nil
}

func (s *VenueService) Update(ctx context.Context, ownerID, venueID string, req models.VenueRequest) (*models.Venue, error) {
	venue, err := s.owned(ctx, ownerID, venueID)
	if err != nil {
		return nil, err
	}

	applyVenueRequest(venue, req)
	if err := s.venues.Update(ctx, venue); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("venue not found")
		}
		return nil, fmt.Errorf("failed to update venue: %w", err)
	}

	s.reindex(ctx, venue)
	return venue, nil
}

func (s *VenueService) Delete(ctx context.Context, ownerID, venueID string) error {
	venue, err := s.owned(ctx, ownerID, venueID)
	if err != nil {
		return err
	}

	ok, err := s.venues.SoftDelete(ctx, venue.ID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	if !ok {
		return apperrors.NotFound("venue not found")
	}

	if s.index != nil {
		if err := s.index.DeleteVenue(ctx, venue.ID); err != nil {
			logger.WithContext(ctx).Error("Failed to remove venue from search index", "venue_id", venue.ID, "error", err)
		}
	}
	s.recompute(ctx, ownerID)
	return nil
}

func (s *VenueService) Get(ctx context.Context, venueID string) (*models.Venue, error) {
	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	if venue == nil {
		return nil, apperrors.NotFound("venue not found")
	}
	venue.Featured = venue.IsFeatured(s.now())
	return venue, nil
}

func (s *VenueService) ListForOwner(ctx context.Context, ownerID string) ([]models.Venue, error) {
	venues, err := s.venues.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return venues, nil
}

// Search lists verified venues, featured ones first. The search index is
// preferred; the venue store answers when the index is absent or failing.
func (s *VenueService) Search(ctx context.Context, filter models.VenueFilter) (*models.VenueListResponse, error) {
	filter.Normalize()
	filter.Query = strings.TrimSpace(filter.Query)

	var (
		venues []models.Venue
		total  int64
		err    error
	)
	if s.index != nil {
		venues, total, err = s.index.Search(ctx, filter)
		if err != nil {
			logger.WithContext(ctx).Warn("Search index unavailable, falling back to database", "error", err)
		}
	}
	if s.index == nil || err != nil {
		venues, total, err = s.venues.Search(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to search venues: %w", err)
		}
	}

	now := s.now()
	for i := range venues {
		venues[i].Featured = venues[i].IsFeatured(now)
	}

	return &models.VenueListResponse{
		Venues:   venues,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// SetStatus moves a venue between moderation statuses and notifies its owner.
func (s *VenueService) SetStatus(ctx context.Context, venueID string, status models.VenueStatus) (*models.Venue, error) {
	venue, err := s.Get(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if venue.Status == status {
		return venue, nil
	}

	ok, err := s.venues.UpdateStatus(ctx, venue.ID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update venue status: %w", err)
	}
	if !ok {
		return nil, apperrors.NotFound("venue not found")
	}
	venue.Status = status

	s.reindex(ctx, venue)

	event := models.VenueStatusChangedEvent{
		EventID:   models.NewEventID(),
		VenueID:   venue.ID,
		VenueName: venue.Name,
		OwnerID:   venue.OwnerID,
		Status:    status,
		Timestamp: s.now(),
	}
	if err := s.publisher.Publish(ctx, models.EventVenueStatusChanged, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event", "subject", models.EventVenueStatusChanged, "error", err)
	}
	return venue, nil
}

// Feature promotes a venue in search results for the given number of days.
func (s *VenueService) Feature(ctx context.Context, venueID string, days int) (*models.Venue, error) {
	if days < 1 {
		return nil, apperrors.InvalidInput("days must be at least 1")
	}

	venue, err := s.Get(ctx, venueID)
	if err != nil {
		return nil, err
	}

	until := s.now().AddDate(0, 0, days)
	ok, err := s.venues.SetFeatured(ctx, venue.ID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to feature venue: %w", err)
	}
	if !ok {
		return nil, apperrors.NotFound("venue not found")
	}
	venue.Featured = true
	venue.FeaturedUntil = &until

	s.reindex(ctx, venue)
	return venue, nil
}

func (s *VenueService) owned(ctx context.Context, ownerID, venueID string) (*models.Venue, error) {
	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	if venue == nil {
		return nil, apperrors.NotFound("venue not found")
	}
	if venue.OwnerID != ownerID {
		return nil, apperrors.InvalidRole("you can only manage your own venues")
	}
	return venue, nil
}

func (s *VenueService) reindex(ctx context.Context, venue *models.Venue) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexVenue(ctx, venue); err != nil {
		logger.WithContext(ctx).Error("Failed to index venue", "venue_id", venue.ID, "error", err)
	}
}

func (s *VenueService) recompute(ctx context.Context, ownerID string) {
	if _, err := s.dashboards.Recompute(ctx, ownerID); err != nil {
		logger.WithContext(ctx).Error("Failed to recompute dashboard", "owner_id", ownerID, "error", err)
	}
}

func applyVenueRequest(v *models.Venue, req models.VenueRequest) {
	v.Name = strings.TrimSpace(req.Name)
	v.Description = req.Description
	v.Street = req.Street
	v.City = strings.TrimSpace(req.City)
	v.State = strings.TrimSpace(req.State)
	v.CapacityMin = req.CapacityMin
	v.CapacityMax = req.CapacityMax
	v.Price = req.Price
	v.CautionFee = req.CautionFee
	v.OpenTime = req.OpenTime
	v.CloseTime = req.CloseTime
	v.HallSize = req.HallSize
	v.Type = req.Type
	v.Amenities = req.Amenities
	if v.Amenities == nil {
		v.Amenities = []string{}
	}
	v.Documents = models.VenueDocuments{
		Images:       req.Images,
		CAC:          req.CAC,
		Registration: req.Registration,
	}
	v.Available = req.Available.Bool()
}
