package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/external"
	"venuehub/internal/logger"
	"venuehub/internal/metrics"
	"venuehub/internal/models"

	"github.com/lithammer/shortuuid/v3"
)

// clientVisibleStatuses are the bookings a client sees in their list.
var clientVisibleStatuses = []models.BookingStatus{
	models.BookingStatusAccepted,
	models.BookingStatusPending,
}

// BookingService owns the booking lifecycle: pricing, the status state
// machine, payment recording and the side effects of each transition.
type BookingService struct {
	bookings       BookingStore
	venues         VenueReader
	identities     IdentityReader
	gateway        PaymentGateway
	publisher      EventPublisher
	dashboards     DashboardRecomputer
	gatewayTimeout time.Duration
	currency       string
	now            func() time.Time
	newReference   func() string
}

func NewBookingService(
	bookings BookingStore,
	venues VenueReader,
	identities IdentityReader,
	gateway PaymentGateway,
	publisher EventPublisher,
	dashboards DashboardRecomputer,
	gatewayTimeout time.Duration,
) *BookingService {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 15 * time.Second
	}
	return &BookingService{
		bookings:       bookings,
		venues:         venues,
		identities:     identities,
		gateway:        gateway,
		publisher:      publisher,
		dashboards:     dashboards,
		gatewayTimeout: gatewayTimeout,
		now:            time.Now,
		newReference:   func() string { return "vh_" + shortuuid.New() },
	}
}

// WithCurrency sets the currency a successful charge must be made in. When
// empty only the amount is checked.
func (s *BookingService) WithCurrency(currency string) *BookingService {
	s.currency = currency
	return s
}

// Create requests a booking of venueID by clientID. The booking starts
// pending/pending and is priced from the venue's current price.
func (s *BookingService) Create(ctx context.Context, clientID, venueID string, req models.CreateBookingRequest) (*models.Booking, error) {
	client, err := s.identities.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, apperrors.NotFound("client not found")
	}
	if client.Role != models.RoleClient {
		return nil, apperrors.InvalidRole("only clients can book venues")
	}

	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	if venue == nil {
		return nil, apperrors.NotFound("venue not found")
	}
	if !venue.Bookable() {
		return nil, apperrors.InvalidState("venue is not open for bookings")
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}
	if date.Before(models.DateOf(s.now())) {
		return nil, apperrors.InvalidInput("booking date cannot be in the past")
	}
	if req.NumberOfGuests < 1 {
		return nil, apperrors.InvalidInput("number of guests must be at least 1")
	}
	if venue.CapacityMax > 0 && req.NumberOfGuests > venue.CapacityMax {
		return nil, apperrors.InvalidInput("venue holds at most %d guests", venue.CapacityMax)
	}

	quote := NewQuote(venue.Price)
	booking := &models.Booking{
		VenueID:          venue.ID,
		OwnerID:          venue.OwnerID,
		ClientID:         client.ID,
		EventDate:        date,
		NumberOfGuests:   req.NumberOfGuests,
		BaseAmount:       quote.Base,
		ServiceCharge:    quote.ServiceCharge,
		TotalAmount:      quote.Total,
		CautionFee:       venue.CautionFee,
		CautionFeeStatus: models.CautionFeePending,
		PaymentStatus:    models.PaymentStatusPending,
		Status:           models.BookingStatusPending,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	metrics.BookingTransitions.WithLabelValues("created").Inc()

	logger.WithContext(ctx).Info("Booking created",
		"booking_id", booking.ID,
		"venue_id", venue.ID,
		"total", booking.TotalAmount.String())

	s.publish(ctx, models.EventBookingCreated, models.BookingCreatedEvent{
		BookingEvent:   models.NewBookingEvent(booking, venue.Name, s.now()),
		NumberOfGuests: booking.NumberOfGuests,
	})
	s.recompute(ctx, booking.OwnerID)

	return booking, nil
}

// Accept moves a pending booking to accepted. Accepting an accepted booking
// is a no-op that emits nothing.
func (s *BookingService) Accept(ctx context.Context, ownerID, bookingID string) (*models.Booking, error) {
	booking, changed, err := s.decide(ctx, ownerID, bookingID, models.BookingStatusAccepted)
	if err != nil || !changed {
		return booking, err
	}

	s.publish(ctx, models.EventBookingAccepted, models.BookingAcceptedEvent{
		BookingEvent: models.NewBookingEvent(booking, s.venueName(ctx, booking.VenueID), s.now()),
	})
	s.recompute(ctx, booking.OwnerID)

	return booking, nil
}

// Reject moves a pending booking to rejected, which is terminal.
func (s *BookingService) Reject(ctx context.Context, ownerID, bookingID, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.InvalidInput("a reason is required to reject a booking")
	}

	booking, changed, err := s.decide(ctx, ownerID, bookingID, models.BookingStatusRejected)
	if err != nil || !changed {
		return booking, err
	}

	s.publish(ctx, models.EventBookingRejected, models.BookingRejectedEvent{
		BookingEvent: models.NewBookingEvent(booking, s.venueName(ctx, booking.VenueID), s.now()),
		Reason:       reason,
	})
	s.recompute(ctx, booking.OwnerID)

	return booking, nil
}

// decide applies the owner's decision to a pending booking. changed is false
// when the booking already carried the requested status.
func (s *BookingService) decide(ctx context.Context, ownerID, bookingID string, to models.BookingStatus) (*models.Booking, bool, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}
	if booking.OwnerID != ownerID {
		return nil, false, apperrors.InvalidRole("you can only manage bookings for your own venues")
	}

	client, err := s.identities.GetByID(ctx, booking.ClientID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, false, apperrors.NotFound("client not found")
	}

	if booking.Status == to {
		return booking, false, nil
	}
	if booking.Status != models.BookingStatusPending {
		return nil, false, apperrors.InvalidState("booking has already been %s", booking.Status)
	}

	ok, err := s.bookings.TransitionStatus(ctx, booking.ID, models.BookingStatusPending, to)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update booking status: %w", err)
	}

	current, err := s.load(ctx, booking.ID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		// Lost a race with a concurrent decision.
		if current.Status == to {
			return current, false, nil
		}
		return nil, false, apperrors.InvalidState("booking has already been %s", current.Status)
	}

	metrics.BookingTransitions.WithLabelValues(string(to)).Inc()
	logger.WithContext(ctx).Info("Booking status changed", "booking_id", booking.ID, "status", to)
	return current, true, nil
}

// InitiatePayment opens a gateway checkout for an accepted, unpaid booking.
// Nothing is stored unless the gateway call succeeds.
func (s *BookingService) InitiatePayment(ctx context.Context, clientID, bookingID string) (*models.InitiatePaymentResponse, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != clientID {
		return nil, apperrors.NotFound("booking not found")
	}
	if booking.Status != models.BookingStatusAccepted {
		return nil, apperrors.InvalidState("booking must be accepted before payment")
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperrors.InvalidState("booking has already been paid")
	}

	client, err := s.identities.GetByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if client == nil {
		return nil, apperrors.NotFound("client not found")
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	charge, err := s.gateway.InitializeCharge(gctx, external.ChargeRequest{
		Email:     client.Email,
		Amount:    booking.TotalAmount,
		Reference: s.newReference(),
		BookingID: booking.ID,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrUpstream) {
			return nil, err
		}
		return nil, apperrors.Upstream(err, "payment gateway unavailable")
	}

	ok, err := s.bookings.AttachPaymentReference(ctx, booking.ID, charge.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to store payment reference: %w", err)
	}
	if !ok {
		return nil, apperrors.InvalidState("booking can no longer be paid")
	}

	logger.WithContext(ctx).Info("Payment initiated", "booking_id", booking.ID, "reference", charge.Reference)

	return &models.InitiatePaymentResponse{
		BookingID:   booking.ID,
		Reference:   charge.Reference,
		CheckoutURL: charge.CheckoutURL,
	}, nil
}

// RecordPayment applies a gateway outcome. It is safe to call repeatedly for
// the same reference: an already paid booking is returned unchanged and no
// event is emitted twice.
func (s *BookingService) RecordPayment(ctx context.Context, bookingID, reference string, outcome models.PaymentOutcome) (*models.Booking, error) {
	if reference == "" {
		return nil, apperrors.InvalidInput("payment reference is required")
	}

	booking, err := s.resolvePayment(ctx, bookingID, reference)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusAccepted {
		return nil, apperrors.InvalidState("payment can only be recorded for an accepted booking")
	}

	log := logger.WithContext(ctx).With("booking_id", booking.ID, "reference", reference)

	if booking.PaymentStatus == models.PaymentStatusPaid {
		if !booking.HasReference(reference) {
			log.Warn("Payment reported for a booking already paid under another reference")
		}
		metrics.PaymentCallbacks.WithLabelValues(string(outcome), metrics.ResultNoop).Inc()
		return booking, nil
	}

	switch outcome {
	case models.PaymentSucceeded:
		ok, err := s.bookings.MarkPaid(ctx, booking.ID, reference)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				log.Error("Payment settled a duplicate booking, manual refund required", "error", err)
				return nil, err
			}
			return nil, fmt.Errorf("failed to mark booking paid: %w", err)
		}
		current, err := s.load(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			metrics.PaymentCallbacks.WithLabelValues(string(outcome), metrics.ResultNoop).Inc()
			return current, nil
		}

		metrics.PaymentCallbacks.WithLabelValues(string(outcome), metrics.ResultOK).Inc()
		log.Info("Payment recorded")

		s.publish(ctx, models.EventPaymentSucceeded, models.PaymentSucceededEvent{
			BookingEvent: models.NewBookingEvent(current, s.venueName(ctx, current.VenueID), s.now()),
			Reference:    reference,
		})
		s.recompute(ctx, current.OwnerID)
		return current, nil

	case models.PaymentFailed:
		if booking.PaymentReference != nil && !booking.HasReference(reference) {
			log.Info("Ignoring failure for a superseded payment attempt")
			metrics.PaymentCallbacks.WithLabelValues(string(outcome), metrics.ResultNoop).Inc()
			return booking, nil
		}
		if booking.PaymentStatus == models.PaymentStatusFailed {
			metrics.PaymentCallbacks.WithLabelValues(string(outcome), metrics.ResultNoop).Inc()
			return booking, nil
		}

		ok, err := s.bookings.MarkPaymentFailed(ctx, booking.ID, reference)
		if err != nil {
			return nil, fmt.Errorf("failed to mark payment failed: %w", err)
		}
		current, err := s.load(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			metrics.PaymentCallbacks.WithLabelValues(string(outcome), metrics.ResultNoop).Inc()
			return current, nil
		}

		metrics.PaymentCallbacks.WithLabelValues(string(outcome), metrics.ResultOK).Inc()
		log.Info("Payment failure recorded")

		s.publish(ctx, models.EventPaymentFailed, models.PaymentFailedEvent{
			BookingEvent: models.NewBookingEvent(current, s.venueName(ctx, current.VenueID), s.now()),
			Reference:    reference,
		})
		return current, nil

	default:
		return nil, apperrors.InvalidInput("unknown payment outcome %q", outcome)
	}
}

func (s *BookingService) resolvePayment(ctx context.Context, bookingID, reference string) (*models.Booking, error) {
	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}
	if booking == nil && bookingID != "" {
		booking, err = s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, fmt.Errorf("failed to get booking: %w", err)
		}
	}
	if booking == nil {
		return nil, apperrors.NotFound("no booking matches payment reference %s", reference)
	}
	return booking, nil
}

// settlementOutcome accepts a successful charge only when it matches the
// booking total in minor units and the configured currency. Anything else is
// recorded as a failed attempt.
func (s *BookingService) settlementOutcome(ctx context.Context, booking *models.Booking, reference string, amount int64, currency string) models.PaymentOutcome {
	expected := booking.TotalAmount.Minor()
	currencyOK := s.currency == "" || strings.EqualFold(currency, s.currency)
	if amount == expected && currencyOK {
		return models.PaymentSucceeded
	}

	logger.WithContext(ctx).Warn("Charge does not match booking total, recording as failed",
		"booking_id", booking.ID,
		"reference", reference,
		"amount", amount,
		"currency", currency,
		"expected_amount", expected,
		"expected_currency", s.currency)
	metrics.PaymentCallbacks.WithLabelValues(string(models.PaymentSucceeded), metrics.ResultMismatch).Inc()
	return models.PaymentFailed
}

// HandleGatewayEvent applies a webhook notification. Events other than charge
// outcomes are acknowledged and ignored.
func (s *BookingService) HandleGatewayEvent(ctx context.Context, payload models.PaymentWebhookPayload) error {
	var outcome models.PaymentOutcome
	switch payload.Event {
	case models.GatewayEventChargeSuccess:
		outcome = models.PaymentSucceeded
	case models.GatewayEventChargeFailed:
		outcome = models.PaymentFailed
	default:
		logger.WithContext(ctx).Debug("Ignoring gateway event", "event", payload.Event)
		return nil
	}

	if payload.Data == nil {
		return apperrors.InvalidInput("webhook data is required")
	}
	data := payload.Data

	if outcome == models.PaymentSucceeded && data.Reference != "" {
		booking, err := s.resolvePayment(ctx, data.Metadata.BookingID, data.Reference)
		if err != nil {
			metrics.PaymentCallbacks.WithLabelValues(string(outcome), metrics.ResultError).Inc()
			return err
		}
		outcome = s.settlementOutcome(ctx, booking, data.Reference, data.Amount, data.Currency)
	}

	_, err := s.RecordPayment(ctx, data.Metadata.BookingID, data.Reference, outcome)
	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues(string(outcome), metrics.ResultError).Inc()
	}
	return err
}

// VerifyPayment asks the gateway for the status of reference, as on the
// checkout redirect, and records the outcome.
func (s *BookingService) VerifyPayment(ctx context.Context, clientID, reference string) (*models.Booking, error) {
	if reference == "" {
		return nil, apperrors.InvalidInput("payment reference is required")
	}

	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}
	if booking == nil || booking.ClientID != clientID {
		return nil, apperrors.NotFound("booking not found")
	}
	if booking.PaymentStatus == models.PaymentStatusPaid {
		return booking, nil
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	tx, err := s.gateway.VerifyTransaction(gctx, reference)
	if err != nil {
		if errors.Is(err, apperrors.ErrUpstream) {
			return nil, err
		}
		return nil, apperrors.Upstream(err, "payment gateway unavailable")
	}

	switch {
	case tx.Succeeded():
		return s.RecordPayment(ctx, booking.ID, reference, s.settlementOutcome(ctx, booking, reference, tx.Amount, tx.Currency))
	case tx.Status == "failed" || tx.Status == "abandoned" || tx.Status == "reversed":
		return s.RecordPayment(ctx, booking.ID, reference, models.PaymentFailed)
	default:
		return booking, nil
	}
}

// ListForClient returns the client's pending and accepted bookings, newest first.
func (s *BookingService) ListForClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByClient(ctx, clientID, clientVisibleStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list client bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) ListForOwner(ctx context.Context, ownerID string) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	return bookings, nil
}

// Get returns a booking visible to its client, its venue owner or an admin.
func (s *BookingService) Get(ctx context.Context, principal models.Principal, bookingID string) (*models.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch {
	case principal.Role == models.RoleAdmin,
		principal.Role == models.RoleClient && booking.ClientID == principal.ID,
		principal.Role == models.RoleVenueOwner && booking.OwnerID == principal.ID:
		return booking, nil
	}
	return nil, apperrors.NotFound("booking not found")
}

// RefundCautionFee marks the caution fee of a settled booking as returned
// once the event date has passed.
func (s *BookingService) RefundCautionFee(ctx context.Context, ownerID, bookingID string) (*models.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, apperrors.InvalidRole("you can only manage bookings for your own venues")
	}
	if !booking.Settled() {
		return nil, apperrors.InvalidState("caution fee can only be refunded on a paid booking")
	}
	if booking.CautionFeeStatus == models.CautionFeeRefunded {
		return booking, nil
	}
	if !booking.EventDate.Before(models.DateOf(s.now())) {
		return nil, apperrors.InvalidState("caution fee can only be refunded after the event date")
	}

	if _, err := s.bookings.RefundCautionFee(ctx, booking.ID); err != nil {
		return nil, fmt.Errorf("failed to refund caution fee: %w", err)
	}
	return s.load(ctx, booking.ID)
}

func (s *BookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking not found")
	}
	return booking, nil
}

func (s *BookingService) venueName(ctx context.Context, venueID string) string {
	venue, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		logger.WithContext(ctx).Warn("Failed to load venue for event", "venue_id", venueID, "error", err)
		return ""
	}
	if venue == nil {
		return ""
	}
	return venue.Name
}

// publish hands an event to the publisher. Delivery problems never undo the
// transition that produced the event.
func (s *BookingService) publish(ctx context.Context, subject string, event interface{}) {
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event", "subject", subject, "error", err)
	}
}

func (s *BookingService) recompute(ctx context.Context, ownerID string) {
	if _, err := s.dashboards.Recompute(ctx, ownerID); err != nil {
		logger.WithContext(ctx).Error("Failed to recompute dashboard", "owner_id", ownerID, "error", err)
	}
}
