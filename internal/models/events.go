package models

import (
	"time"

	"github.com/google/uuid"
)

// Domain event subjects
const (
	EventBookingCreated     = "booking.created"
	EventBookingAccepted    = "booking.accepted"
	EventBookingRejected    = "booking.rejected"
	EventPaymentSucceeded   = "payment.succeeded"
	EventPaymentFailed      = "payment.failed"
	EventVenueStatusChanged = "venue.status_changed"
)

// EventSubjects lists every subject the notification dispatcher consumes.
var EventSubjects = []string{
	EventBookingCreated,
	EventBookingAccepted,
	EventBookingRejected,
	EventPaymentSucceeded,
	EventPaymentFailed,
	EventVenueStatusChanged,
}

// BookingEvent carries the fields shared by every booking lifecycle event.
// EventID is fixed at publish time and survives redelivery.
type BookingEvent struct {
	EventID     string    `json:"event_id"`
	BookingID   string    `json:"booking_id"`
	VenueID     string    `json:"venue_id"`
	VenueName   string    `json:"venue_name"`
	OwnerID     string    `json:"owner_id"`
	ClientID    string    `json:"client_id"`
	EventDate   Date      `json:"event_date"`
	TotalAmount Money     `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// BookingCreatedEvent is published when a client requests a booking
type BookingCreatedEvent struct {
	BookingEvent
	NumberOfGuests int `json:"number_of_guests"`
}

// BookingAcceptedEvent is published once per pending → accepted transition
type BookingAcceptedEvent struct {
	BookingEvent
}

// BookingRejectedEvent is published once per pending → rejected transition
type BookingRejectedEvent struct {
	BookingEvent
	Reason string `json:"reason"`
}

// PaymentSucceededEvent is published when a booking becomes paid
type PaymentSucceededEvent struct {
	BookingEvent
	Reference string `json:"reference"`
}

// PaymentFailedEvent is published when the gateway reports a failed charge
type PaymentFailedEvent struct {
	BookingEvent
	Reference string `json:"reference"`
}

// VenueStatusChangedEvent is published when an admin moves a venue between statuses
type VenueStatusChangedEvent struct {
	EventID   string      `json:"event_id"`
	VenueID   string      `json:"venue_id"`
	VenueName string      `json:"venue_name"`
	OwnerID   string      `json:"owner_id"`
	Status    VenueStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewBookingEvent snapshots a booking and its venue name for publishing.
func NewBookingEvent(b *Booking, venueName string, now time.Time) BookingEvent {
	return BookingEvent{
		EventID:     NewEventID(),
		BookingID:   b.ID,
		VenueID:     b.VenueID,
		VenueName:   venueName,
		OwnerID:     b.OwnerID,
		ClientID:    b.ClientID,
		EventDate:   b.EventDate,
		TotalAmount: b.TotalAmount,
		Timestamp:   now,
	}
}

// NewEventID returns a fresh id for a domain event.
func NewEventID() string {
	return uuid.NewString()
}
