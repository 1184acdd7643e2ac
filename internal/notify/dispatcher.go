package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"venuehub/internal/external"
	"venuehub/internal/logger"
	"venuehub/internal/metrics"
	"venuehub/internal/models"

	"github.com/google/uuid"
)

type IdentityLookup interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}

// NotificationWriter stores notifications. Create reports false when the id
// is already taken.
type NotificationWriter interface {
	Create(ctx context.Context, n *models.Notification) (bool, error)
}

// Dispatcher turns domain events into notification records and emails.
// Records are required; emails are best-effort.
type Dispatcher struct {
	identities    IdentityLookup
	notifications NotificationWriter
	mailer        external.Mailer
	appBaseURL    string
}

func NewDispatcher(identities IdentityLookup, notifications NotificationWriter, mailer external.Mailer, appBaseURL string) *Dispatcher {
	return &Dispatcher{
		identities:    identities,
		notifications: notifications,
		mailer:        mailer,
		appBaseURL:    appBaseURL,
	}
}

// Handle decodes payload according to subject and delivers it. Unknown
// subjects are ignored.
func (d *Dispatcher) Handle(ctx context.Context, subject string, payload []byte) error {
	err := d.handle(ctx, subject, payload)
	metrics.NotificationsDispatched.WithLabelValues(subject, metrics.ResultOf(err)).Inc()
	return err
}

func (d *Dispatcher) handle(ctx context.Context, subject string, payload []byte) error {
	switch subject {
	case models.EventBookingCreated:
		var ev models.BookingCreatedEvent
		if err := decode(subject, payload, &ev); err != nil {
			return err
		}
		return d.deliver(ctx, delivery{
			eventID:     ev.EventID,
			recipientID: ev.OwnerID,
			role:        models.RoleVenueOwner,
			venueID:     ev.VenueID,
			bookingID:   ev.BookingID,
			title:       models.TitleBookingRequest,
			dot:         models.DotYellow,
			message:     fmt.Sprintf("You have a new booking request for %s on %s for %d guests.", ev.VenueName, ev.EventDate, ev.NumberOfGuests),
			template:    "booking_request",
			data:        ev,
		})

	case models.EventBookingAccepted:
		var ev models.BookingAcceptedEvent
		if err := decode(subject, payload, &ev); err != nil {
			return err
		}
		return d.deliver(ctx, delivery{
			eventID:     ev.EventID,
			recipientID: ev.ClientID,
			role:        models.RoleClient,
			venueID:     ev.VenueID,
			bookingID:   ev.BookingID,
			title:       models.TitleBookingAccepted,
			dot:         models.DotGreen,
			message:     fmt.Sprintf("Your booking for %s on %s has been accepted. Complete payment of %s to confirm it.", ev.VenueName, ev.EventDate, ev.TotalAmount),
			template:    "booking_accepted",
			data: struct {
				models.BookingAcceptedEvent
				PaymentURL string
			}{ev, d.paymentURL(ev.BookingID)},
		})

	case models.EventBookingRejected:
		var ev models.BookingRejectedEvent
		if err := decode(subject, payload, &ev); err != nil {
			return err
		}
		return d.deliver(ctx, delivery{
			eventID:     ev.EventID,
			recipientID: ev.ClientID,
			role:        models.RoleClient,
			venueID:     ev.VenueID,
			bookingID:   ev.BookingID,
			title:       models.TitleBookingRejected,
			dot:         models.DotRed,
			message:     fmt.Sprintf("Your booking for %s on %s was declined: %s", ev.VenueName, ev.EventDate, ev.Reason),
			template:    "booking_rejected",
			data:        ev,
		})

	case models.EventPaymentSucceeded:
		var ev models.PaymentSucceededEvent
		if err := decode(subject, payload, &ev); err != nil {
			return err
		}
		if err := d.deliver(ctx, delivery{
			eventID:     ev.EventID,
			recipientID: ev.ClientID,
			role:        models.RoleClient,
			venueID:     ev.VenueID,
			bookingID:   ev.BookingID,
			title:       models.TitlePaymentSuccessful,
			dot:         models.DotGreen,
			message:     fmt.Sprintf("Payment of %s for %s on %s was successful. Your booking is confirmed.", ev.TotalAmount, ev.VenueName, ev.EventDate),
			template:    "payment_succeeded",
			data:        ev,
		}); err != nil {
			return err
		}
		return d.deliver(ctx, delivery{
			eventID:     ev.EventID,
			recipientID: ev.OwnerID,
			role:        models.RoleVenueOwner,
			venueID:     ev.VenueID,
			bookingID:   ev.BookingID,
			title:       models.TitlePaymentReceived,
			dot:         models.DotGreen,
			message:     fmt.Sprintf("Payment of %s was received for %s on %s.", ev.TotalAmount, ev.VenueName, ev.EventDate),
		})

	case models.EventPaymentFailed:
		var ev models.PaymentFailedEvent
		if err := decode(subject, payload, &ev); err != nil {
			return err
		}
		return d.deliver(ctx, delivery{
			eventID:     ev.EventID,
			recipientID: ev.ClientID,
			role:        models.RoleClient,
			venueID:     ev.VenueID,
			bookingID:   ev.BookingID,
			title:       models.TitlePaymentFailed,
			dot:         models.DotRed,
			message:     fmt.Sprintf("Payment for %s on %s failed. You can retry from your bookings page.", ev.VenueName, ev.EventDate),
			template:    "payment_failed",
			data: struct {
				models.PaymentFailedEvent
				PaymentURL string
			}{ev, d.paymentURL(ev.BookingID)},
		})

	case models.EventVenueStatusChanged:
		var ev models.VenueStatusChangedEvent
		if err := decode(subject, payload, &ev); err != nil {
			return err
		}
		return d.deliver(ctx, delivery{
			eventID:     ev.EventID,
			recipientID: ev.OwnerID,
			role:        models.RoleVenueOwner,
			venueID:     ev.VenueID,
			title:       models.TitleVenueStatus,
			dot:         models.DotBlue,
			message:     fmt.Sprintf("The status of %s is now %s.", ev.VenueName, ev.Status),
		})

	default:
		logger.WithContext(ctx).Warn("Ignoring event with unknown subject", "subject", subject)
		return nil
	}
}

type delivery struct {
	eventID     string
	recipientID string
	role        models.Role
	venueID     string
	bookingID   string
	title       models.NotificationTitle
	dot         models.NotificationDot
	message     string
	// template names the email to send; empty means notification only.
	template string
	data     any
}

func (d *Dispatcher) deliver(ctx context.Context, dl delivery) error {
	n := &models.Notification{
		ID:            notificationID(dl),
		RecipientID:   dl.recipientID,
		RecipientRole: dl.role,
		VenueID:       optional(dl.venueID),
		BookingID:     optional(dl.bookingID),
		Title:         dl.title,
		Message:       dl.message,
		Dot:           dl.dot,
	}
	created, err := d.notifications.Create(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	if !created {
		logger.WithContext(ctx).Debug("Notification already delivered",
			"notification_id", n.ID, "event_id", dl.eventID)
		return nil
	}

	if dl.template != "" {
		d.sendEmail(ctx, dl)
	}
	return nil
}

var notificationNamespace = uuid.MustParse("5b0c1f0e-8f3a-4c52-9d7e-2a61b4e0c9d3")

// notificationID is stable for a given event and recipient, so a redelivered
// event maps onto the notification it already produced. Events published
// without an id get a random one.
func notificationID(dl delivery) string {
	if dl.eventID == "" {
		return uuid.NewString()
	}
	key := dl.eventID + "/" + dl.recipientID + "/" + string(dl.title)
	return uuid.NewSHA1(notificationNamespace, []byte(key)).String()
}

func (d *Dispatcher) sendEmail(ctx context.Context, dl delivery) {
	log := logger.WithContext(ctx).With(
		slog.String("recipient_id", dl.recipientID),
		slog.String("template", dl.template))

	recipient, err := d.identities.GetByID(ctx, dl.recipientID)
	if err != nil {
		log.Error("Failed to load email recipient", "error", err)
		return
	}
	if recipient == nil {
		log.Warn("Email recipient not found")
		return
	}

	msg, err := render(dl.template, recipient, dl.data)
	if err != nil {
		log.Error("Failed to render email", "error", err)
		return
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		log.Error("Failed to send email", "error", err)
	}
}

func (d *Dispatcher) paymentURL(bookingID string) string {
	return d.appBaseURL + "/bookings/" + bookingID + "/pay"
}

// ErrMalformedEvent marks payloads that can never be delivered.
var ErrMalformedEvent = errors.New("malformed event")

func decode(subject string, payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: failed to decode %s event: %v", ErrMalformedEvent, subject, err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
