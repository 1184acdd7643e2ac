package service

import (
	"context"
	"time"

	"venuehub/internal/auth"
	"venuehub/internal/external"
	"venuehub/internal/models"
)

type IdentityStore interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, id string) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	MarkVerified(ctx context.Context, id string) error
	TouchLogin(ctx context.Context, id string) error
}

type IdentityReader interface {
	GetByID(ctx context.Context, id string) (*models.Identity, error)
}

type VenueStore interface {
	Create(ctx context.Context, venue *models.Venue) error
	GetByID(ctx context.Context, id string) (*models.Venue, error)
	Update(ctx context.Context, venue *models.Venue) error
	SoftDelete(ctx context.Context, id, ownerID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.VenueStatus) (bool, error)
	SetFeatured(ctx context.Context, id string, until time.Time) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Venue, error)
	Search(ctx context.Context, filter models.VenueFilter) ([]models.Venue, int64, error)
}

type VenueReader interface {
	GetByID(ctx context.Context, id string) (*models.Venue, error)
}

// BookingStore persists bookings. Transition methods are compare-and-swap
// updates and report false when the booking was not in the expected state.
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)
	ListByClient(ctx context.Context, clientID string, statuses []models.BookingStatus) ([]models.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Booking, error)
	TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error)
	AttachPaymentReference(ctx context.Context, id, reference string) (bool, error)
	MarkPaid(ctx context.Context, id, reference string) (bool, error)
	MarkPaymentFailed(ctx context.Context, id, reference string) (bool, error)
	RefundCautionFee(ctx context.Context, id string) (bool, error)
}

type DashboardStore interface {
	Stats(ctx context.Context, ownerID string, monthStart time.Time) (*models.DashboardStats, error)
	Provision(ctx context.Context, ownerID string) error
	Upsert(ctx context.Context, summary *models.DashboardSummary) error
	Get(ctx context.Context, ownerID string) (*models.DashboardSummary, error)
	ListOwnerIDs(ctx context.Context) ([]string, error)
}

type NotificationStore interface {
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID, id string) (bool, error)
}

// EventPublisher delivers domain events, over NATS or in-process.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event interface{}) error
}

type PaymentGateway interface {
	InitializeCharge(ctx context.Context, req external.ChargeRequest) (*external.ChargeResponse, error)
	VerifyTransaction(ctx context.Context, reference string) (*external.Transaction, error)
}

// VenueIndex is the optional full-text venue search index.
type VenueIndex interface {
	IndexVenue(ctx context.Context, venue *models.Venue) error
	DeleteVenue(ctx context.Context, id string) error
	Search(ctx context.Context, filter models.VenueFilter) ([]models.Venue, int64, error)
}

// DashboardRecomputer refreshes an owner's dashboard after a state change.
type DashboardRecomputer interface {
	Recompute(ctx context.Context, ownerID string) (*models.DashboardSummary, error)
}

type OTPStore interface {
	StoreOTP(ctx context.Context, email, code string, ttl time.Duration) error
	ConsumeOTP(ctx context.Context, email, code string) (bool, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type TokenIssuer interface {
	Issue(identity *models.Identity) (string, *auth.Claims, error)
	Remaining(claims *auth.Claims) time.Duration
}
