package handlers

import (
	"context"

	"venuehub/internal/auth"
	apperrors "venuehub/internal/errors"
	"venuehub/internal/middleware"
	"venuehub/internal/models"
	"venuehub/internal/service"

	"github.com/gin-gonic/gin"
)

// The handlers depend on these narrow views of the services so they can be
// exercised with fakes.

type BookingAPI interface {
	Create(ctx context.Context, clientID, venueID string, req models.CreateBookingRequest) (*models.Booking, error)
	Accept(ctx context.Context, ownerID, bookingID string) (*models.Booking, error)
	Reject(ctx context.Context, ownerID, bookingID, reason string) (*models.Booking, error)
	InitiatePayment(ctx context.Context, clientID, bookingID string) (*models.InitiatePaymentResponse, error)
	HandleGatewayEvent(ctx context.Context, payload models.PaymentWebhookPayload) error
	VerifyPayment(ctx context.Context, clientID, reference string) (*models.Booking, error)
	ListForClient(ctx context.Context, clientID string) ([]models.Booking, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Booking, error)
	Get(ctx context.Context, principal models.Principal, bookingID string) (*models.Booking, error)
	RefundCautionFee(ctx context.Context, ownerID, bookingID string) (*models.Booking, error)
}

type DashboardAPI interface {
	Get(ctx context.Context, ownerID string) (*models.DashboardSummary, error)
	Recompute(ctx context.Context, ownerID string) (*models.DashboardSummary, error)
}

type VenueAPI interface {
	Create(ctx context.Context, ownerID string, req models.VenueRequest) (*models.Venue, error)
	Update(ctx context.Context, ownerID, venueID string, req models.VenueRequest) (*models.Venue, error)
	Delete(ctx context.Context, ownerID, venueID string) error
	Get(ctx context.Context, venueID string) (*models.Venue, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Venue, error)
	Search(ctx context.Context, filter models.VenueFilter) (*models.VenueListResponse, error)
	SetStatus(ctx context.Context, venueID string, status models.VenueStatus) (*models.Venue, error)
	Feature(ctx context.Context, venueID string, days int) (*models.Venue, error)
}

type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Identity, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.Identity, error)
	Me(ctx context.Context, id string) (*models.Identity, error)
}

type NotificationAPI interface {
	List(ctx context.Context, recipientID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID, id string) error
}

// SignatureVerifier checks the gateway signature of a webhook body
type SignatureVerifier interface {
	VerifySignature(body []byte, signature string) bool
}

type Handlers struct {
	bookings      BookingAPI
	dashboards    DashboardAPI
	venues        VenueAPI
	auth          AuthAPI
	notifications NotificationAPI
	// webhookVerifier is nil when no gateway secret is configured.
	webhookVerifier SignatureVerifier
}

func NewHandlers(services *service.Services, webhookVerifier SignatureVerifier) *Handlers {
	return &Handlers{
		bookings:        services.Bookings,
		dashboards:      services.Dashboards,
		venues:          services.Venues,
		auth:            services.Auth,
		notifications:   services.Notifications,
		webhookVerifier: webhookVerifier,
	}
}

// principal returns the caller resolved by the auth middleware.
func principal(c *gin.Context) (models.Principal, error) {
	p, ok := middleware.PrincipalFromContext(c.Request.Context())
	if !ok {
		return models.Principal{}, apperrors.New(apperrors.ErrUnauthorized, "missing bearer token")
	}
	return p, nil
}
