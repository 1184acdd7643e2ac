package service

import (
	"time"

	"venuehub/internal/external"
	"venuehub/internal/repository"
)

type Services struct {
	Auth          *AuthService
	Venues        *VenueService
	Bookings      *BookingService
	Dashboards    *DashboardService
	Notifications *NotificationService
}

// Dependencies are the infrastructure clients the services are built on.
// Index may be nil.
type Dependencies struct {
	Tokens         TokenIssuer
	OTPs           OTPStore
	Revoker        TokenRevoker
	Mailer         external.Mailer
	Gateway        PaymentGateway
	Publisher      EventPublisher
	Index          VenueIndex
	GatewayTimeout time.Duration
	Currency       string
	OTPTTL         time.Duration
}

func NewServices(repos *repository.Repositories, deps Dependencies) *Services {
	dashboardService := NewDashboardService(repos.Dashboards)
	venueService := NewVenueService(repos.Venues, deps.Index, deps.Publisher, dashboardService)
	bookingService := NewBookingService(repos.Bookings, repos.Venues, repos.Identities, deps.Gateway, deps.Publisher, dashboardService, deps.GatewayTimeout).
		WithCurrency(deps.Currency)
	authService := NewAuthService(repos.Identities, deps.Tokens, deps.OTPs, deps.Revoker, deps.Mailer, dashboardService, deps.OTPTTL)

	return &Services{
		Auth:          authService,
		Venues:        venueService,
		Bookings:      bookingService,
		Dashboards:    dashboardService,
		Notifications: NewNotificationService(repos.Notifications),
	}
}
