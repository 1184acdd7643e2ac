package handlers

import (
	"venuehub/internal/middleware"
	"venuehub/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on r. authenticate resolves the bearer token
// into a principal.
func (h *Handlers) RegisterRoutes(r gin.IRouter, authenticate gin.HandlerFunc) {
	client := middleware.RequireRole(models.RoleClient)
	owner := middleware.RequireRole(models.RoleVenueOwner)
	admin := middleware.RequireRole(models.RoleAdmin)

	// Public
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/otp", h.RequestOTP)
		authGroup.POST("/otp/verify", h.VerifyOTP)
		authGroup.POST("/logout", authenticate, h.Logout)
	}
	r.GET("/venues", h.SearchVenues)
	r.GET("/venues/:venueId", h.GetVenue)
	r.POST("/payments/webhook", h.PaymentWebhook)

	// Authenticated
	api := r.Group("", authenticate)
	{
		api.GET("/me", h.Me)

		api.POST("/booking/:venueId", client, h.CreateBooking)
		api.GET("/client-bookings", client, h.ListClientBookings)
		api.POST("/bookings/:bookingId/pay", client, h.InitiatePayment)
		api.GET("/payments/verify", client, h.VerifyPayment)

		api.GET("/acceptbooking/:bookingId", owner, h.AcceptBooking)
		api.POST("/rejectbooking/:bookingId", owner, h.RejectBooking)
		api.GET("/owner-bookings", owner, h.ListOwnerBookings)
		api.POST("/bookings/:bookingId/caution-refund", owner, h.RefundCautionFee)

		api.GET("/bookings/:bookingId", h.GetBooking)

		api.GET("/dashboard", owner, h.GetDashboard)
		api.POST("/dashboard/recompute", owner, h.RecomputeDashboard)

		api.POST("/venues", owner, h.CreateVenue)
		api.PUT("/venues/:venueId", owner, h.UpdateVenue)
		api.DELETE("/venues/:venueId", owner, h.DeleteVenue)
		api.GET("/owner-venues", owner, h.ListOwnerVenues)

		api.GET("/notifications", h.ListNotifications)
		api.PATCH("/notifications/:id/read", h.MarkNotificationRead)
	}

	adminGroup := r.Group("/admin", authenticate, admin)
	{
		adminGroup.PATCH("/venues/:venueId/status", h.UpdateVenueStatus)
		adminGroup.POST("/venues/:venueId/feature", h.FeatureVenue)
	}
}
