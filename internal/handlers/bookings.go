package handlers

import (
	"venuehub/internal/models"
	"venuehub/internal/response"

	"github.com/gin-gonic/gin"
)

// CreateBooking - POST /booking/:venueId
func (h *Handlers) CreateBooking(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), p.ID, c.Param("venueId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Booking request sent to the venue owner", booking)
}

// AcceptBooking - GET /acceptbooking/:bookingId
func (h *Handlers) AcceptBooking(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	booking, err := h.bookings.Accept(c.Request.Context(), p.ID, c.Param("bookingId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking accepted", booking)
}

// RejectBooking - POST /rejectbooking/:bookingId
func (h *Handlers) RejectBooking(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	booking, err := h.bookings.Reject(c.Request.Context(), p.ID, c.Param("bookingId"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking rejected", booking)
}

// ListClientBookings - GET /client-bookings
func (h *Handlers) ListClientBookings(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	bookings, err := h.bookings.ListForClient(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bookings retrieved", nonNil(bookings))
}

// ListOwnerBookings - GET /owner-bookings
func (h *Handlers) ListOwnerBookings(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	bookings, err := h.bookings.ListForOwner(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bookings retrieved", nonNil(bookings))
}

// GetBooking - GET /bookings/:bookingId
func (h *Handlers) GetBooking(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	booking, err := h.bookings.Get(c.Request.Context(), p, c.Param("bookingId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Booking retrieved", booking)
}

// RefundCautionFee - POST /bookings/:bookingId/caution-refund
func (h *Handlers) RefundCautionFee(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	booking, err := h.bookings.RefundCautionFee(c.Request.Context(), p.ID, c.Param("bookingId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Caution fee refunded", booking)
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
