package handlers

import (
	"venuehub/internal/models"
	"venuehub/internal/response"

	"github.com/gin-gonic/gin"
)

// SearchVenues - GET /venues
// Public listing of verified venues, featured first.
func (h *Handlers) SearchVenues(c *gin.Context) {
	var filter models.VenueFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, err)
		return
	}

	result, err := h.venues.Search(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	result.Venues = nonNil(result.Venues)

	response.OK(c, "Venues retrieved", result)
}

// GetVenue - GET /venues/:venueId
func (h *Handlers) GetVenue(c *gin.Context) {
	venue, err := h.venues.Get(c.Request.Context(), c.Param("venueId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Venue retrieved", venue)
}

// CreateVenue - POST /venues
func (h *Handlers) CreateVenue(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.VenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	venue, err := h.venues.Create(c.Request.Context(), p.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Venue created and awaiting verification", venue)
}

// UpdateVenue - PUT /venues/:venueId
func (h *Handlers) UpdateVenue(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.VenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	venue, err := h.venues.Update(c.Request.Context(), p.ID, c.Param("venueId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Venue updated", venue)
}

// DeleteVenue - DELETE /venues/:venueId
func (h *Handlers) DeleteVenue(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.venues.Delete(c.Request.Context(), p.ID, c.Param("venueId")); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Venue deleted", nil)
}

// ListOwnerVenues - GET /owner-venues
func (h *Handlers) ListOwnerVenues(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	venues, err := h.venues.ListForOwner(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Venues retrieved", nonNil(venues))
}
