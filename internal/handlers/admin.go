package handlers

import (
	"venuehub/internal/models"
	"venuehub/internal/response"

	"github.com/gin-gonic/gin"
)

// Admin moderation handlers

// UpdateVenueStatus - PATCH /admin/venues/:venueId/status
func (h *Handlers) UpdateVenueStatus(c *gin.Context) {
	var req models.UpdateVenueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	venue, err := h.venues.SetStatus(c.Request.Context(), c.Param("venueId"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Venue status updated", venue)
}

// FeatureVenue - POST /admin/venues/:venueId/feature
func (h *Handlers) FeatureVenue(c *gin.Context) {
	var req models.FeatureVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	venue, err := h.venues.Feature(c.Request.Context(), c.Param("venueId"), req.Days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Venue featured", venue)
}
