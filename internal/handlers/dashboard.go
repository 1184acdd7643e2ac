package handlers

import (
	"venuehub/internal/response"

	"github.com/gin-gonic/gin"
)

// GetDashboard - GET /dashboard
func (h *Handlers) GetDashboard(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.dashboards.Get(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard retrieved", summary)
}

// RecomputeDashboard - POST /dashboard/recompute
func (h *Handlers) RecomputeDashboard(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	summary, err := h.dashboards.Recompute(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard recomputed", summary)
}
