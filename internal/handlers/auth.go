package handlers

import (
	apperrors "venuehub/internal/errors"
	"venuehub/internal/middleware"
	"venuehub/internal/models"
	"venuehub/internal/response"

	"github.com/gin-gonic/gin"
)

// Register - POST /auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	identity, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Account created, check your email for a verification code", identity)
}

// Login - POST /auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Logged in", session)
}

// Logout - POST /auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c.Request.Context())
	if !ok {
		response.Error(c, apperrors.New(apperrors.ErrUnauthorized, "missing bearer token"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Logged out", nil)
}

// RequestOTP - POST /auth/otp
func (h *Handlers) RequestOTP(c *gin.Context) {
	var req models.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	if err := h.auth.RequestOTP(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Verification code sent", nil)
}

// VerifyOTP - POST /auth/otp/verify
func (h *Handlers) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	identity, err := h.auth.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Account verified", identity)
}

// Me - GET /me
func (h *Handlers) Me(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	identity, err := h.auth.Me(c.Request.Context(), p.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Account retrieved", identity)
}
