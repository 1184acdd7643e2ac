package handlers

import (
	"bytes"
	"io"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/logger"
	"venuehub/internal/models"
	"venuehub/internal/response"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Paystack-Signature"

// maxWebhookBody bounds the webhook body read into memory.
const maxWebhookBody = 1 << 20

// InitiatePayment - POST /bookings/:bookingId/pay
func (h *Handlers) InitiatePayment(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	checkout, err := h.bookings.InitiatePayment(c.Request.Context(), p.ID, c.Param("bookingId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment initialized", checkout)
}

// VerifyPayment - GET /payments/verify?reference=
// Target of the gateway checkout redirect.
func (h *Handlers) VerifyPayment(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}

	booking, err := h.bookings.VerifyPayment(c.Request.Context(), p.ID, reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment verified", booking)
}

// PaymentWebhook - POST /payments/webhook
// Receives charge notifications from the payment gateway.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, err)
		return
	}

	if h.webhookVerifier != nil && !h.webhookVerifier.VerifySignature(body, c.GetHeader(signatureHeader)) {
		logger.WithContext(c.Request.Context()).Warn("Rejected webhook with invalid signature", "client_ip", c.ClientIP())
		response.Error(c, apperrors.New(apperrors.ErrUnauthorized, "invalid webhook signature"))
		return
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	var payload models.PaymentWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, err)
		return
	}

	if err := h.bookings.HandleGatewayEvent(c.Request.Context(), payload); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Webhook processed", nil)
}
