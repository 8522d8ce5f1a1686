package handler

import (
	"errors"
	"io"
	"net/http"

	"maestro/internal/service"
	"maestro/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives payment gateway deliveries. Signature
// verification happens before anything else touches state; a failed
// check is rejected, everything that verifies is acknowledged with 200
// so the gateway stops retrying.
type WebhookHandler struct {
	gateway  payment.Gateway
	payments *service.PaymentService
	log      *zap.Logger
}

func NewWebhookHandler(gateway payment.Gateway, payments *service.PaymentService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{gateway: gateway, payments: payments, log: log}
}

func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading payload failed"})
		return
	}
	event, err := h.gateway.VerifyEvent(body, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, payment.ErrNoWebhookSecret) {
		h.log.Error("webhook rejected: no secret configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}
	if errors.Is(err, payment.ErrBadSignature) {
		h.log.Warn("webhook rejected: bad signature", zap.String("ip", c.ClientIP()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.payments.ApplyEvent(event.Type, event.Data); err != nil {
		h.log.Error("applying webhook event failed",
			zap.String("type", event.Type), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
