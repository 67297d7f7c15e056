package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roombook/backend/internal/application/billing"
	"github.com/roombook/backend/internal/infrastructure/logger"
	"github.com/roombook/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	// defaultWebhookPayload bounds the body when no limit is configured
	defaultWebhookPayload = 65536
)

// WebhookProcessor verifies and applies provider deliveries
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (*billing.WebhookResult, error)
}

// WebhookAck is returned to Stripe for every accepted delivery
type WebhookAck struct {
	Received  bool   `json:"received"`
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// StripeWebhookHandler handles POST /webhooks/stripe. It is called by Stripe
// and authenticated by the signature header only.
type StripeWebhookHandler struct {
	BaseHandler
	processor  WebhookProcessor
	maxPayload int64
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(processor WebhookProcessor, maxPayload int64) *StripeWebhookHandler {
	if maxPayload <= 0 {
		maxPayload = defaultWebhookPayload
	}
	return &StripeWebhookHandler{processor: processor, maxPayload: maxPayload}
}

// Handle verifies the raw body and applies the event. Failed processing is
// answered with a 500 so that Stripe delivers the event again.
// @Summary      Receive a Stripe event
// @Description  Stripe webhook endpoint. Authenticated by the Stripe-Signature header; failed processing answers 500 so Stripe retries.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature header string true "Stripe signature"
// @Param        payload body object true "Raw Stripe event"
// @Success      200 {object} dto.Response{data=WebhookAck}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /webhooks/stripe [post]
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	// The signature covers the exact bytes, so the body is read raw
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxPayload+1))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}
	if int64(len(payload)) > h.maxPayload {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeTooLarge, "Payload too large")
		return
	}

	signature := c.GetHeader(stripeSignatureHeader)
	if signature == "" {
		h.Error(c, http.StatusBadRequest, billing.ErrInvalidSignature.Code, "Missing Stripe-Signature header")
		return
	}

	result, err := h.processor.ProcessWebhook(c.Request.Context(), payload, signature)
	switch {
	case errors.Is(err, billing.ErrBillingDisabled):
		h.HandleError(c, err)
		return
	case err != nil && result == nil:
		h.Error(c, http.StatusBadRequest, billing.ErrInvalidSignature.Code, billing.ErrInvalidSignature.Message)
		return
	case err != nil:
		logger.GetGinLogger(c).Error("Webhook processing failed",
			zap.String("event_id", result.EventID),
			zap.String("event_type", result.EventType),
			zap.Error(err),
		)
		h.InternalError(c)
		return
	}

	h.Success(c, WebhookAck{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Processed: result.Processed,
		Message:   result.Message,
	})
}
