package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/veldshoe/storefront_api/internal/service"
	"github.com/veldshoe/storefront_api/internal/utils"
)

// Webhook request headers set by the commerce backend.
const (
	headerSignature = "X-Storefront-Signature"
	headerTopic     = "X-Storefront-Topic"
)

// WebhookHandler handles incoming product webhooks from the commerce
// backend.
type WebhookHandler struct {
	syncService   *service.SyncService
	webhookSecret string
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(syncService *service.SyncService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{syncService: syncService, webhookSecret: webhookSecret}
}

// HandleProductEvent handles POST /webhook/commerce. The HMAC-SHA256
// signature over the raw body must match the header; unsigned or
// mismatched requests are rejected with no effect.
func (h *WebhookHandler) HandleProductEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.Error(c, 400, "VALIDATION_FAILED", "Invalid body")
		return
	}

	signature := c.GetHeader(headerSignature)
	if signature == "" || !utils.VerifyPayload(body, signature, h.webhookSecret) {
		utils.Error(c, 401, "INVALID_SIGNATURE", "Webhook signature missing or mismatched")
		return
	}

	topic := c.GetHeader(headerTopic)
	if err := h.syncService.ProcessWebhook(c.Request.Context(), topic, body); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to process commerce webhook")
		utils.Error(c, 400, "WEBHOOK_FAILED", "Processing failed")
		return
	}

	utils.Success(c, 200, "Webhook processed", gin.H{"received": true})
}
