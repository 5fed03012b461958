package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veldshoe/storefront_api/internal/utils"
	"github.com/veldshoe/storefront_api/pkg/commerce"
)

// HealthHandler reports service and commerce-backend health.
type HealthHandler struct {
	commerceClient *commerce.Client
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(commerceClient *commerce.Client) *HealthHandler {
	return &HealthHandler{commerceClient: commerceClient}
}

// GetHealth handles GET /v1/health.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	backend := "ok"
	if err := h.commerceClient.Ping(ctx); err != nil {
		backend = "unreachable"
	}

	utils.Success(c, 200, "Health check", gin.H{
		"status":  "ok",
		"backend": backend,
	})
}
