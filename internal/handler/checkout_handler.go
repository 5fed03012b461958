package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/veldshoe/storefront_api/internal/middleware"
	"github.com/veldshoe/storefront_api/internal/models"
	"github.com/veldshoe/storefront_api/internal/service"
	"github.com/veldshoe/storefront_api/internal/utils"
)

// CheckoutHandler handles the checkout endpoint.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler constructs a CheckoutHandler.
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout handles POST /v1/checkout. Payment failure and order-creation
// failure are reported with distinct codes: only the latter means a charge
// was captured without an order.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_FAILED", "Invalid checkout payload")
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), middleware.GetSessionID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrValidation):
			utils.Error(c, 400, "VALIDATION_FAILED", err.Error())
		case errors.Is(err, utils.ErrCartEmpty):
			utils.Error(c, 400, "CART_EMPTY", "Cart is empty")
		case errors.Is(err, utils.ErrPaymentFailed):
			utils.Error(c, 402, "PAYMENT_FAILED", "Payment was declined")
		case errors.Is(err, utils.ErrOrderPending):
			log.Error().Err(err).Msg("order pending after captured charge")
			utils.Error(c, 502, "ORDER_PENDING", "Payment captured but order creation failed; support has been notified")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Checkout failed")
		}
		return
	}

	utils.Success(c, 201, "Order created successfully", result)
}
