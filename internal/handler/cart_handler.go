package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/veldshoe/storefront_api/internal/middleware"
	"github.com/veldshoe/storefront_api/internal/models"
	"github.com/veldshoe/storefront_api/internal/service"
	"github.com/veldshoe/storefront_api/internal/utils"
)

// CartHandler handles cart endpoints.
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// addItemRequest is the payload for adding a cart line.
type addItemRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	VariationID   string `json:"variationId"`
	Name          string `json:"name" binding:"required"`
	VariationName string `json:"variationName"`
	Price         string `json:"price" binding:"required"`
	Quantity      int    `json:"qty"`
	Image         string `json:"image"`
}

// updateQuantityRequest is the payload for changing a line's quantity.
type updateQuantityRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	VariationName string `json:"variationName"`
	Quantity      int    `json:"qty"`
}

// GetCart handles GET /v1/cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	items, err := h.cartService.Get(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to load cart")
		return
	}
	respondCart(c, items)
}

// AddItem handles POST /v1/cart/items.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_FAILED", "productId, name, and price are required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		utils.Error(c, 400, "VALIDATION_FAILED", "price must be a non-negative decimal")
		return
	}

	items, err := h.cartService.Add(c.Request.Context(), middleware.GetSessionID(c), models.CartItem{
		ProductID:     req.ProductID,
		VariationID:   req.VariationID,
		Name:          req.Name,
		VariationName: req.VariationName,
		Price:         price,
		Quantity:      req.Quantity,
		Image:         req.Image,
	})
	if err != nil {
		if errors.Is(err, utils.ErrInvalidQuantity) {
			utils.Error(c, 400, "INVALID_QUANTITY", "Quantity must be at least 1")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to add item")
		return
	}
	respondCart(c, items)
}

// UpdateQuantity handles PUT /v1/cart/items.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "VALIDATION_FAILED", "productId is required")
		return
	}

	items, err := h.cartService.SetQuantity(c.Request.Context(), middleware.GetSessionID(c), req.ProductID, req.VariationName, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidQuantity):
			utils.Error(c, 400, "INVALID_QUANTITY", "Quantity must not be negative")
		case errors.Is(err, utils.ErrItemNotFound):
			utils.Error(c, 404, "ITEM_NOT_FOUND", "No such cart line")
		default:
			utils.Error(c, 500, "INTERNAL_ERROR", "Failed to update quantity")
		}
		return
	}
	respondCart(c, items)
}

// RemoveItem handles DELETE /v1/cart/items.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID := c.Query("productId")
	if productID == "" {
		utils.Error(c, 400, "VALIDATION_FAILED", "productId is required")
		return
	}

	items, err := h.cartService.Remove(c.Request.Context(), middleware.GetSessionID(c), productID, c.Query("variationName"))
	if err != nil {
		if errors.Is(err, utils.ErrItemNotFound) {
			utils.Error(c, 404, "ITEM_NOT_FOUND", "No such cart line")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to remove item")
		return
	}
	respondCart(c, items)
}

// ClearCart handles DELETE /v1/cart.
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to clear cart")
		return
	}
	respondCart(c, []models.CartItem{})
}

func respondCart(c *gin.Context, items []models.CartItem) {
	utils.Success(c, 200, "Cart retrieved successfully", gin.H{
		"items": items,
		"total": models.CartTotal(items).StringFixed(2),
	})
}
