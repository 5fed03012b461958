package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/veldshoe/storefront_api/internal/middleware"
	"github.com/veldshoe/storefront_api/internal/repository"
	"github.com/veldshoe/storefront_api/internal/service"
	"github.com/veldshoe/storefront_api/internal/utils"
	"github.com/veldshoe/storefront_api/pkg/commerce"
)

// CatalogHandler handles catalog browsing, search, and detail endpoints.
type CatalogHandler struct {
	catalogService *service.CatalogService
	commerceClient *commerce.Client
	mirrorRepo     *repository.MirrorRepository
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService, commerceClient *commerce.Client, mirrorRepo *repository.MirrorRepository) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		commerceClient: commerceClient,
		mirrorRepo:     mirrorRepo,
	}
}

// GetProducts handles GET /v1/catalog/products. Sort and category params
// select the session's accumulation; filter params select the visible
// slice and facets.
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)

	params := parseBrowseParams(c)
	sel := parseFilterSelection(c)

	view, err := h.catalogService.Browse(c.Request.Context(), sessionID, params, sel)
	if err != nil {
		// Partial results already accumulated are still returned so the
		// client can render them and offer a retry.
		utils.Error(c, 502, "BACKEND_FAILED", "Failed to fetch products from catalog backend")
		return
	}

	utils.Success(c, 200, "Products retrieved successfully", view)
}

// LoadMore handles POST /v1/catalog/products/more.
func (h *CatalogHandler) LoadMore(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	sel := parseFilterSelection(c)

	view, err := h.catalogService.LoadMore(c.Request.Context(), sessionID, sel)
	if err != nil {
		if errors.Is(err, utils.ErrSessionNotFound) {
			utils.Error(c, 404, "SESSION_NOT_FOUND", "No catalog session; browse first")
			return
		}
		utils.Error(c, 502, "BACKEND_FAILED", "Failed to fetch more products")
		return
	}

	utils.Success(c, 200, "More products retrieved", view)
}

// GetCategories handles GET /v1/catalog/categories.
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	cats, err := h.commerceClient.GetCategories(c.Request.Context())
	if err != nil {
		utils.Error(c, 502, "BACKEND_FAILED", "Failed to fetch categories")
		return
	}
	utils.Success(c, 200, "Categories retrieved successfully", gin.H{"categories": cats})
}

// Search handles GET /v1/catalog/search?q=term. Results are capped by the
// backend query; debouncing is a client concern.
func (h *CatalogHandler) Search(c *gin.Context) {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		utils.Error(c, 400, "VALIDATION_FAILED", "Query parameter q is required")
		return
	}

	nodes, err := h.commerceClient.SearchProducts(c.Request.Context(), term)
	if err != nil {
		utils.Error(c, 502, "BACKEND_FAILED", "Search failed")
		return
	}
	utils.Success(c, 200, "Search completed", gin.H{"results": nodes})
}

// GetProductBySlug handles GET /v1/catalog/products/:slug, served from the
// local mirror.
func (h *CatalogHandler) GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")

	product, err := h.mirrorRepo.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, utils.ErrProductNotFound) {
			utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Unknown product slug")
			return
		}
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to load product")
		return
	}
	utils.Success(c, 200, "Product retrieved successfully", product)
}

// parseBrowseParams reads sort/category query parameters with defaults of
// DATE/DESC and no category restriction.
func parseBrowseParams(c *gin.Context) service.BrowseParams {
	field := commerce.OrderField(strings.ToUpper(c.DefaultQuery("sort", "DATE")))
	switch field {
	case commerce.OrderFieldDate, commerce.OrderFieldPrice, commerce.OrderFieldRating:
	default:
		field = commerce.OrderFieldDate
	}

	order := commerce.SortOrder(strings.ToUpper(c.DefaultQuery("order", "DESC")))
	if order != commerce.SortAsc && order != commerce.SortDesc {
		order = commerce.SortDesc
	}

	return service.BrowseParams{
		OrderField: field,
		Order:      order,
		Categories: splitParam(c.Query("categories")),
	}
}

// parseFilterSelection reads facet filter query parameters.
func parseFilterSelection(c *gin.Context) service.FilterSelection {
	sel := service.FilterSelection{
		Categories: splitParam(c.Query("categories")),
		Colors:     splitParam(c.Query("colors")),
		Sizes:      splitParam(c.Query("sizes")),
	}
	if v := c.Query("min_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			sel.MinPrice = &d
		}
	}
	if v := c.Query("max_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			sel.MaxPrice = &d
		}
	}
	return sel
}

// splitParam splits a comma-separated query value, dropping empties.
func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
