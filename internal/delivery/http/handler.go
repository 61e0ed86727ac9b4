package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comparaqp/backend/internal/domain"
	"github.com/comparaqp/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog   *usecase.CatalogService
	cart      *usecase.CartService
	analytics *usecase.AnalyticsService
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog *usecase.CatalogService, cart *usecase.CartService, analytics *usecase.AnalyticsService) *Handler {
	return &Handler{
		catalog:   catalog,
		cart:      cart,
		analytics: analytics,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "comparaqp-backend",
	})
}

// SearchProducts handles GET /products/search?q=...&category_id=...
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' must be at least 2 characters"})
		return
	}

	var categoryID int64
	if raw := c.Query("category_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category_id must be a positive integer"})
			return
		}
		categoryID = parsed
	}

	products, err := h.catalog.SearchProducts(c.Request.Context(), query, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	if h.analytics != nil {
		filters := map[string]any{}
		if categoryID > 0 {
			filters["category_id"] = categoryID
		}
		h.analytics.LogSearch(c.Request.Context(), query, len(products), filters)
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product id must be a positive integer"})
		return
	}

	product, err := h.catalog.ProductByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "product lookup failed"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListProducts handles GET /products?skip=...&limit=...
func (h *Handler) ListProducts(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	products, err := h.catalog.ListProducts(c.Request.Context(), skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "product listing failed"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// CartRequest is the payload of POST /cart/calculate.
type CartRequest struct {
	Items []domain.CartItem `json:"items" binding:"required,min=1,dive"`
}

// CartTotalsResponse wraps the ranked per-store totals.
type CartTotalsResponse struct {
	Totals []domain.StoreTotal `json:"totals"`
}

// CalculateCart handles POST /cart/calculate
func (h *Handler) CalculateCart(c *gin.Context) {
	var request CartRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart payload: " + err.Error()})
		return
	}

	totals, err := h.cart.ComputeTotals(c.Request.Context(), request.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart computation failed"})
		return
	}

	if h.analytics != nil {
		h.analytics.LogCartCalculation(c.Request.Context(), len(request.Items), len(totals))
	}

	c.JSON(http.StatusOK, CartTotalsResponse{Totals: totals})
}

// PopularSearches handles GET /analytics/popular-searches?limit=...
func (h *Handler) PopularSearches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	popular, err := h.analytics.PopularSearches(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "popular searches aggregation failed"})
		return
	}
	c.JSON(http.StatusOK, popular)
}

// ListStores handles GET /stores
func (h *Handler) ListStores(c *gin.Context) {
	stores, err := h.catalog.ListStores(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store listing failed"})
		return
	}
	c.JSON(http.StatusOK, stores)
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "category listing failed"})
		return
	}
	c.JSON(http.StatusOK, categories)
}
