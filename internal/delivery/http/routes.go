package http

import (
	"github.com/gin-gonic/gin"

	"github.com/comparaqp/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if cfg.RateLimit.PerIP > 0 {
		router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("/search", handler.SearchProducts)
			products.GET("/:id", handler.GetProduct)
			products.GET("", handler.ListProducts)
		}

		cart := v1.Group("/cart")
		{
			cart.POST("/calculate", handler.CalculateCart)
		}

		v1.GET("/stores", handler.ListStores)
		v1.GET("/categories", handler.ListCategories)

		v1.GET("/analytics/popular-searches", handler.PopularSearches)
	}

	return router
}
