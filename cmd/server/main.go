package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/comparaqp/backend/config"
	httpDelivery "github.com/comparaqp/backend/internal/delivery/http"
	"github.com/comparaqp/backend/internal/infrastructure/cache"
	"github.com/comparaqp/backend/internal/infrastructure/sqlite"
	"github.com/comparaqp/backend/internal/usecase"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("starting comparaqp backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	catalogRepo := sqlite.NewCatalogRepository(db)
	analyticsRepo := sqlite.NewAnalyticsRepository(db)
	memoryCache := cache.NewMemoryCache()

	catalogService := usecase.NewCatalogService(catalogRepo, memoryCache, cfg.Cache.TTL, logger)
	cartService := usecase.NewCartService(catalogRepo, logger)
	analyticsService := usecase.NewAnalyticsService(analyticsRepo, logger)

	handler := httpDelivery.NewHandler(catalogService, cartService, analyticsService)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
