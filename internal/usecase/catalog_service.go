package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/comparaqp/backend/internal/domain"
)

// Search results are capped to keep catalog scans bounded.
const maxSearchResults = 50

// Cache keys for the slow-moving reference lists.
const (
	cacheKeyStores     = "catalog:stores"
	cacheKeyCategories = "catalog:categories"
)

// ProductView is a catalog product with its per-store prices, the shape the
// API layer serves.
type ProductView struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	BrandName    string      `json:"brand_name"`
	CategoryName string      `json:"category_name"`
	ImageURL     string      `json:"image_url,omitempty"`
	Prices       []PriceView `json:"prices"`
}

// PriceView is one store's price for a product.
type PriceView struct {
	StoreID     int64  `json:"store_id"`
	StoreName   string `json:"store_name"`
	Price       string `json:"price"`
	URL         string `json:"url,omitempty"`
	IsAvailable bool   `json:"is_available"`
}

// CatalogService answers the catalog query surface: product lookup, search
// and listing, plus the store and category reference lists.
type CatalogService struct {
	repo     domain.CatalogRepository
	cache    domain.CacheRepository
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService creates a catalog service. The cache holds the store and
// category lists, which only change when an ingestion run creates entities.
func NewCatalogService(repo domain.CatalogRepository, cache domain.CacheRepository, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ProductByID returns a product with all its store prices, or
// domain.ErrProductNotFound.
func (s *CatalogService) ProductByID(ctx context.Context, id int64) (*ProductView, error) {
	product, err := s.repo.ProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	prices, err := s.repo.PricesByProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	view := buildProductView(*product, prices)
	return &view, nil
}

// SearchProducts finds products whose name or brand contains the query,
// optionally filtered by category. categoryID zero means no filter. Results
// are capped at 50.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, categoryID int64) ([]ProductView, error) {
	products, err := s.repo.SearchProducts(ctx, query, categoryID, maxSearchResults)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, products)
}

// ListProducts returns a page of the catalog.
func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) ([]ProductView, error) {
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	if offset < 0 {
		offset = 0
	}
	products, err := s.repo.ListProducts(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, products)
}

// ListStores returns all stores, served from cache when fresh.
func (s *CatalogService) ListStores(ctx context.Context) ([]domain.Store, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKeyStores); err == nil {
			if stores, ok := cached.([]domain.Store); ok {
				return stores, nil
			}
		}
	}

	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyStores, stores, s.cacheTTL); err != nil {
			s.logger.Warn("caching store list failed", zap.Error(err))
		}
	}
	return stores, nil
}

// ListCategories returns all categories ordered by name, served from cache
// when fresh.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKeyCategories); err == nil {
			if categories, ok := cached.([]domain.Category); ok {
				return categories, nil
			}
		}
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyCategories, categories, s.cacheTTL); err != nil {
			s.logger.Warn("caching category list failed", zap.Error(err))
		}
	}
	return categories, nil
}

// buildViews assembles product views, loading the prices of the whole page
// in one query.
func (s *CatalogService) buildViews(ctx context.Context, products []domain.Product) ([]ProductView, error) {
	views := make([]ProductView, 0, len(products))
	if len(products) == 0 {
		return views, nil
	}

	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	prices, err := s.repo.PricesForProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[int64][]domain.StorePrice, len(products))
	for _, price := range prices {
		byProduct[price.ProductID] = append(byProduct[price.ProductID], price)
	}

	for _, product := range products {
		views = append(views, buildProductView(product, byProduct[product.ID]))
	}
	return views, nil
}

func buildProductView(product domain.Product, prices []domain.StorePrice) ProductView {
	view := ProductView{
		ID:           product.ID,
		Name:         product.Name,
		BrandName:    product.BrandName,
		CategoryName: product.CategoryName,
		ImageURL:     product.ImageURL,
		Prices:       make([]PriceView, 0, len(prices)),
	}
	for _, price := range prices {
		view.Prices = append(view.Prices, PriceView{
			StoreID:     price.StoreID,
			StoreName:   price.StoreName,
			Price:       price.Price.StringFixed(2),
			URL:         price.URL,
			IsAvailable: price.IsAvailable,
		})
	}
	return view
}
