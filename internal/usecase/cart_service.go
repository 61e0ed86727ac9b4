package usecase

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/comparaqp/backend/internal/domain"
)

// CartService computes per-store totals for a shopping list against the
// current catalog.
type CartService struct {
	repo   domain.CatalogRepository
	logger *zap.Logger
}

// NewCartService creates a cart service.
func NewCartService(repo domain.CatalogRepository, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{repo: repo, logger: logger}
}

// ComputeTotals prices the cart at every store. An item without an available
// price row at a store contributes zero to that store's total and increments
// its unavailable counter; it is never excluded from the comparison. Items
// referencing product ids absent from the catalog are unavailable at every
// store, not a hard failure. The result is sorted ascending by total; ties
// keep the input store order.
func (s *CartService) ComputeTotals(ctx context.Context, items []domain.CartItem) ([]domain.StoreTotal, error) {
	stores, err := s.repo.ListStores(ctx)
	if err != nil {
		return nil, err
	}

	productIDs := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		productIDs = append(productIDs, item.ProductID)
	}

	prices := make(map[priceKey]domain.StorePrice)
	if len(productIDs) > 0 {
		rows, err := s.repo.PricesForProducts(ctx, productIDs)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			prices[priceKey{row.ProductID, row.StoreID}] = row
		}
	}

	totals := make([]domain.StoreTotal, 0, len(stores))
	for _, store := range stores {
		total := domain.StoreTotal{
			StoreID:   store.ID,
			StoreName: store.Name,
			Total:     decimal.Zero,
		}

		for _, item := range items {
			price, ok := prices[priceKey{item.ProductID, store.ID}]
			if ok && price.IsAvailable {
				line := price.Price.Mul(decimal.NewFromInt(item.Quantity))
				total.Total = total.Total.Add(line)
				total.ItemsAvailable++
			} else {
				total.ItemsUnavailable++
			}
		}

		totals = append(totals, total)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.LessThan(totals[j].Total)
	})

	return totals, nil
}

type priceKey struct {
	productID int64
	storeID   int64
}
