package domain

import (
	"context"
	"time"
)

// CatalogRepository defines persistence for the canonical catalog.
//
// Implementations must enforce: unique brand and category names, unique
// (product_id, store_id) on prices, and foreign keys with cascading delete.
type CatalogRepository interface {
	// WithTx runs fn against a repository bound to a single transaction.
	// fn returning an error rolls the transaction back.
	WithTx(ctx context.Context, fn func(CatalogRepository) error) error

	GetOrCreateStore(ctx context.Context, name, logoURL string) (Store, error)
	ListStores(ctx context.Context) ([]Store, error)

	ListBrands(ctx context.Context) ([]Brand, error)
	// CreateBrand inserts a brand, reusing the existing row when another
	// writer already created the same name.
	CreateBrand(ctx context.Context, name string) (Brand, error)

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name string) (Category, error)

	ProductByID(ctx context.Context, id int64) (*Product, error)
	ProductsByBrand(ctx context.Context, brandID int64) ([]Product, error)
	SearchProducts(ctx context.Context, query string, categoryID int64, limit int) ([]Product, error)
	ListProducts(ctx context.Context, offset, limit int) ([]Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	SetProductImage(ctx context.Context, productID int64, imageURL string) error

	GetStorePrice(ctx context.Context, productID, storeID int64) (*StorePrice, error)
	PricesByProduct(ctx context.Context, productID int64) ([]StorePrice, error)
	PricesForProducts(ctx context.Context, productIDs []int64) ([]StorePrice, error)
	// UpsertStorePrice inserts the price for (product, store) or updates the
	// existing row in place, marking it available.
	UpsertStorePrice(ctx context.Context, sp *StorePrice) error
	// MarkUnavailableExcept flags every price row of the store whose product
	// is not in observed as unavailable. Returns the number of rows flagged.
	MarkUnavailableExcept(ctx context.Context, storeID int64, observed []int64) (int64, error)
}

// AnalyticsRepository persists search and cart usage events.
type AnalyticsRepository interface {
	SaveSearchEvent(ctx context.Context, payload []byte) error
	RecentSearchEvents(ctx context.Context, limit int) ([][]byte, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
