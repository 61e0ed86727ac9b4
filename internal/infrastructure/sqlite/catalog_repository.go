package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comparaqp/backend/internal/domain"
)

// CatalogRepository is the sqlx-backed implementation of
// domain.CatalogRepository.
type CatalogRepository struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// NewCatalogRepository creates a repository over an open database.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db, q: db}
}

// WithTx runs fn against a repository bound to a single transaction,
// committing on success and rolling back when fn fails.
func (r *CatalogRepository) WithTx(ctx context.Context, fn func(domain.CatalogRepository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(&CatalogRepository{db: r.db, q: tx}); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *CatalogRepository) GetOrCreateStore(ctx context.Context, name, logoURL string) (domain.Store, error) {
	var store domain.Store
	err := sqlx.GetContext(ctx, r.q, &store,
		`SELECT id, name, COALESCE(logo_url, '') AS logo_url
		 FROM stores WHERE name = ? COLLATE NOCASE LIMIT 1`, name)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Store{}, err
	}

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO stores (name, logo_url) VALUES (?, NULLIF(?, ''))`, name, logoURL)
	if err != nil {
		return domain.Store{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Store{}, err
	}
	return domain.Store{ID: id, Name: name, LogoURL: logoURL}, nil
}

func (r *CatalogRepository) ListStores(ctx context.Context) ([]domain.Store, error) {
	var stores []domain.Store
	err := sqlx.SelectContext(ctx, r.q, &stores,
		`SELECT id, name, COALESCE(logo_url, '') AS logo_url FROM stores ORDER BY id`)
	return stores, err
}

func (r *CatalogRepository) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	var brands []domain.Brand
	err := sqlx.SelectContext(ctx, r.q, &brands, `SELECT id, name FROM brands ORDER BY id`)
	return brands, err
}

// CreateBrand inserts a brand name. When a concurrent batch already created
// the same name, the insert is a no-op and the existing row is reloaded and
// reused, so the unique constraint never surfaces as an error.
func (r *CatalogRepository) CreateBrand(ctx context.Context, name string) (domain.Brand, error) {
	if _, err := r.q.ExecContext(ctx,
		`INSERT INTO brands (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return domain.Brand{}, err
	}

	var brand domain.Brand
	err := sqlx.GetContext(ctx, r.q, &brand, `SELECT id, name FROM brands WHERE name = ?`, name)
	return brand, err
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := sqlx.SelectContext(ctx, r.q, &categories, `SELECT id, name FROM categories ORDER BY name`)
	return categories, err
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	if _, err := r.q.ExecContext(ctx,
		`INSERT INTO categories (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return domain.Category{}, err
	}

	var category domain.Category
	err := sqlx.GetContext(ctx, r.q, &category, `SELECT id, name FROM categories WHERE name = ?`, name)
	return category, err
}

const productColumns = `
	p.id, p.name, p.brand_id, p.category_id,
	COALESCE(p.image_url, '') AS image_url,
	b.name AS brand_name, c.name AS category_name`

const productJoins = `
	FROM products p
	JOIN brands b ON b.id = p.brand_id
	JOIN categories c ON c.id = p.category_id`

func (r *CatalogRepository) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := sqlx.GetContext(ctx, r.q, &product,
		`SELECT `+productColumns+productJoins+` WHERE p.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *CatalogRepository) ProductsByBrand(ctx context.Context, brandID int64) ([]domain.Product, error) {
	var products []domain.Product
	err := sqlx.SelectContext(ctx, r.q, &products,
		`SELECT `+productColumns+productJoins+` WHERE p.brand_id = ? ORDER BY p.id`, brandID)
	return products, err
}

func (r *CatalogRepository) SearchProducts(ctx context.Context, query string, categoryID int64, limit int) ([]domain.Product, error) {
	pattern := "%" + query + "%"
	args := []interface{}{pattern, pattern}

	q := `SELECT ` + productColumns + productJoins + ` WHERE (p.name LIKE ? OR b.name LIKE ?)`
	if categoryID > 0 {
		q += ` AND p.category_id = ?`
		args = append(args, categoryID)
	}
	q += ` ORDER BY p.name LIMIT ?`
	args = append(args, limit)

	var products []domain.Product
	err := sqlx.SelectContext(ctx, r.q, &products, q, args...)
	return products, err
}

func (r *CatalogRepository) ListProducts(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	var products []domain.Product
	err := sqlx.SelectContext(ctx, r.q, &products,
		`SELECT `+productColumns+productJoins+` ORDER BY p.id LIMIT ? OFFSET ?`, limit, offset)
	return products, err
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO products (name, brand_id, category_id, image_url)
		 VALUES (?, ?, ?, NULLIF(?, ''))`,
		p.Name, p.BrandID, p.CategoryID, p.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *CatalogRepository) SetProductImage(ctx context.Context, productID int64, imageURL string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE products SET image_url = ? WHERE id = ? AND (image_url IS NULL OR image_url = '')`,
		imageURL, productID)
	return err
}

func (r *CatalogRepository) GetStorePrice(ctx context.Context, productID, storeID int64) (*domain.StorePrice, error) {
	var price domain.StorePrice
	err := sqlx.GetContext(ctx, r.q, &price,
		`SELECT sp.id, sp.product_id, sp.store_id, sp.price,
		        COALESCE(sp.url, '') AS url, sp.is_available, s.name AS store_name
		 FROM store_prices sp
		 JOIN stores s ON s.id = sp.store_id
		 WHERE sp.product_id = ? AND sp.store_id = ?`, productID, storeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

func (r *CatalogRepository) PricesByProduct(ctx context.Context, productID int64) ([]domain.StorePrice, error) {
	var prices []domain.StorePrice
	err := sqlx.SelectContext(ctx, r.q, &prices,
		`SELECT sp.id, sp.product_id, sp.store_id, sp.price,
		        COALESCE(sp.url, '') AS url, sp.is_available, s.name AS store_name
		 FROM store_prices sp
		 JOIN stores s ON s.id = sp.store_id
		 WHERE sp.product_id = ?
		 ORDER BY sp.store_id`, productID)
	return prices, err
}

func (r *CatalogRepository) PricesForProducts(ctx context.Context, productIDs []int64) ([]domain.StorePrice, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	q, args, err := sqlx.In(
		`SELECT sp.id, sp.product_id, sp.store_id, sp.price,
		        COALESCE(sp.url, '') AS url, sp.is_available, s.name AS store_name
		 FROM store_prices sp
		 JOIN stores s ON s.id = sp.store_id
		 WHERE sp.product_id IN (?)
		 ORDER BY sp.product_id, sp.store_id`, productIDs)
	if err != nil {
		return nil, err
	}

	var prices []domain.StorePrice
	err = sqlx.SelectContext(ctx, r.q, &prices, r.q.Rebind(q), args...)
	return prices, err
}

// UpsertStorePrice maintains the one-row-per-(product, store) invariant: a
// second observation of the same pair overwrites price, url and availability
// in place instead of inserting a duplicate.
func (r *CatalogRepository) UpsertStorePrice(ctx context.Context, sp *domain.StorePrice) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO store_prices (product_id, store_id, price, url, is_available)
		 VALUES (?, ?, ?, NULLIF(?, ''), ?)
		 ON CONFLICT(product_id, store_id) DO UPDATE SET
		     price = excluded.price,
		     url = excluded.url,
		     is_available = excluded.is_available`,
		sp.ProductID, sp.StoreID, sp.Price, sp.URL, sp.IsAvailable)
	return err
}

func (r *CatalogRepository) MarkUnavailableExcept(ctx context.Context, storeID int64, observed []int64) (int64, error) {
	if len(observed) == 0 {
		res, err := r.q.ExecContext(ctx,
			`UPDATE store_prices SET is_available = 0 WHERE store_id = ? AND is_available = 1`, storeID)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	q, args, err := sqlx.In(
		`UPDATE store_prices SET is_available = 0
		 WHERE store_id = ? AND is_available = 1 AND product_id NOT IN (?)`, storeID, observed)
	if err != nil {
		return 0, err
	}

	res, err := r.q.ExecContext(ctx, r.q.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
