package domain

import "github.com/shopspring/decimal"

// Store is a supermarket chain the system tracks prices for.
// Stores are created once per source and looked up case-insensitively by name.
type Store struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	LogoURL string `db:"logo_url" json:"logo_url,omitempty"`
}

// Brand is a canonical product brand. Names are unique; brands are created
// lazily on first unmatched sighting and never deleted.
type Brand struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Category is a canonical product category with the same lifecycle as Brand.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Product is a row in the canonical catalog shared across all sources.
// No two products share the same normalized name and brand.
type Product struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	BrandID    int64  `db:"brand_id" json:"brand_id"`
	CategoryID int64  `db:"category_id" json:"category_id"`
	ImageURL   string `db:"image_url" json:"image_url,omitempty"`

	// Populated by joins on read paths, zero otherwise.
	BrandName    string `db:"brand_name" json:"brand_name,omitempty"`
	CategoryName string `db:"category_name" json:"category_name,omitempty"`
}

// StorePrice is the single price observation for a (product, store) pair.
// At most one row exists per pair; re-ingesting the pair updates it in place.
type StorePrice struct {
	ID          int64           `db:"id" json:"id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	StoreID     int64           `db:"store_id" json:"store_id"`
	Price       decimal.Decimal `db:"price" json:"price"`
	URL         string          `db:"url" json:"url,omitempty"`
	IsAvailable bool            `db:"is_available" json:"is_available"`

	// Populated by joins on read paths.
	StoreName string `db:"store_name" json:"store_name,omitempty"`
}

// RawRecord is one scraped product observation as produced by a source.
// It is ephemeral: records with a blank name or non-positive price are
// skipped during ingestion, never stored.
type RawRecord struct {
	Name     string          `json:"name"`
	Brand    string          `json:"brand,omitempty"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
	URL      string          `json:"url,omitempty"`
	ImageURL string          `json:"image_url,omitempty"`
}

// EntityRef is the (id, display name) pair the resolvers operate on.
// Brand and category resolution share it.
type EntityRef struct {
	ID   int64
	Name string
}
