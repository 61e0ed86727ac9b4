package domain

import "github.com/shopspring/decimal"

// CartItem is one entry of a shopping list to price across stores.
type CartItem struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"required,min=1"`
}

// StoreTotal is the per-store result of a cart computation. Items without an
// available price at the store contribute zero to Total and are counted in
// ItemsUnavailable.
type StoreTotal struct {
	StoreID          int64           `json:"store_id"`
	StoreName        string          `json:"store_name"`
	Total            decimal.Decimal `json:"total"`
	ItemsAvailable   int             `json:"items_available"`
	ItemsUnavailable int             `json:"items_unavailable"`
}
