package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product id is absent from the catalog
	ErrProductNotFound = errors.New("product not found")

	// ErrBlankName is returned when an entity resolver receives a blank name
	// and has no default to fall back to
	ErrBlankName = errors.New("blank entity name with no default")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
