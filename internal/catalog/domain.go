package catalog

import "errors"

// Product is a sellable item and its current stock counter. Stock is signed:
// a negative value is a meaningful oversold signal, not an error state.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Category string `json:"category"`
	// Price is the selling price, Cost the unit cost of goods, both in
	// whole rupiah.
	Price    int64  `json:"price"`
	Cost     int64  `json:"cost"`
	Stock    int    `json:"stock"`
	Unit     string `json:"unit"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ErrNotFound indicates the referenced product id is not in the catalog.
var ErrNotFound = errors.New("catalog: product not found")

// ErrNotEmpty indicates Seed was called against a populated catalog.
var ErrNotEmpty = errors.New("catalog: already seeded")
