package products

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog item with its current stock state.
type Product struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	SKU               string     `json:"sku,omitempty"`
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	CategoryName      string     `json:"category_name,omitempty"`
	CostPrice         float64    `json:"cost_price"`
	SellingPrice      float64    `json:"selling_price"`
	StockQuantity     int        `json:"stock_quantity"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// LowStock reports whether the product sits below its threshold.
func (p Product) LowStock() bool {
	return p.StockQuantity < p.LowStockThreshold
}

// OutOfStock is the zero-quantity severity tier of low stock.
func (p Product) OutOfStock() bool {
	return p.StockQuantity == 0
}

// Input carries the writable product fields for create and update. Stock
// quantity is included because product edits overwrite fields directly;
// ledger operations are the only other quantity writer.
type Input struct {
	Name              string
	SKU               string
	CategoryID        *uuid.UUID
	CostPrice         float64
	SellingPrice      float64
	StockQuantity     int
	LowStockThreshold int
}

// ListFilters narrows and pages product listings.
type ListFilters struct {
	Search     string
	CategoryID *uuid.UUID
	LowOnly    bool
	SortBy     string
	SortDir    string
	Page       int
	Limit      int
}
