// Package alerts derives low-stock notifications from the current product
// state and hands them to the background queue for dispatch.
package alerts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LowStockProduct is one product at or below its threshold.
type LowStockProduct struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	SKU               string    `json:"sku,omitempty"`
	StockQuantity     int       `json:"stock_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
}

// OutOfStock is the severe tier of a low-stock entry.
func (p LowStockProduct) OutOfStock() bool {
	return p.StockQuantity == 0
}

// Repository reads products that qualify for an alert.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LowStock returns products at or below their threshold, most depleted
// first. Note the inclusive comparison: a product sitting exactly on its
// threshold is alertable even though dashboard stats count it as healthy.
func (r *Repository) LowStock(ctx context.Context) ([]LowStockProduct, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, sku, stock_quantity, low_stock_threshold
        FROM products
        WHERE stock_quantity <= low_stock_threshold
        ORDER BY stock_quantity ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query low stock: %w", err)
	}
	defer rows.Close()

	var out []LowStockProduct
	for rows.Next() {
		var (
			p   LowStockProduct
			id  pgtype.UUID
			sku pgtype.Text
		)
		if err := rows.Scan(&id, &p.Name, &sku, &p.StockQuantity, &p.LowStockThreshold); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		p.ID = uuid.UUID(id.Bytes)
		p.SKU = sku.String
		out = append(out, p)
	}
	return out, rows.Err()
}
