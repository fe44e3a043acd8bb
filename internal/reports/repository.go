package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads product snapshots for aggregation. It reads the same
// tables the catalog writes but stays independent of that package so the
// read side can evolve on its own.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Snapshot returns all products with their category names resolved, in
// creation order so rollup grouping is reproducible between calls.
func (r *Repository) Snapshot(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, p.sku, COALESCE(c.name, ''),
            p.cost_price, p.selling_price, p.stock_quantity, p.low_stock_threshold
        FROM products p
        LEFT JOIN categories c ON c.id = p.category_id
        ORDER BY p.created_at ASC, p.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("snapshot products: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var (
			it  Item
			id  pgtype.UUID
			sku pgtype.Text
		)
		if err := rows.Scan(&id, &it.Name, &sku, &it.CategoryName,
			&it.CostPrice, &it.SellingPrice, &it.StockQuantity, &it.LowStockThreshold); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		it.ID = uuid.UUID(id.Bytes)
		it.SKU = sku.String
		out = append(out, it)
	}
	return out, rows.Err()
}
