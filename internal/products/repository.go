package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inventorypro/inventorypro/internal/shared"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var sortColumns = map[string]string{
	"name":       "p.name",
	"sku":        "p.sku",
	"quantity":   "p.stock_quantity",
	"price":      "p.selling_price",
	"updated_at": "p.updated_at",
	"created_at": "p.created_at",
}

const productColumns = `p.id, p.name, p.sku, p.category_id, COALESCE(c.name, ''),
    p.cost_price, p.selling_price, p.stock_quantity, p.low_stock_threshold,
    p.created_at, p.updated_at`

// List returns a filtered page of products together with the total row count
// for the same filters.
func (r *Repository) List(ctx context.Context, f ListFilters) ([]Product, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(LOWER(p.name) LIKE $%d OR LOWER(p.sku) LIKE $%d)", n, n))
	}
	if f.CategoryID != nil {
		args = append(args, pgUUID(*f.CategoryID))
		conds = append(conds, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.LowOnly {
		conds = append(conds, "p.stock_quantity < p.low_stock_threshold")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	countSQL := "SELECT COUNT(*) FROM products p" + where
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "p.name"
	}
	dir := "ASC"
	if strings.EqualFold(f.SortDir, "desc") {
		dir = "DESC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	listSQL := fmt.Sprintf(`SELECT %s
        FROM products p
        LEFT JOIN categories c ON c.id = p.category_id%s
        ORDER BY %s %s, p.id ASC
        LIMIT %d OFFSET %d`, productColumns, where, col, dir, limit, offset)

	rows, err := r.pool.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Get returns a single product or shared.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+`
        FROM products p
        LEFT JOIN categories c ON c.id = p.category_id
        WHERE p.id = $1`, pgUUID(id))
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.ErrNotFound
	}
	return p, err
}

func (r *Repository) Create(ctx context.Context, in Input) (Product, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `INSERT INTO products
        (id, name, sku, category_id, cost_price, selling_price, stock_quantity, low_stock_threshold)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pgUUID(id), in.Name, in.SKU, pgUUIDPtr(in.CategoryID),
		in.CostPrice, in.SellingPrice, in.StockQuantity, in.LowStockThreshold)
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, in Input) (Product, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET
        name = $2, sku = $3, category_id = $4, cost_price = $5,
        selling_price = $6, stock_quantity = $7, low_stock_threshold = $8,
        updated_at = NOW()
        WHERE id = $1`,
		pgUUID(id), in.Name, in.SKU, pgUUIDPtr(in.CategoryID),
		in.CostPrice, in.SellingPrice, in.StockQuantity, in.LowStockThreshold)
	if err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Product{}, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a product. Stock movements that reference it keep their rows;
// the foreign key nulls out on delete so the audit trail survives.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, pgUUID(id))
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var (
		p     Product
		id    pgtype.UUID
		catID pgtype.UUID
		sku   pgtype.Text
	)
	err := row.Scan(&id, &p.Name, &sku, &catID, &p.CategoryName,
		&p.CostPrice, &p.SellingPrice, &p.StockQuantity, &p.LowStockThreshold,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, err
		}
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.ID = uuid.UUID(id.Bytes)
	p.SKU = sku.String
	if catID.Valid {
		cid := uuid.UUID(catID.Bytes)
		p.CategoryID = &cid
	}
	return p, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgUUIDPtr(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgUUID(*id)
}
