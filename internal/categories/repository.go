// Package categories manages the product category reference data.
package categories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inventorypro/inventorypro/internal/shared"
)

// Category is a catalog grouping label.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrDuplicateName signals a category name that already exists.
var ErrDuplicateName = errors.New("category name already exists")

// Repository persists categories in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all categories ordered by name.
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var (
			c  Category
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ID = uuid.UUID(id.Bytes)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns one category or shared.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Category, error) {
	var (
		c   Category
		row pgtype.UUID
	)
	err := r.pool.QueryRow(ctx, `SELECT id, name, created_at FROM categories WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true}).Scan(&row, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, shared.ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	c.ID = uuid.UUID(row.Bytes)
	return c, nil
}

// Create inserts a category. Names are unique.
func (r *Repository) Create(ctx context.Context, name string) (Category, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`,
		pgtype.UUID{Bytes: id, Valid: true}, name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Category{}, ErrDuplicateName
		}
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes a category. Products that referenced it become
// uncategorised through the nulling foreign key.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
