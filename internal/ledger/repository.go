package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists ledger data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	UpdateProductQuantity(ctx context.Context, productID uuid.UUID, expected, next int) error
	InsertMovement(ctx context.Context, movement Movement) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// UpdateProductQuantity writes the new quantity conditioned on the expected
// one. Zero rows affected means either the product is gone or another
// writer got there first; the two cases are told apart with a second probe.
func (t *txRepository) UpdateProductQuantity(ctx context.Context, productID uuid.UUID, expected, next int) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE products SET stock_quantity = $3, updated_at = NOW() WHERE id = $1 AND stock_quantity = $2`,
		pgUUID(productID), expected, next)
	if err != nil {
		return fmt.Errorf("ledger: update product quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, pgUUID(productID)).Scan(&exists); err != nil {
			return fmt.Errorf("ledger: probe product: %w", err)
		}
		if !exists {
			return ErrProductNotFound
		}
		return ErrStaleStock
	}
	return nil
}

func (t *txRepository) InsertMovement(ctx context.Context, m Movement) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO stock_movements (id, product_id, quantity_change, previous_quantity, new_quantity, movement_type, notes, created_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pgUUID(m.ID),
		pgUUID(m.ProductID),
		m.QuantityChange,
		m.PreviousQuantity,
		m.NewQuantity,
		string(m.Type),
		pgText(m.Notes),
		pgtype.Timestamptz{Time: m.CreatedAt, Valid: true},
		pgText(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("ledger: insert movement: %w", err)
	}
	return nil
}

// ListMovements returns ledger history newest first, optionally scoped to
// one product. Product name and sku are left-joined so movements survive
// product deletion with a nulled reference.
func (r *Repository) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	query := `
		SELECT m.id, m.product_id, m.quantity_change, m.previous_quantity, m.new_quantity,
		       m.movement_type, m.notes, m.created_at, m.created_by, p.name, p.sku
		FROM stock_movements m
		LEFT JOIN products p ON p.id = m.product_id`
	args := []any{}
	if filter.ProductID != nil {
		query += ` WHERE m.product_id = $1`
		args = append(args, pgUUID(*filter.ProductID))
	}
	query += fmt.Sprintf(` ORDER BY m.created_at DESC LIMIT %d`, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var (
			m         Movement
			id        pgtype.UUID
			productID pgtype.UUID
			mtype     string
			notes     pgtype.Text
			createdAt pgtype.Timestamptz
			createdBy pgtype.Text
			name      pgtype.Text
			sku       pgtype.Text
		)
		if err := rows.Scan(&id, &productID, &m.QuantityChange, &m.PreviousQuantity, &m.NewQuantity,
			&mtype, &notes, &createdAt, &createdBy, &name, &sku); err != nil {
			return nil, err
		}
		m.ID = uuid.UUID(id.Bytes)
		if productID.Valid {
			m.ProductID = uuid.UUID(productID.Bytes)
		}
		m.Type = MovementType(mtype)
		m.Notes = notes.String
		m.CreatedAt = createdAt.Time
		m.CreatedBy = createdBy.String
		m.ProductName = name.String
		m.ProductSKU = sku.String
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}

func pgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
