package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inventorypro/inventorypro/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
}

// Service is the stock ledger engine. It validates quantity changes and
// applies them together with their audit movement in one transaction.
type Service struct {
	repo        RepositoryPort
	idempotency *shared.IdempotencyStore
	now         func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, idem *shared.IdempotencyStore) *Service {
	return &Service{repo: repo, idempotency: idem, now: time.Now}
}

// Adjust applies a single stock adjustment and appends the matching
// movement. The product write is conditioned on the caller's quantity
// snapshot; a mismatch surfaces as ErrStaleStock so the caller can
// re-fetch and retry.
func (s *Service) Adjust(ctx context.Context, input AdjustInput) (Movement, error) {
	if input.ProductID == uuid.Nil {
		return Movement{}, fmt.Errorf("%w: product id required", ErrProductNotFound)
	}
	if !validAdjustType(input.Type) {
		return Movement{}, fmt.Errorf("%w: %q", ErrMovementType, input.Type)
	}
	if input.QuantityChange == 0 {
		return Movement{}, fmt.Errorf("ledger: quantity change must be non zero")
	}
	if len(input.Notes) > maxNotesLen {
		return Movement{}, ErrNotesTooLong
	}

	newQuantity := input.CurrentQuantity + input.QuantityChange
	if newQuantity < 0 {
		return Movement{}, ErrInvalidQuantity
	}

	insertedKey := false
	key := fmt.Sprintf("adjust:%s:%s", input.ProductID, input.Ref)
	if input.Ref != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "ledger"); err != nil {
			return Movement{}, err
		}
		insertedKey = true
	}

	movement, err := s.apply(ctx, input.ProductID, input.CurrentQuantity, newQuantity, input.Type, input.Notes, input.Actor)
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return Movement{}, err
	}
	return movement, nil
}

// BulkAdjust processes the entries in order, each as its own independent
// transaction. Entries whose target equals the snapshot are skipped with
// no store writes. There is no atomicity across entries: the first failure
// aborts the remainder and is reported as *BulkError so callers can
// reconcile the committed prefix against a fresh read.
func (s *Service) BulkAdjust(ctx context.Context, entries []BulkEntry, notes, actor string) (BulkResult, error) {
	if len(entries) == 0 {
		return BulkResult{}, ErrEmptyBatch
	}
	if len(notes) > maxNotesLen {
		return BulkResult{}, ErrNotesTooLong
	}

	var result BulkResult
	for i, entry := range entries {
		if entry.ProductID == uuid.Nil {
			return result, &BulkError{Committed: result.Changed, Index: i, Err: ErrProductNotFound}
		}
		if entry.NewQuantity == entry.CurrentQuantity {
			result.Skipped++
			continue
		}
		movement, err := s.apply(ctx, entry.ProductID, entry.CurrentQuantity, entry.NewQuantity, MovementBulkUpdate, notes, actor)
		if err != nil {
			return result, &BulkError{Committed: result.Changed, Index: i, Err: err}
		}
		result.Changed++
		result.Movements = append(result.Movements, movement)
	}
	return result, nil
}

// ListMovements returns ledger history, newest first.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.ListMovements(ctx, filter)
}

// apply performs the conditional product write and the movement append
// inside one transaction, so a quantity change can never be observed
// without its audit record.
func (s *Service) apply(ctx context.Context, productID uuid.UUID, current, next int, mtype MovementType, notes, actor string) (Movement, error) {
	movement := Movement{
		ID:               uuid.New(),
		ProductID:        productID,
		QuantityChange:   next - current,
		PreviousQuantity: current,
		NewQuantity:      next,
		Type:             mtype,
		Notes:            notes,
		CreatedAt:        s.now().UTC(),
		CreatedBy:        actor,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdateProductQuantity(ctx, productID, current, next); err != nil {
			return err
		}
		return tx.InsertMovement(ctx, movement)
	})
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}
