package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products  map[uuid.UUID]int
	movements []Movement
	failWith  map[uuid.UUID]error
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products: make(map[uuid.UUID]int),
		failWith: make(map[uuid.UUID]error),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	result := make([]Movement, len(r.movements))
	copy(result, r.movements)
	return result, nil
}

func (tx *memoryTx) UpdateProductQuantity(ctx context.Context, productID uuid.UUID, expected, next int) error {
	if err, ok := tx.repo.failWith[productID]; ok {
		return err
	}
	stored, ok := tx.repo.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	if stored != expected {
		return ErrStaleStock
	}
	tx.repo.products[productID] = next
	return nil
}

func (tx *memoryTx) InsertMovement(ctx context.Context, movement Movement) error {
	tx.repo.movements = append(tx.repo.movements, movement)
	return nil
}

func TestAdjustRecordsMovement(t *testing.T) {
	repo := newMemoryRepo()
	productID := uuid.New()
	repo.products[productID] = 10
	svc := NewService(repo, nil)

	movement, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID:       productID,
		QuantityChange:  5,
		CurrentQuantity: 10,
		Type:            MovementPurchase,
		Notes:           "restock",
		Actor:           "user-1",
	})
	require.NoError(t, err)
	require.Equal(t, 15, repo.products[productID])
	require.Len(t, repo.movements, 1)
	require.Equal(t, 10, movement.PreviousQuantity)
	require.Equal(t, 15, movement.NewQuantity)
	require.Equal(t, 5, movement.QuantityChange)
	require.Equal(t, MovementPurchase, movement.Type)
	require.Equal(t, "user-1", movement.CreatedBy)
	require.Equal(t, movement.PreviousQuantity+movement.QuantityChange, movement.NewQuantity)
}

func TestAdjustRejectsNegativeResult(t *testing.T) {
	repo := newMemoryRepo()
	productID := uuid.New()
	repo.products[productID] = 10
	svc := NewService(repo, nil)

	_, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID:       productID,
		QuantityChange:  -15,
		CurrentQuantity: 10,
		Type:            MovementAdjustment,
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)
	require.Equal(t, 10, repo.products[productID])
	require.Empty(t, repo.movements)
}

func TestAdjustRejectsZeroChange(t *testing.T) {
	repo := newMemoryRepo()
	productID := uuid.New()
	repo.products[productID] = 3
	svc := NewService(repo, nil)

	_, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID:       productID,
		QuantityChange:  0,
		CurrentQuantity: 3,
		Type:            MovementAdjustment,
	})
	require.Error(t, err)
	require.Empty(t, repo.movements)
}

func TestAdjustRejectsBulkType(t *testing.T) {
	repo := newMemoryRepo()
	productID := uuid.New()
	repo.products[productID] = 3
	svc := NewService(repo, nil)

	_, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID:       productID,
		QuantityChange:  1,
		CurrentQuantity: 3,
		Type:            MovementBulkUpdate,
	})
	require.ErrorIs(t, err, ErrMovementType)
}

func TestAdjustStaleSnapshot(t *testing.T) {
	repo := newMemoryRepo()
	productID := uuid.New()
	repo.products[productID] = 7
	svc := NewService(repo, nil)

	_, err := svc.Adjust(context.Background(), AdjustInput{
		ProductID:       productID,
		QuantityChange:  2,
		CurrentQuantity: 10,
		Type:            MovementSale,
	})
	require.ErrorIs(t, err, ErrStaleStock)
	require.Equal(t, 7, repo.products[productID])
	require.Empty(t, repo.movements)
}

func TestBulkAdjustSkipsUnchanged(t *testing.T) {
	repo := newMemoryRepo()
	p1 := uuid.New()
	p2 := uuid.New()
	repo.products[p1] = 10
	repo.products[p2] = 5
	svc := NewService(repo, nil)

	result, err := svc.BulkAdjust(context.Background(), []BulkEntry{
		{ProductID: p1, CurrentQuantity: 10, NewQuantity: 10},
		{ProductID: p2, CurrentQuantity: 5, NewQuantity: 0},
	}, "cycle count", "user-2")
	require.NoError(t, err)
	require.Equal(t, 1, result.Changed)
	require.Equal(t, 1, result.Skipped)
	require.Equal(t, 10, repo.products[p1])
	require.Equal(t, 0, repo.products[p2])
	require.Len(t, repo.movements, 1)

	movement := repo.movements[0]
	require.Equal(t, p2, movement.ProductID)
	require.Equal(t, MovementBulkUpdate, movement.Type)
	require.Equal(t, 5, movement.PreviousQuantity)
	require.Equal(t, 0, movement.NewQuantity)
	require.Equal(t, -5, movement.QuantityChange)
	require.Equal(t, "cycle count", movement.Notes)
}

func TestBulkAdjustAbortsOnFailure(t *testing.T) {
	repo := newMemoryRepo()
	p1 := uuid.New()
	p2 := uuid.New()
	p3 := uuid.New()
	repo.products[p1] = 4
	repo.products[p2] = 8
	repo.products[p3] = 2
	storeDown := errors.New("store unavailable")
	repo.failWith[p2] = storeDown
	svc := NewService(repo, nil)

	result, err := svc.BulkAdjust(context.Background(), []BulkEntry{
		{ProductID: p1, CurrentQuantity: 4, NewQuantity: 6},
		{ProductID: p2, CurrentQuantity: 8, NewQuantity: 1},
		{ProductID: p3, CurrentQuantity: 2, NewQuantity: 9},
	}, "", "")
	require.Error(t, err)

	var bulkErr *BulkError
	require.ErrorAs(t, err, &bulkErr)
	require.Equal(t, 1, bulkErr.Committed)
	require.Equal(t, 1, bulkErr.Index)
	require.ErrorIs(t, bulkErr, storeDown)

	// The committed prefix stays applied; the rest is untouched.
	require.Equal(t, 6, repo.products[p1])
	require.Equal(t, 8, repo.products[p2])
	require.Equal(t, 2, repo.products[p3])
	require.Equal(t, 1, result.Changed)
	require.Len(t, repo.movements, 1)
}

func TestBulkAdjustEmptyBatch(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.BulkAdjust(context.Background(), nil, "", "")
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestMovementInvariantHolds(t *testing.T) {
	repo := newMemoryRepo()
	productID := uuid.New()
	repo.products[productID] = 0
	svc := NewService(repo, nil)
	ctx := context.Background()

	current := 0
	for _, change := range []int{12, -4, 3, -11} {
		movement, err := svc.Adjust(ctx, AdjustInput{
			ProductID:       productID,
			QuantityChange:  change,
			CurrentQuantity: current,
			Type:            MovementAdjustment,
		})
		require.NoError(t, err)
		current = movement.NewQuantity
	}

	for _, m := range repo.movements {
		require.Equal(t, m.NewQuantity, m.PreviousQuantity+m.QuantityChange)
		require.GreaterOrEqual(t, m.NewQuantity, 0)
		require.GreaterOrEqual(t, m.PreviousQuantity, 0)
	}
	require.Equal(t, 0, repo.products[productID])
}
