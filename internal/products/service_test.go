package products

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/inventorypro/inventorypro/internal/shared"
)

type memoryRepo struct {
	items map[uuid.UUID]Product
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]Product{}}
}

func (m *memoryRepo) List(_ context.Context, f ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range m.items {
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.LowOnly && !p.LowStock() {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id uuid.UUID) (Product, error) {
	p, ok := m.items[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) Create(_ context.Context, in Input) (Product, error) {
	p := Product{
		ID:                uuid.New(),
		Name:              in.Name,
		SKU:               in.SKU,
		CategoryID:        in.CategoryID,
		CostPrice:         in.CostPrice,
		SellingPrice:      in.SellingPrice,
		StockQuantity:     in.StockQuantity,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         time.Now().UTC(),
		UpdatedAt:         time.Now().UTC(),
	}
	m.items[p.ID] = p
	return p, nil
}

func (m *memoryRepo) Update(_ context.Context, id uuid.UUID, in Input) (Product, error) {
	p, ok := m.items[id]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	p.Name = in.Name
	p.SKU = in.SKU
	p.CategoryID = in.CategoryID
	p.CostPrice = in.CostPrice
	p.SellingPrice = in.SellingPrice
	p.StockQuantity = in.StockQuantity
	p.LowStockThreshold = in.LowStockThreshold
	p.UpdatedAt = time.Now().UTC()
	m.items[id] = p
	return p, nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func newTestService(repo RepositoryPort) *Service {
	return NewService(repo, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Input{Name: "  "})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Create(context.Background(), Input{Name: "Widget", CostPrice: -1})
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Create(context.Background(), Input{Name: "Widget", StockQuantity: -5})
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), Input{
		Name:              "Widget",
		SKU:               "WID-1",
		CostPrice:         4.5,
		SellingPrice:      9.99,
		StockQuantity:     12,
		LowStockThreshold: 5,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Widget", got.Name)
	require.Equal(t, 12, got.StockQuantity)
	require.False(t, got.LowStock())
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Update(context.Background(), uuid.New(), Input{Name: "Widget"})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteRemovesProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	p, err := svc.Create(context.Background(), Input{Name: "Widget"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), p.ID))
	_, err = svc.Get(context.Background(), p.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), p.ID), shared.ErrNotFound)
}

func TestListLowStockFilter(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), Input{Name: "Plenty", StockQuantity: 50, LowStockThreshold: 5})
	require.NoError(t, err)
	low, err := svc.Create(context.Background(), Input{Name: "Scarce", StockQuantity: 2, LowStockThreshold: 5})
	require.NoError(t, err)
	// A product sitting exactly on its threshold is not low stock.
	_, err = svc.Create(context.Background(), Input{Name: "Border", StockQuantity: 5, LowStockThreshold: 5})
	require.NoError(t, err)

	items, total, err := svc.List(context.Background(), ListFilters{LowOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, low.ID, items[0].ID)
}
