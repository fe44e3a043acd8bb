package categories

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/inventorypro/inventorypro/internal/shared"
)

type memoryRepo struct {
	items map[uuid.UUID]Category
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]Category{}}
}

func (m *memoryRepo) List(context.Context) ([]Category, error) {
	out := make([]Category, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, id uuid.UUID) (Category, error) {
	c, ok := m.items[id]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) Create(_ context.Context, name string) (Category, error) {
	for _, c := range m.items {
		if c.Name == name {
			return Category{}, ErrDuplicateName
		}
	}
	c := Category{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	m.items[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func TestCreateTrimsAndValidates(t *testing.T) {
	svc := NewService(newMemoryRepo())

	c, err := svc.Create(context.Background(), "  Electronics  ")
	require.NoError(t, err)
	require.Equal(t, "Electronics", c.Name)

	_, err = svc.Create(context.Background(), "   ")
	require.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.Create(context.Background(), strings.Repeat("x", maxNameLen+1))
	require.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), "Tools")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "Tools")
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestDeleteMissingCategory(t *testing.T) {
	svc := NewService(newMemoryRepo())
	require.ErrorIs(t, svc.Delete(context.Background(), uuid.New()), shared.ErrNotFound)
}
