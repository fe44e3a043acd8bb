package categories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/inventorypro/inventorypro/internal/shared"
)

const maxNameLen = 100

// RepositoryPort is the storage contract the service depends on.
type RepositoryPort interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id uuid.UUID) (Category, error)
	Create(ctx context.Context, name string) (Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service applies naming rules on top of the repository.
type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if len(name) > maxNameLen {
		return Category{}, fmt.Errorf("%w: name exceeds %d characters", shared.ErrInvalidInput, maxNameLen)
	}
	return s.repo.Create(ctx, name)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
