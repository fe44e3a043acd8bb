package products

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/inventorypro/inventorypro/internal/shared"
)

// RepositoryPort is the storage contract the service depends on.
type RepositoryPort interface {
	List(ctx context.Context, f ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	Create(ctx context.Context, in Input) (Product, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service validates catalog writes and records them to the audit trail.
type Service struct {
	repo  RepositoryPort
	audit *shared.AuditLogger
	log   *slog.Logger
}

func NewService(repo RepositoryPort, audit *shared.AuditLogger, log *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, log: log}
}

func (s *Service) List(ctx context.Context, f ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	if err := validateInput(in); err != nil {
		return Product{}, err
	}
	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, "product.create", p.ID, map[string]any{"name": p.Name})
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (Product, error) {
	if err := validateInput(in); err != nil {
		return Product{}, err
	}
	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return Product{}, err
	}
	s.record(ctx, "product.update", p.ID, map[string]any{"name": p.Name})
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "product.delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor := shared.ActorFromContext(ctx)
	if err := s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   "product",
		EntityID: id.String(),
		Meta:     meta,
	}); err != nil {
		s.log.Warn("audit record failed", "action", action, "error", err)
	}
}

func validateInput(in Input) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidInput)
	}
	if in.CostPrice < 0 || in.SellingPrice < 0 {
		return fmt.Errorf("%w: prices must not be negative", shared.ErrInvalidInput)
	}
	if in.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity must not be negative", shared.ErrInvalidInput)
	}
	if in.LowStockThreshold < 0 {
		return fmt.Errorf("%w: low stock threshold must not be negative", shared.ErrInvalidInput)
	}
	return nil
}
