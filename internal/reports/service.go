package reports

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// SnapshotSource loads the product snapshot the aggregations run over.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]Item, error)
}

// Service coordinates snapshot loading, aggregation and the cache layer.
// Identical concurrent requests collapse into a single snapshot query.
type Service struct {
	repo  SnapshotSource
	cache *Cache
	group singleflight.Group
}

// NewService wires a SnapshotSource with a Cache helper.
func NewService(repo SnapshotSource, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Stats returns the inventory totals, cache-aware.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	v, err, _ := s.group.Do(keyStats(), func() (any, error) {
		var out Stats
		err := s.fetch(ctx, keyStats(), &out, func(items []Item) any {
			return ComputeStats(items)
		})
		return out, err
	})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

// Categories returns the per-category rollup, cache-aware.
func (s *Service) Categories(ctx context.Context) ([]CategoryGroup, error) {
	v, err, _ := s.group.Do(keyCategories(), func() (any, error) {
		var out []CategoryGroup
		err := s.fetch(ctx, keyCategories(), &out, func(items []Item) any {
			return CategoryRollup(items)
		})
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]CategoryGroup), nil
}

// TopProducts returns the highest-value products, cache-aware. Limit is
// clamped to a sane window.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	key := keyTopProducts(limit)
	v, err, _ := s.group.Do(key, func() (any, error) {
		var out []TopProduct
		err := s.fetch(ctx, key, &out, func(items []Item) any {
			return TopProducts(items, limit)
		})
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]TopProduct), nil
}

// Bump invalidates cached aggregates. Exposed so mutating handlers can
// signal that the snapshot changed.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) fetch(ctx context.Context, keyBase string, dest any, compute func([]Item) any) error {
	loader := func(ctx context.Context) (any, error) {
		items, err := s.repo.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return compute(items), nil
	}
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}
