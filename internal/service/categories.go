package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
)

type cachedCategories struct {
	items    []domain.Category
	cachedAt time.Time
}

// CategoryCache keeps each organization's category list for ttl.
// Writes made through this process invalidate the organization's entry.
type CategoryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]cachedCategories
	ttl     time.Duration
}

func NewCategoryCache(ttl time.Duration) *CategoryCache {
	return &CategoryCache{ttl: ttl, entries: make(map[uuid.UUID]cachedCategories)}
}

func (c *CategoryCache) Get(orgID uuid.UUID) []domain.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[orgID]
	if !ok || time.Since(e.cachedAt) > c.ttl {
		return nil
	}
	return e.items
}

func (c *CategoryCache) Set(orgID uuid.UUID, items []domain.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if items == nil {
		items = []domain.Category{}
	}
	c.entries[orgID] = cachedCategories{items: items, cachedAt: time.Now()}
}

func (c *CategoryCache) Invalidate(orgID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orgID)
}

type CategoryStore interface {
	ListCategories(ctx context.Context, orgID uuid.UUID) ([]domain.Category, error)
	CreateCategory(ctx context.Context, orgID uuid.UUID, name, kind string) (domain.Category, error)
	DeleteCategory(ctx context.Context, orgID, id uuid.UUID) (int64, error)
}

type CategoryService struct {
	store CategoryStore
	cache *CategoryCache
}

func NewCategoryService(store CategoryStore, cache *CategoryCache) *CategoryService {
	return &CategoryService{store: store, cache: cache}
}

func (s *CategoryService) List(ctx context.Context, orgID uuid.UUID) ([]domain.Category, error) {
	if items := s.cache.Get(orgID); items != nil {
		return items, nil
	}
	items, err := s.store.ListCategories(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	s.cache.Set(orgID, items)
	return items, nil
}

func (s *CategoryService) Create(ctx context.Context, orgID uuid.UUID, name, kind string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, domain.ErrCategoryNameEmpty
	}
	c, err := s.store.CreateCategory(ctx, orgID, name, strings.TrimSpace(kind))
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.Category{}, domain.ErrCategoryExists
		}
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.cache.Invalidate(orgID)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	n, err := s.store.DeleteCategory(ctx, orgID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return domain.ErrCategoryNotFound
	}
	s.cache.Invalidate(orgID)
	return nil
}
