package repository

import (
	"context"
	"sync"
	"time"

	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
)

// ShopMemoryRepository keeps aggregates in process. Every read and write
// copies, so callers never share state with the store.
type ShopMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*shop.Shop
	bySlug  map[string]string
	byOwner map[string]string
}

func NewShopMemoryRepository() *ShopMemoryRepository {
	return &ShopMemoryRepository{
		byID:    make(map[string]*shop.Shop),
		bySlug:  make(map[string]string),
		byOwner: make(map[string]string),
	}
}

func (r *ShopMemoryRepository) Create(ctx context.Context, s *shop.Shop) error {
	if err := ctx.Err(); err != nil {
		return classify("shop.Create", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byOwner[s.OwnerID]; ok {
		return errOwnerHasShop
	}
	if _, ok := r.bySlug[s.Slug]; ok {
		return errSlugTaken
	}

	r.byID[s.ID] = s.Clone()
	r.bySlug[s.Slug] = s.ID
	r.byOwner[s.OwnerID] = s.ID
	return nil
}

func (r *ShopMemoryRepository) GetBySlug(ctx context.Context, slug string) (*shop.Shop, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify("shop.GetBySlug", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return nil, errShopNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *ShopMemoryRepository) GetByOwner(ctx context.Context, ownerID string) (*shop.Shop, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify("shop.GetByOwner", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOwner[ownerID]
	if !ok {
		return nil, nil
	}
	return r.byID[id].Clone(), nil
}

func (r *ShopMemoryRepository) Save(ctx context.Context, s *shop.Shop) error {
	if err := ctx.Err(); err != nil {
		return classify("shop.Save", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[s.ID]
	if !ok || current.Version != s.Version {
		return shop.ErrStaleVersion
	}

	s.Version++
	s.UpdatedAt = time.Now().UTC()
	r.byID[s.ID] = s.Clone()
	return nil
}

var _ shop.Repository = (*ShopMemoryRepository)(nil)
