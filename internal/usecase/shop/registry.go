package shop

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/events"
	"github.com/BruksfildServices01/trimbook/internal/guard"
)

// ======================================================
// INPUT
// ======================================================

type CreateShopInput struct {
	Name string
	Slug string
}

// ======================================================
// REGISTRY
// ======================================================

// CreateShop registers a new inactive shop for the caller. The store
// rejects a taken slug or a caller who already owns a shop in the same
// atomic step as the insert.
func (s *Service) CreateShop(ctx context.Context, id *guard.Identity, in CreateShopInput) (*domain.Shop, error) {
	if err := s.guard.Authorize(ctx, guard.CreateShop, id, nil); err != nil {
		return nil, err
	}

	sh, err := domain.New(id.UserID, in.Name, in.Slug, s.now())
	if err != nil {
		return nil, err
	}

	err = s.withStore(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, sh)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("barbershop created", zap.String("slug", sh.Slug), zap.String("owner_id", sh.OwnerID))
	s.publish(events.BarbershopCreated, sh, id, sh.ID, map[string]string{"name": sh.Name})
	return sh, nil
}

// ResolveBySlug returns the shop for public read paths; callers project it.
func (s *Service) ResolveBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	return s.load(ctx, slug)
}

// OwnerView returns the full shop when the caller owns it.
func (s *Service) OwnerView(ctx context.Context, id *guard.Identity, slug string) (*domain.Shop, error) {
	sh, err := s.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(ctx, guard.ViewShop, id, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// ResolveByOwner returns nil, nil when the user has no shop yet.
func (s *Service) ResolveByOwner(ctx context.Context, ownerID string) (*domain.Shop, error) {
	var sh *domain.Shop
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		sh, err = s.repo.GetByOwner(ctx, ownerID)
		return err
	})
	return sh, err
}

func normalizeLookup(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
