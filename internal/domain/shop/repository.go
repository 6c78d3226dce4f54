package shop

import (
	"context"
	"errors"
)

// ErrStaleVersion is returned by Save when the stored aggregate moved on
// since it was loaded.
var ErrStaleVersion = errors.New("shop: stale aggregate version")

type Repository interface {
	// Create inserts a new aggregate. It fails with a conflict when the
	// slug is taken or the owner already has a shop.
	Create(ctx context.Context, s *Shop) error

	GetBySlug(ctx context.Context, slug string) (*Shop, error)

	// GetByOwner returns nil, nil when the user owns no shop.
	GetByOwner(ctx context.Context, ownerID string) (*Shop, error)

	// Save writes s only if the stored version still equals s.Version,
	// then increments s.Version.
	Save(ctx context.Context, s *Shop) error
}
