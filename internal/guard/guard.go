package guard

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/trimbook/internal/billing"
	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

type Action string

const (
	CreateShop    Action = "create_shop"
	ManageShop    Action = "manage_shop"
	ViewShop      Action = "view_shop"
	PublicBooking Action = "public_booking"
)

// Identity is the authenticated caller. A nil *Identity is anonymous.
type Identity struct {
	UserID string
}

// Guard decides whether an identity may run an action against a shop.
// Shop management is owner-only and gated by the owner's billing
// standing; public booking is open to anyone.
type Guard struct {
	billing billing.Checker
}

func New(checker billing.Checker) *Guard {
	return &Guard{billing: checker}
}

func (g *Guard) Authorize(ctx context.Context, action Action, id *Identity, s *shop.Shop) error {
	switch action {
	case PublicBooking:
		return nil

	case CreateShop:
		if err := requireIdentity(id); err != nil {
			return err
		}
		return g.requireActivePlan(ctx, id.UserID)

	case ViewShop:
		if err := requireOwner(id, s); err != nil {
			return err
		}
		return nil

	case ManageShop:
		if err := requireOwner(id, s); err != nil {
			return err
		}
		return g.requireActivePlan(ctx, s.OwnerID)
	}

	return httperr.InternalErr("unknown_action", fmt.Errorf("guard: unknown action %q", action))
}

func requireIdentity(id *Identity) error {
	if id == nil || id.UserID == "" {
		return httperr.UnauthorizedErr("unauthenticated", "Authentication required.")
	}
	return nil
}

func requireOwner(id *Identity, s *shop.Shop) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if s == nil || !s.IsOwnedBy(id.UserID) {
		return httperr.Forbidden("not_shop_owner", "Only the shop owner can do this.")
	}
	return nil
}

func (g *Guard) requireActivePlan(ctx context.Context, accountID string) error {
	active, err := g.billing.IsActive(ctx, accountID)
	if err != nil {
		return err
	}
	if !active {
		return httperr.Forbidden("plan_inactive", "Plan inactive.")
	}
	return nil
}
