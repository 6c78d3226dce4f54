package shop

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/events"
	"github.com/BruksfildServices01/trimbook/internal/guard"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/metrics"
)

const (
	maxSaveAttempts = 8
	maxReadAttempts = 3
	readBackoff     = 50 * time.Millisecond
	staleBackoff    = 5 * time.Millisecond
)

// ======================================================
// SERVICE
// ======================================================

// Service runs the registry and schedule operations against the shop
// store. Every mutation is load → authorize → apply → save-if-unchanged,
// retried when another writer got there first. Writers of one shop queue
// per process, so retries only happen across processes.
type Service struct {
	repo      domain.Repository
	locks     *slugLocks
	guard     *guard.Guard
	publisher events.Publisher
	timeout   time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewService(
	repo domain.Repository,
	g *guard.Guard,
	publisher events.Publisher,
	timeout time.Duration,
	log *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		locks:     newSlugLocks(),
		guard:     g,
		publisher: publisher,
		timeout:   timeout,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// withStore bounds a single storage call by the configured timeout.
func (s *Service) withStore(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

// read retries idempotent lookups that failed with Unavailable.
func (s *Service) read(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxReadAttempts; attempt++ {
		err = s.withStore(ctx, fn)
		if httperr.KindOf(err) != httperr.KindUnavailable || attempt == maxReadAttempts {
			return err
		}

		if err := sleep(ctx, time.Duration(attempt)*readBackoff); err != nil {
			return err
		}
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return contextErr(ctx.Err())
	case <-t.C:
		return nil
	}
}

func contextErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return httperr.Canceled(err)
	}
	return httperr.Unavailable("storage_unavailable", err)
}

// staleWait spreads out writers from different processes that keep
// colliding on the same version.
func staleWait(attempt int) time.Duration {
	return time.Duration(attempt)*staleBackoff + rand.N(staleBackoff)
}

func (s *Service) load(ctx context.Context, slug string) (*domain.Shop, error) {
	var sh *domain.Shop
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		sh, err = s.repo.GetBySlug(ctx, normalizeLookup(slug))
		return err
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// mutate applies fn to a fresh copy of the shop and saves it if nobody
// else saved in between. fn must be safe to run more than once.
func (s *Service) mutate(
	ctx context.Context,
	action guard.Action,
	id *guard.Identity,
	slug string,
	fn func(sh *domain.Shop) error,
) (*domain.Shop, error) {

	release, err := s.locks.acquire(ctx, normalizeLookup(slug))
	if err != nil {
		return nil, contextErr(err)
	}
	defer release()

	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		sh, err := s.load(ctx, slug)
		if err != nil {
			return nil, err
		}

		// owner and billing don't change between attempts
		if attempt == 1 {
			if err := s.guard.Authorize(ctx, action, id, sh); err != nil {
				return nil, err
			}
		}

		if err := fn(sh); err != nil {
			return nil, err
		}
		sh.UpdatedAt = s.now()

		err = s.withStore(ctx, func(ctx context.Context) error {
			return s.repo.Save(ctx, sh)
		})
		if errors.Is(err, domain.ErrStaleVersion) {
			metrics.RecordVersionConflict()
			s.log.Debug("shop changed during update, retrying",
				zap.String("slug", sh.Slug),
				zap.Int("attempt", attempt),
			)
			if attempt < maxSaveAttempts {
				if err := sleep(ctx, staleWait(attempt)); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err != nil {
			s.logSaveFailure(sh.Slug, err)
			return nil, err
		}
		return sh, nil
	}

	return nil, httperr.Unavailable(
		"storage_contention",
		fmt.Errorf("shop %q: gave up after %d conflicting saves", slug, maxSaveAttempts),
	)
}

func (s *Service) logSaveFailure(slug string, err error) {
	switch httperr.KindOf(err) {
	case httperr.KindUnavailable, httperr.KindInternal:
		s.log.Warn("shop save failed", zap.String("slug", slug), zap.Error(err))
	default:
		s.log.Debug("shop save abandoned", zap.String("slug", slug), zap.Error(err))
	}
}

func (s *Service) publish(topic events.Topic, sh *domain.Shop, id *guard.Identity, entityID string, payload any) {
	actor := ""
	if id != nil {
		actor = id.UserID
	}
	s.publisher.Publish(events.New(topic, sh.Slug, actor, entityID, payload))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(httperr.KindOf(err))
}
