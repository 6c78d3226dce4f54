package shop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/trimbook/internal/billing"
	domain "github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/events"
	"github.com/BruksfildServices01/trimbook/internal/guard"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/infra/repository"
)

type publisherSpy struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *publisherSpy) Publish(ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *publisherSpy) topics() []events.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Topic, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Topic)
	}
	return out
}

type inactivePlan struct{}

func (inactivePlan) IsActive(context.Context, string) (bool, error) { return false, nil }

var (
	owner    = &guard.Identity{UserID: "owner-1"}
	stranger = &guard.Identity{UserID: "someone-else"}
)

func newService(t *testing.T, repo domain.Repository) (*Service, *publisherSpy) {
	t.Helper()
	spy := &publisherSpy{}
	svc := NewService(repo, guard.New(billing.AlwaysActive{}), spy, time.Second, zap.NewNop())
	return svc, spy
}

// seedShop creates "joes-cuts" owned by owner with barber Marco.
func seedShop(t *testing.T, svc *Service) string {
	t.Helper()
	ctx := context.Background()
	_, err := svc.CreateShop(ctx, owner, CreateShopInput{Name: "Joe's Cuts", Slug: "joes-cuts"})
	require.NoError(t, err)
	barbers, err := svc.AddBarber(ctx, owner, "joes-cuts", "Marco")
	require.NoError(t, err)
	return barbers[0].ID
}

func booking(t *testing.T, barber, at string) domain.CreateAppointment {
	t.Helper()
	cmd, err := domain.NewCreateAppointment(barber, "Sam", "555-1111", at, "Haircut")
	require.NoError(t, err)
	return cmd
}

func scheduleOf(t *testing.T, svc *Service, barberID string) []domain.Appointment {
	t.Helper()
	sh, err := svc.ResolveBySlug(context.Background(), "joes-cuts")
	require.NoError(t, err)
	b, err := sh.Barber(barberID)
	require.NoError(t, err)
	return b.Schedule
}

func TestCreateShop_ThenResolve(t *testing.T) {
	ctx := context.Background()
	svc, spy := newService(t, repository.NewShopMemoryRepository())

	created, err := svc.CreateShop(ctx, owner, CreateShopInput{Name: "Joe's Cuts", Slug: " Joes-Cuts "})
	require.NoError(t, err)
	assert.Equal(t, "joes-cuts", created.Slug)
	assert.Equal(t, domain.StatusInactive, created.Status)

	got, err := svc.ResolveBySlug(ctx, "joes-cuts")
	require.NoError(t, err)
	assert.Equal(t, "Joe's Cuts", got.Name)
	assert.Empty(t, got.Barbers)

	_, err = svc.CreateShop(ctx, stranger, CreateShopInput{Name: "Other", Slug: "joes-cuts"})
	assert.Equal(t, httperr.KindConflict, httperr.KindOf(err))

	_, err = svc.CreateShop(ctx, owner, CreateShopInput{Name: "Second", Slug: "second-shop"})
	assert.True(t, httperr.IsBusiness(err, "owner_already_has_shop"), "got %v", err)

	mine, err := svc.ResolveByOwner(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, mine.ID)

	none, err := svc.ResolveByOwner(ctx, stranger.UserID)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = svc.ResolveBySlug(ctx, "missing")
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))

	assert.Equal(t, []events.Topic{events.BarbershopCreated}, spy.topics())
}

func TestCreateShop_Guarded(t *testing.T) {
	ctx := context.Background()

	svc, _ := newService(t, repository.NewShopMemoryRepository())
	_, err := svc.CreateShop(ctx, nil, CreateShopInput{Name: "x", Slug: "x"})
	assert.Equal(t, httperr.KindUnauthorized, httperr.KindOf(err))

	gated := NewService(repository.NewShopMemoryRepository(), guard.New(inactivePlan{}), events.Nop{}, time.Second, zap.NewNop())
	_, err = gated.CreateShop(ctx, owner, CreateShopInput{Name: "x", Slug: "x"})
	assert.True(t, httperr.IsBusiness(err, "plan_inactive"))

	_, err = svc.CreateShop(ctx, owner, CreateShopInput{Name: "x", Slug: "Not A Slug!"})
	assert.Equal(t, httperr.KindInvalidInput, httperr.KindOf(err))
}

func TestAddBarber_DuplicateLeavesListUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewShopMemoryRepository())
	_, err := svc.CreateShop(ctx, owner, CreateShopInput{Name: "Joe's", Slug: "joes-cuts"})
	require.NoError(t, err)

	_, err = svc.AddBarber(ctx, owner, "joes-cuts", "Alice")
	require.NoError(t, err)

	_, err = svc.AddBarber(ctx, owner, "joes-cuts", "Alice")
	assert.Equal(t, httperr.KindConflict, httperr.KindOf(err))

	sh, err := svc.ResolveBySlug(ctx, "joes-cuts")
	require.NoError(t, err)
	assert.Len(t, sh.Barbers, 1)
}

func TestBarberManagement_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewShopMemoryRepository())
	seedShop(t, svc)

	_, err := svc.AddBarber(ctx, stranger, "joes-cuts", "Eve")
	assert.True(t, httperr.IsBusiness(err, "not_shop_owner"))

	_, err = svc.RemoveBarber(ctx, nil, "joes-cuts", "Marco")
	assert.Equal(t, httperr.KindUnauthorized, httperr.KindOf(err))

	_, err = svc.OwnerView(ctx, stranger, "joes-cuts")
	assert.Equal(t, httperr.KindForbidden, httperr.KindOf(err))

	sh, err := svc.OwnerView(ctx, owner, "joes-cuts")
	require.NoError(t, err)
	assert.Len(t, sh.Barbers, 1)
}

func TestAppointments_SameInstantConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewShopMemoryRepository())
	barberID := seedShop(t, svc)

	slots, err := svc.AvailableSlots(ctx, "joes-cuts", barberID)
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = svc.CreateAppointment(ctx, nil, "joes-cuts", booking(t, "Marco", "2024-01-01T10:00:00Z"))
	require.NoError(t, err)

	_, err = svc.CreateAppointment(ctx, nil, "joes-cuts", booking(t, "Marco", "2024-01-01T10:00:00Z"))
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))

	created, err := svc.CreateAppointment(ctx, nil, "joes-cuts", booking(t, "Marco", "2024-01-01T10:30:00Z"))
	require.NoError(t, err)
	assert.Equal(t, barberID, created.BarberID)
	assert.Len(t, created.Schedule, 2)

	_, err = svc.CreateAppointment(ctx, nil, "joes-cuts", booking(t, "Nobody", "2024-01-01T11:00:00Z"))
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))
}

func TestUpdateAppointment_NotFoundLeavesScheduleUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewShopMemoryRepository())
	barberID := seedShop(t, svc)

	created, err := svc.CreateAppointment(ctx, nil, "joes-cuts", booking(t, "Marco", "2024-01-01T10:00:00Z"))
	require.NoError(t, err)
	before := scheduleOf(t, svc, barberID)

	cmd, err := domain.NewUpdateAppointment(barberID, "missing", "Kim", "555-2222", "2024-01-02T10:00:00Z", "Shave")
	require.NoError(t, err)
	_, err = svc.UpdateAppointment(ctx, nil, "joes-cuts", cmd)
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))
	assert.Equal(t, before, scheduleOf(t, svc, barberID))

	cmd, err = domain.NewUpdateAppointment(barberID, created.Appointment.ID, "Kim", "555-2222", "2024-01-02T10:00:00Z", "Shave")
	require.NoError(t, err)
	schedule, err := svc.UpdateAppointment(ctx, nil, "joes-cuts", cmd)
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, created.Appointment.ID, schedule[0].ID)
	assert.Equal(t, "Kim", schedule[0].Client.Name)
}

func TestDeleteAppointment_Twice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewShopMemoryRepository())
	barberID := seedShop(t, svc)

	first, err := svc.CreateAppointment(ctx, nil, "joes-cuts", booking(t, "Marco", "2024-01-01T10:00:00Z"))
	require.NoError(t, err)
	second, err := svc.CreateAppointment(ctx, nil, "joes-cuts", booking(t, "Marco", "2024-01-01T11:00:00Z"))
	require.NoError(t, err)

	remaining, err := svc.DeleteAppointment(ctx, nil, "joes-cuts", barberID, first.Appointment.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, second.Appointment.ID, remaining[0].ID)

	_, err = svc.DeleteAppointment(ctx, nil, "joes-cuts", barberID, first.Appointment.ID)
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))
}

func TestOpenAndBookSlot(t *testing.T) {
	ctx := context.Background()
	svc, spy := newService(t, repository.NewShopMemoryRepository())
	barberID := seedShop(t, svc)

	open, err := domain.NewOpenSlot(barberID, "2024-05-01T09:00:00Z", "Haircut")
	require.NoError(t, err)

	_, err = svc.OpenSlot(ctx, stranger, "joes-cuts", open)
	assert.Equal(t, httperr.KindForbidden, httperr.KindOf(err))

	slot, err := svc.OpenSlot(ctx, owner, "joes-cuts", open)
	require.NoError(t, err)

	slots, err := svc.AvailableSlots(ctx, "joes-cuts", barberID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, slot.ID, slots[0].AppointmentID)

	book, err := domain.NewBookSlot(barberID, slot.ID, "Sam", "555-1111")
	require.NoError(t, err)
	_, err = svc.BookSlot(ctx, nil, "joes-cuts", book)
	require.NoError(t, err)

	_, err = svc.BookSlot(ctx, nil, "joes-cuts", book)
	assert.True(t, httperr.IsBusiness(err, "slot_already_booked"))

	slots, err = svc.AvailableSlots(ctx, "joes-cuts", barberID)
	require.NoError(t, err)
	assert.Empty(t, slots)

	assert.Equal(t, []events.Topic{
		events.BarbershopCreated,
		events.BarberAdded,
		events.SlotOpened,
		events.SlotBooked,
	}, spy.topics())
}

func TestListBarbers_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewShopMemoryRepository())
	seedShop(t, svc)
	_, err := svc.AddBarber(ctx, owner, "joes-cuts", "Alice")
	require.NoError(t, err)

	seq, err := svc.ListBarbers(ctx, "joes-cuts")
	require.NoError(t, err)

	for range 2 {
		var names []string
		for b := range seq {
			names = append(names, b.Name)
		}
		assert.Equal(t, []string{"Marco", "Alice"}, names)
	}

	removed, err := svc.RemoveBarber(ctx, owner, "joes-cuts", "Marco")
	require.NoError(t, err)
	assert.Equal(t, "Marco", removed.Name)
}

func TestCreateAppointment_ParallelIdenticalBookings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, repository.NewShopMemoryRepository())
	barberID := seedShop(t, svc)

	const n = 32
	cmd := booking(t, "Marco", "2024-01-01T10:00:00Z")
	var ok, conflicts, other atomic.Int32

	var g errgroup.Group
	for range n {
		g.Go(func() error {
			_, err := svc.CreateAppointment(ctx, nil, "joes-cuts", cmd)
			switch {
			case err == nil:
				ok.Add(1)
			case httperr.KindOf(err) == httperr.KindConflict:
				conflicts.Add(1)
			default:
				other.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(n-1), conflicts.Load())
	assert.Zero(t, other.Load())
	assert.Len(t, scheduleOf(t, svc, barberID), 1)
}

// staleRepo rejects every save as if another writer always won.
type staleRepo struct {
	domain.Repository
	saves atomic.Int32
}

func (r *staleRepo) Save(context.Context, *domain.Shop) error {
	r.saves.Add(1)
	return domain.ErrStaleVersion
}

func TestMutate_GivesUpAfterRepeatedStaleSaves(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewShopMemoryRepository()
	seedSvc, _ := newService(t, mem)
	seedShop(t, seedSvc)

	repo := &staleRepo{Repository: mem}
	svc, spy := newService(t, repo)

	_, err := svc.AddBarber(ctx, owner, "joes-cuts", "Alice")
	assert.Equal(t, httperr.KindUnavailable, httperr.KindOf(err))
	assert.Equal(t, int32(maxSaveAttempts), repo.saves.Load())
	assert.Empty(t, spy.topics(), "no event for an uncommitted change")
}

// flakyRepo fails the first reads with Unavailable.
type flakyRepo struct {
	domain.Repository
	failures atomic.Int32
}

func (r *flakyRepo) GetBySlug(ctx context.Context, slug string) (*domain.Shop, error) {
	if r.failures.Add(-1) >= 0 {
		return nil, httperr.Unavailable("storage_unavailable", errors.New("connection reset"))
	}
	return r.Repository.GetBySlug(ctx, slug)
}

func TestReads_RetryUnavailable(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewShopMemoryRepository()
	seedSvc, _ := newService(t, mem)
	seedShop(t, seedSvc)

	repo := &flakyRepo{Repository: mem}
	repo.failures.Store(maxReadAttempts - 1)
	svc, _ := newService(t, repo)

	sh, err := svc.ResolveBySlug(ctx, "joes-cuts")
	require.NoError(t, err)
	assert.Equal(t, "joes-cuts", sh.Slug)

	repo.failures.Store(maxReadAttempts)
	_, err = svc.ResolveBySlug(ctx, "joes-cuts")
	assert.Equal(t, httperr.KindUnavailable, httperr.KindOf(err))
}

// slowRepo never answers before the deadline.
type slowRepo struct {
	domain.Repository
}

func (slowRepo) GetBySlug(ctx context.Context, _ string) (*domain.Shop, error) {
	<-ctx.Done()
	return nil, httperr.Unavailable("storage_unavailable", ctx.Err())
}

func TestStorageTimeout(t *testing.T) {
	svc := NewService(slowRepo{}, guard.New(billing.AlwaysActive{}), events.Nop{}, 10*time.Millisecond, zap.NewNop())

	start := time.Now()
	_, err := svc.ResolveBySlug(context.Background(), "joes-cuts")
	assert.Equal(t, httperr.KindUnavailable, httperr.KindOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}
