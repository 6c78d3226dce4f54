package shop

import (
	"context"
	"iter"

	domain "github.com/BruksfildServices01/trimbook/internal/domain/shop"
	"github.com/BruksfildServices01/trimbook/internal/events"
	"github.com/BruksfildServices01/trimbook/internal/guard"
	"github.com/BruksfildServices01/trimbook/internal/metrics"
)

// ======================================================
// BARBERS (owner)
// ======================================================

func (s *Service) AddBarber(ctx context.Context, id *guard.Identity, slug, name string) ([]domain.Barber, error) {
	var barbers []domain.Barber
	sh, err := s.mutate(ctx, guard.ManageShop, id, slug, func(sh *domain.Shop) error {
		var err error
		barbers, err = sh.AddBarber(name)
		return err
	})
	if err != nil {
		return nil, err
	}

	added := barbers[len(barbers)-1]
	s.publish(events.BarberAdded, sh, id, added.ID, map[string]string{"name": added.Name})
	return barbers, nil
}

func (s *Service) RemoveBarber(ctx context.Context, id *guard.Identity, slug, name string) (domain.Barber, error) {
	var removed domain.Barber
	sh, err := s.mutate(ctx, guard.ManageShop, id, slug, func(sh *domain.Shop) error {
		var err error
		removed, err = sh.RemoveBarber(name)
		return err
	})
	if err != nil {
		return domain.Barber{}, err
	}

	s.publish(events.BarberRemoved, sh, id, removed.ID, map[string]any{
		"name":                  removed.Name,
		"cancelledAppointments": len(removed.Schedule),
	})
	return removed, nil
}

// OpenSlot publishes an unbooked appointment that clients can claim.
func (s *Service) OpenSlot(ctx context.Context, id *guard.Identity, slug string, cmd domain.OpenSlot) (domain.Appointment, error) {
	var ap domain.Appointment
	sh, err := s.mutate(ctx, guard.ManageShop, id, slug, func(sh *domain.Shop) error {
		var err error
		ap, err = sh.OpenSlot(cmd)
		return err
	})
	metrics.RecordBooking("open_slot", outcome(err))
	if err != nil {
		return domain.Appointment{}, err
	}

	s.publish(events.SlotOpened, sh, id, ap.ID, map[string]any{
		"barberId":    cmd.BarberID,
		"dateTime":    ap.DateTime,
		"serviceType": ap.ServiceType,
	})
	return ap, nil
}

// ======================================================
// PUBLIC READS
// ======================================================

func (s *Service) ListBarbers(ctx context.Context, slug string) (iter.Seq[domain.BarberSummary], error) {
	sh, err := s.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	return sh.ListBarbers(), nil
}

func (s *Service) AvailableSlots(ctx context.Context, slug, barberID string) ([]domain.Slot, error) {
	sh, err := s.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	return sh.AvailableSlots(barberID)
}

// ======================================================
// PUBLIC BOOKING
// ======================================================

type CreatedAppointment struct {
	BarberID    string
	Appointment domain.Appointment
	Schedule    []domain.Appointment
}

func (s *Service) CreateAppointment(ctx context.Context, id *guard.Identity, slug string, cmd domain.CreateAppointment) (*CreatedAppointment, error) {
	var out CreatedAppointment
	sh, err := s.mutate(ctx, guard.PublicBooking, id, slug, func(sh *domain.Shop) error {
		var err error
		out.BarberID, out.Appointment, out.Schedule, err = sh.CreateAppointment(cmd)
		return err
	})
	metrics.RecordBooking("create", outcome(err))
	if err != nil {
		return nil, err
	}

	s.publish(events.AppointmentCreated, sh, id, out.Appointment.ID, map[string]any{
		"barberId":    out.BarberID,
		"dateTime":    out.Appointment.DateTime,
		"serviceType": out.Appointment.ServiceType,
	})
	return &out, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id *guard.Identity, slug string, cmd domain.UpdateAppointment) ([]domain.Appointment, error) {
	var schedule []domain.Appointment
	sh, err := s.mutate(ctx, guard.PublicBooking, id, slug, func(sh *domain.Shop) error {
		var err error
		schedule, err = sh.UpdateAppointment(cmd)
		return err
	})
	metrics.RecordBooking("update", outcome(err))
	if err != nil {
		return nil, err
	}

	s.publish(events.AppointmentUpdated, sh, id, cmd.AppointmentID, map[string]any{
		"barberId":    cmd.BarberID,
		"dateTime":    cmd.DateTime,
		"serviceType": cmd.ServiceType,
	})
	return schedule, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id *guard.Identity, slug, barberID, appointmentID string) ([]domain.Appointment, error) {
	var schedule []domain.Appointment
	sh, err := s.mutate(ctx, guard.PublicBooking, id, slug, func(sh *domain.Shop) error {
		var err error
		schedule, err = sh.DeleteAppointment(barberID, appointmentID)
		return err
	})
	metrics.RecordBooking("delete", outcome(err))
	if err != nil {
		return nil, err
	}

	s.publish(events.AppointmentDeleted, sh, id, appointmentID, map[string]any{
		"barberId":  barberID,
		"remaining": len(schedule),
	})
	return schedule, nil
}

// BookSlot claims an open slot for a client.
func (s *Service) BookSlot(ctx context.Context, id *guard.Identity, slug string, cmd domain.BookSlot) (domain.Appointment, error) {
	var ap domain.Appointment
	sh, err := s.mutate(ctx, guard.PublicBooking, id, slug, func(sh *domain.Shop) error {
		var err error
		ap, err = sh.BookSlot(cmd)
		return err
	})
	metrics.RecordBooking("book_slot", outcome(err))
	if err != nil {
		return domain.Appointment{}, err
	}

	s.publish(events.SlotBooked, sh, id, ap.ID, map[string]any{
		"barberId": cmd.BarberID,
		"dateTime": ap.DateTime,
	})
	return ap, nil
}
