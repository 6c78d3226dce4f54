package shop

import (
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

var (
	errBarberNotFound      = httperr.NotFoundErr("barber_not_found", "Barber not found.")
	errAppointmentNotFound = httperr.NotFoundErr("appointment_not_found", "Appointment not found.")
	errTimeConflict        = httperr.Conflict("time_conflict", "The barber already has an appointment at this time.")
)

// New builds an inactive shop with no barbers. The store assigns
// nothing else; Version starts at zero.
func New(ownerID, name, slug string, now time.Time) (*Shop, error) {
	name = strings.TrimSpace(name)
	if name == "" || ownerID == "" {
		return nil, httperr.InvalidInput("invalid_request", "Name is required.")
	}
	normalized, err := NormalizeSlug(slug)
	if err != nil {
		return nil, err
	}
	return &Shop{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		Slug:      normalized,
		Status:    StatusInactive,
		Barbers:   []Barber{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Shop) barberIndexByName(name string) int {
	for i := range s.Barbers {
		if s.Barbers[i].Name == name {
			return i
		}
	}
	return -1
}

func (s *Shop) barberIndexByID(id string) int {
	for i := range s.Barbers {
		if s.Barbers[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Barber) appointmentIndex(id string) int {
	for i := range b.Schedule {
		if b.Schedule[i].ID == id {
			return i
		}
	}
	return -1
}

// occupied reports whether another appointment than skipID sits at exactly at.
func (b *Barber) occupied(at time.Time, skipID string) bool {
	for _, ap := range b.Schedule {
		if ap.ID != skipID && ap.DateTime.Equal(at) {
			return true
		}
	}
	return false
}

// Barber returns a copy of the barber with the given id.
func (s *Shop) Barber(id string) (Barber, error) {
	i := s.barberIndexByID(id)
	if i < 0 {
		return Barber{}, errBarberNotFound
	}
	return s.Barbers[i], nil
}

func (s *Shop) AddBarber(name string) ([]Barber, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, httperr.InvalidInput("invalid_request", "Barber name is required.")
	}
	if s.barberIndexByName(name) >= 0 {
		return nil, httperr.Conflict("barber_already_exists", "Barber already exists.")
	}

	s.Barbers = append(s.Barbers, Barber{
		ID:       uuid.NewString(),
		Name:     name,
		Schedule: []Appointment{},
	})
	return s.Barbers, nil
}

// RemoveBarber drops the barber together with its whole schedule.
func (s *Shop) RemoveBarber(name string) (Barber, error) {
	i := s.barberIndexByName(strings.TrimSpace(name))
	if i < 0 {
		return Barber{}, errBarberNotFound
	}
	removed := s.Barbers[i]
	s.Barbers = append(s.Barbers[:i], s.Barbers[i+1:]...)
	return removed, nil
}

// ListBarbers yields id/name pairs in insertion order. The sequence can
// be ranged over any number of times.
func (s *Shop) ListBarbers() iter.Seq[BarberSummary] {
	return func(yield func(BarberSummary) bool) {
		for _, b := range s.Barbers {
			if !yield(BarberSummary{ID: b.ID, Name: b.Name}) {
				return
			}
		}
	}
}

func (s *Shop) AvailableSlots(barberID string) ([]Slot, error) {
	i := s.barberIndexByID(barberID)
	if i < 0 {
		return nil, errBarberNotFound
	}

	slots := []Slot{}
	for _, ap := range s.Barbers[i].Schedule {
		if !ap.IsOpen() {
			continue
		}
		slots = append(slots, Slot{
			AppointmentID: ap.ID,
			DateTime:      ap.DateTime,
			ServiceType:   ap.ServiceType,
		})
	}
	return slots, nil
}

// CreateAppointment books cmd.Client with the named barber. It returns
// the barber id and the updated schedule.
func (s *Shop) CreateAppointment(cmd CreateAppointment) (string, Appointment, []Appointment, error) {
	i := s.barberIndexByName(cmd.BarberName)
	if i < 0 {
		return "", Appointment{}, nil, errBarberNotFound
	}
	b := &s.Barbers[i]

	if b.occupied(cmd.DateTime, "") {
		return "", Appointment{}, nil, errTimeConflict
	}

	client := cmd.Client
	ap := Appointment{
		ID:          uuid.NewString(),
		Client:      &client,
		DateTime:    cmd.DateTime,
		ServiceType: cmd.ServiceType,
	}
	b.Schedule = append(b.Schedule, ap)
	return b.ID, ap, b.Schedule, nil
}

// UpdateAppointment replaces client, time and service in place; the
// appointment keeps its id and position.
func (s *Shop) UpdateAppointment(cmd UpdateAppointment) ([]Appointment, error) {
	i := s.barberIndexByID(cmd.BarberID)
	if i < 0 {
		return nil, errBarberNotFound
	}
	b := &s.Barbers[i]

	j := b.appointmentIndex(cmd.AppointmentID)
	if j < 0 {
		return nil, errAppointmentNotFound
	}
	if b.occupied(cmd.DateTime, cmd.AppointmentID) {
		return nil, errTimeConflict
	}

	client := cmd.Client
	b.Schedule[j].Client = &client
	b.Schedule[j].DateTime = cmd.DateTime
	b.Schedule[j].ServiceType = cmd.ServiceType
	return b.Schedule, nil
}

func (s *Shop) DeleteAppointment(barberID, appointmentID string) ([]Appointment, error) {
	i := s.barberIndexByID(barberID)
	if i < 0 {
		return nil, errBarberNotFound
	}
	b := &s.Barbers[i]

	j := b.appointmentIndex(appointmentID)
	if j < 0 {
		return nil, errAppointmentNotFound
	}
	b.Schedule = append(b.Schedule[:j], b.Schedule[j+1:]...)
	return b.Schedule, nil
}

// OpenSlot publishes bookable availability for a barber.
func (s *Shop) OpenSlot(cmd OpenSlot) (Appointment, error) {
	i := s.barberIndexByID(cmd.BarberID)
	if i < 0 {
		return Appointment{}, errBarberNotFound
	}
	b := &s.Barbers[i]

	if b.occupied(cmd.DateTime, "") {
		return Appointment{}, errTimeConflict
	}

	ap := Appointment{
		ID:          uuid.NewString(),
		DateTime:    cmd.DateTime,
		ServiceType: cmd.ServiceType,
	}
	b.Schedule = append(b.Schedule, ap)
	return ap, nil
}

// BookSlot attaches a client to an open slot.
func (s *Shop) BookSlot(cmd BookSlot) (Appointment, error) {
	i := s.barberIndexByID(cmd.BarberID)
	if i < 0 {
		return Appointment{}, errBarberNotFound
	}
	b := &s.Barbers[i]

	j := b.appointmentIndex(cmd.AppointmentID)
	if j < 0 {
		return Appointment{}, errAppointmentNotFound
	}
	if !b.Schedule[j].IsOpen() {
		return Appointment{}, httperr.Conflict("slot_already_booked", "This slot is already booked.")
	}

	client := cmd.Client
	b.Schedule[j].Client = &client
	return b.Schedule[j], nil
}
