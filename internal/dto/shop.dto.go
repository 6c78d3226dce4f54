package dto

import (
	"time"

	"github.com/BruksfildServices01/trimbook/internal/domain/identity"
	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
)

// Public projections leave client contact data out.

type PublicAppointmentDTO struct {
	ID          string       `json:"id"`
	DateTime    time.Time    `json:"dateTime"`
	ServiceType string       `json:"serviceType"`
	Booked      bool         `json:"booked"`
	Client      *shop.Client `json:"client,omitempty"`
}

func newPublicAppointment(ap shop.Appointment) PublicAppointmentDTO {
	return PublicAppointmentDTO{
		ID:          ap.ID,
		DateTime:    ap.DateTime,
		ServiceType: ap.ServiceType,
		Booked:      !ap.IsOpen(),
	}
}

// NewPublicSchedule projects a barber's schedule for an anonymous caller.
// Only the appointment with id ownID keeps its client, so the caller can
// confirm their own booking; pass "" to hide every client.
func NewPublicSchedule(schedule []shop.Appointment, ownID string) []PublicAppointmentDTO {
	out := make([]PublicAppointmentDTO, 0, len(schedule))
	for _, ap := range schedule {
		pa := newPublicAppointment(ap)
		if ownID != "" && ap.ID == ownID && ap.Client != nil {
			client := *ap.Client
			pa.Client = &client
		}
		out = append(out, pa)
	}
	return out
}

type PublicBarberDTO struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Schedule []PublicAppointmentDTO `json:"schedule"`
}

type PublicShopDTO struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Slug    string            `json:"slug"`
	Status  shop.Status       `json:"status"`
	Barbers []PublicBarberDTO `json:"barbers"`
}

func NewPublicShop(s *shop.Shop) PublicShopDTO {
	out := PublicShopDTO{
		ID:      s.ID,
		Name:    s.Name,
		Slug:    s.Slug,
		Status:  s.Status,
		Barbers: make([]PublicBarberDTO, 0, len(s.Barbers)),
	}
	for _, b := range s.Barbers {
		out.Barbers = append(out.Barbers, PublicBarberDTO{
			ID:       b.ID,
			Name:     b.Name,
			Schedule: NewPublicSchedule(b.Schedule, ""),
		})
	}
	return out
}

type UserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewUser(u *identity.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}
