package shop

import (
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Client struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
}

// Appointment without a client is an open slot.
type Appointment struct {
	ID          string    `json:"id" bson:"id"`
	Client      *Client   `json:"client,omitempty" bson:"client,omitempty"`
	DateTime    time.Time `json:"dateTime" bson:"dateTime"`
	ServiceType string    `json:"serviceType" bson:"serviceType"`
}

func (a Appointment) IsOpen() bool {
	return a.Client == nil
}

type Barber struct {
	ID       string        `json:"id" bson:"id"`
	Name     string        `json:"name" bson:"name"`
	Schedule []Appointment `json:"schedule" bson:"schedule"`
}

// Shop is the aggregate root. Barbers and their schedules are only
// mutated through its methods and persisted as one unit guarded by Version.
type Shop struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	OwnerID   string    `json:"ownerId" bson:"ownerId"`
	Slug      string    `json:"slug" bson:"slug"`
	Status    Status    `json:"status" bson:"status"`
	Barbers   []Barber  `json:"barbers" bson:"barbers"`
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type BarberSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Slot struct {
	AppointmentID string    `json:"appointmentId"`
	DateTime      time.Time `json:"dateTime"`
	ServiceType   string    `json:"serviceType"`
}

// Clone returns a deep copy so callers can mutate without aliasing
// stored state.
func (s *Shop) Clone() *Shop {
	if s == nil {
		return nil
	}
	out := *s
	out.Barbers = make([]Barber, len(s.Barbers))
	for i, b := range s.Barbers {
		nb := b
		nb.Schedule = make([]Appointment, len(b.Schedule))
		for j, ap := range b.Schedule {
			if ap.Client != nil {
				c := *ap.Client
				ap.Client = &c
			}
			nb.Schedule[j] = ap
		}
		out.Barbers[i] = nb
	}
	return &out
}

// IsOwnedBy reports whether userID is the shop owner.
func (s *Shop) IsOwnedBy(userID string) bool {
	return userID != "" && s.OwnerID == userID
}
