package events

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Topic string

const (
	BarbershopCreated  Topic = "barbershop.created"
	BarberAdded        Topic = "barber.added"
	BarberRemoved      Topic = "barber.removed"
	AppointmentCreated Topic = "appointment.created"
	AppointmentUpdated Topic = "appointment.updated"
	AppointmentDeleted Topic = "appointment.deleted"
	SlotOpened         Topic = "slot.opened"
	SlotBooked         Topic = "slot.booked"
	ClientConnected    Topic = "client.connected"
	ClientDisconnected Topic = "client.disconnected"
)

// Entity is the noun part of the topic ("appointment" for "appointment.created").
func (t Topic) Entity() string {
	entity, _, _ := strings.Cut(string(t), ".")
	return entity
}

type Event struct {
	ID       string          `json:"id"`
	Topic    Topic           `json:"topic"`
	ShopSlug string          `json:"shopSlug"`
	ActorID  string          `json:"actorId,omitempty"`
	EntityID string          `json:"entityId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	At       time.Time       `json:"at"`
}

func New(topic Topic, slug, actorID, entityID string, payload any) Event {
	ev := Event{
		ID:       uuid.NewString(),
		Topic:    topic,
		ShopSlug: slug,
		ActorID:  actorID,
		EntityID: entityID,
		At:       time.Now().UTC(),
	}
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			ev.Payload = b
		}
	}
	return ev
}

// Publisher announces events without blocking or failing the caller.
type Publisher interface {
	Publish(ev Event)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(Event) {}
