package shop

import (
	"regexp"
	"strings"
	"time"

	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// NormalizeSlug lowercases and trims raw and checks it is URL safe.
func NormalizeSlug(raw string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(raw))
	if slug == "" {
		return "", httperr.InvalidInput("invalid_request", "Slug is required.")
	}
	if len(slug) > 100 || !slugPattern.MatchString(slug) {
		return "", httperr.InvalidInput("invalid_slug", "Slug must contain only lowercase letters, digits and dashes.")
	}
	return slug, nil
}

// ParseDateTime reads an RFC 3339 instant as UTC, truncated to the second.
// Stores keep different sub-second precision, so finer instants would
// compare differently per backend.
func ParseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, httperr.InvalidInput("invalid_request", "Incomplete data for appointment.")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, httperr.InvalidInput("invalid_date_time", "dateTime must be an RFC 3339 timestamp.")
	}
	return t.UTC().Truncate(time.Second), nil
}

func newClient(name, phone string) (Client, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return Client{}, httperr.InvalidInput("invalid_request", "Incomplete data for appointment.")
	}
	return Client{Name: name, Phone: phone}, nil
}

func required(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return httperr.InvalidInput("invalid_request", "Incomplete data for appointment.")
		}
	}
	return nil
}

type CreateAppointment struct {
	BarberName  string
	Client      Client
	DateTime    time.Time
	ServiceType string
}

func NewCreateAppointment(barberName, clientName, clientPhone, dateTime, serviceType string) (CreateAppointment, error) {
	if err := required(barberName, serviceType); err != nil {
		return CreateAppointment{}, err
	}
	client, err := newClient(clientName, clientPhone)
	if err != nil {
		return CreateAppointment{}, err
	}
	at, err := ParseDateTime(dateTime)
	if err != nil {
		return CreateAppointment{}, err
	}
	return CreateAppointment{
		BarberName:  strings.TrimSpace(barberName),
		Client:      client,
		DateTime:    at,
		ServiceType: strings.TrimSpace(serviceType),
	}, nil
}

type UpdateAppointment struct {
	BarberID      string
	AppointmentID string
	Client        Client
	DateTime      time.Time
	ServiceType   string
}

func NewUpdateAppointment(barberID, appointmentID, clientName, clientPhone, dateTime, serviceType string) (UpdateAppointment, error) {
	if err := required(serviceType); err != nil {
		return UpdateAppointment{}, err
	}
	client, err := newClient(clientName, clientPhone)
	if err != nil {
		return UpdateAppointment{}, err
	}
	at, err := ParseDateTime(dateTime)
	if err != nil {
		return UpdateAppointment{}, err
	}
	return UpdateAppointment{
		BarberID:      barberID,
		AppointmentID: appointmentID,
		Client:        client,
		DateTime:      at,
		ServiceType:   strings.TrimSpace(serviceType),
	}, nil
}

type OpenSlot struct {
	BarberID    string
	DateTime    time.Time
	ServiceType string
}

func NewOpenSlot(barberID, dateTime, serviceType string) (OpenSlot, error) {
	if err := required(serviceType); err != nil {
		return OpenSlot{}, err
	}
	at, err := ParseDateTime(dateTime)
	if err != nil {
		return OpenSlot{}, err
	}
	return OpenSlot{BarberID: barberID, DateTime: at, ServiceType: strings.TrimSpace(serviceType)}, nil
}

type BookSlot struct {
	BarberID      string
	AppointmentID string
	Client        Client
}

func NewBookSlot(barberID, appointmentID, clientName, clientPhone string) (BookSlot, error) {
	client, err := newClient(clientName, clientPhone)
	if err != nil {
		return BookSlot{}, err
	}
	return BookSlot{BarberID: barberID, AppointmentID: appointmentID, Client: client}, nil
}
