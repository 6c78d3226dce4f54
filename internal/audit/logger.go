package audit

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/trimbook/internal/events"
	"github.com/BruksfildServices01/trimbook/internal/models"
)

// Logger persists shop events as audit rows. It is an events.Sink.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Handle(ctx context.Context, ev events.Event) error {
	// socket presence is not an audited action
	if strings.HasPrefix(string(ev.Topic), "client.") {
		return nil
	}

	row := models.AuditLog{
		BarbershopSlug: ev.ShopSlug,
		UserID:         ev.ActorID,
		Action:         string(ev.Topic),
		Entity:         ev.Topic.Entity(),
		EntityID:       ev.EntityID,
		Metadata:       string(ev.Payload),
		CreatedAt:      ev.At,
	}

	return l.db.WithContext(ctx).Create(&row).Error
}

type Filter struct {
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

type Page struct {
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
	Logs  []models.AuditLog `json:"logs"`
}

// List returns a shop's audit rows, newest first.
func (l *Logger) List(ctx context.Context, slug string, f Filter) (*Page, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}

	q := l.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("barbershop_slug = ?", slug)

	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	logs := []models.AuditLog{}
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	return &Page{Page: f.Page, Limit: f.Limit, Total: total, Logs: logs}, nil
}

var _ events.Sink = (*Logger)(nil)
