package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/BruksfildServices01/trimbook/internal/domain/shop"
)

// Barbershop stores the whole shop aggregate in one row. Barbers and
// their schedules live in a JSON document column; Version guards
// concurrent writers.
type Barbershop struct {
	ID      string `gorm:"size:36;primaryKey" json:"id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	OwnerID string `gorm:"size:36;uniqueIndex;not null" json:"owner_id"`
	Slug    string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Status  string `gorm:"size:20;default:'inactive'" json:"status"`

	Barbers datatypes.JSONType[[]shop.Barber] `json:"barbers"`
	Version int64                             `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
