package models

import "time"

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// AccountID is the shop owner's user id.
	AccountID         string    `gorm:"size:36;index;not null" json:"account_id"`
	DueDate           time.Time `gorm:"index" json:"due_date"`
	Status            string    `gorm:"size:20;default:'pending'" json:"status"`
	ProviderPaymentID string    `gorm:"size:64;index" json:"provider_payment_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
