package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/models"
)

type Status string

const (
	StatusNone    Status = ""
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
)

// Checker answers whether an account's plan is currently active.
type Checker interface {
	IsActive(ctx context.Context, accountID string) (bool, error)
}

// Service is the payments ledger. The most recent payment by due date
// decides the account standing.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) CurrentStatus(ctx context.Context, accountID string) (Status, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("due_date DESC").
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return StatusNone, nil
	}
	if err != nil {
		return StatusNone, httperr.Unavailable("billing_unavailable", fmt.Errorf("billing.CurrentStatus: %w", err))
	}
	return Status(p.Status), nil
}

func (s *Service) IsActive(ctx context.Context, accountID string) (bool, error) {
	status, err := s.CurrentStatus(ctx, accountID)
	if err != nil {
		return false, err
	}
	return status == StatusPaid, nil
}

// Record stores a payment, updating the row with the same provider id
// when one exists.
func (s *Service) Record(ctx context.Context, p *models.Payment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.ProviderPaymentID != "" {
			var existing models.Payment
			err := tx.Where("provider_payment_id = ?", p.ProviderPaymentID).Take(&existing).Error
			if err == nil {
				existing.Status = p.Status
				existing.DueDate = p.DueDate
				existing.AccountID = p.AccountID
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				*p = existing
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return tx.Create(p).Error
	})
}

// AlwaysActive disables plan gating.
type AlwaysActive struct{}

func (AlwaysActive) IsActive(context.Context, string) (bool, error) {
	return true, nil
}

var (
	_ Checker = (*Service)(nil)
	_ Checker = AlwaysActive{}
)

func nowUTC() time.Time {
	return time.Now().UTC()
}
