package billing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/models"
)

// PaymentFetcher is the part of the Mercado Pago payment client we use.
type PaymentFetcher interface {
	Get(ctx context.Context, id int) (*payment.Response, error)
}

// MercadoPagoSync turns provider notifications into ledger entries. The
// payment's external_reference carries the account id.
type MercadoPagoSync struct {
	payments PaymentFetcher
	ledger   *Service
	period   time.Duration
	log      *zap.Logger
}

func NewMercadoPagoClient(accessToken string) (PaymentFetcher, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return payment.NewClient(cfg), nil
}

func NewMercadoPagoSync(payments PaymentFetcher, ledger *Service, period time.Duration, log *zap.Logger) *MercadoPagoSync {
	return &MercadoPagoSync{
		payments: payments,
		ledger:   ledger,
		period:   period,
		log:      log,
	}
}

func (m *MercadoPagoSync) HandleNotification(ctx context.Context, paymentID int) (*models.Payment, error) {
	resp, err := m.payments.Get(ctx, paymentID)
	if err != nil {
		m.log.Warn("mercadopago payment lookup failed", zap.Int("payment_id", paymentID), zap.Error(err))
		return nil, httperr.Unavailable("billing_provider_unavailable", err)
	}
	if resp.ExternalReference == "" {
		return nil, httperr.InvalidInput("missing_external_reference", "Payment has no account reference.")
	}

	p := &models.Payment{
		AccountID:         resp.ExternalReference,
		ProviderPaymentID: strconv.Itoa(resp.ID),
		Status:            string(StatusPending),
		DueDate:           nowUTC(),
	}
	if resp.Status == "approved" {
		p.Status = string(StatusPaid)
		p.DueDate = nowUTC().Add(m.period)
	}

	if err := m.ledger.Record(ctx, p); err != nil {
		return nil, httperr.Unavailable("billing_unavailable", err)
	}

	m.log.Info("payment recorded",
		zap.String("account_id", p.AccountID),
		zap.String("status", p.Status),
		zap.String("provider_payment_id", p.ProviderPaymentID),
	)
	return p, nil
}
