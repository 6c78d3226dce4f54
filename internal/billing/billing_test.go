package billing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	dbpkg "github.com/BruksfildServices01/trimbook/internal/db"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
	"github.com/BruksfildServices01/trimbook/internal/models"
)

func newLedger(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := dbpkg.NewSQLite(dsn)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return NewService(db)
}

func TestService_LatestPaymentByDueDateWins(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t)

	status, err := ledger.CurrentStatus(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, StatusNone, status)

	active, err := ledger.IsActive(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, active)

	now := time.Now().UTC()
	require.NoError(t, ledger.Record(ctx, &models.Payment{AccountID: "owner-1", DueDate: now.Add(-48 * time.Hour), Status: "pending"}))
	require.NoError(t, ledger.Record(ctx, &models.Payment{AccountID: "owner-1", DueDate: now.Add(720 * time.Hour), Status: "paid"}))
	require.NoError(t, ledger.Record(ctx, &models.Payment{AccountID: "owner-2", DueDate: now.Add(900 * time.Hour), Status: "pending"}))

	active, err = ledger.IsActive(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = ledger.IsActive(ctx, "owner-2")
	require.NoError(t, err)
	assert.False(t, active)
}

type fetcherMock struct{ mock.Mock }

func (m *fetcherMock) Get(ctx context.Context, id int) (*payment.Response, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Response), args.Error(1)
}

func TestMercadoPagoSync_HandleNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("approved payment activates the plan", func(t *testing.T) {
		ledger := newLedger(t)
		fetcher := new(fetcherMock)
		fetcher.On("Get", mock.Anything, 123).
			Return(&payment.Response{ID: 123, Status: "approved", ExternalReference: "owner-1"}, nil).Twice()

		sync := NewMercadoPagoSync(fetcher, ledger, 720*time.Hour, zap.NewNop())

		p, err := sync.HandleNotification(ctx, 123)
		require.NoError(t, err)
		assert.Equal(t, "paid", p.Status)
		assert.Equal(t, "123", p.ProviderPaymentID)

		// replayed notification updates the same row
		again, err := sync.HandleNotification(ctx, 123)
		require.NoError(t, err)
		assert.Equal(t, p.ID, again.ID)

		active, err := ledger.IsActive(ctx, "owner-1")
		require.NoError(t, err)
		assert.True(t, active)
		fetcher.AssertExpectations(t)
	})

	t.Run("pending payment keeps plan inactive", func(t *testing.T) {
		ledger := newLedger(t)
		fetcher := new(fetcherMock)
		fetcher.On("Get", mock.Anything, 7).
			Return(&payment.Response{ID: 7, Status: "in_process", ExternalReference: "owner-1"}, nil).Once()

		p, err := NewMercadoPagoSync(fetcher, ledger, time.Hour, zap.NewNop()).HandleNotification(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "pending", p.Status)

		active, err := ledger.IsActive(ctx, "owner-1")
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("provider failure is unavailable", func(t *testing.T) {
		fetcher := new(fetcherMock)
		fetcher.On("Get", mock.Anything, 9).Return(nil, errors.New("timeout")).Once()

		_, err := NewMercadoPagoSync(fetcher, newLedger(t), time.Hour, zap.NewNop()).HandleNotification(ctx, 9)
		assert.Equal(t, httperr.KindUnavailable, httperr.KindOf(err))
	})

	t.Run("missing reference is invalid", func(t *testing.T) {
		fetcher := new(fetcherMock)
		fetcher.On("Get", mock.Anything, 5).Return(&payment.Response{ID: 5, Status: "approved"}, nil).Once()

		_, err := NewMercadoPagoSync(fetcher, newLedger(t), time.Hour, zap.NewNop()).HandleNotification(ctx, 5)
		assert.Equal(t, httperr.KindInvalidInput, httperr.KindOf(err))
	})
}
