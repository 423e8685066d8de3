package partner

import (
	"testing"
	"time"

	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T) *Customer {
	t.Helper()
	c, err := NewCustomer(
		uuid.New(),
		"ELX-2024-000157",
		"MTR-000157",
		"Ayesha Khan",
		tariff.CategoryResidential,
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return c
}

func TestNewCustomer_Validation(t *testing.T) {
	t.Run("valid customer starts settled", func(t *testing.T) {
		c := newTestCustomer(t)
		assert.Equal(t, CustomerStatusActive, c.Status)
		assert.Equal(t, PaymentStatusPaid, c.PaymentStatus)
		assert.True(t, c.OutstandingBalance.IsZero())
		assert.True(t, c.HasSettledBalance())
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		_, err := NewCustomer(uuid.Nil, "ELX-1", "MTR-1", "A", tariff.CategoryResidential, time.Now())
		assert.Error(t, err)
		_, err = NewCustomer(uuid.New(), "", "MTR-1", "A", tariff.CategoryResidential, time.Now())
		assert.Error(t, err)
		_, err = NewCustomer(uuid.New(), "ELX-1", "", "A", tariff.CategoryResidential, time.Now())
		assert.Error(t, err)
		_, err = NewCustomer(uuid.New(), "ELX-1", "MTR-1", "", tariff.CategoryResidential, time.Now())
		assert.Error(t, err)
		_, err = NewCustomer(uuid.New(), "ELX-1", "MTR-1", "A", "household", time.Now())
		assert.Error(t, err)
	})
}

func TestCustomer_Ledger(t *testing.T) {
	t.Run("bill charge raises the balance", func(t *testing.T) {
		c := newTestCustomer(t)
		require.NoError(t, c.ApplyBillCharge(valueobject.NewMoneyPKRFromFloat(2283.30)))

		assert.Equal(t, "2283.30", c.OutstandingBalance.StringFixed(2))
		assert.Equal(t, "2283.30", c.LastBillAmount.StringFixed(2))
		assert.Equal(t, PaymentStatusPending, c.PaymentStatus)
	})

	t.Run("full payment settles the ledger", func(t *testing.T) {
		c := newTestCustomer(t)
		require.NoError(t, c.ApplyBillCharge(valueobject.NewMoneyPKRFromFloat(2283.30)))

		paidAt := time.Now()
		require.NoError(t, c.ApplyPaymentCredit(valueobject.NewMoneyPKRFromFloat(2283.30), paidAt))

		assert.True(t, c.OutstandingBalance.IsZero())
		assert.Equal(t, PaymentStatusPaid, c.PaymentStatus)
		require.NotNil(t, c.LastPaymentDate)
		assert.Equal(t, paidAt, *c.LastPaymentDate)
	})

	t.Run("partial payment leaves the account pending", func(t *testing.T) {
		c := newTestCustomer(t)
		require.NoError(t, c.ApplyBillCharge(valueobject.NewMoneyPKRFromFloat(1000)))
		require.NoError(t, c.ApplyPaymentCredit(valueobject.NewMoneyPKRFromFloat(400), time.Now()))

		assert.Equal(t, "600.00", c.OutstandingBalance.StringFixed(2))
		assert.Equal(t, PaymentStatusPending, c.PaymentStatus)
	})

	t.Run("overpayment is floored at zero, excess absorbed", func(t *testing.T) {
		c := newTestCustomer(t)
		require.NoError(t, c.ApplyBillCharge(valueobject.NewMoneyPKRFromFloat(1000)))
		require.NoError(t, c.ApplyPaymentCredit(valueobject.NewMoneyPKRFromFloat(1500), time.Now()))

		assert.True(t, c.OutstandingBalance.IsZero(), "balance must never go negative")
		assert.Equal(t, PaymentStatusPaid, c.PaymentStatus)
	})

	t.Run("balance tracks a bill and payment sequence exactly", func(t *testing.T) {
		c := newTestCustomer(t)
		require.NoError(t, c.ApplyBillCharge(valueobject.NewMoneyPKRFromFloat(1000)))
		require.NoError(t, c.ApplyBillCharge(valueobject.NewMoneyPKRFromFloat(500.50)))
		require.NoError(t, c.ApplyPaymentCredit(valueobject.NewMoneyPKRFromFloat(1000), time.Now()))

		// 1000 + 500.50 - 1000
		assert.Equal(t, "500.50", c.OutstandingBalance.StringFixed(2))
		assert.False(t, c.OutstandingBalance.IsNegative())
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		c := newTestCustomer(t)
		assert.Error(t, c.ApplyBillCharge(valueobject.ZeroPKR()))
		assert.Error(t, c.ApplyPaymentCredit(valueobject.NewMoneyPKRFromFloat(-5), time.Now()))
	})

	t.Run("settled within rounding tolerance", func(t *testing.T) {
		c := newTestCustomer(t)
		c.OutstandingBalance = decimal.RequireFromString("0.004")
		assert.True(t, c.HasSettledBalance())

		c.OutstandingBalance = decimal.RequireFromString("0.01")
		assert.False(t, c.HasSettledBalance())
	})
}

func TestCustomer_Status(t *testing.T) {
	c := newTestCustomer(t)
	require.True(t, c.IsActive())

	require.NoError(t, c.Suspend())
	assert.Equal(t, CustomerStatusSuspended, c.Status)

	require.NoError(t, c.Activate())
	assert.True(t, c.IsActive())

	c.Status = CustomerStatusInactive
	assert.Error(t, c.Suspend())
}
