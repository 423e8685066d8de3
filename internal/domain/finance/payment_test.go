package finance

import (
	"testing"
	"time"

	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedPayment(t *testing.T) *Payment {
	t.Helper()
	p, err := NewPayment(
		"RCP-2024-00000017",
		"TXN-1717754400-4821",
		uuid.New(),
		uuid.New(),
		valueobject.NewMoneyPKRFromFloat(2283.30),
		PaymentMethodOnline,
		uuid.New(),
		time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		"",
	)
	require.NoError(t, err)
	return p
}

func TestPaymentMethod_IsValid(t *testing.T) {
	assert.True(t, PaymentMethodCash.IsValid())
	assert.True(t, PaymentMethodCard.IsValid())
	assert.True(t, PaymentMethodOnline.IsValid())
	assert.True(t, PaymentMethodBankTransfer.IsValid())
	assert.False(t, PaymentMethod("cheque").IsValid())
}

func TestNewPayment_BornCompleted(t *testing.T) {
	p := completedPayment(t)

	assert.Equal(t, PaymentStatusCompleted, p.Status)
	assert.True(t, p.IsCompleted())
	assert.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, "PaymentCompleted", p.GetDomainEvents()[0].EventType())
}

func TestNewPayment_Validation(t *testing.T) {
	amount := valueobject.NewMoneyPKRFromFloat(100)
	date := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	t.Run("rejects empty receipt number", func(t *testing.T) {
		_, err := NewPayment("", "TXN-1", uuid.New(), uuid.New(), amount, PaymentMethodCash, uuid.New(), date, "")
		assert.Error(t, err)
	})

	t.Run("rejects empty transaction ref", func(t *testing.T) {
		_, err := NewPayment("RCP-2024-1", "", uuid.New(), uuid.New(), amount, PaymentMethodCash, uuid.New(), date, "")
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewPayment("RCP-2024-1", "TXN-1", uuid.New(), uuid.New(), valueobject.ZeroPKR(), PaymentMethodCash, uuid.New(), date, "")
		assert.Error(t, err)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := NewPayment("RCP-2024-1", "TXN-1", uuid.New(), uuid.New(), amount, "cheque", uuid.New(), date, "")
		assert.Error(t, err)
	})
}

func TestPayment_Refund(t *testing.T) {
	p := completedPayment(t)

	require.NoError(t, p.Refund())
	assert.Equal(t, PaymentStatusRefunded, p.Status)
	assert.False(t, p.IsCompleted())

	// A refunded payment cannot be refunded twice.
	assert.Error(t, p.Refund())
}
