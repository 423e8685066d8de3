package finance

import (
	"context"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ApplyPaymentInput carries everything needed to apply one payment to one
// bill. TransactionRef is the caller's idempotency key; when empty the
// repository allocates one, which opts the caller out of replay protection.
type ApplyPaymentInput struct {
	BillID         uuid.UUID
	Amount         valueobject.Money
	Method         PaymentMethod
	TransactionRef string
	PaidByUserID   uuid.UUID
	Notes          string
}

// PaymentRepository is the persistence port for the payment ledger.
type PaymentRepository interface {
	// Apply records a completed payment and its ledger effects as one
	// transaction: the bill row is locked, the idempotency guards are
	// re-checked under the lock, the payment row is inserted, the bill
	// flips to paid when the amount settles it, and the customer's
	// outstanding balance is decremented with an atomic floored-at-zero
	// column update. Either every write lands or none does.
	//
	// Guard failures surface as domain errors: ALREADY_PAID when the bill
	// is settled (detail carries the original receipt and transaction ref),
	// DUPLICATE_PAYMENT when a completed payment with the same transaction
	// ref already exists for the bill (detail carries that payment's
	// receipt so the caller can treat the replay as success).
	Apply(ctx context.Context, input ApplyPaymentInput) (*Payment, error)

	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByReceiptNumber(ctx context.Context, receiptNumber string) (*Payment, error)
	FindByBill(ctx context.Context, billID uuid.UUID) ([]Payment, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Payment, int64, error)

	// Save persists status changes to an existing payment, such as refunds
	Save(ctx context.Context, payment *Payment) error
}
