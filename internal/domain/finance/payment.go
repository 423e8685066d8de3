package finance

import (
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentMethod represents how a payment was collected
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodOnline       PaymentMethod = "online"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodOnline, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is one collected amount against a bill. Payments are recorded
// after the money has moved, so a new payment is born completed; failed
// rows exist only when a downstream write rejected an otherwise collected
// payment and the row is kept for audit.
type Payment struct {
	shared.BaseAggregateRoot
	ReceiptNumber  string // RCP-YYYY-XXXXXXXX
	TransactionRef string // TXN-..., the idempotency key for the bill
	BillID         uuid.UUID
	CustomerID     uuid.UUID
	Amount         valueobject.Money
	Method         PaymentMethod
	Status         PaymentStatus
	PaidByUserID   uuid.UUID
	PaymentDate    time.Time
	Notes          string
}

// NewPayment records a completed payment against a bill
func NewPayment(
	receiptNumber string,
	transactionRef string,
	billID uuid.UUID,
	customerID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	paidByUserID uuid.UUID,
	paymentDate time.Time,
	notes string,
) (*Payment, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if transactionRef == "" {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_REF", "Transaction reference cannot be empty")
	}
	if billID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BILL", "Bill ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Payment date is required")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     receiptNumber,
		TransactionRef:    transactionRef,
		BillID:            billID,
		CustomerID:        customerID,
		Amount:            amount,
		Method:            method,
		Status:            PaymentStatusCompleted,
		PaidByUserID:      paidByUserID,
		PaymentDate:       paymentDate,
		Notes:             notes,
	}
	p.AddDomainEvent(NewPaymentCompletedEvent(p))
	return p, nil
}

// IsCompleted returns true when the payment counts toward the ledger
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

// Refund reverses a completed payment. The ledger credit is compensated by
// the caller in the same transaction; the payment row just flips state.
func (p *Payment) Refund() error {
	if p.Status != PaymentStatusCompleted {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only completed payments can be refunded, payment %s is %s", p.ReceiptNumber, p.Status))
	}
	p.Status = PaymentStatusRefunded
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentRefundedEvent(p))
	return nil
}
