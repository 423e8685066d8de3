package finance

import (
	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentCompletedEvent is raised when a payment is recorded against a bill
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID         `json:"payment_id"`
	ReceiptNumber  string            `json:"receipt_number"`
	TransactionRef string            `json:"transaction_ref"`
	BillID         uuid.UUID         `json:"bill_id"`
	CustomerID     uuid.UUID         `json:"customer_id"`
	Amount         valueobject.Money `json:"amount"`
	Method         PaymentMethod     `json:"method"`
}

// EventType returns the event type name
func (e *PaymentCompletedEvent) EventType() string {
	return "PaymentCompleted"
}

// NewPaymentCompletedEvent creates a new PaymentCompletedEvent
func NewPaymentCompletedEvent(p *Payment) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentCompleted", "Payment", p.ID),
		PaymentID:       p.ID,
		ReceiptNumber:   p.ReceiptNumber,
		TransactionRef:  p.TransactionRef,
		BillID:          p.BillID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method,
	}
}

// PaymentRefundedEvent is raised when a completed payment is reversed
type PaymentRefundedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID         `json:"payment_id"`
	ReceiptNumber string            `json:"receipt_number"`
	BillID        uuid.UUID         `json:"bill_id"`
	CustomerID    uuid.UUID         `json:"customer_id"`
	Amount        valueobject.Money `json:"amount"`
}

// EventType returns the event type name
func (e *PaymentRefundedEvent) EventType() string {
	return "PaymentRefunded"
}

// NewPaymentRefundedEvent creates a new PaymentRefundedEvent
func NewPaymentRefundedEvent(p *Payment) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRefunded", "Payment", p.ID),
		PaymentID:       p.ID,
		ReceiptNumber:   p.ReceiptNumber,
		BillID:          p.BillID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
	}
}
