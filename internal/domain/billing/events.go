package billing

import (
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeterReadingRecordedEvent is raised when a new reading is recorded
type MeterReadingRecordedEvent struct {
	shared.BaseDomainEvent
	ReadingID     uuid.UUID       `json:"reading_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	MeterNumber   string          `json:"meter_number"`
	UnitsConsumed decimal.Decimal `json:"units_consumed"`
	ReadingDate   time.Time       `json:"reading_date"`
}

// EventType returns the event type name
func (e *MeterReadingRecordedEvent) EventType() string {
	return "MeterReadingRecorded"
}

// NewMeterReadingRecordedEvent creates a new MeterReadingRecordedEvent
func NewMeterReadingRecordedEvent(r *MeterReading) *MeterReadingRecordedEvent {
	return &MeterReadingRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("MeterReadingRecorded", "MeterReading", r.ID),
		ReadingID:       r.ID,
		CustomerID:      r.CustomerID,
		MeterNumber:     r.MeterNumber,
		UnitsConsumed:   r.UnitsConsumed,
		ReadingDate:     r.ReadingDate,
	}
}

// BillGeneratedEvent is raised when a bill is priced for a billing period,
// before it is issued to the customer
type BillGeneratedEvent struct {
	shared.BaseDomainEvent
	BillID       uuid.UUID         `json:"bill_id"`
	BillNumber   string            `json:"bill_number"`
	CustomerID   uuid.UUID         `json:"customer_id"`
	BillingMonth string            `json:"billing_month"`
	TotalAmount  valueobject.Money `json:"total_amount"`
}

// EventType returns the event type name
func (e *BillGeneratedEvent) EventType() string {
	return "BillGenerated"
}

// NewBillGeneratedEvent creates a new BillGeneratedEvent
func NewBillGeneratedEvent(b *Bill) *BillGeneratedEvent {
	return &BillGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillGenerated", "Bill", b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		CustomerID:      b.CustomerID,
		BillingMonth:    b.BillingMonth,
		TotalAmount:     b.TotalAmount,
	}
}

// BillIssuedEvent is raised when a bill is issued for a billing period
type BillIssuedEvent struct {
	shared.BaseDomainEvent
	BillID       uuid.UUID         `json:"bill_id"`
	BillNumber   string            `json:"bill_number"`
	CustomerID   uuid.UUID         `json:"customer_id"`
	BillingMonth string            `json:"billing_month"`
	TotalAmount  valueobject.Money `json:"total_amount"`
	DueDate      time.Time         `json:"due_date"`
}

// EventType returns the event type name
func (e *BillIssuedEvent) EventType() string {
	return "BillIssued"
}

// NewBillIssuedEvent creates a new BillIssuedEvent
func NewBillIssuedEvent(b *Bill) *BillIssuedEvent {
	return &BillIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillIssued", "Bill", b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		CustomerID:      b.CustomerID,
		BillingMonth:    b.BillingMonth,
		TotalAmount:     b.TotalAmount,
		DueDate:         b.DueDate,
	}
}

// BillPaidEvent is raised when a payment settles a bill
type BillPaidEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID         `json:"bill_id"`
	BillNumber string            `json:"bill_number"`
	CustomerID uuid.UUID         `json:"customer_id"`
	AmountPaid valueobject.Money `json:"amount_paid"`
}

// EventType returns the event type name
func (e *BillPaidEvent) EventType() string {
	return "BillPaid"
}

// NewBillPaidEvent creates a new BillPaidEvent
func NewBillPaidEvent(b *Bill, amount valueobject.Money) *BillPaidEvent {
	return &BillPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillPaid", "Bill", b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		CustomerID:      b.CustomerID,
		AmountPaid:      amount,
	}
}

// BillOverdueEvent is raised when an unpaid bill passes its due date
type BillOverdueEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID         `json:"bill_id"`
	BillNumber string            `json:"bill_number"`
	CustomerID uuid.UUID         `json:"customer_id"`
	Amount     valueobject.Money `json:"amount"`
	DueDate    time.Time         `json:"due_date"`
}

// EventType returns the event type name
func (e *BillOverdueEvent) EventType() string {
	return "BillOverdue"
}

// NewBillOverdueEvent creates a new BillOverdueEvent
func NewBillOverdueEvent(b *Bill) *BillOverdueEvent {
	return &BillOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillOverdue", "Bill", b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		CustomerID:      b.CustomerID,
		Amount:          b.TotalAmount,
		DueDate:         b.DueDate,
	}
}

// BillCancelledEvent is raised when a bill is voided
type BillCancelledEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID `json:"bill_id"`
	BillNumber string    `json:"bill_number"`
	CustomerID uuid.UUID `json:"customer_id"`
	Reason     string    `json:"reason"`
}

// EventType returns the event type name
func (e *BillCancelledEvent) EventType() string {
	return "BillCancelled"
}

// NewBillCancelledEvent creates a new BillCancelledEvent
func NewBillCancelledEvent(b *Bill, reason string) *BillCancelledEvent {
	return &BillCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillCancelled", "Bill", b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		CustomerID:      b.CustomerID,
		Reason:          reason,
	}
}
