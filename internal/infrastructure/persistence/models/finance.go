package models

import (
	"time"

	"github.com/powergrid/backend/internal/domain/finance"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the GORM model for the payment ledger. The partial unique
// index on (bill_id, transaction_ref) for completed rows is the database-level
// backstop for the idempotency guard; the repository checks it first, the
// index catches races.
type PaymentModel struct {
	AggregateModel
	ReceiptNumber  string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	TransactionRef string          `gorm:"type:varchar(64);not null;index:idx_payments_bill_ref"`
	BillID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_payments_bill_ref"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method         string          `gorm:"type:varchar(20);not null"`
	Status         string          `gorm:"type:varchar(20);not null"`
	PaidByUserID   uuid.UUID       `gorm:"type:uuid;not null"`
	PaymentDate    time.Time       `gorm:"not null"`
	Notes          string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for PaymentModel
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ReceiptNumber:     m.ReceiptNumber,
		TransactionRef:    m.TransactionRef,
		BillID:            m.BillID,
		CustomerID:        m.CustomerID,
		Amount:            valueobject.NewMoneyPKR(m.Amount),
		Method:            finance.PaymentMethod(m.Method),
		Status:            finance.PaymentStatus(m.Status),
		PaidByUserID:      m.PaidByUserID,
		PaymentDate:       m.PaymentDate,
		Notes:             m.Notes,
	}
}

// FromDomain fills the model from a domain Payment
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.ReceiptNumber = p.ReceiptNumber
	m.TransactionRef = p.TransactionRef
	m.BillID = p.BillID
	m.CustomerID = p.CustomerID
	m.Amount = p.Amount.Amount()
	m.Method = string(p.Method)
	m.Status = string(p.Status)
	m.PaidByUserID = p.PaidByUserID
	m.PaymentDate = p.PaymentDate
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a PaymentModel from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
