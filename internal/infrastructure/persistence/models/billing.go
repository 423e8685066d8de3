package models

import (
	"time"

	"github.com/powergrid/backend/internal/domain/billing"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeterReadingModel is the GORM model for meter readings
type MeterReadingModel struct {
	AggregateModel
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_readings_customer_date"`
	MeterNumber     string          `gorm:"type:varchar(20);not null"`
	PreviousReading decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrentReading  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitsConsumed   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReadingDate     time.Time       `gorm:"not null;index:idx_readings_customer_date"`
	ReadBy          uuid.UUID       `gorm:"type:uuid;not null"`
	Billed          bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for MeterReadingModel
func (MeterReadingModel) TableName() string {
	return "meter_readings"
}

// ToDomain converts the model to a domain MeterReading
func (m *MeterReadingModel) ToDomain() *billing.MeterReading {
	return &billing.MeterReading{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CustomerID:        m.CustomerID,
		MeterNumber:       m.MeterNumber,
		PreviousReading:   m.PreviousReading,
		CurrentReading:    m.CurrentReading,
		UnitsConsumed:     m.UnitsConsumed,
		ReadingDate:       m.ReadingDate,
		ReadBy:            m.ReadBy,
		Billed:            m.Billed,
	}
}

// FromDomain fills the model from a domain MeterReading
func (m *MeterReadingModel) FromDomain(r *billing.MeterReading) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.CustomerID = r.CustomerID
	m.MeterNumber = r.MeterNumber
	m.PreviousReading = r.PreviousReading
	m.CurrentReading = r.CurrentReading
	m.UnitsConsumed = r.UnitsConsumed
	m.ReadingDate = r.ReadingDate
	m.ReadBy = r.ReadBy
	m.Billed = r.Billed
}

// MeterReadingModelFromDomain creates a MeterReadingModel from a domain MeterReading
func MeterReadingModelFromDomain(r *billing.MeterReading) *MeterReadingModel {
	m := &MeterReadingModel{}
	m.FromDomain(r)
	return m
}

// BillModel is the GORM model for bills. Charge columns are stored as plain
// decimals; the domain layer wraps them back into PKR money values.
type BillModel struct {
	AggregateModel
	BillNumber      string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_bills_customer_month"`
	MeterReadingID  uuid.UUID       `gorm:"type:uuid;not null"`
	TariffID        uuid.UUID       `gorm:"type:uuid;not null"`
	BillingMonth    string          `gorm:"type:varchar(7);not null;index:idx_bills_customer_month"`
	UnitsConsumed   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BaseAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	FixedCharges    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ElectricityDuty decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GSTAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status          string          `gorm:"type:varchar(20);not null;index"`
	IssueDate       time.Time       `gorm:"not null"`
	DueDate         time.Time       `gorm:"not null;index"`
	PaymentDate     *time.Time
}

// TableName returns the table name for BillModel
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the model to a domain Bill
func (m *BillModel) ToDomain() *billing.Bill {
	return &billing.Bill{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BillNumber:        m.BillNumber,
		CustomerID:        m.CustomerID,
		MeterReadingID:    m.MeterReadingID,
		TariffID:          m.TariffID,
		BillingMonth:      m.BillingMonth,
		UnitsConsumed:     m.UnitsConsumed,
		BaseAmount:        valueobject.NewMoneyPKR(m.BaseAmount),
		FixedCharges:      valueobject.NewMoneyPKR(m.FixedCharges),
		ElectricityDuty:   valueobject.NewMoneyPKR(m.ElectricityDuty),
		GSTAmount:         valueobject.NewMoneyPKR(m.GSTAmount),
		TotalAmount:       valueobject.NewMoneyPKR(m.TotalAmount),
		Status:            billing.BillStatus(m.Status),
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		PaymentDate:       m.PaymentDate,
	}
}

// FromDomain fills the model from a domain Bill
func (m *BillModel) FromDomain(b *billing.Bill) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BillNumber = b.BillNumber
	m.CustomerID = b.CustomerID
	m.MeterReadingID = b.MeterReadingID
	m.TariffID = b.TariffID
	m.BillingMonth = b.BillingMonth
	m.UnitsConsumed = b.UnitsConsumed
	m.BaseAmount = b.BaseAmount.Amount()
	m.FixedCharges = b.FixedCharges.Amount()
	m.ElectricityDuty = b.ElectricityDuty.Amount()
	m.GSTAmount = b.GSTAmount.Amount()
	m.TotalAmount = b.TotalAmount.Amount()
	m.Status = string(b.Status)
	m.IssueDate = b.IssueDate
	m.DueDate = b.DueDate
	m.PaymentDate = b.PaymentDate
}

// BillModelFromDomain creates a BillModel from a domain Bill
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{}
	m.FromDomain(b)
	return m
}
