package models

import (
	"time"

	"github.com/powergrid/backend/internal/domain/partner"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the GORM model for electricity connections. The
// outstanding_balance column is the running ledger; the bill and payment
// repositories update it with atomic column expressions, never by writing
// this struct back.
type CustomerModel struct {
	AggregateModel
	UserID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	AccountNumber      string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	MeterNumber        string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	FullName           string          `gorm:"type:varchar(255);not null"`
	Email              string          `gorm:"type:varchar(255);not null"`
	Phone              string          `gorm:"type:varchar(50)"`
	Address            string          `gorm:"type:varchar(500)"`
	City               string          `gorm:"type:varchar(100)"`
	Zone               string          `gorm:"type:varchar(100)"`
	Category           string          `gorm:"type:varchar(20);not null"`
	Status             string          `gorm:"type:varchar(20);not null;default:'active'"`
	ConnectionDate     time.Time       `gorm:"not null"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastBillAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPaymentDate    *time.Time
	PaymentStatus      string `gorm:"type:varchar(20);not null;default:'paid'"`
}

// TableName returns the table name for CustomerModel
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		UserID:             m.UserID,
		AccountNumber:      m.AccountNumber,
		MeterNumber:        m.MeterNumber,
		FullName:           m.FullName,
		Email:              m.Email,
		Phone:              m.Phone,
		Address:            m.Address,
		City:               m.City,
		Zone:               m.Zone,
		Category:           tariff.Category(m.Category),
		Status:             partner.CustomerStatus(m.Status),
		ConnectionDate:     m.ConnectionDate,
		OutstandingBalance: m.OutstandingBalance,
		LastBillAmount:     m.LastBillAmount,
		LastPaymentDate:    m.LastPaymentDate,
		PaymentStatus:      partner.PaymentStatus(m.PaymentStatus),
	}
}

// FromDomain fills the model from a domain Customer
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.UserID = c.UserID
	m.AccountNumber = c.AccountNumber
	m.MeterNumber = c.MeterNumber
	m.FullName = c.FullName
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.City = c.City
	m.Zone = c.Zone
	m.Category = string(c.Category)
	m.Status = string(c.Status)
	m.ConnectionDate = c.ConnectionDate
	m.OutstandingBalance = c.OutstandingBalance
	m.LastBillAmount = c.LastBillAmount
	m.LastPaymentDate = c.LastPaymentDate
	m.PaymentStatus = string(c.PaymentStatus)
}

// CustomerModelFromDomain creates a CustomerModel from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
