package partner

import (
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of the connection
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusSuspended CustomerStatus = "suspended"
	CustomerStatusInactive  CustomerStatus = "inactive"
)

// IsValid checks if the status is a valid CustomerStatus
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusSuspended, CustomerStatusInactive:
		return true
	}
	return false
}

// PaymentStatus summarises where the customer's account stands
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// balanceEpsilon is the residue below which an outstanding balance counts as
// settled; it absorbs 2-decimal rounding, never a real part-payment.
var balanceEpsilon = decimal.RequireFromString("0.005")

// Customer is the aggregate root for an electricity connection. Its
// OutstandingBalance is the persisted running ledger: incremented when a bill
// is issued, decremented (floored at zero) when a payment completes. The hot
// path never recomputes it from bill history; repositories apply the
// increments as single atomic column updates inside the same transaction as
// the bill or payment write.
type Customer struct {
	shared.BaseAggregateRoot
	UserID             uuid.UUID
	AccountNumber      string // ELX-YYYY-XXXXXX
	MeterNumber        string // MTR-XXXXXX
	FullName           string
	Email              string
	Phone              string
	Address            string
	City               string
	Zone               string
	Category           tariff.Category
	Status             CustomerStatus
	ConnectionDate     time.Time
	OutstandingBalance decimal.Decimal
	LastBillAmount     decimal.Decimal
	LastPaymentDate    *time.Time
	PaymentStatus      PaymentStatus
}

// NewCustomer creates a new active connection with a settled ledger
func NewCustomer(
	userID uuid.UUID,
	accountNumber string,
	meterNumber string,
	fullName string,
	category tariff.Category,
	connectionDate time.Time,
) (*Customer, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if accountNumber == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NUMBER", "Account number cannot be empty")
	}
	if meterNumber == "" {
		return nil, shared.NewDomainError("INVALID_METER_NUMBER", "Meter number cannot be empty")
	}
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown connection category")
	}

	return &Customer{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		UserID:             userID,
		AccountNumber:      accountNumber,
		MeterNumber:        meterNumber,
		FullName:           fullName,
		Category:           category,
		Status:             CustomerStatusActive,
		ConnectionDate:     connectionDate,
		OutstandingBalance: decimal.Zero,
		LastBillAmount:     decimal.Zero,
		PaymentStatus:      PaymentStatusPaid,
	}, nil
}

// ApplyBillCharge records a newly issued bill against the running ledger
func (c *Customer) ApplyBillCharge(total valueobject.Money) error {
	if !total.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Bill total must be positive")
	}
	c.OutstandingBalance = c.OutstandingBalance.Add(total.Amount())
	c.LastBillAmount = total.Amount()
	c.PaymentStatus = PaymentStatusPending
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// ApplyPaymentCredit decrements the ledger by the paid amount, floored at
// zero. Overpayment beyond the balance is absorbed, not credited. The
// payment status flips to paid only when the floored balance is settled.
func (c *Customer) ApplyPaymentCredit(amount valueobject.Money, paidAt time.Time) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	next := c.OutstandingBalance.Sub(amount.Amount())
	if next.IsNegative() {
		next = decimal.Zero
	}
	c.OutstandingBalance = next
	c.LastPaymentDate = &paidAt
	if c.HasSettledBalance() {
		c.PaymentStatus = PaymentStatusPaid
	} else {
		c.PaymentStatus = PaymentStatusPending
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// HasSettledBalance returns true when the outstanding balance is zero within
// rounding tolerance
func (c *Customer) HasSettledBalance() bool {
	return c.OutstandingBalance.LessThan(balanceEpsilon)
}

// MarkOverdue flags the account when an overdue bill sweep reports unpaid
// bills past due date
func (c *Customer) MarkOverdue() {
	c.PaymentStatus = PaymentStatusOverdue
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsActive returns true if the connection is active
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// Suspend suspends the connection
func (c *Customer) Suspend() error {
	if c.Status == CustomerStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Cannot suspend an inactive connection")
	}
	c.Status = CustomerStatusSuspended
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Activate re-activates the connection
func (c *Customer) Activate() error {
	c.Status = CustomerStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// GetOutstandingBalanceMoney returns the ledger balance as Money
func (c *Customer) GetOutstandingBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyPKR(c.OutstandingBalance)
}
