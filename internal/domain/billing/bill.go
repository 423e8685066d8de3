package billing

import (
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the lifecycle state of a bill
type BillStatus string

const (
	BillStatusGenerated BillStatus = "generated"
	BillStatusIssued    BillStatus = "issued"
	BillStatusPaid      BillStatus = "paid"
	BillStatusOverdue   BillStatus = "overdue"
	BillStatusCancelled BillStatus = "cancelled"
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusGenerated, BillStatusIssued, BillStatusPaid, BillStatusOverdue, BillStatusCancelled:
		return true
	}
	return false
}

// Days between issue and due date.
const dueDays = 15

// settleEpsilon is the shortfall below which a payment settles the bill in
// full. It absorbs 2-decimal rounding only; one cent short is a part-payment.
var settleEpsilon = decimal.RequireFromString("0.005")

// billingMonthLayout is the canonical form of a billing period, e.g. 2024-06
const billingMonthLayout = "2006-01"

// ChargeBreakdown is the priced decomposition of one billing period. Every
// component is rounded to 2 decimal places, half up, before the next one is
// derived from it, so the stored lines always sum exactly to the total.
type ChargeBreakdown struct {
	UnitsConsumed   decimal.Decimal
	BaseAmount      valueobject.Money
	FixedCharges    valueobject.Money
	ElectricityDuty valueobject.Money
	Subtotal        valueobject.Money
	GSTAmount       valueobject.Money
	TotalAmount     valueobject.Money
}

// ComputeCharges prices the consumed units against a tariff version. The
// base amount comes from the slab walk, duty is a percentage of the base,
// GST is a percentage of the subtotal (base + fixed charges + duty).
func ComputeCharges(t *tariff.Tariff, unitsConsumed decimal.Decimal) (ChargeBreakdown, error) {
	base, err := t.EvaluateSlabs(unitsConsumed)
	if err != nil {
		return ChargeBreakdown{}, err
	}
	base = base.RoundBill()
	fixed := valueobject.NewMoneyPKR(t.FixedCharge).RoundBill()
	duty := base.CalculatePercentage(t.ElectricityDutyPercent).RoundBill()
	subtotal := base.MustAdd(fixed).MustAdd(duty)
	gst := subtotal.CalculatePercentage(t.GSTPercent).RoundBill()
	total := subtotal.MustAdd(gst)

	return ChargeBreakdown{
		UnitsConsumed:   unitsConsumed,
		BaseAmount:      base,
		FixedCharges:    fixed,
		ElectricityDuty: duty,
		Subtotal:        subtotal,
		GSTAmount:       gst,
		TotalAmount:     total,
	}, nil
}

// Bill is the aggregate root for one billing period of one connection. The
// charge lines are frozen at generation time against the tariff version that
// priced them; later tariff changes never reprice an existing bill.
type Bill struct {
	shared.BaseAggregateRoot
	BillNumber      string // BILL-YYYY-XXXXXXXX
	CustomerID      uuid.UUID
	MeterReadingID  uuid.UUID
	TariffID        uuid.UUID
	BillingMonth    string // YYYY-MM
	UnitsConsumed   decimal.Decimal
	BaseAmount      valueobject.Money
	FixedCharges    valueobject.Money
	ElectricityDuty valueobject.Money
	GSTAmount       valueobject.Money
	TotalAmount     valueobject.Money
	Status          BillStatus
	IssueDate       time.Time
	DueDate         time.Time
	PaymentDate     *time.Time
}

// NewBill creates a bill for a priced billing period in the generated state.
// It carries no ledger weight until Issue moves it to issued. The due date is
// fixed at creation; it never moves afterwards.
func NewBill(
	billNumber string,
	customerID uuid.UUID,
	meterReadingID uuid.UUID,
	tariffID uuid.UUID,
	billingMonth string,
	charges ChargeBreakdown,
	issueDate time.Time,
) (*Bill, error) {
	if billNumber == "" {
		return nil, shared.NewDomainError("INVALID_BILL_NUMBER", "Bill number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if meterReadingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_READING", "Meter reading ID cannot be empty")
	}
	if tariffID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARIFF", "Tariff ID cannot be empty")
	}
	if _, err := time.Parse(billingMonthLayout, billingMonth); err != nil {
		return nil, shared.NewDomainError("INVALID_BILLING_MONTH",
			fmt.Sprintf("Billing month %q must be in YYYY-MM form", billingMonth))
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date is required")
	}

	b := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillNumber:        billNumber,
		CustomerID:        customerID,
		MeterReadingID:    meterReadingID,
		TariffID:          tariffID,
		BillingMonth:      billingMonth,
		UnitsConsumed:     charges.UnitsConsumed,
		BaseAmount:        charges.BaseAmount,
		FixedCharges:      charges.FixedCharges,
		ElectricityDuty:   charges.ElectricityDuty,
		GSTAmount:         charges.GSTAmount,
		TotalAmount:       charges.TotalAmount,
		Status:            BillStatusGenerated,
		IssueDate:         issueDate,
		DueDate:           issueDate.AddDate(0, 0, dueDays),
	}
	b.AddDomainEvent(NewBillGeneratedEvent(b))
	return b, nil
}

// Issue moves a generated bill to issued, the state in which it counts
// toward the customer's outstanding balance and can accept payments
func (b *Bill) Issue() error {
	if b.Status != BillStatusGenerated {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only generated bills can be issued, bill %s is %s", b.BillNumber, b.Status))
	}
	b.Status = BillStatusIssued
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillIssuedEvent(b))
	return nil
}

// IsPayable returns true when the bill can still accept payments
func (b *Bill) IsPayable() bool {
	return b.Status == BillStatusIssued || b.Status == BillStatusOverdue
}

// OutstandingAmount returns what is still owed on this bill. Bills do not
// track per-bill part-payments; the customer ledger does. A bill is either
// open for its full amount or settled.
func (b *Bill) OutstandingAmount() valueobject.Money {
	if b.Status == BillStatusPaid || b.Status == BillStatusCancelled {
		return valueobject.ZeroPKR()
	}
	return b.TotalAmount
}

// RegisterPayment applies a completed payment against the bill and reports
// whether it settled the bill. An amount within settleEpsilon of the total
// flips the bill to paid; anything less leaves the status untouched so
// further payments can follow. Paying an already paid bill is refused, the
// caller surfaces the original receipt to the payer.
func (b *Bill) RegisterPayment(amount valueobject.Money, paidAt time.Time) (bool, error) {
	if b.Status == BillStatusPaid {
		return false, shared.NewDomainError(shared.CodeAlreadyPaid,
			fmt.Sprintf("Bill %s is already paid", b.BillNumber))
	}
	if !b.IsPayable() {
		return false, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Bill %s is %s and cannot accept payments", b.BillNumber, b.Status))
	}
	if !amount.IsPositive() {
		return false, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	shortfall := b.TotalAmount.Amount().Sub(amount.Amount())
	if shortfall.GreaterThanOrEqual(settleEpsilon) {
		// Part-payment. The ledger credit still happens; the bill stays open.
		return false, nil
	}

	b.Status = BillStatusPaid
	b.PaymentDate = &paidAt
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillPaidEvent(b, amount))
	return true, nil
}

// MarkOverdue flags an unpaid bill past its due date
func (b *Bill) MarkOverdue(asOf time.Time) error {
	if b.Status != BillStatusIssued {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only issued bills go overdue, bill %s is %s", b.BillNumber, b.Status))
	}
	if !asOf.After(b.DueDate) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Bill %s is not past due until %s", b.BillNumber, b.DueDate.Format("2006-01-02")))
	}
	b.Status = BillStatusOverdue
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillOverdueEvent(b))
	return nil
}

// Cancel voids a bill that was issued in error. Paid bills are immutable
// history and cannot be cancelled.
func (b *Bill) Cancel(reason string) error {
	if b.Status == BillStatusPaid {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Bill %s is paid and cannot be cancelled", b.BillNumber))
	}
	if b.Status == BillStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Bill %s is already cancelled", b.BillNumber))
	}
	b.Status = BillStatusCancelled
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillCancelledEvent(b, reason))
	return nil
}
