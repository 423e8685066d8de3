package billing

import (
	"context"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MeterReadingRepository is the persistence port for meter readings
type MeterReadingRepository interface {
	Save(ctx context.Context, reading *MeterReading) error
	FindByID(ctx context.Context, id uuid.UUID) (*MeterReading, error)

	// FindLatestByCustomer returns the most recent reading for the customer,
	// or a NO_METER_READING error when none has been recorded yet.
	FindLatestByCustomer(ctx context.Context, customerID uuid.UUID) (*MeterReading, error)

	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]MeterReading, error)
}

// BillRepository is the persistence port for bills. Issuing a bill and
// charging the customer ledger are a single unit of work; the repository
// owns that transaction so no caller can perform half of it.
type BillRepository interface {
	// GenerateBillNumber allocates the next BILL-YYYY-XXXXXXXX number
	GenerateBillNumber(ctx context.Context) (string, error)

	// CreateIssued persists a freshly issued bill, marks its meter reading
	// as billed and increments the customer's outstanding balance by the
	// bill total, all in one transaction. The balance update is an atomic
	// column increment, never a read-modify-write.
	CreateIssued(ctx context.Context, bill *Bill, reading *MeterReading) error

	// Save persists status changes to an existing bill
	Save(ctx context.Context, bill *Bill) error

	// CancelIssued voids a bill in one transaction: the bill row is locked
	// and moved to cancelled, the customer's outstanding balance is reduced
	// by the bill total (floored at zero) when the bill had been charged,
	// and the meter reading is released so the period can be rebilled.
	// Paid bills refuse cancellation.
	CancelIssued(ctx context.Context, billID uuid.UUID, reason string) (*Bill, error)

	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	FindByBillNumber(ctx context.Context, billNumber string) (*Bill, error)

	// FindByCustomerAndMonth returns the non-cancelled bill for the period,
	// or nil when the period has not been billed. Generation uses it for the
	// duplicate-period guard.
	FindByCustomerAndMonth(ctx context.Context, customerID uuid.UUID, billingMonth string) (*Bill, error)

	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Bill, int64, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Bill, int64, error)

	// FindIssuedDueBefore returns issued bills whose due date has passed,
	// for the overdue sweep.
	FindIssuedDueBefore(ctx context.Context, cutoff time.Time) ([]Bill, error)
}
