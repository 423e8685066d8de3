package billing

import (
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeterReading is an immutable record of a meter at a point in time. The
// consumed units are derived once at write time from the previous and current
// register values; nothing ever edits a stored reading, a wrong one is
// superseded by recording a new reading.
type MeterReading struct {
	shared.BaseAggregateRoot
	CustomerID      uuid.UUID
	MeterNumber     string
	PreviousReading decimal.Decimal
	CurrentReading  decimal.Decimal
	UnitsConsumed   decimal.Decimal
	ReadingDate     time.Time
	ReadBy          uuid.UUID
	Billed          bool
}

// NewMeterReading records a reading and derives the units consumed
func NewMeterReading(
	customerID uuid.UUID,
	meterNumber string,
	previousReading decimal.Decimal,
	currentReading decimal.Decimal,
	readingDate time.Time,
	readBy uuid.UUID,
) (*MeterReading, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if meterNumber == "" {
		return nil, shared.NewDomainError("INVALID_METER_NUMBER", "Meter number cannot be empty")
	}
	if previousReading.IsNegative() {
		return nil, shared.NewDomainError("INVALID_READING", "Previous reading cannot be negative")
	}
	if currentReading.LessThan(previousReading) {
		return nil, shared.NewDomainError("INVALID_READING", "Current reading cannot be below the previous reading")
	}
	if readingDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_READING_DATE", "Reading date is required")
	}

	r := &MeterReading{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		MeterNumber:       meterNumber,
		PreviousReading:   previousReading,
		CurrentReading:    currentReading,
		UnitsConsumed:     currentReading.Sub(previousReading),
		ReadingDate:       readingDate,
		ReadBy:            readBy,
	}
	r.AddDomainEvent(NewMeterReadingRecordedEvent(r))
	return r, nil
}

// MarkBilled flags the reading as consumed by a bill so generation never
// prices the same reading twice
func (r *MeterReading) MarkBilled() error {
	if r.Billed {
		return shared.NewDomainError(shared.CodeDuplicateBillingPeriod, "Meter reading has already been billed")
	}
	r.Billed = true
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}
