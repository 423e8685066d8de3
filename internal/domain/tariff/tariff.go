package tariff

import (
	"fmt"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Category represents the customer category a tariff prices for
type Category string

const (
	CategoryResidential  Category = "residential"
	CategoryCommercial   Category = "commercial"
	CategoryIndustrial   Category = "industrial"
	CategoryAgricultural Category = "agricultural"
)

// IsValid checks if the category is a valid Category
func (c Category) IsValid() bool {
	switch c {
	case CategoryResidential, CategoryCommercial, CategoryIndustrial, CategoryAgricultural:
		return true
	}
	return false
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// Slab is a contiguous unit-consumption band with its own per-unit rate.
// StartUnits is inclusive, EndUnits exclusive; a nil EndUnits means the band
// is unbounded and must be the last slab of its tariff.
type Slab struct {
	Order       int              `json:"order"`
	StartUnits  decimal.Decimal  `json:"start_units"`
	EndUnits    *decimal.Decimal `json:"end_units,omitempty"`
	RatePerUnit decimal.Decimal  `json:"rate_per_unit"`
}

// Width returns the number of units the slab covers, or nil when unbounded
func (s Slab) Width() *decimal.Decimal {
	if s.EndUnits == nil {
		return nil
	}
	w := s.EndUnits.Sub(s.StartUnits)
	return &w
}

// Tariff is an immutable, versioned price sheet for a customer category.
// Superseding terms never mutate an existing row; a new version is created
// and the prior open version gets its ValidUntil set in the same transaction,
// so bills already issued keep pointing at the exact terms they were priced
// with.
type Tariff struct {
	shared.BaseAggregateRoot
	Category               Category
	FixedCharge            decimal.Decimal
	ElectricityDutyPercent decimal.Decimal
	GSTPercent             decimal.Decimal
	EffectiveDate          time.Time
	ValidUntil             *time.Time
	Slabs                  []Slab
}

// NewTariff creates a new open tariff version. The slab table is validated
// here, at write time; readers assume a stored tariff is well-formed.
func NewTariff(
	category Category,
	fixedCharge decimal.Decimal,
	dutyPercent decimal.Decimal,
	gstPercent decimal.Decimal,
	effectiveDate time.Time,
	slabs []Slab,
) (*Tariff, error) {
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown tariff category %q", category))
	}
	if fixedCharge.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FIXED_CHARGE", "Fixed charge cannot be negative")
	}
	if dutyPercent.IsNegative() || gstPercent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PERCENT", "Duty and GST percentages cannot be negative")
	}
	if effectiveDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_EFFECTIVE_DATE", "Effective date is required")
	}
	if err := validateSlabs(slabs); err != nil {
		return nil, err
	}

	t := &Tariff{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		Category:               category,
		FixedCharge:            fixedCharge,
		ElectricityDutyPercent: dutyPercent,
		GSTPercent:             gstPercent,
		EffectiveDate:          effectiveDate,
		Slabs:                  slabs,
	}
	t.AddDomainEvent(NewTariffCreatedEvent(t))
	return t, nil
}

// validateSlabs enforces the schema-level slab invariants: ascending order,
// contiguous coverage starting at zero, positive widths, and an unbounded
// final slab.
func validateSlabs(slabs []Slab) error {
	if len(slabs) == 0 {
		return shared.NewDomainError("INVALID_SLABS", "A tariff requires at least one slab")
	}
	if !slabs[0].StartUnits.IsZero() {
		return shared.NewDomainError("INVALID_SLABS", "The first slab must start at 0 units")
	}
	for i, s := range slabs {
		if s.Order != i {
			return shared.NewDomainError("INVALID_SLABS", fmt.Sprintf("Slab at position %d has order %d", i, s.Order))
		}
		if s.RatePerUnit.IsNegative() {
			return shared.NewDomainError("INVALID_SLABS", fmt.Sprintf("Slab %d has a negative rate", i))
		}
		last := i == len(slabs)-1
		if last {
			if s.EndUnits != nil {
				return shared.NewDomainError("INVALID_SLABS", "The last slab must be unbounded (no end units)")
			}
			continue
		}
		if s.EndUnits == nil {
			return shared.NewDomainError("INVALID_SLABS", fmt.Sprintf("Only the last slab may be unbounded, slab %d is not last", i))
		}
		if !s.EndUnits.GreaterThan(s.StartUnits) {
			return shared.NewDomainError("INVALID_SLABS", fmt.Sprintf("Slab %d must end after it starts", i))
		}
		if !slabs[i+1].StartUnits.Equal(*s.EndUnits) {
			return shared.NewDomainError("INVALID_SLABS", fmt.Sprintf("Slab %d and %d are not contiguous", i, i+1))
		}
	}
	return nil
}

// EvaluateSlabs walks the slab table in order and prices unitsConsumed,
// attributing min(remaining, slab width) units at each slab's rate. Zero or
// negative consumption prices to zero. The walk trusts the write-time
// validation; a malformed table surfaces as a consistency error rather than
// a silent wrong amount.
func (t *Tariff) EvaluateSlabs(unitsConsumed decimal.Decimal) (valueobject.Money, error) {
	if unitsConsumed.LessThanOrEqual(decimal.Zero) {
		return valueobject.ZeroPKR(), nil
	}

	remaining := unitsConsumed
	total := decimal.Zero
	for _, s := range t.Slabs {
		var units decimal.Decimal
		if w := s.Width(); w == nil {
			units = remaining
		} else if remaining.LessThan(*w) {
			units = remaining
		} else {
			units = *w
		}
		total = total.Add(units.Mul(s.RatePerUnit))
		remaining = remaining.Sub(units)
		if remaining.IsZero() {
			return valueobject.NewMoneyPKR(total), nil
		}
	}

	// Reachable only when the stored slab table lost its unbounded tail.
	return valueobject.ZeroPKR(), shared.NewDomainError(shared.CodeConsistencyError,
		fmt.Sprintf("Slab table for tariff %s does not cover %s units", t.ID, unitsConsumed))
}

// IsOpen returns true when this version is the currently active one
func (t *Tariff) IsOpen() bool {
	return t.ValidUntil == nil
}

// AppliesAt reports whether this version was in force at the given date
func (t *Tariff) AppliesAt(asOf time.Time) bool {
	if t.EffectiveDate.After(asOf) {
		return false
	}
	return t.ValidUntil == nil || t.ValidUntil.After(asOf)
}

// CloseOut supersedes this version at the given instant. Superseded versions
// are immutable; only the ValidUntil bound is ever written.
func (t *Tariff) CloseOut(at time.Time) error {
	if t.ValidUntil != nil {
		return shared.NewDomainError("INVALID_STATE", "Tariff version is already superseded")
	}
	if at.Before(t.EffectiveDate) {
		return shared.NewDomainError("INVALID_STATE", "A tariff cannot be superseded before it took effect")
	}
	t.ValidUntil = &at
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	t.AddDomainEvent(NewTariffSupersededEvent(t))
	return nil
}
