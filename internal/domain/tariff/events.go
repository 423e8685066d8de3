package tariff

import (
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TariffCreatedEvent is raised when a new tariff version is created
type TariffCreatedEvent struct {
	shared.BaseDomainEvent
	TariffID      uuid.UUID       `json:"tariff_id"`
	Category      Category        `json:"category"`
	FixedCharge   decimal.Decimal `json:"fixed_charge"`
	SlabCount     int             `json:"slab_count"`
	EffectiveDate time.Time       `json:"effective_date"`
}

// EventType returns the event type name
func (e *TariffCreatedEvent) EventType() string {
	return "TariffCreated"
}

// NewTariffCreatedEvent creates a new TariffCreatedEvent
func NewTariffCreatedEvent(t *Tariff) *TariffCreatedEvent {
	return &TariffCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TariffCreated", "Tariff", t.ID),
		TariffID:        t.ID,
		Category:        t.Category,
		FixedCharge:     t.FixedCharge,
		SlabCount:       len(t.Slabs),
		EffectiveDate:   t.EffectiveDate,
	}
}

// TariffSupersededEvent is raised when a tariff version is closed out by a newer one
type TariffSupersededEvent struct {
	shared.BaseDomainEvent
	TariffID   uuid.UUID  `json:"tariff_id"`
	Category   Category   `json:"category"`
	ValidUntil *time.Time `json:"valid_until"`
}

// EventType returns the event type name
func (e *TariffSupersededEvent) EventType() string {
	return "TariffSuperseded"
}

// NewTariffSupersededEvent creates a new TariffSupersededEvent
func NewTariffSupersededEvent(t *Tariff) *TariffSupersededEvent {
	return &TariffSupersededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TariffSuperseded", "Tariff", t.ID),
		TariffID:        t.ID,
		Category:        t.Category,
		ValidUntil:      t.ValidUntil,
	}
}
