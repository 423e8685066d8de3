package models

import (
	"time"

	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TariffModel is the GORM model for tariff versions
type TariffModel struct {
	AggregateModel
	Category               string           `gorm:"type:varchar(20);not null;index:idx_tariffs_category_effective"`
	FixedCharge            decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ElectricityDutyPercent decimal.Decimal  `gorm:"type:decimal(8,4);not null"`
	GSTPercent             decimal.Decimal  `gorm:"type:decimal(8,4);not null"`
	EffectiveDate          time.Time        `gorm:"not null;index:idx_tariffs_category_effective"`
	ValidUntil             *time.Time       `gorm:"index"`
	Slabs                  []TariffSlabModel `gorm:"foreignKey:TariffID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for TariffModel
func (TariffModel) TableName() string {
	return "tariffs"
}

// TariffSlabModel is the GORM model for one row of a tariff's slab table
type TariffSlabModel struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key"`
	TariffID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	SlabOrder   int              `gorm:"not null"`
	StartUnits  decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	EndUnits    *decimal.Decimal `gorm:"type:decimal(18,4)"`
	RatePerUnit decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for TariffSlabModel
func (TariffSlabModel) TableName() string {
	return "tariff_slabs"
}

// ToDomain converts the model to a domain Tariff
func (m *TariffModel) ToDomain() *tariff.Tariff {
	slabs := make([]tariff.Slab, 0, len(m.Slabs))
	for _, s := range m.Slabs {
		slabs = append(slabs, tariff.Slab{
			Order:       s.SlabOrder,
			StartUnits:  s.StartUnits,
			EndUnits:    s.EndUnits,
			RatePerUnit: s.RatePerUnit,
		})
	}
	return &tariff.Tariff{
		BaseAggregateRoot:      m.ToDomainAggregateRoot(),
		Category:               tariff.Category(m.Category),
		FixedCharge:            m.FixedCharge,
		ElectricityDutyPercent: m.ElectricityDutyPercent,
		GSTPercent:             m.GSTPercent,
		EffectiveDate:          m.EffectiveDate,
		ValidUntil:             m.ValidUntil,
		Slabs:                  slabs,
	}
}

// FromDomain fills the model from a domain Tariff
func (m *TariffModel) FromDomain(t *tariff.Tariff) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Category = string(t.Category)
	m.FixedCharge = t.FixedCharge
	m.ElectricityDutyPercent = t.ElectricityDutyPercent
	m.GSTPercent = t.GSTPercent
	m.EffectiveDate = t.EffectiveDate
	m.ValidUntil = t.ValidUntil
	m.Slabs = make([]TariffSlabModel, 0, len(t.Slabs))
	for _, s := range t.Slabs {
		m.Slabs = append(m.Slabs, TariffSlabModel{
			ID:          uuid.New(),
			TariffID:    t.ID,
			SlabOrder:   s.Order,
			StartUnits:  s.StartUnits,
			EndUnits:    s.EndUnits,
			RatePerUnit: s.RatePerUnit,
		})
	}
}

// TariffModelFromDomain creates a TariffModel from a domain Tariff
func TariffModelFromDomain(t *tariff.Tariff) *TariffModel {
	m := &TariffModel{}
	m.FromDomain(t)
	return m
}
