package cache

import (
	"context"
	"testing"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testTariff(category tariff.Category) *tariff.Tariff {
	return &tariff.Tariff{
		BaseAggregateRoot:      shared.NewBaseAggregateRoot(),
		Category:               category,
		FixedCharge:            decimal.RequireFromString("50"),
		ElectricityDutyPercent: decimal.RequireFromString("1.5"),
		GSTPercent:             decimal.RequireFromString("18"),
		EffectiveDate:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestInMemoryTariffCache_RoundTrip(t *testing.T) {
	c := NewInMemoryTariffCache(time.Minute)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	_, ok := c.GetResolved(ctx, tariff.CategoryResidential, asOf)
	assert.False(t, ok)

	stored := testTariff(tariff.CategoryResidential)
	c.SetResolved(ctx, tariff.CategoryResidential, asOf, stored)

	got, ok := c.GetResolved(ctx, tariff.CategoryResidential, asOf)
	assert.True(t, ok)
	assert.Equal(t, stored.ID, got.ID)
}

func TestInMemoryTariffCache_SameDayDifferentTimeIsAHit(t *testing.T) {
	c := NewInMemoryTariffCache(time.Minute)
	ctx := context.Background()

	morning := time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 6, 30, 20, 0, 0, 0, time.UTC)

	c.SetResolved(ctx, tariff.CategoryCommercial, morning, testTariff(tariff.CategoryCommercial))

	_, ok := c.GetResolved(ctx, tariff.CategoryCommercial, evening)
	assert.True(t, ok)
}

func TestInMemoryTariffCache_InvalidateCategory(t *testing.T) {
	c := NewInMemoryTariffCache(time.Minute)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	c.SetResolved(ctx, tariff.CategoryResidential, asOf, testTariff(tariff.CategoryResidential))
	c.SetResolved(ctx, tariff.CategoryCommercial, asOf, testTariff(tariff.CategoryCommercial))

	c.InvalidateCategory(ctx, tariff.CategoryResidential)

	_, ok := c.GetResolved(ctx, tariff.CategoryResidential, asOf)
	assert.False(t, ok)
	_, ok = c.GetResolved(ctx, tariff.CategoryCommercial, asOf)
	assert.True(t, ok)
}

func TestInMemoryTariffCache_Expiry(t *testing.T) {
	c := NewInMemoryTariffCache(10 * time.Millisecond)
	ctx := context.Background()
	asOf := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	c.SetResolved(ctx, tariff.CategoryResidential, asOf, testTariff(tariff.CategoryResidential))
	time.Sleep(20 * time.Millisecond)

	_, ok := c.GetResolved(ctx, tariff.CategoryResidential, asOf)
	assert.False(t, ok)
}
