package tariff

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func dp(v string) *decimal.Decimal {
	x := decimal.RequireFromString(v)
	return &x
}

func slab(order int, start string, end *decimal.Decimal, rate string) Slab {
	return Slab{Order: order, StartUnits: d(start), EndUnits: end, RatePerUnit: d(rate)}
}

// residentialSlabs is the three-band table the billing fixtures use:
// 0-100 @ 5.0, 100-300 @ 7.5, 300+ @ 10.0
func residentialSlabs() []Slab {
	return []Slab{
		slab(0, "0", dp("100"), "5.0"),
		slab(1, "100", dp("300"), "7.5"),
		slab(2, "300", nil, "10.0"),
	}
}

func fiveSlabs() []Slab {
	return []Slab{
		slab(0, "0", dp("50"), "3.95"),
		slab(1, "50", dp("100"), "7.74"),
		slab(2, "100", dp("200"), "10.06"),
		slab(3, "200", dp("300"), "12.15"),
		slab(4, "300", nil, "19.55"),
	}
}

func newResidentialTariff(t *testing.T) *Tariff {
	t.Helper()
	tar, err := NewTariff(
		CategoryResidential,
		d("50"),
		d("16"),
		d("18"),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		residentialSlabs(),
	)
	require.NoError(t, err)
	return tar
}

func TestCategory_IsValid(t *testing.T) {
	assert.True(t, CategoryResidential.IsValid())
	assert.True(t, CategoryCommercial.IsValid())
	assert.True(t, CategoryIndustrial.IsValid())
	assert.True(t, CategoryAgricultural.IsValid())
	assert.False(t, Category("household").IsValid())
	assert.False(t, Category("").IsValid())
}

func TestNewTariff_Validation(t *testing.T) {
	effective := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := NewTariff("household", d("50"), d("16"), d("18"), effective, residentialSlabs())
		assert.Error(t, err)
	})

	t.Run("rejects negative fixed charge", func(t *testing.T) {
		_, err := NewTariff(CategoryResidential, d("-1"), d("16"), d("18"), effective, residentialSlabs())
		assert.Error(t, err)
	})

	t.Run("rejects empty slab table", func(t *testing.T) {
		_, err := NewTariff(CategoryResidential, d("50"), d("16"), d("18"), effective, nil)
		assert.Error(t, err)
	})

	t.Run("rejects first slab not starting at zero", func(t *testing.T) {
		slabs := []Slab{
			slab(0, "10", dp("100"), "5.0"),
			slab(1, "100", nil, "7.5"),
		}
		_, err := NewTariff(CategoryResidential, d("50"), d("16"), d("18"), effective, slabs)
		assert.Error(t, err)
	})

	t.Run("rejects non-contiguous slabs", func(t *testing.T) {
		slabs := []Slab{
			slab(0, "0", dp("100"), "5.0"),
			slab(1, "150", nil, "7.5"),
		}
		_, err := NewTariff(CategoryResidential, d("50"), d("16"), d("18"), effective, slabs)
		assert.Error(t, err)
	})

	t.Run("rejects bounded final slab", func(t *testing.T) {
		slabs := []Slab{
			slab(0, "0", dp("100"), "5.0"),
			slab(1, "100", dp("300"), "7.5"),
		}
		_, err := NewTariff(CategoryResidential, d("50"), d("16"), d("18"), effective, slabs)
		assert.Error(t, err)
	})

	t.Run("rejects unbounded middle slab", func(t *testing.T) {
		slabs := []Slab{
			slab(0, "0", nil, "5.0"),
			slab(1, "100", nil, "7.5"),
		}
		_, err := NewTariff(CategoryResidential, d("50"), d("16"), d("18"), effective, slabs)
		assert.Error(t, err)
	})

	t.Run("records creation event", func(t *testing.T) {
		tar := newResidentialTariff(t)
		events := tar.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "TariffCreated", events[0].EventType())
	})
}

func TestTariff_EvaluateSlabs(t *testing.T) {
	t.Run("single slab touched", func(t *testing.T) {
		tar := newResidentialTariff(t)
		base, err := tar.EvaluateSlabs(d("80"))
		require.NoError(t, err)
		assert.Equal(t, "400.00", base.StringFixed(2)) // 80 x 5.0
	})

	t.Run("boundary lands exactly on a slab edge", func(t *testing.T) {
		tar := newResidentialTariff(t)
		base, err := tar.EvaluateSlabs(d("100"))
		require.NoError(t, err)
		assert.Equal(t, "500.00", base.StringFixed(2))
	})

	t.Run("three slabs touched", func(t *testing.T) {
		tar := newResidentialTariff(t)
		base, err := tar.EvaluateSlabs(d("350"))
		require.NoError(t, err)
		// 100x5.0 + 200x7.5 + 50x10.0 = 500 + 1500 + 500
		assert.Equal(t, "2500.00", base.StringFixed(2))
	})

	t.Run("250 units prices the first two slabs", func(t *testing.T) {
		tar := newResidentialTariff(t)
		base, err := tar.EvaluateSlabs(d("250"))
		require.NoError(t, err)
		// 100x5.0 + 150x7.5 = 500 + 1125
		assert.Equal(t, "1625.00", base.StringFixed(2))
	})

	t.Run("five slabs touched", func(t *testing.T) {
		tar, err := NewTariff(CategoryCommercial, d("150"), d("16"), d("18"),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), fiveSlabs())
		require.NoError(t, err)

		base, err := tar.EvaluateSlabs(d("420"))
		require.NoError(t, err)
		// 50x3.95 + 50x7.74 + 100x10.06 + 100x12.15 + 120x19.55
		// = 197.50 + 387 + 1006 + 1215 + 2346 = 5151.50
		assert.Equal(t, "5151.50", base.StringFixed(2))
	})

	t.Run("zero and negative consumption price to zero", func(t *testing.T) {
		tar := newResidentialTariff(t)

		base, err := tar.EvaluateSlabs(decimal.Zero)
		require.NoError(t, err)
		assert.True(t, base.IsZero())

		base, err = tar.EvaluateSlabs(d("-5"))
		require.NoError(t, err)
		assert.True(t, base.IsZero())
	})

	t.Run("monotonically non-decreasing in units", func(t *testing.T) {
		tar := newResidentialTariff(t)
		prev := decimal.Zero
		for units := 0; units <= 600; units += 25 {
			base, err := tar.EvaluateSlabs(decimal.NewFromInt(int64(units)))
			require.NoError(t, err)
			assert.True(t, base.Amount().GreaterThanOrEqual(prev),
				"base amount decreased between %d-25 and %d units", units, units)
			prev = base.Amount()
		}
	})

	t.Run("malformed stored table surfaces a consistency error", func(t *testing.T) {
		tar := newResidentialTariff(t)
		// Simulate a corrupted row losing its unbounded tail.
		end := d("300")
		tar.Slabs[2].EndUnits = &end

		_, err := tar.EvaluateSlabs(d("500"))
		assert.Error(t, err)
	})
}

func TestTariff_Versioning(t *testing.T) {
	t.Run("close out supersedes an open version", func(t *testing.T) {
		tar := newResidentialTariff(t)
		require.True(t, tar.IsOpen())

		at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, tar.CloseOut(at))
		assert.False(t, tar.IsOpen())
		assert.Equal(t, at, *tar.ValidUntil)
	})

	t.Run("close out twice is rejected", func(t *testing.T) {
		tar := newResidentialTariff(t)
		require.NoError(t, tar.CloseOut(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
		assert.Error(t, tar.CloseOut(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("close out before effective date is rejected", func(t *testing.T) {
		tar := newResidentialTariff(t)
		assert.Error(t, tar.CloseOut(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("applies at honours both bounds", func(t *testing.T) {
		tar := newResidentialTariff(t)
		require.NoError(t, tar.CloseOut(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))

		assert.False(t, tar.AppliesAt(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
		assert.True(t, tar.AppliesAt(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
		assert.False(t, tar.AppliesAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	})
}
