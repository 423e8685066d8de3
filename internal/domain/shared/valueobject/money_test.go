package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), PKR)
		require.NoError(t, err)
		assert.Equal(t, PKR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyPKRFromFloat(1625.00)
	b := NewMoneyPKRFromFloat(50.00)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "1675.00", sum.StringFixed(2))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "1575.00", diff.StringFixed(2))

	t.Run("mismatched currencies rejected", func(t *testing.T) {
		foreign, err := NewMoney(decimal.NewFromInt(1), "USD")
		require.NoError(t, err)
		_, err = a.Add(foreign)
		assert.Error(t, err)
		_, err = a.Subtract(foreign)
		assert.Error(t, err)
	})
}

func TestMoney_CalculatePercentage(t *testing.T) {
	base := NewMoneyPKRFromFloat(1625.00)
	duty := base.CalculatePercentage(decimal.NewFromInt(16))
	assert.Equal(t, "260.00", duty.StringFixed(2))

	subtotal := NewMoneyPKRFromFloat(1935.00)
	gst := subtotal.CalculatePercentage(decimal.NewFromInt(18))
	assert.Equal(t, "348.30", gst.StringFixed(2))
}

func TestMoney_RoundBill(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.005", "10.01"}, // half rounds up
		{"10.004", "10.00"},
		{"10.015", "10.02"},
		{"348.30", "348.30"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := NewMoneyPKRFromString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.RoundBill().StringFixed(2))
		})
	}
}

func TestMoney_Comparisons(t *testing.T) {
	small := NewMoneyPKRFromFloat(99.99)
	big := NewMoneyPKRFromFloat(100.00)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gte, err := big.GreaterThanOrEqual(small)
	require.NoError(t, err)
	assert.True(t, gte)

	gte, err = big.GreaterThanOrEqual(big)
	require.NoError(t, err)
	assert.True(t, gte)

	assert.True(t, big.Equals(NewMoneyPKRFromFloat(100.00)))
	assert.False(t, big.Equals(small))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyPKRFromFloat(2283.30)
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_Scan(t *testing.T) {
	t.Run("scans string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("123.45"))
		assert.Equal(t, "123.45", m.StringFixed(2))
		assert.Equal(t, PKR, m.Currency())
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(42))
	})
}
