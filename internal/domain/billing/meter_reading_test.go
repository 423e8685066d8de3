package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeterReading_DerivesUnits(t *testing.T) {
	reading, err := NewMeterReading(
		uuid.New(),
		"MTR-584721",
		d("1200"),
		d("1450"),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		uuid.New(),
	)
	require.NoError(t, err)

	assert.True(t, reading.UnitsConsumed.Equal(d("250")))
	assert.False(t, reading.Billed)
}

func TestNewMeterReading_Validation(t *testing.T) {
	customerID := uuid.New()
	readBy := uuid.New()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects current below previous", func(t *testing.T) {
		_, err := NewMeterReading(customerID, "MTR-584721", d("1450"), d("1200"), date, readBy)
		assert.Error(t, err)
	})

	t.Run("rejects negative previous reading", func(t *testing.T) {
		_, err := NewMeterReading(customerID, "MTR-584721", d("-1"), d("10"), date, readBy)
		assert.Error(t, err)
	})

	t.Run("rejects missing meter number", func(t *testing.T) {
		_, err := NewMeterReading(customerID, "", d("0"), d("10"), date, readBy)
		assert.Error(t, err)
	})

	t.Run("allows equal readings for zero consumption", func(t *testing.T) {
		reading, err := NewMeterReading(customerID, "MTR-584721", d("1450"), d("1450"), date, readBy)
		require.NoError(t, err)
		assert.True(t, reading.UnitsConsumed.IsZero())
	})
}

func TestMeterReading_MarkBilled(t *testing.T) {
	reading, err := NewMeterReading(
		uuid.New(), "MTR-584721", d("1200"), d("1450"),
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), uuid.New(),
	)
	require.NoError(t, err)

	require.NoError(t, reading.MarkBilled())
	assert.True(t, reading.Billed)

	// The same reading never prices two bills.
	assert.Error(t, reading.MarkBilled())
}
