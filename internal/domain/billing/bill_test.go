package billing

import (
	"testing"
	"time"

	"github.com/powergrid/backend/internal/domain/shared"
	"github.com/powergrid/backend/internal/domain/shared/valueobject"
	"github.com/powergrid/backend/internal/domain/tariff"
	"github.com/google/uuid"
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

// residentialTariff builds the three-band fixture table:
// 0-100 @ 5.0, 100-300 @ 7.5, 300+ @ 10.0, fixed 50, duty 16%, GST 18%
func residentialTariff(t *testing.T) *tariff.Tariff {
	t.Helper()
	tar, err := tariff.NewTariff(
		tariff.CategoryResidential,
		d("50"),
		d("16"),
		d("18"),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		[]tariff.Slab{
			{Order: 0, StartUnits: d("0"), EndUnits: dp("100"), RatePerUnit: d("5.0")},
			{Order: 1, StartUnits: d("100"), EndUnits: dp("300"), RatePerUnit: d("7.5")},
			{Order: 2, StartUnits: d("300"), EndUnits: nil, RatePerUnit: d("10.0")},
		},
	)
	require.NoError(t, err)
	return tar
}

func issuedBill(t *testing.T, tar *tariff.Tariff, units string) *Bill {
	t.Helper()
	charges, err := ComputeCharges(tar, d(units))
	require.NoError(t, err)
	bill, err := NewBill(
		"BILL-2024-00000042",
		uuid.New(),
		uuid.New(),
		tar.ID,
		"2024-06",
		charges,
		time.Date(2024, 6, 7, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, bill.Issue())
	return bill
}

func generatedBill(t *testing.T, tar *tariff.Tariff, units string) *Bill {
	t.Helper()
	charges, err := ComputeCharges(tar, d(units))
	require.NoError(t, err)
	bill, err := NewBill(
		"BILL-2024-00000042",
		uuid.New(),
		uuid.New(),
		tar.ID,
		"2024-06",
		charges,
		time.Date(2024, 6, 7, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return bill
}

func TestComputeCharges_Breakdown(t *testing.T) {
	tar := residentialTariff(t)

	// 250 units: 100*5.0 + 150*7.5 = 1625.00 base, duty 260.00,
	// subtotal 1935.00, GST 348.30, total 2283.30
	charges, err := ComputeCharges(tar, d("250"))
	require.NoError(t, err)

	assert.Equal(t, "1625.00", charges.BaseAmount.StringFixed(2))
	assert.Equal(t, "50.00", charges.FixedCharges.StringFixed(2))
	assert.Equal(t, "260.00", charges.ElectricityDuty.StringFixed(2))
	assert.Equal(t, "1935.00", charges.Subtotal.StringFixed(2))
	assert.Equal(t, "348.30", charges.GSTAmount.StringFixed(2))
	assert.Equal(t, "2283.30", charges.TotalAmount.StringFixed(2))
}

func TestComputeCharges_ComponentsSumToTotal(t *testing.T) {
	tar := residentialTariff(t)

	for units := 0; units <= 600; units += 37 {
		charges, err := ComputeCharges(tar, decimal.NewFromInt(int64(units)))
		require.NoError(t, err)

		sum := charges.BaseAmount.
			MustAdd(charges.FixedCharges).
			MustAdd(charges.ElectricityDuty).
			MustAdd(charges.GSTAmount)
		assert.True(t, sum.Equals(charges.TotalAmount),
			"units=%d: %s + lines != total %s", units, sum, charges.TotalAmount)
	}
}

func TestComputeCharges_ZeroConsumption(t *testing.T) {
	tar := residentialTariff(t)

	// Zero units still carry the fixed charge and its GST.
	charges, err := ComputeCharges(tar, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, "0.00", charges.BaseAmount.StringFixed(2))
	assert.Equal(t, "0.00", charges.ElectricityDuty.StringFixed(2))
	assert.Equal(t, "50.00", charges.Subtotal.StringFixed(2))
	assert.Equal(t, "9.00", charges.GSTAmount.StringFixed(2))
	assert.Equal(t, "59.00", charges.TotalAmount.StringFixed(2))
}

func TestNewBill_Validation(t *testing.T) {
	tar := residentialTariff(t)
	charges, err := ComputeCharges(tar, d("250"))
	require.NoError(t, err)
	issue := time.Date(2024, 6, 7, 10, 0, 0, 0, time.UTC)

	t.Run("rejects empty bill number", func(t *testing.T) {
		_, err := NewBill("", uuid.New(), uuid.New(), tar.ID, "2024-06", charges, issue)
		assert.Error(t, err)
	})

	t.Run("rejects malformed billing month", func(t *testing.T) {
		_, err := NewBill("BILL-2024-00000042", uuid.New(), uuid.New(), tar.ID, "June 2024", charges, issue)
		assert.Error(t, err)
	})

	t.Run("rejects nil customer", func(t *testing.T) {
		_, err := NewBill("BILL-2024-00000042", uuid.Nil, uuid.New(), tar.ID, "2024-06", charges, issue)
		assert.Error(t, err)
	})
}

func TestNewBill_DueDateFifteenDaysOut(t *testing.T) {
	tar := residentialTariff(t)
	bill := generatedBill(t, tar, "250")

	assert.Equal(t, BillStatusGenerated, bill.Status)
	assert.Equal(t, time.Date(2024, 6, 22, 10, 0, 0, 0, time.UTC), bill.DueDate)
	assert.Nil(t, bill.PaymentDate)
}

func TestBill_Issue(t *testing.T) {
	tar := residentialTariff(t)

	t.Run("moves generated bill to issued", func(t *testing.T) {
		bill := generatedBill(t, tar, "250")
		require.NoError(t, bill.Issue())
		assert.Equal(t, BillStatusIssued, bill.Status)
	})

	t.Run("refuses to issue twice", func(t *testing.T) {
		bill := issuedBill(t, tar, "250")
		assert.Error(t, bill.Issue())
	})

	t.Run("generated bill rejects payments until issued", func(t *testing.T) {
		bill := generatedBill(t, tar, "250")
		assert.False(t, bill.IsPayable())
		_, err := bill.RegisterPayment(bill.TotalAmount, time.Now())
		assert.Error(t, err)

		require.NoError(t, bill.Issue())
		settled, err := bill.RegisterPayment(bill.TotalAmount, time.Now())
		require.NoError(t, err)
		assert.True(t, settled)
	})
}

func TestBill_RegisterPayment_FullAmountSettles(t *testing.T) {
	tar := residentialTariff(t)
	bill := issuedBill(t, tar, "250")
	paidAt := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	settled, err := bill.RegisterPayment(bill.TotalAmount, paidAt)
	require.NoError(t, err)

	assert.True(t, settled)
	assert.Equal(t, BillStatusPaid, bill.Status)
	require.NotNil(t, bill.PaymentDate)
	assert.Equal(t, paidAt, *bill.PaymentDate)
	assert.True(t, bill.OutstandingAmount().IsZero())
}

func TestBill_RegisterPayment_OneCentShortStaysOpen(t *testing.T) {
	tar := residentialTariff(t)
	bill := issuedBill(t, tar, "250")

	short := valueobject.NewMoneyPKR(bill.TotalAmount.Amount().Sub(d("0.01")))
	settled, err := bill.RegisterPayment(short, time.Now())
	require.NoError(t, err)

	assert.False(t, settled)
	assert.Equal(t, BillStatusIssued, bill.Status)
	assert.Nil(t, bill.PaymentDate)
}

func TestBill_RegisterPayment_OverpaymentSettles(t *testing.T) {
	tar := residentialTariff(t)
	bill := issuedBill(t, tar, "250")

	over := valueobject.NewMoneyPKR(bill.TotalAmount.Amount().Add(d("100")))
	settled, err := bill.RegisterPayment(over, time.Now())
	require.NoError(t, err)

	assert.True(t, settled)
	assert.Equal(t, BillStatusPaid, bill.Status)
}

func TestBill_RegisterPayment_AlreadyPaid(t *testing.T) {
	tar := residentialTariff(t)
	bill := issuedBill(t, tar, "250")

	_, err := bill.RegisterPayment(bill.TotalAmount, time.Now())
	require.NoError(t, err)

	_, err = bill.RegisterPayment(bill.TotalAmount, time.Now())
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeAlreadyPaid, domainErr.Code)
}

func TestBill_RegisterPayment_NonPositiveAmount(t *testing.T) {
	tar := residentialTariff(t)
	bill := issuedBill(t, tar, "250")

	_, err := bill.RegisterPayment(valueobject.ZeroPKR(), time.Now())
	assert.Error(t, err)

	_, err = bill.RegisterPayment(valueobject.NewMoneyPKR(d("-5")), time.Now())
	assert.Error(t, err)
}

func TestBill_RegisterPayment_OverdueBillStillPayable(t *testing.T) {
	tar := residentialTariff(t)
	bill := issuedBill(t, tar, "250")
	require.NoError(t, bill.MarkOverdue(bill.DueDate.AddDate(0, 0, 1)))

	settled, err := bill.RegisterPayment(bill.TotalAmount, time.Now())
	require.NoError(t, err)
	assert.True(t, settled)
	assert.Equal(t, BillStatusPaid, bill.Status)
}

func TestBill_MarkOverdue(t *testing.T) {
	tar := residentialTariff(t)

	t.Run("flags issued bill past due date", func(t *testing.T) {
		bill := issuedBill(t, tar, "250")
		err := bill.MarkOverdue(bill.DueDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, BillStatusOverdue, bill.Status)
	})

	t.Run("refuses before due date", func(t *testing.T) {
		bill := issuedBill(t, tar, "250")
		err := bill.MarkOverdue(bill.DueDate.AddDate(0, 0, -1))
		assert.Error(t, err)
		assert.Equal(t, BillStatusIssued, bill.Status)
	})

	t.Run("refuses for paid bill", func(t *testing.T) {
		bill := issuedBill(t, tar, "250")
		_, err := bill.RegisterPayment(bill.TotalAmount, time.Now())
		require.NoError(t, err)
		assert.Error(t, bill.MarkOverdue(bill.DueDate.AddDate(0, 0, 1)))
	})
}

func TestBill_Cancel(t *testing.T) {
	tar := residentialTariff(t)

	t.Run("voids an issued bill", func(t *testing.T) {
		bill := issuedBill(t, tar, "250")
		require.NoError(t, bill.Cancel("duplicate reading"))
		assert.Equal(t, BillStatusCancelled, bill.Status)
		assert.True(t, bill.OutstandingAmount().IsZero())
	})

	t.Run("refuses for paid bill", func(t *testing.T) {
		bill := issuedBill(t, tar, "250")
		_, err := bill.RegisterPayment(bill.TotalAmount, time.Now())
		require.NoError(t, err)
		assert.Error(t, bill.Cancel("late void"))
	})
}
