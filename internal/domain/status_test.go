package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		totalDebt string
		paid      string
		expected  PaymentStatus
	}{
		{"nothing paid", "1000", "0", StatusUnpaid},
		{"fully paid", "1000", "1000", StatusPaid},
		{"overpaid", "1000", "1500", StatusPaid},
		{"partially paid", "1000", "400", StatusPartiallyPaid},
		{"no debt no payment", "0", "0", StatusPending},
		{"no debt but payment", "0", "100", StatusPending},
		{"fractional remainder", "100.01", "100", StatusPartiallyPaid},
		{"fractional full payment", "100.01", "100.01", StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(d(tt.totalDebt), d(tt.paid))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRecompute(t *testing.T) {
	rec := PaymentRecord{
		CarriedDebt: d("250.50"),
		CurrentDebt: d("749.50"),
		Paid:        d("400"),
	}

	rec.Recompute()

	assert.True(t, rec.TotalDebt.Equal(d("1000")))
	assert.True(t, rec.Remaining.Equal(d("600")))
	assert.Equal(t, StatusPartiallyPaid, rec.PaymentStatus)
}

func TestRecompute_ZeroRecordIsPending(t *testing.T) {
	rec := PaymentRecord{}

	rec.Recompute()

	assert.True(t, rec.TotalDebt.IsZero())
	assert.True(t, rec.Remaining.IsZero())
	assert.Equal(t, StatusPending, rec.PaymentStatus)
}

func TestRateTable_Clone(t *testing.T) {
	original := DefaultRates()

	clone := original.Clone()
	clone[CurrencyUSD] = d("99")

	assert.True(t, original[CurrencyUSD].Equal(d("34.50")))
	assert.True(t, clone[CurrencyUSD].Equal(d("99")))
}
