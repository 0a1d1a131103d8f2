package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astekno/paytrack-be/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func TestSummarize_ConvertsToBaseCurrency(t *testing.T) {
	records := []domain.PaymentRecord{
		{
			Currency:  domain.CurrencyUSD,
			TotalDebt: d("5565"),
			Paid:      d("150000"),
			Remaining: d("-144435"),
		},
		{
			Currency:  domain.CurrencyTL,
			TotalDebt: d("155000"),
			Paid:      d("150000"),
			Remaining: d("5000"),
		},
	}
	rates := domain.RateTable{
		domain.CurrencyTL:  d("1"),
		domain.CurrencyUSD: d("34.5"),
	}

	sum := Summarize(records, rates, domain.CurrencyTL)

	assert.Equal(t, 2, sum.RecordCount)
	// 5565 * 34.5 = 191992.50, plus 155000.
	assert.True(t, sum.TotalDebt.Equal(d("346992.50")), "got %s", sum.TotalDebt)
	// 150000 * 34.5 + 150000.
	assert.True(t, sum.TotalPaid.Equal(d("5325000")), "got %s", sum.TotalPaid)
	// -144435 * 34.5 + 5000.
	assert.True(t, sum.TotalRemaining.Equal(d("-4978007.50")), "got %s", sum.TotalRemaining)
	assert.Equal(t, domain.CurrencyTL, sum.BaseCurrency)
}

func TestSummarize_EmptyView(t *testing.T) {
	sum := Summarize(nil, domain.DefaultRates(), domain.CurrencyTL)

	assert.Equal(t, 0, sum.RecordCount)
	assert.True(t, sum.TotalDebt.IsZero())
}

func TestDistributionByStatus_SkipsUnknown(t *testing.T) {
	records := []domain.PaymentRecord{
		{PaymentStatus: domain.StatusPaid},
		{PaymentStatus: domain.StatusPaid},
		{PaymentStatus: domain.StatusUnpaid},
		{PaymentStatus: domain.PaymentStatus("BOGUS")},
	}

	got := DistributionByStatus(records)

	assert.Equal(t, 2, got[domain.StatusPaid])
	assert.Equal(t, 1, got[domain.StatusUnpaid])
	assert.Len(t, got, 2)
}

func TestDistributionByField_MissingGoesToOtherBucket(t *testing.T) {
	records := []domain.PaymentRecord{
		{Project: strPtr("Konut A")},
		{Project: strPtr("Konut A")},
		{Project: nil},
	}

	got := DistributionByField(records, GroupByProject)

	assert.Equal(t, 2, got["Konut A"])
	assert.Equal(t, 1, got[OtherBucket])
}

func TestTopN_DescendingInBaseCurrency(t *testing.T) {
	records := []domain.PaymentRecord{
		{Counterparty: strPtr("Firma A"), Currency: domain.CurrencyTL, TotalDebt: d("1000")},
		{Counterparty: strPtr("Firma B"), Currency: domain.CurrencyUSD, TotalDebt: d("100")},
		{Counterparty: strPtr("Firma A"), Currency: domain.CurrencyTL, TotalDebt: d("500")},
		{Counterparty: strPtr("Firma C"), Currency: domain.CurrencyTL, TotalDebt: d("10")},
	}
	rates := domain.RateTable{
		domain.CurrencyTL:  d("1"),
		domain.CurrencyUSD: d("34.50"),
	}

	got := TopN(records, GroupByCounterparty, ValueTotalDebt, 2, rates, domain.CurrencyTL)

	require.Len(t, got, 2)
	// Firma B: 100 USD = 3450 TL beats Firma A's 1500 TL.
	assert.Equal(t, "Firma B", got[0].Group)
	assert.True(t, got[0].Total.Equal(d("3450")))
	assert.Equal(t, "Firma A", got[1].Group)
	assert.True(t, got[1].Total.Equal(d("1500")))
}

func TestTopN_TiesKeepFirstEncounteredOrder(t *testing.T) {
	records := []domain.PaymentRecord{
		{Counterparty: strPtr("Firma X"), Currency: domain.CurrencyTL, TotalDebt: d("100")},
		{Counterparty: strPtr("Firma Y"), Currency: domain.CurrencyTL, TotalDebt: d("100")},
	}

	got := TopN(records, GroupByCounterparty, ValueTotalDebt, 0, domain.DefaultRates(), domain.CurrencyTL)

	require.Len(t, got, 2)
	assert.Equal(t, "Firma X", got[0].Group)
	assert.Equal(t, "Firma Y", got[1].Group)
}

func TestTopN_MissingGroupFallsIntoOtherBucket(t *testing.T) {
	records := []domain.PaymentRecord{
		{Counterparty: nil, Currency: domain.CurrencyTL, TotalDebt: d("42")},
	}

	got := TopN(records, GroupByCounterparty, ValueTotalDebt, 0, domain.DefaultRates(), domain.CurrencyTL)

	require.Len(t, got, 1)
	assert.Equal(t, OtherBucket, got[0].Group)
	assert.True(t, got[0].Total.Equal(d("42")))
}
