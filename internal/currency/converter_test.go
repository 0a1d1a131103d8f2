package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/astekno/paytrack-be/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestToBase_LocalCurrencyIsIdentity(t *testing.T) {
	rates := domain.DefaultRates()

	got := ToBase(d("150.75"), domain.CurrencyTL, rates)

	assert.True(t, got.Equal(d("150.75")))
}

func TestToBase_MultipliesByRate(t *testing.T) {
	rates := domain.DefaultRates()

	got := ToBase(d("100"), domain.CurrencyUSD, rates)

	assert.True(t, got.Equal(d("3450")))
}

func TestToBase_UnknownCurrencyKeepsFaceValue(t *testing.T) {
	rates := domain.DefaultRates()

	got := ToBase(d("100"), domain.Currency("JPY"), rates)

	assert.True(t, got.Equal(d("100")))
}

func TestCrossRate_SameCurrencyIsOne(t *testing.T) {
	rates := domain.DefaultRates()

	for _, ccy := range []domain.Currency{domain.CurrencyTL, domain.CurrencyUSD, domain.CurrencyEUR, domain.CurrencySTG} {
		got := CrossRate(ccy, ccy, rates)
		assert.True(t, got.Equal(d("1")), "cross rate for %s", ccy)
	}
}

func TestCrossRate_GoesThroughBase(t *testing.T) {
	rates := domain.RateTable{
		domain.CurrencyTL:  d("1"),
		domain.CurrencyUSD: d("34.50"),
		domain.CurrencyEUR: d("37.20"),
	}

	usdToTL := CrossRate(domain.CurrencyUSD, domain.CurrencyTL, rates)
	assert.True(t, usdToTL.Equal(d("34.50")))

	// 100 USD in EUR: 100 * 34.50 / 37.20
	usdToEUR := CrossRate(domain.CurrencyUSD, domain.CurrencyEUR, rates)
	amount := d("100").Mul(usdToEUR)
	assert.True(t, amount.Equal(d("3450").Div(d("37.20"))))
}

func TestCrossRate_UnknownCodesCountAsOne(t *testing.T) {
	rates := domain.DefaultRates()

	got := CrossRate(domain.Currency("JPY"), domain.CurrencyTL, rates)

	assert.True(t, got.Equal(d("1")))
}
