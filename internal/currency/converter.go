// Package currency converts amounts between the currencies a payment
// record may be denominated in, using a rate table quoted against TL.
package currency

import (
	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/domain"
)

// ToBase converts an amount in the given currency to TL. An unknown
// currency code converts with rate 1; records with a typo'd currency keep
// their face value instead of breaking every total that includes them.
func ToBase(amount decimal.Decimal, ccy domain.Currency, rates domain.RateTable) decimal.Decimal {
	rate, ok := rates[ccy]
	if !ok {
		return amount
	}
	return amount.Mul(rate)
}

// CrossRate returns the multiplier that converts an amount in from-currency
// to to-currency, going through TL. Unknown codes count as rate 1.
func CrossRate(from, to domain.Currency, rates domain.RateTable) decimal.Decimal {
	if from == to {
		return decimal.NewFromInt(1)
	}
	fromRate, ok := rates[from]
	if !ok {
		fromRate = decimal.NewFromInt(1)
	}
	toRate, ok := rates[to]
	if !ok || toRate.IsZero() {
		toRate = decimal.NewFromInt(1)
	}
	return fromRate.Div(toRate)
}
