package domain

import "github.com/shopspring/decimal"

// DeriveStatus computes the payment status from the total debt and the
// amount paid. Rules apply in order, first match wins:
//
//  1. nothing paid against a positive debt     -> UNPAID
//  2. remaining <= 0 against a positive debt   -> PAID (covers overpayment)
//  3. 0 < remaining < total with paid > 0      -> PARTIALLY_PAID
//  4. anything else                            -> PENDING
//
// Rule 2 absorbs every non-positive remaining, so no later rule can see an
// already-settled record.
func DeriveStatus(totalDebt, paid decimal.Decimal) PaymentStatus {
	if paid.IsZero() && totalDebt.IsPositive() {
		return StatusUnpaid
	}
	remaining := totalDebt.Sub(paid)
	if remaining.Sign() <= 0 && totalDebt.IsPositive() {
		return StatusPaid
	}
	if remaining.Sign() > 0 && remaining.LessThan(totalDebt) && paid.IsPositive() {
		return StatusPartiallyPaid
	}
	return StatusPending
}
