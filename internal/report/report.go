// Package report computes totals, distributions and top-N breakdowns over
// a view, normalized to a chosen base currency.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/currency"
	"github.com/astekno/paytrack-be/internal/domain"
)

// Summary holds the headline numbers for a view, all in the base currency.
type Summary struct {
	RecordCount    int             `json:"record_count"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	TotalDebt      decimal.Decimal `json:"total_debt"`
	BaseCurrency   domain.Currency `json:"base_currency"`
}

// Summarize sums each record's monetary fields after conversion to the
// base currency.
func Summarize(view []domain.PaymentRecord, rates domain.RateTable, base domain.Currency) Summary {
	sum := Summary{RecordCount: len(view), BaseCurrency: base}
	for _, rec := range view {
		rate := currency.CrossRate(rec.Currency, base, rates)
		sum.TotalPaid = sum.TotalPaid.Add(rec.Paid.Mul(rate))
		sum.TotalRemaining = sum.TotalRemaining.Add(rec.Remaining.Mul(rate))
		sum.TotalDebt = sum.TotalDebt.Add(rec.TotalDebt.Mul(rate))
	}
	return sum
}

// DistributionByStatus counts records per known payment status. Unknown
// statuses are skipped, not errored.
func DistributionByStatus(records []domain.PaymentRecord) map[domain.PaymentStatus]int {
	known := map[domain.PaymentStatus]bool{
		domain.StatusPaid:          true,
		domain.StatusPartiallyPaid: true,
		domain.StatusUnpaid:        true,
		domain.StatusPending:       true,
	}
	out := make(map[domain.PaymentStatus]int)
	for _, rec := range records {
		if known[rec.PaymentStatus] {
			out[rec.PaymentStatus]++
		}
	}
	return out
}

// FieldValue extracts a grouping value from a record; implementations
// return ok=false for a missing value.
type FieldValue func(domain.PaymentRecord) (string, bool)

// GroupByCategory groups on the record category.
func GroupByCategory(rec domain.PaymentRecord) (string, bool) {
	return rec.Category, rec.Category != ""
}

// GroupByProject groups on the project name.
func GroupByProject(rec domain.PaymentRecord) (string, bool) {
	if rec.Project == nil || *rec.Project == "" {
		return "", false
	}
	return *rec.Project, true
}

// GroupByCounterparty groups on the counterparty name.
func GroupByCounterparty(rec domain.PaymentRecord) (string, bool) {
	if rec.Counterparty == nil || *rec.Counterparty == "" {
		return "", false
	}
	return *rec.Counterparty, true
}

// GroupByCurrency groups on the record currency.
func GroupByCurrency(rec domain.PaymentRecord) (string, bool) {
	return string(rec.Currency), rec.Currency != ""
}

// OtherBucket collects records whose grouping value is missing.
const OtherBucket = "Diğer"

// DistributionByField counts records per grouping value, with missing
// values collected into the "Diğer" bucket.
func DistributionByField(records []domain.PaymentRecord, field FieldValue) map[string]int {
	out := make(map[string]int)
	for _, rec := range records {
		key, ok := field(rec)
		if !ok {
			key = OtherBucket
		}
		out[key]++
	}
	return out
}

// GroupTotal is one row of a top-N breakdown.
type GroupTotal struct {
	Group string          `json:"group"`
	Total decimal.Decimal `json:"total"`
}

// ValueField extracts the amount a record contributes to its group.
type ValueField func(domain.PaymentRecord) decimal.Decimal

func ValueTotalDebt(rec domain.PaymentRecord) decimal.Decimal { return rec.TotalDebt }

func ValuePaid(rec domain.PaymentRecord) decimal.Decimal { return rec.Paid }

func ValueRemaining(rec domain.PaymentRecord) decimal.Decimal { return rec.Remaining }

// TopN totals the value field per group in the base currency and returns
// the n largest groups, descending. Ties keep first-encountered order.
func TopN(records []domain.PaymentRecord, group FieldValue, value ValueField, n int, rates domain.RateTable, base domain.Currency) []GroupTotal {
	totals := make(map[string]decimal.Decimal)
	order := make([]string, 0)

	for _, rec := range records {
		key, ok := group(rec)
		if !ok {
			key = OtherBucket
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		rate := currency.CrossRate(rec.Currency, base, rates)
		totals[key] = totals[key].Add(value(rec).Mul(rate))
	}

	out := make([]GroupTotal, 0, len(order))
	for _, key := range order {
		out = append(out, GroupTotal{Group: key, Total: totals[key]})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
