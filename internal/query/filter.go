// Package query is the pure filter/sort pipeline between the record store
// and the reporting layer. Nothing here mutates its input.
package query

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/domain"
)

// Criteria describes one filter pass. Zero-valued fields mean "no
// constraint"; active constraints are ANDed.
type Criteria struct {
	Search         string
	InvoiceStatus  domain.InvoiceStatus
	Currency       domain.Currency
	PaymentStatus  domain.PaymentStatus
	Counterparties []string
	Projects       []string
	MinAmount      *decimal.Decimal
	MaxAmount      *decimal.Decimal
}

// Filter returns the subset of records matching the criteria, preserving
// input order.
func Filter(records []domain.PaymentRecord, crit Criteria) []domain.PaymentRecord {
	search := strings.ToLower(strings.TrimSpace(crit.Search))

	out := make([]domain.PaymentRecord, 0, len(records))
	for _, rec := range records {
		if search != "" && !matchesSearch(rec, search) {
			continue
		}
		if crit.InvoiceStatus != "" && rec.InvoiceStatus != crit.InvoiceStatus {
			continue
		}
		if crit.Currency != "" && rec.Currency != crit.Currency {
			continue
		}
		if crit.PaymentStatus != "" && rec.PaymentStatus != crit.PaymentStatus {
			continue
		}
		if len(crit.Counterparties) > 0 && !containsOptional(crit.Counterparties, rec.Counterparty) {
			continue
		}
		if len(crit.Projects) > 0 && !containsOptional(crit.Projects, rec.Project) {
			continue
		}
		if crit.MinAmount != nil && rec.TotalDebt.LessThan(*crit.MinAmount) {
			continue
		}
		if crit.MaxAmount != nil && rec.TotalDebt.GreaterThan(*crit.MaxAmount) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// matchesSearch matches when any of description, counterparty or project
// contains the term, case-insensitively.
func matchesSearch(rec domain.PaymentRecord, term string) bool {
	if strings.Contains(strings.ToLower(rec.Description), term) {
		return true
	}
	if rec.Counterparty != nil && strings.Contains(strings.ToLower(*rec.Counterparty), term) {
		return true
	}
	if rec.Project != nil && strings.Contains(strings.ToLower(*rec.Project), term) {
		return true
	}
	return false
}

func containsOptional(set []string, value *string) bool {
	if value == nil {
		return false
	}
	for _, s := range set {
		if s == *value {
			return true
		}
	}
	return false
}
