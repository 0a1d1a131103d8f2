package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyTL  Currency = "TL" // local currency
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencySTG Currency = "STG" // GBP, local naming
)

// LocalCurrency is the base everything is quoted against.
const LocalCurrency = CurrencyTL

type InvoiceStatus string

const (
	Invoiced    InvoiceStatus = "FATURALI"
	NotInvoiced InvoiceStatus = "FATURASIZ"
)

type PaymentStatus string

const (
	StatusPaid          PaymentStatus = "PAID"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	StatusUnpaid        PaymentStatus = "UNPAID"
	StatusPending       PaymentStatus = "PENDING"
)

// PaymentRecord is one payment/debt line item. Monetary fields are in the
// record's own currency. TotalDebt and Remaining are recomputed on every
// write through this service; a record updated directly in the backend by
// another actor may carry stale derived values until the next edit.
type PaymentRecord struct {
	ID            string          `json:"id" db:"id"`
	SeqNo         int             `json:"sira_no" db:"sira_no"`
	Description   string          `json:"odeme_kalemleri" db:"odeme_kalemleri"`
	Counterparty  *string         `json:"firma_fatura_ismi" db:"firma_fatura_ismi"`
	Category      string          `json:"isin_nevi" db:"isin_nevi"`
	InvoiceStatus InvoiceStatus   `json:"fatura_durumu" db:"fatura_durumu"`
	Project       *string         `json:"isin_adi" db:"isin_adi"`
	Currency      Currency        `json:"para_birimi" db:"para_birimi"`
	CarriedDebt   decimal.Decimal `json:"onceki_donemden_kalan_borc" db:"onceki_donemden_kalan_borc"`
	CurrentDebt   decimal.Decimal `json:"bu_ayki_borc" db:"bu_ayki_borc"`
	TotalDebt     decimal.Decimal `json:"toplam_borc" db:"toplam_borc"`
	Paid          decimal.Decimal `json:"bu_ay_odenen" db:"bu_ay_odenen"`
	Remaining     decimal.Decimal `json:"kalan" db:"kalan"`
	PaymentStatus PaymentStatus   `json:"odeme_durumu" db:"odeme_durumu"`
	DocumentURL   *string         `json:"belge_url" db:"belge_url"`
	Period        string          `json:"donem" db:"donem"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Recompute refreshes the derived fields from the primary ones.
func (r *PaymentRecord) Recompute() {
	r.TotalDebt = r.CarriedDebt.Add(r.CurrentDebt)
	r.Remaining = r.TotalDebt.Sub(r.Paid)
	r.PaymentStatus = DeriveStatus(r.TotalDebt, r.Paid)
}

// RateTable maps each currency to its value in TL. TL always maps to 1.
type RateTable map[Currency]decimal.Decimal

// DefaultRates are the seed values used until a persisted snapshot or a
// live fetch replaces them.
func DefaultRates() RateTable {
	return RateTable{
		CurrencyTL:  decimal.NewFromInt(1),
		CurrencyUSD: decimal.RequireFromString("34.50"),
		CurrencyEUR: decimal.RequireFromString("37.20"),
		CurrencySTG: decimal.RequireFromString("43.80"),
	}
}

// Clone returns an independent copy of the table.
func (t RateTable) Clone() RateTable {
	out := make(RateTable, len(t))
	for c, r := range t {
		out[c] = r
	}
	return out
}

type ChangeEventType string

const (
	ChangeInsert ChangeEventType = "INSERT"
	ChangeUpdate ChangeEventType = "UPDATE"
	ChangeDelete ChangeEventType = "DELETE"
)

// ChangeEvent is one backend-originated change notification. The payload is
// advisory only; consumers reconcile by reloading authoritative state.
type ChangeEvent struct {
	Type     ChangeEventType `json:"event_type"`
	RecordID string          `json:"record_id,omitempty"`
}
