package query

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/astekno/paytrack-be/internal/domain"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Sort field names follow the record's wire/column names.
const (
	FieldSeqNo         = "sira_no"
	FieldDescription   = "odeme_kalemleri"
	FieldCounterparty  = "firma_fatura_ismi"
	FieldCategory      = "isin_nevi"
	FieldInvoiceStatus = "fatura_durumu"
	FieldProject       = "isin_adi"
	FieldCurrency      = "para_birimi"
	FieldCarriedDebt   = "onceki_donemden_kalan_borc"
	FieldCurrentDebt   = "bu_ayki_borc"
	FieldTotalDebt     = "toplam_borc"
	FieldPaid          = "bu_ay_odenen"
	FieldRemaining     = "kalan"
	FieldPaymentStatus = "odeme_durumu"
	FieldPeriod        = "donem"
)

// Sorter tracks the last-used column so repeated clicks on the same column
// flip direction and a different column resets to ascending.
type Sorter struct {
	field string
	dir   Direction
}

// Toggle records a sort request for the given field and returns the
// direction to use.
func (s *Sorter) Toggle(field string) Direction {
	if s.field == field {
		if s.dir == Ascending {
			s.dir = Descending
		} else {
			s.dir = Ascending
		}
	} else {
		s.field = field
		s.dir = Ascending
	}
	return s.dir
}

func (s *Sorter) Field() string { return s.field }

func (s *Sorter) Direction() Direction { return s.dir }

// Sort returns a stably sorted copy. Missing values sort last regardless
// of direction; numeric fields compare numerically, everything else with
// locale-aware case-insensitive collation.
func Sort(records []domain.PaymentRecord, field string, dir Direction) []domain.PaymentRecord {
	out := append([]domain.PaymentRecord(nil), records...)
	coll := collate.New(language.Turkish, collate.IgnoreCase)

	sort.SliceStable(out, func(i, j int) bool {
		return less(coll, out[i], out[j], field, dir)
	})
	return out
}

type sortKey struct {
	missing bool
	num     decimal.Decimal
	str     string
	numeric bool
}

func less(coll *collate.Collator, a, b domain.PaymentRecord, field string, dir Direction) bool {
	ka := keyFor(a, field)
	kb := keyFor(b, field)

	// Nulls last, independent of direction.
	if ka.missing != kb.missing {
		return kb.missing
	}
	if ka.missing {
		return false
	}

	var cmp int
	if ka.numeric {
		cmp = ka.num.Cmp(kb.num)
	} else {
		cmp = coll.CompareString(ka.str, kb.str)
	}

	if dir == Descending {
		return cmp > 0
	}
	return cmp < 0
}

func keyFor(rec domain.PaymentRecord, field string) sortKey {
	switch field {
	case FieldSeqNo:
		return sortKey{num: decimal.NewFromInt(int64(rec.SeqNo)), numeric: true}
	case FieldCarriedDebt:
		return sortKey{num: rec.CarriedDebt, numeric: true}
	case FieldCurrentDebt:
		return sortKey{num: rec.CurrentDebt, numeric: true}
	case FieldTotalDebt:
		return sortKey{num: rec.TotalDebt, numeric: true}
	case FieldPaid:
		return sortKey{num: rec.Paid, numeric: true}
	case FieldRemaining:
		return sortKey{num: rec.Remaining, numeric: true}
	case FieldDescription:
		return stringKey(rec.Description)
	case FieldCounterparty:
		return optionalKey(rec.Counterparty)
	case FieldCategory:
		return stringKey(rec.Category)
	case FieldInvoiceStatus:
		return stringKey(string(rec.InvoiceStatus))
	case FieldProject:
		return optionalKey(rec.Project)
	case FieldCurrency:
		return stringKey(string(rec.Currency))
	case FieldPaymentStatus:
		return stringKey(string(rec.PaymentStatus))
	case FieldPeriod:
		return stringKey(rec.Period)
	default:
		return sortKey{missing: true}
	}
}

func stringKey(s string) sortKey {
	if s == "" {
		return sortKey{missing: true}
	}
	return sortKey{str: s}
}

func optionalKey(s *string) sortKey {
	if s == nil || *s == "" {
		return sortKey{missing: true}
	}
	return sortKey{str: *s}
}
