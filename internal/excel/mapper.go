package excel

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/domain"
)

// Header spellings seen in the field's workbooks, tried in order.
var (
	headersSeqNo        = []string{"Sıra No", "S.No", "NO"}
	headersDescription  = []string{"Ödeme Kalemleri", "ÖDEME KALEMİ", "AÇIKLAMA"}
	headersCounterparty = []string{"Firma Fatura İsmi", "Firma", "FİRMA"}
	headersCategory     = []string{"İşin Nevi", "KATEGORİ"}
	headersInvoice      = []string{"Fatura Durumu", "FATURA"}
	headersProject      = []string{"İşin Adı", "İş Adı", "PROJE"}
	headersCurrency     = []string{"Para Birimi", "DÖVİZ"}
	headersCarried      = []string{"Önceki Dönemden Kalan Borç", "Önceki Borç", "DEVİR"}
	headersCurrent      = []string{"Bu Ayki Borç", "BORÇ"}
	headersPaid         = []string{"Bu Ay Ödenen", "Ödenen", "ÖDENEN"}
)

// MapRow converts one imported row into a payment record, deriving totals
// and status. Blank or malformed numeric cells coerce to 0.
func MapRow(row Row, index int, period string) domain.PaymentRecord {
	rec := domain.PaymentRecord{
		SeqNo:         pickInt(row, headersSeqNo, index+1),
		Description:   pickString(row, headersDescription, "Bilinmiyor"),
		Counterparty:  pickOptional(row, headersCounterparty),
		Category:      pickString(row, headersCategory, "Diğer"),
		InvoiceStatus: detectInvoiceStatus(pick(row, headersInvoice)),
		Project:       pickOptional(row, headersProject),
		Currency:      DetectCurrency(pick(row, headersCurrency)),
		CarriedDebt:   pickMoney(row, headersCarried),
		CurrentDebt:   pickMoney(row, headersCurrent),
		Paid:          pickMoney(row, headersPaid),
		Period:        period,
	}
	rec.Recompute()
	return rec
}

// ExportHeaders is the column order for workbook export.
var ExportHeaders = []string{
	"Sıra No", "Ödeme Kalemleri", "Firma", "İşin Nevi", "Fatura Durumu",
	"İş Adı", "Para Birimi", "Önceki Borç", "Bu Ayki Borç", "Toplam Borç",
	"Ödenen", "Kalan", "Durum",
}

// ExportRow flattens a record into its export row.
func ExportRow(rec domain.PaymentRecord) Row {
	return Row{
		"Sıra No":         strconv.Itoa(rec.SeqNo),
		"Ödeme Kalemleri": rec.Description,
		"Firma":           optValue(rec.Counterparty),
		"İşin Nevi":       rec.Category,
		"Fatura Durumu":   string(rec.InvoiceStatus),
		"İş Adı":          optValue(rec.Project),
		"Para Birimi":     string(rec.Currency),
		"Önceki Borç":     rec.CarriedDebt.String(),
		"Bu Ayki Borç":    rec.CurrentDebt.String(),
		"Toplam Borç":     rec.TotalDebt.String(),
		"Ödenen":          rec.Paid.String(),
		"Kalan":           rec.Remaining.String(),
		"Durum":           string(rec.PaymentStatus),
	}
}

// DetectCurrency maps free-form currency cells onto the known codes. The
// default is TL.
func DetectCurrency(val string) domain.Currency {
	v := strings.ToUpper(strings.TrimSpace(val))
	switch {
	case strings.Contains(v, "USD"), strings.Contains(v, "DOLAR"):
		return domain.CurrencyUSD
	case strings.Contains(v, "EUR"), strings.Contains(v, "EURO"):
		return domain.CurrencyEUR
	case strings.Contains(v, "STG"), strings.Contains(v, "STERLIN"), strings.Contains(v, "GBP"):
		return domain.CurrencySTG
	default:
		return domain.CurrencyTL
	}
}

// ParseMoney is tolerant of TR formatting: currency symbols and thousands
// separators are stripped, a decimal comma becomes a dot. Anything that
// still fails to parse coerces to 0.
func ParseMoney(val string) decimal.Decimal {
	clean := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, val)

	// "1.234,56" style: the last separator wins as the decimal point.
	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func detectInvoiceStatus(val string) domain.InvoiceStatus {
	if strings.Contains(strings.ToUpper(val), "SIZ") {
		return domain.NotInvoiced
	}
	return domain.Invoiced
}

func pick(row Row, headers []string) string {
	for _, h := range headers {
		if v, ok := row[h]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func pickString(row Row, headers []string, fallback string) string {
	if v := pick(row, headers); v != "" {
		return v
	}
	return fallback
}

func pickOptional(row Row, headers []string) *string {
	if v := pick(row, headers); v != "" {
		return &v
	}
	return nil
}

func pickInt(row Row, headers []string, fallback int) int {
	if v := pick(row, headers); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func pickMoney(row Row, headers []string) decimal.Decimal {
	return ParseMoney(pick(row, headers))
}

func optValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
