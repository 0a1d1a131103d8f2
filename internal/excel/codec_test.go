package excel

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astekno/paytrack-be/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWriteRead_Roundtrip(t *testing.T) {
	firma := "Yılmaz İnşaat"
	rec := domain.PaymentRecord{
		SeqNo:        1,
		Description:  "Hakediş",
		Counterparty: &firma,
		Category:     "Taşeron",
		Currency:     domain.CurrencyUSD,
	}
	rec.CarriedDebt = d("1000")
	rec.CurrentDebt = d("500")
	rec.Paid = d("250")
	rec.Recompute()

	var buf bytes.Buffer
	err := Write(&buf, ExportHeaders, []Row{ExportRow(rec)})
	require.NoError(t, err)

	rows, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Hakediş", rows[0]["Ödeme Kalemleri"])
	assert.Equal(t, "Yılmaz İnşaat", rows[0]["Firma"])
	assert.Equal(t, "1500", rows[0]["Toplam Borç"])
	assert.Equal(t, "1250", rows[0]["Kalan"])
	assert.Equal(t, "USD", rows[0]["Para Birimi"])
}

func TestRead_SkipsEmptyRows(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []string{"A", "B"}, []Row{
		{"A": "1", "B": "x"},
		{"A": "", "B": ""},
		{"A": "2", "B": "y"},
	})
	require.NoError(t, err)

	rows, err := Read(&buf)
	require.NoError(t, err)

	assert.Len(t, rows, 2)
	assert.Equal(t, "2", rows[1]["A"])
}

func TestRead_HeaderOnlyWorkbook(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []string{"A"}, nil)
	require.NoError(t, err)

	rows, err := Read(&buf)
	require.NoError(t, err)

	assert.Empty(t, rows)
}

func TestRead_NotAWorkbook(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("definitely not xlsx")))

	assert.Error(t, err)
}
