package service

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/excel"
)

// Amount is a monetary input field with lenient decoding: JSON numbers,
// numeric strings (TR formatting included), blank and null all decode;
// anything unparseable coerces to 0 instead of failing the request.
type Amount struct {
	decimal.Decimal
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			a.Decimal = decimal.Zero
			return nil
		}
		a.Decimal = excel.ParseMoney(s)
		return nil
	}

	d, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}

// SaveRecordInput is the payload of a create or update. An empty ID means
// create. Enum fields are validated; numeric fields are coerced.
type SaveRecordInput struct {
	ID            string  `json:"id"`
	SeqNo         int     `json:"sira_no"`
	Description   string  `json:"odeme_kalemleri" validate:"required"`
	Counterparty  *string `json:"firma_fatura_ismi"`
	Category      string  `json:"isin_nevi"`
	InvoiceStatus string  `json:"fatura_durumu" validate:"omitempty,oneof=FATURALI FATURASIZ"`
	Project       *string `json:"isin_adi"`
	Currency      string  `json:"para_birimi" validate:"omitempty,oneof=TL USD EUR STG"`
	CarriedDebt   Amount  `json:"onceki_donemden_kalan_borc"`
	CurrentDebt   Amount  `json:"bu_ayki_borc"`
	Paid          Amount  `json:"bu_ay_odenen"`
	DocumentURL   *string `json:"belge_url"`
	Period        string  `json:"donem"`
}
