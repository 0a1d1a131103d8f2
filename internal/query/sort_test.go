package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/astekno/paytrack-be/internal/domain"
)

func sortRecords() []domain.PaymentRecord {
	return []domain.PaymentRecord{
		{ID: "1", Project: strPtr("Villa"), TotalDebt: decimal.RequireFromString("300")},
		{ID: "2", Project: nil, TotalDebt: decimal.RequireFromString("100")},
		{ID: "3", Project: strPtr("Apartman"), TotalDebt: decimal.RequireFromString("200")},
	}
}

func TestSort_NumericAscending(t *testing.T) {
	got := Sort(sortRecords(), FieldTotalDebt, Ascending)

	assert.Equal(t, []string{"2", "3", "1"}, ids(got))
}

func TestSort_NumericDescending(t *testing.T) {
	got := Sort(sortRecords(), FieldTotalDebt, Descending)

	assert.Equal(t, []string{"1", "3", "2"}, ids(got))
}

func TestSort_MissingValuesLastBothDirections(t *testing.T) {
	asc := Sort(sortRecords(), FieldProject, Ascending)
	desc := Sort(sortRecords(), FieldProject, Descending)

	assert.Equal(t, "2", asc[len(asc)-1].ID)
	assert.Equal(t, "2", desc[len(desc)-1].ID)
	assert.Equal(t, []string{"3", "1", "2"}, ids(asc))
	assert.Equal(t, []string{"1", "3", "2"}, ids(desc))
}

func TestSort_TurkishCollation(t *testing.T) {
	records := []domain.PaymentRecord{
		{ID: "1", Description: "Şantiye"},
		{ID: "2", Description: "Sigorta"},
		{ID: "3", Description: "Çimento"},
	}

	got := Sort(records, FieldDescription, Ascending)

	// Turkish alphabet: Ç before S, Ş after S.
	assert.Equal(t, []string{"3", "2", "1"}, ids(got))
}

func TestSort_StableOnEqualKeys(t *testing.T) {
	records := []domain.PaymentRecord{
		{ID: "1", TotalDebt: decimal.RequireFromString("100")},
		{ID: "2", TotalDebt: decimal.RequireFromString("100")},
		{ID: "3", TotalDebt: decimal.RequireFromString("100")},
	}

	got := Sort(records, FieldTotalDebt, Descending)

	assert.Equal(t, []string{"1", "2", "3"}, ids(got))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	records := sortRecords()

	Sort(records, FieldTotalDebt, Ascending)

	assert.Equal(t, []string{"1", "2", "3"}, ids(records))
}

func TestSorter_ToggleFlipsSameFieldResetsNewField(t *testing.T) {
	var s Sorter

	assert.Equal(t, Ascending, s.Toggle(FieldTotalDebt))
	assert.Equal(t, Descending, s.Toggle(FieldTotalDebt))
	assert.Equal(t, Ascending, s.Toggle(FieldTotalDebt))

	// A different field always starts ascending.
	s.Toggle(FieldTotalDebt)
	assert.Equal(t, Ascending, s.Toggle(FieldDescription))
	assert.Equal(t, FieldDescription, s.Field())
}
