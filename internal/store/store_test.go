package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/pkg/logger"
)

func newTestStore() *Store {
	return New(logger.NewNop())
}

func record(id, description string) domain.PaymentRecord {
	return domain.PaymentRecord{ID: id, Description: description}
}

func TestReplaceAll_ResetsViewAndNotifies(t *testing.T) {
	st := newTestStore()

	var got Snapshot
	calls := 0
	st.Subscribe(func(snap Snapshot) {
		got = snap
		calls++
	})

	st.ReplaceAll([]domain.PaymentRecord{record("1", "a"), record("2", "b")})

	assert.Equal(t, 1, calls)
	assert.Len(t, got.Records, 2)
	assert.Len(t, got.View, 2)
	assert.Len(t, st.Records(), 2)
	assert.Len(t, st.View(), 2)
}

func TestReplaceView_DoesNotTouchRecords(t *testing.T) {
	st := newTestStore()
	st.ReplaceAll([]domain.PaymentRecord{record("1", "a"), record("2", "b")})

	st.ReplaceView([]domain.PaymentRecord{record("1", "a")})

	assert.Len(t, st.Records(), 2)
	assert.Len(t, st.View(), 1)
}

func TestPatch_UpdatesRecordAndView(t *testing.T) {
	st := newTestStore()
	st.ReplaceAll([]domain.PaymentRecord{record("1", "a"), record("2", "b")})

	calls := 0
	st.Subscribe(func(Snapshot) { calls++ })

	st.Patch("2", func(r *domain.PaymentRecord) {
		r.Description = "patched"
	})

	assert.Equal(t, 1, calls)
	got := st.GetByID("2")
	require.NotNil(t, got)
	assert.Equal(t, "patched", got.Description)
	assert.Equal(t, "patched", st.View()[1].Description)
}

func TestPatch_MissIsSilent(t *testing.T) {
	st := newTestStore()
	st.ReplaceAll([]domain.PaymentRecord{record("1", "a")})

	calls := 0
	st.Subscribe(func(Snapshot) { calls++ })

	st.Patch("missing", func(r *domain.PaymentRecord) {
		r.Description = "patched"
	})

	assert.Equal(t, 0, calls)
}

func TestRemove_DeletesFromRecordsAndView(t *testing.T) {
	st := newTestStore()
	st.ReplaceAll([]domain.PaymentRecord{record("1", "a"), record("2", "b")})

	st.Remove("1")

	assert.Len(t, st.Records(), 1)
	assert.Len(t, st.View(), 1)
	assert.Nil(t, st.GetByID("1"))
}

func TestGetByID_ReturnsCopy(t *testing.T) {
	st := newTestStore()
	st.ReplaceAll([]domain.PaymentRecord{record("1", "a")})

	got := st.GetByID("1")
	require.NotNil(t, got)
	got.Description = "mutated"

	assert.Equal(t, "a", st.GetByID("1").Description)
}

func TestSetRates_MergesPartialTable(t *testing.T) {
	st := newTestStore()

	st.SetRates(domain.RateTable{
		domain.CurrencyUSD: decimal.RequireFromString("40"),
	})

	rates := st.Rates()
	assert.True(t, rates[domain.CurrencyUSD].Equal(decimal.RequireFromString("40")))
	// Untouched currencies keep the seed values.
	assert.True(t, rates[domain.CurrencyEUR].Equal(decimal.RequireFromString("37.20")))
	assert.True(t, rates[domain.CurrencyTL].Equal(decimal.NewFromInt(1)))
}

func TestSubscribe_UnsubscribeStopsDelivery(t *testing.T) {
	st := newTestStore()

	calls := 0
	unsubscribe := st.Subscribe(func(Snapshot) { calls++ })

	st.ReplaceAll(nil)
	unsubscribe()
	st.ReplaceAll(nil)

	assert.Equal(t, 1, calls)
}

func TestNotify_PanickingListenerIsIsolated(t *testing.T) {
	st := newTestStore()

	st.Subscribe(func(Snapshot) { panic("listener bug") })
	calls := 0
	st.Subscribe(func(Snapshot) { calls++ })

	assert.NotPanics(t, func() {
		st.ReplaceAll([]domain.PaymentRecord{record("1", "a")})
	})
	assert.Equal(t, 1, calls)
}

func TestSnapshot_IsDetachedFromStoreState(t *testing.T) {
	st := newTestStore()

	var got Snapshot
	st.Subscribe(func(snap Snapshot) { got = snap })
	st.ReplaceAll([]domain.PaymentRecord{record("1", "a")})

	got.Records[0].Description = "mutated"
	got.Rates[domain.CurrencyUSD] = decimal.NewFromInt(999)

	assert.Equal(t, "a", st.Records()[0].Description)
	assert.True(t, st.Rates()[domain.CurrencyUSD].Equal(decimal.RequireFromString("34.50")))
}
