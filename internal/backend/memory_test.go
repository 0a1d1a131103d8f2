package backend

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astekno/paytrack-be/internal/domain"
)

func record(id string) domain.PaymentRecord {
	return domain.PaymentRecord{ID: id, Description: "Hakediş", Currency: domain.CurrencyTL}
}

func TestMemoryBackend_InsertAndList(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, b.InsertPayment(ctx, record("1")))
	require.NoError(t, b.InsertPayment(ctx, record("2")))

	records, err := b.ListPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.False(t, records[0].CreatedAt.IsZero())
}

func TestMemoryBackend_UpdateMissingRecord(t *testing.T) {
	b := NewMemoryBackend()

	err := b.UpdatePayment(context.Background(), record("missing"))

	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestMemoryBackend_UpdatePreservesCreatedAt(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, b.InsertPayment(ctx, record("1")))
	before, err := b.ListPayments(ctx)
	require.NoError(t, err)

	updated := record("1")
	updated.Description = "Güncel"
	require.NoError(t, b.UpdatePayment(ctx, updated))

	after, err := b.ListPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, before[0].CreatedAt, after[0].CreatedAt)
	assert.Equal(t, "Güncel", after[0].Description)
}

func TestMemoryBackend_DeletePayments(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, b.InsertPayment(ctx, record("1")))
	require.NoError(t, b.InsertPayment(ctx, record("2")))
	require.NoError(t, b.InsertPayment(ctx, record("3")))

	require.NoError(t, b.DeletePayments(ctx, []string{"1", "3"}))

	records, err := b.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].ID)
}

func TestMemoryBackend_UpdateFieldRecomputesDerived(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	rec := record("1")
	rec.CurrentDebt = decimal.RequireFromString("1000")
	rec.Recompute()
	require.NoError(t, b.InsertPayment(ctx, rec))

	require.NoError(t, b.UpdateField(ctx, []string{"1"}, "bu_ay_odenen", "1000"))

	records, err := b.ListPayments(ctx)
	require.NoError(t, err)
	assert.True(t, records[0].Remaining.IsZero())
	assert.Equal(t, domain.StatusPaid, records[0].PaymentStatus)
}

func TestMemoryBackend_RatesRoundtrip(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	_, err := b.GetRates(ctx, "OCAK 2026")
	assert.ErrorIs(t, err, domain.ErrRatesNotFound)

	rates := domain.RateTable{domain.CurrencyUSD: decimal.RequireFromString("41")}
	require.NoError(t, b.UpsertRates(ctx, "OCAK 2026", rates))

	got, err := b.GetRates(ctx, "OCAK 2026")
	require.NoError(t, err)
	assert.True(t, got[domain.CurrencyUSD].Equal(decimal.RequireFromString("41")))
}

func TestMemoryBackend_SubscribeDeliversChanges(t *testing.T) {
	b := NewMemoryBackend()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := b.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, b.InsertPayment(ctx, record("1")))

	select {
	case ev := <-events:
		assert.Equal(t, domain.ChangeInsert, ev.Type)
		assert.Equal(t, "1", ev.RecordID)
	case <-time.After(time.Second):
		t.Fatal("expected a change event")
	}
}

func TestMemoryBackend_SubscribeClosesOnCancel(t *testing.T) {
	b := NewMemoryBackend()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := b.Subscribe(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("expected channel close")
	}
}
