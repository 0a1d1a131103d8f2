package backend

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/domain"
)

// MemoryBackend is an in-process Repository and ChangeFeed. It backs tests
// and the fail-open demo mode when no database is configured.
type MemoryBackend struct {
	mu      sync.RWMutex
	records []domain.PaymentRecord
	rates   map[string]domain.RateTable
	subs    []chan domain.ChangeEvent
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		rates: make(map[string]domain.RateTable),
	}
}

func (b *MemoryBackend) ListPayments(ctx context.Context) ([]domain.PaymentRecord, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := append([]domain.PaymentRecord(nil), b.records...)
	return out, nil
}

func (b *MemoryBackend) InsertPayment(ctx context.Context, rec domain.PaymentRecord) error {
	b.mu.Lock()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	b.records = append(b.records, rec)
	b.mu.Unlock()

	b.emit(domain.ChangeEvent{Type: domain.ChangeInsert, RecordID: rec.ID})
	return nil
}

func (b *MemoryBackend) UpdatePayment(ctx context.Context, rec domain.PaymentRecord) error {
	b.mu.Lock()
	found := false
	for i := range b.records {
		if b.records[i].ID == rec.ID {
			rec.CreatedAt = b.records[i].CreatedAt
			rec.UpdatedAt = time.Now()
			b.records[i] = rec
			found = true
			break
		}
	}
	b.mu.Unlock()

	if !found {
		return domain.ErrRecordNotFound
	}
	b.emit(domain.ChangeEvent{Type: domain.ChangeUpdate, RecordID: rec.ID})
	return nil
}

func (b *MemoryBackend) DeletePayment(ctx context.Context, id string) error {
	return b.DeletePayments(ctx, []string{id})
}

func (b *MemoryBackend) DeletePayments(ctx context.Context, ids []string) error {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	b.mu.Lock()
	kept := b.records[:0]
	removed := make([]string, 0, len(ids))
	for _, rec := range b.records {
		if idSet[rec.ID] {
			removed = append(removed, rec.ID)
			continue
		}
		kept = append(kept, rec)
	}
	b.records = kept
	b.mu.Unlock()

	for _, id := range removed {
		b.emit(domain.ChangeEvent{Type: domain.ChangeDelete, RecordID: id})
	}
	return nil
}

func (b *MemoryBackend) UpdateField(ctx context.Context, ids []string, field string, value any) error {
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	b.mu.Lock()
	touched := make([]string, 0, len(ids))
	for i := range b.records {
		if !idSet[b.records[i].ID] {
			continue
		}
		applyField(&b.records[i], field, value)
		b.records[i].UpdatedAt = time.Now()
		touched = append(touched, b.records[i].ID)
	}
	b.mu.Unlock()

	for _, id := range touched {
		b.emit(domain.ChangeEvent{Type: domain.ChangeUpdate, RecordID: id})
	}
	return nil
}

func (b *MemoryBackend) GetRates(ctx context.Context, period string) (domain.RateTable, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rates, ok := b.rates[period]
	if !ok {
		return nil, domain.ErrRatesNotFound
	}
	return rates.Clone(), nil
}

func (b *MemoryBackend) UpsertRates(ctx context.Context, period string, rates domain.RateTable) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rates[period] = rates.Clone()
	return nil
}

// Subscribe returns a buffered event channel tied to the context.
func (b *MemoryBackend) Subscribe(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	ch := make(chan domain.ChangeEvent, 64)

	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		for i, sub := range b.subs {
			if sub == ch {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

func (b *MemoryBackend) emit(ev domain.ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber, drop rather than block the writer.
		}
	}
}

func applyField(rec *domain.PaymentRecord, field string, value any) {
	switch field {
	case "odeme_durumu":
		if s, ok := value.(string); ok {
			rec.PaymentStatus = domain.PaymentStatus(s)
		}
	case "fatura_durumu":
		if s, ok := value.(string); ok {
			rec.InvoiceStatus = domain.InvoiceStatus(s)
		}
	case "isin_nevi":
		if s, ok := value.(string); ok {
			rec.Category = s
		}
	case "isin_adi":
		if s, ok := value.(string); ok {
			rec.Project = &s
		}
	case "donem":
		if s, ok := value.(string); ok {
			rec.Period = s
		}
	case "bu_ay_odenen":
		if d, ok := toDecimal(value); ok {
			rec.Paid = d
			rec.Recompute()
		}
	}
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case string:
		d, err := decimal.NewFromString(v)
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	default:
		return decimal.Decimal{}, false
	}
}
