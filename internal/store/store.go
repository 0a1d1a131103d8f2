// Package store holds the authoritative in-memory collection of payment
// records, the derived current view, and the exchange-rate table. All
// mutation goes through store methods; every mutation notifies subscribers
// exactly once, synchronously, with a copied snapshot.
package store

import (
	"context"
	"sync"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/pkg/logger"
)

// Snapshot is what listeners receive. The slices and map are copies;
// mutating them does not touch store state.
type Snapshot struct {
	Records []domain.PaymentRecord
	View    []domain.PaymentRecord
	Rates   domain.RateTable
}

type Listener func(Snapshot)

// Store is constructed once by the composition root and shared by every
// component that reads record state. There is deliberately no package-level
// instance; tests build their own.
type Store struct {
	mu        sync.RWMutex
	records   []domain.PaymentRecord
	view      []domain.PaymentRecord
	rates     domain.RateTable
	listeners map[int]Listener
	nextID    int
	logger    *logger.Logger
}

func New(log *logger.Logger) *Store {
	return &Store{
		rates:     domain.DefaultRates(),
		listeners: make(map[int]Listener),
		logger:    log,
	}
}

// ReplaceAll swaps in a fresh record set, resets the view to the full set,
// and notifies. The caller reapplies any active filter afterwards via
// ReplaceView.
func (s *Store) ReplaceAll(records []domain.PaymentRecord) {
	s.mu.Lock()
	s.records = append([]domain.PaymentRecord(nil), records...)
	s.view = append([]domain.PaymentRecord(nil), records...)
	s.mu.Unlock()

	s.logger.Debug(context.Background(), "Store: records replaced", "count", len(records))
	s.notify()
}

// ReplaceView sets the derived view without touching the full record set.
func (s *Store) ReplaceView(subset []domain.PaymentRecord) {
	s.mu.Lock()
	s.view = append([]domain.PaymentRecord(nil), subset...)
	s.mu.Unlock()

	s.notify()
}

// SetRates shallow-merges the given quotes into the table; currencies not
// present keep their prior value.
func (s *Store) SetRates(partial domain.RateTable) {
	s.mu.Lock()
	merged := s.rates.Clone()
	for c, r := range partial {
		merged[c] = r
	}
	s.rates = merged
	s.mu.Unlock()

	s.notify()
}

// Patch updates one record in place, in both the record set and the view
// if present. A miss is a no-op without notification.
func (s *Store) Patch(id string, apply func(*domain.PaymentRecord)) {
	s.mu.Lock()
	patched := false
	for i := range s.records {
		if s.records[i].ID == id {
			apply(&s.records[i])
			patched = true
			break
		}
	}
	if patched {
		for i := range s.view {
			if s.view[i].ID == id {
				apply(&s.view[i])
				break
			}
		}
	}
	s.mu.Unlock()

	if patched {
		s.notify()
	}
}

// Remove deletes a record from both the record set and the view.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	s.records = deleteByID(s.records, id)
	s.view = deleteByID(s.view, id)
	s.mu.Unlock()

	s.notify()
}

// GetByID returns a copy of the record, or nil when absent.
func (s *Store) GetByID(id string) *domain.PaymentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec
		}
	}
	return nil
}

// Records returns a copy of the full record set.
func (s *Store) Records() []domain.PaymentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PaymentRecord(nil), s.records...)
}

// View returns a copy of the current filtered/sorted view.
func (s *Store) View() []domain.PaymentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PaymentRecord(nil), s.view...)
}

// Rates returns a copy of the current rate table.
func (s *Store) Rates() domain.RateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rates.Clone()
}

// Subscribe registers a listener and returns its unsubscribe function.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// notify delivers the state as of the most recent mutation. A panicking
// listener is isolated; the remaining listeners still run.
func (s *Store) notify() {
	s.mu.RLock()
	snap := Snapshot{
		Records: append([]domain.PaymentRecord(nil), s.records...),
		View:    append([]domain.PaymentRecord(nil), s.view...),
		Rates:   s.rates.Clone(),
	}
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error(context.Background(), "Store listener panicked", "panic", r)
				}
			}()
			fn(snap)
		}()
	}
}

func deleteByID(records []domain.PaymentRecord, id string) []domain.PaymentRecord {
	out := records[:0]
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
