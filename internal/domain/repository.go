package domain

import "context"

// Repository is the persistence collaborator. Every method is a single
// attempt; callers fall back to last-known-good in-memory state on error.
type Repository interface {
	// Payment records
	ListPayments(ctx context.Context) ([]PaymentRecord, error)
	InsertPayment(ctx context.Context, rec PaymentRecord) error
	UpdatePayment(ctx context.Context, rec PaymentRecord) error
	DeletePayment(ctx context.Context, id string) error
	DeletePayments(ctx context.Context, ids []string) error
	UpdateField(ctx context.Context, ids []string, field string, value any) error

	// Currency rates, one row per period tag
	GetRates(ctx context.Context, period string) (RateTable, error)
	UpsertRates(ctx context.Context, period string, rates RateTable) error
}

// ChangeFeed yields backend-originated change notifications. The returned
// channel closes when the subscription drops; callers resubscribe.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// FileStore stores uploaded documents and returns a public URL.
type FileStore interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}
