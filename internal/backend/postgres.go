package backend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/pkg/logger"
)

// notifyChannel is the Postgres NOTIFY channel the payments trigger
// publishes on.
const notifyChannel = "payments_changed"

// PostgresBackend implements Repository over sqlx/lib/pq and ChangeFeed
// over LISTEN/NOTIFY.
type PostgresBackend struct {
	db     *sqlx.DB
	dsn    string
	logger *logger.Logger
}

func Connect(dsn string, maxOpen, maxIdle int, log *logger.Logger) (*PostgresBackend, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetMaxIdleConns(maxIdle)
	db.SetMaxOpenConns(maxOpen)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &PostgresBackend{db: db, dsn: dsn, logger: log}, nil
}

func (b *PostgresBackend) Close() error {
	return b.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS payments (
	id TEXT PRIMARY KEY,
	sira_no INTEGER NOT NULL DEFAULT 0,
	odeme_kalemleri TEXT NOT NULL,
	firma_fatura_ismi TEXT,
	isin_nevi TEXT NOT NULL DEFAULT '',
	fatura_durumu TEXT NOT NULL DEFAULT 'FATURALI',
	isin_adi TEXT,
	para_birimi TEXT NOT NULL DEFAULT 'TL',
	onceki_donemden_kalan_borc NUMERIC(16,2) NOT NULL DEFAULT 0,
	bu_ayki_borc NUMERIC(16,2) NOT NULL DEFAULT 0,
	toplam_borc NUMERIC(16,2) NOT NULL DEFAULT 0,
	bu_ay_odenen NUMERIC(16,2) NOT NULL DEFAULT 0,
	kalan NUMERIC(16,2) NOT NULL DEFAULT 0,
	odeme_durumu TEXT NOT NULL DEFAULT 'PENDING',
	belge_url TEXT,
	donem TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS currency_rates (
	donem TEXT PRIMARY KEY,
	usd_to_tl NUMERIC(12,4) NOT NULL,
	eur_to_tl NUMERIC(12,4) NOT NULL,
	stg_to_tl NUMERIC(12,4) NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE OR REPLACE FUNCTION notify_payments_changed() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('payments_changed', json_build_object(
		'event_type', TG_OP,
		'record_id', COALESCE(NEW.id, OLD.id)
	)::text);
	RETURN NULL;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS payments_changed ON payments;
CREATE TRIGGER payments_changed
	AFTER INSERT OR UPDATE OR DELETE ON payments
	FOR EACH ROW EXECUTE FUNCTION notify_payments_changed();
`

// Migrate creates the tables and the change-notification trigger.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, schema)
	return err
}

func (b *PostgresBackend) ListPayments(ctx context.Context) ([]domain.PaymentRecord, error) {
	records := []domain.PaymentRecord{}
	err := b.db.SelectContext(ctx, &records, `
		SELECT * FROM payments ORDER BY sira_no ASC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return records, nil
}

func (b *PostgresBackend) InsertPayment(ctx context.Context, rec domain.PaymentRecord) error {
	_, err := b.db.NamedExecContext(ctx, `
		INSERT INTO payments (
			id, sira_no, odeme_kalemleri, firma_fatura_ismi, isin_nevi,
			fatura_durumu, isin_adi, para_birimi,
			onceki_donemden_kalan_borc, bu_ayki_borc, toplam_borc,
			bu_ay_odenen, kalan, odeme_durumu, belge_url, donem
		) VALUES (
			:id, :sira_no, :odeme_kalemleri, :firma_fatura_ismi, :isin_nevi,
			:fatura_durumu, :isin_adi, :para_birimi,
			:onceki_donemden_kalan_borc, :bu_ayki_borc, :toplam_borc,
			:bu_ay_odenen, :kalan, :odeme_durumu, :belge_url, :donem
		)
	`, rec)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (b *PostgresBackend) UpdatePayment(ctx context.Context, rec domain.PaymentRecord) error {
	res, err := b.db.NamedExecContext(ctx, `
		UPDATE payments SET
			sira_no = :sira_no,
			odeme_kalemleri = :odeme_kalemleri,
			firma_fatura_ismi = :firma_fatura_ismi,
			isin_nevi = :isin_nevi,
			fatura_durumu = :fatura_durumu,
			isin_adi = :isin_adi,
			para_birimi = :para_birimi,
			onceki_donemden_kalan_borc = :onceki_donemden_kalan_borc,
			bu_ayki_borc = :bu_ayki_borc,
			toplam_borc = :toplam_borc,
			bu_ay_odenen = :bu_ay_odenen,
			kalan = :kalan,
			odeme_durumu = :odeme_durumu,
			belge_url = :belge_url,
			donem = :donem,
			updated_at = NOW()
		WHERE id = :id
	`, rec)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (b *PostgresBackend) DeletePayment(ctx context.Context, id string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

func (b *PostgresBackend) DeletePayments(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := b.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	return nil
}

// updatableColumns whitelists the columns a bulk field update may touch.
var updatableColumns = map[string]bool{
	"odeme_durumu":  true,
	"fatura_durumu": true,
	"isin_nevi":     true,
	"isin_adi":      true,
	"donem":         true,
	"bu_ay_odenen":  true,
}

func (b *PostgresBackend) UpdateField(ctx context.Context, ids []string, field string, value any) error {
	if len(ids) == 0 {
		return nil
	}
	if !updatableColumns[field] {
		return fmt.Errorf("column %q is not bulk-updatable", field)
	}
	query := fmt.Sprintf(`UPDATE payments SET %s = $1, updated_at = NOW() WHERE id = ANY($2)`, field)
	_, err := b.db.ExecContext(ctx, query, value, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("bulk update %s: %w", field, err)
	}
	return nil
}

type ratesRow struct {
	Period  string          `db:"donem"`
	USDToTL decimal.Decimal `db:"usd_to_tl"`
	EURToTL decimal.Decimal `db:"eur_to_tl"`
	STGToTL decimal.Decimal `db:"stg_to_tl"`
	Updated time.Time       `db:"updated_at"`
}

func (b *PostgresBackend) GetRates(ctx context.Context, period string) (domain.RateTable, error) {
	var row ratesRow
	err := b.db.GetContext(ctx, &row, `
		SELECT donem, usd_to_tl, eur_to_tl, stg_to_tl, updated_at
		FROM currency_rates WHERE donem = $1
	`, period)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRatesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rates: %w", err)
	}
	return domain.RateTable{
		domain.CurrencyTL:  decimal.NewFromInt(1),
		domain.CurrencyUSD: row.USDToTL,
		domain.CurrencyEUR: row.EURToTL,
		domain.CurrencySTG: row.STGToTL,
	}, nil
}

func (b *PostgresBackend) UpsertRates(ctx context.Context, period string, rates domain.RateTable) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO currency_rates (donem, usd_to_tl, eur_to_tl, stg_to_tl, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (donem) DO UPDATE SET
			usd_to_tl = EXCLUDED.usd_to_tl,
			eur_to_tl = EXCLUDED.eur_to_tl,
			stg_to_tl = EXCLUDED.stg_to_tl,
			updated_at = NOW()
	`, period, rates[domain.CurrencyUSD], rates[domain.CurrencyEUR], rates[domain.CurrencySTG])
	if err != nil {
		return fmt.Errorf("upsert rates: %w", err)
	}
	return nil
}

// Subscribe opens a LISTEN connection and forwards trigger notifications
// as change events. The channel closes when the context ends.
func (b *PostgresBackend) Subscribe(ctx context.Context) (<-chan domain.ChangeEvent, error) {
	listener := pq.NewListener(b.dsn, 10*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			b.logger.Warn(ctx, "Listener state change", "event", int(event), "error", err)
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	out := make(chan domain.ChangeEvent, 64)
	go func() {
		defer close(out)
		defer listener.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				if n == nil {
					// Reconnect marker from lib/pq; a reload is still in
					// order since notifications may have been missed.
					out <- domain.ChangeEvent{Type: domain.ChangeUpdate}
					continue
				}
				var ev domain.ChangeEvent
				if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
					b.logger.Warn(ctx, "Malformed change notification", "payload", n.Extra)
					continue
				}
				out <- ev
			}
		}
	}()

	return out, nil
}
