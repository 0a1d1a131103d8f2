package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/internal/excel"
	"github.com/astekno/paytrack-be/internal/guard"
	"github.com/astekno/paytrack-be/internal/query"
	"github.com/astekno/paytrack-be/internal/report"
	"github.com/astekno/paytrack-be/internal/store"
	"github.com/astekno/paytrack-be/pkg/logger"
)

// PaymentService routes every mutation through the dedup guard and keeps
// the record store reconciled with the backend. It also owns the active
// filter criteria and sort state so a full reload can recompute the view.
type PaymentService struct {
	repo     domain.Repository
	files    domain.FileStore
	store    *store.Store
	guard    *guard.Guard
	cooldown *guard.Cooldown
	validate *validator.Validate
	logger   *logger.Logger
	period   string

	mu       sync.Mutex
	criteria query.Criteria
	sorter   query.Sorter
}

func NewPaymentService(
	repo domain.Repository,
	files domain.FileStore,
	st *store.Store,
	g *guard.Guard,
	cooldown *guard.Cooldown,
	period string,
	log *logger.Logger,
) *PaymentService {
	return &PaymentService{
		repo:     repo,
		files:    files,
		store:    st,
		guard:    g,
		cooldown: cooldown,
		validate: validator.New(),
		logger:   log,
		period:   period,
	}
}

// Reload fetches all records from the backend and replaces the store,
// reapplying the active filter and sort. On backend failure the store
// keeps its last-known-good state and the error is surfaced non-fatally.
func (s *PaymentService) Reload(ctx context.Context) error {
	records, err := s.repo.ListPayments(ctx)
	if err != nil {
		s.logger.Warn(ctx, "Reload failed, keeping in-memory state", "error", err)
		return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}

	s.store.ReplaceAll(records)
	s.reapplyView()

	s.logger.Debug(ctx, "Records reloaded", "count", len(records))
	return nil
}

// ApplyFilter stores the criteria and recomputes the view.
func (s *PaymentService) ApplyFilter(crit query.Criteria) []domain.PaymentRecord {
	s.mu.Lock()
	s.criteria = crit
	s.mu.Unlock()

	s.reapplyView()
	return s.store.View()
}

// SortBy toggles sort on the given field (same field flips direction, a
// new field resets to ascending) and re-sorts the view.
func (s *PaymentService) SortBy(field string) []domain.PaymentRecord {
	s.mu.Lock()
	s.sorter.Toggle(field)
	s.mu.Unlock()

	s.reapplyView()
	return s.store.View()
}

func (s *PaymentService) reapplyView() {
	s.mu.Lock()
	crit := s.criteria
	field := s.sorter.Field()
	dir := s.sorter.Direction()
	s.mu.Unlock()

	view := query.Filter(s.store.Records(), crit)
	if field != "" {
		view = query.Sort(view, field, dir)
	}
	s.store.ReplaceView(view)
}

// Save creates or updates one record. The submit cooldown absorbs rapid
// repeated clicks; the fingerprint guard rejects a semantically identical
// operation while one is in flight or just completed.
func (s *PaymentService) Save(ctx context.Context, input SaveRecordInput) (*domain.PaymentRecord, error) {
	if !s.cooldown.Allow() {
		return nil, domain.ErrSubmitCooldown
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecord, err)
	}

	rec := s.buildRecord(input)

	op := "INSERT"
	if input.ID != "" {
		op = "UPDATE"
	}
	fp := guard.NewFingerprint(op, optString(rec.Counterparty), rec.Description, rec.TotalDebt.String())
	if !s.guard.TryBegin(fp) {
		s.logger.Warn(ctx, "Duplicate submission blocked", "op", op)
		return nil, domain.ErrDuplicateOperation
	}
	defer s.guard.End(fp)

	ctx = logger.WithRecordID(ctx, rec.ID)
	s.logger.Info(ctx, "Saving payment", "op", op, "description", rec.Description)

	var err error
	if op == "INSERT" {
		err = s.repo.InsertPayment(ctx, rec)
	} else {
		err = s.repo.UpdatePayment(ctx, rec)
	}
	if err != nil {
		s.logger.Error(ctx, "Save failed", "op", op, "error", err)
		return nil, err
	}

	// The realtime echo will reload too; the debounce coalesces both.
	if err := s.Reload(ctx); err != nil {
		s.logger.Warn(ctx, "Post-save reload failed", "error", err)
	}
	return &rec, nil
}

func (s *PaymentService) buildRecord(input SaveRecordInput) domain.PaymentRecord {
	rec := domain.PaymentRecord{
		ID:            input.ID,
		SeqNo:         input.SeqNo,
		Description:   input.Description,
		Counterparty:  input.Counterparty,
		Category:      input.Category,
		InvoiceStatus: domain.InvoiceStatus(input.InvoiceStatus),
		Project:       input.Project,
		Currency:      domain.Currency(input.Currency),
		CarriedDebt:   input.CarriedDebt.Decimal,
		CurrentDebt:   input.CurrentDebt.Decimal,
		Paid:          input.Paid.Decimal,
		DocumentURL:   input.DocumentURL,
		Period:        input.Period,
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.InvoiceStatus == "" {
		rec.InvoiceStatus = domain.Invoiced
	}
	if rec.Currency == "" {
		rec.Currency = domain.LocalCurrency
	}
	if rec.Period == "" {
		rec.Period = s.period
	}
	rec.Recompute()
	return rec
}

// Delete removes one record.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	fp := guard.NewFingerprint("DELETE", id)
	if !s.guard.TryBegin(fp) {
		return domain.ErrDuplicateOperation
	}
	defer s.guard.End(fp)

	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return err
	}
	s.store.Remove(id)
	return nil
}

// DeleteSelected removes a set of records in one backend call. The
// fingerprint is order-independent so a re-submitted selection dedupes
// regardless of how the ids were collected.
func (s *PaymentService) DeleteSelected(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	fp := guard.NewFingerprint("BULK_DELETE", sortedIDs(ids)...)
	if !s.guard.TryBegin(fp) {
		return domain.ErrDuplicateOperation
	}
	defer s.guard.End(fp)

	if err := s.repo.DeletePayments(ctx, ids); err != nil {
		return err
	}
	for _, id := range ids {
		s.store.Remove(id)
	}
	return nil
}

// UpdateFieldSelected applies one field value to a set of records.
func (s *PaymentService) UpdateFieldSelected(ctx context.Context, ids []string, field string, value string) error {
	if len(ids) == 0 || field == "" {
		return nil
	}

	fp := guard.NewFingerprint("BULK_UPDATE", append([]string{field, value}, sortedIDs(ids)...)...)
	if !s.guard.TryBegin(fp) {
		return domain.ErrDuplicateOperation
	}
	defer s.guard.End(fp)

	if err := s.repo.UpdateField(ctx, ids, field, value); err != nil {
		return err
	}
	return s.Reload(ctx)
}

// Import inserts mapped workbook rows independently; one row's failure
// does not abort the rest. Returns the number of rows imported. The
// fingerprint covers the mapped content, so re-submitting the same
// workbook inside the suppression window is rejected instead of doubling
// every row.
func (s *PaymentService) Import(ctx context.Context, r io.Reader) (int, error) {
	rows, err := excel.Read(r)
	if err != nil {
		return 0, err
	}

	records := make([]domain.PaymentRecord, 0, len(rows))
	parts := make([]string, 0, 2*len(rows)+1)
	parts = append(parts, strconv.Itoa(len(rows)))
	for i, row := range rows {
		rec := excel.MapRow(row, i, s.period)
		records = append(records, rec)
		parts = append(parts, rec.Description, rec.TotalDebt.String())
	}

	fp := guard.NewFingerprint("IMPORT", parts...)
	if !s.guard.TryBegin(fp) {
		s.logger.Warn(ctx, "Duplicate import blocked", "row_count", len(records))
		return 0, domain.ErrDuplicateOperation
	}
	defer s.guard.End(fp)

	success := 0
	for i := range records {
		records[i].ID = uuid.New().String()
		if err := s.repo.InsertPayment(ctx, records[i]); err != nil {
			s.logger.Warn(ctx, "Import row failed", "row", i+1, "error", err)
			continue
		}
		success++
	}

	s.logger.Info(ctx, "Import finished", "total_rows", len(rows), "success_count", success)

	if err := s.Reload(ctx); err != nil {
		s.logger.Warn(ctx, "Post-import reload failed", "error", err)
	}
	return success, nil
}

// Export writes the current view as a workbook.
func (s *PaymentService) Export(w io.Writer) error {
	view := s.store.View()
	rows := make([]excel.Row, 0, len(view))
	for _, rec := range view {
		rows = append(rows, excel.ExportRow(rec))
	}
	return excel.Write(w, excel.ExportHeaders, rows)
}

// Summarize aggregates the current view in the chosen base currency.
func (s *PaymentService) Summarize(base domain.Currency) report.Summary {
	return report.Summarize(s.store.View(), s.store.Rates(), base)
}

// UpdateRates persists edited rates for the period and merges them into
// the store.
func (s *PaymentService) UpdateRates(ctx context.Context, rates domain.RateTable) error {
	fp := guard.NewFingerprint("RATES", s.period)
	if !s.guard.TryBegin(fp) {
		return domain.ErrDuplicateOperation
	}
	defer s.guard.End(fp)

	if err := s.repo.UpsertRates(ctx, s.period, rates); err != nil {
		return err
	}
	s.store.SetRates(rates)
	return nil
}

// SeedRates layers the rate sources into the store: defaults, then the
// persisted snapshot for the period, then live quotes. Later sources win.
func (s *PaymentService) SeedRates(ctx context.Context, live domain.RateTable) {
	if persisted, err := s.repo.GetRates(ctx, s.period); err == nil {
		s.store.SetRates(persisted)
	} else {
		s.logger.Debug(ctx, "No persisted rates for period", "period", s.period)
	}
	if live != nil {
		s.store.SetRates(live)
	}
}

// UploadDocument stores a document and returns its public URL.
func (s *PaymentService) UploadDocument(ctx context.Context, name string, data []byte) (string, error) {
	return s.files.Upload(ctx, name, data)
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
