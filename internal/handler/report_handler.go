package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/internal/report"
	"github.com/astekno/paytrack-be/internal/service"
	"github.com/astekno/paytrack-be/internal/store"
	"github.com/astekno/paytrack-be/pkg/logger"
)

type ReportHandler struct {
	service *service.PaymentService
	store   *store.Store
	logger  *logger.Logger
}

func NewReportHandler(svc *service.PaymentService, st *store.Store, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		service: svc,
		store:   st,
		logger:  log,
	}
}

// Summary returns the headline totals for the current view in the chosen
// base currency (default TL).
func (h *ReportHandler) Summary(c echo.Context) error {
	base := domain.Currency(c.QueryParam("base"))
	if base == "" {
		base = domain.LocalCurrency
	}
	return c.JSON(http.StatusOK, h.service.Summarize(base))
}

// StatusDistribution returns record counts per payment status.
func (h *ReportHandler) StatusDistribution(c echo.Context) error {
	return c.JSON(http.StatusOK, report.DistributionByStatus(h.store.View()))
}

// FieldDistribution returns record counts per value of the chosen field.
func (h *ReportHandler) FieldDistribution(c echo.Context) error {
	field, ok := groupFields[c.QueryParam("field")]
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "field must be one of isin_nevi, isin_adi, firma_fatura_ismi, para_birimi",
		})
	}
	return c.JSON(http.StatusOK, report.DistributionByField(h.store.View(), field))
}

// Top returns the n largest groups by the chosen value field, in the
// chosen base currency.
func (h *ReportHandler) Top(c echo.Context) error {
	group, ok := groupFields[c.QueryParam("group")]
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "group must be one of isin_nevi, isin_adi, firma_fatura_ismi, para_birimi",
		})
	}

	value, ok := valueFields[c.QueryParam("value")]
	if !ok {
		value = report.ValueTotalDebt
	}

	n, err := strconv.Atoi(c.QueryParam("n"))
	if err != nil || n < 1 {
		n = 5
	}

	base := domain.Currency(c.QueryParam("base"))
	if base == "" {
		base = domain.LocalCurrency
	}

	rows := report.TopN(h.store.View(), group, value, n, h.store.Rates(), base)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"base":  base,
		"items": rows,
	})
}

var groupFields = map[string]report.FieldValue{
	"isin_nevi":         report.GroupByCategory,
	"isin_adi":          report.GroupByProject,
	"firma_fatura_ismi": report.GroupByCounterparty,
	"para_birimi":       report.GroupByCurrency,
}

var valueFields = map[string]report.ValueField{
	"toplam_borc":  report.ValueTotalDebt,
	"bu_ay_odenen": report.ValuePaid,
	"kalan":        report.ValueRemaining,
}
