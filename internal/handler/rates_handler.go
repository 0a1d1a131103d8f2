package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/internal/service"
	"github.com/astekno/paytrack-be/internal/store"
	"github.com/astekno/paytrack-be/pkg/logger"
)

type RatesHandler struct {
	service *service.PaymentService
	store   *store.Store
	logger  *logger.Logger
}

func NewRatesHandler(svc *service.PaymentService, st *store.Store, log *logger.Logger) *RatesHandler {
	return &RatesHandler{
		service: svc,
		store:   st,
		logger:  log,
	}
}

func (h *RatesHandler) Get(c echo.Context) error {
	rates := h.store.Rates()
	return c.JSON(http.StatusOK, map[string]string{
		"usd_to_tl": rates[domain.CurrencyUSD].String(),
		"eur_to_tl": rates[domain.CurrencyEUR].String(),
		"stg_to_tl": rates[domain.CurrencySTG].String(),
	})
}

type updateRatesRequest struct {
	USDToTL string `json:"usd_to_tl"`
	EURToTL string `json:"eur_to_tl"`
	STGToTL string `json:"stg_to_tl"`
}

// Update overwrites the period's rates. Quotes left blank keep their
// current value (the store merge is shallow).
func (h *RatesHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateRatesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "malformed payload",
		})
	}

	partial := domain.RateTable{domain.CurrencyTL: decimal.NewFromInt(1)}
	for ccy, raw := range map[domain.Currency]string{
		domain.CurrencyUSD: req.USDToTL,
		domain.CurrencyEUR: req.EURToTL,
		domain.CurrencySTG: req.STGToTL,
	} {
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || !d.IsPositive() {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "rates must be positive numbers",
			})
		}
		partial[ccy] = d
	}

	current := h.store.Rates()
	for ccy, rate := range partial {
		current[ccy] = rate
	}

	if err := h.service.UpdateRates(ctx, current); err != nil {
		h.logger.Error(ctx, "Rate update failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "rates could not be saved",
		})
	}

	return h.Get(c)
}
