package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/astekno/paytrack-be/internal/domain"
	"github.com/astekno/paytrack-be/internal/query"
	"github.com/astekno/paytrack-be/internal/service"
	"github.com/astekno/paytrack-be/pkg/logger"
)

type PaymentHandler struct {
	service *service.PaymentService
	logger  *logger.Logger
}

func NewPaymentHandler(svc *service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: svc,
		logger:  log,
	}
}

// List applies the query-string criteria and returns the resulting view.
// The filter runs against in-memory state, so it works even when the
// backend is down.
func (h *PaymentHandler) List(c echo.Context) error {
	crit := query.Criteria{
		Search:        c.QueryParam("search"),
		InvoiceStatus: domain.InvoiceStatus(c.QueryParam("fatura_durumu")),
		Currency:      domain.Currency(c.QueryParam("para_birimi")),
		PaymentStatus: domain.PaymentStatus(c.QueryParam("odeme_durumu")),
	}
	if v := c.QueryParam("firma"); v != "" {
		crit.Counterparties = strings.Split(v, ",")
	}
	if v := c.QueryParam("proje"); v != "" {
		crit.Projects = strings.Split(v, ",")
	}
	if v := c.QueryParam("min_tutar"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			crit.MinAmount = &d
		}
	}
	if v := c.QueryParam("max_tutar"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			crit.MaxAmount = &d
		}
	}

	view := h.service.ApplyFilter(crit)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": view,
		"total": len(view),
	})
}

// Sort toggles the sort column for the view.
func (h *PaymentHandler) Sort(c echo.Context) error {
	field := c.QueryParam("field")
	if field == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "field is required",
		})
	}

	view := h.service.SortBy(field)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": view,
		"total": len(view),
	})
}

func (h *PaymentHandler) Save(c echo.Context) error {
	ctx := c.Request().Context()

	var input service.SaveRecordInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "malformed payload",
		})
	}

	rec, err := h.service.Save(ctx, input)
	if err != nil {
		return h.writeError(c, err)
	}

	status := http.StatusCreated
	if input.ID != "" {
		status = http.StatusOK
	}
	return c.JSON(status, rec)
}

func (h *PaymentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if err := h.service.Delete(ctx, id); err != nil {
		return h.writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h *PaymentHandler) BulkDelete(c echo.Context) error {
	ctx := c.Request().Context()

	var req bulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "malformed payload",
		})
	}

	if err := h.service.DeleteSelected(ctx, req.IDs); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted": len(req.IDs),
	})
}

type bulkUpdateRequest struct {
	IDs   []string `json:"ids"`
	Field string   `json:"field"`
	Value string   `json:"value"`
}

func (h *PaymentHandler) BulkUpdate(c echo.Context) error {
	ctx := c.Request().Context()

	var req bulkUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "malformed payload",
		})
	}
	if req.Field == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "field is required",
		})
	}

	if err := h.service.UpdateFieldSelected(ctx, req.IDs, req.Field, req.Value); err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"updated": len(req.IDs),
	})
}

// Import takes an xlsx upload, maps its rows heuristically and inserts
// them row by row, reporting how many made it.
func (h *PaymentHandler) Import(c echo.Context) error {
	ctx := c.Request().Context()

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "file is required",
		})
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") &&
		!strings.HasSuffix(strings.ToLower(file.Filename), ".xls") {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "an .xlsx workbook is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to open file",
		})
	}
	defer src.Close()

	count, err := h.service.Import(ctx, src)
	if errors.Is(err, domain.ErrDuplicateOperation) {
		return h.writeError(c, err)
	}
	if err != nil {
		h.logger.Error(ctx, "Import failed", "error", err)
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": "workbook could not be processed",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"imported": count,
	})
}

// Export streams the current view as an xlsx download.
func (h *PaymentHandler) Export(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="odeme_listesi.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)

	return h.service.Export(c.Response())
}

// UploadDocument stores an attached document and returns its URL.
func (h *PaymentHandler) UploadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "file is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to open file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to read file",
		})
	}

	url, err := h.service.UploadDocument(ctx, file.Filename, data)
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"url": url,
	})
}

func (h *PaymentHandler) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrSubmitCooldown), errors.Is(err, domain.ErrDuplicateOperation):
		return c.JSON(http.StatusTooManyRequests, map[string]string{
			"error": "işlem zaten devam ediyor, lütfen bekleyin",
		})
	case errors.Is(err, domain.ErrInvalidRecord):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	case errors.Is(err, domain.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "record not found",
		})
	case errors.Is(err, domain.ErrBackendUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "backend unavailable, showing last known data",
		})
	default:
		h.logger.Error(c.Request().Context(), "Request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
	}
}
