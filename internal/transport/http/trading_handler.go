package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "sheetcalc/internal/errors"
	"sheetcalc/internal/middleware"
	"sheetcalc/internal/validation"
	api "sheetcalc/pkg/contracts/api/v1"
	"sheetcalc/pkg/contracts/domain"
)

// TradingHandler serves MTM valuations of uploaded trading workbooks.
type TradingHandler struct {
	service      ValuationService
	uploads      *validation.UploadValidator
	validator    *middleware.RequestValidator
	maxMemory    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTradingHandler creates a trading handler. maxMemory bounds the part of a
// multipart upload held in memory; larger files spill to disk.
func NewTradingHandler(service ValuationService, uploads *validation.UploadValidator, maxMemory int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TradingHandler {
	if uploads == nil {
		uploads = validation.NewUploadValidator(0)
	}
	return &TradingHandler{
		service:      service,
		uploads:      uploads,
		validator:    middleware.NewRequestValidator(),
		maxMemory:    maxMemory,
		logger:       logger.With(slog.String("handler", "trading")),
		errorHandler: errorHandler,
	}
}

// Routes returns the trading routes
func (h *TradingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireMultipart(h.errorHandler))
	r.Post("/mtm", h.ValueMTM)
	return r
}

// ValueMTM handles POST /api/trading/mtm
func (h *TradingHandler) ValueMTM(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, header, err := uploadForm(r, h.maxMemory, h.uploads)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	req := api.MTMRequest{
		ValuationDate: strings.TrimSpace(r.FormValue("valuation_date")),
		Format:        strings.ToLower(strings.TrimSpace(r.FormValue("format"))),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, _ := domain.ParseReportFormat(req.Format)

	report, err := h.service.ValueUpload(ctx, file, header.Filename, req.ValuationDate)
	if err != nil {
		h.errorHandler.HandleError(w, r, calculationError(err))
		return
	}

	if format == domain.ReportFormatJSON {
		render.JSON(w, r, api.MTMResponse{Rows: report.Table().Records()})
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(ctx, report, format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExportError(string(format), err))
		return
	}

	filename := fmt.Sprintf("MTM_valuation_report_%s%s", report.ValuationDate.Format("20060102"), format.Extension())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(ctx, "failed to write report download",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}
