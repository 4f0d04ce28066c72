package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "sheetcalc/internal/errors"
	"sheetcalc/internal/middleware"
	"sheetcalc/internal/validation"
	api "sheetcalc/pkg/contracts/api/v1"
)

// WeatherHandler answers precipitation questions over uploaded workbooks.
type WeatherHandler struct {
	service      WeatherService
	uploads      *validation.UploadValidator
	validator    *middleware.RequestValidator
	maxMemory    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewWeatherHandler creates a weather handler
func NewWeatherHandler(service WeatherService, uploads *validation.UploadValidator, maxMemory int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *WeatherHandler {
	if uploads == nil {
		uploads = validation.NewUploadValidator(0)
	}
	return &WeatherHandler{
		service:      service,
		uploads:      uploads,
		validator:    middleware.NewRequestValidator(),
		maxMemory:    maxMemory,
		logger:       logger.With(slog.String("handler", "weather")),
		errorHandler: errorHandler,
	}
}

// Routes returns the weather routes
func (h *WeatherHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireMultipart(h.errorHandler))
	r.Post("/answer", h.Answer)
	return r
}

// Answer handles POST /api/weather/answer
func (h *WeatherHandler) Answer(w http.ResponseWriter, r *http.Request) {
	file, header, err := uploadForm(r, h.maxMemory, h.uploads)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	req := api.WeatherQuestionRequest{Question: strings.TrimSpace(r.FormValue("question"))}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	answer, err := h.service.AnswerUpload(r.Context(), file, header.Filename, req.Question)
	if err != nil {
		h.errorHandler.HandleError(w, r, calculationError(err))
		return
	}

	render.JSON(w, r, api.WeatherAnswerResponse{
		Answer: answer.Text,
		Intent: string(answer.Intent),
		Table:  answer.Table.Records(),
	})
}
