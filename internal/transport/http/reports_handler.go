package http

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "descstats/internal/errors"
	"descstats/internal/middleware"
	"descstats/internal/services"
)

var engineName = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// ReportsHandler serves engine reports with RFC 7807 errors
type ReportsHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "reports_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes, mounted under /api/reports
func (h *ReportsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListReports)
	r.Route("/{engine}", func(r chi.Router) {
		r.Use(h.EngineCtx)
		r.Get("/", h.GetReport)
		r.Get("/{dataset}", h.GetDataset)
		r.Get("/{dataset}/columns/{column}", h.GetColumn)
	})

	return r
}

// EngineCtx rejects malformed engine names before any file access
func (h *ReportsHandler) EngineCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !engineName.MatchString(chi.URLParam(r, "engine")) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("engine", "Invalid engine name"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListReports handles GET /api/reports
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"data":  reports,
		"count": len(reports),
	})
}

// GetReport handles GET /api/reports/{engine}
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.GetReport(r.Context(), chi.URLParam(r, "engine"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, rep)
}

// GetDataset handles GET /api/reports/{engine}/{dataset}
func (h *ReportsHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	section, err := h.service.GetDataset(r.Context(), chi.URLParam(r, "engine"), chi.URLParam(r, "dataset"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, section)
}

// GetColumn handles GET /api/reports/{engine}/{dataset}/columns/{column}
func (h *ReportsHandler) GetColumn(w http.ResponseWriter, r *http.Request) {
	col, err := h.service.GetColumn(r.Context(),
		chi.URLParam(r, "engine"),
		chi.URLParam(r, "dataset"),
		chi.URLParam(r, "column"),
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, col)
}

// ListFigures handles GET /api/figures
func (h *ReportsHandler) ListFigures(w http.ResponseWriter, r *http.Request) {
	figures, err := h.service.ListFigures(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"data":  figures,
		"count": len(figures),
	})
}

func (h *ReportsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrReportMissing) {
		h.logger.InfoContext(r.Context(), "report not generated yet",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("engine", chi.URLParam(r, "engine")),
		)
		err = apierrors.NotFoundError("report")
	}
	h.errorHandler.HandleError(w, r, err)
}
