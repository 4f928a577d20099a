package http

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"hospitalcli/internal/dataprocessing"
	apierrors "hospitalcli/internal/errors"
	"hospitalcli/internal/exporter"
	"hospitalcli/internal/middleware"
	"hospitalcli/internal/services"
	"hospitalcli/pkg/contracts/domain"
)

const (
	defaultTableLimit = 20
	maxTableLimit     = 1000
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType    = "text/csv; charset=utf-8"
)

type unitCtxKey struct{}

// ReportHandler serves pipeline results with RFC 7807 error handling
type ReportHandler struct {
	service      ReportServiceInterface
	charts       *exporter.ChartWorkbook
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:      service,
		charts:       exporter.NewChartWorkbook(logger),
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// UnitSummary is the per-unit view of a report.
type UnitSummary struct {
	Unit       domain.Unit      `json:"unit"`
	Patients   int              `json:"patients"`
	MedianAge  domain.Aggregate `json:"median_age"`
	AgeStdDev  domain.Aggregate `json:"age_std_dev"`
	BloodTests int              `json:"blood_tests"`
}

// UnitsResponse lists every unit with the population extremes.
type UnitsResponse struct {
	LeastPopulated domain.Unit   `json:"least_populated_unit"`
	MostPopulated  domain.Unit   `json:"most_populated_unit"`
	Units          []UnitSummary `json:"units"`
}

// TableResponse is a window over the unified table.
type TableResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/answers", h.GetAnswers)
		r.Get("/units", h.GetUnits)
		r.With(h.UnitCtx).Get("/units/{unit}", h.GetUnit)
		r.Get("/charts", h.GetCharts)
		r.Get("/table", h.GetTable)
		r.Post("/refresh", h.Refresh)
	})
	r.Get("/charts/workbook", h.DownloadWorkbook)

	return r
}

// UnitCtx validates the unit URL parameter
func (h *ReportHandler) UnitCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unit, err := domain.ParseUnit(chi.URLParam(r, "unit"))
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("unit", err.Error()))
			return
		}
		ctx := context.WithValue(r.Context(), unitCtxKey{}, unit)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAnswers handles GET /api/answers
func (h *ReportHandler) GetAnswers(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"run_id":       report.RunID,
		"generated_at": report.GeneratedAt,
		"answers":      report.Answers,
		"stats":        report.Stats,
	})
}

// GetUnits handles GET /api/units
func (h *ReportHandler) GetUnits(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}

	resp := UnitsResponse{
		LeastPopulated: report.Answers.LeastPopulated,
		MostPopulated:  report.Answers.MostPopulated,
	}
	for _, uc := range report.Answers.UnitCounts {
		resp.Units = append(resp.Units, summarize(report, uc.Unit))
	}
	render.JSON(w, r, resp)
}

// GetUnit handles GET /api/units/{unit}
func (h *ReportHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	unit := r.Context().Value(unitCtxKey{}).(domain.Unit)
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, summarize(report, unit))
}

// GetCharts handles GET /api/charts
func (h *ReportHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, report.Charts)
}

// GetTable handles GET /api/table?offset=&limit=&format=json|csv
func (h *ReportHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	offset, ok := h.query.ValidateInt(w, r, "offset", 0, math.MaxInt32, 0)
	if !ok {
		return
	}
	limit, ok := h.query.ValidateInt(w, r, "limit", 1, maxTableLimit, defaultTableLimit)
	if !ok {
		return
	}
	format, ok := h.query.ValidateEnum(w, r, "format", []string{"json", "csv"}, "json")
	if !ok {
		return
	}

	report, ok := h.latest(w, r)
	if !ok {
		return
	}

	table := report.Unified
	window := domain.NewTable(table.Name, table.Columns)
	if offset < table.Len() {
		window.Rows = table.Rows[offset:]
	}
	window = window.Head(limit)

	if format == "csv" {
		w.Header().Set("Content-Type", csvContentType)
		w.Header().Set("X-Total-Count", strconv.Itoa(table.Len()))
		if err := exporter.WriteTableTo(w, window); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to stream table", slog.String("error", err.Error()))
		}
		return
	}

	resp := TableResponse{Columns: window.Columns, Rows: [][]string{}, Total: table.Len()}
	for _, row := range window.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		resp.Rows = append(resp.Rows, cells)
	}
	render.JSON(w, r, resp)
}

// Refresh handles POST /api/refresh. The pass runs synchronously, so the
// response carries the new run.
func (h *ReportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Refresh(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Report refreshed", slog.String("run_id", report.RunID))

	render.JSON(w, r, map[string]interface{}{
		"run_id":       report.RunID,
		"generated_at": report.GeneratedAt,
		"rows":         report.Unified.Len(),
	})
}

// DownloadWorkbook handles GET /api/charts/workbook
func (h *ReportHandler) DownloadWorkbook(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.charts.WriteTo(&buf, report.Charts); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to render chart workbook", err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="hospital_charts.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *ReportHandler) latest(w http.ResponseWriter, r *http.Request) (*services.Report, bool) {
	report, err := h.service.Latest(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return report, true
}

func summarize(report *services.Report, unit domain.Unit) UnitSummary {
	rows := report.Unified.Where(domain.ColUnit, string(unit))
	return UnitSummary{
		Unit:       unit,
		Patients:   report.Answers.Count(unit),
		MedianAge:  dataprocessing.Median(rows.Floats(domain.ColAge)),
		AgeStdDev:  report.Answers.AgeStdDev[unit],
		BloodTests: rows.Where(domain.ColBloodTest, domain.TestTaken).Len(),
	}
}
