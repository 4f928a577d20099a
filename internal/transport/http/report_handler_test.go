package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hospitalcli/internal/dataprocessing"
	apierrors "hospitalcli/internal/errors"
	"hospitalcli/internal/services"
	"hospitalcli/pkg/contracts/domain"
)

const header = ",unit,gender,age,height,weight,bmi,diagnosis,blood_test,ecg,ultrasound,mri,xray,children,months\n"

type fakeReportService struct {
	report    *services.Report
	err       error
	refreshes int
}

func (f *fakeReportService) Latest(ctx context.Context) (*services.Report, error) {
	return f.report, f.err
}

func (f *fakeReportService) Refresh(ctx context.Context) (*services.Report, error) {
	f.refreshes++
	return f.report, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildReport(t *testing.T) *services.Report {
	t.Helper()
	read := func(name, body string) domain.Table {
		table, err := dataprocessing.ReadTable(name, strings.NewReader(header+body))
		require.NoError(t, err)
		return table
	}
	src := dataprocessing.Sources{
		Acute: read("acute", "0,acute,man,56,1.75,80,26.1,cold,t,,,,,,\n"+
			"1,acute,woman,60,1.62,70,26.7,stomach,,,,,,,\n"+
			"2,acute,m,48,1.80,90,27.8,cold,,,,,,,\n"),
		Maternity: read("maternity", "0,maternity,,28,1.66,65,23.6,pregnancy,t,,,,,1,3\n"),
		Athletics: read("athletics", "0,athletics,male,21,6.1,180,24.0,fracture,t,,,,,,\n"+
			"1,athletics,female,19,5.5,130,21.5,sprain,t,,,,,,\n"),
	}
	unified, stats, err := dataprocessing.BuildUnifiedTable(src)
	require.NoError(t, err)

	return &services.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Stats:       stats,
		Answers:     dataprocessing.NewAnalyzer(quietLogger(), nil).Answer(context.Background(), unified, src),
		Charts:      dataprocessing.BuildChartInputs(unified),
		Sources:     src,
		Unified:     unified,
	}
}

func newTestRouter(svc ReportServiceInterface) http.Handler {
	errorHandler := apierrors.NewErrorHandler(quietLogger(), false)
	r := chi.NewRouter()
	r.Mount("/api", NewReportHandler(svc, quietLogger(), errorHandler).Routes())
	return r
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetAnswers(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	rec := do(t, router, http.MethodGet, "/api/answers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	body := decode(t, rec)
	assert.Equal(t, "run-1", body["run_id"])
	answers := body["answers"].(map[string]interface{})
	assert.Equal(t, "maternity", answers["least_populated_unit"])
	assert.Equal(t, "acute", answers["most_populated_unit"])
	assert.InDelta(t, 2.0/3.0, answers["acute_cold_share"], 1e-9)
	assert.InDelta(t, 0.5, answers["athletics_fracture_share"], 1e-9)
}

func TestGetUnits(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	rec := do(t, router, http.MethodGet, "/api/units")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UnitsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.UnitMaternity, resp.LeastPopulated)
	require.Len(t, resp.Units, 3)
	assert.Equal(t, domain.UnitAcute, resp.Units[0].Unit)
	assert.Equal(t, 3, resp.Units[0].Patients)
	assert.Equal(t, 1, resp.Units[0].BloodTests)
	assert.InDelta(t, 56, resp.Units[0].MedianAge.Value, 1e-9)
}

func TestGetUnit(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	rec := do(t, router, http.MethodGet, "/api/units/Athletics")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary UnitSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, domain.UnitAthletics, summary.Unit)
	assert.Equal(t, 2, summary.Patients)
	assert.Equal(t, 2, summary.BloodTests)
	assert.InDelta(t, 20, summary.MedianAge.Value, 1e-9)
}

func TestGetUnitUnknown(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	rec := do(t, router, http.MethodGet, "/api/units/cardiology")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
}

func TestGetCharts(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	rec := do(t, router, http.MethodGet, "/api/charts")
	require.Equal(t, http.StatusOK, rec.Code)

	var charts domain.ChartInputs
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &charts))
	assert.Len(t, charts.Ages, 6)
	assert.Len(t, charts.AthleticsAgeBMI, 2)
	assert.Len(t, charts.HeightsByUnit, 3)
}

func TestDownloadWorkbook(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	rec := do(t, router, http.MethodGet, "/api/charts/workbook")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "hospital_charts.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Diagnoses")
}

func TestGetTable(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	rec := do(t, router, http.MethodGet, "/api/table?offset=1&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TableResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Total)
	require.Len(t, resp.Rows, 2)
	assert.NotContains(t, resp.Columns, domain.ColIndex)
	assert.Equal(t, "acute", resp.Rows[0][0])
}

func TestGetTableCSV(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	rec := do(t, router, http.MethodGet, "/api/table?format=csv&limit=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, csvContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "6", rec.Header().Get("X-Total-Count"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "unit,gender,age"))
	assert.True(t, strings.HasPrefix(lines[1], "acute,m,56"))
}

func TestGetTableOffsetPastEnd(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	rec := do(t, router, http.MethodGet, "/api/table?offset=50")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp TableResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Rows)
	assert.Equal(t, 6, resp.Total)
}

func TestGetTableInvalidLimit(t *testing.T) {
	router := newTestRouter(&fakeReportService{report: buildReport(t)})

	for _, q := range []string{"limit=0", "limit=abc", "limit=5000", "offset=-1", "limit=3x", "format=xml"} {
		t.Run(q, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/api/table?"+q)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRefresh(t *testing.T) {
	svc := &fakeReportService{report: buildReport(t)}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, svc.refreshes)
	assert.Equal(t, float64(6), decode(t, rec)["rows"])
}

func TestReportErrorsMapToProblems(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		wantType string
	}{
		{
			name:     "missing source",
			err:      apierrors.NewSourceNotFoundError("acute", "data/test/hospital_general.csv", nil),
			status:   http.StatusServiceUnavailable,
			wantType: apierrors.TypeSourceNotFound,
		},
		{
			name:     "schema mismatch",
			err:      apierrors.NewSchemaMismatchError("maternity", "gender"),
			status:   http.StatusUnprocessableEntity,
			wantType: apierrors.TypeSchemaMismatch,
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			status:   http.StatusGatewayTimeout,
			wantType: apierrors.TypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeReportService{err: tt.err})
			rec := do(t, router, http.MethodGet, "/api/answers")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.wantType, decode(t, rec)["type"])
		})
	}
}
