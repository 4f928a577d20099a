package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalcli/internal/config"
)

const (
	acuteCSV = `,unit,gender,age,height,weight,bmi,diagnosis,blood_test,ecg,ultrasound,mri,xray,children,months
0,acute,man,56,1.75,80,26.1,cold,t,,,,,,
1,acute,woman,60,1.62,70,26.7,stomach,,,,,,,
`
	maternityCSV = `,UNIT,Sex,age,height,weight,bmi,diagnosis,blood_test,ecg,ultrasound,mri,xray,children,months
0,maternity,,28,1.66,65,23.6,pregnancy,t,,,,,1,3
`
	athleticsCSV = `,Unit,Male/female,age,height,weight,bmi,diagnosis,blood_test,ecg,ultrasound,mri,xray,children,months
0,athletics,male,21,6.1,180,24.0,fracture,,,,,,,
`
)

func testApplication(t *testing.T, withSources bool) *Application {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Server.RateLimit.Enabled = false
	paths := cfg.PathsFrom(dir)

	if withSources {
		require.NoError(t, os.MkdirAll(paths.DataDir, 0755))
		for path, body := range map[string]string{
			paths.AcuteFile:     acuteCSV,
			paths.MaternityFile: maternityCSV,
			paths.AthleticsFile: athleticsCSV,
		} {
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		}
	}

	a, err := New(cfg, paths, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Telemetry.Shutdown(context.Background()) })
	return a
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewCreatesReportsDir(t *testing.T) {
	a := testApplication(t, false)
	info, err := os.Stat(a.Paths.ReportsDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, ":8080", a.Server.Addr)
}

func TestRouterServesAnswers(t *testing.T) {
	a := testApplication(t, true)

	rec := get(t, a.Router, "/api/answers")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var body struct {
		Answers struct {
			Most string `json:"most_populated_unit"`
		} `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "acute", body.Answers.Most)

	cached, ok := a.Reports.Cached()
	require.True(t, ok)
	assert.Equal(t, 4, cached.Unified.Len())
}

func TestRouterHealth(t *testing.T) {
	a := testApplication(t, false)

	rec := get(t, a.Router, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, a.Router, "/api/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterMissingSourceIsProblem(t *testing.T) {
	a := testApplication(t, false)

	rec := get(t, a.Router, "/api/answers")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "source-not-found")
}

func TestRouterNotFoundAndMethod(t *testing.T) {
	a := testApplication(t, true)

	rec := get(t, a.Router, "/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/answers", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	a := testApplication(t, true)

	require.Equal(t, http.StatusOK, get(t, a.Router, "/api/answers").Code)

	rec := get(t, a.Router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "hospital_pipeline_runs_total"), body)
	assert.Contains(t, body, "hospital_http_requests_total")
}
