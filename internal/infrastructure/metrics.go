package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// PipelineMetrics records what each pipeline run loaded, cleaned and answered.
type PipelineMetrics struct {
	RowsLoaded   metric.Int64Counter
	RowsDropped  metric.Int64Counter
	CellsFilled  metric.Int64Counter
	Runs         metric.Int64Counter
	RunFailures  metric.Int64Counter
	RunDuration  metric.Float64Histogram
	HTTPRequests metric.Int64Counter
}

// NewPipelineMetrics registers the pipeline instruments on meter.
// A nil meter yields no-op instruments.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	rowsLoaded, err := meter.Int64Counter(
		"hospital_rows_loaded_total",
		metric.WithDescription("Rows read from source files, by unit"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"hospital_rows_dropped_total",
		metric.WithDescription("Fully empty rows removed during cleaning"),
	)
	if err != nil {
		return nil, err
	}

	cellsFilled, err := meter.Int64Counter(
		"hospital_cells_filled_total",
		metric.WithDescription("Absent cells replaced with a default, by column"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter(
		"hospital_pipeline_runs_total",
		metric.WithDescription("Completed pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter(
		"hospital_pipeline_failures_total",
		metric.WithDescription("Pipeline runs that ended with an error"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"hospital_pipeline_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpRequests, err := meter.Int64Counter(
		"hospital_http_requests_total",
		metric.WithDescription("HTTP requests served, by route and status"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:   rowsLoaded,
		RowsDropped:  rowsDropped,
		CellsFilled:  cellsFilled,
		Runs:         runs,
		RunFailures:  failures,
		RunDuration:  duration,
		HTTPRequests: httpRequests,
	}, nil
}

// RecordLoad adds the row count read for one unit.
func (m *PipelineMetrics) RecordLoad(ctx context.Context, unit string, rows int) {
	if m == nil {
		return
	}
	m.RowsLoaded.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("unit", unit)))
}

// RecordCleaning adds dropped rows and per-column fills.
func (m *PipelineMetrics) RecordCleaning(ctx context.Context, dropped int, filled map[string]int) {
	if m == nil {
		return
	}
	m.RowsDropped.Add(ctx, int64(dropped))
	for col, n := range filled {
		m.CellsFilled.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", col)))
	}
}

// RecordRun records one pipeline run and its outcome.
func (m *PipelineMetrics) RecordRun(ctx context.Context, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		m.RunFailures.Add(ctx, 1)
	}
	m.Runs.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.RunDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// RecordHTTP counts one served request.
func (m *PipelineMetrics) RecordHTTP(ctx context.Context, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}
