package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"hospitalcli/internal/dataprocessing"
	"hospitalcli/internal/infrastructure"
	"hospitalcli/pkg/contracts/domain"
)

// Report is the outcome of one pipeline run.
type Report struct {
	RunID       string                        `json:"run_id"`
	GeneratedAt time.Time                     `json:"generated_at"`
	Duration    time.Duration                 `json:"duration_ns"`
	Stats       dataprocessing.NormalizeStats `json:"stats"`
	Answers     domain.Answers                `json:"answers"`
	Charts      domain.ChartInputs            `json:"charts"`
	Sources     dataprocessing.Sources        `json:"-"`
	Unified     domain.Table                  `json:"-"`
}

// ReportService runs load, clean, analyze and chart extraction, and keeps the
// latest report for readers.
type ReportService struct {
	paths    dataprocessing.SourcePaths
	loader   *dataprocessing.Loader
	analyzer *dataprocessing.Analyzer
	tracer   trace.Tracer
	metrics  *infrastructure.PipelineMetrics
	logger   *slog.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	last    *Report
	seq     uint64 // runs started
	lastSeq uint64 // run that produced last

	// beforeLoad, when set, is called at the start of every pass.
	beforeLoad func(ctx context.Context)
}

// NewReportService creates the service. Tracer and metrics may be nil.
func NewReportService(paths dataprocessing.SourcePaths, tracer trace.Tracer, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *ReportService {
	logger = infrastructure.WithComponent(logger, "report_service")
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}

	logger.Info("ReportService initialized",
		slog.String("acute", paths.Acute),
		slog.String("maternity", paths.Maternity),
		slog.String("athletics", paths.Athletics))

	return &ReportService{
		paths:    paths,
		loader:   dataprocessing.NewLoader(logger),
		analyzer: dataprocessing.NewAnalyzer(logger, tracer),
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run executes the pipeline once and caches the result. Concurrent callers
// share a single run, which is not cancelled when the caller that started it
// goes away.
func (s *ReportService) Run(ctx context.Context) (*Report, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do("run", func() (interface{}, error) {
		return s.run(shared)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// Refresh runs the pipeline again. A pass already in flight is not joined,
// so the result always reflects the sources as of the call.
func (s *ReportService) Refresh(ctx context.Context) (*Report, error) {
	s.group.Forget("run")
	return s.Run(ctx)
}

// Latest returns the cached report, running the pipeline if there is none.
func (s *ReportService) Latest(ctx context.Context) (*Report, error) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last != nil {
		return last, nil
	}
	return s.Run(ctx)
}

// Cached returns the last report without running the pipeline.
func (s *ReportService) Cached() (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.last != nil
}

func (s *ReportService) run(ctx context.Context) (report *Report, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)
	start := time.Now()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "report.run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
			s.logger.ErrorContext(ctx, "Pipeline run failed", slog.String("error", err.Error()))
		}
		s.metrics.RecordRun(ctx, time.Since(start), err)
		span.End()
	}()

	s.logger.InfoContext(ctx, "Pipeline run started")
	if s.beforeLoad != nil {
		s.beforeLoad(ctx)
	}

	src, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	unified, stats, err := s.normalize(ctx, src)
	if err != nil {
		return nil, err
	}

	answers := s.analyzer.Answer(ctx, unified, src)
	charts := dataprocessing.BuildChartInputs(unified)

	report = &Report{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Duration:    time.Since(start),
		Stats:       stats,
		Answers:     answers,
		Charts:      charts,
		Sources:     src,
		Unified:     unified,
	}

	s.mu.Lock()
	if seq > s.lastSeq {
		s.last, s.lastSeq = report, seq
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Pipeline run completed",
		slog.Int("rows", unified.Len()),
		slog.Duration("duration", report.Duration))
	return report, nil
}

func (s *ReportService) load(ctx context.Context) (dataprocessing.Sources, error) {
	ctx, span := s.tracer.Start(ctx, "report.load")
	defer span.End()

	src, err := s.loader.LoadSources(ctx, s.paths)
	if err != nil {
		return src, err
	}
	for _, unit := range domain.AllUnits() {
		s.metrics.RecordLoad(ctx, string(unit), src.Table(unit).Len())
	}
	span.SetAttributes(attribute.Int("rows", src.Rows()))
	return src, nil
}

func (s *ReportService) normalize(ctx context.Context, src dataprocessing.Sources) (domain.Table, dataprocessing.NormalizeStats, error) {
	ctx, span := s.tracer.Start(ctx, "report.normalize")
	defer span.End()

	unified, stats, err := dataprocessing.BuildUnifiedTable(src)
	if err != nil {
		return unified, stats, err
	}
	s.metrics.RecordCleaning(ctx, stats.RowsDropped, stats.Filled)

	rows, cols := unified.Shape()
	span.SetAttributes(attribute.Int("rows", rows), attribute.Int("columns", cols))
	s.logger.InfoContext(ctx, "Unified table built",
		slog.Int("rows", rows),
		slog.Int("columns", cols),
		slog.Int("rows_dropped", stats.RowsDropped),
		slog.Int("genders_filled", stats.GendersFilled))
	return unified, stats, nil
}
