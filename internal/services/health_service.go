package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"hospitalcli/internal/dataprocessing"
	"hospitalcli/pkg/contracts"
	"hospitalcli/pkg/contracts/domain"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	paths     dataprocessing.SourcePaths
	reports   *ReportService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service. reports may be nil.
func NewHealthService(version string, paths dataprocessing.SourcePaths, reports *ReportService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("HealthService initialized", slog.String("version", version))

	return &HealthService{
		version:   version,
		paths:     paths,
		reports:   reports,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck reports readiness: every source file present, plus the state
// of the cached report.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Services: make(map[string]ServiceHealth),
	}

	for _, unit := range domain.AllUnits() {
		status.Services["source_"+string(unit)] = checkSource(hs.paths.Path(unit))
	}
	status.Services["report"] = hs.checkReport()

	for _, sh := range status.Services {
		if sh.Status == "missing" {
			status.Status = "degraded"
			break
		}
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed", slog.String("status", status.Status))
	return status
}

func checkSource(path string) ServiceHealth {
	info, err := os.Stat(path)
	if err != nil {
		return ServiceHealth{Status: "missing", Message: path}
	}
	if info.IsDir() {
		return ServiceHealth{Status: "missing", Message: path + " is a directory"}
	}
	return ServiceHealth{Status: "ready", Message: path}
}

func (hs *HealthService) checkReport() ServiceHealth {
	if hs.reports == nil {
		return ServiceHealth{Status: "disabled"}
	}
	report, ok := hs.reports.Cached()
	if !ok {
		return ServiceHealth{Status: "pending", Message: "no run yet"}
	}
	return ServiceHealth{Status: "ready", Message: "generated " + report.GeneratedAt.Format(time.RFC3339)}
}

// LivenessCheck only confirms the process is serving.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// Version returns build information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}
