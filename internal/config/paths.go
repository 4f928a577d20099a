package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds every resolved file location the pipeline touches
type Paths struct {
	DataDir       string
	ReportsDir    string
	LogsDir       string
	AcuteFile     string
	MaternityFile string
	AthleticsFile string
	ChartWorkbook string
	UnifiedCSV    string
}

// GetPaths resolves the configured locations against the working directory
func (c *Config) GetPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return c.PathsFrom(wd), nil
}

// PathsFrom resolves the configured locations against base
func (c *Config) PathsFrom(base string) *Paths {
	dataDir := resolve(base, c.Sources.DataDir)
	reportsDir := resolve(base, c.Output.ReportsDir)

	return &Paths{
		DataDir:       dataDir,
		ReportsDir:    reportsDir,
		LogsDir:       filepath.Dir(resolve(base, c.Logging.FilePath)),
		AcuteFile:     resolve(dataDir, c.Sources.Acute),
		MaternityFile: resolve(dataDir, c.Sources.Maternity),
		AthleticsFile: resolve(dataDir, c.Sources.Athletics),
		ChartWorkbook: resolve(reportsDir, c.Output.ChartWorkbook),
		UnifiedCSV:    resolve(reportsDir, c.Output.UnifiedCSV),
	}
}

// EnsureDirectories creates the output directories. The data directory is input only.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetReportPath returns a file path inside the reports directory
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// LogPathResolution logs every resolved path at debug level
func (p *Paths) LogPathResolution() {
	slog.Debug("Resolved paths",
		slog.String("data_dir", p.DataDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("acute", p.AcuteFile),
		slog.String("maternity", p.MaternityFile),
		slog.String("athletics", p.AthleticsFile),
		slog.String("chart_workbook", p.ChartWorkbook),
		slog.String("unified_csv", p.UnifiedCSV))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
