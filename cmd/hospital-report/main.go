package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hospitalcli/internal/config"
	"hospitalcli/internal/dataprocessing"
	apperrors "hospitalcli/internal/errors"
	"hospitalcli/internal/exporter"
	"hospitalcli/internal/infrastructure"
	"hospitalcli/internal/services"
	"hospitalcli/pkg/contracts"
	"hospitalcli/pkg/contracts/domain"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one pipeline pass. The answers go to stdout; logs and the
// one-line failure message go to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("hospital-report", flag.ContinueOnError)
	flags.SetOutput(stderr)
	dataDir := flags.String("data", "", "directory holding the three unit files (defaults to sources.data_dir)")
	outDir := flags.String("out", "", "directory for the chart workbook and unified CSV (defaults to output.reports_dir)")
	charts := flags.Bool("charts", true, "write the chart workbook")
	writeCSV := flags.Bool("csv", false, "write the unified table as CSV")
	preview := flags.Bool("preview", false, "print the head and shape of each source and of the unified table before the answers")
	previewRows := flags.Int("rows", 0, "rows shown per table by -preview (defaults to output.preview_rows)")
	showVersion := flags.Bool("version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", apperrors.NewConfigError("invalid configuration", err))
		return 1
	}
	if *dataDir != "" {
		cfg.Sources.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.Output.ReportsDir = *outDir
	}
	if *previewRows > 0 {
		cfg.Output.PreviewRows = *previewRows
	}

	logger, err := infrastructure.InitializeLoggerTo(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fail := func(err error) int {
		logger.ErrorContext(ctx, "Report failed", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	paths, err := cfg.GetPaths()
	if err != nil {
		return fail(err)
	}
	paths.LogPathResolution()

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return fail(err)
	}
	defer telemetry.Shutdown(context.Background())

	metrics, err := infrastructure.NewPipelineMetrics(telemetry.Meter)
	if err != nil {
		return fail(err)
	}

	reports := services.NewReportService(dataprocessing.SourcePaths{
		Acute:     paths.AcuteFile,
		Maternity: paths.MaternityFile,
		Athletics: paths.AthleticsFile,
	}, telemetry.Tracer, metrics, logger)

	report, err := reports.Run(ctx)
	if err != nil {
		return fail(err)
	}

	if *preview {
		if err := writePreviews(stdout, report, cfg.Output.PreviewRows); err != nil {
			return fail(err)
		}
	}

	if err := exporter.NewAnswerWriter(stdout).Write(report.Answers); err != nil {
		return fail(err)
	}

	if !*charts && !*writeCSV {
		return 0
	}
	if err := paths.EnsureDirectories(); err != nil {
		return fail(err)
	}

	if *charts {
		if err := exporter.NewChartWorkbook(logger).Save(paths.ChartWorkbook, report.Charts); err != nil {
			return fail(err)
		}
	}
	if *writeCSV {
		if err := exporter.NewCSVWriter(paths, logger).WriteTable(paths.UnifiedCSV, report.Unified, cfg.Output.BOMPrefix); err != nil {
			return fail(err)
		}
	}

	logger.InfoContext(ctx, "Report complete",
		slog.String("run_id", report.RunID),
		slog.Duration("duration", report.Duration),
		slog.Bool("charts", *charts),
		slog.Bool("csv", *writeCSV))
	return 0
}

// writePreviews prints the raw unit tables in source order, then the unified table.
func writePreviews(w io.Writer, report *services.Report, n int) error {
	for _, unit := range domain.AllUnits() {
		if err := exporter.WritePreview(w, report.Sources.Table(unit), n); err != nil {
			return err
		}
	}
	if err := exporter.WritePreview(w, report.Unified, n); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
