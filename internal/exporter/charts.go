package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"hospitalcli/pkg/contracts/domain"
)

// Sheet names of the chart workbook.
const (
	SheetAges      = "Age distribution"
	SheetDiagnoses = "Diagnoses"
	SheetAthletics = "Athletics age vs BMI"
	SheetHeights   = "Heights by unit"
)

// heightStripColumn is the first column of the per-unit strip data on the heights sheet.
const heightStripColumn = 10

var chartSize = excelize.ChartDimension{Width: 720, Height: 480}

// ChartWorkbook renders chart inputs into an .xlsx workbook, one sheet and
// chart per figure.
type ChartWorkbook struct {
	logger *slog.Logger
}

// NewChartWorkbook creates a renderer. A nil logger falls back to slog.Default().
func NewChartWorkbook(logger *slog.Logger) *ChartWorkbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartWorkbook{logger: logger}
}

// Save renders the workbook to path, creating the parent directory.
func (c *ChartWorkbook) Save(path string, inputs domain.ChartInputs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := c.Build(inputs)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save chart workbook: %w", err)
	}

	c.logger.Info("Chart workbook written",
		slog.String("path", path),
		slog.Int("ages", len(inputs.Ages)),
		slog.Int("diagnoses", len(inputs.Diagnoses)))
	return nil
}

// WriteTo renders the workbook to w.
func (c *ChartWorkbook) WriteTo(w io.Writer, inputs domain.ChartInputs) error {
	f, err := c.Build(inputs)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart workbook: %w", err)
	}
	return nil
}

// Build renders the four sheets. The caller owns the returned file.
func (c *ChartWorkbook) Build(inputs domain.ChartInputs) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetAges); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetDiagnoses, SheetAthletics, SheetHeights} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	steps := []func(*excelize.File, int, domain.ChartInputs) error{
		writeAgeSheet,
		writeDiagnosisSheet,
		writeAthleticsSheet,
		writeHeightSheet,
	}
	for _, step := range steps {
		if err := step(f, headerStyle, inputs); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeAgeSheet(f *excelize.File, style int, inputs domain.ChartInputs) error {
	rows := make([][]interface{}, len(inputs.AgeHistogram))
	for i, bin := range inputs.AgeHistogram {
		rows[i] = []interface{}{fmt.Sprintf("%g-%g", bin.Low, bin.High), bin.Count}
	}
	if err := writeGrid(f, SheetAges, style, []string{"Age range", "Patients"}, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	return f.AddChart(SheetAges, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       quoteRange(SheetAges, "B1"),
			Categories: columnRange(SheetAges, "A", len(rows)),
			Values:     columnRange(SheetAges, "B", len(rows)),
		}},
		Title:     title("Age Distribution of Patients among all units"),
		XAxis:     excelize.ChartAxis{Title: title("Age Ranges")},
		YAxis:     excelize.ChartAxis{Title: title("Number of Patients")},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: chartSize,
	})
}

func writeDiagnosisSheet(f *excelize.File, style int, inputs domain.ChartInputs) error {
	rows := make([][]interface{}, len(inputs.Diagnoses))
	for i, d := range inputs.Diagnoses {
		rows[i] = []interface{}{d.Diagnosis, d.Count, d.Share, d.Exploded}
	}
	if err := writeGrid(f, SheetDiagnoses, style, []string{"Diagnosis", "Patients", "Share", "Exploded"}, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	return f.AddChart(SheetDiagnoses, "F2", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       quoteRange(SheetDiagnoses, "B1"),
			Categories: columnRange(SheetDiagnoses, "A", len(rows)),
			Values:     columnRange(SheetDiagnoses, "B", len(rows)),
		}},
		Title:     title("Most Common Diagnosis among Patients in all units"),
		Legend:    excelize.ChartLegend{Position: "right"},
		PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
		Dimension: chartSize,
	})
}

func writeAthleticsSheet(f *excelize.File, style int, inputs domain.ChartInputs) error {
	rows := make([][]interface{}, len(inputs.AthleticsAgeBMI))
	for i, p := range inputs.AthleticsAgeBMI {
		rows[i] = []interface{}{p.X, p.Y}
	}
	if err := writeGrid(f, SheetAthletics, style, []string{"Age", "BMI"}, rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	return f.AddChart(SheetAthletics, "D2", &excelize.Chart{
		Type: excelize.Scatter,
		Series: []excelize.ChartSeries{{
			Name:       quoteRange(SheetAthletics, "B1"),
			Categories: columnRange(SheetAthletics, "A", len(rows)),
			Values:     columnRange(SheetAthletics, "B", len(rows)),
			Line:       excelize.ChartLine{Type: excelize.ChartLineNone},
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 6},
		}},
		Title:     title("Age vs BMI in Athletics Medical Unit"),
		XAxis:     excelize.ChartAxis{Title: title("Age")},
		YAxis:     excelize.ChartAxis{Title: title("BMI")},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: chartSize,
	})
}

// writeHeightSheet writes a quartile summary per unit and a strip chart of
// every height, each unit plotted at its own x position.
func writeHeightSheet(f *excelize.File, style int, inputs domain.ChartInputs) error {
	summary := make([][]interface{}, len(inputs.HeightsByUnit))
	for i, s := range inputs.HeightsByUnit {
		summary[i] = []interface{}{string(s.Unit), len(s.Heights), s.Min, s.Q1, s.Median, s.Q3, s.Max}
	}
	header := []string{"Unit", "Patients", "Min", "Q1", "Median", "Q3", "Max"}
	if err := writeGrid(f, SheetHeights, style, header, summary); err != nil {
		return err
	}

	var series []excelize.ChartSeries
	for i, s := range inputs.HeightsByUnit {
		if len(s.Heights) == 0 {
			continue
		}
		xCol, err := excelize.ColumnNumberToName(heightStripColumn + 2*i)
		if err != nil {
			return err
		}
		yCol, err := excelize.ColumnNumberToName(heightStripColumn + 2*i + 1)
		if err != nil {
			return err
		}

		if err := f.SetCellValue(SheetHeights, xCol+"1", string(s.Unit)+" position"); err != nil {
			return err
		}
		if err := f.SetCellValue(SheetHeights, yCol+"1", string(s.Unit)); err != nil {
			return err
		}
		for j, h := range s.Heights {
			row := j + 2
			if err := f.SetCellValue(SheetHeights, fmt.Sprintf("%s%d", xCol, row), i+1); err != nil {
				return err
			}
			if err := f.SetCellValue(SheetHeights, fmt.Sprintf("%s%d", yCol, row), h); err != nil {
				return err
			}
		}

		series = append(series, excelize.ChartSeries{
			Name:       quoteRange(SheetHeights, yCol+"1"),
			Categories: columnRange(SheetHeights, xCol, len(s.Heights)),
			Values:     columnRange(SheetHeights, yCol, len(s.Heights)),
			Line:       excelize.ChartLine{Type: excelize.ChartLineNone},
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 3},
		})
	}
	if len(series) == 0 {
		return nil
	}

	return f.AddChart(SheetHeights, fmt.Sprintf("A%d", len(summary)+3), &excelize.Chart{
		Type:      excelize.Scatter,
		Series:    series,
		Title:     title("Distribution of Heights among Medical Units"),
		XAxis:     excelize.ChartAxis{Title: title("Medical Units")},
		YAxis:     excelize.ChartAxis{Title: title("Height")},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: chartSize,
	})
}

func writeGrid(f *excelize.File, sheet string, style int, header []string, rows [][]interface{}) error {
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+2, sheet, err)
		}
	}
	if len(header) > 0 {
		last, err := excelize.ColumnNumberToName(len(header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 14); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}

func title(text string) []excelize.RichTextRun {
	return []excelize.RichTextRun{{Text: text}}
}

func quoteRange(sheet, cell string) string {
	return fmt.Sprintf("'%s'!$%s", sheet, dollarCell(cell))
}

func dollarCell(cell string) string {
	col, row, err := excelize.SplitCellName(cell)
	if err != nil {
		return cell
	}
	return fmt.Sprintf("%s$%d", col, row)
}

// columnRange references rows 2..n+1 of a column.
func columnRange(sheet, col string, n int) string {
	return fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, n+1)
}
