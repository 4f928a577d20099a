package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"hospitalcli/internal/errors"
	"hospitalcli/pkg/contracts/domain"
)

// naTokens are the cell texts read as missing values.
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell text stands for a missing value.
func IsMissing(text string) bool {
	_, ok := naTokens[text]
	return ok
}

// SourcePaths locates the three unit tables.
type SourcePaths struct {
	Acute     string
	Maternity string
	Athletics string
}

// Path returns the location configured for unit.
func (p SourcePaths) Path(u domain.Unit) string {
	switch u {
	case domain.UnitAcute:
		return p.Acute
	case domain.UnitMaternity:
		return p.Maternity
	case domain.UnitAthletics:
		return p.Athletics
	}
	return ""
}

// Sources holds the three raw unit tables exactly as read.
type Sources struct {
	Acute     domain.Table
	Maternity domain.Table
	Athletics domain.Table
}

// Table returns the raw table for unit.
func (s Sources) Table(u domain.Unit) domain.Table {
	switch u {
	case domain.UnitMaternity:
		return s.Maternity
	case domain.UnitAthletics:
		return s.Athletics
	default:
		return s.Acute
	}
}

// Rows returns the total row count across the three tables.
func (s Sources) Rows() int {
	return s.Acute.Len() + s.Maternity.Len() + s.Athletics.Len()
}

// Loader reads the unit tables from disk.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadSources reads all three unit tables. The first missing or unreadable
// source aborts the load.
func (l *Loader) LoadSources(ctx context.Context, paths SourcePaths) (Sources, error) {
	var src Sources
	for _, unit := range domain.AllUnits() {
		if err := ctx.Err(); err != nil {
			return Sources{}, err
		}

		path := paths.Path(unit)
		table, err := LoadTable(path)
		if err != nil {
			return Sources{}, errors.NewSourceNotFoundError(string(unit), path, err)
		}
		table.Name = string(unit)

		rows, cols := table.Shape()
		l.logger.InfoContext(ctx, "Source loaded",
			slog.String("unit", string(unit)),
			slog.String("path", path),
			slog.Int("rows", rows),
			slog.Int("columns", cols))

		switch unit {
		case domain.UnitAcute:
			src.Acute = table
		case domain.UnitMaternity:
			src.Maternity = table
		case domain.UnitAthletics:
			src.Athletics = table
		}
	}
	return src, nil
}

// LoadTable reads a CSV file, or the first sheet of an .xlsx workbook, into a table.
// The first row is the header; empty header names become "Unnamed: <position>".
func LoadTable(path string) (domain.Table, error) {
	if path == "" {
		return domain.Table{}, fmt.Errorf("empty path")
	}

	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path)
	default:
		records, err = readCSV(path)
	}
	if err != nil {
		return domain.Table{}, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, err := buildTable(name, records)
	if err != nil {
		return domain.Table{}, errors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err)
	}
	return table, nil
}

// ReadTable parses CSV content from r.
func ReadTable(name string, r io.Reader) (domain.Table, error) {
	records, err := parseCSV(r)
	if err != nil {
		return domain.Table{}, errors.NewParsingError(fmt.Sprintf("failed to parse %s", name), err)
	}
	table, err := buildTable(name, records)
	if err != nil {
		return domain.Table{}, errors.NewParsingError(fmt.Sprintf("failed to parse %s", name), err)
	}
	return table, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := parseCSV(f)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to parse %s", path), err)
	}
	return records, nil
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read sheet %s in %s", sheets[0], path), err)
	}
	return rows, nil
}

func buildTable(name string, records [][]string) (domain.Table, error) {
	if len(records) == 0 {
		return domain.NewTable(name, nil), nil
	}

	header := headerNames(records[0])
	table := domain.NewTable(name, header)
	table.Rows = make([][]domain.Value, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) > len(header) {
			return domain.Table{}, fmt.Errorf("line %d: expected %d fields, saw %d", i+2, len(header), len(record))
		}
		row := make([]domain.Value, len(header))
		for j, text := range record {
			if !IsMissing(text) {
				row[j] = domain.Present(text)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// headerNames fills blank names and de-duplicates repeats as "name.1", "name.2".
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}
