package dataprocessing

import (
	"strings"

	"hospitalcli/internal/errors"
	"hospitalcli/pkg/contracts/domain"
)

type rename struct {
	from string
	to   string
}

// renames lists, per unit, the source column names that map onto unified names.
var renames = map[domain.Unit][]rename{
	domain.UnitMaternity: {
		{from: "UNIT", to: domain.ColUnit},
		{from: "Sex", to: domain.ColGender},
	},
	domain.UnitAthletics: {
		{from: "Unit", to: domain.ColUnit},
		{from: "Male/female", to: domain.ColGender},
	},
}

var genderCodes = map[string]string{
	"female": domain.GenderFemale,
	"woman":  domain.GenderFemale,
	"male":   domain.GenderMale,
	"man":    domain.GenderMale,
	"f":      domain.GenderFemale,
	"m":      domain.GenderMale,
}

// NormalizeStats describes what cleaning changed.
type NormalizeStats struct {
	RowsIn          int            `json:"rows_in"`
	RowsDropped     int            `json:"rows_dropped"`
	RowsOut         int            `json:"rows_out"`
	UnitsFilled     int            `json:"units_filled"`
	GendersRemapped int            `json:"genders_remapped"`
	GendersFilled   int            `json:"genders_filled"`
	Filled          map[string]int `json:"filled"`
}

// BuildUnifiedTable aligns, stacks and cleans the three unit tables into the
// unified table. The sources are left untouched.
func BuildUnifiedTable(src Sources) (domain.Table, NormalizeStats, error) {
	stats := NormalizeStats{Filled: make(map[string]int)}

	aligned := make([]domain.Table, 0, 3)
	for _, unit := range domain.AllUnits() {
		t, err := renameColumns(unit, src.Table(unit))
		if err != nil {
			return domain.Table{}, stats, err
		}
		aligned = append(aligned, t)
	}

	unified, origins := concat(aligned)
	stats.RowsIn = unified.Len()

	unified = dropColumn(unified, domain.ColIndex)

	unified, origins = dropEmptyRows(unified, origins)
	stats.RowsDropped = stats.RowsIn - unified.Len()

	unitIdx := unified.Index(domain.ColUnit)
	genderIdx := unified.Index(domain.ColGender)
	for i, row := range unified.Rows {
		cell := row[unitIdx]
		if cell.Valid {
			row[unitIdx] = domain.Present(strings.ToLower(strings.TrimSpace(cell.Text)))
		} else {
			row[unitIdx] = domain.Present(string(origins[i]))
			stats.UnitsFilled++
		}

		g := row[genderIdx]
		switch {
		case !g.Valid:
			row[genderIdx] = domain.Present(domain.GenderFemale)
			stats.GendersFilled++
		default:
			if code, ok := genderCodes[strings.ToLower(strings.TrimSpace(g.Text))]; ok && code != g.Text {
				row[genderIdx] = domain.Present(code)
				stats.GendersRemapped++
			}
		}
	}

	for _, col := range domain.FillColumns {
		idx := unified.Index(col)
		if idx < 0 {
			unified = addColumn(unified, col)
			idx = len(unified.Columns) - 1
		}
		for _, row := range unified.Rows {
			if !row[idx].Valid {
				row[idx] = domain.Present(domain.FillDefault)
				stats.Filled[col]++
			}
		}
	}

	unified.Name = "unified"
	stats.RowsOut = unified.Len()
	return unified, stats, nil
}

// renameColumns returns a copy of t with its unit and gender columns under
// their unified names. A column that is neither under its source name nor
// already under the unified name is a schema mismatch.
func renameColumns(unit domain.Unit, t domain.Table) (domain.Table, error) {
	out := t.Clone()
	out.Name = string(unit)
	for _, r := range renames[unit] {
		if idx := out.Index(r.from); idx >= 0 {
			out.Columns[idx] = r.to
			continue
		}
		if !out.Has(r.to) {
			return domain.Table{}, errors.NewSchemaMismatchError(string(unit), r.from)
		}
	}
	for _, required := range []string{domain.ColUnit, domain.ColGender} {
		if !out.Has(required) {
			return domain.Table{}, errors.NewSchemaMismatchError(string(unit), required)
		}
	}
	return out, nil
}

// concat stacks tables row-wise over the union of their columns, in order of
// first appearance. Cells for columns a table lacks are absent. The returned
// slice records the source unit of every row.
func concat(tables []domain.Table) (domain.Table, []domain.Unit) {
	var columns []string
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	out := domain.NewTable("", columns)
	var origins []domain.Unit
	for _, t := range tables {
		mapping := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			mapping[i] = out.Index(c)
		}
		for _, row := range t.Rows {
			r := make([]domain.Value, len(columns))
			for i, v := range row {
				r[mapping[i]] = v
			}
			out.Rows = append(out.Rows, r)
			origins = append(origins, domain.Unit(t.Name))
		}
	}
	return out, origins
}

func dropColumn(t domain.Table, name string) domain.Table {
	idx := t.Index(name)
	if idx < 0 {
		return t
	}
	cols := append(append([]string{}, t.Columns[:idx]...), t.Columns[idx+1:]...)
	out := domain.NewTable(t.Name, cols)
	out.Rows = make([][]domain.Value, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append(append([]domain.Value{}, row[:idx]...), row[idx+1:]...)
	}
	return out
}

func addColumn(t domain.Table, name string) domain.Table {
	out := domain.NewTable(t.Name, append(append([]string{}, t.Columns...), name))
	out.Rows = make([][]domain.Value, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append(append([]domain.Value{}, row...), domain.Absent)
	}
	return out
}

func dropEmptyRows(t domain.Table, origins []domain.Unit) (domain.Table, []domain.Unit) {
	out := domain.NewTable(t.Name, t.Columns)
	kept := make([]domain.Unit, 0, len(origins))
	for i, row := range t.Rows {
		if isEmptyRow(row) {
			continue
		}
		out.Rows = append(out.Rows, row)
		kept = append(kept, origins[i])
	}
	return out, kept
}

func isEmptyRow(row []domain.Value) bool {
	for _, v := range row {
		if v.Valid {
			return false
		}
	}
	return true
}
