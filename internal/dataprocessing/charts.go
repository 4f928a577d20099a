package dataprocessing

import (
	"hospitalcli/pkg/contracts/domain"
)

// BuildChartInputs extracts the data behind the four report charts.
func BuildChartInputs(unified domain.Table) domain.ChartInputs {
	ages := unified.Floats(domain.ColAge)
	return domain.ChartInputs{
		Ages:            ages,
		AgeHistogram:    Histogram(ages, domain.AgeBinEdges),
		Diagnoses:       DiagnosisSlices(unified),
		AthleticsAgeBMI: AthleticsAgeBMI(unified),
		HeightsByUnit:   HeightsByUnit(unified),
	}
}

// Histogram counts values into bins [edges[i], edges[i+1]). The last bin is
// closed on the right. Values outside the edges are not counted.
func Histogram(values, edges []float64) []domain.HistogramBin {
	if len(edges) < 2 {
		return nil
	}
	bins := make([]domain.HistogramBin, len(edges)-1)
	for i := range bins {
		bins[i] = domain.HistogramBin{Low: edges[i], High: edges[i+1]}
	}
	last := len(bins) - 1
	for _, v := range values {
		for i := range bins {
			if v >= bins[i].Low && (v < bins[i].High || (i == last && v == bins[i].High)) {
				bins[i].Count++
				break
			}
		}
	}
	return bins
}

// DiagnosisSlices returns diagnosis counts, most frequent first, with the
// leading slice marked exploded.
func DiagnosisSlices(unified domain.Table) []domain.DiagnosisSlice {
	counts := valueCounts(unified.Column(domain.ColDiagnosis))
	total := 0
	for _, c := range counts {
		total += c.count
	}
	out := make([]domain.DiagnosisSlice, len(counts))
	for i, c := range counts {
		out[i] = domain.DiagnosisSlice{
			Diagnosis: c.text,
			Count:     c.count,
			Share:     float64(c.count) / float64(total),
			Exploded:  i == 0,
		}
	}
	return out
}

// AthleticsAgeBMI pairs age and bmi for athletics rows where both are numeric.
func AthleticsAgeBMI(unified domain.Table) []domain.Point {
	rows := unified.Where(domain.ColUnit, string(domain.UnitAthletics))
	var out []domain.Point
	for i := range rows.Rows {
		age, okAge := rows.Cell(i, domain.ColAge).Float()
		bmi, okBMI := rows.Cell(i, domain.ColBMI).Float()
		if okAge && okBMI {
			out = append(out, domain.Point{X: age, Y: bmi})
		}
	}
	return out
}

// HeightsByUnit returns the height distribution per unit, in order of first appearance.
func HeightsByUnit(unified domain.Table) []domain.HeightSeries {
	var out []domain.HeightSeries
	for _, unit := range unitsInOrder(unified) {
		heights := unified.Where(domain.ColUnit, string(unit)).Floats(domain.ColHeight)
		s := domain.HeightSeries{Unit: unit, Heights: heights}
		if len(heights) > 0 {
			s.Min = Quantile(heights, 0).Value
			s.Q1 = Quantile(heights, 0.25).Value
			s.Median = Quantile(heights, 0.5).Value
			s.Q3 = Quantile(heights, 0.75).Value
			s.Max = Quantile(heights, 1).Value
		}
		out = append(out, s)
	}
	return out
}

func unitsInOrder(t domain.Table) []domain.Unit {
	var out []domain.Unit
	seen := make(map[string]bool)
	for _, v := range t.Column(domain.ColUnit) {
		if v.Valid && !seen[v.Text] {
			seen[v.Text] = true
			out = append(out, domain.Unit(v.Text))
		}
	}
	return out
}
