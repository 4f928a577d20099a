package exporter

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hospitalcli/pkg/contracts/domain"
)

func sampleChartInputs() domain.ChartInputs {
	return domain.ChartInputs{
		Ages: []float64{12, 30, 45},
		AgeHistogram: []domain.HistogramBin{
			{Low: 0, High: 15, Count: 1},
			{Low: 15, High: 35, Count: 1},
			{Low: 35, High: 55, Count: 1},
			{Low: 55, High: 70, Count: 0},
			{Low: 70, High: 80, Count: 0},
		},
		Diagnoses: []domain.DiagnosisSlice{
			{Diagnosis: "cold", Count: 2, Share: 2.0 / 3.0, Exploded: true},
			{Diagnosis: "sprain", Count: 1, Share: 1.0 / 3.0},
		},
		AthleticsAgeBMI: []domain.Point{{X: 20, Y: 22.5}, {X: 25, Y: 21}},
		HeightsByUnit: []domain.HeightSeries{
			{Unit: domain.UnitAcute, Heights: []float64{1.6, 1.8}, Min: 1.6, Q1: 1.65, Median: 1.7, Q3: 1.75, Max: 1.8},
			{Unit: domain.UnitMaternity},
			{Unit: domain.UnitAthletics, Heights: []float64{5.5}, Min: 5.5, Q1: 5.5, Median: 5.5, Q3: 5.5, Max: 5.5},
		},
	}
}

func TestChartWorkbookSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "charts.xlsx")
	require.NoError(t, NewChartWorkbook(nil).Save(path, sampleChartInputs()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetAges, SheetDiagnoses, SheetAthletics, SheetHeights}, f.GetSheetList())

	ages, err := f.GetRows(SheetAges)
	require.NoError(t, err)
	require.Len(t, ages, 6)
	assert.Equal(t, []string{"Age range", "Patients"}, ages[0][:2])
	assert.Equal(t, "0-15", ages[1][0])
	assert.Equal(t, "1", ages[1][1])

	diag, err := f.GetCellValue(SheetDiagnoses, "A2")
	require.NoError(t, err)
	assert.Equal(t, "cold", diag)
	exploded, err := f.GetCellValue(SheetDiagnoses, "D2")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", exploded)

	bmi, err := f.GetCellValue(SheetAthletics, "B2")
	require.NoError(t, err)
	assert.Equal(t, "22.5", bmi)

	unit, err := f.GetCellValue(SheetHeights, "A3")
	require.NoError(t, err)
	assert.Equal(t, "maternity", unit)
	median, err := f.GetCellValue(SheetHeights, "E2")
	require.NoError(t, err)
	assert.Equal(t, "1.7", median)

	strip, err := f.GetCellValue(SheetHeights, "K3")
	require.NoError(t, err)
	assert.Equal(t, "1.8", strip)
}

func TestChartWorkbookEmptyInputs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewChartWorkbook(nil).WriteTo(&buf, domain.ChartInputs{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 4)
}

func TestColumnRange(t *testing.T) {
	assert.Equal(t, "'Diagnoses'!$B$2:$B$6", columnRange(SheetDiagnoses, "B", 5))
	assert.Equal(t, "'Age distribution'!$B$1", quoteRange(SheetAges, "B1"))
}
