package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalcli/pkg/contracts/domain"
)

func TestHistogramEdges(t *testing.T) {
	bins := Histogram([]float64{0, 14.9, 15, 34, 55, 69, 70, 80, 81, -1}, domain.AgeBinEdges)
	require.Len(t, bins, 5)

	counts := make([]int, len(bins))
	for i, b := range bins {
		counts[i] = b.Count
	}
	assert.Equal(t, []int{2, 2, 0, 2, 2}, counts, "80 falls in the closed last bin, out-of-range values are ignored")
	assert.Equal(t, 70.0, bins[4].Low)
	assert.Equal(t, 80.0, bins[4].High)
}

func TestHistogramNeedsTwoEdges(t *testing.T) {
	assert.Nil(t, Histogram([]float64{1}, []float64{0}))
}

func TestBuildChartInputs(t *testing.T) {
	unified := mustUnified(t, scenarioSources(t))

	inputs := BuildChartInputs(unified)

	assert.Len(t, inputs.Ages, 20)
	total := 0
	for _, b := range inputs.AgeHistogram {
		total += b.Count
	}
	assert.Equal(t, 20, total)

	require.NotEmpty(t, inputs.Diagnoses)
	assert.Equal(t, "stomach", inputs.Diagnoses[0].Diagnosis)
	assert.Equal(t, 7, inputs.Diagnoses[0].Count)
	assert.True(t, inputs.Diagnoses[0].Exploded)
	var share float64
	for i, d := range inputs.Diagnoses {
		share += d.Share
		if i > 0 {
			assert.False(t, d.Exploded)
		}
	}
	assert.InDelta(t, 1.0, share, 1e-9)

	require.Len(t, inputs.AthleticsAgeBMI, 5)
	assert.Equal(t, domain.Point{X: 20, Y: 22.5}, inputs.AthleticsAgeBMI[0])

	require.Len(t, inputs.HeightsByUnit, 3)
	acute := inputs.HeightsByUnit[0]
	assert.Equal(t, domain.UnitAcute, acute.Unit)
	assert.Len(t, acute.Heights, 10)
	assert.Equal(t, 1.6, acute.Min)
	assert.Equal(t, 1.8, acute.Max)
	assert.Equal(t, 1.6, acute.Median)
	assert.Equal(t, domain.UnitAthletics, inputs.HeightsByUnit[2].Unit)
}

func TestDiagnosisSlicesIncludeDefaults(t *testing.T) {
	src := mustSources(t,
		csvFor(acuteHeader, []patient{{unit: "acute", gender: "m", diagnosis: "cold"}}),
		csvFor(maternityHeader, []patient{{unit: "maternity"}, {unit: "maternity"}}),
		csvFor(athleticsHeader, nil),
	)

	slices := DiagnosisSlices(mustUnified(t, src))
	require.Len(t, slices, 2)
	assert.Equal(t, domain.FillDefault, slices[0].Diagnosis)
	assert.Equal(t, 2, slices[0].Count)
}
