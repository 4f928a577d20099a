package domain

// AgeBinEdges are the fixed histogram edges for the age distribution chart.
var AgeBinEdges = []float64{0, 15, 35, 55, 70, 80}

// HistogramBin counts values in [Low, High). The last bin also includes High.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// DiagnosisSlice is one slice of the diagnosis pie chart.
type DiagnosisSlice struct {
	Diagnosis string  `json:"diagnosis"`
	Count     int     `json:"count"`
	Share     float64 `json:"share"`
	Exploded  bool    `json:"exploded"`
}

// Point is an (x, y) pair for scatter charts.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HeightSeries is the height distribution of one unit.
type HeightSeries struct {
	Unit    Unit      `json:"unit"`
	Heights []float64 `json:"heights"`
	Min     float64   `json:"min"`
	Q1      float64   `json:"q1"`
	Median  float64   `json:"median"`
	Q3      float64   `json:"q3"`
	Max     float64   `json:"max"`
}

// ChartInputs are the slices of the unified table the four charts are drawn from.
type ChartInputs struct {
	Ages            []float64        `json:"ages"`
	AgeHistogram    []HistogramBin   `json:"age_histogram"`
	Diagnoses       []DiagnosisSlice `json:"diagnoses"`
	AthleticsAgeBMI []Point          `json:"athletics_age_bmi"`
	HeightsByUnit   []HeightSeries   `json:"heights_by_unit"`
}
