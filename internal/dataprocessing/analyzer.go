package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"hospitalcli/pkg/contracts/domain"
)

// Diagnoses the share questions ask about.
const (
	DiagnosisCold     = "cold"
	DiagnosisFracture = "fracture"
)

// Analyzer answers the fixed questions over a unified table.
type Analyzer struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// NewAnalyzer creates an analyzer. Nil arguments fall back to the defaults.
func NewAnalyzer(logger *slog.Logger, tracer trace.Tracer) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer("hospitalcli/dataprocessing")
	}
	return &Analyzer{logger: logger, tracer: tracer}
}

// Answer computes every question. The unified table feeds all answers except
// the per-unit age spread, which is taken from the raw sources.
func (a *Analyzer) Answer(ctx context.Context, unified domain.Table, sources Sources) domain.Answers {
	ctx, span := a.tracer.Start(ctx, "analyzer.answer",
		trace.WithAttributes(attribute.Int("rows", unified.Len())))
	defer span.End()

	counts := UnitCounts(unified)
	answers := domain.Answers{
		LeastPopulated:    leastOf(counts),
		MostPopulated:     mostOf(counts),
		AcuteColdShare:    DiagnosisShare(unified, domain.UnitAcute, DiagnosisCold),
		AthleticsFracture: DiagnosisShare(unified, domain.UnitAthletics, DiagnosisFracture),
		MedianAgeGap:      MedianAgeGap(unified),
		BloodTests:        MostBloodTestedUnit(unified),
		AgeStdDev:         AgeStdDev(sources),
		UnitCounts:        counts,
	}

	a.logger.InfoContext(ctx, "Questions answered",
		slog.String("least_populated", string(answers.LeastPopulated)),
		slog.String("most_populated", string(answers.MostPopulated)),
		slog.Bool("acute_cold_share_defined", answers.AcuteColdShare.Defined),
		slog.Bool("blood_tests_found", answers.BloodTests.Found))

	return answers
}

// UnitCounts tallies rows per unit, largest first. Equal counts keep the order
// in which the units first appear in the table.
func UnitCounts(t domain.Table) []domain.UnitCount {
	return countBy(t.Column(domain.ColUnit))
}

// LeastPopulatedUnit returns the unit with the fewest rows, or "" for an empty table.
func LeastPopulatedUnit(t domain.Table) domain.Unit {
	return leastOf(UnitCounts(t))
}

// MostPopulatedUnit returns the unit with the most rows, or "" for an empty table.
func MostPopulatedUnit(t domain.Table) domain.Unit {
	return mostOf(UnitCounts(t))
}

// DiagnosisShare is the fraction of unit rows carrying diagnosis.
// Undefined when the unit has no rows.
func DiagnosisShare(t domain.Table, unit domain.Unit, diagnosis string) domain.Aggregate {
	rows := t.Where(domain.ColUnit, string(unit))
	if rows.Len() == 0 {
		return domain.Undefined
	}
	hits := 0
	for _, v := range rows.Column(domain.ColDiagnosis) {
		if v.Is(diagnosis) {
			hits++
		}
	}
	return domain.DefinedAggregate(float64(hits) / float64(rows.Len()))
}

// MedianAgeGap is |median(maternity ages) - median(acute ages)| over present ages.
func MedianAgeGap(t domain.Table) domain.Aggregate {
	maternity := Median(t.Where(domain.ColUnit, string(domain.UnitMaternity)).Floats(domain.ColAge))
	acute := Median(t.Where(domain.ColUnit, string(domain.UnitAcute)).Floats(domain.ColAge))
	if !maternity.Defined || !acute.Defined {
		return domain.Undefined
	}
	return domain.DefinedAggregate(math.Abs(maternity.Value - acute.Value))
}

// MostBloodTestedUnit finds the unit with the most blood tests taken.
func MostBloodTestedUnit(t domain.Table) domain.BloodTestLeader {
	tested := t.Where(domain.ColBloodTest, domain.TestTaken)
	counts := countBy(tested.Column(domain.ColUnit))
	if len(counts) == 0 {
		return domain.BloodTestLeader{}
	}
	return domain.BloodTestLeader{Unit: counts[0].Unit, Count: counts[0].Count, Found: true}
}

// AgeStdDev is the sample standard deviation of age in each raw unit table.
func AgeStdDev(sources Sources) map[domain.Unit]domain.Aggregate {
	out := make(map[domain.Unit]domain.Aggregate, 3)
	for _, unit := range domain.AllUnits() {
		out[unit] = SampleStdDev(sources.Table(unit).Floats(domain.ColAge))
	}
	return out
}

type valueCount struct {
	text  string
	count int
}

// valueCounts tallies present values, largest first, ties in order of first appearance.
func valueCounts(values []domain.Value) []valueCount {
	var out []valueCount
	pos := make(map[string]int)
	for _, v := range values {
		if !v.Valid {
			continue
		}
		i, ok := pos[v.Text]
		if !ok {
			i = len(out)
			pos[v.Text] = i
			out = append(out, valueCount{text: v.Text})
		}
		out[i].count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].count > out[j].count
	})
	return out
}

func countBy(values []domain.Value) []domain.UnitCount {
	counts := valueCounts(values)
	out := make([]domain.UnitCount, len(counts))
	for i, c := range counts {
		out[i] = domain.UnitCount{Unit: domain.Unit(c.text), Count: c.count}
	}
	return out
}

func leastOf(counts []domain.UnitCount) domain.Unit {
	if len(counts) == 0 {
		return ""
	}
	least := counts[len(counts)-1].Count
	for _, c := range counts {
		if c.Count == least {
			return c.Unit
		}
	}
	return ""
}

func mostOf(counts []domain.UnitCount) domain.Unit {
	if len(counts) == 0 {
		return ""
	}
	return counts[0].Unit
}
