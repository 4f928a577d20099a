package exporter

import (
	"fmt"
	"io"
	"strings"

	"hospitalcli/pkg/contracts/domain"
)

const banner = `****************************************************************
*                                                              *
*                 ANSWERS TO THE HOSPITAL QUESTIONS            *
*                                                              *
****************************************************************`

// AnswerWriter prints answers as human-readable blocks, one per question.
type AnswerWriter struct {
	w io.Writer
}

// NewAnswerWriter creates a writer targeting w.
func NewAnswerWriter(w io.Writer) *AnswerWriter {
	return &AnswerWriter{w: w}
}

// Write renders all eight answers.
func (a *AnswerWriter) Write(answers domain.Answers) error {
	var b strings.Builder

	b.WriteString(banner + "\n\n")

	fmt.Fprintf(&b, "The unit with the least number of patients is the %s Unit\n\n", formatUnit(answers.LeastPopulated))
	fmt.Fprintf(&b, "The unit with the most number of patients is the %s Unit\n\n", formatUnit(answers.MostPopulated))
	fmt.Fprintf(&b, "The answer to the 3rd question is %s\n\n", formatAggregate(answers.AcuteColdShare, 3))
	fmt.Fprintf(&b, "The answer to the 4th question is %s\n\n", formatAggregate(answers.AthleticsFracture, 3))
	fmt.Fprintf(&b, "The answer to the 5th question is %s\n\n", formatAggregate(answers.MedianAgeGap, -1))

	if answers.BloodTests.Found {
		fmt.Fprintf(&b, "The answer to the 6th question is %s %d blood tests\n\n", answers.BloodTests.Unit, answers.BloodTests.Count)
	} else {
		fmt.Fprintf(&b, "The answer to the 6th question is %s (no blood tests taken)\n\n", notAvailable)
	}

	for _, unit := range domain.AllUnits() {
		fmt.Fprintf(&b, "Standard deviation of age in the %s unit: %s\n", unit.Title(), formatAggregate(answers.AgeStdDev[unit], 4))
	}
	b.WriteString("\n")

	writeUnitCounts(&b, answers.UnitCounts)

	_, err := io.WriteString(a.w, b.String())
	return err
}

func writeUnitCounts(b *strings.Builder, counts []domain.UnitCount) {
	width := len(domain.ColUnit)
	for _, c := range counts {
		if len(c.Unit) > width {
			width = len(c.Unit)
		}
	}
	b.WriteString(domain.ColUnit + "\n")
	for _, c := range counts {
		fmt.Fprintf(b, "%-*s %6d\n", width, c.Unit, c.Count)
	}
	b.WriteString("\n")
}
