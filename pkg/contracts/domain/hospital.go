package domain

import (
	"fmt"
	"strings"
)

// Unit identifies the hospital department a patient encounter belongs to.
type Unit string

const (
	UnitAcute     Unit = "acute"
	UnitMaternity Unit = "maternity"
	UnitAthletics Unit = "athletics"
)

// AllUnits returns the units in source order (acute, maternity, athletics).
func AllUnits() []Unit {
	return []Unit{UnitAcute, UnitMaternity, UnitAthletics}
}

// ParseUnit accepts a unit label in any case and returns the canonical Unit.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.ToLower(strings.TrimSpace(s)))
	switch u {
	case UnitAcute, UnitMaternity, UnitAthletics:
		return u, nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

// Title returns the unit name with a leading capital, e.g. "Acute".
func (u Unit) Title() string {
	if u == "" {
		return ""
	}
	return strings.ToUpper(string(u[:1])) + string(u[1:])
}

// Unified table column names.
const (
	ColIndex      = "Unnamed: 0"
	ColUnit       = "unit"
	ColGender     = "gender"
	ColAge        = "age"
	ColHeight     = "height"
	ColWeight     = "weight"
	ColBMI        = "bmi"
	ColDiagnosis  = "diagnosis"
	ColBloodTest  = "blood_test"
	ColECG        = "ecg"
	ColUltrasound = "ultrasound"
	ColMRI        = "mri"
	ColXRay       = "xray"
	ColChildren   = "children"
	ColMonths     = "months"
)

// FillColumns are the columns whose absent values default to "0" after cleaning.
var FillColumns = []string{
	ColBMI,
	ColDiagnosis,
	ColBloodTest,
	ColECG,
	ColUltrasound,
	ColMRI,
	ColXRay,
	ColChildren,
	ColMonths,
}

// FillDefault is the value written into absent FillColumns cells.
const FillDefault = "0"

// Gender codes after normalization.
const (
	GenderFemale = "f"
	GenderMale   = "m"
)

// TestTaken is the flag value recorded when a test was performed.
const TestTaken = "t"
