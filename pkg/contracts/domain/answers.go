package domain

import (
	"encoding/json"
	"math"
)

// Aggregate is a statistic that may be undefined, e.g. a share over an empty group.
// An undefined aggregate is distinct from a legitimate zero.
type Aggregate struct {
	Value   float64
	Defined bool
}

// DefinedAggregate wraps a computed value. NaN and Inf are treated as undefined.
func DefinedAggregate(v float64) Aggregate {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Aggregate{}
	}
	return Aggregate{Value: v, Defined: true}
}

// Undefined is the "no value" aggregate.
var Undefined = Aggregate{}

// Float returns the value, or NaN when undefined.
func (a Aggregate) Float() float64 {
	if !a.Defined {
		return math.NaN()
	}
	return a.Value
}

// Round returns the aggregate rounded to the given number of decimal places.
func (a Aggregate) Round(places int) Aggregate {
	if !a.Defined {
		return a
	}
	p := math.Pow(10, float64(places))
	return Aggregate{Value: math.Round(a.Value*p) / p, Defined: true}
}

// MarshalJSON encodes undefined aggregates as null.
func (a Aggregate) MarshalJSON() ([]byte, error) {
	if !a.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON decodes null as undefined.
func (a *Aggregate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = DefinedAggregate(v)
	return nil
}

// UnitCount is one entry of a per-unit tally.
type UnitCount struct {
	Unit  Unit `json:"unit"`
	Count int  `json:"count"`
}

// BloodTestLeader is the unit with the most blood tests taken.
// Found is false when no row recorded a blood test.
type BloodTestLeader struct {
	Unit  Unit `json:"unit,omitempty"`
	Count int  `json:"count"`
	Found bool `json:"found"`
}

// Answers holds the eight analytical answers computed for one run.
type Answers struct {
	LeastPopulated    Unit               `json:"least_populated_unit"`
	MostPopulated     Unit               `json:"most_populated_unit"`
	AcuteColdShare    Aggregate          `json:"acute_cold_share"`
	AthleticsFracture Aggregate          `json:"athletics_fracture_share"`
	MedianAgeGap      Aggregate          `json:"median_age_gap"`
	BloodTests        BloodTestLeader    `json:"blood_tests"`
	AgeStdDev         map[Unit]Aggregate `json:"age_std_dev"`
	UnitCounts        []UnitCount        `json:"unit_counts"`
}

// Count returns the number of rows reported for unit, or 0.
func (a Answers) Count(u Unit) int {
	for _, uc := range a.UnitCounts {
		if uc.Unit == u {
			return uc.Count
		}
	}
	return 0
}
