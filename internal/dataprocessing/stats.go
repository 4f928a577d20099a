package dataprocessing

import (
	"math"
	"sort"

	"hospitalcli/pkg/contracts/domain"
)

// Mean returns the arithmetic mean, undefined for no values.
func Mean(values []float64) domain.Aggregate {
	if len(values) == 0 {
		return domain.Undefined
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return domain.DefinedAggregate(sum / float64(len(values)))
}

// Median returns the middle value, averaging the two middle values for an
// even count. Undefined for no values.
func Median(values []float64) domain.Aggregate {
	return Quantile(values, 0.5)
}

// Quantile returns the q-th quantile (0..1) using linear interpolation
// between closest ranks.
func Quantile(values []float64, q float64) domain.Aggregate {
	if len(values) == 0 || q < 0 || q > 1 {
		return domain.Undefined
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return domain.DefinedAggregate(sorted[len(sorted)-1])
	}
	return domain.DefinedAggregate(sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo]))
}

// SampleStdDev returns the standard deviation with an N-1 denominator.
// Fewer than two values is undefined.
func SampleStdDev(values []float64) domain.Aggregate {
	if len(values) < 2 {
		return domain.Undefined
	}
	mean := Mean(values).Value
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return domain.DefinedAggregate(math.Sqrt(ss / float64(len(values)-1)))
}
