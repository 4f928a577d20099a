package exporter

import (
	"strconv"
	"strings"

	"hospitalcli/pkg/contracts/domain"
)

// notAvailable is printed for undefined aggregates.
const notAvailable = "n/a"

// formatAggregate rounds to places (no rounding when places < 0) and prints
// the shortest form, keeping a trailing ".0" on whole numbers.
func formatAggregate(a domain.Aggregate, places int) string {
	if !a.Defined {
		return notAvailable
	}
	if places >= 0 {
		a = a.Round(places)
	}
	return formatFloat(a.Value)
}

// formatFloat prints the shortest decimal form of f, with ".0" on whole numbers.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatUnit returns the capitalized unit name, or n/a for an empty unit.
func formatUnit(u domain.Unit) string {
	if u == "" {
		return notAvailable
	}
	return u.Title()
}
