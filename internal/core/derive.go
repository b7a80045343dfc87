// Package core provides the time-tracking document model and the pure
// derivations computed from it: hour totals, effective rates, earnings.
//
// All functions here are side-effect free; they never mutate their inputs.
package core

import (
	"math"
	"strconv"
	"strings"
)

// SumHours returns the total hours over entries whose date passes the
// optional inclusive range filter. Negative or non-finite hours contribute
// nothing to the total. An empty input yields 0.
func SumHours(entries []Entry, r *DateRange) float64 {
	var total float64
	for _, e := range entries {
		if !r.Contains(e.Date) {
			continue
		}
		if h := safeHours(e.Hours); h > 0 {
			total += h
		}
	}
	return total
}

// HoursOn returns the total hours recorded on an exact date. Multiple
// entries sharing a date are legal and their hours sum.
func HoursOn(entries []Entry, date string) float64 {
	return SumHours(entries, &DateRange{From: date, To: date})
}

// EffectiveRate resolves the hourly rate for a project: its own override if
// set, else the profile default, else 0. The fallback happens at read time;
// it is never persisted as a copy.
func EffectiveRate(p *Project, profile Profile) float64 {
	if p != nil && p.Rate != nil {
		return safeHours(*p.Rate)
	}
	return safeHours(profile.Rate)
}

// Earned computes earnings over the filtered entries at the given rate. A
// rate of 0 is valid and simply yields 0.
func Earned(entries []Entry, rate float64, r *DateRange) float64 {
	return SumHours(entries, r) * rate
}

// FormatHours renders an hour count with one decimal place, stripping a
// trailing ".0" so whole values read as plain integers. Non-finite input
// renders as "0".
func FormatHours(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	s := strconv.FormatFloat(f, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// safeHours clamps non-finite and negative values to 0 so they cannot skew
// totals.
func safeHours(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
