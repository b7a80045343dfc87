package core

import (
	"math"
	"testing"
)

func TestSumHours(t *testing.T) {
	entries := []Entry{
		{ID: "a", Date: "2024-01-03", Hours: 2},
		{ID: "b", Date: "2024-01-05", Hours: 4.5},
		{ID: "c", Date: "2024-01-05", Hours: 1.5}, // duplicate date, sums
		{ID: "d", Date: "2024-02-01", Hours: 8},
		{ID: "e", Date: "2024-02-02", Hours: -3},            // negative ignored
		{ID: "f", Date: "2024-02-03", Hours: math.NaN()},    // NaN ignored
		{ID: "g", Date: "2024-02-04", Hours: math.Inf(1)},   // Inf ignored
	}

	tests := []struct {
		name   string
		filter *DateRange
		want   float64
	}{
		{"no filter", nil, 16},
		{"single day sums duplicates", &DateRange{From: "2024-01-05", To: "2024-01-05"}, 6},
		{"january", &DateRange{From: "2024-01-01", To: "2024-01-31"}, 8},
		{"open start", &DateRange{To: "2024-01-31"}, 8},
		{"open end", &DateRange{From: "2024-02-01"}, 8},
		{"empty window", &DateRange{From: "2023-01-01", To: "2023-12-31"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SumHours(entries, tt.filter); got != tt.want {
				t.Errorf("SumHours() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := SumHours(nil, nil); got != 0 {
		t.Errorf("SumHours(nil) = %v, want 0", got)
	}
}

func TestSumHoursFilterMonotonic(t *testing.T) {
	entries := []Entry{
		{ID: "a", Date: "2024-01-03", Hours: 2},
		{ID: "b", Date: "2024-01-10", Hours: 3},
		{ID: "c", Date: "2024-01-20", Hours: 5},
	}
	// Widening the range must never decrease the sum.
	narrow := SumHours(entries, &DateRange{From: "2024-01-05", To: "2024-01-15"})
	wide := SumHours(entries, &DateRange{From: "2024-01-01", To: "2024-01-31"})
	if wide < narrow {
		t.Errorf("widened range sum %v < narrow range sum %v", wide, narrow)
	}
}

func TestEffectiveRate(t *testing.T) {
	profile := Profile{Name: "me", Rate: 50}
	override := 85.0
	zero := 0.0

	tests := []struct {
		name    string
		project *Project
		want    float64
	}{
		{"project override", &Project{Rate: &override}, 85},
		{"fallback to profile", &Project{}, 50},
		{"explicit zero override", &Project{Rate: &zero}, 0},
		{"nil project", nil, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveRate(tt.project, profile); got != tt.want {
				t.Errorf("EffectiveRate() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := EffectiveRate(&Project{}, Profile{}); got != 0 {
		t.Errorf("EffectiveRate with no rates = %v, want 0", got)
	}
}

func TestEarned(t *testing.T) {
	entries := []Entry{
		{ID: "a", Date: "2024-01-05", Hours: 4.5},
	}
	if got := Earned(entries, 85, nil); got != 382.5 {
		t.Errorf("Earned() = %v, want 382.5", got)
	}
	if got := Earned(entries, 0, nil); got != 0 {
		t.Errorf("Earned() with zero rate = %v, want 0", got)
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4.0, "4"},
		{4.5, "4.5"},
		{0, "0"},
		{0.25, "0.2"}, // one decimal place, FormatFloat rounding
		{12.75, "12.8"},
		{math.NaN(), "0"},
		{math.Inf(1), "0"},
		{math.Inf(-1), "0"},
	}

	for _, tt := range tests {
		if got := FormatHours(tt.in); got != tt.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
