// Package calendar maps entries keyed by ISO date into the week and month
// grids the UI renders.
package calendar

import (
	"time"

	"tempo/internal/core"
)

// Mode selects the grid shape.
type Mode string

const (
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeWeek || m == ModeMonth
}

// Cell is one day in a grid. Grids are slices of *Cell; a nil element is a
// placeholder that aligns the month grid to its 7-column week layout.
type Cell struct {
	Date string `json:"date"` // YYYY-MM-DD
	Day  int    `json:"day"`  // day of month, for display
}

// MonthGrid produces the cells for the month containing ref: nil
// placeholders for the days before the 1st (weeks start on Sunday), then
// one cell per day of the month.
func MonthGrid(ref time.Time) []*Cell {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := int(first.Weekday()) // Sunday = 0 placeholders

	grid := make([]*Cell, 0, lead+daysInMonth)
	for i := 0; i < lead; i++ {
		grid = append(grid, nil)
	}
	for day := 1; day <= daysInMonth; day++ {
		d := time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, time.UTC)
		grid = append(grid, &Cell{Date: d.Format(core.DateLayout), Day: day})
	}
	return grid
}

// WeekGrid produces the Monday-anchored 7-day window containing ref, with
// no placeholders.
func WeekGrid(ref time.Time) []*Cell {
	offset := (int(ref.Weekday()) + 6) % 7 // days back to Monday
	monday := ref.AddDate(0, 0, -offset)

	grid := make([]*Cell, 7)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		grid[i] = &Cell{Date: d.Format(core.DateLayout), Day: d.Day()}
	}
	return grid
}

// Grid dispatches on mode.
func Grid(ref time.Time, mode Mode) []*Cell {
	if mode == ModeWeek {
		return WeekGrid(ref)
	}
	return MonthGrid(ref)
}

// Next moves the reference date forward one step: seven days in week mode,
// the first of the following month in month mode. Month steps anchor to
// day 1 so a month-end reference cannot overflow past a shorter month.
func Next(ref time.Time, mode Mode) time.Time {
	if mode == ModeWeek {
		return ref.AddDate(0, 0, 7)
	}
	return time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// Prev moves the reference date back one step, to the first of the
// preceding month in month mode.
func Prev(ref time.Time, mode Mode) time.Time {
	if mode == ModeWeek {
		return ref.AddDate(0, 0, -7)
	}
	return time.Date(ref.Year(), ref.Month()-1, 1, 0, 0, 0, 0, time.UTC)
}
