package booking

import "time"

// Day is one calendar cell. Cells padding the grid outside the month are
// zero-valued.
type Day struct {
	Date time.Time
}

// InMonth reports whether the cell belongs to the displayed month.
func (d Day) InMonth() bool { return !d.Date.IsZero() }

// SelectableOn reports whether the day can start a booking as seen from
// today: weekdays that are today or later. Padding cells never are.
func (d Day) SelectableOn(today time.Time) bool {
	if !d.InMonth() {
		return false
	}
	if wd := d.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	y, m, dd := today.Date()
	startOfToday := time.Date(y, m, dd, 0, 0, 0, 0, today.Location())
	return !d.Date.Before(startOfToday)
}

// MonthGrid lays the month out as complete Monday-first weeks. Every row has
// exactly seven cells; leading and trailing cells outside the month are
// zero-valued.
func MonthGrid(year int, month time.Month) [][]Day {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	// Monday = 0 ... Sunday = 6.
	lead := (int(first.Weekday()) + 6) % 7

	var grid [][]Day
	week := make([]Day, 0, 7)
	for i := 0; i < lead; i++ {
		week = append(week, Day{})
	}
	for day := 1; day <= daysInMonth; day++ {
		week = append(week, Day{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)})
		if len(week) == 7 {
			grid = append(grid, week)
			week = make([]Day, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, Day{})
		}
		grid = append(grid, week)
	}
	return grid
}

// NextMonth steps the displayed month forward. Pure; no I/O happens until a
// date is selected.
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// PrevMonth steps the displayed month back.
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
